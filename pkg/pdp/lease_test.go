package pdp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/pkg/guid"
)

type leaseEvents struct {
	mu       sync.Mutex
	suspects []guid.GuidPrefix
	expired  []guid.GuidPrefix
}

func (e *leaseEvents) onSuspect(p guid.GuidPrefix) {
	e.mu.Lock()
	e.suspects = append(e.suspects, p)
	e.mu.Unlock()
}

func (e *leaseEvents) onExpired(p guid.GuidPrefix) {
	e.mu.Lock()
	e.expired = append(e.expired, p)
	e.mu.Unlock()
}

func (e *leaseEvents) suspectCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.suspects)
}

func (e *leaseEvents) expiredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.expired)
}

func TestLeaseTrackerFiresSuspectThenExpired(t *testing.T) {
	events := &leaseEvents{}
	tracker := newLeaseTracker(events.onSuspect, events.onExpired)
	defer tracker.Stop()

	prefix := guid.GuidPrefix{1}
	tracker.Refresh(prefix, 20*time.Millisecond)

	require.Eventually(t, func() bool { return events.suspectCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return events.expiredCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestLeaseTrackerRefreshPostponesSuspect(t *testing.T) {
	events := &leaseEvents{}
	tracker := newLeaseTracker(events.onSuspect, events.onExpired)
	defer tracker.Stop()

	prefix := guid.GuidPrefix{2}
	tracker.Refresh(prefix, 40*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	tracker.Refresh(prefix, 40*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 0, events.suspectCount())
}

func TestLeaseTrackerForgetCancelsSuspectTimer(t *testing.T) {
	events := &leaseEvents{}
	tracker := newLeaseTracker(events.onSuspect, events.onExpired)
	defer tracker.Stop()

	prefix := guid.GuidPrefix{3}
	tracker.Refresh(prefix, 20*time.Millisecond)
	tracker.Forget(prefix)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, events.suspectCount())
}
