package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFires(t *testing.T) {
	var fired int32
	done := make(chan struct{})
	Schedule(10*time.Millisecond, func() {
		atomic.StoreInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestCancelBeforeFirePreventsCallback(t *testing.T) {
	var fired int32
	h := Schedule(50*time.Millisecond, func() {
		atomic.StoreInt32(&fired, 1)
	})
	h.Cancel()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestRestartDelaysFire(t *testing.T) {
	var fireCount int32
	h := Schedule(20*time.Millisecond, func() {
		atomic.AddInt32(&fireCount, 1)
	})
	h.Restart(200 * time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fireCount))
	h.Cancel()
}

func TestCancelWaitsForInFlightCallback(t *testing.T) {
	started := make(chan struct{})
	finished := int32(0)
	h := Schedule(5*time.Millisecond, func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	})
	<-started
	h.Cancel()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished), "cancel must not return until the running callback completes")
}
