package pdp

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/schedule"
)

// leaseTracker reproduces §4.5's two-fire lease watchdog ("on first fire,
// clear is_alive; on second consecutive fire without a refresh, remove the
// participant") on top of go-cache, which only ever fires one eviction per
// key. A schedule.Handle per remote supplies the halfway fire at
// lease_duration; go-cache's own TTL, set to 2*lease_duration and reset on
// every Refresh, supplies the final eviction.
type leaseTracker struct {
	cache *cache.Cache

	mu      sync.Mutex
	halfway map[guid.GuidPrefix]*schedule.Handle

	onSuspect func(guid.GuidPrefix)
	onExpired func(guid.GuidPrefix)
}

// cacheJanitorInterval bounds how long a lease can outlive its 2x deadline
// before go-cache's background sweep actually evicts it and fires
// OnEvicted. go-cache only expires lazily (on Get) or on this sweep
// interval; a fixed interval in the minutes range would make the removal
// side of a multi-second lease meaningless, so the janitor runs often
// enough to track typical discovery lease durations closely.
const cacheJanitorInterval = 250 * time.Millisecond

func newLeaseTracker(onSuspect, onExpired func(guid.GuidPrefix)) *leaseTracker {
	t := &leaseTracker{
		cache:     cache.New(cache.NoExpiration, cacheJanitorInterval),
		halfway:   make(map[guid.GuidPrefix]*schedule.Handle),
		onSuspect: onSuspect,
		onExpired: onExpired,
	}
	t.cache.OnEvicted(func(key string, _ interface{}) {
		t.onExpired(prefixFromKey(key))
	})
	return t
}

func keyForPrefix(prefix guid.GuidPrefix) string {
	return string(prefix[:])
}

func prefixFromKey(key string) guid.GuidPrefix {
	var p guid.GuidPrefix
	copy(p[:], key)
	return p
}

// Refresh (re)arms both the halfway suspect timer and the go-cache
// eviction for prefix, called on every Inserted or Updated participant
// announcement.
func (t *leaseTracker) Refresh(prefix guid.GuidPrefix, leaseDuration time.Duration) {
	t.mu.Lock()
	if h, ok := t.halfway[prefix]; ok {
		h.Restart(leaseDuration)
	} else {
		t.halfway[prefix] = schedule.Schedule(leaseDuration, func() { t.onSuspect(prefix) })
	}
	t.mu.Unlock()

	t.cache.Set(keyForPrefix(prefix), struct{}{}, 2*leaseDuration)
}

// Forget cancels prefix's halfway timer without forcing the go-cache
// eviction. Called on every removal of the participant (explicit disposal
// or lease expiry); after an explicit disposal the stray eviction that
// still fires later calls onExpired on an already-absent prefix, which
// PDP's removal path treats as a no-op.
func (t *leaseTracker) Forget(prefix guid.GuidPrefix) {
	t.mu.Lock()
	h, ok := t.halfway[prefix]
	delete(t.halfway, prefix)
	t.mu.Unlock()
	if ok {
		h.Cancel()
	}
}

// Stop cancels every outstanding halfway timer, called during shutdown.
func (t *leaseTracker) Stop() {
	t.mu.Lock()
	handles := make([]*schedule.Handle, 0, len(t.halfway))
	for _, h := range t.halfway {
		handles = append(handles, h)
	}
	t.halfway = make(map[guid.GuidPrefix]*schedule.Handle)
	t.mu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}
