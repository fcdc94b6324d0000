// Package memtransport is an in-process Transport used by discovery tests
// and by the end-to-end scenario tests in pkg/pdp: a shared registry of
// locator -> receiver, with no real sockets.
package memtransport

import (
	"context"
	"io"
	"sync"

	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

// Bus is a shared delivery fabric joined by one or more Endpoint transports.
// It fans a Send on any locator out to every receiver registered on it,
// across every Endpoint sharing the Bus, mimicking a real multicast/unicast
// UDP fabric without sockets.
type Bus struct {
	mu        sync.Mutex
	receivers map[locator.Locator][]*registration
}

type registration struct {
	from locator.Locator
	fn   transport.ReceiveFunc
	bus  *Bus
	loc  locator.Locator
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{receivers: make(map[locator.Locator][]*registration)}
}

// Endpoint returns a Transport bound to this bus, tagged with fromLocator
// so receivers can see who sent each datagram.
func (b *Bus) Endpoint(fromLocator locator.Locator) transport.Transport {
	return &memEndpoint{bus: b, from: fromLocator}
}

type memEndpoint struct {
	bus  *Bus
	from locator.Locator
}

func (e *memEndpoint) Send(_ context.Context, loc locator.Locator, payload []byte) error {
	e.bus.mu.Lock()
	regs := append([]*registration(nil), e.bus.receivers[loc]...)
	e.bus.mu.Unlock()

	cp := make([]byte, len(payload))
	copy(cp, payload)
	for _, r := range regs {
		r.fn(e.from, cp)
	}
	return nil
}

func (e *memEndpoint) RegisterReceiver(loc locator.Locator, fn transport.ReceiveFunc) (io.Closer, error) {
	r := &registration{from: e.from, fn: fn, bus: e.bus, loc: loc}
	e.bus.mu.Lock()
	e.bus.receivers[loc] = append(e.bus.receivers[loc], r)
	e.bus.mu.Unlock()
	return r, nil
}

func (r *registration) Close() error {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	regs := r.bus.receivers[r.loc]
	for i, cur := range regs {
		if cur == r {
			regs[i] = regs[len(regs)-1]
			r.bus.receivers[r.loc] = regs[:len(regs)-1]
			break
		}
	}
	return nil
}
