// Package testutil provides small in-memory fakes shared by the discovery
// packages' tests: a loopback transport.Transport and minimal
// rtpsiface.LocalWriter/LocalReader implementations, so pkg/pdp and
// pkg/edp tests can exercise real wiring without a socket.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/runconduit/rtps-discovery/pkg/locator"
)

// MemTransport is a transport.Transport that delivers Send calls directly
// to any receiver registered for the same locator, synchronously, in the
// caller's goroutine.
type MemTransport struct {
	mu        sync.Mutex
	receivers map[locator.Locator][]func(from locator.Locator, payload []byte)
	sent      []SentMessage
}

// SentMessage records one Send call for assertions.
type SentMessage struct {
	To      locator.Locator
	Payload []byte
}

// NewMemTransport returns an empty MemTransport.
func NewMemTransport() *MemTransport {
	return &MemTransport{receivers: make(map[locator.Locator][]func(locator.Locator, []byte))}
}

// Send implements transport.Transport.
func (m *MemTransport) Send(_ context.Context, loc locator.Locator, payload []byte) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentMessage{To: loc, Payload: append([]byte(nil), payload...)})
	fns := append([]func(locator.Locator, []byte){}, m.receivers[loc]...)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(loc, payload)
	}
	return nil
}

// RegisterReceiver implements transport.Transport.
func (m *MemTransport) RegisterReceiver(loc locator.Locator, fn func(from locator.Locator, payload []byte)) (io.Closer, error) {
	m.mu.Lock()
	m.receivers[loc] = append(m.receivers[loc], fn)
	m.mu.Unlock()
	return closerFunc(func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		fns := m.receivers[loc]
		for i, f := range fns {
			if sameFunc(f, fn) {
				m.receivers[loc] = append(fns[:i], fns[i+1:]...)
				break
			}
		}
		return nil
	}), nil
}

// Sent returns every payload sent so far, for assertions.
func (m *MemTransport) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// sameFunc always reports false: Go func values are not comparable. As a
// result the Closer returned by RegisterReceiver removes nothing, and a
// receiver stays registered for the life of the MemTransport.
func sameFunc(func(locator.Locator, []byte), func(locator.Locator, []byte)) bool {
	return false
}
