// Package builtin provides the one concrete implementation of the
// endpoint-layer surface (§6) that PDP's SPDP writer/reader and EDP's SEDP
// writer/reader need: a set of reader-locators to fan a payload out to, and
// a receive callback. The real reliability state machine (heartbeat/
// acknack/history cache) is an external collaborator the design explicitly
// places out of scope; what discovery needs from it is the mechanical
// "send this payload to every matched locator" and "dispatch this inbound
// payload to my listener" surface, which is what this package gives both
// the best-effort SPDP built-ins and the reliable SEDP built-ins.
package builtin

import (
	"context"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

// Writer fans a cache change out to every currently configured
// reader-locator over a Transport, and caches the last payload sent so a
// re-announcement that hasn't changed can be resent without rebuilding it.
type Writer struct {
	mu        sync.Mutex
	transport transport.Transport
	locators  []locator.Locator
	last      []byte
}

// NewWriter returns a Writer that sends over t.
func NewWriter(t transport.Transport) *Writer {
	return &Writer{transport: t}
}

// AddReaderLocator installs loc as a send target, if not already present.
func (w *Writer) AddReaderLocator(loc locator.Locator) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if locator.ContainsLocator(w.locators, loc) {
		return nil
	}
	w.locators = append(w.locators, loc)
	return nil
}

// RemoveReaderLocator removes loc from the send-target set.
func (w *Writer) RemoveReaderLocator(loc locator.Locator) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, l := range w.locators {
		if l.Equal(loc) {
			w.locators = append(w.locators[:i], w.locators[i+1:]...)
			return nil
		}
	}
	return nil
}

// NewChange sends payload to every configured locator and caches it as the
// last change for GetLastAddedCache. instance is accepted to satisfy the
// BuiltinWriter contract; this reference implementation keys by transport
// locator rather than a history cache, so it is otherwise unused.
func (w *Writer) NewChange(ctx context.Context, instance guid.GUID, payload []byte) error {
	w.mu.Lock()
	targets := append([]locator.Locator(nil), w.locators...)
	w.last = append([]byte(nil), payload...)
	w.mu.Unlock()

	var errs *multierror.Error
	for _, loc := range targets {
		if err := w.transport.Send(ctx, loc, payload); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// GetLastAddedCache returns the payload of the most recent NewChange call,
// used by PDP.announce to resend without recomputing the parameter list.
func (w *Writer) GetLastAddedCache() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]byte(nil), w.last...)
}

// Reader dispatches every datagram delivered to its bound locator to a
// single listener callback.
type Reader struct {
	mu       sync.Mutex
	listener func(from locator.Locator, payload []byte)
}

// NewReader returns an unbound Reader; call Bind to start receiving.
func NewReader() *Reader {
	return &Reader{}
}

// SetListener installs the callback invoked per inbound datagram.
func (r *Reader) SetListener(fn func(from locator.Locator, payload []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}

// Bind registers the reader against t on loc.
func (r *Reader) Bind(t transport.Transport, loc locator.Locator) (io.Closer, error) {
	return t.RegisterReceiver(loc, func(from locator.Locator, payload []byte) {
		r.mu.Lock()
		fn := r.listener
		r.mu.Unlock()
		if fn != nil {
			fn(from, payload)
		}
	})
}
