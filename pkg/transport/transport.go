// Package transport declares the interface discovery consumes from the
// transport layer (§6): send a payload to a locator, and register a
// receiver callback for a locator. Discovery never opens raw sockets
// itself; internal/transport provides concrete implementations.
package transport

import (
	"context"
	"io"

	"github.com/runconduit/rtps-discovery/pkg/locator"
)

// ReceiveFunc is invoked once per datagram delivered to a registered
// locator, with the peer locator it arrived from.
type ReceiveFunc func(from locator.Locator, payload []byte)

// Transport sends and receives raw discovery payloads.
type Transport interface {
	Send(ctx context.Context, loc locator.Locator, payload []byte) error
	RegisterReceiver(loc locator.Locator, fn ReceiveFunc) (io.Closer, error)
}
