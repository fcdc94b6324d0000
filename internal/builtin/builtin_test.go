package builtin

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
)

func TestWriterAddReaderLocatorIsIdempotent(t *testing.T) {
	w := NewWriter(testutil.NewMemTransport())
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7411)

	require.NoError(t, w.AddReaderLocator(loc))
	require.NoError(t, w.AddReaderLocator(loc))

	require.NoError(t, w.NewChange(context.Background(), guid.GUID{}, []byte("payload")))
	assert.Len(t, w.locators, 1)
}

func TestWriterNewChangeSendsToEveryLocatorAndCachesPayload(t *testing.T) {
	mt := testutil.NewMemTransport()
	w := NewWriter(mt)
	locA := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7411)
	locB := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7412)
	require.NoError(t, w.AddReaderLocator(locA))
	require.NoError(t, w.AddReaderLocator(locB))

	require.NoError(t, w.NewChange(context.Background(), guid.GUID{}, []byte("payload")))

	assert.Len(t, mt.Sent(), 2)
	assert.Equal(t, []byte("payload"), w.GetLastAddedCache())
}

func TestWriterRemoveReaderLocatorStopsDelivery(t *testing.T) {
	mt := testutil.NewMemTransport()
	w := NewWriter(mt)
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7411)
	require.NoError(t, w.AddReaderLocator(loc))
	require.NoError(t, w.RemoveReaderLocator(loc))

	require.NoError(t, w.NewChange(context.Background(), guid.GUID{}, []byte("payload")))
	assert.Empty(t, mt.Sent())
}

func TestReaderBindDispatchesToListener(t *testing.T) {
	mt := testutil.NewMemTransport()
	r := NewReader()
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7410)

	received := make(chan []byte, 1)
	r.SetListener(func(_ locator.Locator, payload []byte) {
		received <- payload
	})

	closer, err := r.Bind(mt, loc)
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, mt.Send(context.Background(), loc, []byte("hello")))

	select {
	case payload := <-received:
		assert.Equal(t, "hello", string(payload))
	default:
		t.Fatal("expected synchronous delivery from MemTransport")
	}
}

func TestReaderBindWithoutListenerDoesNotPanic(t *testing.T) {
	mt := testutil.NewMemTransport()
	r := NewReader()
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 7410)

	closer, err := r.Bind(mt, loc)
	require.NoError(t, err)
	defer closer.Close()

	assert.NotPanics(t, func() {
		_ = mt.Send(context.Background(), loc, []byte("hello"))
	})
}
