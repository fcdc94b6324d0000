package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/pkg/locator"
)

func freeUDPPort(t *testing.T) uint32 {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer conn.Close()
	return uint32(conn.LocalAddr().(*net.UDPAddr).Port)
}

func TestSendAndReceiveUnicastRoundTrip(t *testing.T) {
	port := freeUDPPort(t)
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), port)

	tr := New(nil)
	defer tr.Close()

	received := make(chan []byte, 1)
	closer, err := tr.RegisterReceiver(loc, func(_ locator.Locator, payload []byte) {
		received <- payload
	})
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, tr.Send(context.Background(), loc, []byte("hello")))

	select {
	case payload := <-received:
		assert.Equal(t, "hello", string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	port := freeUDPPort(t)
	loc := locator.FromUDPv4(net.IPv4(127, 0, 0, 1), port)

	tr := New(nil)
	received := make(chan []byte, 1)
	_, err := tr.RegisterReceiver(loc, func(_ locator.Locator, payload []byte) {
		received <- payload
	})
	require.NoError(t, err)

	require.NoError(t, tr.Close())

	// Sending to a closed receiver must not deliver or panic: a delivery on
	// received fails the test, and reaching the timeout below is the pass.
	_ = tr.Send(context.Background(), loc, []byte("ignored"))

	select {
	case <-received:
		t.Fatal("expected no delivery after Close")
	case <-time.After(200 * time.Millisecond):
	}
}
