// Package udp is the reference Transport implementation: it sends and
// receives discovery payloads over real UDP sockets, joining multicast
// groups with golang.org/x/net/ipv4. It is one concrete implementation of
// the transport.Transport interface (§6); the PDP/EDP never import it
// directly.
package udp

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/net/ipv4"

	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

const maxDatagramSize = 1 << 16

// Transport is a transport.Transport that opens one listening UDP socket
// per RegisterReceiver call; Send dials a short-lived socket per datagram.
type Transport struct {
	mu      sync.Mutex
	iface   *net.Interface
	closers []io.Closer
}

// New returns a Transport that joins multicast groups on the given network
// interface (nil selects the system default).
func New(iface *net.Interface) *Transport {
	return &Transport{iface: iface}
}

func (t *Transport) Send(ctx context.Context, loc locator.Locator, payload []byte) error {
	addr := &net.UDPAddr{IP: loc.IP(), Port: int(loc.Port)}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return fmt.Errorf("udp transport: dial %s: %w", addr, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	_, err = conn.Write(payload)
	return err
}

func (t *Transport) RegisterReceiver(loc locator.Locator, fn transport.ReceiveFunc) (io.Closer, error) {
	ip := loc.IP()
	var conn *net.UDPConn
	var err error

	if ip.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp4", t.iface, &net.UDPAddr{IP: ip, Port: int(loc.Port)})
		if err != nil {
			return nil, fmt.Errorf("udp transport: listen multicast %s: %w", loc, err)
		}
		pc := ipv4.NewPacketConn(conn)
		if t.iface != nil {
			if err := pc.JoinGroup(t.iface, &net.UDPAddr{IP: ip}); err != nil {
				conn.Close()
				return nil, fmt.Errorf("udp transport: join group %s: %w", loc, err)
			}
		}
	} else {
		conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: ip, Port: int(loc.Port)})
		if err != nil {
			return nil, fmt.Errorf("udp transport: listen %s: %w", loc, err)
		}
	}

	closer := &receiverCloser{conn: conn}
	go t.recvLoop(conn, fn)

	t.mu.Lock()
	t.closers = append(t.closers, closer)
	t.mu.Unlock()

	return closer, nil
}

func (t *Transport) recvLoop(conn *net.UDPConn, fn transport.ReceiveFunc) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		fn(locator.FromUDPv4(from.IP, uint32(from.Port)), payload)
	}
}

// Close shuts down every socket this transport opened.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.closers {
		_ = c.Close()
	}
	t.closers = nil
	return nil
}

type receiverCloser struct {
	conn *net.UDPConn
}

func (r *receiverCloser) Close() error {
	return r.conn.Close()
}
