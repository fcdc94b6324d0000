// Package locator defines the RTPS Locator type: where to send unicast and
// multicast meta-traffic and user traffic.
package locator

import (
	"fmt"
	"net"
)

// Kind names the transport a locator addresses.
type Kind int32

const (
	KindInvalid Kind = -1
	KindUDPv4   Kind = 1
	KindUDPv6   Kind = 2
)

// Locator is a {kind, port, address} tuple. Address is always stored as the
// 16-byte RTPS representation; for UDPv4 the address occupies the last 4
// bytes.
type Locator struct {
	Kind    Kind
	Port    uint32
	Address [16]byte
}

// DefaultMulticastAddress is the well-known SPDP multicast group.
var DefaultMulticastAddress = net.IPv4(239, 255, 0, 1)

// FromUDPv4 builds a Locator from an IPv4 address and port.
func FromUDPv4(ip net.IP, port uint32) Locator {
	var loc Locator
	loc.Kind = KindUDPv4
	loc.Port = port
	v4 := ip.To4()
	copy(loc.Address[12:], v4)
	return loc
}

// IP returns the net.IP this locator addresses, for UDPv4/UDPv6 kinds.
func (l Locator) IP() net.IP {
	switch l.Kind {
	case KindUDPv4:
		return net.IPv4(l.Address[12], l.Address[13], l.Address[14], l.Address[15])
	case KindUDPv6:
		ip := make(net.IP, 16)
		copy(ip, l.Address[:])
		return ip
	default:
		return nil
	}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s:%d", l.IP(), l.Port)
}

// Equal reports whether two locators name the same endpoint.
func (l Locator) Equal(other Locator) bool {
	return l.Kind == other.Kind && l.Port == other.Port && l.Address == other.Address
}

// ContainsLocator reports whether loc is present in list.
func ContainsLocator(list []Locator, loc Locator) bool {
	for _, l := range list {
		if l.Equal(loc) {
			return true
		}
	}
	return false
}
