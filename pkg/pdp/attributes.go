package pdp

import (
	"net"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/runconduit/rtps-discovery/pkg/locator"
)

// DiscoveryAttributes bundles everything PDP.Init needs to bring up the
// local participant (§4.3, §6): domain/participant identity, the seed
// peer list, the two periodic intervals, and the EDP variant selection.
type DiscoveryAttributes struct {
	DomainID        uint32
	ParticipantID   uint32
	ParticipantName string

	// InitialPeers are metatraffic unicast locators of peers to announce
	// to directly until their own locators are learned from the wire.
	InitialPeers []locator.Locator

	MulticastAddress net.IP

	// LocalAddress is the interface address advertised in this
	// participant's metatraffic locators. Reference deployments running
	// in a single host or a test harness leave this at loopback.
	LocalAddress net.IP

	LeaseDuration  time.Duration
	ResendInterval time.Duration

	ProtocolVersion [2]byte
	VendorID        [2]byte

	ExpectsInlineQoS bool

	UseStaticEDP          bool
	StaticEDPXMLPath      string
	UsePubWriterSubReader bool
	UsePubReaderSubWriter bool
}

// DefaultDiscoveryAttributes returns the attributes used when the config
// loader (C9) has nothing more specific to say: dynamic EDP with both
// built-in pairs enabled, a 10s lease and a 2s resend, matching the
// defaults of the reference RTPS implementations this module is modeled
// on.
func DefaultDiscoveryAttributes() DiscoveryAttributes {
	return DiscoveryAttributes{
		MulticastAddress:      locator.DefaultMulticastAddress,
		LocalAddress:          net.IPv4(127, 0, 0, 1),
		LeaseDuration:         10 * time.Second,
		ResendInterval:        2 * time.Second,
		ProtocolVersion:       [2]byte{2, 3},
		UsePubWriterSubReader: true,
		UsePubReaderSubWriter: true,
	}
}

// Validate reports every problem with a, aggregated via go-multierror so a
// caller (PDP.Init, or the config loader) can report all of them at once
// instead of fixing one flag at a time.
func (a DiscoveryAttributes) Validate() error {
	var errs *multierror.Error
	if a.ParticipantName == "" {
		errs = multierror.Append(errs, errAttr("participant name must not be empty"))
	}
	if a.LeaseDuration <= 0 {
		errs = multierror.Append(errs, errAttr("lease duration must be positive"))
	}
	if a.ResendInterval <= 0 {
		errs = multierror.Append(errs, errAttr("resend interval must be positive"))
	}
	if a.MulticastAddress == nil {
		errs = multierror.Append(errs, errAttr("multicast address must be set"))
	}
	if a.UseStaticEDP && a.StaticEDPXMLPath == "" {
		errs = multierror.Append(errs, errAttr("static EDP selected but no XML path given"))
	}
	if !a.UseStaticEDP && !a.UsePubWriterSubReader && !a.UsePubReaderSubWriter {
		errs = multierror.Append(errs, errAttr("dynamic EDP selected with neither built-in pair enabled"))
	}
	return errs.ErrorOrNil()
}

type attrError string

func (e attrError) Error() string { return string(e) }

func errAttr(msg string) error { return attrError(msg) }
