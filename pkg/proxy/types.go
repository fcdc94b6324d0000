// Package proxy holds the discovery data model (§3): ParticipantProxy and
// its nested endpoint proxies, plus the in-memory Store that catalogues
// every known participant. The store performs no matching or I/O; it is a
// pure container that keeps endpoint GUIDs unique within each
// participant's lists. It does not check that an endpoint's GUID prefix
// equals the prefix of the participant it is filed under.
package proxy

import (
	"time"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/qos"
)

// ParticipantProxy is the in-memory representation of a known participant,
// including the local process's own participant.
type ParticipantProxy struct {
	GUIDPrefix      guid.GuidPrefix
	VendorID        [2]byte
	ProtocolVersion [2]byte // major, minor

	MetatrafficUnicastLocators   []locator.Locator
	MetatrafficMulticastLocators []locator.Locator
	DefaultUnicastLocators       []locator.Locator
	DefaultMulticastLocators     []locator.Locator

	AvailableBuiltinEndpoints guid.BuiltinEndpointSet

	LeaseDuration        time.Duration
	ManualLivelinessCount int32
	ParticipantName      string
	ExpectsInlineQoS     bool

	Writers []DiscoveredWriterData
	Readers []DiscoveredReaderData

	IsAlive bool

	// StaticEndpointIDs maps a user-defined static-EDP endpoint id to the
	// GUID it resolves to locally, carried in a PROPERTY_LIST parameter
	// (§6) when the local process uses the Static EDP.
	StaticEndpointIDs map[uint16]guid.GUID
}

// DiscoveredWriterData is the discovery record for a writer endpoint,
// either a remote one learned over meta-traffic/static XML, or the local
// process's own, built for outbound announcement.
type DiscoveredWriterData struct {
	GUID                 guid.GUID
	ParticipantGUIDPrefix guid.GuidPrefix
	TopicName            string
	TypeName             string
	TopicKind            guid.TopicKind

	UnicastLocators   []locator.Locator
	MulticastLocators []locator.Locator

	QoS qos.Policies

	IsAlive bool

	// UserDefinedID is non-zero only for endpoints declared by the Static
	// EDP's XML file.
	UserDefinedID uint16

	// Dirty tracks which QoS policies changed since the last successful
	// parameter-list encode (§9 "QoS hasChanged flag"). Only meaningful
	// for the local process's own writers.
	Dirty qos.DirtySet
}

// DiscoveredReaderData is the discovery record for a reader endpoint.
type DiscoveredReaderData struct {
	GUID                 guid.GUID
	ParticipantGUIDPrefix guid.GuidPrefix
	TopicName            string
	TypeName             string
	TopicKind            guid.TopicKind

	UnicastLocators   []locator.Locator
	MulticastLocators []locator.Locator

	ExpectsInlineQoS bool
	QoS              qos.Policies

	IsAlive bool

	UserDefinedID uint16

	Dirty qos.DirtySet
}

// Matches reports whether a writer and reader descriptor may be paired:
// identical topic name, type name, topic kind, and mutually compatible
// reliability (§4.4.1, invariant 5).
func Matches(w DiscoveredWriterData, r DiscoveredReaderData) bool {
	if w.TopicName != r.TopicName || w.TypeName != r.TypeName || w.TopicKind != r.TopicKind {
		return false
	}
	return qos.CompatibleReliability(w.QoS.Reliability.Kind, r.QoS.Reliability.Kind)
}
