// Package guid defines the RTPS GUID, GuidPrefix and EntityId types and the
// well-known entity ids used by the discovery built-in endpoints.
package guid

import "fmt"

// GuidPrefix identifies a participant. It is unique per participant on the
// network.
type GuidPrefix [12]byte

func (p GuidPrefix) String() string {
	return fmt.Sprintf("%x", [12]byte(p))
}

// IsZero reports whether p is the all-zero prefix, used as a sentinel for
// "no participant yet".
func (p GuidPrefix) IsZero() bool {
	return p == GuidPrefix{}
}

// EntityId identifies an endpoint within a participant. The last byte
// carries kind bits.
type EntityId [4]byte

func (e EntityId) String() string {
	return fmt.Sprintf("%x", [4]byte(e))
}

// Kind returns the entity kind byte (the last byte of the id).
func (e EntityId) Kind() byte {
	return e[3]
}

// GUID is the 16-byte identifier of a participant or endpoint.
type GUID struct {
	Prefix GuidPrefix
	Entity EntityId
}

func (g GUID) String() string {
	return fmt.Sprintf("%s:%s", g.Prefix, g.Entity)
}

// IsZero reports whether g is the zero value.
func (g GUID) IsZero() bool {
	return g.Prefix.IsZero() && g.Entity == EntityId{}
}

// Entity kind bits (last byte of EntityId), per the RTPS wire spec.
const (
	KindWriterWithKey byte = 0x02
	KindWriterNoKey   byte = 0x03
	KindReaderNoKey   byte = 0x04
	KindReaderWithKey byte = 0x07

	// builtin entities carry the 0xc0 bit set in addition to their kind bits.
	builtinBit byte = 0xc0
)

// IsBuiltin reports whether the entity id names a built-in discovery
// endpoint rather than a user endpoint.
func (e EntityId) IsBuiltin() bool {
	return e[3]&builtinBit == builtinBit
}

// Well-known built-in entity ids, as assigned by the RTPS specification.
var (
	EntityIDParticipant = EntityId{0x00, 0x00, 0x01, 0xc1}

	EntityIDSPDPParticipantWriter = EntityId{0x00, 0x01, 0x00, 0xc2}
	EntityIDSPDPParticipantReader = EntityId{0x00, 0x01, 0x00, 0xc7}

	EntityIDSEDPPublicationsWriter  = EntityId{0x00, 0x00, 0x03, 0xc2}
	EntityIDSEDPPublicationsReader  = EntityId{0x00, 0x00, 0x03, 0xc7}
	EntityIDSEDPSubscriptionsWriter = EntityId{0x00, 0x00, 0x04, 0xc2}
	EntityIDSEDPSubscriptionsReader = EntityId{0x00, 0x00, 0x04, 0xc7}

	EntityIDParticipantMessageWriter = EntityId{0x00, 0x02, 0x00, 0xc2}
	EntityIDParticipantMessageReader = EntityId{0x00, 0x02, 0x00, 0xc7}
)

// TopicKind distinguishes keyed from unkeyed topics.
type TopicKind int

const (
	NoKey TopicKind = iota
	WithKey
)

// TopicKindFromWriterEntityKind classifies a writer's topic kind from the
// last byte of its entity id, per §4.4.1 of the discovery wire format.
func TopicKindFromWriterEntityKind(kind byte) (TopicKind, bool) {
	switch kind & 0x0f {
	case KindWriterNoKey:
		return NoKey, true
	case KindWriterWithKey:
		return WithKey, true
	default:
		return NoKey, false
	}
}

// TopicKindFromReaderEntityKind classifies a reader's topic kind from the
// last byte of its entity id.
func TopicKindFromReaderEntityKind(kind byte) (TopicKind, bool) {
	switch kind & 0x0f {
	case KindReaderNoKey:
		return NoKey, true
	case KindReaderWithKey:
		return WithKey, true
	default:
		return NoKey, false
	}
}

// BuiltinEndpointSet is the bitmask advertised by a participant naming which
// built-in discovery endpoints it hosts.
type BuiltinEndpointSet uint32

const (
	DiscParticipantAnnouncer BuiltinEndpointSet = 1 << iota
	DiscParticipantDetector
	DiscPublicationAnnouncer
	DiscPublicationDetector
	DiscSubscriptionAnnouncer
	DiscSubscriptionDetector
	_ // reserved (participant proxy announcer/detector, unused here)
	_
	_
	_
	BuiltinParticipantMessageWriter
	BuiltinParticipantMessageReader
)

// Has reports whether the set advertises every bit in want.
func (s BuiltinEndpointSet) Has(want BuiltinEndpointSet) bool {
	return s&want == want
}
