// Package qos models the per-endpoint QoS policies the discovery subsystem
// must carry and compare for compatibility. Policy semantics beyond
// equality/compatibility predicates belong to the (external) writer/reader
// state machines, not here.
package qos

import "time"

// ReliabilityKind is BEST_EFFORT or RELIABLE.
type ReliabilityKind int

const (
	BestEffort ReliabilityKind = iota
	Reliable
)

// DurabilityKind orders durability strength from weakest to strongest.
type DurabilityKind int

const (
	Volatile DurabilityKind = iota
	TransientLocal
	Transient
	Persistent
)

// OwnershipKind is SHARED or EXCLUSIVE.
type OwnershipKind int

const (
	Shared OwnershipKind = iota
	Exclusive
)

// DestinationOrderKind orders samples by reception or by source timestamp.
type DestinationOrderKind int

const (
	ByReceptionTimestamp DestinationOrderKind = iota
	BySourceTimestamp
)

// LivelinessKind names how liveliness is asserted.
type LivelinessKind int

const (
	Automatic LivelinessKind = iota
	ManualByParticipant
	ManualByTopic
)

// PresentationAccessScope names the grouping scope of a PRESENTATION policy.
type PresentationAccessScope int

const (
	InstancePresentation PresentationAccessScope = iota
	TopicPresentation
	GroupPresentation
)

// Reliability is the RELIABILITY policy.
type Reliability struct {
	Kind            ReliabilityKind
	MaxBlockingTime time.Duration
}

// Durability is the DURABILITY policy.
type Durability struct {
	Kind DurabilityKind
}

// Deadline is the DEADLINE policy.
type Deadline struct {
	Period time.Duration
}

// LatencyBudget is the LATENCY_BUDGET policy.
type LatencyBudget struct {
	Duration time.Duration
}

// Liveliness is the LIVELINESS policy.
type Liveliness struct {
	Kind          LivelinessKind
	LeaseDuration time.Duration
}

// Lifespan is the LIFESPAN policy.
type Lifespan struct {
	Duration time.Duration
}

// Ownership is the OWNERSHIP(+STRENGTH) policy.
type Ownership struct {
	Kind     OwnershipKind
	Strength int32
}

// DestinationOrder is the DESTINATION_ORDER policy.
type DestinationOrder struct {
	Kind DestinationOrderKind
}

// Presentation is the PRESENTATION policy.
type Presentation struct {
	AccessScope    PresentationAccessScope
	CoherentAccess bool
	OrderedAccess  bool
}

// Partition is the PARTITION policy.
type Partition struct {
	Names []string
}

// TimeBasedFilter is the TIME_BASED_FILTER policy.
type TimeBasedFilter struct {
	MinimumSeparation time.Duration
}

// DurabilityService is the DURABILITY_SERVICE policy.
type DurabilityService struct {
	ServiceCleanupDelay time.Duration
	HistoryKind         DurabilityKind
	HistoryDepth        int32
	MaxSamples          int32
	MaxInstances        int32
	MaxSamplesPerInstance int32
}

// Policies bundles every endpoint QoS policy the discovery subsystem needs
// to serialize, compare, and re-announce.
type Policies struct {
	Durability        Durability
	DurabilityService DurabilityService
	Reliability       Reliability
	Deadline          Deadline
	LatencyBudget     LatencyBudget
	Liveliness        Liveliness
	Lifespan          Lifespan
	Ownership         Ownership
	DestinationOrder  DestinationOrder
	Presentation      Presentation
	Partition         Partition
	TimeBasedFilter   TimeBasedFilter
	UserData          []byte
	TopicData         []byte
	GroupData         []byte
}

// Default returns the QoS defaults used when a policy is not explicitly set.
func Default() Policies {
	return Policies{
		Reliability: Reliability{Kind: BestEffort},
		Durability:  Durability{Kind: Volatile},
	}
}

// CompatibleReliability reports whether a reader with readerKind can be
// matched to a writer with writerKind: a RELIABLE reader requires a
// RELIABLE writer; a BEST_EFFORT reader accepts either.
func CompatibleReliability(writerKind, readerKind ReliabilityKind) bool {
	if readerKind == Reliable {
		return writerKind == Reliable
	}
	return true
}

// DirtySet tracks which policies have changed since the endpoint's last
// successful parameter-list encode (the "hasChanged" bit of the source
// implementation, reified as an explicit set per the discovery design
// notes). ParameterID is declared by the wire package; DirtySet is defined
// in terms of a bare integer to avoid an import cycle, and the wire package
// converts its ParameterID to uint16 at each lookup.
type DirtySet map[uint16]struct{}

// NewDirtySet returns an empty dirty set.
func NewDirtySet() DirtySet {
	return make(DirtySet)
}

// Mark records pid as dirty.
func (d DirtySet) Mark(pid uint16) {
	d[pid] = struct{}{}
}

// Has reports whether pid is dirty.
func (d DirtySet) Has(pid uint16) bool {
	_, ok := d[pid]
	return ok
}

// Clear empties the set. The parameter-list encoders only read the set;
// none of them clears it after encoding.
func (d DirtySet) Clear() {
	for k := range d {
		delete(d, k)
	}
}
