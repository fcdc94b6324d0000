package proxy

import (
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// UpsertResult names whether an upsert inserted a new record or updated an
// existing one in place.
type UpsertResult int

const (
	Inserted UpsertResult = iota
	Updated
)

// Store is the live catalogue of known participants. It is not safe for
// concurrent use by itself: callers hold the PDP lock across every
// operation, per §5.
type Store struct {
	byPrefix map[guid.GuidPrefix]*ParticipantProxy
	// order preserves insertion order for deterministic iteration in tests
	// and debug dumps.
	order []guid.GuidPrefix
}

// NewStore returns an empty proxy store.
func NewStore() *Store {
	return &Store{byPrefix: make(map[guid.GuidPrefix]*ParticipantProxy)}
}

// GetOrInsertParticipant returns the proxy for prefix, creating an empty
// one if none exists yet.
func (s *Store) GetOrInsertParticipant(prefix guid.GuidPrefix) (*ParticipantProxy, bool) {
	if p, ok := s.byPrefix[prefix]; ok {
		return p, false
	}
	p := &ParticipantProxy{GUIDPrefix: prefix}
	s.byPrefix[prefix] = p
	s.order = append(s.order, prefix)
	return p, true
}

// Get returns the proxy for prefix, if known.
func (s *Store) Get(prefix guid.GuidPrefix) (*ParticipantProxy, bool) {
	p, ok := s.byPrefix[prefix]
	return p, ok
}

// UpsertWriter inserts or overwrites wd under the participant named by
// participantPrefix, matched by full GUID, per invariant 1.
func (s *Store) UpsertWriter(participantPrefix guid.GuidPrefix, wd DiscoveredWriterData) (UpsertResult, error) {
	p, ok := s.byPrefix[participantPrefix]
	if !ok {
		return 0, rtpserr.ErrUnknownParticipant
	}
	for i := range p.Writers {
		if p.Writers[i].GUID == wd.GUID {
			p.Writers[i] = wd
			return Updated, nil
		}
	}
	p.Writers = append(p.Writers, wd)
	return Inserted, nil
}

// UpsertReader inserts or overwrites rd, symmetric to UpsertWriter.
func (s *Store) UpsertReader(participantPrefix guid.GuidPrefix, rd DiscoveredReaderData) (UpsertResult, error) {
	p, ok := s.byPrefix[participantPrefix]
	if !ok {
		return 0, rtpserr.ErrUnknownParticipant
	}
	for i := range p.Readers {
		if p.Readers[i].GUID == rd.GUID {
			p.Readers[i] = rd
			return Updated, nil
		}
	}
	p.Readers = append(p.Readers, rd)
	return Inserted, nil
}

// RemoveParticipant detaches and returns the proxy named by prefix so the
// caller can iterate its endpoints for cascade cleanup (§4.3).
func (s *Store) RemoveParticipant(prefix guid.GuidPrefix) (*ParticipantProxy, bool) {
	p, ok := s.byPrefix[prefix]
	if !ok {
		return nil, false
	}
	delete(s.byPrefix, prefix)
	for i, pfx := range s.order {
		if pfx == prefix {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, true
}

// IterParticipants returns a snapshot slice of every known proxy, in
// insertion order.
func (s *Store) IterParticipants() []*ParticipantProxy {
	out := make([]*ParticipantProxy, 0, len(s.order))
	for _, prefix := range s.order {
		out = append(out, s.byPrefix[prefix])
	}
	return out
}

// IterEndpointsOf returns the writers and readers of the participant named
// by prefix, or nil, nil if it is unknown.
func (s *Store) IterEndpointsOf(prefix guid.GuidPrefix) ([]DiscoveredWriterData, []DiscoveredReaderData) {
	p, ok := s.byPrefix[prefix]
	if !ok {
		return nil, nil
	}
	return p.Writers, p.Readers
}

// Len returns the number of known participants, including the local one
// once PDP has inserted it.
func (s *Store) Len() int {
	return len(s.byPrefix)
}
