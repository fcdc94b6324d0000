// Package static implements the Static EDP variant (§4.4.2): endpoint
// descriptors are preloaded from an XML file instead of exchanged over
// reliable meta-traffic.
package static

import (
	"crypto/sha256"
	"sync"

	"github.com/runconduit/rtps-discovery/pkg/edp"
	"github.com/runconduit/rtps-discovery/pkg/edp/staticxml"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/qos"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
)

// EDP is the static Endpoint Discovery Protocol implementation.
type EDP struct {
	host edp.Host

	mu                 sync.Mutex
	localWriters       map[guid.GUID]rtpsiface.LocalWriter
	localReaders       map[guid.GUID]rtpsiface.LocalReader
	localByUserID      map[uint16]staticxml.Endpoint
}

// New loads doc, merges the participant named localName into the local
// participant proxy, and pre-populates every other participant as a
// remote proxy with is_alive=true, per §4.4.2.
func New(host edp.Host, doc *staticxml.Document, localName string) (*EDP, error) {
	e := &EDP{
		host:          host,
		localWriters:  make(map[guid.GUID]rtpsiface.LocalWriter),
		localReaders:  make(map[guid.GUID]rtpsiface.LocalReader),
		localByUserID: make(map[uint16]staticxml.Endpoint),
	}

	for _, p := range doc.Participants {
		if p.Name == localName {
			if err := e.mergeLocal(p); err != nil {
				return nil, err
			}
			continue
		}
		if err := e.seedRemote(p); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func derivePrefix(name string) guid.GuidPrefix {
	sum := sha256.Sum256([]byte(name))
	var prefix guid.GuidPrefix
	copy(prefix[:], sum[:12])
	return prefix
}

func entityID(id uint16, isWriter bool, kind guid.TopicKind) guid.EntityId {
	var e guid.EntityId
	e[1] = byte(id >> 8)
	e[2] = byte(id)
	switch {
	case isWriter && kind == guid.WithKey:
		e[3] = guid.KindWriterWithKey
	case isWriter:
		e[3] = guid.KindWriterNoKey
	case kind == guid.WithKey:
		e[3] = guid.KindReaderWithKey
	default:
		e[3] = guid.KindReaderNoKey
	}
	return e
}

func endpointQoS(xe staticxml.Endpoint) qos.Policies {
	p := qos.Default()
	if xe.ReliabilityKind == "RELIABLE" {
		p.Reliability.Kind = qos.Reliable
	}
	return p
}

func (e *EDP) mergeLocal(p staticxml.Participant) error {
	prefix := e.host.LocalPrefix()
	local, _ := e.host.Store().GetOrInsertParticipant(prefix)

	for _, xe := range p.Endpoints {
		kind, err := staticxml.ParseTopicKind(xe.EffectiveTopicKind())
		if err != nil {
			return err
		}
		e.localByUserID[xe.ID] = xe

		unicastLocs, multicastLocs, err := resolveLocators(xe)
		if err != nil {
			return err
		}

		switch xe.Type {
		case "WRITER":
			wd := proxy.DiscoveredWriterData{
				GUID:                  guid.GUID{Prefix: prefix, Entity: entityID(xe.ID, true, kind)},
				ParticipantGUIDPrefix: prefix,
				TopicName:             xe.EffectiveTopicName(),
				TypeName:              xe.EffectiveTypeName(),
				TopicKind:             kind,
				UnicastLocators:       unicastLocs,
				MulticastLocators:     multicastLocs,
				QoS:                   endpointQoS(xe),
				IsAlive:               true,
				UserDefinedID:         xe.ID,
			}
			_, _ = e.host.Store().UpsertWriter(local.GUIDPrefix, wd)
		case "READER":
			rd := proxy.DiscoveredReaderData{
				GUID:                  guid.GUID{Prefix: prefix, Entity: entityID(xe.ID, false, kind)},
				ParticipantGUIDPrefix: prefix,
				TopicName:             xe.EffectiveTopicName(),
				TypeName:              xe.EffectiveTypeName(),
				TopicKind:             kind,
				UnicastLocators:       unicastLocs,
				MulticastLocators:     multicastLocs,
				QoS:                   endpointQoS(xe),
				IsAlive:               true,
				UserDefinedID:         xe.ID,
				ExpectsInlineQoS:      xe.ExpectsInlineQoS != nil && *xe.ExpectsInlineQoS,
			}
			_, _ = e.host.Store().UpsertReader(local.GUIDPrefix, rd)
		}
	}
	return nil
}

func (e *EDP) seedRemote(p staticxml.Participant) error {
	prefix := derivePrefix(p.Name)
	remote, _ := e.host.Store().GetOrInsertParticipant(prefix)
	remote.IsAlive = true
	remote.ParticipantName = p.Name

	for _, xe := range p.Endpoints {
		kind, err := staticxml.ParseTopicKind(xe.EffectiveTopicKind())
		if err != nil {
			return err
		}
		unicastLocs, multicastLocs, err := resolveLocators(xe)
		if err != nil {
			return err
		}

		switch xe.Type {
		case "WRITER":
			wd := proxy.DiscoveredWriterData{
				GUID:                  guid.GUID{Prefix: prefix, Entity: entityID(xe.ID, true, kind)},
				ParticipantGUIDPrefix: prefix,
				TopicName:             xe.EffectiveTopicName(),
				TypeName:              xe.EffectiveTypeName(),
				TopicKind:             kind,
				UnicastLocators:       unicastLocs,
				MulticastLocators:     multicastLocs,
				QoS:                   endpointQoS(xe),
				IsAlive:               true,
				UserDefinedID:         xe.ID,
			}
			_, _ = e.host.Store().UpsertWriter(remote.GUIDPrefix, wd)
		case "READER":
			rd := proxy.DiscoveredReaderData{
				GUID:                  guid.GUID{Prefix: prefix, Entity: entityID(xe.ID, false, kind)},
				ParticipantGUIDPrefix: prefix,
				TopicName:             xe.EffectiveTopicName(),
				TypeName:              xe.EffectiveTypeName(),
				TopicKind:             kind,
				UnicastLocators:       unicastLocs,
				MulticastLocators:     multicastLocs,
				QoS:                   endpointQoS(xe),
				IsAlive:               true,
				UserDefinedID:         xe.ID,
				ExpectsInlineQoS:      xe.ExpectsInlineQoS != nil && *xe.ExpectsInlineQoS,
			}
			_, _ = e.host.Store().UpsertReader(remote.GUIDPrefix, rd)
		}
	}
	return nil
}

func resolveLocators(xe staticxml.Endpoint) (unicast, multicast []locator.Locator, err error) {
	for _, xl := range xe.UnicastLocators {
		l, err := xl.ToLocator()
		if err != nil {
			return nil, nil, err
		}
		unicast = append(unicast, l)
	}
	for _, xl := range xe.MulticastLocators {
		l, err := xl.ToLocator()
		if err != nil {
			return nil, nil, err
		}
		multicast = append(multicast, l)
	}
	return unicast, multicast, nil
}

// LocalWriterMatching implements the shared Edp contract. Pairing is
// gated on user_defined_id > 0, per §4.4.2; on first registration a local
// writer with a non-zero user-defined id is checked against the XML record
// with that id and any mismatch is logged as a warning without blocking
// creation.
func (e *EDP) LocalWriterMatching(w rtpsiface.LocalWriter, firstTime bool) error {
	if firstTime {
		e.mu.Lock()
		e.localWriters[w.GUID()] = w
		e.mu.Unlock()
		e.checkConsistency(w.UserDefinedID(), w.TopicName(), w.TypeName(), w.TopicKind())
	}
	if w.UserDefinedID() == 0 {
		return nil
	}
	for _, remote := range e.host.Store().IterParticipants() {
		if remote.GUIDPrefix == e.host.LocalPrefix() {
			continue
		}
		for _, rdata := range remote.Readers {
			if rdata.UserDefinedID == 0 {
				continue
			}
			edp.PairLocalWriterWithDiscoveredReader(w, rdata)
		}
	}
	return nil
}

// LocalReaderMatching is the reader-side symmetric operation.
func (e *EDP) LocalReaderMatching(r rtpsiface.LocalReader, firstTime bool) error {
	if firstTime {
		e.mu.Lock()
		e.localReaders[r.GUID()] = r
		e.mu.Unlock()
		e.checkConsistency(r.UserDefinedID(), r.TopicName(), r.TypeName(), r.TopicKind())
	}
	if r.UserDefinedID() == 0 {
		return nil
	}
	for _, remote := range e.host.Store().IterParticipants() {
		if remote.GUIDPrefix == e.host.LocalPrefix() {
			continue
		}
		for _, wdata := range remote.Writers {
			if wdata.UserDefinedID == 0 {
				continue
			}
			edp.PairLocalReaderWithDiscoveredWriter(r, wdata)
		}
	}
	return nil
}

// AssignRemoteEndpoints is a no-op: static discovery has no reliable
// meta-traffic channel to bootstrap.
func (e *EDP) AssignRemoteEndpoints(p *proxy.ParticipantProxy) error {
	return nil
}

// RemoveRemoteEndpoints is a no-op for the same reason.
func (e *EDP) RemoveRemoteEndpoints(prefix guid.GuidPrefix) error {
	return nil
}

// UnmatchRemoteParticipant implements the shared cascade, identical in
// shape to the dynamic variant's.
func (e *EDP) UnmatchRemoteParticipant(removed *proxy.ParticipantProxy) {
	e.mu.Lock()
	readers := make([]rtpsiface.LocalReader, 0, len(e.localReaders))
	for _, r := range e.localReaders {
		readers = append(readers, r)
	}
	writers := make([]rtpsiface.LocalWriter, 0, len(e.localWriters))
	for _, w := range e.localWriters {
		writers = append(writers, w)
	}
	e.mu.Unlock()

	for _, wd := range removed.Writers {
		for _, r := range readers {
			_ = r.MatchedWriterRemove(wd.GUID)
		}
	}
	for _, rd := range removed.Readers {
		for _, w := range writers {
			_ = w.MatchedReaderRemove(rd.GUID)
		}
	}
}

func (e *EDP) checkConsistency(userDefinedID uint16, topicName, typeName string, kind guid.TopicKind) {
	if userDefinedID == 0 {
		return
	}
	xe, ok := e.localByUserID[userDefinedID]
	if !ok {
		return
	}
	log := e.host.Runtime().ComponentLogger("static-edp")
	if xe.EffectiveTopicName() != topicName {
		log.Warnf("static EDP id=%d: topic name mismatch: xml=%q local=%q", userDefinedID, xe.EffectiveTopicName(), topicName)
	}
	if xe.EffectiveTypeName() != typeName {
		log.Warnf("static EDP id=%d: type name mismatch: xml=%q local=%q", userDefinedID, xe.EffectiveTypeName(), typeName)
	}
	if declaredKind, err := staticxml.ParseTopicKind(xe.EffectiveTopicKind()); err == nil && declaredKind != kind {
		log.Warnf("static EDP id=%d: topic kind mismatch: xml=%v local=%v", userDefinedID, declaredKind, kind)
	}
}
