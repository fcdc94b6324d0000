// Package dynamic implements the Dynamic EDP variant (§4.4.1): endpoint
// descriptors are exchanged over four reliable built-in endpoints instead
// of being preloaded from XML.
package dynamic

import (
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/runconduit/rtps-discovery/internal/builtin"
	"github.com/runconduit/rtps-discovery/internal/wire/paramlist"
	"github.com/runconduit/rtps-discovery/pkg/edp"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
)

// Port offsets of the four built-in SEDP endpoints relative to a
// participant's metatraffic unicast port. Real RTPS demultiplexes built-in
// traffic by the submessage's writer entity id; that codec is explicitly
// out of scope here (§1), so this reference implementation demultiplexes
// by port instead, one per built-in reader.
const (
	pubReaderPortOffset = 1
	subReaderPortOffset = 2
)

// Config selects which of the four built-in endpoints this EDP runs.
type Config struct {
	UsePubWriterSubReader bool
	UsePubReaderSubWriter bool
}

type remoteAssignment struct {
	pubReaderLoc locator.Locator
	subReaderLoc locator.Locator
	hasPub       bool
	hasSub       bool
}

// EDP is the dynamic Endpoint Discovery Protocol implementation.
type EDP struct {
	host   edp.Host
	order  binary.ByteOrder
	config Config

	pubWriter *builtin.Writer
	pubReader *builtin.Reader
	subWriter *builtin.Writer
	subReader *builtin.Reader

	closers []io.Closer

	mu           sync.Mutex
	localWriters map[guid.GUID]rtpsiface.LocalWriter
	localReaders map[guid.GUID]rtpsiface.LocalReader
	remotes      map[guid.GuidPrefix]*remoteAssignment
}

// New constructs a dynamic EDP bound to host's transport, listening on the
// local participant's metatraffic unicast locator's host with the two
// fixed SEDP port offsets.
func New(host edp.Host, order binary.ByteOrder, config Config, localUnicast locator.Locator) (*EDP, error) {
	e := &EDP{
		host:         host,
		order:        order,
		config:       config,
		localWriters: make(map[guid.GUID]rtpsiface.LocalWriter),
		localReaders: make(map[guid.GUID]rtpsiface.LocalReader),
		remotes:      make(map[guid.GuidPrefix]*remoteAssignment),
	}

	t := host.Transport()

	if config.UsePubWriterSubReader {
		e.pubWriter = builtin.NewWriter(t)

		e.subReader = builtin.NewReader()
		e.subReader.SetListener(e.onInboundReaderData)
		loc := offsetLocator(localUnicast, subReaderPortOffset)
		closer, err := e.subReader.Bind(t, loc)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, closer)
	}

	if config.UsePubReaderSubWriter {
		e.subWriter = builtin.NewWriter(t)

		e.pubReader = builtin.NewReader()
		e.pubReader.SetListener(e.onInboundWriterData)
		loc := offsetLocator(localUnicast, pubReaderPortOffset)
		closer, err := e.pubReader.Bind(t, loc)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, closer)
	}

	return e, nil
}

// AvailableBuiltinEndpoints reports the bits the local participant should
// advertise in its SPDP announcement for the endpoints this EDP runs.
func (e *EDP) AvailableBuiltinEndpoints() guid.BuiltinEndpointSet {
	var set guid.BuiltinEndpointSet
	if e.config.UsePubWriterSubReader {
		set |= guid.DiscPublicationAnnouncer | guid.DiscSubscriptionDetector
	}
	if e.config.UsePubReaderSubWriter {
		set |= guid.DiscPublicationDetector | guid.DiscSubscriptionAnnouncer
	}
	return set
}

// Close tears down the bound built-in readers.
func (e *EDP) Close() error {
	for _, c := range e.closers {
		_ = c.Close()
	}
	return nil
}

func offsetLocator(base locator.Locator, offset uint32) locator.Locator {
	l := base
	l.Port += offset
	return l
}

// LocalWriterMatching implements §4.4.1's local_writer_matching.
func (e *EDP) LocalWriterMatching(w rtpsiface.LocalWriter, firstTime bool) error {
	wd := proxy.DiscoveredWriterData{
		GUID:              w.GUID(),
		TopicName:         w.TopicName(),
		TypeName:          w.TypeName(),
		TopicKind:         w.TopicKind(),
		UnicastLocators:   w.UnicastLocators(),
		MulticastLocators: w.MulticastLocators(),
		QoS:               w.QoS(),
		IsAlive:           true,
		UserDefinedID:     w.UserDefinedID(),
	}
	wd.ParticipantGUIDPrefix = e.host.LocalPrefix()

	if firstTime {
		local, _ := e.host.Store().GetOrInsertParticipant(e.host.LocalPrefix())
		_, _ = e.host.Store().UpsertWriter(local.GUIDPrefix, wd)

		e.mu.Lock()
		e.localWriters[wd.GUID] = w
		e.mu.Unlock()
	}

	if e.pubWriter != nil {
		pl := paramlist.WriterDataToParameters(e.order, wd)
		_ = e.pubWriter.NewChange(context.Background(), wd.GUID, pl.Encode(e.order))
	}

	for _, remote := range e.host.Store().IterParticipants() {
		if remote.GUIDPrefix == e.host.LocalPrefix() {
			continue
		}
		for _, rdata := range remote.Readers {
			edp.PairLocalWriterWithDiscoveredReader(w, rdata)
		}
	}
	return nil
}

// LocalReaderMatching implements §4.4.1's local_reader_matching.
func (e *EDP) LocalReaderMatching(r rtpsiface.LocalReader, firstTime bool) error {
	rd := proxy.DiscoveredReaderData{
		GUID:              r.GUID(),
		TopicName:         r.TopicName(),
		TypeName:          r.TypeName(),
		TopicKind:         r.TopicKind(),
		UnicastLocators:   r.UnicastLocators(),
		MulticastLocators: r.MulticastLocators(),
		QoS:               r.QoS(),
		IsAlive:           true,
		UserDefinedID:     r.UserDefinedID(),
	}
	rd.ParticipantGUIDPrefix = e.host.LocalPrefix()

	if firstTime {
		local, _ := e.host.Store().GetOrInsertParticipant(e.host.LocalPrefix())
		_, _ = e.host.Store().UpsertReader(local.GUIDPrefix, rd)

		e.mu.Lock()
		e.localReaders[rd.GUID] = r
		e.mu.Unlock()
	}

	if e.subWriter != nil {
		pl := paramlist.ReaderDataToParameters(e.order, rd)
		_ = e.subWriter.NewChange(context.Background(), rd.GUID, pl.Encode(e.order))
	}

	for _, remote := range e.host.Store().IterParticipants() {
		if remote.GUIDPrefix == e.host.LocalPrefix() {
			continue
		}
		for _, wdata := range remote.Writers {
			edp.PairLocalReaderWithDiscoveredWriter(r, wdata)
		}
	}
	return nil
}

// AssignRemoteEndpoints implements §4.4.1's bootstrap step: install the
// peer's SEDP reader locators onto our matching SEDP writers.
func (e *EDP) AssignRemoteEndpoints(p *proxy.ParticipantProxy) error {
	if len(p.MetatrafficUnicastLocators) == 0 {
		return nil
	}
	base := p.MetatrafficUnicastLocators[0]
	a := &remoteAssignment{}

	if p.AvailableBuiltinEndpoints.Has(guid.DiscPublicationDetector) && e.pubWriter != nil {
		a.pubReaderLoc = offsetLocator(base, pubReaderPortOffset)
		a.hasPub = true
		_ = e.pubWriter.AddReaderLocator(a.pubReaderLoc)
	}
	if p.AvailableBuiltinEndpoints.Has(guid.DiscSubscriptionDetector) && e.subWriter != nil {
		a.subReaderLoc = offsetLocator(base, subReaderPortOffset)
		a.hasSub = true
		_ = e.subWriter.AddReaderLocator(a.subReaderLoc)
	}

	e.mu.Lock()
	e.remotes[p.GUIDPrefix] = a
	e.mu.Unlock()
	return nil
}

// RemoveRemoteEndpoints implements §4.4.1's remove_remote_endpoints; safe
// to call even if some bindings were never installed.
func (e *EDP) RemoveRemoteEndpoints(prefix guid.GuidPrefix) error {
	e.mu.Lock()
	a, ok := e.remotes[prefix]
	delete(e.remotes, prefix)
	e.mu.Unlock()
	if !ok {
		return nil
	}

	if a.hasPub && e.pubWriter != nil {
		_ = e.pubWriter.RemoveReaderLocator(a.pubReaderLoc)
	}
	if a.hasSub && e.subWriter != nil {
		_ = e.subWriter.RemoveReaderLocator(a.subReaderLoc)
	}
	return nil
}

// UnmatchRemoteParticipant implements §4.3's cascade: every remote writer
// of removed is unbound from every local reader, and every remote reader
// from every local writer.
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

// onInboundWriterData handles a cache change on the Publications Reader:
// §4.4.1's inbound descriptor handling for DiscoveredWriterData.
func (e *EDP) onInboundWriterData(_ locator.Locator, payload []byte) {
	pl, err := paramlist.Decode(payload, e.order)
	if err != nil {
		return
	}
	wd, err := paramlist.ParametersToWriterData(e.order, pl)
	if err != nil {
		return
	}
	if wd.ParticipantGUIDPrefix == e.host.LocalPrefix() {
		return
	}

	e.host.Lock()
	participant, ok := e.host.Store().Get(wd.ParticipantGUIDPrefix)
	var result proxy.UpsertResult
	if ok {
		result, err = e.host.Store().UpsertWriter(participant.GUIDPrefix, wd)
	}
	e.host.Unlock()
	if !ok || err != nil {
		return
	}

	e.mu.Lock()
	readers := make([]rtpsiface.LocalReader, 0, len(e.localReaders))
	for _, r := range e.localReaders {
		readers = append(readers, r)
	}
	e.mu.Unlock()

	if result == proxy.Inserted || result == proxy.Updated {
		for _, r := range readers {
			edp.PairLocalReaderWithDiscoveredWriter(r, wd)
		}
	}
}

// onInboundReaderData handles a cache change on the Subscriptions Reader.
func (e *EDP) onInboundReaderData(_ locator.Locator, payload []byte) {
	pl, err := paramlist.Decode(payload, e.order)
	if err != nil {
		return
	}
	rd, err := paramlist.ParametersToReaderData(e.order, pl)
	if err != nil {
		return
	}
	if rd.ParticipantGUIDPrefix == e.host.LocalPrefix() {
		return
	}

	e.host.Lock()
	participant, ok := e.host.Store().Get(rd.ParticipantGUIDPrefix)
	var result proxy.UpsertResult
	if ok {
		result, err = e.host.Store().UpsertReader(participant.GUIDPrefix, rd)
	}
	e.host.Unlock()
	if !ok || err != nil {
		return
	}

	e.mu.Lock()
	writers := make([]rtpsiface.LocalWriter, 0, len(e.localWriters))
	for _, w := range e.localWriters {
		writers = append(writers, w)
	}
	e.mu.Unlock()

	if result == proxy.Inserted || result == proxy.Updated {
		for _, w := range writers {
			edp.PairLocalWriterWithDiscoveredReader(w, rd)
		}
	}
}
