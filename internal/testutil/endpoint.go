package testutil

import (
	"sync"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/qos"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
)

// FakeWriter is a minimal rtpsiface.LocalWriter recording every call EDP
// matching makes against it.
type FakeWriter struct {
	guid          guid.GUID
	topic         string
	typeName      string
	topicKind     guid.TopicKind
	qos           qos.Policies
	userDefinedID uint16

	mu            sync.Mutex
	readerLocs    []locator.Locator
	matchedAdd    []rtpsiface.ReaderProxy
	matchedRemove []guid.GUID
	matched       []guid.GUID
}

// NewFakeWriter returns a FakeWriter identified by g on topic/typeName. Its
// topic kind is classified from g's entity kind bits (NoKey when they name
// neither writer kind), as the wire decoder does for remote writers.
func NewFakeWriter(g guid.GUID, topic, typeName string) *FakeWriter {
	kind, _ := guid.TopicKindFromWriterEntityKind(g.Entity.Kind())
	return &FakeWriter{guid: g, topic: topic, typeName: typeName, topicKind: kind, qos: qos.Default()}
}

func (w *FakeWriter) GUID() guid.GUID                       { return w.guid }
func (w *FakeWriter) TopicName() string                     { return w.topic }
func (w *FakeWriter) TypeName() string                      { return w.typeName }
func (w *FakeWriter) TopicKind() guid.TopicKind              { return w.topicKind }
func (w *FakeWriter) StateKind() rtpsiface.StateKind         { return rtpsiface.Stateful }
func (w *FakeWriter) QoS() qos.Policies                      { return w.qos }
func (w *FakeWriter) UnicastLocators() []locator.Locator     { return nil }
func (w *FakeWriter) MulticastLocators() []locator.Locator   { return nil }
func (w *FakeWriter) UserDefinedID() uint16                  { return w.userDefinedID }

// SetUserDefinedID configures the value UserDefinedID reports, for tests
// of the Static EDP's id-gated matching.
func (w *FakeWriter) SetUserDefinedID(id uint16) { w.userDefinedID = id }

func (w *FakeWriter) AddReaderLocator(loc locator.Locator) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readerLocs = append(w.readerLocs, loc)
	return nil
}

func (w *FakeWriter) RemoveReaderLocator(locator.Locator) error { return nil }

func (w *FakeWriter) MatchedReaderAdd(rp rtpsiface.ReaderProxy) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.matchedAdd = append(w.matchedAdd, rp)
	return nil
}

func (w *FakeWriter) MatchedReaderRemove(remote guid.GUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.matchedRemove = append(w.matchedRemove, remote)
	return nil
}

func (w *FakeWriter) OnPublicationMatched(remote guid.GUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.matched = append(w.matched, remote)
}

// Matched returns every remote GUID OnPublicationMatched was called with.
func (w *FakeWriter) Matched() []guid.GUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]guid.GUID(nil), w.matched...)
}

// MatchedRemoved returns every remote GUID MatchedReaderRemove was called
// with.
func (w *FakeWriter) MatchedRemoved() []guid.GUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]guid.GUID(nil), w.matchedRemove...)
}

// FakeReader is the reader-side symmetric counterpart of FakeWriter.
type FakeReader struct {
	guid          guid.GUID
	topic         string
	typeName      string
	topicKind     guid.TopicKind
	qos           qos.Policies
	userDefinedID uint16

	mu            sync.Mutex
	matchedAdd    []rtpsiface.WriterProxy
	matchedRemove []guid.GUID
	matched       []guid.GUID
}

// NewFakeReader returns a FakeReader identified by g on topic/typeName. Its
// topic kind is classified from g's entity kind bits (NoKey when they name
// neither reader kind), as the wire decoder does for remote readers.
func NewFakeReader(g guid.GUID, topic, typeName string) *FakeReader {
	kind, _ := guid.TopicKindFromReaderEntityKind(g.Entity.Kind())
	return &FakeReader{guid: g, topic: topic, typeName: typeName, topicKind: kind, qos: qos.Default()}
}

func (r *FakeReader) GUID() guid.GUID                     { return r.guid }
func (r *FakeReader) TopicName() string                   { return r.topic }
func (r *FakeReader) TypeName() string                    { return r.typeName }
func (r *FakeReader) TopicKind() guid.TopicKind            { return r.topicKind }
func (r *FakeReader) StateKind() rtpsiface.StateKind       { return rtpsiface.Stateful }
func (r *FakeReader) QoS() qos.Policies                    { return r.qos }
func (r *FakeReader) UnicastLocators() []locator.Locator   { return nil }
func (r *FakeReader) MulticastLocators() []locator.Locator { return nil }
func (r *FakeReader) UserDefinedID() uint16                { return r.userDefinedID }

// SetUserDefinedID configures the value UserDefinedID reports, for tests
// of the Static EDP's id-gated matching.
func (r *FakeReader) SetUserDefinedID(id uint16) { r.userDefinedID = id }

func (r *FakeReader) MatchedWriterAdd(wp rtpsiface.WriterProxy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchedAdd = append(r.matchedAdd, wp)
	return nil
}

func (r *FakeReader) MatchedWriterRemove(remote guid.GUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchedRemove = append(r.matchedRemove, remote)
	return nil
}

func (r *FakeReader) OnSubscriptionMatched(remote guid.GUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matched = append(r.matched, remote)
}

// Matched returns every remote GUID OnSubscriptionMatched was called with.
func (r *FakeReader) Matched() []guid.GUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]guid.GUID(nil), r.matched...)
}

// MatchedRemoved returns every remote GUID MatchedWriterRemove was called
// with.
func (r *FakeReader) MatchedRemoved() []guid.GUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]guid.GUID(nil), r.matchedRemove...)
}
