// Package rtpsiface declares the interfaces the discovery subsystem
// consumes from the (external) endpoint and transport layers, per §6 of
// the design. PDP and EDP depend only on these interfaces; the concrete
// writer/reader state machines, history caches and sockets live outside
// this module.
package rtpsiface

import (
	"context"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/qos"
)

// StateKind distinguishes stateless from stateful endpoints.
type StateKind int

const (
	Stateless StateKind = iota
	Stateful
)

// ReaderProxy is the reliable-stateful writer's view of a matched remote
// reader, enough to target acknack/heartbeat traffic.
type ReaderProxy struct {
	GUID              guid.GUID
	UnicastLocators   []locator.Locator
	MulticastLocators []locator.Locator
	ExpectsInlineQoS  bool
}

// WriterProxy is the reliable-stateful reader's view of a matched remote
// writer.
type WriterProxy struct {
	GUID              guid.GUID
	UnicastLocators   []locator.Locator
	MulticastLocators []locator.Locator
}

// Endpoint is the common surface every local writer/reader exposes to
// discovery.
type Endpoint interface {
	GUID() guid.GUID
	TopicName() string
	TypeName() string
	TopicKind() guid.TopicKind
	StateKind() StateKind
	QoS() qos.Policies
	UnicastLocators() []locator.Locator
	MulticastLocators() []locator.Locator
	UserDefinedID() uint16
}

// LocalWriter is a local writer endpoint as seen by EDP matching.
type LocalWriter interface {
	Endpoint

	// AddReaderLocator installs a best-effort, stateless target for a
	// matched reader that cannot participate in reliable matching.
	AddReaderLocator(loc locator.Locator) error
	RemoveReaderLocator(loc locator.Locator) error

	// MatchedReaderAdd/Remove manage the stateful writer's matched-reader
	// set, used when the writer is Stateful.
	MatchedReaderAdd(rp ReaderProxy) error
	MatchedReaderRemove(remote guid.GUID) error

	// OnPublicationMatched notifies the writer's listener exactly once per
	// newly-established (local, remote) pairing.
	OnPublicationMatched(remote guid.GUID)
}

// LocalReader is a local reader endpoint as seen by EDP matching.
type LocalReader interface {
	Endpoint

	MatchedWriterAdd(wp WriterProxy) error
	MatchedWriterRemove(remote guid.GUID) error

	OnSubscriptionMatched(remote guid.GUID)
}

// BuiltinWriter is the minimal surface the PDP/EDP built-in writers need:
// they allocate a cache change from a serialized payload and queue it for
// every reader-locator currently configured.
type BuiltinWriter interface {
	AddReaderLocator(loc locator.Locator) error
	RemoveReaderLocator(loc locator.Locator) error
	NewChange(ctx context.Context, instance guid.GUID, payload []byte) error
}

// BuiltinReader is the minimal surface the PDP/EDP built-in readers need:
// a callback invoked once per inbound cache change.
type BuiltinReader interface {
	SetListener(fn func(from locator.Locator, payload []byte))
}
