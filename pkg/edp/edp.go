// Package edp declares the Endpoint Discovery Protocol contract shared by
// the dynamic (pkg/edp/dynamic) and static (pkg/edp/static) variants, plus
// the matching-engine helpers both variants call. §9's tagged-variant
// guidance ("Edp = Static | Dynamic") is realized as this plain Go
// interface: Go's dispatch already gives exhaustiveness at the two call
// sites that choose between them (PDP.Init and config validation).
package edp

import (
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

// Edp is the contract both variants implement (§4.4).
type Edp interface {
	LocalWriterMatching(w rtpsiface.LocalWriter, firstTime bool) error
	LocalReaderMatching(r rtpsiface.LocalReader, firstTime bool) error
	AssignRemoteEndpoints(p *proxy.ParticipantProxy) error
	RemoveRemoteEndpoints(prefix guid.GuidPrefix) error

	// UnmatchRemoteParticipant undoes every local/remote pairing involving
	// removed's endpoints, called by PDP.RemoveRemoteParticipant before the
	// proxy is dropped from the store (§4.3's cascade-order invariant).
	UnmatchRemoteParticipant(removed *proxy.ParticipantProxy)
}

// Host is the narrow surface an Edp implementation needs from its owning
// PDP: the shared proxy store, the transport, the runtime handle, and the
// local participant's identity. PDP implements this directly, which is how
// "the EDP holds an immutable reference to its owning PDP for the lifetime
// of the subsystem" (§9) is realized without an import cycle between
// pkg/pdp and pkg/edp/{dynamic,static}.
//
// Every Edp interface method (LocalWriterMatching, LocalReaderMatching,
// AssignRemoteEndpoints, RemoveRemoteEndpoints) is called with the owning
// PDP's lock already held by the caller (PDP's public API wrappers, or
// PDP's own commit phase) — per §9's re-entrancy resolution, these methods
// never acquire the lock themselves, so no recursive mutex is needed.
//
// An Edp implementation's own asynchronous entry points — built-in reader
// callbacks fired directly by the transport — are a separate goroutine
// with no lock held yet, so they call Lock/Unlock themselves before
// touching the store, just as PDP's SPDP listener onInboundParticipantData
// reaches the store only through commitParticipantUpdate, which takes the
// lock.
type Host interface {
	Store() *proxy.Store
	Runtime() *runtime.Runtime
	Transport() transport.Transport
	LocalPrefix() guid.GuidPrefix
	MarkLocalParticipantChanged()
	Lock()
	Unlock()
}
