// Package pdp implements the Participant Discovery Protocol (§4.3): the
// local participant's periodic announcement, inbound ParticipantData
// ingestion, and the lease watchdog that ages out remotes that stop
// announcing. PDP also implements edp.Host, the narrow surface the chosen
// Edp variant needs back.
package pdp

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"sync"

	"github.com/runconduit/rtps-discovery/internal/builtin"
	"github.com/runconduit/rtps-discovery/internal/wire/paramlist"
	"github.com/runconduit/rtps-discovery/pkg/edp"
	"github.com/runconduit/rtps-discovery/pkg/edp/dynamic"
	"github.com/runconduit/rtps-discovery/pkg/edp/static"
	"github.com/runconduit/rtps-discovery/pkg/edp/staticxml"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/metrics"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
	"github.com/runconduit/rtps-discovery/pkg/rtpsiface"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
	"github.com/runconduit/rtps-discovery/pkg/schedule"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

// PDP is the Participant Discovery Protocol instance for one local
// participant. It owns the proxy store, the SPDP built-in writer/reader,
// the chosen EDP variant, and the per-remote lease watchdogs. All proxy
// mutation happens under mu, per §5's locking-order rule PDP-lock ->
// EDP-endpoint-lock -> user-endpoint-lock.
type PDP struct {
	rt        *runtime.Runtime
	transport transport.Transport
	order     binary.ByteOrder

	mu              sync.Mutex
	store           *proxy.Store
	attrs           DiscoveryAttributes
	localPrefix     guid.GuidPrefix
	localHasChanged bool
	stopped         bool

	edpImpl edp.Edp

	spdpWriter *builtin.Writer
	spdpReader *builtin.Reader
	closers    []io.Closer

	resend *schedule.Handle
	leases *leaseTracker
}

// New returns a PDP bound to rt and t. Call Init before announcing.
func New(rt *runtime.Runtime, t transport.Transport) *PDP {
	p := &PDP{
		rt:        rt,
		transport: t,
		order:     binary.BigEndian,
		store:     proxy.NewStore(),
	}
	p.leases = newLeaseTracker(p.onLeaseSuspect, p.onLeaseExpired)
	return p
}

// deriveLocalPrefix synthesizes a stable GuidPrefix for the local
// participant from its domain, participant id and name. The source
// derives this from host id, process id and participant id; this module
// has no equivalent process-identity surface to draw on, so it hashes the
// triple that is guaranteed unique within one discovery domain instead.
// Recorded as a resolved design decision in DESIGN.md.
func deriveLocalPrefix(domainID, participantID uint32, name string) guid.GuidPrefix {
	var seed [8]byte
	binary.BigEndian.PutUint32(seed[0:4], domainID)
	binary.BigEndian.PutUint32(seed[4:8], participantID)
	h := sha256.New()
	h.Write(seed[:])
	h.Write([]byte(name))
	sum := h.Sum(nil)
	var prefix guid.GuidPrefix
	copy(prefix[:], sum[:12])
	return prefix
}

// Init implements §4.3's initialization: derive ports and the local GUID,
// construct the local participant proxy, bring up the SPDP built-ins, and
// select and construct the configured Edp variant.
func (p *PDP) Init(attrs DiscoveryAttributes) error {
	if err := attrs.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	p.attrs = attrs
	p.localPrefix = deriveLocalPrefix(p.rt.DomainID, p.rt.ParticipantID, attrs.ParticipantName)
	p.mu.Unlock()

	unicastLoc := locator.FromUDPv4(attrs.LocalAddress, p.rt.MetatrafficUnicastPort())
	multicastLoc := locator.FromUDPv4(attrs.MulticastAddress, p.rt.MetatrafficMulticastPort())

	localProxy := proxy.ParticipantProxy{
		GUIDPrefix:                   p.localPrefix,
		VendorID:                     attrs.VendorID,
		ProtocolVersion:              attrs.ProtocolVersion,
		MetatrafficUnicastLocators:   []locator.Locator{unicastLoc},
		MetatrafficMulticastLocators: []locator.Locator{multicastLoc},
		AvailableBuiltinEndpoints:    guid.DiscParticipantAnnouncer | guid.DiscParticipantDetector,
		LeaseDuration:                attrs.LeaseDuration,
		ParticipantName:              attrs.ParticipantName,
		ExpectsInlineQoS:             attrs.ExpectsInlineQoS,
		IsAlive:                      true,
	}

	p.mu.Lock()
	local, _ := p.store.GetOrInsertParticipant(p.localPrefix)
	*local = localProxy
	p.mu.Unlock()

	p.spdpWriter = builtin.NewWriter(p.transport)
	_ = p.spdpWriter.AddReaderLocator(multicastLoc)
	for _, peer := range attrs.InitialPeers {
		_ = p.spdpWriter.AddReaderLocator(peer)
	}

	p.spdpReader = builtin.NewReader()
	p.spdpReader.SetListener(p.onInboundParticipantData)
	for _, loc := range []locator.Locator{unicastLoc, multicastLoc} {
		closer, err := p.spdpReader.Bind(p.transport, loc)
		if err != nil {
			return &rtpserr.TransportUnavailable{Locator: loc.String(), Cause: err}
		}
		p.closers = append(p.closers, closer)
	}

	if attrs.UseStaticEDP {
		doc, err := staticxml.Load(attrs.StaticEDPXMLPath)
		if err != nil {
			return err
		}
		se, err := static.New(p, doc, attrs.ParticipantName)
		if err != nil {
			return err
		}
		p.edpImpl = se
	} else {
		de, err := dynamic.New(p, p.order, dynamic.Config{
			UsePubWriterSubReader: attrs.UsePubWriterSubReader,
			UsePubReaderSubWriter: attrs.UsePubReaderSubWriter,
		}, unicastLoc)
		if err != nil {
			return err
		}
		p.edpImpl = de

		p.mu.Lock()
		local.AvailableBuiltinEndpoints |= de.AvailableBuiltinEndpoints()
		p.mu.Unlock()
	}

	p.armResend()
	return nil
}

func (p *PDP) armResend() {
	p.resend = schedule.Schedule(p.attrs.ResendInterval, p.onResendFire)
}

func (p *PDP) onResendFire() {
	p.Announce(false)
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if !stopped {
		p.resend.Restart(p.attrs.ResendInterval)
	}
}

// StopAnnouncement cancels the resend timer without tearing down the rest
// of the PDP, for use by tests that want to control announcement timing
// exactly.
func (p *PDP) StopAnnouncement() {
	p.mu.Lock()
	p.stopped = true
	handle := p.resend
	p.mu.Unlock()
	if handle != nil {
		handle.Cancel()
	}
}

// ResetAnnouncement re-arms the resend timer after StopAnnouncement.
func (p *PDP) ResetAnnouncement() {
	p.mu.Lock()
	p.stopped = false
	p.mu.Unlock()
	p.armResend()
}

// Announce implements §4.3's build-and-send procedure: rebuild the local
// parameter list only if something changed, then hand the payload to the
// SPDP writer's send set.
func (p *PDP) Announce(newChange bool) {
	p.mu.Lock()
	local, ok := p.store.Get(p.localPrefix)
	if !ok {
		p.mu.Unlock()
		return
	}
	var payload []byte
	if newChange || p.localHasChanged {
		pl := paramlist.ParticipantDataToParameters(p.order, *local)
		payload = pl.Encode(p.order)
		p.localHasChanged = false
	}
	p.mu.Unlock()

	if payload == nil {
		payload = p.spdpWriter.GetLastAddedCache()
	}
	if payload == nil {
		return
	}

	selfGUID := guid.GUID{Prefix: p.localPrefix, Entity: guid.EntityIDParticipant}
	if err := p.spdpWriter.NewChange(context.Background(), selfGUID, payload); err != nil {
		p.rt.ComponentLogger("pdp").WithError(err).Warn("failed to send participant announcement")
		p.rt.Metrics.Warnings.WithLabelValues(metrics.WarnTransportUnavailable).Inc()
	}
	p.rt.Metrics.Announcements.Inc()
}

// LocalParticipantHasChanged implements PDP.local_endpoint_added and
// PDP.local_endpoint_qos_changed (§4.3): both just mark the local
// participant dirty so the next Announce rebuilds its parameter list.
// Safe to call from any goroutine.
func (p *PDP) LocalParticipantHasChanged() {
	p.mu.Lock()
	p.localHasChanged = true
	p.mu.Unlock()
}

// LocalWriterMatching implements the PDP-facing wrapper around the chosen
// Edp's local_writer_matching, acquiring the discovery lock the Edp
// interface assumes is already held.
func (p *PDP) LocalWriterMatching(w rtpsiface.LocalWriter, firstTime bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edpImpl.LocalWriterMatching(w, firstTime)
}

// LocalReaderMatching is the reader-side symmetric wrapper.
func (p *PDP) LocalReaderMatching(r rtpsiface.LocalReader, firstTime bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edpImpl.LocalReaderMatching(r, firstTime)
}

// participantUpdate is the pure value the lock-free decode stage produces
// for the locked commit stage to apply (§9's re-entrancy resolution).
type participantUpdate struct {
	proxy proxy.ParticipantProxy
}

func (p *PDP) decodeParticipantUpdate(payload []byte) (participantUpdate, error) {
	pl, err := paramlist.Decode(payload, p.order)
	if err != nil {
		return participantUpdate{}, err
	}
	pp, err := paramlist.ParametersToParticipantData(p.order, pl)
	if err != nil {
		return participantUpdate{}, err
	}
	return participantUpdate{proxy: pp}, nil
}

// onInboundParticipantData is the SPDP reader's listener callback: a
// transport-driven goroutine with no lock held, implementing §4.3's
// on_new_data decode phase before handing off to the locked commit phase.
func (p *PDP) onInboundParticipantData(_ locator.Locator, payload []byte) {
	update, err := p.decodeParticipantUpdate(payload)
	if err != nil {
		p.rt.ComponentLogger("pdp").WithError(err).Warn("dropping malformed participant data")
		p.rt.Metrics.Warnings.WithLabelValues(metrics.WarnMalformedMessage).Inc()
		return
	}
	if update.proxy.GUIDPrefix == p.localPrefix {
		return
	}
	if update.proxy.ProtocolVersion[0] < p.attrs.ProtocolVersion[0] {
		p.rt.ComponentLogger("pdp").
			WithField("remote", update.proxy.GUIDPrefix).
			Warn(rtpserr.ErrIncompatibleProtocol.Error())
		p.rt.Metrics.Warnings.WithLabelValues(metrics.WarnIncompatibleProtocol).Inc()
		return
	}
	p.commitParticipantUpdate(update)
}

// commitParticipantUpdate is §4.3's on_new_data commit phase; it takes mu
// itself and holds it for its whole body.
func (p *PDP) commitParticipantUpdate(update participantUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()

	remote, inserted := p.store.GetOrInsertParticipant(update.proxy.GUIDPrefix)
	// ParametersToParticipantData never populates Writers/Readers (those
	// arrive over the separate SEDP channel via UpsertWriter/UpsertReader),
	// so the whole-struct *remote = update.proxy below would on its own wipe
	// every endpoint this remote already has on every re-announcement; they
	// are saved first and restored after it.
	writers, readers := remote.Writers, remote.Readers
	*remote = update.proxy
	remote.Writers = writers
	remote.Readers = readers
	remote.IsAlive = true

	if inserted {
		for _, loc := range remote.MetatrafficUnicastLocators {
			_ = p.spdpWriter.AddReaderLocator(loc)
		}
		if err := p.edpImpl.AssignRemoteEndpoints(remote); err != nil {
			p.rt.ComponentLogger("pdp").WithError(err).Warn("failed to assign remote endpoints")
		}
	}
	p.leases.Refresh(remote.GUIDPrefix, remote.LeaseDuration)
	p.rt.Metrics.KnownParticipants.Set(float64(p.store.Len()))
}

// onLeaseSuspect is the lease watchdog's halfway fire: clear is_alive
// without removing the proxy.
func (p *PDP) onLeaseSuspect(prefix guid.GuidPrefix) {
	p.mu.Lock()
	if proxy, ok := p.store.Get(prefix); ok {
		proxy.IsAlive = false
	}
	p.mu.Unlock()
}

func (p *PDP) onLeaseExpired(prefix guid.GuidPrefix) {
	p.removeRemoteParticipant(prefix, true)
}

// RemoveRemoteParticipant implements §4.3's explicit-disposal path: the
// cascade unbinds local counterparts before the proxy is dropped from the
// store, so a handler on the transport thread never resolves a dangling
// reference.
func (p *PDP) RemoveRemoteParticipant(prefix guid.GuidPrefix) {
	p.removeRemoteParticipant(prefix, false)
}

func (p *PDP) removeRemoteParticipant(prefix guid.GuidPrefix, leaseExpired bool) {
	p.mu.Lock()
	removed, ok := p.store.RemoveParticipant(prefix)
	if !ok {
		p.mu.Unlock()
		return
	}

	p.edpImpl.UnmatchRemoteParticipant(removed)
	if err := p.edpImpl.RemoveRemoteEndpoints(prefix); err != nil {
		p.rt.ComponentLogger("pdp").WithError(err).Warn("failed to remove remote endpoints")
	}
	p.rt.Metrics.KnownParticipants.Set(float64(p.store.Len()))
	if leaseExpired {
		p.rt.Metrics.LeaseExpirations.Inc()
	}
	p.mu.Unlock()

	p.leases.Forget(prefix)
}

// Snapshot returns a point-in-time copy of every known participant,
// including the local one, for the admin server's /debug/proxies
// endpoint.
func (p *PDP) Snapshot() []proxy.ParticipantProxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	participants := p.store.IterParticipants()
	out := make([]proxy.ParticipantProxy, 0, len(participants))
	for _, pp := range participants {
		out = append(out, *pp)
	}
	return out
}

// Store implements edp.Host.
func (p *PDP) Store() *proxy.Store { return p.store }

// Runtime implements edp.Host.
func (p *PDP) Runtime() *runtime.Runtime { return p.rt }

// Transport implements edp.Host.
func (p *PDP) Transport() transport.Transport { return p.transport }

// LocalPrefix implements edp.Host. Set once in Init and never mutated
// afterward, so it is safe to read without the lock.
func (p *PDP) LocalPrefix() guid.GuidPrefix { return p.localPrefix }

// MarkLocalParticipantChanged implements edp.Host. Always called by an Edp
// implementation from inside a method invoked with mu already held, so it
// must not lock again.
func (p *PDP) MarkLocalParticipantChanged() {
	p.localHasChanged = true
}

// Lock implements edp.Host, for an Edp's own asynchronous entry points
// that hold no lock when they are invoked.
func (p *PDP) Lock() { p.mu.Lock() }

// Unlock implements edp.Host.
func (p *PDP) Unlock() { p.mu.Unlock() }

// Stop cancels the resend timer and every halfway lease timer, closes the
// SPDP reader bindings, and closes the Edp variant if it owns any of its
// own. Cancellation is synchronous: each cancel waits for a callback
// already running to finish. Stop releases mu before cancelling, so those
// callbacks can take it; the go-cache eviction sweep is not stopped.
func (p *PDP) Stop() {
	p.mu.Lock()
	p.stopped = true
	resend := p.resend
	closers := append([]io.Closer(nil), p.closers...)
	p.mu.Unlock()

	if resend != nil {
		resend.Cancel()
	}
	p.leases.Stop()
	for _, c := range closers {
		_ = c.Close()
	}
	if closer, ok := p.edpImpl.(io.Closer); ok {
		_ = closer.Close()
	}
}
