package pdp

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/internal/transport/memtransport"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
)

// TestTwoParticipantsDiscoverAndMatchOverSharedBus exercises the whole
// discovery path end to end: SPDP announcement, mutual SEDP built-in wiring
// and local writer/reader matching, between two PDP instances sharing one
// in-process bus instead of real sockets.
func TestTwoParticipantsDiscoverAndMatchOverSharedBus(t *testing.T) {
	bus := memtransport.NewBus()

	newParticipant := func(participantID uint32, name string) *PDP {
		rt := runtime.New(7, participantID, log.StandardLogger(), prometheus.NewRegistry())
		tr := bus.Endpoint(locator.FromUDPv4([]byte{127, 0, 0, 1}, rt.MetatrafficUnicastPort()))
		p := New(rt, tr)

		attrs := DefaultDiscoveryAttributes()
		attrs.ParticipantName = name
		attrs.ResendInterval = time.Hour
		attrs.LeaseDuration = time.Hour

		require.NoError(t, p.Init(attrs))
		t.Cleanup(p.Stop)
		return p
	}

	talker := newParticipant(1, "talker")
	listener := newParticipant(2, "listener")

	// Mutual SPDP exchange must complete (synchronously, over the
	// in-process bus) before either side registers local endpoints, so
	// that the SEDP built-in writers already know where to push to.
	talker.Announce(true)
	listener.Announce(true)
	require.Len(t, talker.Snapshot(), 2)
	require.Len(t, listener.Snapshot(), 2)

	fw := testutil.NewFakeWriter(guid.GUID{Prefix: talker.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindWriterWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, talker.LocalWriterMatching(fw, true))

	fr := testutil.NewFakeReader(guid.GUID{Prefix: listener.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindReaderWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, listener.LocalReaderMatching(fr, true))

	assert.Equal(t, []guid.GUID{fw.GUID()}, fr.Matched())
	assert.Equal(t, []guid.GUID{fr.GUID()}, fw.Matched())
}

// TestReannouncementPreservesMatchedEndpoints guards against
// commitParticipantUpdate clobbering a remote's SEDP-learned Writers/Readers
// on a later SPDP re-announcement: ParametersToParticipantData never
// populates those fields, so a naive full-struct overwrite would wipe them
// out every time a peer re-announces (by default every few seconds) even
// though no EDP traffic accompanies the announcement.
func TestReannouncementPreservesMatchedEndpoints(t *testing.T) {
	bus := memtransport.NewBus()

	newParticipant := func(participantID uint32, name string) *PDP {
		rt := runtime.New(7, participantID, log.StandardLogger(), prometheus.NewRegistry())
		tr := bus.Endpoint(locator.FromUDPv4([]byte{127, 0, 0, 1}, rt.MetatrafficUnicastPort()))
		p := New(rt, tr)

		attrs := DefaultDiscoveryAttributes()
		attrs.ParticipantName = name
		attrs.ResendInterval = time.Hour
		attrs.LeaseDuration = time.Hour

		require.NoError(t, p.Init(attrs))
		t.Cleanup(p.Stop)
		return p
	}

	talker := newParticipant(1, "talker")
	listener := newParticipant(2, "listener")

	talker.Announce(true)
	listener.Announce(true)

	fw := testutil.NewFakeWriter(guid.GUID{Prefix: talker.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindWriterWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, talker.LocalWriterMatching(fw, true))
	fr := testutil.NewFakeReader(guid.GUID{Prefix: listener.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindReaderWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, listener.LocalReaderMatching(fr, true))
	require.Equal(t, []guid.GUID{fw.GUID()}, fr.Matched())

	remote, ok := listener.Store().Get(talker.LocalPrefix())
	require.True(t, ok)
	require.Len(t, remote.Writers, 1, "talker's writer must have been recorded by SEDP before the re-announcement")

	// A plain SPDP re-announcement carries no EDP information at all; it
	// must not disturb endpoints already learned over SEDP.
	talker.Announce(false)

	remote, ok = listener.Store().Get(talker.LocalPrefix())
	require.True(t, ok)
	assert.Len(t, remote.Writers, 1, "re-announcement must preserve previously discovered writers")

	// The existing match must still be intact: registering a second local
	// reader now must also see the talker's writer.
	fr2 := testutil.NewFakeReader(guid.GUID{Prefix: listener.LocalPrefix(), Entity: guid.EntityId{0, 0, 2, guid.KindReaderWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, listener.LocalReaderMatching(fr2, true))
	assert.Equal(t, []guid.GUID{fw.GUID()}, fr2.Matched())
}

// TestRemovingRemoteParticipantUnmatchesLocalReader confirms the explicit
// disposal cascade (PDP.RemoveRemoteParticipant -> Edp.UnmatchRemoteParticipant)
// reaches a local endpoint matched over the shared bus, not just the
// single-process fakeHost unit tests in pkg/edp/dynamic.
func TestRemovingRemoteParticipantUnmatchesLocalReader(t *testing.T) {
	bus := memtransport.NewBus()

	newParticipant := func(participantID uint32, name string) *PDP {
		rt := runtime.New(7, participantID, log.StandardLogger(), prometheus.NewRegistry())
		tr := bus.Endpoint(locator.FromUDPv4([]byte{127, 0, 0, 1}, rt.MetatrafficUnicastPort()))
		p := New(rt, tr)

		attrs := DefaultDiscoveryAttributes()
		attrs.ParticipantName = name
		attrs.ResendInterval = time.Hour
		attrs.LeaseDuration = time.Hour

		require.NoError(t, p.Init(attrs))
		t.Cleanup(p.Stop)
		return p
	}

	talker := newParticipant(1, "talker")
	listener := newParticipant(2, "listener")

	talker.Announce(true)
	listener.Announce(true)

	fw := testutil.NewFakeWriter(guid.GUID{Prefix: talker.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindWriterWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, talker.LocalWriterMatching(fw, true))
	fr := testutil.NewFakeReader(guid.GUID{Prefix: listener.LocalPrefix(), Entity: guid.EntityId{0, 0, 1, guid.KindReaderWithKey}}, "rt/chatter", "std_msgs::String")
	require.NoError(t, listener.LocalReaderMatching(fr, true))
	require.Len(t, fr.Matched(), 1)

	listener.RemoveRemoteParticipant(talker.LocalPrefix())
	assert.Equal(t, []guid.GUID{fw.GUID()}, fr.MatchedRemoved())

	// A second removal of the same, already-gone prefix must be a
	// harmless no-op rather than unmatching fr a second time.
	listener.RemoveRemoteParticipant(talker.LocalPrefix())
	assert.Len(t, fr.MatchedRemoved(), 1)
}
