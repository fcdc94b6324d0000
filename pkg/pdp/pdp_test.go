package pdp

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/internal/wire/paramlist"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
)

func newTestPDP(t *testing.T, domainID, participantID uint32, name string) (*PDP, *testutil.MemTransport, DiscoveryAttributes) {
	t.Helper()
	rt := runtime.New(domainID, participantID, log.StandardLogger(), prometheus.NewRegistry())
	mt := testutil.NewMemTransport()
	p := New(rt, mt)

	attrs := DefaultDiscoveryAttributes()
	attrs.ParticipantName = name
	attrs.ResendInterval = time.Hour // tests drive Announce explicitly
	attrs.LeaseDuration = time.Hour

	require.NoError(t, p.Init(attrs))
	t.Cleanup(p.Stop)
	return p, mt, attrs
}

func remoteProxy(prefix guid.GuidPrefix, name string, alive bool) proxy.ParticipantProxy {
	return proxy.ParticipantProxy{
		GUIDPrefix:      prefix,
		ParticipantName: name,
		IsAlive:         alive,
		ProtocolVersion: [2]byte{2, 3},
		LeaseDuration:   time.Hour, // keep the lease watchdog quiet for tests that don't exercise it
	}
}

func TestInitInsertsLocalParticipant(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")

	snapshot := p.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "talker", snapshot[0].ParticipantName)
	assert.True(t, snapshot[0].IsAlive)
	assert.Equal(t, p.LocalPrefix(), snapshot[0].GUIDPrefix)
}

func TestInitRejectsInvalidAttributes(t *testing.T) {
	rt := runtime.New(0, 1, log.StandardLogger(), prometheus.NewRegistry())
	p := New(rt, testutil.NewMemTransport())
	err := p.Init(DiscoveryAttributes{})
	assert.Error(t, err)
}

func TestAnnounceSendsOverMulticastAndCachesPayload(t *testing.T) {
	p, mt, _ := newTestPDP(t, 0, 1, "talker")

	p.Announce(true)
	sentAfterFirst := mt.Sent()
	require.NotEmpty(t, sentAfterFirst)

	p.Announce(false)
	sentAfterSecond := mt.Sent()
	assert.Greater(t, len(sentAfterSecond), len(sentAfterFirst))
}

func TestOnInboundParticipantDataFromSelfIsIgnored(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")
	self := p.Snapshot()[0]

	payload := buildParticipantPayload(t, p, self)
	p.onInboundParticipantData(self.MetatrafficUnicastLocators[0], payload)

	assert.Len(t, p.Snapshot(), 1)
}

func TestOnInboundParticipantDataFromIncompatibleProtocolIsDropped(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")

	remote := remoteProxy(guid.GuidPrefix{9}, "listener", true)
	remote.ProtocolVersion = [2]byte{1, 0}
	payload := buildParticipantPayload(t, p, remote)

	p.onInboundParticipantData(locatorForTest(), payload)

	assert.Len(t, p.Snapshot(), 1)
}

func TestCommitParticipantUpdateInsertsThenUpdatesRemote(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")

	remotePrefix := guid.GuidPrefix{9}
	update := participantUpdate{proxy: remoteProxy(remotePrefix, "listener", true)}
	p.commitParticipantUpdate(update)

	snapshot := p.Snapshot()
	require.Len(t, snapshot, 2)

	update.proxy.ParticipantName = "listener-renamed"
	p.commitParticipantUpdate(update)

	found := false
	for _, pp := range p.Snapshot() {
		if pp.GUIDPrefix == remotePrefix {
			found = true
			assert.Equal(t, "listener-renamed", pp.ParticipantName)
		}
	}
	assert.True(t, found)
	assert.Len(t, p.Snapshot(), 2)
}

func TestRemoveRemoteParticipantIsIdempotent(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")

	remotePrefix := guid.GuidPrefix{9}
	p.commitParticipantUpdate(participantUpdate{proxy: remoteProxy(remotePrefix, "listener", true)})
	require.Len(t, p.Snapshot(), 2)

	p.RemoveRemoteParticipant(remotePrefix)
	assert.Len(t, p.Snapshot(), 1)

	// Second removal of an already-gone prefix must be a harmless no-op,
	// the behavior the lease tracker's stray post-Forget eviction relies
	// on.
	p.RemoveRemoteParticipant(remotePrefix)
	assert.Len(t, p.Snapshot(), 1)
}

func TestOnLeaseSuspectClearsIsAliveWithoutRemoving(t *testing.T) {
	p, _, _ := newTestPDP(t, 0, 1, "talker")

	remotePrefix := guid.GuidPrefix{9}
	p.commitParticipantUpdate(participantUpdate{proxy: remoteProxy(remotePrefix, "listener", true)})

	p.onLeaseSuspect(remotePrefix)

	for _, pp := range p.Snapshot() {
		if pp.GUIDPrefix == remotePrefix {
			assert.False(t, pp.IsAlive)
		}
	}
	assert.Len(t, p.Snapshot(), 2)
}

func buildParticipantPayload(t *testing.T, p *PDP, pp proxy.ParticipantProxy) []byte {
	t.Helper()
	pl := paramlist.ParticipantDataToParameters(p.order, pp)
	return pl.Encode(p.order)
}

func locatorForTest() locator.Locator { return locator.Locator{} }
