package dynamic

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/locator"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

// fakeHost is a minimal edp.Host that owns its own store and transport
// without needing pkg/pdp, which would import this package back.
type fakeHost struct {
	mu     sync.Mutex
	store  *proxy.Store
	rt     *runtime.Runtime
	t      transport.Transport
	prefix guid.GuidPrefix
}

func newFakeHost(t transport.Transport) *fakeHost {
	return &fakeHost{
		store: proxy.NewStore(),
		rt:    runtime.New(0, 0, log.StandardLogger(), prometheus.NewRegistry()),
		t:     t,
	}
}

func (h *fakeHost) Store() *proxy.Store             { return h.store }
func (h *fakeHost) Runtime() *runtime.Runtime       { return h.rt }
func (h *fakeHost) Transport() transport.Transport  { return h.t }
func (h *fakeHost) LocalPrefix() guid.GuidPrefix    { return h.prefix }
func (h *fakeHost) MarkLocalParticipantChanged()    {}
func (h *fakeHost) Lock()                           { h.mu.Lock() }
func (h *fakeHost) Unlock()                         { h.mu.Unlock() }

func localUnicast() locator.Locator {
	return locator.FromUDPv4(net.IPv4(127, 0, 0, 1), 17410)
}

func TestNewBindsBothBuiltinPairsByDefault(t *testing.T) {
	mt := testutil.NewMemTransport()
	host := newFakeHost(mt)

	e, err := New(host, binary.BigEndian, Config{UsePubWriterSubReader: true, UsePubReaderSubWriter: true}, localUnicast())
	require.NoError(t, err)
	defer e.Close()

	set := e.AvailableBuiltinEndpoints()
	assert.True(t, set.Has(guid.DiscPublicationAnnouncer))
	assert.True(t, set.Has(guid.DiscSubscriptionDetector))
	assert.True(t, set.Has(guid.DiscPublicationDetector))
	assert.True(t, set.Has(guid.DiscSubscriptionAnnouncer))
}

func TestLocalWriterMatchingRecordsWriterInLocalProxyFirstTime(t *testing.T) {
	mt := testutil.NewMemTransport()
	host := newFakeHost(mt)
	host.prefix = guid.GuidPrefix{9}
	host.store.GetOrInsertParticipant(host.prefix)

	e, err := New(host, binary.BigEndian, Config{UsePubWriterSubReader: true}, localUnicast())
	require.NoError(t, err)
	defer e.Close()

	w := testutil.NewFakeWriter(guid.GUID{Prefix: host.prefix, Entity: guid.EntityId{1}}, "chatter", "std_msgs/String")
	require.NoError(t, e.LocalWriterMatching(w, true))

	writers, _ := host.store.IterEndpointsOf(host.prefix)
	require.Len(t, writers, 1)
	assert.Equal(t, "chatter", writers[0].TopicName)
}

func TestUnmatchRemoteParticipantRemovesEveryLocalPairing(t *testing.T) {
	mt := testutil.NewMemTransport()
	host := newFakeHost(mt)
	host.prefix = guid.GuidPrefix{9}

	e, err := New(host, binary.BigEndian, Config{}, localUnicast())
	require.NoError(t, err)
	defer e.Close()

	w := testutil.NewFakeWriter(guid.GUID{Prefix: host.prefix, Entity: guid.EntityId{1}}, "chatter", "std_msgs/String")
	r := testutil.NewFakeReader(guid.GUID{Prefix: host.prefix, Entity: guid.EntityId{2}}, "chatter", "std_msgs/String")
	require.NoError(t, e.LocalWriterMatching(w, true))
	require.NoError(t, e.LocalReaderMatching(r, true))

	remotePrefix := guid.GuidPrefix{7}
	removed := &proxy.ParticipantProxy{
		GUIDPrefix: remotePrefix,
		Writers:    []proxy.DiscoveredWriterData{{GUID: guid.GUID{Prefix: remotePrefix, Entity: guid.EntityId{3}}}},
		Readers:    []proxy.DiscoveredReaderData{{GUID: guid.GUID{Prefix: remotePrefix, Entity: guid.EntityId{4}}}},
	}

	e.UnmatchRemoteParticipant(removed)

	assert.Equal(t, []guid.GUID{removed.Writers[0].GUID}, r.MatchedRemoved())
	assert.Equal(t, []guid.GUID{removed.Readers[0].GUID}, w.MatchedRemoved())
}
