package static

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/pkg/edp/staticxml"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/runtime"
	"github.com/runconduit/rtps-discovery/pkg/transport"
)

const testDoc = `
<staticdiscovery>
  <participant name="talker">
    <endpoint type="WRITER">
      <id>1</id>
      <topicName>chatter</topicName>
      <topicDataType>std_msgs/String</topicDataType>
    </endpoint>
  </participant>
  <participant name="listener">
    <endpoint type="READER">
      <id>1</id>
      <topicName>chatter</topicName>
      <topicDataType>std_msgs/String</topicDataType>
    </endpoint>
  </participant>
</staticdiscovery>`

type fakeHost struct {
	mu     sync.Mutex
	store  *proxy.Store
	rt     *runtime.Runtime
	prefix guid.GuidPrefix
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		store: proxy.NewStore(),
		rt:    runtime.New(0, 0, log.StandardLogger(), prometheus.NewRegistry()),
	}
}

func (h *fakeHost) Store() *proxy.Store            { return h.store }
func (h *fakeHost) Runtime() *runtime.Runtime      { return h.rt }
func (h *fakeHost) Transport() transport.Transport { return testutil.NewMemTransport() }
func (h *fakeHost) LocalPrefix() guid.GuidPrefix   { return h.prefix }
func (h *fakeHost) MarkLocalParticipantChanged()   {}
func (h *fakeHost) Lock()                          { h.mu.Lock() }
func (h *fakeHost) Unlock()                        { h.mu.Unlock() }

func TestNewMergesLocalAndSeedsRemote(t *testing.T) {
	doc, err := staticxml.Parse("test", strings.NewReader(testDoc))
	require.NoError(t, err)

	host := newFakeHost()
	host.prefix = guid.GuidPrefix{1}
	host.store.GetOrInsertParticipant(host.prefix)

	e, err := New(host, doc, "talker")
	require.NoError(t, err)
	require.NotNil(t, e)

	writers, _ := host.store.IterEndpointsOf(host.prefix)
	require.Len(t, writers, 1)
	assert.Equal(t, "chatter", writers[0].TopicName)
	assert.EqualValues(t, 1, writers[0].UserDefinedID)

	remotePrefix := derivePrefix("listener")
	_, readers := host.store.IterEndpointsOf(remotePrefix)
	require.Len(t, readers, 1)
	assert.Equal(t, "chatter", readers[0].TopicName)
}

func TestLocalWriterMatchingPairsAgainstSeededRemoteReader(t *testing.T) {
	doc, err := staticxml.Parse("test", strings.NewReader(testDoc))
	require.NoError(t, err)

	host := newFakeHost()
	host.prefix = guid.GuidPrefix{1}
	host.store.GetOrInsertParticipant(host.prefix)

	e, err := New(host, doc, "talker")
	require.NoError(t, err)

	w := testutil.NewFakeWriter(guid.GUID{Prefix: host.prefix, Entity: guid.EntityId{1}}, "chatter", "std_msgs/String")
	w.SetUserDefinedID(1)

	require.NoError(t, e.LocalWriterMatching(w, true))
	assert.NotEmpty(t, w.Matched())
}

func TestUnmatchRemoteParticipantNotifiesLocalReaders(t *testing.T) {
	doc, err := staticxml.Parse("test", strings.NewReader(testDoc))
	require.NoError(t, err)

	host := newFakeHost()
	host.prefix = guid.GuidPrefix{1}
	host.store.GetOrInsertParticipant(host.prefix)

	e, err := New(host, doc, "listener")
	require.NoError(t, err)

	r := testutil.NewFakeReader(guid.GUID{Prefix: host.prefix, Entity: guid.EntityId{1}}, "chatter", "std_msgs/String")
	require.NoError(t, e.LocalReaderMatching(r, true))

	remotePrefix := derivePrefix("talker")
	removedWriterGUID := guid.GUID{Prefix: remotePrefix, Entity: guid.EntityId{1}}
	removed := &proxy.ParticipantProxy{
		GUIDPrefix: remotePrefix,
		Writers:    []proxy.DiscoveredWriterData{{GUID: removedWriterGUID}},
	}

	e.UnmatchRemoteParticipant(removed)
	assert.Equal(t, []guid.GUID{removedWriterGUID}, r.MatchedRemoved())
}
