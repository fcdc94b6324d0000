package edp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runconduit/rtps-discovery/internal/testutil"
	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
)

func g(n byte) guid.GUID {
	var prefix guid.GuidPrefix
	prefix[11] = n
	return guid.GUID{Prefix: prefix, Entity: guid.EntityId{n}}
}

func TestPairLocalWriterWithDiscoveredReaderMatchesOnTopicAndType(t *testing.T) {
	w := testutil.NewFakeWriter(g(1), "chatter", "std_msgs/String")
	rdata := proxy.DiscoveredReaderData{GUID: g(2), TopicName: "chatter", TypeName: "std_msgs/String", IsAlive: true, QoS: w.QoS()}

	PairLocalWriterWithDiscoveredReader(w, rdata)

	assert.Equal(t, []guid.GUID{g(2)}, w.Matched())
}

func TestPairLocalWriterWithDiscoveredReaderSkipsOnTopicMismatch(t *testing.T) {
	w := testutil.NewFakeWriter(g(1), "chatter", "std_msgs/String")
	rdata := proxy.DiscoveredReaderData{GUID: g(2), TopicName: "other", TypeName: "std_msgs/String", IsAlive: true, QoS: w.QoS()}

	PairLocalWriterWithDiscoveredReader(w, rdata)

	assert.Empty(t, w.Matched())
}

func TestPairLocalWriterWithDiscoveredReaderSkipsWhenNotAlive(t *testing.T) {
	w := testutil.NewFakeWriter(g(1), "chatter", "std_msgs/String")
	rdata := proxy.DiscoveredReaderData{GUID: g(2), TopicName: "chatter", TypeName: "std_msgs/String", IsAlive: false, QoS: w.QoS()}

	PairLocalWriterWithDiscoveredReader(w, rdata)

	assert.Empty(t, w.Matched())
}

func TestPairLocalReaderWithDiscoveredWriterRequiresCompatibleReliability(t *testing.T) {
	r := testutil.NewFakeReader(g(1), "chatter", "std_msgs/String")
	wdata := proxy.DiscoveredWriterData{GUID: g(2), TopicName: "chatter", TypeName: "std_msgs/String", IsAlive: true, QoS: r.QoS()}

	PairLocalReaderWithDiscoveredWriter(r, wdata)

	assert.Equal(t, []guid.GUID{g(2)}, r.Matched())
}
