package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runconduit/rtps-discovery/pkg/proxy"
)

type fakeSnapshotter struct {
	participants []proxy.ParticipantProxy
}

func (f fakeSnapshotter) Snapshot() []proxy.ParticipantProxy { return f.participants }

func TestPingRespondsOK(t *testing.T) {
	server := NewServer(":0", prometheus.NewRegistry(), fakeSnapshotter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)

	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong\n", rec.Body.String())
}

func TestReadyRespondsOK(t *testing.T) {
	server := NewServer(":0", prometheus.NewRegistry(), fakeSnapshotter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownPathIs404(t *testing.T) {
	server := NewServer(":0", prometheus.NewRegistry(), fakeSnapshotter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugProxiesEncodesSnapshotAsJSON(t *testing.T) {
	snap := fakeSnapshotter{participants: []proxy.ParticipantProxy{{ParticipantName: "talker"}}}
	server := NewServer(":0", prometheus.NewRegistry(), snap)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/proxies", nil)

	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "talker")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestMetricsServedFromRuntimeRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtps_discovery_test_probe_total",
		Help: "probe metric used to assert /metrics reads from the registry passed to NewServer, not the default gatherer",
	})
	registry.MustRegister(counter)
	counter.Inc()

	server := NewServer(":0", registry, fakeSnapshotter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rtps_discovery_test_probe_total 1")
}
