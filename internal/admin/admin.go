// Package admin implements the discovery daemon's admin/debug HTTP server
// (C8), grounded on the teacher's pkg/admin: a single handler multiplexing
// a handful of fixed paths rather than a full router dependency.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runconduit/rtps-discovery/pkg/proxy"
)

// Snapshotter is the minimal surface the admin server needs from the
// running PDP to serve /debug/proxies without importing pkg/pdp (which
// would create a cycle, since pkg/pdp never needs to know about this
// package).
type Snapshotter interface {
	Snapshot() []proxy.ParticipantProxy
}

type handler struct {
	promHandler http.Handler
	snapshot    Snapshotter
}

// NewServer returns an *http.Server serving /metrics, /ping, /ready and
// /debug/proxies on addr. /metrics is served off registry, the same
// *prometheus.Registry the running Runtime's metrics.Vecs were registered
// against, not the global default registry.
func NewServer(addr string, registry *prometheus.Registry, snapshot Snapshotter) *http.Server {
	h := &handler{
		promHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		snapshot:    snapshot,
	}
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/metrics":
		h.promHandler.ServeHTTP(w, req)
	case "/ping":
		h.servePing(w)
	case "/ready":
		h.serveReady(w)
	case "/debug/proxies":
		h.serveProxies(w)
	default:
		http.NotFound(w, req)
	}
}

func (h *handler) servePing(w http.ResponseWriter) {
	w.Write([]byte("pong\n"))
}

func (h *handler) serveReady(w http.ResponseWriter) {
	w.Write([]byte("ok\n"))
}

func (h *handler) serveProxies(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot.Snapshot()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
