// Package metrics declares the Prometheus instruments the discovery
// subsystem exposes through the admin server (C8), grounded on the
// promauto vec idiom the teacher codebase uses for its watcher metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vecs bundles every counter/gauge the discovery subsystem emits, scoped to
// one Runtime's registry so tests can run several runtimes in the same
// process without collector collisions.
type Vecs struct {
	Warnings          *prometheus.CounterVec
	KnownParticipants prometheus.Gauge
	MatchedPairs      prometheus.Gauge
	LeaseExpirations  prometheus.Counter
	Announcements     prometheus.Counter
}

// NewVecs registers the discovery metrics against registry and returns the
// handle callers increment/set.
func NewVecs(registry *prometheus.Registry) *Vecs {
	factory := promauto.With(registry)

	return &Vecs{
		Warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtps_discovery_warnings_total",
				Help: "A counter of recoverable discovery warnings, partitioned by kind.",
			},
			[]string{"kind"},
		),
		KnownParticipants: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rtps_discovery_known_participants",
				Help: "A gauge for the current number of known participants, including self.",
			},
		),
		MatchedPairs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rtps_discovery_matched_pairs",
				Help: "A gauge for the current number of matched local/remote endpoint pairs.",
			},
		),
		LeaseExpirations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtps_discovery_lease_expirations_total",
				Help: "A counter of remote participants removed after lease expiry.",
			},
		),
		Announcements: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtps_discovery_announcements_total",
				Help: "A counter of SPDP announcements sent by this participant.",
			},
		),
	}
}

// WarnKinds names the label values used with Warnings, matching the error
// taxonomy in pkg/rtpserr.
const (
	WarnMalformedMessage    = "malformed_message"
	WarnUnknownParticipant  = "unknown_participant"
	WarnTransportUnavailable = "transport_unavailable"
	WarnIncompatibleProtocol = "incompatible_protocol"
)
