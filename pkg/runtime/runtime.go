// Package runtime holds the handle that replaces the source's process-wide
// DomainParticipant singleton (§9 design notes): domain and participant
// identity, the RTPS port-number formula parameters, and the shared logger
// and metrics registry that PDP and EDP are constructed with.
package runtime

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/runconduit/rtps-discovery/pkg/metrics"
)

// PortOffsets carries the five constants of the RTPS well-known port
// formula:
//
//	multicast_port = Base + DomainGain*domainID + OffsetMulti
//	unicast_port   = Base + DomainGain*domainID + OffsetUni + ParticipantGain*participantID
type PortOffsets struct {
	Base            uint32
	DomainGain      uint32
	ParticipantGain uint32
	OffsetMulti     uint32
	OffsetUni       uint32
}

// DefaultPortOffsets are the standard RTPS discovery port formula
// constants.
var DefaultPortOffsets = PortOffsets{
	Base:            7400,
	DomainGain:      250,
	ParticipantGain: 2,
	OffsetMulti:     0,
	OffsetUni:       10,
}

// MetatrafficMulticastPort returns the well-known multicast port for
// domainID.
func (p PortOffsets) MetatrafficMulticastPort(domainID uint32) uint32 {
	return p.Base + p.DomainGain*domainID + p.OffsetMulti
}

// MetatrafficUnicastPort returns the well-known unicast port for domainID
// and participantID.
func (p PortOffsets) MetatrafficUnicastPort(domainID, participantID uint32) uint32 {
	return p.Base + p.DomainGain*domainID + p.OffsetUni + p.ParticipantGain*participantID
}

// Runtime is the explicit handle passed down into PDP and EDP construction,
// in place of a global singleton.
type Runtime struct {
	DomainID      uint32
	ParticipantID uint32
	Ports         PortOffsets

	Log      *log.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Vecs
}

// New returns a Runtime for the given domain/participant pair using the
// standard port formula. Callers that need metrics isolation (tests) pass
// their own registry; production code shares one Runtime's registry across
// the whole daemon process.
func New(domainID, participantID uint32, logger *log.Logger, registry *prometheus.Registry) *Runtime {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Runtime{
		DomainID:      domainID,
		ParticipantID: participantID,
		Ports:         DefaultPortOffsets,
		Log:           logger,
		Registry:      registry,
		Metrics:       metrics.NewVecs(registry),
	}
}

// MetatrafficMulticastPort is a convenience wrapper over Ports for this
// runtime's domain.
func (r *Runtime) MetatrafficMulticastPort() uint32 {
	return r.Ports.MetatrafficMulticastPort(r.DomainID)
}

// MetatrafficUnicastPort is a convenience wrapper over Ports for this
// runtime's domain and participant.
func (r *Runtime) MetatrafficUnicastPort() uint32 {
	return r.Ports.MetatrafficUnicastPort(r.DomainID, r.ParticipantID)
}

func (r *Runtime) fieldLogger(component string) *log.Entry {
	return r.Log.WithField("component", component)
}

// ComponentLogger returns a logger pre-tagged with component, the pattern
// used throughout the PDP/EDP packages so every warning can be traced back
// to its source.
func (r *Runtime) ComponentLogger(component string) *log.Entry {
	return r.fieldLogger(component)
}

func (r *Runtime) String() string {
	return fmt.Sprintf("runtime(domain=%d participant=%d)", r.DomainID, r.ParticipantID)
}
