package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/qos"
)

// encodeEndpointQoS appends every endpoint QoS policy that is either
// send-always or marked dirty, per §4.1's ordering rule. Durability and
// OwnershipStrength are also emitted whenever they differ from the default,
// and UserData, GroupData and TopicData whenever they are non-empty.
// Presentation and Partition have no wire representation in this codec and
// are never emitted.
func encodeEndpointQoS(order binary.ByteOrder, pl *ParameterList, p qos.Policies, dirty qos.DirtySet) {
	always := func(pid ParameterID) bool {
		for _, a := range sendAlwaysEndpointPIDs {
			if a == pid {
				return true
			}
		}
		return dirty.Has(uint16(pid))
	}

	if always(PIDReliability) {
		buf := make([]byte, 12)
		order.PutUint32(buf[0:4], uint32(p.Reliability.Kind))
		copy(buf[4:12], encodeDuration(order, p.Reliability.MaxBlockingTime))
		pl.Add(PIDReliability, buf)
	}
	if always(PIDDurability) || p.Durability.Kind != qos.Volatile {
		pl.Add(PIDDurability, encodeU32(order, uint32(p.Durability.Kind)))
	}
	if always(PIDDurabilityService) {
		ds := p.DurabilityService
		buf := make([]byte, 8+4+4+4+4+4)
		copy(buf[0:8], encodeDuration(order, ds.ServiceCleanupDelay))
		order.PutUint32(buf[8:12], uint32(ds.HistoryKind))
		order.PutUint32(buf[12:16], uint32(ds.HistoryDepth))
		order.PutUint32(buf[16:20], uint32(ds.MaxSamples))
		order.PutUint32(buf[20:24], uint32(ds.MaxInstances))
		order.PutUint32(buf[24:28], uint32(ds.MaxSamplesPerInstance))
		pl.Add(PIDDurabilityService, buf)
	}
	if always(PIDDeadline) {
		pl.Add(PIDDeadline, encodeDuration(order, p.Deadline.Period))
	}
	if always(PIDLatencyBudget) {
		pl.Add(PIDLatencyBudget, encodeDuration(order, p.LatencyBudget.Duration))
	}
	if always(PIDLiveliness) {
		buf := make([]byte, 12)
		order.PutUint32(buf[0:4], uint32(p.Liveliness.Kind))
		copy(buf[4:12], encodeDuration(order, p.Liveliness.LeaseDuration))
		pl.Add(PIDLiveliness, buf)
	}
	if always(PIDOwnership) {
		pl.Add(PIDOwnership, encodeU32(order, uint32(p.Ownership.Kind)))
	}
	if p.Ownership.Kind == qos.Exclusive {
		pl.Add(PIDOwnershipStrength, encodeU32(order, uint32(p.Ownership.Strength)))
	}
	if always(PIDDestinationOrder) {
		pl.Add(PIDDestinationOrder, encodeU32(order, uint32(p.DestinationOrder.Kind)))
	}
	if always(PIDLifespan) {
		pl.Add(PIDLifespan, encodeDuration(order, p.Lifespan.Duration))
	}
	if always(PIDTimeBasedFilter) {
		pl.Add(PIDTimeBasedFilter, encodeDuration(order, p.TimeBasedFilter.MinimumSeparation))
	}
	if len(p.UserData) > 0 {
		pl.Add(PIDUserData, p.UserData)
	}
	if len(p.GroupData) > 0 {
		pl.Add(PIDGroupData, p.GroupData)
	}
	if len(p.TopicData) > 0 {
		pl.Add(PIDTopicData, p.TopicData)
	}
}

// decodeEndpointQoS reconstructs Policies from whatever QoS-related
// parameters are present, starting from defaults and overlaying each
// recognized PID. Unknown PIDs are ignored here; the caller's Decode loop
// is what tolerates them.
func decodeEndpointQoS(order binary.ByteOrder, pl ParameterList) qos.Policies {
	p := qos.Default()
	for _, param := range pl {
		switch param.ID {
		case PIDReliability:
			if len(param.Value) >= 12 {
				p.Reliability.Kind = qos.ReliabilityKind(order.Uint32(param.Value[0:4]))
				if d, ok := decodeDuration(order, param.Value[4:12]); ok {
					p.Reliability.MaxBlockingTime = d
				}
			}
		case PIDDurability:
			if v, ok := decodeU32(order, param.Value); ok {
				p.Durability.Kind = qos.DurabilityKind(v)
			}
		case PIDDurabilityService:
			v := param.Value
			if len(v) >= 28 {
				if d, ok := decodeDuration(order, v[0:8]); ok {
					p.DurabilityService.ServiceCleanupDelay = d
				}
				p.DurabilityService.HistoryKind = qos.DurabilityKind(order.Uint32(v[8:12]))
				p.DurabilityService.HistoryDepth = int32(order.Uint32(v[12:16]))
				p.DurabilityService.MaxSamples = int32(order.Uint32(v[16:20]))
				p.DurabilityService.MaxInstances = int32(order.Uint32(v[20:24]))
				p.DurabilityService.MaxSamplesPerInstance = int32(order.Uint32(v[24:28]))
			}
		case PIDDeadline:
			if d, ok := decodeDuration(order, param.Value); ok {
				p.Deadline.Period = d
			}
		case PIDLatencyBudget:
			if d, ok := decodeDuration(order, param.Value); ok {
				p.LatencyBudget.Duration = d
			}
		case PIDLiveliness:
			if len(param.Value) >= 12 {
				p.Liveliness.Kind = qos.LivelinessKind(order.Uint32(param.Value[0:4]))
				if d, ok := decodeDuration(order, param.Value[4:12]); ok {
					p.Liveliness.LeaseDuration = d
				}
			}
		case PIDOwnership:
			if v, ok := decodeU32(order, param.Value); ok {
				p.Ownership.Kind = qos.OwnershipKind(v)
			}
		case PIDOwnershipStrength:
			if v, ok := decodeU32(order, param.Value); ok {
				p.Ownership.Strength = int32(v)
			}
		case PIDDestinationOrder:
			if v, ok := decodeU32(order, param.Value); ok {
				p.DestinationOrder.Kind = qos.DestinationOrderKind(v)
			}
		case PIDLifespan:
			if d, ok := decodeDuration(order, param.Value); ok {
				p.Lifespan.Duration = d
			}
		case PIDTimeBasedFilter:
			if d, ok := decodeDuration(order, param.Value); ok {
				p.TimeBasedFilter.MinimumSeparation = d
			}
		case PIDUserData:
			p.UserData = append([]byte(nil), param.Value...)
		case PIDGroupData:
			p.GroupData = append([]byte(nil), param.Value...)
		case PIDTopicData:
			p.TopicData = append([]byte(nil), param.Value...)
		}
	}
	return p
}
