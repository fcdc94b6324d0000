package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// ReaderDataToParameters builds the outbound parameter list for a
// DiscoveredReaderData, symmetric to WriterDataToParameters.
func ReaderDataToParameters(order binary.ByteOrder, rd proxy.DiscoveredReaderData) ParameterList {
	var pl ParameterList
	encodeLocators(order, &pl, PIDUnicastLocator, rd.UnicastLocators)
	encodeLocators(order, &pl, PIDMulticastLocator, rd.MulticastLocators)
	pl.Add(PIDParticipantGUID, encodeGUID(guid.GUID{Prefix: rd.ParticipantGUIDPrefix, Entity: guid.EntityIDParticipant}))
	pl.Add(PIDTopicName, encodeString(order, rd.TopicName))
	pl.Add(PIDTypeName, encodeString(order, rd.TypeName))
	if rd.UserDefinedID != 0 {
		pl.Add(PIDKeyHash, encodeU32(order, uint32(rd.UserDefinedID)))
	}
	pl.Add(PIDEndpointGUID, encodeGUID(rd.GUID))
	if rd.ExpectsInlineQoS {
		pl.Add(PIDExpectsInlineQoS, encodeBool(rd.ExpectsInlineQoS))
	}
	encodeEndpointQoS(order, &pl, rd.QoS, rd.Dirty)
	return pl
}

// ParametersToReaderData parses an inbound parameter list into a
// DiscoveredReaderData, tolerating unrecognized PIDs.
func ParametersToReaderData(order binary.ByteOrder, pl ParameterList) (proxy.DiscoveredReaderData, error) {
	var rd proxy.DiscoveredReaderData
	rd.Dirty = nil

	g, ok := pl.Get(PIDEndpointGUID)
	if !ok {
		return rd, rtpserr.NewMalformedMessage("reader data missing PID_ENDPOINT_GUID")
	}
	guidVal, ok := decodeGUID(g.Value)
	if !ok {
		return rd, rtpserr.NewMalformedMessage("reader data has truncated PID_ENDPOINT_GUID")
	}
	rd.GUID = guidVal
	rd.ParticipantGUIDPrefix = guidVal.Prefix

	if kind, ok := guid.TopicKindFromReaderEntityKind(guidVal.Entity.Kind()); ok {
		rd.TopicKind = kind
	}

	if t, ok := pl.Get(PIDTopicName); ok {
		if s, ok := decodeString(order, t.Value); ok {
			rd.TopicName = s
		}
	} else {
		return rd, rtpserr.NewMalformedMessage("reader data missing PID_TOPIC_NAME")
	}
	if t, ok := pl.Get(PIDTypeName); ok {
		if s, ok := decodeString(order, t.Value); ok {
			rd.TypeName = s
		}
	} else {
		return rd, rtpserr.NewMalformedMessage("reader data missing PID_TYPE_NAME")
	}
	if k, ok := pl.Get(PIDKeyHash); ok {
		if v, ok := decodeU32(order, k.Value); ok {
			rd.UserDefinedID = uint16(v)
		}
	}
	if q, ok := pl.Get(PIDExpectsInlineQoS); ok {
		if b, ok := decodeBool(q.Value); ok {
			rd.ExpectsInlineQoS = b
		}
	}

	rd.UnicastLocators = decodeLocators(order, pl, PIDUnicastLocator)
	rd.MulticastLocators = decodeLocators(order, pl, PIDMulticastLocator)
	rd.QoS = decodeEndpointQoS(order, pl)
	rd.IsAlive = true
	return rd, nil
}
