package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// WriterDataToParameters builds the outbound parameter list for a
// DiscoveredWriterData, per §4.1's field-ordering rule: locators first,
// then identity, then QoS.
func WriterDataToParameters(order binary.ByteOrder, wd proxy.DiscoveredWriterData) ParameterList {
	var pl ParameterList
	encodeLocators(order, &pl, PIDUnicastLocator, wd.UnicastLocators)
	encodeLocators(order, &pl, PIDMulticastLocator, wd.MulticastLocators)
	pl.Add(PIDParticipantGUID, encodeGUID(guid.GUID{Prefix: wd.ParticipantGUIDPrefix, Entity: guid.EntityIDParticipant}))
	pl.Add(PIDTopicName, encodeString(order, wd.TopicName))
	pl.Add(PIDTypeName, encodeString(order, wd.TypeName))
	// PID_KEY_HASH is repurposed here to carry the 4-byte UserDefinedID used
	// by Static EDP's id-gated matching, not a true 16-byte MD5 key hash;
	// PID_ENDPOINT_GUID is always present below, so the GUID-from-KEY_HASH
	// fallback is not implemented.
	if wd.UserDefinedID != 0 {
		pl.Add(PIDKeyHash, encodeU32(order, uint32(wd.UserDefinedID)))
	}
	pl.Add(PIDEndpointGUID, encodeGUID(wd.GUID))
	encodeEndpointQoS(order, &pl, wd.QoS, wd.Dirty)
	return pl
}

// ParametersToWriterData parses an inbound parameter list into a
// DiscoveredWriterData. It tolerates and skips unrecognized PIDs; the
// caller's Decode has already rejected truncated/malformed records. The
// topic kind is not carried on the wire explicitly; it is classified here
// from the kind bits of the PID_ENDPOINT_GUID entity id, and left NoKey
// when those bits name neither writer kind.
func ParametersToWriterData(order binary.ByteOrder, pl ParameterList) (proxy.DiscoveredWriterData, error) {
	var wd proxy.DiscoveredWriterData
	wd.Dirty = nil

	g, ok := pl.Get(PIDEndpointGUID)
	if !ok {
		return wd, rtpserr.NewMalformedMessage("writer data missing PID_ENDPOINT_GUID")
	}
	guidVal, ok := decodeGUID(g.Value)
	if !ok {
		return wd, rtpserr.NewMalformedMessage("writer data has truncated PID_ENDPOINT_GUID")
	}
	wd.GUID = guidVal
	wd.ParticipantGUIDPrefix = guidVal.Prefix

	if kind, ok := guid.TopicKindFromWriterEntityKind(guidVal.Entity.Kind()); ok {
		wd.TopicKind = kind
	}

	if t, ok := pl.Get(PIDTopicName); ok {
		if s, ok := decodeString(order, t.Value); ok {
			wd.TopicName = s
		}
	} else {
		return wd, rtpserr.NewMalformedMessage("writer data missing PID_TOPIC_NAME")
	}
	if t, ok := pl.Get(PIDTypeName); ok {
		if s, ok := decodeString(order, t.Value); ok {
			wd.TypeName = s
		}
	} else {
		return wd, rtpserr.NewMalformedMessage("writer data missing PID_TYPE_NAME")
	}
	if k, ok := pl.Get(PIDKeyHash); ok {
		if v, ok := decodeU32(order, k.Value); ok {
			wd.UserDefinedID = uint16(v)
		}
	}

	wd.UnicastLocators = decodeLocators(order, pl, PIDUnicastLocator)
	wd.MulticastLocators = decodeLocators(order, pl, PIDMulticastLocator)
	wd.QoS = decodeEndpointQoS(order, pl)
	wd.IsAlive = true
	return wd, nil
}
