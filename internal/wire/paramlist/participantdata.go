package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/guid"
	"github.com/runconduit/rtps-discovery/pkg/proxy"
	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// ParticipantDataToParameters builds the outbound parameter list announced
// by SPDP for the local participant.
func ParticipantDataToParameters(order binary.ByteOrder, p proxy.ParticipantProxy) ParameterList {
	var pl ParameterList
	pl.Add(PIDProtocolVersion, []byte{p.ProtocolVersion[0], p.ProtocolVersion[1]})
	pl.Add(PIDVendorID, []byte{p.VendorID[0], p.VendorID[1]})
	pl.Add(PIDParticipantGUID, encodeGUID(guid.GUID{Prefix: p.GUIDPrefix, Entity: guid.EntityIDParticipant}))

	encodeLocators(order, &pl, PIDMetatrafficUnicastLocator, p.MetatrafficUnicastLocators)
	encodeLocators(order, &pl, PIDMetatrafficMulticastLocator, p.MetatrafficMulticastLocators)
	encodeLocators(order, &pl, PIDDefaultUnicastLocator, p.DefaultUnicastLocators)
	encodeLocators(order, &pl, PIDDefaultMulticastLocator, p.DefaultMulticastLocators)

	pl.Add(PIDBuiltinEndpointSet, encodeU32(order, uint32(p.AvailableBuiltinEndpoints)))
	pl.Add(PIDParticipantLeaseDuration, encodeDuration(order, p.LeaseDuration))
	if p.ParticipantName != "" {
		pl.Add(PIDEntityName, encodeString(order, p.ParticipantName))
	}
	if p.ExpectsInlineQoS {
		pl.Add(PIDExpectsInlineQoS, encodeBool(p.ExpectsInlineQoS))
	}
	if len(p.StaticEndpointIDs) > 0 {
		pl.Add(PIDPropertyList, encodeStaticEndpointIDs(order, p.StaticEndpointIDs))
	}
	return pl
}

// ParametersToParticipantData parses an inbound SPDP announcement.
func ParametersToParticipantData(order binary.ByteOrder, pl ParameterList) (proxy.ParticipantProxy, error) {
	var p proxy.ParticipantProxy

	pv, ok := pl.Get(PIDProtocolVersion)
	if !ok || len(pv.Value) < 2 {
		return p, rtpserr.NewMalformedMessage("participant data missing PID_PROTOCOL_VERSION")
	}
	p.ProtocolVersion = [2]byte{pv.Value[0], pv.Value[1]}

	vid, ok := pl.Get(PIDVendorID)
	if ok && len(vid.Value) >= 2 {
		p.VendorID = [2]byte{vid.Value[0], vid.Value[1]}
	}

	g, ok := pl.Get(PIDParticipantGUID)
	if !ok {
		return p, rtpserr.NewMalformedMessage("participant data missing PID_PARTICIPANT_GUID")
	}
	guidVal, ok := decodeGUID(g.Value)
	if !ok {
		return p, rtpserr.NewMalformedMessage("participant data has truncated PID_PARTICIPANT_GUID")
	}
	p.GUIDPrefix = guidVal.Prefix

	p.MetatrafficUnicastLocators = decodeLocators(order, pl, PIDMetatrafficUnicastLocator)
	p.MetatrafficMulticastLocators = decodeLocators(order, pl, PIDMetatrafficMulticastLocator)
	p.DefaultUnicastLocators = decodeLocators(order, pl, PIDDefaultUnicastLocator)
	p.DefaultMulticastLocators = decodeLocators(order, pl, PIDDefaultMulticastLocator)

	if bes, ok := pl.Get(PIDBuiltinEndpointSet); ok {
		if v, ok := decodeU32(order, bes.Value); ok {
			p.AvailableBuiltinEndpoints = guid.BuiltinEndpointSet(v)
		}
	}
	if ld, ok := pl.Get(PIDParticipantLeaseDuration); ok {
		if d, ok := decodeDuration(order, ld.Value); ok {
			p.LeaseDuration = d
		}
	} else {
		return p, rtpserr.NewMalformedMessage("participant data missing PID_PARTICIPANT_LEASE_DURATION")
	}
	if name, ok := pl.Get(PIDEntityName); ok {
		if s, ok := decodeString(order, name.Value); ok {
			p.ParticipantName = s
		}
	}
	if q, ok := pl.Get(PIDExpectsInlineQoS); ok {
		if b, ok := decodeBool(q.Value); ok {
			p.ExpectsInlineQoS = b
		}
	}
	if props, ok := pl.Get(PIDPropertyList); ok {
		p.StaticEndpointIDs = decodeStaticEndpointIDs(order, props.Value)
	}
	p.IsAlive = true
	return p, nil
}

// encodeStaticEndpointIDs packs the user-defined-id -> GUID map used by the
// Static EDP into a single PID_PROPERTY_LIST value: a count followed by
// {id: u16, pad: u16, guid: 16 bytes} entries.
func encodeStaticEndpointIDs(order binary.ByteOrder, ids map[uint16]guid.GUID) []byte {
	buf := make([]byte, 4, 4+len(ids)*20)
	order.PutUint32(buf[0:4], uint32(len(ids)))
	for id, g := range ids {
		entry := make([]byte, 20)
		order.PutUint16(entry[0:2], id)
		copy(entry[4:20], encodeGUID(g))
		buf = append(buf, entry...)
	}
	return buf
}

func decodeStaticEndpointIDs(order binary.ByteOrder, buf []byte) map[uint16]guid.GUID {
	if len(buf) < 4 {
		return nil
	}
	count := int(order.Uint32(buf[0:4]))
	out := make(map[uint16]guid.GUID, count)
	offset := 4
	for i := 0; i < count && offset+20 <= len(buf); i++ {
		id := order.Uint16(buf[offset : offset+2])
		g, ok := decodeGUID(buf[offset+4 : offset+20])
		if ok {
			out[id] = g
		}
		offset += 20
	}
	return out
}
