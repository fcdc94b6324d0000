// Package paramlist implements the Parameter Codec (C1): bidirectional
// translation between a ParameterList (TLV records keyed by 16-bit PIDs)
// and the three discovery record types. Encoding respects an explicit
// endianness supplied by the caller; decoding rejects truncated records
// and missing sentinels with MalformedMessage rather than failing
// silently.
package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/rtpserr"
)

// Parameter is one TLV record: {pid, length, value}. Length is always a
// multiple of 4 on the wire; a decoded Value keeps any trailing pad bytes.
type Parameter struct {
	ID    ParameterID
	Value []byte
}

// ParameterList is an ordered sequence of parameter records.
type ParameterList []Parameter

// Add appends a parameter in insertion order.
func (pl *ParameterList) Add(id ParameterID, value []byte) {
	*pl = append(*pl, Parameter{ID: id, Value: value})
}

// Get returns the first parameter with the given id.
func (pl ParameterList) Get(id ParameterID) (Parameter, bool) {
	for _, p := range pl {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

// Encode emits every record in insertion order using the given byte order,
// then appends the sentinel.
func (pl ParameterList) Encode(order binary.ByteOrder) []byte {
	out := make([]byte, 0, 64)
	header := make([]byte, 4)
	for _, p := range pl {
		padded := pad4(len(p.Value))
		order.PutUint16(header[0:2], uint16(p.ID))
		order.PutUint16(header[2:4], uint16(padded))
		out = append(out, header...)
		out = append(out, p.Value...)
		if n := padded - len(p.Value); n > 0 {
			out = append(out, make([]byte, n)...)
		}
	}
	order.PutUint16(header[0:2], uint16(PIDSentinel))
	order.PutUint16(header[2:4], 0)
	out = append(out, header...)
	return out
}

// Decode iterates records until the sentinel, rejecting truncated records
// or a missing sentinel with a MalformedMessage error.
func Decode(data []byte, order binary.ByteOrder) (ParameterList, error) {
	var pl ParameterList
	offset := 0
	for {
		if offset+4 > len(data) {
			return nil, rtpserr.NewMalformedMessage("truncated parameter header")
		}
		id := ParameterID(order.Uint16(data[offset : offset+2]))
		length := int(order.Uint16(data[offset+2 : offset+4]))
		offset += 4

		if id == PIDSentinel {
			return pl, nil
		}
		if offset+length > len(data) {
			return nil, rtpserr.NewMalformedMessage("truncated parameter value")
		}
		value := make([]byte, length)
		copy(value, data[offset:offset+length])
		pl = append(pl, Parameter{ID: id, Value: value})
		offset += length
	}
}
