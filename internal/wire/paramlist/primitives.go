package paramlist

import (
	"encoding/binary"
	"time"

	"github.com/runconduit/rtps-discovery/pkg/guid"
)

// encodeString emits a 4-byte length prefix (including the trailing NUL)
// followed by the bytes and a NUL terminator. The codec pads the overall
// record to 4 bytes in Encode, so no padding is added here.
func encodeString(order binary.ByteOrder, s string) []byte {
	buf := make([]byte, 4+len(s)+1)
	order.PutUint32(buf[0:4], uint32(len(s)+1))
	copy(buf[4:], s)
	return buf
}

func decodeString(order binary.ByteOrder, buf []byte) (string, bool) {
	if len(buf) < 4 {
		return "", false
	}
	n := int(order.Uint32(buf[0:4]))
	if n == 0 || len(buf) < 4+n {
		return "", false
	}
	return string(buf[4 : 4+n-1]), true
}

// encodeDuration stores a duration as seconds (int32) + fractional
// nanoseconds (uint32), mirroring the RTPS Duration_t layout.
func encodeDuration(order binary.ByteOrder, d time.Duration) []byte {
	buf := make([]byte, 8)
	secs := int32(d / time.Second)
	nanos := uint32(d % time.Second)
	order.PutUint32(buf[0:4], uint32(secs))
	order.PutUint32(buf[4:8], nanos)
	return buf
}

func decodeDuration(order binary.ByteOrder, buf []byte) (time.Duration, bool) {
	if len(buf) < 8 {
		return 0, false
	}
	secs := int32(order.Uint32(buf[0:4]))
	nanos := order.Uint32(buf[4:8])
	return time.Duration(secs)*time.Second + time.Duration(nanos), true
}

func encodeGUID(g guid.GUID) []byte {
	buf := make([]byte, 16)
	copy(buf[0:12], g.Prefix[:])
	copy(buf[12:16], g.Entity[:])
	return buf
}

func decodeGUID(buf []byte) (guid.GUID, bool) {
	if len(buf) < 16 {
		return guid.GUID{}, false
	}
	var g guid.GUID
	copy(g.Prefix[:], buf[0:12])
	copy(g.Entity[:], buf[12:16])
	return g, true
}

func encodeU32(order binary.ByteOrder, v uint32) []byte {
	buf := make([]byte, 4)
	order.PutUint32(buf, v)
	return buf
}

func decodeU32(order binary.ByteOrder, buf []byte) (uint32, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	return order.Uint32(buf), true
}

func encodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func decodeBool(buf []byte) (bool, bool) {
	if len(buf) < 1 {
		return false, false
	}
	return buf[0] != 0, true
}
