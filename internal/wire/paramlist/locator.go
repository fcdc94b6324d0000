package paramlist

import (
	"encoding/binary"

	"github.com/runconduit/rtps-discovery/pkg/locator"
)

// locatorSize is the fixed on-wire size of a LOCATOR: kind (4) + port (4) +
// address (16).
const locatorSize = 24

func encodeLocator(order binary.ByteOrder, loc locator.Locator) []byte {
	buf := make([]byte, locatorSize)
	order.PutUint32(buf[0:4], uint32(loc.Kind))
	order.PutUint32(buf[4:8], loc.Port)
	copy(buf[8:24], loc.Address[:])
	return buf
}

func decodeLocator(order binary.ByteOrder, buf []byte) (locator.Locator, bool) {
	if len(buf) < locatorSize {
		return locator.Locator{}, false
	}
	var loc locator.Locator
	loc.Kind = locator.Kind(order.Uint32(buf[0:4]))
	loc.Port = order.Uint32(buf[4:8])
	copy(loc.Address[:], buf[8:24])
	return loc, true
}

func encodeLocators(order binary.ByteOrder, pl *ParameterList, id ParameterID, locs []locator.Locator) {
	for _, loc := range locs {
		pl.Add(id, encodeLocator(order, loc))
	}
}

func decodeLocators(order binary.ByteOrder, pl ParameterList, id ParameterID) []locator.Locator {
	var out []locator.Locator
	for _, p := range pl {
		if p.ID != id {
			continue
		}
		if loc, ok := decodeLocator(order, p.Value); ok {
			out = append(out, loc)
		}
	}
	return out
}
