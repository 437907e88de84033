package domain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// PropertiesHash is a running content hash over an asset's history. Two assets with
// identical histories hash equal; any divergence hashes unequal.
type PropertiesHash []byte

// OriginHash seeds the hash of a freshly minted commodity. Amount is deliberately
// excluded so that equal goods of different quantities can be batched.
func OriginHash(name, unit string) PropertiesHash {
	return Extend(nil, HistoryEntry{Kind: HistoryOrigin, Text: name + "\x00" + unit})
}

// Extend chains one history entry onto prev.
func Extend(prev PropertiesHash, e HistoryEntry) PropertiesHash {
	h := blake3.New()
	h.Write(prev)
	writeField(h, []byte(e.Kind))
	writeField(h, []byte(e.Handler))
	writeField(h, []byte(e.Text))
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], e.Decrease)
	h.Write(num[:])
	if e.Location != nil {
		for _, v := range []int64{e.Location.Latitude, e.Location.Longitude, e.Location.Radius} {
			binary.BigEndian.PutUint64(num[:], uint64(v))
			h.Write(num[:])
		}
	}
	return h.Sum(nil)
}

func writeField(h *blake3.Hasher, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// Equal compares two hashes.
func (p PropertiesHash) Equal(other PropertiesHash) bool { return bytes.Equal(p, other) }

func (p PropertiesHash) String() string { return hex.EncodeToString(p) }
