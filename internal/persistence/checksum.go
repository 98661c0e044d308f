package persistence

import (
	"bytes"
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/fixedpoint"
)

// Checksum computes the 64-bit hash spec.md §4.7 defines: a BLAKE3 digest
// over a canonical field ordering — version, player_id, tick, each
// resource field in fixed order, then for each body in id-sorted order:
// id, mass (as fixedpoint.F), position components — folded to 64 bits by
// taking the digest's first eight bytes.
func Checksum(s *Snapshot) uint64 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int64(s.Version))
	buf.WriteString(s.PlayerID)
	binary.Write(&buf, binary.BigEndian, s.Tick)

	for _, k := range economy.AllResourceKinds {
		binary.Write(&buf, binary.BigEndian, s.Resources.Get(k))
	}

	for _, b := range s.sortedBodies() {
		buf.Write(b.ID[:])
		mass := fixedpoint.FromFloat64(b.Physics.Mass)
		binary.Write(&buf, binary.BigEndian, int64(mass))
		binary.Write(&buf, binary.BigEndian, b.Physics.Position.X)
		binary.Write(&buf, binary.BigEndian, b.Physics.Position.Y)
		binary.Write(&buf, binary.BigEndian, b.Physics.Position.Z)
	}

	digest := blake3.Sum256(buf.Bytes())
	return binary.BigEndian.Uint64(digest[:8])
}

// VerifyChecksum recomputes s's checksum and compares it against the
// stored value, returning ErrChecksumMismatch on disagreement.
func VerifyChecksum(s *Snapshot) error {
	got := Checksum(s)
	if got != s.Checksum {
		return checksumMismatch(s.Checksum, got)
	}
	return nil
}
