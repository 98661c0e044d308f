// Package wire hand-authors a protobuf-style length-delimited message for
// the persistence engine's "protobuf" serialization option. It mirrors
// what a protoc-generated message would produce for the same field
// layout, built directly on google.golang.org/protobuf/encoding/protowire
// since no protoc invocation is available in this build.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for SnapshotMessage, chosen the way a hand-written
// .proto schema would number them — stable across versions, never reused.
const (
	fieldVersion    = 1
	fieldPlayerID   = 2
	fieldTick       = 3
	fieldResources  = 4 // repeated ResourceAmount
	fieldBodies     = 5 // repeated BodyRecord
	fieldChecksum   = 6
)

// Resource amount field numbers, nested inside fieldResources entries.
const (
	resourceKindField   = 1
	resourceAmountField = 2
)

// Body record field numbers, nested inside fieldBodies entries.
const (
	bodyIDField     = 1
	bodyKindField   = 2
	bodyMassField   = 3
	bodyPosXField   = 4
	bodyPosYField   = 5
	bodyPosZField   = 6
	bodyPopulation  = 7
)

// ResourceAmount is one (kind, amount) pair.
type ResourceAmount struct {
	Kind   uint32
	Amount uint64
}

// BodyRecord is the flattened physics/population subset of a body that
// the checksum and persisted snapshot need; life-stage and kind-specific
// payload fields round-trip through the JSON serialization path only —
// the protobuf path is the compact/fast option, not the canonical one.
type BodyRecord struct {
	ID         string
	Kind       uint32
	Mass       int64 // fixedpoint.F bit pattern
	PosX       float64
	PosY       float64
	PosZ       float64
	Population uint64
}

// SnapshotMessage is the wire-level mirror of persistence.Snapshot.
type SnapshotMessage struct {
	Version   uint32
	PlayerID  string
	Tick      uint64
	Resources []ResourceAmount
	Bodies    []BodyRecord
	Checksum  uint64
}

// Marshal encodes m as a length-delimited protobuf-compatible message.
func Marshal(m SnapshotMessage) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Version))
	b = protowire.AppendTag(b, fieldPlayerID, protowire.BytesType)
	b = protowire.AppendString(b, m.PlayerID)
	b = protowire.AppendTag(b, fieldTick, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Tick)

	for _, r := range m.Resources {
		b = protowire.AppendTag(b, fieldResources, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalResource(r))
	}
	for _, body := range m.Bodies {
		b = protowire.AppendTag(b, fieldBodies, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalBody(body))
	}

	b = protowire.AppendTag(b, fieldChecksum, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Checksum)
	return b
}

func marshalResource(r ResourceAmount) []byte {
	var b []byte
	b = protowire.AppendTag(b, resourceKindField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Kind))
	b = protowire.AppendTag(b, resourceAmountField, protowire.VarintType)
	b = protowire.AppendVarint(b, r.Amount)
	return b
}

func marshalBody(body BodyRecord) []byte {
	var b []byte
	b = protowire.AppendTag(b, bodyIDField, protowire.BytesType)
	b = protowire.AppendString(b, body.ID)
	b = protowire.AppendTag(b, bodyKindField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(body.Kind))
	b = protowire.AppendTag(b, bodyMassField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(body.Mass))
	b = protowire.AppendTag(b, bodyPosXField, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, protowire.EncodeZigZag(int64(asBits(body.PosX))))
	b = protowire.AppendTag(b, bodyPosYField, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, protowire.EncodeZigZag(int64(asBits(body.PosY))))
	b = protowire.AppendTag(b, bodyPosZField, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, protowire.EncodeZigZag(int64(asBits(body.PosZ))))
	b = protowire.AppendTag(b, bodyPopulation, protowire.VarintType)
	b = protowire.AppendVarint(b, body.Population)
	return b
}

// Unmarshal decodes a message produced by Marshal.
func Unmarshal(data []byte) (SnapshotMessage, error) {
	var m SnapshotMessage
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldVersion:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid version varint")
			}
			m.Version = uint32(v)
			data = data[n:]
		case fieldPlayerID:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid player_id")
			}
			m.PlayerID = v
			data = data[n:]
		case fieldTick:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid tick varint")
			}
			m.Tick = v
			data = data[n:]
		case fieldResources:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid resource entry")
			}
			r, err := unmarshalResource(v)
			if err != nil {
				return m, err
			}
			m.Resources = append(m.Resources, r)
			data = data[n:]
		case fieldBodies:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid body entry")
			}
			body, err := unmarshalBody(v)
			if err != nil {
				return m, err
			}
			m.Bodies = append(m.Bodies, body)
			data = data[n:]
		case fieldChecksum:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid checksum varint")
			}
			m.Checksum = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return m, fmt.Errorf("wire: invalid unknown field")
			}
			data = data[n:]
		}
	}
	return m, nil
}

func unmarshalResource(data []byte) (ResourceAmount, error) {
	var r ResourceAmount
	for len(data) > 0 {
		num, _, n := protowire.ConsumeTag(data)
		if n < 0 {
			return r, fmt.Errorf("wire: invalid resource tag")
		}
		data = data[n:]
		switch num {
		case resourceKindField:
			v, n := protowire.ConsumeVarint(data)
			r.Kind = uint32(v)
			data = data[n:]
		case resourceAmountField:
			v, n := protowire.ConsumeVarint(data)
			r.Amount = v
			data = data[n:]
		default:
			return r, fmt.Errorf("wire: unknown resource field %d", num)
		}
	}
	return r, nil
}

func unmarshalBody(data []byte) (BodyRecord, error) {
	var body BodyRecord
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return body, fmt.Errorf("wire: invalid body tag")
		}
		data = data[n:]
		switch num {
		case bodyIDField:
			v, n := protowire.ConsumeString(data)
			body.ID = v
			data = data[n:]
		case bodyKindField:
			v, n := protowire.ConsumeVarint(data)
			body.Kind = uint32(v)
			data = data[n:]
		case bodyMassField:
			v, n := protowire.ConsumeVarint(data)
			body.Mass = int64(v)
			data = data[n:]
		case bodyPosXField:
			v, n := protowire.ConsumeFixed64(data)
			body.PosX = fromBits(uint64(protowire.DecodeZigZag(v)))
			data = data[n:]
		case bodyPosYField:
			v, n := protowire.ConsumeFixed64(data)
			body.PosY = fromBits(uint64(protowire.DecodeZigZag(v)))
			data = data[n:]
		case bodyPosZField:
			v, n := protowire.ConsumeFixed64(data)
			body.PosZ = fromBits(uint64(protowire.DecodeZigZag(v)))
			data = data[n:]
		case bodyPopulation:
			v, n := protowire.ConsumeVarint(data)
			body.Population = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return body, fmt.Errorf("wire: invalid unknown body field")
			}
			data = data[n:]
		}
	}
	return body, nil
}
