package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/fixedpoint"
	"github.com/novaforge/cosmos-core/internal/persistence/wire"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// Serialization format names, spec.md §4.7/§9.
const (
	SerializationJSON     = "json"
	SerializationProtobuf = "protobuf"
)

// jsonSnapshot is the JSON wire shape: unlike the protobuf path, it
// carries every field a Snapshot has, including life-stage and
// kind-specific payload — JSON is the canonical, full-fidelity format;
// protobuf is the compact/fast option (see wire.BodyRecord's doc comment).
type jsonSnapshot struct {
	Version   int                `json:"version"`
	PlayerID  string             `json:"player_id"`
	Tick      uint64             `json:"tick"`
	Resources map[string]uint64  `json:"resources"`
	Bodies    []*bodies.Body     `json:"bodies"`
	Checksum  uint64             `json:"checksum"`
}

// Serialize encodes s in the named format.
func Serialize(s *Snapshot, format string) ([]byte, error) {
	switch format {
	case SerializationJSON:
		return serializeJSON(s)
	case SerializationProtobuf:
		return wire.Marshal(toWireMessage(s)), nil
	default:
		return nil, fmt.Errorf("persistence: unknown serialization format %q", format)
	}
}

// Deserialize decodes bytes produced by Serialize back into a Snapshot.
// The protobuf path only round-trips the fields wire.BodyRecord carries
// (physics + population); callers that need full life-stage fidelity
// across a save/load cycle should configure persistence.serialization
// as "json".
func Deserialize(data []byte, format string) (*Snapshot, error) {
	switch format {
	case SerializationJSON:
		return deserializeJSON(data)
	case SerializationProtobuf:
		msg, err := wire.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		return fromWireMessage(msg), nil
	default:
		return nil, fmt.Errorf("persistence: unknown serialization format %q", format)
	}
}

func serializeJSON(s *Snapshot) ([]byte, error) {
	resources := make(map[string]uint64, len(economy.AllResourceKinds))
	for _, k := range economy.AllResourceKinds {
		resources[k.String()] = s.Resources.Get(k)
	}
	return json.Marshal(jsonSnapshot{
		Version:   s.Version,
		PlayerID:  s.PlayerID,
		Tick:      s.Tick,
		Resources: resources,
		Bodies:    s.sortedBodies(),
		Checksum:  s.Checksum,
	})
}

func deserializeJSON(data []byte) (*Snapshot, error) {
	var js jsonSnapshot
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, err
	}
	var res economy.Resources
	for _, k := range economy.AllResourceKinds {
		res.Set(k, js.Resources[k.String()])
	}
	return &Snapshot{
		Version:   js.Version,
		PlayerID:  js.PlayerID,
		Tick:      js.Tick,
		Resources: res,
		Bodies:    js.Bodies,
		Checksum:  js.Checksum,
	}, nil
}

func toWireMessage(s *Snapshot) wire.SnapshotMessage {
	msg := wire.SnapshotMessage{
		Version:  uint32(s.Version),
		PlayerID: s.PlayerID,
		Tick:     s.Tick,
		Checksum: s.Checksum,
	}
	for _, k := range economy.AllResourceKinds {
		msg.Resources = append(msg.Resources, wire.ResourceAmount{Kind: uint32(k), Amount: s.Resources.Get(k)})
	}
	for _, b := range s.sortedBodies() {
		msg.Bodies = append(msg.Bodies, wire.BodyRecord{
			ID:         b.ID.String(),
			Kind:       uint32(b.Kind),
			Mass:       int64(fixedpoint.FromFloat64(b.Physics.Mass)),
			PosX:       b.Physics.Position.X,
			PosY:       b.Physics.Position.Y,
			PosZ:       b.Physics.Position.Z,
			Population: b.Lifecycle.Population,
		})
	}
	return msg
}

func vec3OfWire(x, y, z float64) vec3.Vec3 {
	return vec3.Vec3{X: x, Y: y, Z: z}
}

func fromWireMessage(msg wire.SnapshotMessage) *Snapshot {
	var res economy.Resources
	for _, r := range msg.Resources {
		res.Set(economy.ResourceKind(r.Kind), r.Amount)
	}
	out := make([]*bodies.Body, 0, len(msg.Bodies))
	for _, br := range msg.Bodies {
		id, _ := uuid.Parse(br.ID)
		out = append(out, &bodies.Body{
			ID:   id,
			Kind: bodies.Kind(br.Kind),
			Physics: bodies.PhysicsData{
				Mass: fixedpoint.F(br.Mass).ToFloat64(),
				Position: vec3OfWire(br.PosX, br.PosY, br.PosZ),
			},
			Lifecycle: bodies.LifecycleData{Population: br.Population},
		})
	}
	return &Snapshot{
		Version:  int(msg.Version),
		PlayerID: msg.PlayerID,
		Tick:     msg.Tick,
		Resources: res,
		Bodies:    out,
		Checksum:  msg.Checksum,
	}
}
