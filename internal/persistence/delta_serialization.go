package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
)

// jsonDelta mirrors Delta for JSON encoding.
type jsonDelta struct {
	Version      int             `json:"version"`
	Resources    map[string]int64 `json:"resources"`
	BodyUpserts  []*bodies.Body  `json:"body_upserts"`
	BodyRemovals []string        `json:"body_removals"`
}

// Deltas are small and saved frequently, so persistence.serialization's
// protobuf option is not extended to them — they always round-trip
// through JSON regardless of the configured format. This is a deliberate
// scope decision (see DESIGN.md), not a silent gap: snapshots honor the
// configured format, though the protobuf option for snapshots is itself
// a partial, opt-in encoding (see wire.BodyRecord's doc comment) — JSON
// remains the only full-fidelity format and is the default.
func serializeDelta(d *Delta, _ string) ([]byte, error) {
	resources := make(map[string]int64, len(d.Resources))
	for k, v := range d.Resources {
		resources[k.String()] = v
	}
	removals := make([]string, len(d.BodyRemovals))
	for i, id := range d.BodyRemovals {
		removals[i] = id.String()
	}
	return json.Marshal(jsonDelta{
		Version:      d.Version,
		Resources:    resources,
		BodyUpserts:  d.BodyUpserts,
		BodyRemovals: removals,
	})
}

func deserializeDelta(data []byte, _ string) (*Delta, error) {
	var jd jsonDelta
	if err := json.Unmarshal(data, &jd); err != nil {
		return nil, err
	}
	d := &Delta{Version: jd.Version, Resources: ResourceDelta{}, BodyUpserts: jd.BodyUpserts}
	for k, v := range jd.Resources {
		kind, err := parseResourceKindName(k)
		if err != nil {
			return nil, err
		}
		d.Resources[kind] = v
	}
	for _, idStr := range jd.BodyRemovals {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		d.BodyRemovals = append(d.BodyRemovals, id)
	}
	return d, nil
}

// parseResourceKindName reverses economy.ResourceKind.String() for the
// fixed, known set of resource names.
func parseResourceKindName(name string) (economy.ResourceKind, error) {
	for _, k := range economy.AllResourceKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("persistence: unknown resource kind %q", name)
}
