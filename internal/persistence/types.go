// Package persistence is the snapshot/delta durability engine (spec.md
// §4.7, component C7): checksummed, compressed, versioned snapshots with
// incremental deltas, schema migration and retention.
package persistence

import (
	"sort"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
)

// CurrentVersion is the schema version new snapshots are stamped with.
const CurrentVersion = 1

// Snapshot is the full per-player state at one tick.
type Snapshot struct {
	Version   int
	PlayerID  string
	Tick      uint64
	Resources economy.Resources
	Bodies    []*bodies.Body
	Checksum  uint64
	CreatedAt time.Time
}

// sortedBodies returns s.Bodies sorted by ID, the canonical order the
// checksum and wire encodings both rely on.
func (s *Snapshot) sortedBodies() []*bodies.Body {
	out := make([]*bodies.Body, len(s.Bodies))
	copy(out, s.Bodies)
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// ResourceDelta is a signed per-resource change.
type ResourceDelta map[economy.ResourceKind]int64

// Delta is an incremental patch from one tick to another (spec.md §4.7).
// BodyUpserts carries full replacement state for created or updated
// bodies; BodyRemovals names bodies removed between FromTick and ToTick.
type Delta struct {
	Version      int
	PlayerID     string
	FromTick     uint64
	ToTick       uint64
	Resources    ResourceDelta
	BodyUpserts  []*bodies.Body
	BodyRemovals []bodies.BodyID
	CreatedAt    time.Time
}

// Apply folds d atop snapshot, producing a new Snapshot at d.ToTick. d's
// FromTick must equal snapshot.Tick. The returned snapshot's checksum is
// freshly recomputed; it is not validated against any stored value here.
func Apply(snapshot *Snapshot, d *Delta) (*Snapshot, error) {
	if d.FromTick != snapshot.Tick {
		return nil, errDeltaOutOfOrder(snapshot.Tick, d.FromTick)
	}

	next := &Snapshot{
		Version:   snapshot.Version,
		PlayerID:  snapshot.PlayerID,
		Tick:      d.ToTick,
		Resources: snapshot.Resources.Clone(),
		CreatedAt: d.CreatedAt,
	}

	for k, delta := range d.Resources {
		cur := next.Resources.Get(k)
		if delta >= 0 {
			next.Resources.Add(k, uint64(delta))
		} else if uint64(-delta) <= cur {
			next.Resources.Set(k, cur-uint64(-delta))
		} else {
			next.Resources.Set(k, 0)
		}
	}

	byID := make(map[bodies.BodyID]*bodies.Body, len(snapshot.Bodies))
	for _, b := range snapshot.Bodies {
		byID[b.ID] = b
	}
	for _, removed := range d.BodyRemovals {
		delete(byID, removed)
	}
	for _, upsert := range d.BodyUpserts {
		byID[upsert.ID] = upsert
	}
	next.Bodies = make([]*bodies.Body, 0, len(byID))
	for _, b := range byID {
		next.Bodies = append(next.Bodies, b)
	}

	next.Checksum = Checksum(next)
	return next, nil
}
