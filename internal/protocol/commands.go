// Package protocol defines the inbound command and outbound event
// stream shapes between the core engine and its transport collaborator
// (spec.md §6 — transport framing itself is out of scope here, same as
// the teacher leaves HTTP/JSON wire framing to its own handlers.go).
package protocol

import (
	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// CreateBody requests a new celestial body of the given kind at the
// given position, debited from the player's resources.
type CreateBody struct {
	Player   string
	Kind     bodies.Kind
	Position vec3.Vec3
}

// RemoveBody requests the destruction of one of the player's bodies.
type RemoveBody struct {
	Player string
	BodyID bodies.BodyID
}

// PurchaseUpgrade requests the next level of an upgrade kind.
type PurchaseUpgrade struct {
	Player string
	Kind   economy.UpgradeKind
}

// SaveGame requests an explicit snapshot at the player's current tick.
type SaveGame struct {
	Player string
}

// LoadGame requests a restore. Tick is the target tick to restore to;
// HasTick distinguishes "restore to latest" from "restore to a named
// tick" without resorting to a pointer field.
type LoadGame struct {
	Player  string
	Tick    uint64
	HasTick bool
}

// GetState requests the player's current in-memory state as a Snapshot.
type GetState struct {
	Player string
}

// GetStateResult is what GetState resolves to.
type GetStateResult struct {
	Snapshot *persistence.Snapshot
}
