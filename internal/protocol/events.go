package protocol

import (
	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
)

// Event is implemented by every outbound event type, so a dispatcher
// can carry them through one channel without an interface{} escape
// hatch losing type information at the call site.
type Event interface {
	Name() string
}

// CelestialBodyCreated is emitted after CreateBody succeeds.
type CelestialBodyCreated struct {
	Player string
	BodyID bodies.BodyID
	Kind   bodies.Kind
}

func (CelestialBodyCreated) Name() string { return "celestial_body_created" }

// CelestialBodyDestroyed is emitted after RemoveBody succeeds and for the
// absorbed body of each collision merge. Nothing else removes a body or
// emits this event; there is no star end-of-life removal.
type CelestialBodyDestroyed struct {
	Player string
	BodyID bodies.BodyID
}

func (CelestialBodyDestroyed) Name() string { return "celestial_body_destroyed" }

// LifeEvolved is emitted whenever a planet's life stage transitions.
type LifeEvolved struct {
	Player   string
	BodyID   bodies.BodyID
	NewStage bodies.LifeStageKind
}

func (LifeEvolved) Name() string { return "life_evolved" }

// UpgradePurchased is emitted after PurchaseUpgrade succeeds.
type UpgradePurchased struct {
	Player string
	Kind   economy.UpgradeKind
}

func (UpgradePurchased) Name() string { return "upgrade_purchased" }

// CollisionDetected is emitted whenever the physics engine merges two
// bodies; Survivor keeps the combined mass, Absorbed is removed.
type CollisionDetected struct {
	Player     string
	SurvivorID bodies.BodyID
	AbsorbedID bodies.BodyID
}

func (CollisionDetected) Name() string { return "collision_detected" }

// GameSaved is emitted after a snapshot is durably written.
type GameSaved struct {
	Player string
	Tick   uint64
}

func (GameSaved) Name() string { return "game_saved" }

// GameLoaded is emitted after a restore completes.
type GameLoaded struct {
	Player string
	Tick   uint64
}

func (GameLoaded) Name() string { return "game_loaded" }
