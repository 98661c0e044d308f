// Package bodies owns celestial body records for one player: creation,
// lookup, removal, and the creation-limit invariants (spec.md §4.3,
// component C3).
package bodies

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/fixedpoint"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// BodyID is the opaque 128-bit identifier spec.md §3 calls for.
type BodyID = uuid.UUID

// Kind tags the variant carried by a Body (spec.md §3's "tagged variant").
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
	KindBlackHole
	KindAsteroid
	KindComet
	KindMoon
	KindDwarfPlanet
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "Star"
	case KindPlanet:
		return "Planet"
	case KindBlackHole:
		return "BlackHole"
	case KindAsteroid:
		return "Asteroid"
	case KindComet:
		return "Comet"
	case KindMoon:
		return "Moon"
	case KindDwarfPlanet:
		return "DwarfPlanet"
	default:
		return "Unknown"
	}
}

// ParseKind maps a Kind's String() form back to the value, for decoding
// kinds off the wire (cmd/server's API).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Star":
		return KindStar, nil
	case "Planet":
		return KindPlanet, nil
	case "BlackHole":
		return KindBlackHole, nil
	case "Asteroid":
		return KindAsteroid, nil
	case "Comet":
		return KindComet, nil
	case "Moon":
		return KindMoon, nil
	case "DwarfPlanet":
		return KindDwarfPlanet, nil
	default:
		return 0, fmt.Errorf("bodies: unrecognized kind %q", s)
	}
}

// StarData carries the fields specific to Kind == KindStar.
type StarData struct {
	Spectral    string
	Temperature float64
	Luminosity  float64
	Age         float64
	Lifespan    float64
}

// PlanetData carries the fields specific to Kind == KindPlanet.
type PlanetData struct {
	Type             string
	Atmosphere       string
	Water            float64
	TemperatureRange [2]float64
	Habitability     int
}

// BlackHoleData carries the fields specific to Kind == KindBlackHole.
type BlackHoleData struct {
	SchwarzschildRadius float64
	AccretionRate       float64
	FormedAt            int64
}

// KindData is the per-variant payload; exactly one field is non-nil,
// selected by Kind. Asteroid/Comet/Moon/DwarfPlanet carry no extra data.
type KindData struct {
	Star      *StarData
	Planet    *PlanetData
	BlackHole *BlackHoleData
}

// PhysicsData is the double-precision state the physics engine integrates.
// It never round-trips through fixedpoint.F.
type PhysicsData struct {
	Position        vec3.Vec3
	Velocity        vec3.Vec3
	Mass            float64
	Radius          float64
	AngularVelocity vec3.Vec3
}

// LifeStageKind tags the LifeStage sum type (spec.md §3).
type LifeStageKind int

const (
	LifeNone LifeStageKind = iota
	LifeMicrobial
	LifePlant
	LifeAnimal
	LifeIntelligent
)

// LifeStage is the sum type {None; Microbial; Plant; Animal; Intelligent}.
// Only the fields matching Kind are meaningful.
type LifeStage struct {
	Kind LifeStageKind

	// Microbial
	Diversity int
	Pressure  float64

	// Plant
	Coverage   int // 0..=100
	OxygenRate fixedpoint.F

	// Animal
	Species             int
	FoodChainComplexity int

	// Intelligent
	TechLevel     int
	Unity         int // 0..=100
	KnowledgeRate fixedpoint.F
}

// LifecycleData tracks age, evolutionary stage, and population.
type LifecycleData struct {
	AgeTicks       uint64
	LifespanTicks  *uint64 // nil if the body has no defined lifespan
	Stage          LifeStage
	Population     uint64
	EvolutionTimer uint64
}

// BodyResources are the production properties a body contributes to its
// owner's economy.
type BodyResources struct {
	Rates      economy.ProductionRates
	Multiplier fixedpoint.F
	Efficiency fixedpoint.F
}

// Body is one celestial body record (spec.md §3).
type Body struct {
	ID          BodyID
	Kind        Kind
	KindData    KindData
	Physics     PhysicsData
	Lifecycle   LifecycleData
	Resources   BodyResources
	CreatedAt   time.Time
	LastUpdated time.Time
}
