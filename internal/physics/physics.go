// Package physics is the authoritative per-tick N-body integrator and
// collision resolver (spec.md §4.4, component C4). It mutates the
// position and velocity of a body.Store's bodies in place, and on a
// collision merge also their mass, radius and population, removing the
// absorbed body from the store; it owns no
// state of its own beyond the running physics_state (tick, aggregate
// energy/momentum, last-updated id set).
package physics

import (
	"sort"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// Physical constants from spec.md §4.4.
const (
	GravitationalConstant = 6.67430e-11
	DefaultSoftening       = 1e-3
	SpeedOfLight           = 2.99792458e8
	DefaultMaxVelocity     = 0.1 * SpeedOfLight
	DefaultDirectThreshold = 1000
	DefaultSIMDThreshold   = 16
	DefaultTheta           = 0.5
)

// State is the per-tick summary spec.md §4.4 step 7 calls physics_state.
type State struct {
	Tick          uint64
	TotalEnergy   float64
	TotalMomentum vec3.Vec3
	BodiesUpdated []bodies.BodyID
}

// Engine integrates gravity and resolves collisions for one player's
// body.Store, one tick at a time.
type Engine struct {
	G               float64
	Softening       float64
	MaxVelocity     float64
	DirectThreshold int
	SIMDThreshold   int
	Theta           float64

	State State
}

// NewEngine returns an Engine configured with spec.md §4.4's defaults.
func NewEngine() *Engine {
	return &Engine{
		G:               GravitationalConstant,
		Softening:       DefaultSoftening,
		MaxVelocity:     DefaultMaxVelocity,
		DirectThreshold: DefaultDirectThreshold,
		SIMDThreshold:   DefaultSIMDThreshold,
		Theta:           DefaultTheta,
	}
}

// Step advances store by dt seconds: force integration, velocity clamp,
// position advance, collision detection and inelastic merge, then
// refreshes State. An empty store is a no-op except for the tick counter.
// It returns every collision merge resolved this tick so the caller can
// emit protocol.CollisionDetected.
func (e *Engine) Step(store *bodies.Store, dt float64) []CollisionResult {
	all := sortedBodies(store)
	if len(all) == 0 {
		e.State.Tick++
		e.State.BodiesUpdated = nil
		return nil
	}

	forces := e.computeForces(all)
	for i, b := range all {
		if b.Physics.Mass == 0 {
			continue
		}
		accel := vec3.Scale(forces[i], 1/b.Physics.Mass)
		b.Physics.Velocity = vec3.Add(b.Physics.Velocity, vec3.Scale(accel, dt))
		b.Physics.Velocity = vec3.ClampLength(b.Physics.Velocity, e.MaxVelocity)
	}
	for _, b := range all {
		b.Physics.Position = vec3.Add(b.Physics.Position, vec3.Scale(b.Physics.Velocity, dt))
	}

	collisions := e.resolveCollisions(store, all)

	survivors := sortedBodies(store)
	ids := make([]bodies.BodyID, 0, len(survivors))
	var energy float64
	var momentum vec3.Vec3
	for _, b := range survivors {
		ids = append(ids, b.ID)
		speedSq := vec3.LengthSquared(b.Physics.Velocity)
		energy += 0.5 * b.Physics.Mass * speedSq
		momentum = vec3.Add(momentum, vec3.Scale(b.Physics.Velocity, b.Physics.Mass))
	}

	e.State.Tick++
	e.State.TotalEnergy = energy
	e.State.TotalMomentum = momentum
	e.State.BodiesUpdated = ids
	return collisions
}

// computeForces selects the direct or Barnes-Hut algorithm by body count
// (spec.md §4.4's two thresholds) and returns one accumulated force per
// body, in the same order as all.
func (e *Engine) computeForces(all []*bodies.Body) []vec3.Vec3 {
	if len(all) > e.DirectThreshold {
		return e.barnesHutForces(all)
	}
	return e.directForces(all)
}

// sortedBodies returns store.All() in a stable order (by ID) so that
// iteration, pairing and tie-breaking are deterministic across runs with
// the same body set.
func sortedBodies(store *bodies.Store) []*bodies.Body {
	all := store.All()
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})
	return all
}
