package physics

import (
	"math"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// collisionPair is a unique, unordered pair of colliding bodies, spec.md
// §4.4 step 5.
type collisionPair struct {
	a, b bodies.BodyID
}

// CollisionResult names one merge resolved during a tick, so callers
// above the engine (component C8's loop, internal/loop) can emit protocol.CollisionDetected
// without re-deriving survivor/absorbed from the post-tick store diff.
type CollisionResult struct {
	Survivor bodies.BodyID
	Absorbed bodies.BodyID
}

// resolveCollisions finds every pair closer than the sum of their radii
// via a uniform-grid broad-phase, then merges each pair narrow-phase
// (spec.md §4.4 steps 5-6). all must already reflect this tick's advanced
// positions. Bodies merged away are removed from store; a body can only
// take part in one merge per tick (once consumed as a non-survivor, it is
// skipped in subsequent candidate pairs).
func (e *Engine) resolveCollisions(store *bodies.Store, all []*bodies.Body) []CollisionResult {
	pairs := broadPhase(all)
	consumed := make(map[bodies.BodyID]bool)
	byID := make(map[bodies.BodyID]*bodies.Body, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}

	var results []CollisionResult
	for _, pair := range pairs {
		if consumed[pair.a] || consumed[pair.b] {
			continue
		}
		a, b := byID[pair.a], byID[pair.b]
		survivor, absorbed := merge(a, b)
		consumed[absorbed.ID] = true
		byID[survivor.ID] = survivor
		_ = store.Remove(absorbed.ID)
		results = append(results, CollisionResult{Survivor: survivor.ID, Absorbed: absorbed.ID})
	}
	return results
}

// broadPhase buckets bodies into cells sized to the largest radius seen,
// so that any colliding pair is guaranteed to share or neighbor a cell.
func broadPhase(all []*bodies.Body) []collisionPair {
	if len(all) < 2 {
		return nil
	}
	maxRadius := 0.0
	for _, b := range all {
		if b.Physics.Radius > maxRadius {
			maxRadius = b.Physics.Radius
		}
	}
	cellSize := maxRadius * 2
	if cellSize <= 0 {
		cellSize = 1
	}

	type cellKey struct{ x, y, z int64 }
	buckets := make(map[cellKey][]int)
	cellOf := func(p vec3.Vec3) cellKey {
		return cellKey{
			x: int64(math.Floor(p.X / cellSize)),
			y: int64(math.Floor(p.Y / cellSize)),
			z: int64(math.Floor(p.Z / cellSize)),
		}
	}
	for i, b := range all {
		k := cellOf(b.Physics.Position)
		buckets[k] = append(buckets[k], i)
	}

	var pairs []collisionPair
	seen := make(map[[2]int]bool)
	for i, b := range all {
		k := cellOf(b.Physics.Position)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					neighbor := cellKey{k.x + dx, k.y + dy, k.z + dz}
					for _, j := range buckets[neighbor] {
						if j <= i {
							continue
						}
						key := [2]int{i, j}
						if seen[key] {
							continue
						}
						seen[key] = true
						if isColliding(b, all[j]) {
							pairs = append(pairs, collisionPair{a: b.ID, b: all[j].ID})
						}
					}
				}
			}
		}
	}
	return pairs
}

func isColliding(a, b *bodies.Body) bool {
	dist := vec3.Length(vec3.Sub(a.Physics.Position, b.Physics.Position))
	return dist < a.Physics.Radius+b.Physics.Radius
}

// merge performs the perfectly inelastic collision of a and b, mutating
// the heavier body (the survivor) in place per spec.md §4.4 step 6 and
// returning it alongside the absorbed (removed) body.
func merge(a, b *bodies.Body) (survivor, absorbed *bodies.Body) {
	survivor, absorbed = a, b
	if b.Physics.Mass > a.Physics.Mass {
		survivor, absorbed = b, a
	}

	totalMass := a.Physics.Mass + b.Physics.Mass
	momentum := vec3.Add(vec3.Scale(a.Physics.Velocity, a.Physics.Mass), vec3.Scale(b.Physics.Velocity, b.Physics.Mass))
	centroid := vec3.Add(vec3.Scale(a.Physics.Position, a.Physics.Mass), vec3.Scale(b.Physics.Position, b.Physics.Mass))

	survivor.Physics.Mass = totalMass
	if totalMass > 0 {
		survivor.Physics.Velocity = vec3.Scale(momentum, 1/totalMass)
		survivor.Physics.Position = vec3.Scale(centroid, 1/totalMass)
	}
	survivor.Physics.Radius = math.Cbrt(totalMass)
	survivor.Lifecycle.Population += absorbed.Lifecycle.Population

	return survivor, absorbed
}
