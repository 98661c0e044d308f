package physics

import (
	"math"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// directForces computes O(N^2) pairwise Newtonian gravity with Plummer
// softening. Used when len(all) <= DirectThreshold. The loop below is
// plain scalar Go at every body count: SIMDThreshold is not read, and no
// four-lane vectorized path exists.
func (e *Engine) directForces(all []*bodies.Body) []vec3.Vec3 {
	n := len(all)
	forces := make([]vec3.Vec3, n)
	eps2 := e.Softening * e.Softening

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			delta := vec3.Sub(all[j].Physics.Position, all[i].Physics.Position)
			r2 := vec3.LengthSquared(delta)
			if r2 < eps2 {
				continue // closer than softening length: zero contribution
			}
			r := math.Sqrt(r2)
			dir := vec3.Scale(delta, 1/r)
			mag := e.G * all[i].Physics.Mass * all[j].Physics.Mass / (r2 + eps2)
			f := vec3.Scale(dir, mag)
			forces[i] = vec3.Add(forces[i], f)
			forces[j] = vec3.Sub(forces[j], f)
		}
	}
	return forces
}
