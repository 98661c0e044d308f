package physics

import (
	"math"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// minCellSize is the smallest octree cell the subdivision will produce.
// Bodies that remain coincident below this size fall through to direct
// (pairwise) evaluation inside that leaf, per spec.md §4.4's edge case.
const minCellSize = 1e-6

// octNode is one node of the Barnes-Hut tree. A node is either a leaf
// (holding the indices of the bodies inside it, evaluated directly once
// the cell can't usefully subdivide further) or an internal node with up
// to eight children, approximated as a single point mass at its center of
// mass when queried from far enough away.
type octNode struct {
	center   vec3.Vec3
	halfSize float64

	mass         float64
	centerOfMass vec3.Vec3

	children [8]*octNode
	leafIdx  []int
	isLeaf   bool
}

// buildOctree constructs a Barnes-Hut tree over all bodies' positions.
func buildOctree(all []*bodies.Body) *octNode {
	center, halfSize := boundingCube(all)
	root := &octNode{center: center, halfSize: halfSize, isLeaf: true}
	for i := range all {
		root.insert(i, all)
	}
	return root
}

// boundingCube returns a cube center and half-size enclosing every
// position, padded slightly so boundary bodies aren't clipped.
func boundingCube(all []*bodies.Body) (vec3.Vec3, float64) {
	min, max := all[0].Physics.Position, all[0].Physics.Position
	for _, b := range all[1:] {
		p := b.Physics.Position
		min = vec3.Vec3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = vec3.Vec3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	center := vec3.Scale(vec3.Add(min, max), 0.5)
	span := math.Max(math.Max(max.X-min.X, max.Y-min.Y), max.Z-min.Z)
	halfSize := span/2 + 1
	return center, halfSize
}

func (n *octNode) octantOf(p vec3.Vec3) int {
	idx := 0
	if p.X >= n.center.X {
		idx |= 1
	}
	if p.Y >= n.center.Y {
		idx |= 2
	}
	if p.Z >= n.center.Z {
		idx |= 4
	}
	return idx
}

func (n *octNode) childCenter(octant int) vec3.Vec3 {
	q := n.halfSize / 2
	c := n.center
	if octant&1 != 0 {
		c.X += q
	} else {
		c.X -= q
	}
	if octant&2 != 0 {
		c.Y += q
	} else {
		c.Y -= q
	}
	if octant&4 != 0 {
		c.Z += q
	} else {
		c.Z -= q
	}
	return c
}

// insert adds body index idx to the subtree rooted at n, subdividing as
// needed. Below minCellSize, coincident bodies accumulate in the leaf's
// index list rather than subdividing further (they are force-evaluated
// directly against each other when the tree is queried).
func (n *octNode) insert(idx int, all []*bodies.Body) {
	mass := all[idx].Physics.Mass
	pos := all[idx].Physics.Position

	if n.isLeaf && len(n.leafIdx) == 0 {
		n.leafIdx = append(n.leafIdx, idx)
		n.mass = mass
		n.centerOfMass = pos
		return
	}

	if n.isLeaf {
		if n.halfSize <= minCellSize {
			n.leafIdx = append(n.leafIdx, idx)
			n.updateMass(mass, pos)
			return
		}
		// Subdivide: re-insert the prior occupant(s) with their full
		// (position, mass), then fall through to insert idx below.
		prior := n.leafIdx
		n.leafIdx = nil
		n.isLeaf = false
		for _, p := range prior {
			n.insertIntoChild(p, all)
		}
	}

	n.insertIntoChild(idx, all)
	n.updateMass(mass, pos)
}

func (n *octNode) insertIntoChild(idx int, all []*bodies.Body) {
	octant := n.octantOf(all[idx].Physics.Position)
	child := n.children[octant]
	if child == nil {
		child = &octNode{center: n.childCenter(octant), halfSize: n.halfSize / 2, isLeaf: true}
		n.children[octant] = child
	}
	child.insert(idx, all)
}

func (n *octNode) updateMass(addedMass float64, addedPos vec3.Vec3) {
	total := n.mass + addedMass
	if total == 0 {
		return
	}
	n.centerOfMass = vec3.Scale(vec3.Add(vec3.Scale(n.centerOfMass, n.mass), vec3.Scale(addedPos, addedMass)), 1/total)
	n.mass = total
}

// force returns the gravitational force the subtree rooted at n exerts on
// the body at idx. Internal nodes are approximated as a point mass at
// their center of mass whenever node_size/distance < theta.
func (n *octNode) force(idx int, all []*bodies.Body, e *Engine) vec3.Vec3 {
	if n == nil || n.mass == 0 {
		return vec3.Zero
	}

	if n.isLeaf {
		var total vec3.Vec3
		eps2 := e.Softening * e.Softening
		for _, j := range n.leafIdx {
			if j == idx {
				continue
			}
			total = vec3.Add(total, pairForce(all[idx], all[j], e.G, eps2))
		}
		return total
	}

	delta := vec3.Sub(n.centerOfMass, all[idx].Physics.Position)
	dist := vec3.Length(delta)
	if dist == 0 {
		// Coincident with this subtree's center of mass: descend instead
		// of risking a degenerate opening-angle test.
		var total vec3.Vec3
		for _, child := range n.children {
			total = vec3.Add(total, child.force(idx, all, e))
		}
		return total
	}

	if (2*n.halfSize)/dist < e.Theta {
		eps2 := e.Softening * e.Softening
		r2 := dist * dist
		if r2 < eps2 {
			return vec3.Zero
		}
		dir := vec3.Scale(delta, 1/dist)
		mag := e.G * all[idx].Physics.Mass * n.mass / (r2 + eps2)
		return vec3.Scale(dir, mag)
	}

	var total vec3.Vec3
	for _, child := range n.children {
		total = vec3.Add(total, child.force(idx, all, e))
	}
	return total
}

func pairForce(a, b *bodies.Body, g, eps2 float64) vec3.Vec3 {
	delta := vec3.Sub(b.Physics.Position, a.Physics.Position)
	r2 := vec3.LengthSquared(delta)
	if r2 < eps2 {
		return vec3.Zero
	}
	r := math.Sqrt(r2)
	dir := vec3.Scale(delta, 1/r)
	mag := g * a.Physics.Mass * b.Physics.Mass / (r2 + eps2)
	return vec3.Scale(dir, mag)
}

// barnesHutForces computes the approximate force on every body using the
// tree built by buildOctree, applying the opening-angle criterion at each
// node (spec.md §4.4: node_size/distance < theta).
func (e *Engine) barnesHutForces(all []*bodies.Body) []vec3.Vec3 {
	root := buildOctree(all)
	forces := make([]vec3.Vec3, len(all))
	for i := range all {
		forces[i] = root.force(i, all, e)
	}
	return forces
}
