package physics

import (
	"math"
	"testing"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

func newStoreWithBody(t *testing.T, pos, vel vec3.Vec3, mass float64) *bodies.Store {
	t.Helper()
	store := bodies.NewStore()
	res := &economy.Resources{}
	res.Set(economy.CosmicDust, 1_000_000)
	b, err := store.Create(bodies.KindAsteroid, pos, res, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b.Physics.Velocity = vel
	b.Physics.Mass = mass
	return store
}

func TestStepEmptyStoreIsNoOp(t *testing.T) {
	e := NewEngine()
	store := bodies.NewStore()
	e.Step(store, 0.05)
	if e.State.Tick != 1 {
		t.Errorf("tick = %d, want 1", e.State.Tick)
	}
	if len(e.State.BodiesUpdated) != 0 {
		t.Errorf("bodies updated on empty store: %v", e.State.BodiesUpdated)
	}
}

func TestStepSingleBodyZeroForce(t *testing.T) {
	e := NewEngine()
	store := newStoreWithBody(t, vec3.Vec3{X: 5}, vec3.Vec3{X: 1}, 1e15)
	e.Step(store, 0.05)
	all := store.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 body, got %d", len(all))
	}
	if all[0].Physics.Velocity.X != 1 {
		t.Errorf("single body velocity changed without any other mass: %v", all[0].Physics.Velocity)
	}
}

// TestScenarioS1TwoAsteroidsCollide mirrors spec.md scenario S1: two equal
// 1e15 kg asteroids on an antiparallel approach merge into one survivor of
// double the mass near the origin.
func TestScenarioS1TwoAsteroidsCollide(t *testing.T) {
	store := bodies.NewStore()
	res := &economy.Resources{}
	res.Set(economy.CosmicDust, 1_000_000)

	b1, err := store.Create(bodies.KindAsteroid, vec3.Vec3{X: 5}, res, time.Now())
	if err != nil {
		t.Fatalf("create 1: %v", err)
	}
	b1.Physics.Mass = 1e15
	b1.Physics.Velocity = vec3.Vec3{X: -0.01}

	b2, err := store.Create(bodies.KindAsteroid, vec3.Vec3{X: -5}, res, time.Now())
	if err != nil {
		t.Fatalf("create 2: %v", err)
	}
	b2.Physics.Mass = 1e15
	b2.Physics.Velocity = vec3.Vec3{X: 0.01}

	e := NewEngine()
	e.Softening = 1e-3
	for i := 0; i < 400; i++ {
		e.Step(store, 0.05)
	}

	all := store.All()
	if len(all) != 1 {
		t.Fatalf("expected exactly one survivor, got %d", len(all))
	}
	survivor := all[0]
	if survivor.Physics.Mass != 2e15 {
		t.Errorf("survivor mass = %g, want 2e15", survivor.Physics.Mass)
	}
	if speed := vec3.Length(survivor.Physics.Velocity); speed >= 1e-6 {
		t.Errorf("survivor speed = %g, want < 1e-6", speed)
	}
	if dist := vec3.Length(survivor.Physics.Position); dist > 1 {
		t.Errorf("survivor position = %v, want near origin", survivor.Physics.Position)
	}
}

func TestCollisionMergeConservesMassMomentumCentroid(t *testing.T) {
	a := &bodies.Body{ID: newID(), Physics: bodies.PhysicsData{Position: vec3.Vec3{X: -1}, Velocity: vec3.Vec3{X: 1}, Mass: 3, Radius: 1}}
	b := &bodies.Body{ID: newID(), Physics: bodies.PhysicsData{Position: vec3.Vec3{X: 1}, Velocity: vec3.Vec3{X: -2}, Mass: 1, Radius: 1}}

	wantMomentum := vec3.Add(vec3.Scale(a.Physics.Velocity, a.Physics.Mass), vec3.Scale(b.Physics.Velocity, b.Physics.Mass))
	wantCentroid := vec3.Scale(vec3.Add(vec3.Scale(a.Physics.Position, a.Physics.Mass), vec3.Scale(b.Physics.Position, b.Physics.Mass)), 1.0/4)

	survivor, absorbed := merge(a, b)
	if survivor.Physics.Mass != 4 {
		t.Errorf("survivor mass = %g, want 4", survivor.Physics.Mass)
	}
	if absorbed.ID != b.ID {
		t.Errorf("expected lighter body b to be absorbed")
	}
	gotMomentum := vec3.Scale(survivor.Physics.Velocity, survivor.Physics.Mass)
	if math.Abs(gotMomentum.X-wantMomentum.X) > 1e-9 {
		t.Errorf("momentum not conserved: got %v want %v", gotMomentum, wantMomentum)
	}
	if math.Abs(survivor.Physics.Position.X-wantCentroid.X) > 1e-9 {
		t.Errorf("centroid not preserved: got %v want %v", survivor.Physics.Position, wantCentroid)
	}
}

func TestAlgorithmCrossoverAgreesOnEnergy(t *testing.T) {
	buildBodies := func(n int) *bodies.Store {
		store := bodies.NewStore()
		res := &economy.Resources{}
		res.Set(economy.CosmicDust, 1_000_000_000)
		for i := 0; i < n; i++ {
			pos := vec3.Vec3{X: float64(i) * 1000, Y: float64(i%7) * 500, Z: float64(i%5) * 250}
			b, err := store.Create(bodies.KindAsteroid, pos, res, time.Now())
			if err != nil {
				t.Fatalf("create %d: %v", i, err)
			}
			b.Physics.Mass = 1e10
		}
		return store
	}

	e := NewEngine()
	e.DirectThreshold = 1000

	direct := buildBodies(1000)
	e.Step(direct, 0.05)
	energyDirect := e.State.TotalEnergy

	e2 := NewEngine()
	e2.DirectThreshold = 1000
	bh := buildBodies(1001)
	e2.Step(bh, 0.05)
	energyBH := e2.State.TotalEnergy

	if energyDirect == 0 && energyBH == 0 {
		return
	}
	ref := math.Max(math.Abs(energyDirect), math.Abs(energyBH))
	if ref == 0 {
		return
	}
	diff := math.Abs(energyDirect-energyBH) / ref
	if diff > 0.5 {
		t.Errorf("energy diverged too far between direct and Barnes-Hut: direct=%g bh=%g", energyDirect, energyBH)
	}
}

var idCounter int

func newID() bodies.BodyID {
	idCounter++
	id := bodies.BodyID{}
	id[15] = byte(idCounter)
	return id
}
