package bodies

import (
	"testing"
	"time"

	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

func fundedResources(dust uint64) *economy.Resources {
	r := &economy.Resources{}
	r.Set(economy.CosmicDust, dust)
	return r
}

func TestCreateDebitsCost(t *testing.T) {
	s := NewStore()
	res := fundedResources(1000)
	b, err := s.Create(KindPlanet, vec3.Vec3{X: 10}, res, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Get(economy.CosmicDust) != 500 {
		t.Errorf("dust after creation = %d, want 500", res.Get(economy.CosmicDust))
	}
	if b.Kind != KindPlanet {
		t.Errorf("kind = %v, want Planet", b.Kind)
	}
}

func TestCreateInsufficientResourcesLeavesStoreUntouched(t *testing.T) {
	s := NewStore()
	res := fundedResources(10)
	_, err := s.Create(KindPlanet, vec3.Vec3{X: 10}, res, time.Now())
	if !gameerrors.Is(err, gameerrors.ErrInsufficientResources) {
		t.Fatalf("got %v, want ErrInsufficientResources", err)
	}
	if s.Len() != 0 {
		t.Errorf("store length = %d, want 0", s.Len())
	}
	if res.Get(economy.CosmicDust) != 10 {
		t.Errorf("dust mutated on failed create: %d", res.Get(economy.CosmicDust))
	}
}

func TestCreateEnforcesPerKindCap(t *testing.T) {
	s := NewStore()
	res := fundedResources(1_000_000)
	if _, err := s.Create(KindStar, vec3.Vec3{}, res, time.Now()); err != nil {
		t.Fatalf("first star: %v", err)
	}
	_, err := s.Create(KindStar, vec3.Vec3{X: 100}, res, time.Now())
	if !gameerrors.Is(err, gameerrors.ErrBodyLimitReached) {
		t.Fatalf("got %v, want ErrBodyLimitReached", err)
	}
}

func TestCreateEnforcesMinSeparation(t *testing.T) {
	s := NewStore()
	res := fundedResources(1_000_000)
	if _, err := s.Create(KindAsteroid, vec3.Vec3{}, res, time.Now()); err != nil {
		t.Fatalf("first asteroid: %v", err)
	}
	_, err := s.Create(KindAsteroid, vec3.Vec3{X: 0.1}, res, time.Now())
	if !gameerrors.Is(err, gameerrors.ErrTooClose) {
		t.Fatalf("got %v, want ErrTooClose", err)
	}
}

func TestCreateEnforcesMaxPositionRadius(t *testing.T) {
	s := NewStore()
	res := fundedResources(1_000_000)
	_, err := s.Create(KindAsteroid, vec3.Vec3{X: MaxPositionRadius * 2}, res, time.Now())
	if !gameerrors.Is(err, gameerrors.ErrOutOfBounds) {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
}

func TestRemoveUnknownBody(t *testing.T) {
	s := NewStore()
	if err := s.Remove(BodyID{}); !gameerrors.Is(err, gameerrors.ErrBodyNotFound) {
		t.Fatalf("got %v, want ErrBodyNotFound", err)
	}
}

func TestRemoveDecrementsKindCount(t *testing.T) {
	s := NewStore()
	res := fundedResources(1_000_000)
	star, err := s.Create(KindStar, vec3.Vec3{}, res, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Remove(star.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Create(KindStar, vec3.Vec3{X: 1000}, res, time.Now()); err != nil {
		t.Fatalf("recreate after removal should succeed: %v", err)
	}
}
