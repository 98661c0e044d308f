package bodies

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// MaxBodiesTotal is the global per-player cap across all kinds (spec.md
// §4.3). Individual kinds may carry a tighter cap via maxPerKind.
const MaxBodiesTotal = 10000

// MaxPositionRadius bounds how far from the origin a body may be created,
// in the same distance unit physics integrates in.
const MaxPositionRadius = 1e9

// MinSeparation is the minimum allowed distance between any two bodies at
// creation time, guarding against degenerate (coincident) initial state.
const MinSeparation = 1.0

// maxPerKind caps population of one kind; kinds absent from this map are
// bound only by MaxBodiesTotal.
var maxPerKind = map[Kind]int{
	KindStar:      1,
	KindBlackHole: 1,
}

// creationCost is what a player pays, in cosmic dust, to bring a body of
// the given kind into existence.
var creationCost = map[Kind]uint64{
	KindStar:        0, // the home star is granted, never purchased
	KindPlanet:      500,
	KindBlackHole:   50000,
	KindAsteroid:    50,
	KindComet:       75,
	KindMoon:        200,
	KindDwarfPlanet: 300,
}

// Store owns every Body belonging to one player (component C3). All
// methods are safe for concurrent use; the fleet (component C9) shares one
// Store per player across the tick, autosave and command-handling drivers.
type Store struct {
	mu        sync.RWMutex
	bodies    map[BodyID]*Body
	kindCount map[Kind]int
}

// NewStore returns an empty body store.
func NewStore() *Store {
	return &Store{
		bodies:    make(map[BodyID]*Body),
		kindCount: make(map[Kind]int),
	}
}

// Create allocates a new Body of the given kind at position pos, spending
// creationCost[kind] from res. On any validation failure res is left
// untouched and no body is recorded.
func (s *Store) Create(kind Kind, pos vec3.Vec3, res *economy.Resources, now time.Time) (*Body, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bodies) >= MaxBodiesTotal {
		return nil, gameerrors.Wrap(gameerrors.ErrBodyLimitReached, "global body cap %d reached", MaxBodiesTotal)
	}
	if limit, ok := maxPerKind[kind]; ok && s.kindCount[kind] >= limit {
		return nil, gameerrors.Wrap(gameerrors.ErrBodyLimitReached, "%s cap %d reached", kind, limit)
	}
	if vec3.Length(pos) > MaxPositionRadius {
		return nil, gameerrors.Wrap(gameerrors.ErrOutOfBounds, "position radius %.0f exceeds max %.0f", vec3.Length(pos), MaxPositionRadius)
	}
	for _, b := range s.bodies {
		if vec3.Length(vec3.Sub(b.Physics.Position, pos)) < MinSeparation+b.Physics.Radius {
			return nil, gameerrors.Wrap(gameerrors.ErrTooClose, "new body within %.2f of existing body %s", MinSeparation, b.ID)
		}
	}

	cost := creationCost[kind]
	if cost > 0 {
		if err := res.Spend(map[economy.ResourceKind]uint64{economy.CosmicDust: cost}); err != nil {
			return nil, gameerrors.Wrap(gameerrors.ErrInsufficientResources, "creating %s needs %d cosmic dust", kind, cost)
		}
	}

	mass, radius := defaultPhysics(kind)
	b := &Body{
		ID:   uuid.New(),
		Kind: kind,
		Physics: PhysicsData{
			Position: pos,
			Mass:     mass,
			Radius:   radius,
		},
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.bodies[b.ID] = b
	s.kindCount[kind]++
	return b, nil
}

// Get returns the body with the given ID, or ErrBodyNotFound.
func (s *Store) Get(id BodyID) (*Body, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bodies[id]
	if !ok {
		return nil, gameerrors.Wrap(gameerrors.ErrBodyNotFound, "body %s", id)
	}
	return b, nil
}

// Remove deletes the body with the given ID, or returns ErrBodyNotFound.
func (s *Store) Remove(id BodyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[id]
	if !ok {
		return gameerrors.Wrap(gameerrors.ErrBodyNotFound, "body %s", id)
	}
	delete(s.bodies, id)
	s.kindCount[b.Kind]--
	return nil
}

// Restore inserts b directly, bypassing cost/bounds/separation checks —
// used by persistence restore (component C7), which replays already-
// validated state rather than re-admitting it as a new creation.
func (s *Store) Restore(b *Body) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bodies[b.ID]; !exists {
		s.kindCount[b.Kind]++
	}
	s.bodies[b.ID] = b
}

// Len returns the number of bodies currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// All returns a snapshot slice of every stored body. The returned pointers
// alias live store state; callers that mutate them must hold no assumption
// about Store-internal locking beyond this call's point-in-time view.
func (s *Store) All() []*Body {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b)
	}
	return out
}
