// Package loop drives one player's fixed-tick game loop (spec.md §4.8,
// component C8): the tick driver composing C2/C4/C5, the autosave and
// cleanup drivers against C7, and command dispatch through C6.
package loop

import (
	"sync"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/physics"
	"github.com/novaforge/cosmos-core/internal/validation"
)

// Player bundles one player's live, in-memory game state — everything
// the tick/autosave/cleanup drivers and command dispatch act on.
type Player struct {
	ID string

	mu      sync.Mutex
	Bodies  *bodies.Store
	Economy *economy.Economy
	Physics *physics.Engine

	Tick        uint64
	LastInputAt time.Time
	Inactive    bool

	Anomaly *validation.AnomalyTracker
}

// NewPlayer returns a Player ready to enter the tick driver, with an
// empty body store and a level-0 economy at the given tick duration.
func NewPlayer(id string, tickMillis int64, now time.Time) *Player {
	return &Player{
		ID:          id,
		Bodies:      bodies.NewStore(),
		Economy:     economy.New(tickMillis),
		Physics:     physics.NewEngine(),
		LastInputAt: now,
		Anomaly:     validation.NewAnomalyTracker(),
	}
}

// Lock/Unlock expose the player's own mutex so the tick driver and
// command dispatch (running on separate goroutines under the fleet,
// component C9) never interleave a step with a command's body-store
// mutation.
func (p *Player) Lock()   { p.mu.Lock() }
func (p *Player) Unlock() { p.mu.Unlock() }
