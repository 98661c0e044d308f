package loop

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/config"
	"github.com/novaforge/cosmos-core/internal/life"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/protocol"
	"github.com/novaforge/cosmos-core/internal/telemetry"
	"github.com/novaforge/cosmos-core/internal/validation"
)

// Loop owns the three independent drivers spec.md §4.8 names (tick,
// autosave, cleanup) and command dispatch for exactly one player.
// Hosting many Loops concurrently is component C9's job, not this
// package's — Loop assumes it alone touches its Player between driver
// ticks, guarded by Player's own mutex against concurrent dispatch.
type Loop struct {
	Config  config.Config
	Logger  *telemetry.Logger
	Store   *persistence.Store
	Limiter *validation.Limiter
	Events  chan protocol.Event

	Player *Player
}

// New returns a Loop for player, wired to the given config/logger/store
// and a shared rate limiter (shared because spec.md §4.6 buckets are
// keyed by player id, not by Loop instance).
func New(cfg config.Config, logger *telemetry.Logger, store *persistence.Store, limiter *validation.Limiter, player *Player) *Loop {
	return &Loop{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Limiter: limiter,
		Events:  make(chan protocol.Event, 256),
		Player:  player,
	}
}

func (l *Loop) emit(e protocol.Event) {
	select {
	case l.Events <- e:
	default:
		l.Logger.Error.Printf("event channel full for player %s, dropping event", l.Player.ID)
	}
}

// tickDuration is the wall-clock Δt one tick advances, derived from
// tick_rate_hz (spec.md §6).
func (l *Loop) tickDuration() time.Duration {
	return time.Second / time.Duration(l.Config.TickRateHz)
}

// RunTickDriver advances the player by one tick every tickDuration until
// ctx is cancelled: economy accumulation (C2), life advancement (C5),
// physics integration (C4), then marks the player inactive once
// player_timeout has elapsed without input.
func (l *Loop) RunTickDriver(ctx context.Context) {
	dt := l.tickDuration()
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Step(now, dt)
		}
	}
}

// Step runs the full tick body (resource settlement then physics) for
// the standalone single-player driver. The fleet (component C9) instead
// calls SettleResources and StepPhysics as two independently-scheduled
// tasks over many players; both paths share these two methods so the
// per-tick semantics never diverge between the two call sites.
func (l *Loop) Step(now time.Time, dt time.Duration) {
	l.SettleResources(dt)
	l.StepPhysics(dt)

	l.Player.Lock()
	l.Player.Tick++
	if now.Sub(l.Player.LastInputAt) > l.Config.PlayerTimeout {
		l.Player.Inactive = true
	}
	l.Player.Unlock()
}

// SettleResources accumulates economy rates and advances life stages —
// spec.md §4.9's "resource settlement" task.
func (l *Loop) SettleResources(dt time.Duration) {
	p := l.Player
	p.Lock()
	defer p.Unlock()

	p.Economy.Accumulate(dt.Milliseconds())

	for _, b := range p.Bodies.All() {
		if b.Kind != bodies.KindPlanet {
			continue
		}
		before := b.Lifecycle.Stage.Kind
		habitable := b.KindData.Planet != nil && b.KindData.Planet.Habitability > life.HabitabilityThreshold
		life.Advance(b, habitable)
		if b.Lifecycle.Stage.Kind != before {
			l.emit(protocol.LifeEvolved{Player: p.ID, BodyID: b.ID, NewStage: b.Lifecycle.Stage.Kind})
		}
	}
}

// StepPhysics integrates gravity and resolves collisions for one tick —
// spec.md §4.9's "physics" task, requiring exclusive per-player access
// to the body store for the duration of the step only.
func (l *Loop) StepPhysics(dt time.Duration) {
	p := l.Player
	p.Lock()
	defer p.Unlock()

	collisions := p.Physics.Step(p.Bodies, dt.Seconds())

	for _, c := range collisions {
		l.emit(protocol.CollisionDetected{Player: p.ID, SurvivorID: c.Survivor, AbsorbedID: c.Absorbed})
		l.emit(protocol.CelestialBodyDestroyed{Player: p.ID, BodyID: c.Absorbed})
	}
}

// RunAutosaveDriver persists a snapshot every autosave_interval.
func (l *Loop) RunAutosaveDriver(ctx context.Context) {
	ticker := time.NewTicker(l.Config.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.SaveSnapshot(ctx); err != nil {
				l.Logger.Error.Printf("autosave for player %s: %v", l.Player.ID, err)
			}
		}
	}
}

// SaveSnapshot builds a Snapshot from the player's current in-memory
// state and hands it to C7, emitting GameSaved on success.
func (l *Loop) SaveSnapshot(ctx context.Context) error {
	p := l.Player
	p.Lock()
	snap := &persistence.Snapshot{
		Version:   persistence.CurrentVersion,
		PlayerID:  p.ID,
		Tick:      p.Tick,
		Resources: p.Economy.Resources,
		Bodies:    p.Bodies.All(),
		CreatedAt: time.Now(),
	}
	tick := p.Tick
	p.Unlock()

	if err := l.Store.SaveSnapshot(ctx, snap, l.Config.Persistence.Compression, l.Config.Persistence.Serialization); err != nil {
		return err
	}

	if raw, err := persistence.Serialize(snap, l.Config.Persistence.Serialization); err == nil {
		l.Logger.Info.Printf("saved snapshot for player %s at tick %d (%s)", p.ID, tick, humanize.Bytes(uint64(len(raw))))
	}

	l.emit(protocol.GameSaved{Player: l.Player.ID, Tick: tick})
	return nil
}

// RunCleanupDriver runs every cleanup_interval: saves a final snapshot for
// an inactive player and invokes C7's retention pass. It does not remove
// the player; its state stays in memory.
func (l *Loop) RunCleanupDriver(ctx context.Context) {
	ticker := time.NewTicker(l.Config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.RunCleanupOnce(ctx)
		}
	}
}

// RunCleanupOnce performs one cleanup pass: a final save for an inactive
// player, then C7's retention maintenance — the body of the cleanup
// task both the standalone driver and the fleet (component C9) share.
func (l *Loop) RunCleanupOnce(ctx context.Context) {
	p := l.Player
	p.Lock()
	inactive := p.Inactive
	p.Unlock()

	if inactive {
		if err := l.SaveSnapshot(ctx); err != nil {
			l.Logger.Error.Printf("final save for inactive player %s: %v", p.ID, err)
		}
	}

	if err := l.Store.RunRetention(ctx, p.ID,
		l.Config.Retention.MaxSnapshotsPerPlayer,
		l.Config.Retention.MaxDeltasPerPlayer,
		l.Config.Retention.AgeDays,
		time.Now()); err != nil {
		l.Logger.Error.Printf("retention for player %s: %v", p.ID, err)
	}
}
