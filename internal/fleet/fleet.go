// Package fleet hosts many players concurrently (spec.md §4.9, component
// C9): sharded player sessions, structured-concurrency tasks for
// physics/resource-settlement/metrics/cleanup, and a back-pressure
// outbound event channel that drops oldest-first when full.
package fleet

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/novaforge/cosmos-core/internal/config"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/loop"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/protocol"
	"github.com/novaforge/cosmos-core/internal/telemetry"
	"github.com/novaforge/cosmos-core/internal/validation"
)

// eventChannelCapacity bounds the fleet-wide outbound event channel.
const eventChannelCapacity = 4096

// Fleet hosts every active player's Loop, driving physics, resource
// settlement, metrics and cleanup as four independent periodic tasks
// (spec.md §4.9) instead of each player running its own driver
// goroutines (the single-player shape internal/loop also supports,
// used directly by its own tests).
type Fleet struct {
	cfg     config.Config
	logger  *telemetry.Logger
	store   *persistence.Store
	limiter *validation.Limiter

	shards [shardCount]*shard

	tick    uint64 // fleet-level monotonic tick counter (atomic)
	running int32  // 1 while Run is active (atomic)

	Metrics *Metrics
	Events  chan protocol.Event
}

// New returns a Fleet with no players yet.
func New(cfg config.Config, logger *telemetry.Logger, store *persistence.Store) *Fleet {
	return &Fleet{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: validation.NewLimiter(),
		shards:  newShards(),
		Metrics: NewMetrics(),
		Events:  make(chan protocol.Event, eventChannelCapacity),
	}
}

// AddPlayer registers a new player session, returning its Loop. If the
// player is already present, the existing Loop is returned unchanged.
func (f *Fleet) AddPlayer(id string, now time.Time) *loop.Loop {
	s := shardFor(f.shards, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.players[id]; ok {
		return existing
	}
	tickMillis := int64(time.Second / time.Duration(f.cfg.TickRateHz) / time.Millisecond)
	player := loop.NewPlayer(id, tickMillis, now)
	l := loop.New(f.cfg, f.logger, f.store, f.limiter, player)
	s.players[id] = l
	return l
}

// RemovePlayer drops a player session from the fleet. It does not save
// first — callers wanting a final save should do so before removing.
func (f *Fleet) RemovePlayer(id string) {
	s := shardFor(f.shards, id)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
}

// Get returns the Loop for id, or ErrBodyNotFound-flavored error if no
// such player session exists (reusing the taxonomy's nearest row — a
// missing session is the player-level analogue of a missing body).
func (f *Fleet) Get(id string) (*loop.Loop, error) {
	s := shardFor(f.shards, id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.players[id]
	if !ok {
		return nil, gameerrors.Wrap(gameerrors.ErrBodyNotFound, "no active session for player %s", id)
	}
	return l, nil
}

// Dispatch routes a command to its owning player's Loop. Commands
// against different players run concurrently; spec.md §4.9 guarantees
// at most one command executes against any one player at a time, which
// Loop's own Player mutex already enforces.
func (f *Fleet) Dispatch(ctx context.Context, playerID string, cmd interface{}) (interface{}, error) {
	l, err := f.Get(playerID)
	if err != nil {
		return nil, err
	}
	return l.Dispatch(ctx, cmd)
}

// ActivePlayerCount returns the number of currently registered sessions.
func (f *Fleet) ActivePlayerCount() int {
	n := 0
	for _, s := range f.shards {
		s.mu.RLock()
		n += len(s.players)
		s.mu.RUnlock()
	}
	return n
}

// forEachPlayer calls fn for every registered player, taking a read lock
// on each shard in turn rather than the whole fleet at once — multiple
// worker threads may read the session map concurrently (spec.md §4.9).
func (f *Fleet) forEachPlayer(fn func(l *loop.Loop)) {
	for _, s := range f.shards {
		s.mu.RLock()
		loops := make([]*loop.Loop, 0, len(s.players))
		for _, l := range s.players {
			loops = append(loops, l)
		}
		s.mu.RUnlock()
		for _, l := range loops {
			fn(l)
		}
	}
}

// Run starts the four structured-concurrency tasks (physics, resource
// settlement, metrics, cleanup) and blocks until ctx is cancelled, at
// which point every task finishes its current iteration and returns —
// cancellation of the outer context cancels all four (spec.md §4.9).
func (f *Fleet) Run(ctx context.Context) {
	atomic.StoreInt32(&f.running, 1)
	defer atomic.StoreInt32(&f.running, 0)

	tickInterval := time.Second / time.Duration(f.cfg.TickRateHz)

	var wg sync.WaitGroup
	wg.Add(4)
	go f.runTask(ctx, &wg, "physics", tickInterval, f.runPhysicsTask)
	go f.runTask(ctx, &wg, "resource", tickInterval, f.runResourceTask)
	go f.runTask(ctx, &wg, "metrics", 10*time.Second, f.runMetricsTask)
	go f.runTask(ctx, &wg, "cleanup", f.cfg.CleanupInterval, f.runCleanupTask)
	wg.Wait()
}

// Running reports whether Run is currently active.
func (f *Fleet) Running() bool { return atomic.LoadInt32(&f.running) == 1 }

// Tick returns the fleet-level monotonic tick counter — monotonic at the
// fleet level only; each player's own Tick is monotonic within itself
// (spec.md §5's ordering guarantees).
func (f *Fleet) Tick() uint64 { return atomic.LoadUint64(&f.tick) }

func (f *Fleet) runTask(ctx context.Context, wg *sync.WaitGroup, name string, interval time.Duration, fn func(dt time.Duration)) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !f.Running() {
				return
			}
			start := time.Now()
			fn(interval)
			if exceeded := f.Metrics.Record(name, time.Since(start)); exceeded {
				f.emit(protocol.Event(warningEvent{phase: name, duration: time.Since(start)}))
			}
		}
	}
}

func (f *Fleet) runPhysicsTask(dt time.Duration) {
	now := time.Now()
	f.forEachPlayer(func(l *loop.Loop) {
		l.StepPhysics(dt)

		l.Player.Lock()
		l.Player.Tick++
		if now.Sub(l.Player.LastInputAt) > l.Config.PlayerTimeout {
			l.Player.Inactive = true
		}
		l.Player.Unlock()
	})
	atomic.AddUint64(&f.tick, 1)
	f.drainPlayerEvents()
}

func (f *Fleet) runResourceTask(dt time.Duration) {
	f.forEachPlayer(func(l *loop.Loop) {
		l.SettleResources(dt)
	})
	f.drainPlayerEvents()
}

func (f *Fleet) runMetricsTask(time.Duration) {
	f.Metrics.ActivePlayers = f.ActivePlayerCount()
	total := 0
	f.forEachPlayer(func(l *loop.Loop) {
		total += l.Player.Bodies.Len()
	})
	f.Metrics.TotalBodies = total
	f.Metrics.TickCounter = f.Tick()
	ema, max := f.Metrics.Snapshot("physics")
	f.logger.Info.Printf("fleet tick=%d players=%d bodies=%d physics_ema=%s physics_max=%s",
		f.Metrics.TickCounter, f.Metrics.ActivePlayers, f.Metrics.TotalBodies, ema, max)
}

func (f *Fleet) runCleanupTask(time.Duration) {
	ctx := context.Background()
	f.forEachPlayer(func(l *loop.Loop) {
		l.RunCleanupOnce(ctx)
	})
}

// drainPlayerEvents forwards every player's locally-buffered events into
// the fleet's own outbound channel, non-blockingly.
func (f *Fleet) drainPlayerEvents() {
	f.forEachPlayer(func(l *loop.Loop) {
		for {
			select {
			case e := <-l.Events:
				f.emit(e)
			default:
				return
			}
		}
	})
}

// emit pushes e onto the fleet's outbound channel, dropping the oldest
// queued event first if the channel is full (spec.md §4.9: "events are
// dropped oldest-first" rather than the newest event being discarded).
func (f *Fleet) emit(e protocol.Event) {
	for {
		select {
		case f.Events <- e:
			return
		default:
			select {
			case <-f.Events:
			default:
			}
		}
	}
}

// warningEvent is emitted when a task's duration exceeds max_delta_time
// (spec.md §4.8's performance telemetry, applied fleet-wide here).
type warningEvent struct {
	phase    string
	duration time.Duration
}

func (w warningEvent) Name() string { return "phase_duration_warning" }

// String supports logging the warning without a type switch.
func (w warningEvent) String() string {
	return fmt.Sprintf("phase %s exceeded max_delta_time: %s", w.phase, w.duration)
}
