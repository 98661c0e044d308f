package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/config"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/protocol"
	"github.com/novaforge/cosmos-core/internal/telemetry"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

func newTestFleet(t *testing.T) *Fleet {
	t.Helper()
	store, err := persistence.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.TickRateHz = 200
	cfg.CleanupInterval = 50 * time.Millisecond
	return New(cfg, telemetry.Default, store)
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	f := newTestFleet(t)
	now := time.Now()
	a := f.AddPlayer("p1", now)
	b := f.AddPlayer("p1", now)
	if a != b {
		t.Error("AddPlayer should return the same Loop for an already-registered player")
	}
	if f.ActivePlayerCount() != 1 {
		t.Errorf("active players = %d, want 1", f.ActivePlayerCount())
	}
}

func TestDispatchRoutesToOwningPlayer(t *testing.T) {
	f := newTestFleet(t)
	now := time.Now()
	f.AddPlayer("p1", now)
	l, _ := f.Get("p1")
	l.Player.Economy.Resources.Add(economy.CosmicDust, 10000)

	_, err := f.Dispatch(context.Background(), "p1", protocol.CreateBody{
		Player: "p1", Kind: bodies.KindAsteroid, Position: vec3.Vec3{X: 20},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if l.Player.Bodies.Len() != 1 {
		t.Errorf("bodies after dispatch = %d, want 1", l.Player.Bodies.Len())
	}
}

func TestDispatchUnknownPlayerFails(t *testing.T) {
	f := newTestFleet(t)
	if _, err := f.Dispatch(context.Background(), "ghost", protocol.GetState{Player: "ghost"}); err == nil {
		t.Fatal("expected dispatch to an unregistered player to fail")
	}
}

func TestRunDrivesPhysicsAndStops(t *testing.T) {
	f := newTestFleet(t)
	now := time.Now()
	f.AddPlayer("p1", now)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	f.Run(ctx)

	if f.Tick() == 0 {
		t.Error("expected fleet tick counter to have advanced")
	}
	if f.Running() {
		t.Error("expected Running() to be false after Run returns")
	}
}

func TestEmitDropsOldestWhenFull(t *testing.T) {
	f := newTestFleet(t)
	f.Events = make(chan protocol.Event, 2)
	f.emit(protocol.GameSaved{Player: "a", Tick: 1})
	f.emit(protocol.GameSaved{Player: "b", Tick: 2})
	f.emit(protocol.GameSaved{Player: "c", Tick: 3})

	first := <-f.Events
	saved, ok := first.(protocol.GameSaved)
	if !ok || saved.Player != "b" {
		t.Errorf("expected oldest event (a) to have been dropped, got %+v", first)
	}
}

func TestShardForDistributesAcrossShards(t *testing.T) {
	shards := newShards()
	seen := make(map[*shard]bool)
	for i := 0; i < 100; i++ {
		seen[shardFor(shards, string(rune('a'+i%26))+string(rune(i)))] = true
	}
	if len(seen) < 2 {
		t.Error("expected player ids to distribute across more than one shard")
	}
}
