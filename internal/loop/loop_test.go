package loop

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
	"github.com/novaforge/cosmos-core/internal/validation"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	store, err := persistence.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	player := NewPlayer("p1", int64(time.Second/time.Duration(cfg.TickRateHz)/time.Millisecond), time.Now())
	player.Economy.Resources.Add(economy.CosmicDust, 100000)

	return New(cfg, telemetry.Default, store, validation.NewLimiter(), player)
}

func TestDispatchCreateBodyEmitsEvent(t *testing.T) {
	l := newTestLoop(t)
	_, err := l.Dispatch(context.Background(), protocol.CreateBody{
		Player:   "p1",
		Kind:     bodies.KindAsteroid,
		Position: vec3.Vec3{X: 100, Y: 0, Z: 0},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	select {
	case e := <-l.Events:
		if _, ok := e.(protocol.CelestialBodyCreated); !ok {
			t.Errorf("unexpected event type %T", e)
		}
	default:
		t.Fatal("expected a CelestialBodyCreated event")
	}
}

func TestDispatchCreateBodyRejectsOutOfBounds(t *testing.T) {
	l := newTestLoop(t)
	_, err := l.Dispatch(context.Background(), protocol.CreateBody{
		Player:   "p1",
		Kind:     bodies.KindAsteroid,
		Position: vec3.Vec3{X: 1e18, Y: 0, Z: 0},
	})
	if err == nil {
		t.Fatal("expected out-of-bounds creation to be rejected")
	}
}

func TestDispatchSaveThenLoadGameRoundTrips(t *testing.T) {
	ctx := context.Background()
	l := newTestLoop(t)
	if _, err := l.Dispatch(ctx, protocol.CreateBody{Player: "p1", Kind: bodies.KindAsteroid, Position: vec3.Vec3{X: 50}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := l.Dispatch(ctx, protocol.SaveGame{Player: "p1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	l.Player.Bodies = bodies.NewStore()
	if _, err := l.Dispatch(ctx, protocol.LoadGame{Player: "p1"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Player.Bodies.Len() != 1 {
		t.Errorf("bodies after load = %d, want 1", l.Player.Bodies.Len())
	}
}

func TestTickDriverAdvancesTickAndStops(t *testing.T) {
	l := newTestLoop(t)
	l.Config.TickRateHz = 1000 // fast ticks so the test doesn't wait a full second
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	l.RunTickDriver(ctx)

	l.Player.Lock()
	tick := l.Player.Tick
	l.Player.Unlock()
	if tick == 0 {
		t.Error("expected tick driver to have advanced at least once")
	}
}

func TestStepPhysicsEmitsCollisionDetected(t *testing.T) {
	l := newTestLoop(t)

	b1, err := l.Player.Bodies.Create(bodies.KindAsteroid, vec3.Vec3{X: 5}, &l.Player.Economy.Resources, time.Now())
	if err != nil {
		t.Fatalf("create 1: %v", err)
	}
	b1.Physics.Mass = 1e15
	b1.Physics.Radius = 10
	b1.Physics.Velocity = vec3.Vec3{X: -5}

	b2, err := l.Player.Bodies.Create(bodies.KindAsteroid, vec3.Vec3{X: -5}, &l.Player.Economy.Resources, time.Now())
	if err != nil {
		t.Fatalf("create 2: %v", err)
	}
	b2.Physics.Mass = 1e15
	b2.Physics.Radius = 10
	b2.Physics.Velocity = vec3.Vec3{X: 5}

	l.StepPhysics(50 * time.Millisecond)

	var sawCollision, sawDestroyed bool
	for i := 0; i < 2; i++ {
		select {
		case e := <-l.Events:
			switch e.(type) {
			case protocol.CollisionDetected:
				sawCollision = true
			case protocol.CelestialBodyDestroyed:
				sawDestroyed = true
			default:
				t.Errorf("unexpected event type %T", e)
			}
		default:
			t.Fatal("expected two events after a merging collision")
		}
	}
	if !sawCollision {
		t.Error("expected a CollisionDetected event")
	}
	if !sawDestroyed {
		t.Error("expected a CelestialBodyDestroyed event")
	}
}

func TestGetStateReturnsCurrentSnapshot(t *testing.T) {
	l := newTestLoop(t)
	res, err := l.Dispatch(context.Background(), protocol.GetState{Player: "p1"})
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	result, ok := res.(protocol.GetStateResult)
	if !ok || result.Snapshot == nil {
		t.Fatalf("unexpected result %#v", res)
	}
	if result.Snapshot.PlayerID != "p1" {
		t.Errorf("player id = %s, want p1", result.Snapshot.PlayerID)
	}
}
