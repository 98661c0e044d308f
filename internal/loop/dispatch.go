package loop

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/persistence"
	"github.com/novaforge/cosmos-core/internal/protocol"
	"github.com/novaforge/cosmos-core/internal/validation"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// Dispatch validates and executes one inbound command (spec.md §6),
// rate-limiting and anomaly-scoring it through C6 first, then emitting
// the corresponding outbound event on success. The returned value is
// the command's result (GetState's Snapshot, for instance); most
// commands return nil.
func (l *Loop) Dispatch(ctx context.Context, cmd interface{}) (interface{}, error) {
	now := time.Now()

	switch c := cmd.(type) {
	case protocol.CreateBody:
		return nil, l.dispatchCreateBody(c, now)
	case protocol.RemoveBody:
		return nil, l.dispatchRemoveBody(c, now)
	case protocol.PurchaseUpgrade:
		return nil, l.dispatchPurchaseUpgrade(c, now)
	case protocol.SaveGame:
		return nil, l.dispatchSaveGame(ctx, c, now)
	case protocol.LoadGame:
		return nil, l.dispatchLoadGame(ctx, c, now)
	case protocol.GetState:
		return l.dispatchGetState(c, now)
	default:
		return nil, fmt.Errorf("loop: unrecognized command type %T", cmd)
	}
}

// guard runs a command through C6's rate limiter and anomaly tracker
// before any state mutation happens; pos/hasPosition feed the
// suspicious-precision heuristic for commands that carry a position.
func (l *Loop) guard(action validation.ActionKind, now time.Time, pos vec3.Vec3, hasPosition bool) error {
	if err := l.Limiter.Allow(l.Player.ID, action, now); err != nil {
		return err
	}
	return l.Player.Anomaly.RecordAction(now, pos, hasPosition)
}

func (l *Loop) dispatchCreateBody(c protocol.CreateBody, now time.Time) error {
	if err := l.guard(validation.ActionCreateBody, now, c.Position, true); err != nil {
		return err
	}
	if err := validation.CheckPosition(c.Position, l.Config.MaxPosition); err != nil {
		return err
	}

	p := l.Player
	p.Lock()
	defer p.Unlock()

	if err := validation.CheckSeparation(c.Position, l.Config.MinSeparation, p.Bodies.All()); err != nil {
		return err
	}
	b, err := p.Bodies.Create(c.Kind, c.Position, &p.Economy.Resources, now)
	if err != nil {
		return err
	}
	p.LastInputAt = now
	p.Inactive = false
	l.emit(protocol.CelestialBodyCreated{Player: p.ID, BodyID: b.ID, Kind: b.Kind})
	return nil
}

func (l *Loop) dispatchRemoveBody(c protocol.RemoveBody, now time.Time) error {
	if err := l.guard(validation.ActionRemoveBody, now, vec3.Zero, false); err != nil {
		return err
	}
	p := l.Player
	p.Lock()
	defer p.Unlock()

	if err := p.Bodies.Remove(c.BodyID); err != nil {
		return err
	}
	p.LastInputAt = now
	p.Inactive = false
	l.emit(protocol.CelestialBodyDestroyed{Player: p.ID, BodyID: c.BodyID})
	return nil
}

func (l *Loop) dispatchPurchaseUpgrade(c protocol.PurchaseUpgrade, now time.Time) error {
	if err := l.guard(validation.ActionPurchaseUpgrade, now, vec3.Zero, false); err != nil {
		return err
	}
	p := l.Player
	p.Lock()
	defer p.Unlock()

	if err := p.Economy.ApplyUpgrade(c.Kind); err != nil {
		return err
	}
	p.LastInputAt = now
	p.Inactive = false
	l.emit(protocol.UpgradePurchased{Player: p.ID, Kind: c.Kind})
	return nil
}

func (l *Loop) dispatchSaveGame(ctx context.Context, c protocol.SaveGame, now time.Time) error {
	if err := l.guard(validation.ActionSaveGame, now, vec3.Zero, false); err != nil {
		return err
	}
	l.Player.Lock()
	l.Player.LastInputAt = now
	l.Player.Inactive = false
	l.Player.Unlock()
	return l.SaveSnapshot(ctx)
}

func (l *Loop) dispatchLoadGame(ctx context.Context, c protocol.LoadGame, now time.Time) error {
	if err := l.guard(validation.ActionLoadGame, now, vec3.Zero, false); err != nil {
		return err
	}
	var snap *persistence.Snapshot
	var err error
	if c.HasTick {
		snap, err = l.Store.RestoreToTick(ctx, l.Player.ID, c.Tick)
	} else {
		snap, err = l.Store.LoadLatestSnapshotAtOrBefore(ctx, l.Player.ID, math.MaxUint64)
	}
	if err != nil {
		return err
	}

	p := l.Player
	p.Lock()
	defer p.Unlock()

	p.Bodies = bodies.NewStore()
	for _, b := range snap.Bodies {
		p.Bodies.Restore(b)
	}
	p.Economy.Resources = snap.Resources
	p.Economy.RecomputeRates()
	p.Tick = snap.Tick
	p.LastInputAt = now
	p.Inactive = false

	l.emit(protocol.GameLoaded{Player: p.ID, Tick: snap.Tick})
	return nil
}

func (l *Loop) dispatchGetState(c protocol.GetState, now time.Time) (protocol.GetStateResult, error) {
	if err := l.guard(validation.ActionGetState, now, vec3.Zero, false); err != nil {
		return protocol.GetStateResult{}, err
	}
	p := l.Player
	p.Lock()
	defer p.Unlock()

	snap := &persistence.Snapshot{
		Version:   persistence.CurrentVersion,
		PlayerID:  p.ID,
		Tick:      p.Tick,
		Resources: p.Economy.Resources,
		Bodies:    p.Bodies.All(),
		CreatedAt: time.Now(),
	}
	snap.Checksum = persistence.Checksum(snap)
	return protocol.GetStateResult{Snapshot: snap}, nil
}
