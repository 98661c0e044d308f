package economy

import (
	"github.com/novaforge/cosmos-core/internal/fixedpoint"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
)

// ProductionRates holds one F per resource, per-tick (spec.md §3).
type ProductionRates [6]fixedpoint.F

// Accumulators holds one F per resource, always in [0, 2^32) after
// settlement — the strictly-fractional remainder left by Accumulate.
type Accumulators [6]fixedpoint.F

// Economy is the per-player resource engine (component C2): it owns the
// Resources, ProductionRates, Accumulators and UpgradeLevels for one player
// and the tick duration they accumulate against.
type Economy struct {
	Resources    Resources
	Rates        ProductionRates
	Accumulators Accumulators
	Upgrades     UpgradeLevels
	TickMillis   int64
}

// New builds an Economy at level-0 rates for the given tick duration.
func New(tickMillis int64) *Economy {
	e := &Economy{TickMillis: tickMillis}
	e.RecomputeRates()
	return e
}

// Accumulate advances the economy by deltaMs milliseconds. For each resource
// k it adds rate_k * deltaMs/tick_ms (in F) to A[k], then moves whole units
// out of A[k] into R[k] (saturating), leaving the fractional remainder in
// A[k]. deltaMs may exceed one tick — the step is affine in deltaMs, so
// calling Accumulate(2*tick) once equals calling it twice at one tick each.
func (e *Economy) Accumulate(deltaMs int64) {
	if deltaMs <= 0 {
		return
	}
	ratio := fixedpoint.FromFloat64(float64(deltaMs) / float64(e.TickMillis))
	for _, k := range AllResourceKinds {
		delta := fixedpoint.Mul(e.Rates[k], ratio)
		acc := fixedpoint.Add(e.Accumulators[k], delta)
		whole := acc.IntPart()
		if whole > 0 {
			e.Resources.Add(k, uint64(whole))
		}
		e.Accumulators[k] = acc.FracPart()
	}
}

// ApplyUpgrade spends the current level's cost (in the upgrade's own
// resource) and, on success, increments the level and recomputes every
// rate. Fails InsufficientResources without mutating state otherwise.
func (e *Economy) ApplyUpgrade(kind UpgradeKind) error {
	level := e.Upgrades.Level(kind)
	cost := kind.CostAtLevel(level)
	resource := kind.resourceOf()
	if err := e.Resources.Spend(map[ResourceKind]uint64{resource: cost}); err != nil {
		return gameerrors.Wrap(gameerrors.ErrInsufficientResources, "upgrade %s at level %d needs %d %s", kind, level, cost, resource)
	}
	e.Upgrades[kind]++
	e.RecomputeRates()
	return nil
}

// RecomputeRates re-derives every production rate from the current upgrade
// levels: base_k * (1 + level_k * factor_k).
func (e *Economy) RecomputeRates() {
	for _, k := range AllResourceKinds {
		upgrade := UpgradeKind(k)
		level := e.Upgrades.Level(upgrade)
		multiplier := 1.0 + float64(level)*upgradeFactors[k]
		e.Rates[k] = fixedpoint.FromFloat64(baseRates[k] * multiplier)
	}
}
