package economy

import (
	"testing"

	"github.com/novaforge/cosmos-core/internal/fixedpoint"
)

func TestAccumulateCarry(t *testing.T) {
	// spec.md scenario S3: rate 1.0/tick, tick 50ms, accumulate(25) x20.
	e := New(50)
	e.Rates[CosmicDust] = fixedpoint.One
	for i := 0; i < 20; i++ {
		e.Accumulate(25)
	}
	if got := e.Resources.Get(CosmicDust); got != 10 {
		t.Errorf("cosmic_dust = %d, want 10", got)
	}
	if e.Accumulators[CosmicDust] != 0 {
		t.Errorf("accumulator leftover = %v, want 0", e.Accumulators[CosmicDust])
	}
}

func TestAccumulateNeverDecreases(t *testing.T) {
	e := New(50)
	e.RecomputeRates()
	before := e.Resources.Get(CosmicDust)
	e.Accumulate(1000)
	after := e.Resources.Get(CosmicDust)
	if after < before {
		t.Errorf("resource decreased: %d -> %d", before, after)
	}
}

func TestUpgradeAffordabilityEdge(t *testing.T) {
	// spec.md scenario S2.
	e := New(50)
	e.Resources.Set(CosmicDust, 99)
	if err := e.ApplyUpgrade(DustProduction); err == nil {
		t.Fatal("expected InsufficientResources at 99 dust")
	}
	e.Resources.Set(CosmicDust, 100)
	rateBefore := e.Rates[CosmicDust]
	if err := e.ApplyUpgrade(DustProduction); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := e.Resources.Get(CosmicDust); got != 0 {
		t.Errorf("cosmic_dust after upgrade = %d, want 0", got)
	}
	if e.Upgrades.Level(DustProduction) != 1 {
		t.Errorf("level = %d, want 1", e.Upgrades.Level(DustProduction))
	}
	if e.Rates[CosmicDust].ToFloat64() <= rateBefore.ToFloat64() {
		t.Errorf("rate did not increase after upgrade")
	}
}

func TestUpgradeCostAffine(t *testing.T) {
	for level := uint32(0); level < 5; level++ {
		got := DustProduction.CostAtLevel(level)
		if got == 0 {
			t.Errorf("cost at level %d is zero", level)
		}
		if level > 0 {
			prev := DustProduction.CostAtLevel(level - 1)
			if got < prev {
				t.Errorf("cost decreased from level %d to %d: %d -> %d", level-1, level, prev, got)
			}
		}
	}
}

func TestSpendAtomic(t *testing.T) {
	var r Resources
	r.Set(CosmicDust, 10)
	r.Set(Energy, 5)
	cost := map[ResourceKind]uint64{CosmicDust: 5, Energy: 100}
	if err := r.Spend(cost); err == nil {
		t.Fatal("expected insufficient energy to fail the whole spend")
	}
	if r.Get(CosmicDust) != 10 {
		t.Errorf("cosmic_dust mutated on failed spend: %d", r.Get(CosmicDust))
	}
}

func TestResourceSaturates(t *testing.T) {
	var r Resources
	r.Set(CosmicDust, MaxResourceValue)
	r.Add(CosmicDust, 1000)
	if r.Get(CosmicDust) != MaxResourceValue {
		t.Errorf("resource did not saturate: %d", r.Get(CosmicDust))
	}
}
