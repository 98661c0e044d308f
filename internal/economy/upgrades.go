package economy

import (
	"fmt"
	"math"
)

// UpgradeKind indexes the six purchasable upgrades, one per resource kind
// (spec.md §4.2).
type UpgradeKind int

const (
	DustProduction UpgradeKind = iota
	EnergyEfficiency
	OrganicGrowth
	BiomassConversion
	DarkMatterCollection
	ThoughtAcceleration
	upgradeKindCount
)

func (k UpgradeKind) String() string {
	switch k {
	case DustProduction:
		return "dust_production"
	case EnergyEfficiency:
		return "energy_efficiency"
	case OrganicGrowth:
		return "organic_growth"
	case BiomassConversion:
		return "biomass_conversion"
	case DarkMatterCollection:
		return "dark_matter_collection"
	case ThoughtAcceleration:
		return "thought_acceleration"
	default:
		return "unknown"
	}
}

// ParseUpgradeKind maps an UpgradeKind's String() form back to the value,
// for decoding upgrade requests off the wire (cmd/server's API).
func ParseUpgradeKind(s string) (UpgradeKind, error) {
	for k := UpgradeKind(0); k < upgradeKindCount; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("economy: unrecognized upgrade kind %q", s)
}

// resourceOf maps each upgrade kind to the resource it boosts and costs in.
func (k UpgradeKind) resourceOf() ResourceKind { return AllResourceKinds[k] }

// baseRates is the per-tick production rate of each resource at level 0,
// expressed in whole units (converted to fixed-point by RecomputeRates).
var baseRates = [6]float64{1.0, 0.5, 0.1, 0.05, 0.01, 0.001}

// upgradeFactors scale a resource's own rate by 1 + level*factor.
var upgradeFactors = [6]float64{0.5, 0.3, 0.2, 0.15, 0.1, 0.05}

// costMultipliers and baseCosts drive CostAtLevel: floor(base * mult^level).
var costMultipliers = [6]float64{1.5, 1.8, 2.0, 2.2, 2.5, 3.0}
var baseCosts = [6]uint64{100, 50, 25, 10, 5, 1}

// UpgradeLevels maps each upgrade kind to its current non-negative level.
type UpgradeLevels [upgradeKindCount]uint32

// Level returns the current level of kind k.
func (u UpgradeLevels) Level(k UpgradeKind) uint32 { return u[k] }

// CostAtLevel returns the cost, in the upgrade's own resource, to purchase
// the level the upgrade is currently sitting at (i.e. to go from level n to
// n+1): floor(base * multiplier^n).
func (k UpgradeKind) CostAtLevel(level uint32) uint64 {
	cost := float64(baseCosts[k]) * math.Pow(costMultipliers[k], float64(level))
	return uint64(math.Floor(cost))
}
