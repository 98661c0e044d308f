// Package validation is the anti-cheat engine (spec.md §4.6, component
// C6): bounds/limit checks, token-bucketed rate limiting, rolling-window
// anomaly scoring, impossible-state-transition detection, and the
// resulting penalty ladder.
package validation

import (
	"math"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// CheckVelocity rejects velocities above vmax scaled by mass — heavier
// bodies are held to a stricter bound (spec.md §4.6).
func CheckVelocity(v vec3.Vec3, mass, vmax float64) error {
	limit := vmax
	if mass > 1 {
		limit = vmax / math.Log10(mass+10)
	}
	if vec3.Length(v) > limit {
		return gameerrors.Wrap(gameerrors.ErrInvalidVelocity, "speed %.6g exceeds limit %.6g for mass %.6g", vec3.Length(v), limit, mass)
	}
	return nil
}

// CheckMass rejects body masses outside the kind-specific ranges spec.md
// §4.6 names (expressed there in solar/Earth masses; massSolar is the
// candidate mass already converted to solar masses by the caller).
func CheckMass(kind bodies.Kind, massSolar float64) error {
	min, max := massRangeSolar(kind)
	if massSolar < min || massSolar > max {
		return gameerrors.Wrap(gameerrors.ErrInvalidMass, "%s mass %.6g Msun outside [%.6g, %.6g]", kind, massSolar, min, max)
	}
	return nil
}

// massRangeSolar mirrors internal/bodies' unexported table (duplicated
// here rather than exported across packages, since the range is a
// validation-engine invariant independent of the store's own defaults).
func massRangeSolar(kind bodies.Kind) (min, max float64) {
	const solarMass = 1.989e30
	const earthMass = 5.972e24
	switch kind {
	case bodies.KindStar:
		return 0.1, 100
	case bodies.KindPlanet:
		return 0.1 * earthMass / solarMass, 300 * earthMass / solarMass
	case bodies.KindBlackHole:
		return 3, math.Inf(1)
	default:
		return 0, math.Inf(1)
	}
}

// CheckResourceCap rejects any resource value above the invariant cap.
func CheckResourceCap(amount uint64) error {
	if amount > economy.MaxResourceValue {
		return gameerrors.Wrap(gameerrors.ErrOutOfBounds, "resource amount %d exceeds cap %d", amount, economy.MaxResourceValue)
	}
	return nil
}

// CheckPosition rejects positions outside maxPosition.
func CheckPosition(pos vec3.Vec3, maxPosition float64) error {
	if vec3.Length(pos) > maxPosition {
		return gameerrors.Wrap(gameerrors.ErrOutOfBounds, "position radius %.6g exceeds max %.6g", vec3.Length(pos), maxPosition)
	}
	return nil
}

// CheckSeparation rejects a new body within minSeparation + existing's
// radius of any existing body.
func CheckSeparation(pos vec3.Vec3, minSeparation float64, existing []*bodies.Body) error {
	for _, b := range existing {
		if vec3.Length(vec3.Sub(b.Physics.Position, pos)) < minSeparation+b.Physics.Radius {
			return gameerrors.Wrap(gameerrors.ErrTooClose, "within %.6g of existing body %s", minSeparation, b.ID)
		}
	}
	return nil
}

// CheckStateTransition enforces spec.md §4.6's impossible-state-transition
// rule: no resource may grow faster than maxRates[k] * deltaSeconds in one
// step.
func CheckStateTransition(before, after economy.Resources, deltaSeconds float64, maxRates economy.ProductionRates) error {
	for _, k := range economy.AllResourceKinds {
		b, a := before.Get(k), after.Get(k)
		if a <= b {
			continue
		}
		grown := a - b
		limit := uint64(maxRates[k].ToFloat64() * deltaSeconds)
		if grown > limit {
			return gameerrors.Wrap(gameerrors.ErrImpossibleStateTransition, "resource %v grew by %d, limit %d over %.3fs", k, grown, limit, deltaSeconds)
		}
	}
	return nil
}

