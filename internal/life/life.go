// Package life advances the per-Planet life-stage machine (spec.md §4.5,
// component C5): population growth, stage transitions gated on evolution
// timer and population thresholds, and the resource-rate re-derivation
// that follows each transition.
package life

import (
	"github.com/novaforge/cosmos-core/internal/bodies"
	"github.com/novaforge/cosmos-core/internal/economy"
	"github.com/novaforge/cosmos-core/internal/fixedpoint"
)

// HabitabilityThreshold is the habitability a Planet must have exceeded
// at creation for its life evolution to run at all (spec.md §4.5).
const HabitabilityThreshold = 50

// Stage transition thresholds, read as (evolution_timer ticks, population).
const (
	noneToMicrobialTimer = 1000

	microbialToPlantTimer = 5000
	microbialToPlantPop   = 100_000

	plantToAnimalTimer = 10_000
	plantToAnimalPop   = 1_000_000

	animalToIntelligentTimer = 20_000
	animalToIntelligentPop   = 10_000_000

	intelligentTechTimer = 30_000
)

// Growth-per-tick multipliers, applied to population once a stage beyond
// None is reached.
var growthFactor = map[bodies.LifeStageKind]float64{
	bodies.LifeMicrobial:   1.01,
	bodies.LifePlant:       1.05,
	bodies.LifeAnimal:      1.10,
	bodies.LifeIntelligent: 1.02,
}

// unityDecayPopulationPerTechLevel is the population-per-tech-level ratio
// above which an Intelligent civilization's unity decays instead of
// recovering (supplemented; see DESIGN.md's Open Question decision).
const unityDecayPopulationPerTechLevel = 10_000_000

// Advance runs one tick of life evolution for b if it is a habitable
// Planet currently tracking a LifeStage; it is a no-op for any other body.
// habitableAtCreation must be true only for planets whose habitability
// exceeded HabitabilityThreshold when they were created — evolution stays
// paused forever otherwise, per spec.md §4.5.
func Advance(b *bodies.Body, habitableAtCreation bool) {
	if b.Kind != bodies.KindPlanet || !habitableAtCreation {
		return
	}

	lc := &b.Lifecycle
	lc.EvolutionTimer++

	switch lc.Stage.Kind {
	case bodies.LifeNone:
		if lc.EvolutionTimer > noneToMicrobialTimer && lc.Population == 0 {
			transitionTo(b, bodies.LifeMicrobial, 1000)
		}
	case bodies.LifeMicrobial:
		growPopulation(lc, bodies.LifeMicrobial)
		if lc.EvolutionTimer > microbialToPlantTimer && lc.Population > microbialToPlantPop {
			transitionTo(b, bodies.LifePlant, lc.Population)
			b.Lifecycle.Stage.Coverage = 10
		}
	case bodies.LifePlant:
		growPopulation(lc, bodies.LifePlant)
		if lc.EvolutionTimer > plantToAnimalTimer && lc.Population > plantToAnimalPop {
			transitionTo(b, bodies.LifeAnimal, lc.Population)
			b.Lifecycle.Stage.Species = 10
		}
	case bodies.LifeAnimal:
		growPopulation(lc, bodies.LifeAnimal)
		if lc.EvolutionTimer > animalToIntelligentTimer && lc.Population > animalToIntelligentPop {
			transitionTo(b, bodies.LifeIntelligent, lc.Population)
			b.Lifecycle.Stage.TechLevel = 1
		}
	case bodies.LifeIntelligent:
		growPopulation(lc, bodies.LifeIntelligent)
		advanceUnity(&lc.Stage, lc.Population)
		if lc.EvolutionTimer > intelligentTechTimer {
			lc.Stage.TechLevel++
			lc.EvolutionTimer = 0
		}
	}

	rederiveRates(b)
}

func growPopulation(lc *bodies.LifecycleData, kind bodies.LifeStageKind) {
	factor, ok := growthFactor[kind]
	if !ok || lc.Population == 0 {
		return
	}
	grown := float64(lc.Population) * factor
	lc.Population = uint64(grown)
}

func transitionTo(b *bodies.Body, kind bodies.LifeStageKind, population uint64) {
	b.Lifecycle.Stage.Kind = kind
	b.Lifecycle.Population = population
	b.Lifecycle.EvolutionTimer = 0
}

// advanceUnity implements the supplemented Intelligent.unity steady-state
// rule: decay by 1/tick once population exceeds tech_level * 10^7,
// recover by 1/tick otherwise, clamped to [0, 100].
func advanceUnity(stage *bodies.LifeStage, population uint64) {
	threshold := uint64(stage.TechLevel) * unityDecayPopulationPerTechLevel
	if population > threshold {
		if stage.Unity > 0 {
			stage.Unity--
		}
	} else if stage.Unity < 100 {
		stage.Unity++
	}
}

// rederiveRates re-derives a body's production rates from its current
// life stage, per spec.md §4.5's table.
func rederiveRates(b *bodies.Body) {
	rates := &b.Resources.Rates
	switch b.Lifecycle.Stage.Kind {
	case bodies.LifePlant:
		rates[economy.OrganicMatter] = fixedpoint.FromFloat64(0.5)
		rates[economy.Biomass] = fixedpoint.FromFloat64(0.1)
	case bodies.LifeAnimal:
		rates[economy.OrganicMatter] = fixedpoint.FromFloat64(0.8)
		rates[economy.Biomass] = fixedpoint.FromFloat64(0.3)
	case bodies.LifeIntelligent:
		rates[economy.OrganicMatter] = fixedpoint.FromFloat64(1.0)
		rates[economy.Biomass] = fixedpoint.FromFloat64(0.5)
		rates[economy.ThoughtPoints] = fixedpoint.FromFloat64(float64(b.Lifecycle.Population) / 1e6)
	}
}
