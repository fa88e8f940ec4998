package world

import (
	"github.com/pthm-cable/grain/components"
)

// spawnAgents creates the initial population on distinct random patches.
// Entity creation order fixes the iteration order of every later phase, so
// ids are assigned sequentially from zero.
func (w *World) spawnAgents() {
	patches := w.rng.Perm(w.cfg.Derived.NumPatches)

	for i := 0; i < w.cfg.Population.Count; i++ {
		patch := patches[i]
		id := components.Identity{ID: i}
		pos := components.Position{
			X: patch % w.cfg.Grid.Width,
			Y: patch / w.cfg.Grid.Width,
		}
		traits := w.rollTraits()
		wealth := components.Wealth{Amount: w.startingWealth(traits.Metabolism)}
		age := components.Age{}
		w.agents.NewEntity(&id, &pos, &traits, &wealth, &age)
	}
}

// rollTraits draws a fresh trait set. All bounds are inclusive.
func (w *World) rollTraits() components.Traits {
	pop := w.cfg.Population
	return components.Traits{
		Metabolism:     w.rng.Intn(pop.MaxMetabolism) + 1,
		Vision:         w.rng.Intn(pop.MaxVision) + 1,
		LifeExpectancy: w.rng.Intn(pop.MaxLifeExpectancy-pop.MinLifeExpectancy+1) + pop.MinLifeExpectancy,
	}
}

// startingWealth draws construction-time wealth: the uniform constant when
// that policy is set, otherwise metabolism plus a uniform draw from 0..50.
func (w *World) startingWealth(metabolism int) float64 {
	if w.cfg.Wealth.Uniform {
		return float64(w.cfg.Wealth.UniformAmount)
	}
	return float64(metabolism + w.rng.Intn(51))
}

// rebirthWealth draws replacement wealth. Uniform wealth takes precedence,
// then inheritance of a positive estate, then the same fresh draw used at
// construction. metabolism is the replacement's, not the deceased's.
func (w *World) rebirthWealth(metabolism int, terminal float64) float64 {
	switch {
	case w.cfg.Wealth.Uniform:
		return float64(w.cfg.Wealth.UniformAmount)
	case w.cfg.Wealth.Inheritance && terminal > 0:
		return terminal
	default:
		return float64(metabolism + w.rng.Intn(51))
	}
}
