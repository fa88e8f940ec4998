package world

import (
	"github.com/mlange-42/ark/ecs"
)

// reapAndRespawn replaces every agent whose death predicate holds: wealth
// exhausted or life expectancy reached. The replacement reuses the entity,
// keeping id and patch; traits, age and wealth are rolled fresh. Deaths are
// collected during the query and applied after it completes, so a rebirth
// never disturbs the scan and replacements cannot die in the tick they are
// born.
func (w *World) reapAndRespawn() {
	type death struct {
		entity   ecs.Entity
		terminal float64
	}
	var deaths []death

	query := w.filter.Query()
	for query.Next() {
		_, _, traits, wealth, age := query.Get()
		if wealth.Amount <= 0 || age.Ticks >= traits.LifeExpectancy {
			deaths = append(deaths, death{query.Entity(), wealth.Amount})
		}
	}

	for _, d := range deaths {
		_, _, traits, wealth, age := w.agents.Get(d.entity)
		*traits = w.rollTraits()
		wealth.Amount = w.rebirthWealth(traits.Metabolism, d.terminal)
		age.Ticks = 0
	}
}
