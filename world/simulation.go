package world

import (
	"github.com/pthm-cable/grain/components"
	"github.com/pthm-cable/grain/systems"
	"github.com/pthm-cable/grain/telemetry"
)

// Tick advances the simulation one step and returns the metrics collected
// after all phases have run. Phases apply to the whole population before the
// next phase starts, so within a tick every agent sees the same world state.
// Tick indices start at 1; regrowth fires when tick is a multiple of the
// growth interval.
func (w *World) Tick(tick int) telemetry.TickMetrics {
	w.moveAgents()
	w.harvestGrain()
	w.consumeAndAge()
	w.reapAndRespawn()
	if tick%w.cfg.Grid.GrowthInterval == 0 {
		w.terrain.Grow(float64(w.cfg.Grid.GrainGrown))
	}
	return w.updateWealthClasses()
}

// moveAgents runs the configured movement policy for every agent.
func (w *World) moveAgents() {
	query := w.filter.Query()
	for query.Next() {
		_, pos, traits, _, _ := query.Get()
		systems.Move(w.movement, w.terrain, pos, traits.Vision, w.rng)
	}
}

// harvestGrain snapshots the population into the foragers buffer and applies
// the harvest policy in one shot, so co-located agents split patches without
// any dependence on visit order.
func (w *World) harvestGrain() {
	w.foragers = w.foragers[:0]
	query := w.filter.Query()
	for query.Next() {
		id, pos, _, wealth, _ := query.Get()
		w.foragers = append(w.foragers, systems.Forager{
			ID:     id.ID,
			X:      pos.X,
			Y:      pos.Y,
			Wealth: wealth,
		})
	}
	systems.Harvest(w.harvest, w.terrain, w.foragers)
}

// consumeAndAge deducts each agent's metabolism from its wealth and advances
// its age by one tick.
func (w *World) consumeAndAge() {
	query := w.filter.Query()
	for query.Next() {
		_, _, traits, wealth, age := query.Get()
		wealth.Amount -= float64(traits.Metabolism)
		age.Ticks++
	}
}

// updateWealthClasses reclassifies every agent against the current maximum
// wealth and returns the metrics for the resulting population state.
func (w *World) updateWealthClasses() telemetry.TickMetrics {
	w.wealths = w.wealths[:0]
	maxWealth := 0.0
	query := w.filter.Query()
	for query.Next() {
		_, _, _, wealth, _ := query.Get()
		w.wealths = append(w.wealths, wealth.Amount)
		if wealth.Amount > maxWealth {
			maxWealth = wealth.Amount
		}
	}

	var counts telemetry.ClassCounts
	query = w.filter.Query()
	for query.Next() {
		_, _, _, wealth, _ := query.Get()
		wealth.Class = telemetry.Classify(wealth.Amount, maxWealth)
		switch wealth.Class {
		case components.ClassPoor:
			counts.Poor++
		case components.ClassMiddle:
			counts.Middle++
		case components.ClassRich:
			counts.Rich++
		}
	}

	return telemetry.Collect(w.wealths, counts, telemetry.LorenzResolution)
}
