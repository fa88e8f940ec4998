// Package world assembles the terrain, the agent population and the metrics
// pipeline into a single simulation run. A World is advanced tick by tick and
// is fully deterministic for a given configuration and seed: every random
// draw comes from one private RNG, and agents are always visited in id order.
package world

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/grain/components"
	"github.com/pthm-cable/grain/config"
	"github.com/pthm-cable/grain/systems"
	"github.com/pthm-cable/grain/telemetry"
)

// World holds the complete state of one simulation run.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	ecs     ecs.World
	terrain *systems.Terrain

	agents ecs.Map5[
		components.Identity,
		components.Position,
		components.Traits,
		components.Wealth,
		components.Age,
	]
	filter *ecs.Filter5[
		components.Identity,
		components.Position,
		components.Traits,
		components.Wealth,
		components.Age,
	]

	movement systems.MovementPolicy
	harvest  systems.HarvestPolicy

	// Scratch buffers reused across ticks.
	foragers []systems.Forager
	wealths  []float64
}

// New builds a world for cfg with all randomness drawn from a private RNG
// seeded with seed. The configuration is validated first; nothing half-built
// escapes on error. Agents spawn on distinct random patches and are
// classified once so the world is observable before the first tick.
func New(cfg *config.Config, seed int64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	movement, err := systems.ParseMovementPolicy(cfg.Policy.Movement)
	if err != nil {
		return nil, err
	}
	harvest, err := systems.ParseHarvestPolicy(cfg.Policy.Harvest)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		ecs:      ecs.NewWorld(),
		movement: movement,
		harvest:  harvest,
	}
	w.agents = ecs.NewMap5[
		components.Identity,
		components.Position,
		components.Traits,
		components.Wealth,
		components.Age,
	](&w.ecs)
	w.filter = ecs.NewFilter5[
		components.Identity,
		components.Position,
		components.Traits,
		components.Wealth,
		components.Age,
	](&w.ecs)

	w.terrain = systems.NewTerrain(cfg.Grid.Width, cfg.Grid.Height,
		cfg.Derived.BestLandFraction, cfg.Grid.MaxGrain, w.rng)

	w.spawnAgents()
	w.updateWealthClasses()
	return w, nil
}

// Wealths returns a copy of every agent's wealth, in id order.
func (w *World) Wealths() []float64 {
	out := make([]float64, 0, w.cfg.Population.Count)
	query := w.filter.Query()
	for query.Next() {
		_, _, _, wealth, _ := query.Get()
		out = append(out, wealth.Amount)
	}
	return out
}

// AgentCount returns the population size. It is fixed for the life of the
// world: death replaces an agent in place rather than removing it.
func (w *World) AgentCount() int {
	return w.cfg.Population.Count
}

// WealthClassDistribution returns the per-class counts from the most recent
// classification pass.
func (w *World) WealthClassDistribution() telemetry.ClassCounts {
	var counts telemetry.ClassCounts
	query := w.filter.Query()
	for query.Next() {
		_, _, _, wealth, _ := query.Get()
		switch wealth.Class {
		case components.ClassPoor:
			counts.Poor++
		case components.ClassMiddle:
			counts.Middle++
		case components.ClassRich:
			counts.Rich++
		}
	}
	return counts
}

// GiniIndex computes the Gini index of the current wealth distribution.
func (w *World) GiniIndex() float64 {
	return telemetry.Gini(w.Wealths())
}

// LorenzCurve computes the Lorenz curve of the current wealth distribution
// at the given resolution.
func (w *World) LorenzCurve(resolution int) telemetry.LorenzCurve {
	wealths := w.Wealths()
	return telemetry.Lorenz(wealths, floats.Sum(wealths), resolution)
}

// TotalGrain returns the grain currently on the ground across all patches.
func (w *World) TotalGrain() float64 {
	return w.terrain.TotalGrain()
}
