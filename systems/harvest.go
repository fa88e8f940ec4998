package systems

import (
	"fmt"

	"github.com/pthm-cable/grain/components"
	"github.com/pthm-cable/grain/config"
)

// HarvestPolicy selects how co-located agents split a patch's grain.
type HarvestPolicy uint8

const (
	HarvestShared    HarvestPolicy = iota // even real-valued split among occupants
	HarvestExclusive                      // lowest agent id takes the whole patch
)

// ParseHarvestPolicy maps a config tag to a HarvestPolicy.
func ParseHarvestPolicy(s string) (HarvestPolicy, error) {
	switch s {
	case config.HarvestShared:
		return HarvestShared, nil
	case config.HarvestExclusive:
		return HarvestExclusive, nil
	}
	return 0, fmt.Errorf("%w: unknown harvest policy %q", config.ErrInvalidConfiguration, s)
}

// String returns the config tag for the policy.
func (p HarvestPolicy) String() string {
	switch p {
	case HarvestShared:
		return config.HarvestShared
	case HarvestExclusive:
		return config.HarvestExclusive
	}
	return "unknown"
}

// Forager is one agent's view for the harvest pass: identity, the patch it
// stands on, and the wealth to credit.
type Forager struct {
	ID     int
	X, Y   int
	Wealth *components.Wealth
}

// Harvest credits each forager per the policy and zeroes every occupied
// patch. Patches are independent, so the outcome does not depend on the
// order foragers are listed in.
func Harvest(policy HarvestPolicy, t *Terrain, foragers []Forager) {
	switch policy {
	case HarvestShared:
		harvestShared(t, foragers)
	case HarvestExclusive:
		harvestExclusive(t, foragers)
	}
}

// harvestShared divides each occupied patch's grain evenly among the agents
// standing on it. Shares are real-valued.
func harvestShared(t *Terrain, foragers []Forager) {
	occupants := make(map[int]int, len(foragers))
	for i := range foragers {
		occupants[t.Idx(foragers[i].X, foragers[i].Y)]++
	}

	shares := make(map[int]float64, len(occupants))
	for idx, n := range occupants {
		shares[idx] = t.Grain[idx] / float64(n)
		t.Grain[idx] = 0
	}

	for i := range foragers {
		f := &foragers[i]
		f.Wealth.Amount += shares[t.Idx(f.X, f.Y)]
	}
}

// harvestExclusive hands each occupied patch's full grain to the occupant
// with the lowest agent id; later-id occupants on the same patch get nothing.
func harvestExclusive(t *Terrain, foragers []Forager) {
	first := make(map[int]*Forager, len(foragers))
	for i := range foragers {
		f := &foragers[i]
		idx := t.Idx(f.X, f.Y)
		if cur, ok := first[idx]; !ok || f.ID < cur.ID {
			first[idx] = f
		}
	}

	for idx, f := range first {
		f.Wealth.Amount += t.Grain[idx]
		t.Grain[idx] = 0
	}
}
