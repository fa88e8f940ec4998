package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/grain/components"
	"github.com/pthm-cable/grain/config"
)

// MovementPolicy selects how agents chase grain.
type MovementPolicy uint8

const (
	MoveStepToward MovementPolicy = iota // one step toward the richest cardinal ray
	MoveJumpTo                           // jump straight to the richest visible cell
)

// ParseMovementPolicy maps a config tag to a MovementPolicy.
func ParseMovementPolicy(s string) (MovementPolicy, error) {
	switch s {
	case config.MovementStepToward:
		return MoveStepToward, nil
	case config.MovementJumpTo:
		return MoveJumpTo, nil
	}
	return 0, fmt.Errorf("%w: unknown movement policy %q", config.ErrInvalidConfiguration, s)
}

// String returns the config tag for the policy.
func (p MovementPolicy) String() string {
	switch p {
	case MoveStepToward:
		return config.MovementStepToward
	case MoveJumpTo:
		return config.MovementJumpTo
	}
	return "unknown"
}

// Cardinal directions in tie-break priority order. North is toward row 0.
var cardinals = [4]struct{ dx, dy int }{
	{0, -1}, // north
	{1, 0},  // east
	{0, 1},  // south
	{-1, 0}, // west
}

// Move applies the movement policy for one agent, updating pos in place.
// StepToward consumes no randomness; JumpTo always consumes one draw, so
// either policy yields a reproducible stream for a given seed.
func Move(policy MovementPolicy, t *Terrain, pos *components.Position, vision int, rng *rand.Rand) {
	switch policy {
	case MoveStepToward:
		stepToward(t, pos, vision)
	case MoveJumpTo:
		jumpTo(t, pos, vision, rng)
	}
}

// stepToward sums grain along each cardinal ray up to vision cells and steps
// once toward the richest. Directions whose first step leaves the grid are
// out of consideration; ties go to the earliest direction in priority order
// (north, east, south, west); if every candidate carries the same sum there
// is no gradient and the agent stays put.
func stepToward(t *Terrain, pos *components.Position, vision int) {
	best := -1
	var bestSum, firstSum float64
	scored := 0
	allEqual := true

	for d, c := range cardinals {
		sum, cells := raySum(t, pos.X, pos.Y, c.dx, c.dy, vision)
		if cells == 0 {
			continue
		}
		if scored == 0 {
			firstSum = sum
		} else if sum != firstSum {
			allEqual = false
		}
		scored++
		if best < 0 || sum > bestSum {
			best = d
			bestSum = sum
		}
	}

	if best < 0 || allEqual {
		return
	}
	pos.X += cardinals[best].dx
	pos.Y += cardinals[best].dy
}

// jumpTo moves the agent directly onto the richest cell among the current
// cell and every in-bounds cell along the four cardinal rays up to vision.
// Ties are broken uniformly at random over the tied cells.
func jumpTo(t *Terrain, pos *components.Position, vision int, rng *rand.Rand) {
	best := t.GrainAt(pos.X, pos.Y)
	ties := 1

	for _, c := range cardinals {
		for i := 1; i <= vision; i++ {
			cx, cy := pos.X+c.dx*i, pos.Y+c.dy*i
			if !t.InBounds(cx, cy) {
				break
			}
			switch g := t.GrainAt(cx, cy); {
			case g > best:
				best = g
				ties = 1
			case g == best:
				ties++
			}
		}
	}

	// Second walk in the same candidate order picks the pick-th tied cell.
	pick := rng.Intn(ties)
	if t.GrainAt(pos.X, pos.Y) == best {
		if pick == 0 {
			return
		}
		pick--
	}
	for _, c := range cardinals {
		for i := 1; i <= vision; i++ {
			cx, cy := pos.X+c.dx*i, pos.Y+c.dy*i
			if !t.InBounds(cx, cy) {
				break
			}
			if t.GrainAt(cx, cy) != best {
				continue
			}
			if pick == 0 {
				pos.X, pos.Y = cx, cy
				return
			}
			pick--
		}
	}
}

// raySum totals grain over up to vision cells strictly ahead of (x, y) in
// direction (dx, dy), stopping at the grid boundary. cells reports how many
// were read.
func raySum(t *Terrain, x, y, dx, dy, vision int) (sum float64, cells int) {
	for i := 1; i <= vision; i++ {
		cx, cy := x+dx*i, y+dy*i
		if !t.InBounds(cx, cy) {
			break
		}
		sum += t.Grain[t.Idx(cx, cy)]
		cells++
	}
	return sum, cells
}
