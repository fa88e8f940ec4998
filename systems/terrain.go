// Package systems implements the per-tick mechanics of the simulation:
// the patch grid, agent movement, and harvesting.
package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Diffusion schedule for the capacity setup phase.
const (
	diffuseRate  = 0.25 // share of a cell's grain spread to neighbors per pass
	seededPasses = 5    // passes with best land restored to full grain first
	smoothPasses = 10   // trailing passes without restoration
)

// Terrain is the patch grid: a capacity layer fixed at setup and the grain
// currently standing on it. Grain values are whole numbers after setup; the
// slices stay float64 because diffusion and harvest shares are real-valued.
type Terrain struct {
	Width, Height int

	// Capacity per patch, fixed after setup
	Cap []float64
	// Current grain per patch, 0 <= Grain[i] <= Cap[i]
	Grain []float64

	// Scratch buffer for diffusion
	tmp []float64
}

// NewTerrain builds the grid: seed the best-land share of patches at full
// grain, diffuse with the best land restored before each pass, smooth with
// plain passes, then floor every cell and freeze the result as its capacity.
func NewTerrain(width, height int, bestLandFraction float64, maxGrain int, rng *rand.Rand) *Terrain {
	n := width * height
	t := &Terrain{
		Width:  width,
		Height: height,
		Cap:    make([]float64, n),
		Grain:  make([]float64, n),
		tmp:    make([]float64, n),
	}

	numBest := int(math.Round(float64(n) * bestLandFraction))
	best := rng.Perm(n)[:numBest]
	full := float64(maxGrain)

	for pass := 0; pass < seededPasses; pass++ {
		for _, i := range best {
			t.Grain[i] = full
		}
		t.diffuse(diffuseRate)
	}
	for pass := 0; pass < smoothPasses; pass++ {
		t.diffuse(diffuseRate)
	}

	for i, g := range t.Grain {
		g = math.Floor(g)
		if g < 0 {
			g = 0
		}
		t.Grain[i] = g
		t.Cap[i] = g
	}
	return t
}

// Idx maps patch coordinates to a slice index.
func (t *Terrain) Idx(x, y int) int {
	return y*t.Width + x
}

// InBounds reports whether (x, y) lies on the grid.
func (t *Terrain) InBounds(x, y int) bool {
	return x >= 0 && x < t.Width && y >= 0 && y < t.Height
}

// GrainAt returns the grain standing at (x, y).
func (t *Terrain) GrainAt(x, y int) float64 {
	return t.Grain[t.Idx(x, y)]
}

// CapacityAt returns the fixed capacity of (x, y).
func (t *Terrain) CapacityAt(x, y int) float64 {
	return t.Cap[t.Idx(x, y)]
}

// Harvest removes and returns all grain standing at (x, y).
func (t *Terrain) Harvest(x, y int) float64 {
	i := t.Idx(x, y)
	g := t.Grain[i]
	t.Grain[i] = 0
	return g
}

// Grow adds amount grain to every patch, capped at the patch's capacity.
func (t *Terrain) Grow(amount float64) {
	for i := range t.Grain {
		g := t.Grain[i] + amount
		if g > t.Cap[i] {
			g = t.Cap[i]
		}
		t.Grain[i] = g
	}
}

// TotalGrain returns the grain standing on the whole grid.
func (t *Terrain) TotalGrain() float64 {
	return floats.Sum(t.Grain)
}

// TotalCapacity returns the summed capacity of the whole grid.
func (t *Terrain) TotalCapacity() float64 {
	return floats.Sum(t.Cap)
}

// diffuse applies one snapshot-buffered diffusion pass. Each cell keeps
// (1-rate) of its grain and sends rate/4 to each von Neumann neighbor.
// Shares aimed off-grid are lost, so edge cells drain over repeated passes.
func (t *Terrain) diffuse(rate float64) {
	w, h := t.Width, t.Height
	src := t.Grain
	dst := t.tmp
	share := rate * 0.25

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := (1 - rate) * src[i]
			if x > 0 {
				v += share * src[i-1]
			}
			if x+1 < w {
				v += share * src[i+1]
			}
			if y > 0 {
				v += share * src[i-w]
			}
			if y+1 < h {
				v += share * src[i+w]
			}
			dst[i] = v
		}
	}
	copy(t.Grain, dst)
}
