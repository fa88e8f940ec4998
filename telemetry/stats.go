// Package telemetry computes and publishes the simulation's inequality
// statistics: per-tick metrics, batch summaries, and tabular output.
package telemetry

import (
	"encoding/json"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/grain/components"
)

// LorenzResolution is the number of population buckets in a standard curve.
const LorenzResolution = 100

// LorenzPoint is one point of a Lorenz curve: the poorest PopFraction of
// the population holds WealthFraction of total wealth.
type LorenzPoint struct {
	PopFraction    float64
	WealthFraction float64
}

// MarshalJSON encodes the point as a [pop, wealth] pair.
func (p LorenzPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.PopFraction, p.WealthFraction})
}

// UnmarshalJSON decodes a [pop, wealth] pair.
func (p *LorenzPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.PopFraction, p.WealthFraction = pair[0], pair[1]
	return nil
}

// LorenzCurve is an ordered point sequence from (0,0) toward (1,1).
type LorenzCurve []LorenzPoint

// MarshalCSV encodes the curve as a JSON array of pairs so it fits in a
// single CSV cell.
func (c LorenzCurve) MarshalCSV() (string, error) {
	data, err := json.Marshal(c)
	return string(data), err
}

// UnmarshalCSV decodes a JSON-encoded curve from a CSV cell.
func (c *LorenzCurve) UnmarshalCSV(s string) error {
	return json.Unmarshal([]byte(s), c)
}

// ClassCounts holds the population count per wealth class.
type ClassCounts struct {
	Poor   int
	Middle int
	Rich   int
}

// TickMetrics is the fixed-shape record produced by one simulation tick.
type TickMetrics struct {
	MinWealth   float64     `csv:"min_wealth"`
	MaxWealth   float64     `csv:"max_wealth"`
	TotalWealth float64     `csv:"total_wealth"`
	GiniIndex   float64     `csv:"gini_index"`
	Lorenz      LorenzCurve `csv:"lorenz_curve"`
	Poor        int         `csv:"poor"`
	MiddleClass int         `csv:"middle_class"`
	Rich        int         `csv:"rich"`
}

// RunResult is the terminal record of one batch run. Err is set when the
// run failed; its metrics are then zero-valued and must not be consumed.
type RunResult struct {
	RunID int `csv:"run_id"`
	TickMetrics
	Err error `csv:"-"`
}

// Classify buckets wealth against the population maximum: the bottom third
// is poor, the middle third middle class, the top third rich. A non-positive
// maximum puts everyone in poor.
func Classify(wealth, max float64) components.WealthClass {
	if max <= 0 {
		return components.ClassPoor
	}
	switch {
	case wealth <= max/3:
		return components.ClassPoor
	case wealth <= 2*max/3:
		return components.ClassMiddle
	default:
		return components.ClassRich
	}
}

// Gini computes the Gini index over the given wealths. Negative wealths are
// clamped to zero for this calculation only. Fewer than two agents or zero
// clamped total express no inequality and yield 0.
func Gini(wealths []float64) float64 {
	n := len(wealths)
	if n < 2 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, wealths)
	for i, w := range sorted {
		if w < 0 {
			sorted[i] = 0
		}
	}
	sort.Float64s(sorted)

	total := floats.Sum(sorted)
	if total == 0 {
		return 0
	}

	var num float64
	for i, w := range sorted {
		r := float64(i + 1)
		num += (2*r - float64(n) - 1) * w
	}
	return num / (float64(n) * total)
}

// Lorenz computes the curve at the given resolution: bucket i covers the
// poorest round(i*n/resolution) agents and reports their share of
// totalWealth. An empty population, zero total, or non-positive resolution
// yields the degenerate diagonal.
func Lorenz(wealths []float64, totalWealth float64, resolution int) LorenzCurve {
	n := len(wealths)
	if n == 0 || totalWealth == 0 || resolution <= 0 {
		return LorenzCurve{{0, 0}, {1, 1}}
	}

	sorted := make([]float64, n)
	copy(sorted, wealths)
	sort.Float64s(sorted)

	cum := make([]float64, n)
	floats.CumSum(cum, sorted)

	curve := make(LorenzCurve, 0, resolution+1)
	curve = append(curve, LorenzPoint{0, 0})
	for i := 1; i <= resolution; i++ {
		k := int(math.Round(float64(i) * float64(n) / float64(resolution)))
		if k > n {
			k = n
		}
		var share float64
		if k > 0 {
			share = cum[k-1] / totalWealth
		}
		curve = append(curve, LorenzPoint{
			PopFraction:    float64(i) / float64(resolution),
			WealthFraction: share,
		})
	}
	return curve
}

// Collect assembles the full metrics record for one population state. The
// class counts come from the caller's classification pass so the record
// matches what agents were tagged with.
func Collect(wealths []float64, counts ClassCounts, resolution int) TickMetrics {
	m := TickMetrics{
		Poor:        counts.Poor,
		MiddleClass: counts.Middle,
		Rich:        counts.Rich,
	}
	if len(wealths) == 0 {
		m.Lorenz = Lorenz(nil, 0, resolution)
		return m
	}

	m.MinWealth = floats.Min(wealths)
	m.MaxWealth = floats.Max(wealths)
	m.TotalWealth = floats.Sum(wealths)
	m.GiniIndex = Gini(wealths)
	m.Lorenz = Lorenz(wealths, m.TotalWealth, resolution)
	return m
}

// LogValue implements slog.LogValuer. The Lorenz curve is left out; it is
// far too long for a log line.
func (m TickMetrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("min_wealth", m.MinWealth),
		slog.Float64("max_wealth", m.MaxWealth),
		slog.Float64("total_wealth", m.TotalWealth),
		slog.Float64("gini_index", m.GiniIndex),
		slog.Int("poor", m.Poor),
		slog.Int("middle_class", m.MiddleClass),
		slog.Int("rich", m.Rich),
	)
}
