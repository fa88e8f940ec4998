package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BatchSummary aggregates terminal metrics across one batch.
type BatchSummary struct {
	Runs   int
	Failed int

	GiniMean float64
	GiniStd  float64

	// Mean share of the population per wealth class, in percent
	PoorPct   float64
	MiddlePct float64
	RichPct   float64

	// Point-wise mean Lorenz curve across full-resolution runs
	MeanLorenz LorenzCurve
}

// Summarize reduces batch results to a summary over the successful runs.
// Failed runs are counted and contribute nothing else.
func Summarize(results []RunResult) BatchSummary {
	s := BatchSummary{Runs: len(results)}

	ok := make([]RunResult, 0, len(results))
	ginis := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		ok = append(ok, r)
		ginis = append(ginis, r.GiniIndex)
	}
	if len(ok) == 0 {
		return s
	}

	s.GiniMean = stat.Mean(ginis, nil)
	if len(ginis) > 1 {
		s.GiniStd = stat.StdDev(ginis, nil)
	}

	var poor, middle, rich float64
	for _, r := range ok {
		total := float64(r.Poor + r.MiddleClass + r.Rich)
		if total == 0 {
			continue
		}
		poor += 100 * float64(r.Poor) / total
		middle += 100 * float64(r.MiddleClass) / total
		rich += 100 * float64(r.Rich) / total
	}
	n := float64(len(ok))
	s.PoorPct = poor / n
	s.MiddlePct = middle / n
	s.RichPct = rich / n

	s.MeanLorenz = meanLorenz(ok)
	return s
}

// meanLorenz averages curves point-wise. Only curves of the longest
// observed length participate, so degenerate two-point curves from
// zero-wealth runs are skipped whenever full-resolution curves exist.
func meanLorenz(results []RunResult) LorenzCurve {
	longest := 0
	for _, r := range results {
		if len(r.Lorenz) > longest {
			longest = len(r.Lorenz)
		}
	}
	if longest == 0 {
		return nil
	}

	mean := make(LorenzCurve, longest)
	var n float64
	for _, r := range results {
		if len(r.Lorenz) != longest {
			continue
		}
		n++
		for i, p := range r.Lorenz {
			mean[i].PopFraction += p.PopFraction
			mean[i].WealthFraction += p.WealthFraction
		}
	}
	for i := range mean {
		mean[i].PopFraction /= n
		mean[i].WealthFraction /= n
	}
	return mean
}

// LogValue implements slog.LogValuer.
func (s BatchSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("runs", s.Runs),
		slog.Int("failed", s.Failed),
		slog.Float64("gini_mean", s.GiniMean),
		slog.Float64("gini_std", s.GiniStd),
		slog.Float64("poor_pct", s.PoorPct),
		slog.Float64("middle_pct", s.MiddlePct),
		slog.Float64("rich_pct", s.RichPct),
	)
}
