package telemetry

import (
	"errors"
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	results := []RunResult{
		{RunID: 1, TickMetrics: TickMetrics{
			GiniIndex: 0.4, Poor: 50, MiddleClass: 30, Rich: 20,
			Lorenz: LorenzCurve{{0, 0}, {0.5, 0.2}, {1, 1}},
		}},
		{RunID: 2, TickMetrics: TickMetrics{
			GiniIndex: 0.6, Poor: 60, MiddleClass: 20, Rich: 20,
			Lorenz: LorenzCurve{{0, 0}, {0.5, 0.3}, {1, 1}},
		}},
		{RunID: 3, Err: errors.New("boom")},
	}

	s := Summarize(results)

	if s.Runs != 3 || s.Failed != 1 {
		t.Errorf("expected 3 runs with 1 failure, got runs=%d failed=%d", s.Runs, s.Failed)
	}
	if math.Abs(s.GiniMean-0.5) > 1e-9 {
		t.Errorf("expected gini mean 0.5, got %v", s.GiniMean)
	}
	if want := math.Sqrt(0.02); math.Abs(s.GiniStd-want) > 1e-9 {
		t.Errorf("expected gini std %v, got %v", want, s.GiniStd)
	}
	if math.Abs(s.PoorPct-55) > 1e-9 || math.Abs(s.MiddlePct-25) > 1e-9 || math.Abs(s.RichPct-20) > 1e-9 {
		t.Errorf("unexpected class percentages: %v/%v/%v", s.PoorPct, s.MiddlePct, s.RichPct)
	}

	if len(s.MeanLorenz) != 3 {
		t.Fatalf("expected 3-point mean curve, got %d points", len(s.MeanLorenz))
	}
	mid := s.MeanLorenz[1]
	if math.Abs(mid.PopFraction-0.5) > 1e-9 || math.Abs(mid.WealthFraction-0.25) > 1e-9 {
		t.Errorf("expected mean midpoint (0.5, 0.25), got %v", mid)
	}
}

func TestSummarizeSingleRun(t *testing.T) {
	s := Summarize([]RunResult{{RunID: 1, TickMetrics: TickMetrics{GiniIndex: 0.3}}})

	if s.GiniMean != 0.3 {
		t.Errorf("expected mean 0.3, got %v", s.GiniMean)
	}
	if s.GiniStd != 0 {
		t.Errorf("expected zero std for a single run, got %v", s.GiniStd)
	}
}

func TestSummarizeAllFailed(t *testing.T) {
	s := Summarize([]RunResult{
		{RunID: 1, Err: errors.New("a")},
		{RunID: 2, Err: errors.New("b")},
	})

	if s.Runs != 2 || s.Failed != 2 {
		t.Errorf("expected 2 failed runs, got runs=%d failed=%d", s.Runs, s.Failed)
	}
	if s.GiniMean != 0 || s.MeanLorenz != nil {
		t.Errorf("expected empty summary, got %+v", s)
	}
}

func TestSummarizeSkipsDegenerateCurves(t *testing.T) {
	results := []RunResult{
		{RunID: 1, TickMetrics: TickMetrics{Lorenz: LorenzCurve{{0, 0}, {0.5, 0.2}, {1, 1}}}},
		{RunID: 2, TickMetrics: TickMetrics{Lorenz: LorenzCurve{{0, 0}, {1, 1}}}},
	}

	s := Summarize(results)

	if len(s.MeanLorenz) != 3 {
		t.Fatalf("expected the full-resolution curve to win, got %d points", len(s.MeanLorenz))
	}
	if s.MeanLorenz[1] != (LorenzPoint{0.5, 0.2}) {
		t.Errorf("expected degenerate curve excluded from the mean, got midpoint %v", s.MeanLorenz[1])
	}
}
