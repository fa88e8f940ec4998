package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/grain/components"
)

func TestGini(t *testing.T) {
	tests := []struct {
		name    string
		wealths []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single agent", []float64{42}, 0},
		{"zero total", []float64{0, 0, 0}, 0},
		{"perfect equality", []float64{5, 5, 5, 5}, 0},
		{"worked example", []float64{0, 100}, 0.5},
		{"order independent", []float64{100, 0}, 0.5},
		{"negatives clamped", []float64{-5, 5}, 0.5},
		{"all negative", []float64{-3, -7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gini(tt.wealths)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Gini(%v) = %v, want %v", tt.wealths, got, tt.want)
			}
		})
	}
}

func TestGiniBounds(t *testing.T) {
	// One agent holding everything: gini = (n-1)/n, just under 1
	wealths := make([]float64, 100)
	wealths[99] = 1e6

	got := Gini(wealths)
	if got < 0 || got > 1 {
		t.Fatalf("expected gini in [0,1], got %v", got)
	}
	if math.Abs(got-0.99) > 1e-9 {
		t.Errorf("expected 0.99 for total concentration over 100 agents, got %v", got)
	}
}

func TestLorenzDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		wealths []float64
		total   float64
	}{
		{"no population", nil, 0},
		{"zero total", []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lorenz(tt.wealths, tt.total, LorenzResolution)
			if len(got) != 2 || got[0] != (LorenzPoint{0, 0}) || got[1] != (LorenzPoint{1, 1}) {
				t.Errorf("expected degenerate diagonal [(0,0),(1,1)], got %v", got)
			}
		})
	}
}

func TestLorenzKnownCurve(t *testing.T) {
	got := Lorenz([]float64{3, 1}, 4, 2)
	want := LorenzCurve{{0, 0}, {0.5, 0.25}, {1, 1}}

	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i].PopFraction-want[i].PopFraction) > 1e-9 ||
			math.Abs(got[i].WealthFraction-want[i].WealthFraction) > 1e-9 {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLorenzDiagonalForEqualWealth(t *testing.T) {
	// With one bucket per agent the curve is exactly the diagonal
	wealths := make([]float64, 100)
	for i := range wealths {
		wealths[i] = 7
	}

	curve := Lorenz(wealths, 700, LorenzResolution)
	if len(curve) != LorenzResolution+1 {
		t.Fatalf("expected %d points, got %d", LorenzResolution+1, len(curve))
	}
	for _, p := range curve {
		if math.Abs(p.WealthFraction-p.PopFraction) > 1e-9 {
			t.Errorf("expected diagonal, got point (%v, %v)", p.PopFraction, p.WealthFraction)
		}
	}
}

func TestLorenzMonotoneWithEndpoints(t *testing.T) {
	wealths := []float64{5, 1, 12, 0, 7, 3, 9, 2, 4, 8, 30, 6}
	var total float64
	for _, w := range wealths {
		total += w
	}

	curve := Lorenz(wealths, total, LorenzResolution)

	first, last := curve[0], curve[len(curve)-1]
	if first != (LorenzPoint{0, 0}) {
		t.Errorf("expected curve to start at origin, got %v", first)
	}
	if math.Abs(last.PopFraction-1) > 1e-9 || math.Abs(last.WealthFraction-1) > 1e-9 {
		t.Errorf("expected curve to end at (1,1), got %v", last)
	}

	for i := 1; i < len(curve); i++ {
		if curve[i].PopFraction < curve[i-1].PopFraction ||
			curve[i].WealthFraction < curve[i-1].WealthFraction-1e-12 {
			t.Errorf("curve decreases at point %d: %v -> %v", i, curve[i-1], curve[i])
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		wealth float64
		max    float64
		want   components.WealthClass
	}{
		{"zero wealth", 0, 90, components.ClassPoor},
		{"bottom third boundary", 30, 90, components.ClassPoor},
		{"just above boundary", 31, 90, components.ClassMiddle},
		{"middle third boundary", 60, 90, components.ClassMiddle},
		{"just above middle", 61, 90, components.ClassRich},
		{"at maximum", 90, 90, components.ClassRich},
		{"negative wealth", -5, 90, components.ClassPoor},
		{"zero maximum", 5, 0, components.ClassPoor},
		{"negative maximum", 5, -1, components.ClassPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.wealth, tt.max); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.wealth, tt.max, got, tt.want)
			}
		})
	}
}

func TestLorenzCurveCSVEncoding(t *testing.T) {
	curve := LorenzCurve{{0, 0}, {0.5, 0.25}, {1, 1}}

	s, err := curve.MarshalCSV()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "[[0,0],[0.5,0.25],[1,1]]"; s != want {
		t.Errorf("expected %s, got %s", want, s)
	}

	var back LorenzCurve
	if err := back.UnmarshalCSV(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(back) != 3 || back[1] != (LorenzPoint{0.5, 0.25}) {
		t.Errorf("round trip mismatch: %v", back)
	}
}

func TestCollect(t *testing.T) {
	counts := ClassCounts{Poor: 2, Middle: 1, Rich: 1}
	m := Collect([]float64{0, 10, 40, 100}, counts, 10)

	if m.MinWealth != 0 || m.MaxWealth != 100 || m.TotalWealth != 150 {
		t.Errorf("unexpected extremes: min=%v max=%v total=%v", m.MinWealth, m.MaxWealth, m.TotalWealth)
	}
	if m.Poor != 2 || m.MiddleClass != 1 || m.Rich != 1 {
		t.Errorf("unexpected class counts: %d/%d/%d", m.Poor, m.MiddleClass, m.Rich)
	}
	if len(m.Lorenz) != 11 {
		t.Errorf("expected 11 curve points, got %d", len(m.Lorenz))
	}
	if m.GiniIndex <= 0 || m.GiniIndex > 1 {
		t.Errorf("expected gini in (0,1] for unequal wealths, got %v", m.GiniIndex)
	}
}

func TestCollectEmptyPopulation(t *testing.T) {
	m := Collect(nil, ClassCounts{}, LorenzResolution)

	if m.GiniIndex != 0 || m.TotalWealth != 0 || m.Poor != 0 {
		t.Errorf("expected neutral metrics, got %+v", m)
	}
	if len(m.Lorenz) != 2 {
		t.Errorf("expected degenerate curve, got %d points", len(m.Lorenz))
	}
}
