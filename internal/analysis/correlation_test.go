package analysis

import (
	"math"
	"testing"

	"stridelab/internal/store"
)

func corrSessions() []store.Session {
	// Distance and duration move together; HR is missing on one session
	return []store.Session{
		{ID: 1, StartDateLocal: day(2026, 1, 5), Distance: 5000, MovingTime: 1500, AverageHeartrate: floatPtr(140)},
		{ID: 2, StartDateLocal: day(2026, 1, 6), Distance: 10000, MovingTime: 3000, AverageHeartrate: floatPtr(150)},
		{ID: 3, StartDateLocal: day(2026, 1, 7), Distance: 15000, MovingTime: 4500},
		{ID: 4, StartDateLocal: day(2026, 1, 8), Distance: 20000, MovingTime: 6000, AverageHeartrate: floatPtr(165)},
	}
}

func TestBuildCorrelationsMatrix(t *testing.T) {
	result := BuildCorrelations(corrSessions(), []string{"distance", "duration", "avg_hr"}, MethodPearson, 190, "", "", "")

	if result.Method != MethodPearson {
		t.Errorf("Method = %s, want pearson", result.Method)
	}
	if len(result.Vars) != 3 || len(result.Matrix) != 3 {
		t.Fatalf("expected 3x3 matrix, got vars=%v", result.Vars)
	}

	// Diagonal is 1 for varied series
	for i := range result.Vars {
		if result.Matrix[i][i] == nil || math.Abs(*result.Matrix[i][i]-1) > 1e-9 {
			t.Errorf("Matrix[%d][%d] = %v, want 1", i, i, result.Matrix[i][i])
		}
	}

	// Symmetric
	for i := range result.Vars {
		for j := range result.Vars {
			a, b := result.Matrix[i][j], result.Matrix[j][i]
			if (a == nil) != (b == nil) {
				t.Fatalf("asymmetric nils at (%d,%d)", i, j)
			}
			if a != nil && math.Abs(*a-*b) > 1e-9 {
				t.Errorf("Matrix[%d][%d]=%v != Matrix[%d][%d]=%v", i, j, *a, j, i, *b)
			}
		}
	}

	// Perfectly proportional pair
	if r := result.Matrix[0][1]; r == nil || math.Abs(*r-1) > 1e-9 {
		t.Errorf("distance/duration r = %v, want 1", r)
	}

	if result.Scatter != nil {
		t.Error("Scatter should be nil when no pair requested")
	}
}

func TestBuildCorrelationsDefaultsAndTruncation(t *testing.T) {
	// Fewer than 2 valid requested vars: fall back to the default set
	result := BuildCorrelations(corrSessions(), []string{"distance", "bogus"}, MethodPearson, 190, "", "", "")
	if len(result.Vars) != len(defaultCorrelationVars) {
		t.Fatalf("Vars = %v, want default set", result.Vars)
	}
	for i, v := range defaultCorrelationVars {
		if result.Vars[i] != v {
			t.Errorf("Vars[%d] = %s, want %s", i, result.Vars[i], v)
		}
	}

	// Unknown method normalizes to pearson
	result = BuildCorrelations(corrSessions(), []string{"distance", "duration"}, "kendall", 190, "", "", "")
	if result.Method != MethodPearson {
		t.Errorf("Method = %s, want pearson fallback", result.Method)
	}
}

func TestCorrelateDegenerateCases(t *testing.T) {
	tests := []struct {
		name string
		xs   []*float64
		ys   []*float64
	}{
		{
			name: "fewer than two complete pairs",
			xs:   []*float64{floatPtr(1), nil, floatPtr(3)},
			ys:   []*float64{floatPtr(2), floatPtr(4), nil},
		},
		{
			name: "zero variance",
			xs:   []*float64{floatPtr(5), floatPtr(5), floatPtr(5)},
			ys:   []*float64{floatPtr(1), floatPtr(2), floatPtr(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := correlate(tt.xs, tt.ys, MethodPearson); r != nil {
				t.Errorf("correlate() = %v, want nil", *r)
			}
		})
	}
}

func TestCorrelatePairwiseComplete(t *testing.T) {
	// The nil-bearing rows drop out; the rest correlate perfectly
	xs := []*float64{floatPtr(1), nil, floatPtr(2), floatPtr(3)}
	ys := []*float64{floatPtr(10), floatPtr(99), floatPtr(20), nil}

	r := correlate(xs, ys, MethodPearson)
	if r == nil || math.Abs(*r-1) > 1e-9 {
		t.Errorf("correlate() = %v, want 1", r)
	}
}

func TestRanks(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{"no ties", []float64{30, 10, 20}, []float64{3, 1, 2}},
		{"two-way tie averages positions", []float64{5, 1, 1, 3}, []float64{4, 1.5, 1.5, 3}},
		{"all tied", []float64{7, 7, 7}, []float64{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranks(tt.values)
			for i := range tt.expected {
				if math.Abs(got[i]-tt.expected[i]) > 1e-9 {
					t.Errorf("ranks(%v) = %v, want %v", tt.values, got, tt.expected)
					break
				}
			}
		})
	}
}

func TestSpearmanMonotonicNonlinear(t *testing.T) {
	// y = x^3 is monotonic but nonlinear: spearman 1, pearson below 1
	sessions := []store.Session{
		{ID: 1, StartDateLocal: day(2026, 1, 5), Distance: 1000, ElevationGain: 1},
		{ID: 2, StartDateLocal: day(2026, 1, 6), Distance: 2000, ElevationGain: 8},
		{ID: 3, StartDateLocal: day(2026, 1, 7), Distance: 3000, ElevationGain: 27},
		{ID: 4, StartDateLocal: day(2026, 1, 8), Distance: 4000, ElevationGain: 64},
	}

	spearman := BuildCorrelations(sessions, []string{"distance", "elevation"}, MethodSpearman, 190, "", "", "")
	if r := spearman.Matrix[0][1]; r == nil || math.Abs(*r-1) > 1e-9 {
		t.Errorf("spearman r = %v, want 1", r)
	}

	pearson := BuildCorrelations(sessions, []string{"distance", "elevation"}, MethodPearson, 190, "", "", "")
	if r := pearson.Matrix[0][1]; r == nil || *r >= 1 {
		t.Errorf("pearson r = %v, want < 1", r)
	}
}

func TestBuildCorrelationsScatter(t *testing.T) {
	result := BuildCorrelations(corrSessions(), []string{"distance", "duration"}, MethodPearson, 190, "distance", "duration", "avg_hr")

	s := result.Scatter
	if s == nil {
		t.Fatal("expected scatter, got nil")
	}
	if s.X != "distance" || s.Y != "duration" || s.Color != "avg_hr" {
		t.Errorf("scatter axes = %s/%s/%s", s.X, s.Y, s.Color)
	}
	// All four sessions have x and y; the HR-less one stays, color nil
	if len(s.Points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(s.Points))
	}
	var nilColors int
	for _, p := range s.Points {
		if p.Color == nil {
			nilColors++
		}
	}
	if nilColors != 1 {
		t.Errorf("nil colors = %d, want 1", nilColors)
	}
	if s.R == nil || math.Abs(*s.R-1) > 1e-9 {
		t.Errorf("scatter R = %v, want 1", s.R)
	}
	if s.Points[0].Date != "2026-01-05" {
		t.Errorf("point date = %s, want 2026-01-05", s.Points[0].Date)
	}
}

func TestBuildCorrelationsChargeVar(t *testing.T) {
	sessions := []store.Session{
		{ID: 1, StartDateLocal: day(2026, 1, 5), MovingTime: 1800, Distance: 5000, AverageSpeed: 2.8, TrainingStress: floatPtr(40)},
		{ID: 2, StartDateLocal: day(2026, 1, 6), MovingTime: 3600, Distance: 10000, AverageSpeed: 2.8, TrainingStress: floatPtr(80)},
		{ID: 3, StartDateLocal: day(2026, 1, 7), MovingTime: 5400, Distance: 15000, AverageSpeed: 2.8, TrainingStress: floatPtr(120)},
	}

	result := BuildCorrelations(sessions, []string{"distance", "charge"}, MethodPearson, 190, "", "", "")
	if r := result.Matrix[0][1]; r == nil || math.Abs(*r-1) > 1e-9 {
		t.Errorf("distance/charge r = %v, want 1", r)
	}
}
