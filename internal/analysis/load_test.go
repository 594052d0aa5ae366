package analysis

import (
	"math"
	"testing"

	"stridelab/internal/store"
)

func TestSessionCharge(t *testing.T) {
	tests := []struct {
		name     string
		session  store.Session
		hrMax    float64
		mean     float64
		expected float64
		delta    float64
	}{
		{
			name: "explicit training stress wins",
			session: store.Session{
				MovingTime:       3600,
				AverageHeartrate: floatPtr(150),
				TrainingStress:   floatPtr(85),
			},
			hrMax:    190,
			mean:     3.0,
			expected: 85,
		},
		{
			name: "heart rate intensity",
			session: store.Session{
				MovingTime:       3600,
				AverageHeartrate: floatPtr(150),
			},
			hrMax: 190,
			mean:  3.0,
			// 60 min * 150/190
			expected: 47.37,
			delta:    0.01,
		},
		{
			name: "speed relative to subject mean",
			session: store.Session{
				MovingTime:   3600,
				AverageSpeed: 3.0,
			},
			hrMax:    190,
			mean:     3.0,
			expected: 60,
		},
		{
			name: "relative speed clamped low",
			session: store.Session{
				MovingTime:   3600,
				AverageSpeed: 0.3,
			},
			hrMax:    190,
			mean:     3.0,
			expected: 30, // 60 * 0.5 floor
		},
		{
			name: "relative speed clamped high",
			session: store.Session{
				MovingTime:   3600,
				AverageSpeed: 12.0,
			},
			hrMax:    190,
			mean:     3.0,
			expected: 108, // 60 * 1.8 ceiling
		},
		{
			name: "zero HR falls through to speed",
			session: store.Session{
				MovingTime:       1800,
				AverageHeartrate: floatPtr(0),
				AverageSpeed:     3.0,
			},
			hrMax:    190,
			mean:     3.0,
			expected: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SessionCharge(&tt.session, tt.hrMax, tt.mean)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("SessionCharge() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}

func TestSessionChargesFallbackMean(t *testing.T) {
	// No session has usable speed: the assumed 2.5 m/s mean applies
	sessions := []store.Session{
		{ID: 1, MovingTime: 3600, AverageSpeed: 0},
	}

	charges := SessionCharges(sessions, 190)
	if len(charges) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(charges))
	}
	// relative = 0/2.5 clamps to 0.5, charge = 60 * 0.5
	if charges[0] != 30 {
		t.Errorf("charge = %v, want 30", charges[0])
	}
}

func TestBuildLoadModel(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		result := BuildLoadModel(nil, 190)
		if result.Series == nil || len(result.Series) != 0 {
			t.Errorf("expected empty series, got %v", result.Series)
		}
	})

	t.Run("first day seeds both EMAs", func(t *testing.T) {
		sessions := []store.Session{
			{ID: 1, StartDateLocal: day(2026, 1, 5), MovingTime: 3600, TrainingStress: floatPtr(80)},
		}

		result := BuildLoadModel(sessions, 190)
		if len(result.Series) != 1 {
			t.Fatalf("expected 1 point, got %d", len(result.Series))
		}
		p := result.Series[0]
		if p.Charge != 80 || p.CTL != 80 || p.ATL != 80 || p.TSB != 0 {
			t.Errorf("first day = %+v, want charge/CTL/ATL 80, TSB 0", p)
		}
	})

	t.Run("rest days fill with zero charge and decay", func(t *testing.T) {
		sessions := []store.Session{
			{ID: 1, StartDateLocal: day(2026, 1, 5), MovingTime: 3600, TrainingStress: floatPtr(80)},
			{ID: 2, StartDateLocal: day(2026, 1, 8), MovingTime: 3600, TrainingStress: floatPtr(80)},
		}

		result := BuildLoadModel(sessions, 190)
		if len(result.Series) != 4 {
			t.Fatalf("expected 4 daily points, got %d", len(result.Series))
		}

		// Day 2 is a rest day
		p := result.Series[1]
		if p.Date != "2026-01-06" {
			t.Errorf("second point date = %s, want 2026-01-06", p.Date)
		}
		if p.Charge != 0 {
			t.Errorf("rest day charge = %v, want 0", p.Charge)
		}
		// CTL decays: 80 + 2/43*(0-80)
		wantCTL := 80 + 2.0/43*(0-80.0)
		if math.Abs(p.CTL-wantCTL) > 0.001 {
			t.Errorf("CTL = %v, want %v", p.CTL, wantCTL)
		}
		// ATL decays faster
		wantATL := 80 + 2.0/8*(0-80.0)
		if math.Abs(p.ATL-wantATL) > 0.001 {
			t.Errorf("ATL = %v, want %v", p.ATL, wantATL)
		}
		if math.Abs(p.TSB-(p.CTL-p.ATL)) > 1e-9 {
			t.Errorf("TSB = %v, want CTL-ATL = %v", p.TSB, p.CTL-p.ATL)
		}
	})

	t.Run("same-day sessions sum their charges", func(t *testing.T) {
		split := []store.Session{
			{ID: 1, StartDateLocal: day(2026, 1, 5), TrainingStress: floatPtr(40)},
			{ID: 2, StartDateLocal: day(2026, 1, 5), TrainingStress: floatPtr(40)},
		}
		single := []store.Session{
			{ID: 3, StartDateLocal: day(2026, 1, 5), TrainingStress: floatPtr(80)},
		}

		a := BuildLoadModel(split, 190)
		b := BuildLoadModel(single, 190)
		if len(a.Series) != 1 || len(b.Series) != 1 {
			t.Fatalf("expected 1 point each, got %d and %d", len(a.Series), len(b.Series))
		}
		if a.Series[0].CTL != b.Series[0].CTL {
			t.Errorf("split-day CTL = %v, want %v", a.Series[0].CTL, b.Series[0].CTL)
		}
	})

	t.Run("EMAs stay within observed charge bounds", func(t *testing.T) {
		sessions := []store.Session{
			{ID: 1, StartDateLocal: day(2026, 1, 5), TrainingStress: floatPtr(100)},
			{ID: 2, StartDateLocal: day(2026, 1, 6), TrainingStress: floatPtr(20)},
			{ID: 3, StartDateLocal: day(2026, 1, 9), TrainingStress: floatPtr(60)},
		}

		result := BuildLoadModel(sessions, 190)
		if len(result.Series) != 5 {
			t.Fatalf("expected 5 daily points, got %d", len(result.Series))
		}

		// Each EMA is a convex combination of the daily charges seen so
		// far, rest-day zeros included
		minSeen, maxSeen := math.Inf(1), math.Inf(-1)
		for _, p := range result.Series {
			minSeen = math.Min(minSeen, p.Charge)
			maxSeen = math.Max(maxSeen, p.Charge)
			if p.CTL < minSeen-1e-9 || p.CTL > maxSeen+1e-9 {
				t.Errorf("%s: CTL = %v, outside [%v, %v]", p.Date, p.CTL, minSeen, maxSeen)
			}
			if p.ATL < minSeen-1e-9 || p.ATL > maxSeen+1e-9 {
				t.Errorf("%s: ATL = %v, outside [%v, %v]", p.Date, p.ATL, minSeen, maxSeen)
			}
		}
	})

	t.Run("steady training converges toward daily charge", func(t *testing.T) {
		var sessions []store.Session
		for i := 0; i < 120; i++ {
			sessions = append(sessions, store.Session{
				ID:             int64(i + 1),
				StartDateLocal: day(2026, 1, 1).AddDate(0, 0, i),
				TrainingStress: floatPtr(100),
			})
		}

		result := BuildLoadModel(sessions, 190)
		last := result.Series[len(result.Series)-1]
		if math.Abs(last.CTL-100) > 10 {
			t.Errorf("CTL after 120 steady days = %v, want near 100", last.CTL)
		}
		if math.Abs(last.ATL-100) > 1 {
			t.Errorf("ATL after 120 steady days = %v, want near 100", last.ATL)
		}
		if math.Abs(last.TSB) > 10 {
			t.Errorf("TSB after 120 steady days = %v, want near 0", last.TSB)
		}
	})
}
