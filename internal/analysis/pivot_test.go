package analysis

import (
	"testing"
	"time"

	"stridelab/internal/store"
)

func TestBuildPivotByType(t *testing.T) {
	sessions := []store.Session{
		{ID: 1, Type: "Run", StartDateLocal: day(2026, 1, 6), Distance: 5000, MovingTime: 1800, ElevationGain: 50, AverageHeartrate: floatPtr(150)},
		{ID: 2, Type: "Run", StartDateLocal: day(2026, 1, 8), Distance: 7000, MovingTime: 2400, ElevationGain: 70, AverageHeartrate: floatPtr(160)},
		{ID: 3, Type: "Ride", StartDateLocal: day(2026, 1, 9), Distance: 30000, MovingTime: 5400, ElevationGain: 300}, // no HR
	}

	result := BuildPivot(sessions, RowType, []string{"distance", "avg_hr"})

	if result.Row != "type" {
		t.Errorf("Row = %s, want type", result.Row)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}

	// Rows sorted lexicographically: Ride before Run
	ride := result.Rows[0]
	if ride.Key != "Ride" {
		t.Fatalf("first row = %s, want Ride", ride.Key)
	}
	if ride.Samples != 1 {
		t.Errorf("Ride samples = %d, want 1", ride.Samples)
	}
	// No HR contributions: cell exists and is zero
	if v, ok := ride.Cells["avg_hr"]; !ok || v != 0 {
		t.Errorf("Ride avg_hr = %v (present=%v), want 0 present", v, ok)
	}
	if ride.Cells["distance"] != 30 {
		t.Errorf("Ride distance = %v, want 30 km", ride.Cells["distance"])
	}

	run := result.Rows[1]
	if run.Cells["distance"] != 12 {
		t.Errorf("Run distance = %v, want 12 km", run.Cells["distance"])
	}
	if run.Cells["avg_hr"] != 155 {
		t.Errorf("Run avg_hr = %v, want 155", run.Cells["avg_hr"])
	}
}

func TestBuildPivotMetricSelection(t *testing.T) {
	sessions := []store.Session{
		{ID: 1, Type: "Run", StartDateLocal: day(2026, 1, 6), Distance: 5000},
	}

	tests := []struct {
		name     string
		metrics  []string
		expected []string
	}{
		{"unknown names dropped", []string{"distance", "bogus"}, []string{"distance"}},
		{"duplicates collapse, order kept", []string{"elevation", "distance", "elevation"}, []string{"elevation", "distance"}},
		{"empty falls back to defaults", nil, DefaultPivotMetrics},
		{"all unknown falls back to defaults", []string{"x", "y"}, DefaultPivotMetrics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildPivot(sessions, RowType, tt.metrics)
			if len(result.Metrics) != len(tt.expected) {
				t.Fatalf("Metrics = %v, want %v", result.Metrics, tt.expected)
			}
			for i, m := range tt.expected {
				if result.Metrics[i] != m {
					t.Errorf("Metrics[%d] = %s, want %s", i, result.Metrics[i], m)
				}
			}
			// Every row carries every effective metric
			for _, row := range result.Rows {
				for _, m := range result.Metrics {
					if _, ok := row.Cells[m]; !ok {
						t.Errorf("row %s missing cell %s", row.Key, m)
					}
				}
			}
		})
	}
}

func TestBuildPivotWeekAndMonthRows(t *testing.T) {
	sessions := []store.Session{
		{ID: 1, Type: "Run", StartDateLocal: day(2026, 1, 6), Distance: 5000},
		{ID: 2, Type: "Run", StartDateLocal: day(2026, 1, 8), Distance: 7000},
		{ID: 3, Type: "Run", StartDateLocal: day(2026, 2, 2), Distance: 9000},
	}

	week := BuildPivot(sessions, RowWeek, []string{"distance"})
	if len(week.Rows) != 2 {
		t.Fatalf("expected 2 week rows, got %d", len(week.Rows))
	}
	if week.Rows[0].Key != "2026-01-05" {
		t.Errorf("week key = %s, want 2026-01-05", week.Rows[0].Key)
	}

	month := BuildPivot(sessions, RowMonth, []string{"distance"})
	if len(month.Rows) != 2 {
		t.Fatalf("expected 2 month rows, got %d", len(month.Rows))
	}
	if month.Rows[0].Key != "2026-01" || month.Rows[1].Key != "2026-02" {
		t.Errorf("month keys = %s, %s; want 2026-01, 2026-02", month.Rows[0].Key, month.Rows[1].Key)
	}
}

func TestBuildPivotInvalidRowKind(t *testing.T) {
	sessions := []store.Session{
		{ID: 1, Type: "Run", StartDateLocal: time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC), Distance: 5000},
	}

	result := BuildPivot(sessions, RowKind("bogus"), []string{"distance"})
	if result.Row != "type" {
		t.Errorf("Row = %s, want fallback type", result.Row)
	}
}
