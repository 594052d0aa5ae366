package service

import (
	"testing"
	"time"

	"stridelab/internal/analysis"
	"stridelab/internal/snapshot"
	"stridelab/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedSession(t *testing.T, db *store.DB, id int64) {
	t.Helper()
	s := &store.Session{
		ID:             id,
		AthleteID:      42,
		Name:           "Morning Run",
		Type:           "Run",
		SportType:      "Run",
		StartDate:      time.Date(2026, 1, 6, 7, 0, 0, 0, time.UTC),
		StartDateLocal: time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC).AddDate(0, 0, int(id)),
		Distance:       5000,
		MovingTime:     1500,
		ElapsedTime:    1560,
		AverageSpeed:   3.0,
		AverageCadence: floatPtr(160),
	}
	if err := db.UpsertSession(s); err != nil {
		t.Fatalf("seeding session %d: %v", id, err)
	}
}

func TestTimeseriesBackfillsDynamics(t *testing.T) {
	db := openTestDB(t)
	seedSession(t, db, 1)

	filter := store.SessionFilter{AthleteID: 42}
	result, err := NewAnalyticsService(db, nil).Timeseries(filter, "distance", analysis.BucketWeek)
	if err != nil {
		t.Fatalf("Timeseries: %v", err)
	}
	if len(result.Series) != 1 {
		t.Fatalf("expected 1 point, got %d", len(result.Series))
	}

	// The derivable biomechanical triple is now persisted
	got, err := db.GetSession(1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.StrideLength == nil || *got.StrideLength != 1.13 {
		t.Errorf("StrideLength = %v, want 1.13", got.StrideLength)
	}
	if got.GroundContactTime == nil || *got.GroundContactTime != 247.5 {
		t.Errorf("GroundContactTime = %v, want 247.5", got.GroundContactTime)
	}
	if got.VerticalOscillation == nil || *got.VerticalOscillation != 7.26 {
		t.Errorf("VerticalOscillation = %v, want 7.26", got.VerticalOscillation)
	}
}

func TestSnapshotCaching(t *testing.T) {
	db := openTestDB(t)
	seedSession(t, db, 1)
	seedSession(t, db, 2)

	svc := NewAnalyticsService(db, nil)
	filter := store.SessionFilter{AthleteID: 42}

	if _, err := svc.LoadModel(filter); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	hash, err := snapshot.FilterHash(filter.Canonical())
	if err != nil {
		t.Fatalf("FilterHash: %v", err)
	}
	snap, err := db.GetSnapshot(42, KindLoad, hash)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Payload) == 0 {
		t.Error("empty snapshot payload")
	}

	// A repeat run replaces the cached row rather than stacking a new one
	if _, err := svc.LoadModel(filter); err != nil {
		t.Fatalf("repeat LoadModel: %v", err)
	}
	count, err := db.CountSnapshots(42)
	if err != nil {
		t.Fatalf("CountSnapshots: %v", err)
	}
	if count != 1 {
		t.Errorf("snapshot count = %d, want 1", count)
	}

	// A different engine caches under its own kind
	if _, err := svc.Distribution(filter, "duration", 10); err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	count, _ = db.CountSnapshots(42)
	if count != 2 {
		t.Errorf("snapshot count = %d, want 2", count)
	}
}

func TestRecentSessionsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	for i := int64(1); i <= 4; i++ {
		seedSession(t, db, i)
	}

	svc := NewAnalyticsService(db, nil)
	sessions, err := svc.RecentSessions(42, 3)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != 4 || sessions[2].ID != 2 {
		t.Errorf("order = %d..%d, want 4..2", sessions[0].ID, sessions[2].ID)
	}
}

func TestCorrelationsUsesProfileHRMax(t *testing.T) {
	db := openTestDB(t)
	seedSession(t, db, 1)
	seedSession(t, db, 2)

	if err := db.SaveProfile(&store.AthleteProfile{AthleteID: 42, MaxHeartrate: floatPtr(185)}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	svc := NewAnalyticsService(db, nil)
	result, err := svc.Correlations(store.SessionFilter{AthleteID: 42}, []string{"distance", "duration"}, analysis.MethodPearson, "", "", "")
	if err != nil {
		t.Fatalf("Correlations: %v", err)
	}
	if len(result.Vars) != 2 {
		t.Errorf("Vars = %v, want 2 vars", result.Vars)
	}
}
