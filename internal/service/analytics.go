package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"stridelab/internal/analysis"
	"stridelab/internal/dynamics"
	"stridelab/internal/snapshot"
	"stridelab/internal/store"
)

// AnalyticsService runs the analysis engines over stored sessions.
// Every call fetches the filtered batch, resolves run dynamics (writing
// back newly derivable values), computes the payload, and upserts it
// into the snapshot cache. Backfill and snapshot writes are
// fire-and-forget: failures are logged and never change the payload.
type AnalyticsService struct {
	store  *store.DB
	logger *log.Logger
}

// NewAnalyticsService creates an analytics service. A nil logger
// defaults to the standard logger.
func NewAnalyticsService(db *store.DB, logger *log.Logger) *AnalyticsService {
	if logger == nil {
		logger = log.Default()
	}
	return &AnalyticsService{store: db, logger: logger}
}

// Timeseries builds a bucketed series for one metric
func (s *AnalyticsService) Timeseries(f store.SessionFilter, metric string, bucket analysis.Bucket) (*analysis.TimeseriesResult, error) {
	sessions, err := s.fetch(f)
	if err != nil {
		return nil, err
	}
	result := analysis.BuildTimeseries(sessions, metric, bucket)
	s.writeSnapshot(f, KindTimeseries, result)
	return result, nil
}

// Distribution builds a histogram for one metric
func (s *AnalyticsService) Distribution(f store.SessionFilter, metric string, bins int) (*analysis.DistributionResult, error) {
	sessions, err := s.fetch(f)
	if err != nil {
		return nil, err
	}
	result := analysis.BuildDistribution(sessions, metric, bins)
	s.writeSnapshot(f, KindDistribution, result)
	return result, nil
}

// Pivot builds a row-grouped table over the requested metrics
func (s *AnalyticsService) Pivot(f store.SessionFilter, rowKind analysis.RowKind, metrics []string) (*analysis.PivotResult, error) {
	sessions, err := s.fetch(f)
	if err != nil {
		return nil, err
	}
	result := analysis.BuildPivot(sessions, rowKind, metrics)
	s.writeSnapshot(f, KindPivot, result)
	return result, nil
}

// Correlations builds the pairwise correlation matrix and optional scatter
func (s *AnalyticsService) Correlations(f store.SessionFilter, vars []string, method, scatterX, scatterY, scatterColor string) (*analysis.CorrelationResult, error) {
	sessions, err := s.fetch(f)
	if err != nil {
		return nil, err
	}
	result := analysis.BuildCorrelations(sessions, vars, method, s.hrMax(f.AthleteID), scatterX, scatterY, scatterColor)
	s.writeSnapshot(f, KindCorrelation, result)
	return result, nil
}

// LoadModel builds the daily charge/CTL/ATL/TSB series
func (s *AnalyticsService) LoadModel(f store.SessionFilter) (*analysis.LoadResult, error) {
	sessions, err := s.fetch(f)
	if err != nil {
		return nil, err
	}
	result := analysis.BuildLoadModel(sessions, s.hrMax(f.AthleteID))
	s.writeSnapshot(f, KindLoad, result)
	return result, nil
}

// Sessions returns the filtered sessions with run dynamics resolved
func (s *AnalyticsService) Sessions(f store.SessionFilter) ([]store.Session, error) {
	return s.fetch(f)
}

// RecentSessions returns the newest sessions for display
func (s *AnalyticsService) RecentSessions(athleteID int64, limit int) ([]store.Session, error) {
	sessions, err := s.store.ListSessions(store.SessionFilter{AthleteID: athleteID})
	if err != nil {
		return nil, err
	}
	if len(sessions) > limit {
		sessions = sessions[len(sessions)-limit:]
	}
	// Newest first for lists
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// fetch loads the filtered batch and backfills run dynamics
func (s *AnalyticsService) fetch(f store.SessionFilter) ([]store.Session, error) {
	sessions, err := s.store.ListSessions(f)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	s.backfillDynamics(sessions)
	return sessions, nil
}

// backfillDynamics writes newly derivable biomechanical triples back to
// storage. Idempotent: identical inputs produce identical writes.
func (s *AnalyticsService) backfillDynamics(sessions []store.Session) {
	backfills := dynamics.CollectBackfills(sessions)
	if len(backfills) == 0 {
		return
	}

	updates := make([]store.RunDynamicsUpdate, len(backfills))
	for i, b := range backfills {
		updates[i] = store.RunDynamicsUpdate{
			SessionID:           b.SessionID,
			StrideLength:        b.Values.StrideLength,
			GroundContactTime:   b.Values.GroundContactTime,
			VerticalOscillation: b.Values.VerticalOscillation,
		}
	}

	if err := s.store.ApplyRunDynamics(updates); err != nil {
		s.logger.Printf("run dynamics backfill failed: %v", err)
	}
}

// writeSnapshot caches the computed payload under the query's filter hash
func (s *AnalyticsService) writeSnapshot(f store.SessionFilter, kind string, payload interface{}) {
	hash, err := snapshot.FilterHash(f.Canonical())
	if err != nil {
		s.logger.Printf("hashing %s filter failed: %v", kind, err)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("encoding %s payload failed: %v", kind, err)
		return
	}

	if err := s.store.UpsertSnapshot(f.AthleteID, kind, hash, data); err != nil {
		s.logger.Printf("caching %s payload failed: %v", kind, err)
	}
}

// hrMax returns the athlete's configured max heart rate, falling back
// to the default when no profile is stored.
func (s *AnalyticsService) hrMax(athleteID int64) float64 {
	profile, err := s.store.GetProfile(athleteID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return store.DefaultMaxHeartrate
	}
	if err != nil {
		s.logger.Printf("loading profile for athlete %d: %v", athleteID, err)
		return store.DefaultMaxHeartrate
	}
	return profile.HRMax()
}
