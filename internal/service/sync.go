package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stridelab/internal/dynamics"
	"stridelab/internal/provider"
	"stridelab/internal/store"
)

// SyncService pulls sessions from the provider into local storage
type SyncService struct {
	client   *provider.Client
	store    *store.DB
	calories CalorieEstimator
	logger   *log.Logger
}

// NewSyncService creates a sync service. A nil estimator disables
// calorie fill-in; a nil logger defaults to the standard logger.
func NewSyncService(client *provider.Client, db *store.DB, calories CalorieEstimator, logger *log.Logger) *SyncService {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncService{client: client, store: db, calories: calories, logger: logger}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "sessions", "dynamics"
	Total     int
	Completed int
	Error     error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	SessionsFetched   int
	SessionsStored    int
	DynamicsBackfills int
	Errors            []error
}

// SyncAll fetches new sessions since the last sync, stores them, then
// backfills run dynamics across the athlete's full history.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	athleteID, err := s.syncSessions(ctx, progress, result)
	if err != nil {
		return result, fmt.Errorf("syncing sessions: %w", err)
	}

	if athleteID != 0 {
		if err := s.backfillDynamics(ctx, athleteID, progress, result); err != nil {
			return result, fmt.Errorf("backfilling dynamics: %w", err)
		}
	}

	return result, nil
}

// syncSessions pages through the provider feed and upserts each session.
// Returns the athlete ID seen in the feed, or 0 when nothing was fetched.
func (s *SyncService) syncSessions(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) (int64, error) {
	lastSyncStr, _ := s.store.GetSyncState(lastSyncKey)
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "sessions"}
	}

	var athleteID int64
	page := 1

	for {
		select {
		case <-ctx.Done():
			return athleteID, ctx.Err()
		default:
		}

		sessions, err := s.client.GetSessions(ctx, after, page, SyncPageSize)
		if err != nil {
			return athleteID, fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(sessions) == 0 {
			break
		}

		result.SessionsFetched += len(sessions)

		for _, ps := range sessions {
			session := ps.ToStore()
			athleteID = session.AthleteID

			s.fillCalories(&session)

			if err := s.store.UpsertSession(&session); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing session %d: %w", session.ID, err))
				continue
			}
			result.SessionsStored++
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "sessions",
				Total:     result.SessionsFetched,
				Completed: result.SessionsStored,
			}
		}

		if len(sessions) < SyncPageSize {
			break // last page
		}

		page++
	}

	s.store.SetSyncState(lastSyncKey, time.Now().Format(time.RFC3339))

	return athleteID, nil
}

// backfillDynamics derives and persists the biomechanical triple for
// every stored session that qualifies. Safe to repeat: derived values
// are stable for unchanged inputs.
func (s *SyncService) backfillDynamics(ctx context.Context, athleteID int64, progress chan<- SyncProgress, result *SyncResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sessions, err := s.store.ListSessions(store.SessionFilter{AthleteID: athleteID})
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	backfills := dynamics.CollectBackfills(sessions)

	if progress != nil {
		progress <- SyncProgress{Phase: "dynamics", Total: len(backfills)}
	}

	if len(backfills) == 0 {
		return nil
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
		return err
	}

	result.DynamicsBackfills = len(updates)

	if progress != nil {
		progress <- SyncProgress{Phase: "dynamics", Total: len(backfills), Completed: len(backfills)}
	}

	return nil
}

// fillCalories estimates calories for sessions the provider left blank
func (s *SyncService) fillCalories(session *store.Session) {
	if s.calories == nil || session.Calories != nil {
		return
	}

	profile, err := s.store.GetProfile(session.AthleteID)
	if errors.Is(err, store.ErrProfileNotFound) {
		profile = &store.AthleteProfile{AthleteID: session.AthleteID}
	} else if err != nil {
		s.logger.Printf("loading profile for athlete %d: %v", session.AthleteID, err)
		return
	}

	session.Calories = s.calories(session, profile)
}

// RateLimitStatus returns the provider client's remaining budget
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}
