package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a key
var ErrSnapshotNotFound = errors.New("snapshot not found")

// UpsertSnapshot stores an analysis payload under its cache key,
// replacing any existing payload for the same key.
func (db *DB) UpsertSnapshot(athleteID int64, kind, filterHash string, payload []byte) error {
	_, err := db.Exec(`
		INSERT INTO analysis_snapshots (athlete_id, kind, filter_hash, payload, computed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id, kind, filter_hash) DO UPDATE SET
			payload = excluded.payload,
			computed_at = CURRENT_TIMESTAMP
	`, athleteID, kind, filterHash, string(payload))
	return err
}

// GetSnapshot retrieves a cached payload by its key
func (db *DB) GetSnapshot(athleteID int64, kind, filterHash string) (*Snapshot, error) {
	row := db.QueryRow(`
		SELECT athlete_id, kind, filter_hash, payload, computed_at
		FROM analysis_snapshots
		WHERE athlete_id = ? AND kind = ? AND filter_hash = ?
	`, athleteID, kind, filterHash)

	var s Snapshot
	var payload, computedAt string
	err := row.Scan(&s.AthleteID, &s.Kind, &s.FilterHash, &payload, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Payload = []byte(payload)
	// sqlite's CURRENT_TIMESTAMP renders as "2006-01-02 15:04:05"
	s.ComputedAt, err = time.Parse("2006-01-02 15:04:05", computedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing computed_at %q: %w", computedAt, err)
	}
	return &s, nil
}

// CountSnapshots returns the number of cached payloads for an athlete
func (db *DB) CountSnapshots(athleteID int64) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM analysis_snapshots WHERE athlete_id = ?", athleteID).Scan(&count)
	return count, err
}
