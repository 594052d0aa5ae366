package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sessionColumns = `id, athlete_id, name, type, sport_type, start_date, start_date_local,
		distance, moving_time, elapsed_time, elevation_gain,
		average_speed, max_speed, average_heartrate, max_heartrate,
		average_power, max_power, weighted_power, average_cadence,
		kilojoules, calories, stride_length, ground_contact_time,
		vertical_oscillation, training_stress`

// UpsertSession inserts or updates a session
func (db *DB) UpsertSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (
			id, athlete_id, name, type, sport_type, start_date, start_date_local,
			distance, moving_time, elapsed_time, elevation_gain,
			average_speed, max_speed, average_heartrate, max_heartrate,
			average_power, max_power, weighted_power, average_cadence,
			kilojoules, calories, stride_length, ground_contact_time,
			vertical_oscillation, training_stress, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			sport_type = excluded.sport_type,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			elevation_gain = excluded.elevation_gain,
			average_speed = excluded.average_speed,
			max_speed = excluded.max_speed,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_power = excluded.average_power,
			max_power = excluded.max_power,
			weighted_power = excluded.weighted_power,
			average_cadence = excluded.average_cadence,
			kilojoules = excluded.kilojoules,
			calories = excluded.calories,
			stride_length = excluded.stride_length,
			ground_contact_time = excluded.ground_contact_time,
			vertical_oscillation = excluded.vertical_oscillation,
			training_stress = excluded.training_stress,
			updated_at = CURRENT_TIMESTAMP
	`,
		s.ID, s.AthleteID, s.Name, s.Type, s.SportType,
		s.StartDate.Format(time.RFC3339), s.StartDateLocal.Format(time.RFC3339),
		s.Distance, s.MovingTime, s.ElapsedTime, s.ElevationGain,
		s.AverageSpeed, s.MaxSpeed, s.AverageHeartrate, s.MaxHeartrate,
		s.AveragePower, s.MaxPower, s.WeightedPower, s.AverageCadence,
		s.Kilojoules, s.Calories, s.StrideLength, s.GroundContactTime,
		s.VerticalOscillation, s.TrainingStress,
	)
	return err
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(id int64) (*Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// ListSessions returns the filtered sessions ordered by local start date ascending
func (db *DB) ListSessions(f SessionFilter) ([]Session, error) {
	where := []string{"athlete_id = ?"}
	args := []interface{}{f.AthleteID}

	if !f.From.IsZero() {
		where = append(where, "start_date_local >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		where = append(where, "start_date_local < ?")
		args = append(args, f.To.Format(time.RFC3339))
	}
	if len(f.Types) > 0 {
		placeholders := make([]string, len(f.Types))
		for i, t := range f.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		where = append(where, "type IN ("+strings.Join(placeholders, ",")+")")
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY start_date_local ASC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// CountSessions returns the total number of sessions for an athlete
func (db *DB) CountSessions(athleteID int64) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sessions WHERE athlete_id = ?", athleteID).Scan(&count)
	return count, err
}

// RunDynamicsUpdate is a write intent for one session's biomechanical triple.
type RunDynamicsUpdate struct {
	SessionID           int64
	StrideLength        float64
	GroundContactTime   float64
	VerticalOscillation float64
}

// ApplyRunDynamics writes resolved biomechanical triples back to their
// sessions. The batch runs in one transaction and each triple is written
// as a unit, never partially.
func (db *DB) ApplyRunDynamics(updates []RunDynamicsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE sessions
		SET stride_length = ?, ground_contact_time = ?, vertical_oscillation = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.Exec(u.StrideLength, u.GroundContactTime, u.VerticalOscillation, u.SessionID); err != nil {
			return fmt.Errorf("updating session %d: %w", u.SessionID, err)
		}
	}

	return tx.Commit()
}

// scanSession scans a single session from a row
func scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var sportType sql.NullString
	var elevation, avgSpeed, maxSpeed sql.NullFloat64
	var startDate, startDateLocal string

	err := row.Scan(
		&s.ID, &s.AthleteID, &s.Name, &s.Type, &sportType, &startDate, &startDateLocal,
		&s.Distance, &s.MovingTime, &s.ElapsedTime, &elevation,
		&avgSpeed, &maxSpeed, &s.AverageHeartrate, &s.MaxHeartrate,
		&s.AveragePower, &s.MaxPower, &s.WeightedPower, &s.AverageCadence,
		&s.Kilojoules, &s.Calories, &s.StrideLength, &s.GroundContactTime,
		&s.VerticalOscillation, &s.TrainingStress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := finishSession(&s, sportType, elevation, avgSpeed, maxSpeed, startDate, startDateLocal); err != nil {
		return nil, err
	}
	return &s, nil
}

// scanSessions scans multiple sessions from rows
func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session

	for rows.Next() {
		var s Session
		var sportType sql.NullString
		var elevation, avgSpeed, maxSpeed sql.NullFloat64
		var startDate, startDateLocal string

		err := rows.Scan(
			&s.ID, &s.AthleteID, &s.Name, &s.Type, &sportType, &startDate, &startDateLocal,
			&s.Distance, &s.MovingTime, &s.ElapsedTime, &elevation,
			&avgSpeed, &maxSpeed, &s.AverageHeartrate, &s.MaxHeartrate,
			&s.AveragePower, &s.MaxPower, &s.WeightedPower, &s.AverageCadence,
			&s.Kilojoules, &s.Calories, &s.StrideLength, &s.GroundContactTime,
			&s.VerticalOscillation, &s.TrainingStress,
		)
		if err != nil {
			return nil, err
		}

		if err := finishSession(&s, sportType, elevation, avgSpeed, maxSpeed, startDate, startDateLocal); err != nil {
			return nil, err
		}

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func finishSession(s *Session, sportType sql.NullString, elevation, avgSpeed, maxSpeed sql.NullFloat64, startDate, startDateLocal string) error {
	var err error
	s.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	s.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal)
	if err != nil {
		return fmt.Errorf("parsing start_date_local %q: %w", startDateLocal, err)
	}
	s.SportType = sportType.String
	s.ElevationGain = elevation.Float64
	s.AverageSpeed = avgSpeed.Float64
	s.MaxSpeed = maxSpeed.Float64
	return nil
}
