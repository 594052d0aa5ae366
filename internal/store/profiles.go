package store

import (
	"database/sql"
	"errors"
)

// GetProfile retrieves an athlete's physiological profile
func (db *DB) GetProfile(athleteID int64) (*AthleteProfile, error) {
	row := db.QueryRow(`
		SELECT athlete_id, max_heartrate, weight_kg, age, height_cm
		FROM athlete_profiles WHERE athlete_id = ?
	`, athleteID)

	var p AthleteProfile
	err := row.Scan(&p.AthleteID, &p.MaxHeartrate, &p.WeightKg, &p.Age, &p.HeightCm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile stores or updates an athlete's physiological profile
func (db *DB) SaveProfile(p *AthleteProfile) error {
	_, err := db.Exec(`
		INSERT INTO athlete_profiles (athlete_id, max_heartrate, weight_kg, age, height_cm, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(athlete_id) DO UPDATE SET
			max_heartrate = excluded.max_heartrate,
			weight_kg = excluded.weight_kg,
			age = excluded.age,
			height_cm = excluded.height_cm,
			updated_at = CURRENT_TIMESTAMP
	`, p.AthleteID, p.MaxHeartrate, p.WeightKg, p.Age, p.HeightCm)
	return err
}
