package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Session summaries from the provider
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			sport_type TEXT,
			start_date TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			elevation_gain REAL,
			average_speed REAL,
			max_speed REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			average_power REAL,
			max_power REAL,
			weighted_power REAL,
			average_cadence REAL,
			kilojoules REAL,
			calories REAL,
			stride_length REAL,
			ground_contact_time REAL,
			vertical_oscillation REAL,
			training_stress REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_athlete ON sessions(athlete_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_start_local ON sessions(start_date_local)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_type ON sessions(type)`,

		// Physiological profile (one row per athlete)
		`CREATE TABLE IF NOT EXISTS athlete_profiles (
			athlete_id INTEGER PRIMARY KEY,
			max_heartrate REAL,
			weight_kg REAL,
			age INTEGER,
			height_cm REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Cached analysis payloads, one live row per key
		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			athlete_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			filter_hash TEXT NOT NULL,
			payload TEXT NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, kind, filter_hash)
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
