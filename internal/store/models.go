package store

import "time"

// Auth represents OAuth tokens for provider API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Session represents one completed activity as stored
type Session struct {
	ID                  int64     `db:"id"`
	AthleteID           int64     `db:"athlete_id"`
	Name                string    `db:"name"`
	Type                string    `db:"type"`       // primary classification, e.g. "Run"
	SportType           string    `db:"sport_type"` // sub-type, e.g. "TrailRun"
	StartDate           time.Time `db:"start_date"`
	StartDateLocal      time.Time `db:"start_date_local"`
	Distance            float64   `db:"distance"`       // meters
	MovingTime          int       `db:"moving_time"`    // seconds
	ElapsedTime         int       `db:"elapsed_time"`   // seconds
	ElevationGain       float64   `db:"elevation_gain"` // meters
	AverageSpeed        float64   `db:"average_speed"`  // m/s
	MaxSpeed            float64   `db:"max_speed"`      // m/s
	AverageHeartrate    *float64  `db:"average_heartrate"`
	MaxHeartrate        *float64  `db:"max_heartrate"`
	AveragePower        *float64  `db:"average_power"` // watts
	MaxPower            *float64  `db:"max_power"`
	WeightedPower       *float64  `db:"weighted_power"`
	AverageCadence      *float64  `db:"average_cadence"` // per-leg or total spm, see dynamics
	Kilojoules          *float64  `db:"kilojoules"`
	Calories            *float64  `db:"calories"`
	StrideLength        *float64  `db:"stride_length"`        // meters
	GroundContactTime   *float64  `db:"ground_contact_time"`  // milliseconds
	VerticalOscillation *float64  `db:"vertical_oscillation"` // centimeters
	TrainingStress      *float64  `db:"training_stress"`      // device/provider stress proxy
}

// AthleteProfile holds the physiological profile used by the load model
// and the calorie estimator. All fields are nullable in storage.
type AthleteProfile struct {
	AthleteID    int64    `db:"athlete_id"`
	MaxHeartrate *float64 `db:"max_heartrate"`
	WeightKg     *float64 `db:"weight_kg"`
	Age          *int     `db:"age"`
	HeightCm     *float64 `db:"height_cm"`
}

// DefaultMaxHeartrate is assumed when a profile has no max heart rate.
const DefaultMaxHeartrate = 190

// HRMax returns the profile's max heart rate, or the default when unset.
func (p AthleteProfile) HRMax() float64 {
	if p.MaxHeartrate != nil && *p.MaxHeartrate > 0 {
		return *p.MaxHeartrate
	}
	return DefaultMaxHeartrate
}

// Snapshot is one cached analysis payload keyed by
// (athlete, analysis kind, filter hash). The payload is opaque JSON.
type Snapshot struct {
	AthleteID  int64     `db:"athlete_id"`
	Kind       string    `db:"kind"`
	FilterHash string    `db:"filter_hash"`
	Payload    []byte    `db:"payload"`
	ComputedAt time.Time `db:"computed_at"`
}

// SessionFilter selects a subject-scoped slice of sessions.
// The zero value of From/To means unbounded on that side.
type SessionFilter struct {
	AthleteID int64
	From      time.Time
	To        time.Time
	Types     []string
	Limit     int
}

// Canonical returns the filter as a generic map suitable for
// snapshot.FilterHash. Zero-valued optional fields map to nil so they
// are dropped during canonicalization.
func (f SessionFilter) Canonical() map[string]interface{} {
	m := map[string]interface{}{
		"athlete_id": f.AthleteID,
	}
	if !f.From.IsZero() {
		m["from"] = f.From
	}
	if !f.To.IsZero() {
		m["to"] = f.To
	}
	if len(f.Types) > 0 {
		types := make([]interface{}, len(f.Types))
		for i, t := range f.Types {
			types[i] = t
		}
		m["types"] = types
	}
	if f.Limit > 0 {
		m["limit"] = f.Limit
	}
	return m
}
