package provider

import (
	"time"

	"stridelab/internal/store"
)

// Session is one activity session as the provider API returns it.
// Optional metrics are pointers: a field the device never recorded is
// absent from the JSON and stays nil.
type Session struct {
	ID             int64     `json:"id"`
	Athlete        Athlete   `json:"athlete"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	Timezone       string    `json:"timezone"`

	Distance           float64 `json:"distance"`             // meters
	MovingTime         int     `json:"moving_time"`          // seconds
	ElapsedTime        int     `json:"elapsed_time"`         // seconds
	TotalElevationGain float64 `json:"total_elevation_gain"` // meters
	AverageSpeed       float64 `json:"average_speed"`        // m/s
	MaxSpeed           float64 `json:"max_speed"`            // m/s

	AverageHeartrate *float64 `json:"average_heartrate,omitempty"` // bpm
	MaxHeartrate     *float64 `json:"max_heartrate,omitempty"`     // bpm
	AveragePower     *float64 `json:"average_watts,omitempty"`
	MaxPower         *float64 `json:"max_watts,omitempty"`
	WeightedPower    *float64 `json:"weighted_average_watts,omitempty"`
	AverageCadence   *float64 `json:"average_cadence,omitempty"` // rpm or spm
	Kilojoules       *float64 `json:"kilojoules,omitempty"`
	Calories         *float64 `json:"calories,omitempty"`

	// Biomechanical fields, present only from capable devices
	StrideLength        *float64 `json:"stride_length,omitempty"`        // meters
	GroundContactTime   *float64 `json:"ground_contact_time,omitempty"`  // ms
	VerticalOscillation *float64 `json:"vertical_oscillation,omitempty"` // cm

	TrainingStress *float64 `json:"training_stress,omitempty"`
}

// Athlete is the minimal athlete reference embedded in a session
type Athlete struct {
	ID int64 `json:"id"`
}

// ToStore converts an API session to its storage form
func (s *Session) ToStore() store.Session {
	return store.Session{
		ID:                  s.ID,
		AthleteID:           s.Athlete.ID,
		Name:                s.Name,
		Type:                s.Type,
		SportType:           s.SportType,
		StartDate:           s.StartDate,
		StartDateLocal:      s.StartDateLocal,
		Distance:            s.Distance,
		MovingTime:          s.MovingTime,
		ElapsedTime:         s.ElapsedTime,
		ElevationGain:       s.TotalElevationGain,
		AverageSpeed:        s.AverageSpeed,
		MaxSpeed:            s.MaxSpeed,
		AverageHeartrate:    s.AverageHeartrate,
		MaxHeartrate:        s.MaxHeartrate,
		AveragePower:        s.AveragePower,
		MaxPower:            s.MaxPower,
		WeightedPower:       s.WeightedPower,
		AverageCadence:      s.AverageCadence,
		Kilojoules:          s.Kilojoules,
		Calories:            s.Calories,
		StrideLength:        s.StrideLength,
		GroundContactTime:   s.GroundContactTime,
		VerticalOscillation: s.VerticalOscillation,
		TrainingStress:      s.TrainingStress,
	}
}
