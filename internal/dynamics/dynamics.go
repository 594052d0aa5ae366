// Package dynamics derives running biomechanics (stride length, ground
// contact time, vertical oscillation) from speed and cadence when a
// device did not report them.
package dynamics

import (
	"math"

	"stridelab/internal/store"
)

// Values is the biomechanical triple. A resolved view is always fully
// populated; sessions where nothing can be derived resolve to nil.
type Values struct {
	StrideLength        float64 // meters
	GroundContactTime   float64 // milliseconds
	VerticalOscillation float64 // centimeters
}

// Estimation bounds. Stride and contact-time clamps cover the plausible
// range for recreational through elite runners.
const (
	minStrideLength = 0.5
	maxStrideLength = 2.2

	minContactTime = 120.0
	maxContactTime = 420.0

	minOscillation = 5.0
	maxOscillation = 14.0

	// Reported cadence below this is treated as per-leg and doubled.
	// Unvalidated against device metadata but behavior-defining; keep as is.
	totalCadenceThreshold = 130.0
)

// runLikeSportTypes are the sub-types treated as running for estimation
var runLikeSportTypes = map[string]bool{
	"Run":        true,
	"TrailRun":   true,
	"VirtualRun": true,
	"Treadmill":  true,
}

// Resolve merges persisted and estimated biomechanics for a session.
// Persisted valid values always win field by field; estimation only
// fills gaps. Returns nil when the session is not run-like or lacks
// usable speed/cadence and any field is missing.
func Resolve(s *store.Session) *Values {
	persisted := persistedValues(s)
	if persisted != nil {
		return persisted
	}

	est := estimate(s)
	if est == nil {
		return nil
	}

	// Per-field override: an individually valid persisted value takes
	// precedence over its estimate.
	if validField(s.StrideLength) {
		est.StrideLength = round2(*s.StrideLength)
	}
	if validField(s.GroundContactTime) {
		est.GroundContactTime = round2(*s.GroundContactTime)
	}
	if validField(s.VerticalOscillation) {
		est.VerticalOscillation = round2(*s.VerticalOscillation)
	}

	return est
}

// persistedValues returns the stored triple when all three fields are
// valid, otherwise nil.
func persistedValues(s *store.Session) *Values {
	if !validField(s.StrideLength) || !validField(s.GroundContactTime) || !validField(s.VerticalOscillation) {
		return nil
	}
	return &Values{
		StrideLength:        round2(*s.StrideLength),
		GroundContactTime:   round2(*s.GroundContactTime),
		VerticalOscillation: round2(*s.VerticalOscillation),
	}
}

// estimate derives the full triple from speed and cadence.
func estimate(s *store.Session) *Values {
	if !isRunLike(s) {
		return nil
	}

	speed := s.AverageSpeed
	if !isFinite(speed) || speed <= 0 {
		return nil
	}
	if s.AverageCadence == nil || !isFinite(*s.AverageCadence) || *s.AverageCadence <= 0 {
		return nil
	}

	spm := NormalizeCadence(*s.AverageCadence)

	stride := clamp(speed*60/spm, minStrideLength, maxStrideLength)
	stepTime := 60000 / spm

	duty := clamp(
		0.78-0.06*speed+clamp((175-spm)/220, -0.06, 0.06),
		0.42, 0.78,
	)
	contact := clamp(stepTime*duty, minContactTime, maxContactTime)

	osc := clamp(stride*100*(0.055+(contact-200)/5000), minOscillation, maxOscillation)

	return &Values{
		StrideLength:        round2(stride),
		GroundContactTime:   round2(contact),
		VerticalOscillation: round2(osc),
	}
}

// NormalizeCadence converts reported cadence to total steps per minute.
// Values below 130 are assumed to be per-leg and doubled.
func NormalizeCadence(cadence float64) float64 {
	if cadence < totalCadenceThreshold {
		return cadence * 2
	}
	return cadence
}

// isRunLike reports whether a session counts as running for estimation
func isRunLike(s *store.Session) bool {
	return s.Type == "Run" || runLikeSportTypes[s.SportType]
}

func validField(v *float64) bool {
	return v != nil && isFinite(*v) && *v > 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
