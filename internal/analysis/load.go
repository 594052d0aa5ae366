package analysis

import (
	"math"
	"time"

	"stridelab/internal/store"
)

// EMA time constants for the training-load model
const (
	ChronicDays = 42
	AcuteDays   = 7

	// Assumed subject mean speed (m/s) when no session has usable speed
	fallbackMeanSpeed = 2.5

	minRelativeSpeed = 0.5
	maxRelativeSpeed = 1.8
)

// LoadPoint is one day of the training-load series
type LoadPoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD, subject-local
	Charge float64 `json:"charge"`
	CTL    float64 `json:"ctl"` // chronic load, 42-day EMA
	ATL    float64 `json:"atl"` // acute load, 7-day EMA
	TSB    float64 `json:"tsb"` // balance, CTL - ATL
}

// LoadResult is the payload of the training-load model
type LoadResult struct {
	HRMax  float64     `json:"hr_max"`
	Series []LoadPoint `json:"series"`
}

// SessionCharge computes one session's training-stress proxy.
// An explicit device/provider stress value wins; otherwise heart rate
// intensity; otherwise speed relative to the subject's mean.
func SessionCharge(s *store.Session, hrMax, subjectMeanSpeed float64) float64 {
	if s.TrainingStress != nil {
		return *s.TrainingStress
	}

	minutes := float64(s.MovingTime) / 60

	if s.AverageHeartrate != nil && *s.AverageHeartrate > 0 && hrMax > 0 {
		return minutes * (*s.AverageHeartrate / hrMax)
	}

	relative := s.AverageSpeed / subjectMeanSpeed
	if relative < minRelativeSpeed {
		relative = minRelativeSpeed
	}
	if relative > maxRelativeSpeed {
		relative = maxRelativeSpeed
	}
	return minutes * relative
}

// SessionCharges computes the charge for every session in the batch,
// sharing one subject mean speed across the fallback path.
func SessionCharges(sessions []store.Session, hrMax float64) []float64 {
	mean := subjectMeanSpeed(sessions)
	charges := make([]float64, len(sessions))
	for i := range sessions {
		charges[i] = SessionCharge(&sessions[i], hrMax, mean)
	}
	return charges
}

// subjectMeanSpeed is the mean average-speed over sessions with a
// finite positive speed, or the fallback when there are none.
func subjectMeanSpeed(sessions []store.Session) float64 {
	var sum float64
	var n int
	for i := range sessions {
		v := sessions[i].AverageSpeed
		if v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return fallbackMeanSpeed
	}
	return sum / float64(n)
}

// BuildLoadModel aggregates charges per subject-local day and runs the
// chronic and acute EMAs over the full daily range, missing days
// counting as zero charge. Both EMAs are seeded with the first day's
// raw charge.
func BuildLoadModel(sessions []store.Session, hrMax float64) *LoadResult {
	result := &LoadResult{HRMax: hrMax, Series: []LoadPoint{}}
	if len(sessions) == 0 {
		return result
	}

	charges := SessionCharges(sessions, hrMax)

	daily := make(map[string]float64)
	var first, last time.Time
	for i := range sessions {
		day := sessions[i].StartDateLocal
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		daily[day.Format("2006-01-02")] += charges[i]

		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	ctlAlpha := 2.0 / (ChronicDays + 1.0)
	atlAlpha := 2.0 / (AcuteDays + 1.0)

	var ctl, atl float64
	seeded := false

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		charge := daily[key] // 0 on rest days

		if !seeded {
			// No prior value: EMA starts at the first observation
			ctl = charge
			atl = charge
			seeded = true
		} else {
			ctl += ctlAlpha * (charge - ctl)
			atl += atlAlpha * (charge - atl)
		}

		result.Series = append(result.Series, LoadPoint{
			Date:   key,
			Charge: charge,
			CTL:    ctl,
			ATL:    atl,
			TSB:    ctl - atl,
		})
	}

	return result
}
