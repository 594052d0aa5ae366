package service

import (
	"math"

	"stridelab/internal/store"
)

// CalorieEstimator estimates a session's energy expenditure from the
// session summary and the athlete's physiological profile. Returns nil
// when no estimate can be made.
type CalorieEstimator func(s *store.Session, p *store.AthleteProfile) *float64

// EstimateCalories is the default estimator. Mechanical work from the
// power meter wins when present; otherwise a heart-rate regression
// needing weight and age; otherwise no estimate.
func EstimateCalories(s *store.Session, p *store.AthleteProfile) *float64 {
	if s.Kilojoules != nil && *s.Kilojoules > 0 {
		// Human mechanical efficiency runs 20-25%, which lands kcal
		// burned close to kJ of work
		kcal := math.Round(*s.Kilojoules)
		return &kcal
	}

	if s.AverageHeartrate == nil || *s.AverageHeartrate <= 0 {
		return nil
	}
	if p == nil || p.WeightKg == nil || p.Age == nil {
		return nil
	}

	// Keytel et al. regression, male coefficients, kcal/min
	hr := *s.AverageHeartrate
	perMin := (-55.0969 + 0.6309*hr + 0.1988**p.WeightKg + 0.2017*float64(*p.Age)) / 4.184
	if perMin <= 0 {
		return nil
	}

	kcal := math.Round(perMin * float64(s.MovingTime) / 60)
	return &kcal
}
