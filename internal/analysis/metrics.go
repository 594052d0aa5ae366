// Package analysis contains the pure aggregation, correlation and
// training-load computations. All builders are deterministic functions
// over an in-memory batch of sessions.
package analysis

import (
	"math"

	"stridelab/internal/dynamics"
	"stridelab/internal/store"
)

// AggMode determines how per-session values combine into one bucket value
type AggMode int

const (
	AggSum AggMode = iota
	AggAvg
	AggMax
)

// String returns the wire name of the aggregation mode
func (m AggMode) String() string {
	switch m {
	case AggAvg:
		return "avg"
	case AggMax:
		return "max"
	default:
		return "sum"
	}
}

// extractor pulls one metric value from a session, with unit conversion
// baked in. Returns nil for unavailable or non-finite values; nil is
// excluded from aggregation, never treated as zero.
type extractor func(r *dynamics.Resolver, s *store.Session) *float64

type metricDef struct {
	extract extractor
	mode    AggMode
}

// timeseriesMetrics maps time-series metric names to behavior
var timeseriesMetrics = map[string]metricDef{
	"distance":             {extractDistanceKm, AggSum},
	"duration":             {extractMovingHours, AggSum},
	"elevation":            {extractElevation, AggSum},
	"count":                {extractOne, AggSum},
	"calories":             {extractCalories, AggSum},
	"avg_speed":            {extractSpeedKmh, AggAvg},
	"avg_hr":               {extractAvgHR, AggAvg},
	"max_hr":               {extractMaxHR, AggMax},
	"avg_power":            {extractAvgPower, AggAvg},
	"cadence":              {extractCadence, AggAvg},
	"stride_length":        {extractStrideLength, AggAvg},
	"ground_contact_time":  {extractGroundContact, AggAvg},
	"vertical_oscillation": {extractVerticalOsc, AggAvg},
}

// distributionMetrics maps histogram metric names to behavior.
// Durations are in minutes here; hour-scale bins are too coarse.
var distributionMetrics = map[string]metricDef{
	"distance":             {extractDistanceKm, AggSum},
	"duration":             {extractMovingMinutes, AggSum},
	"elevation":            {extractElevation, AggSum},
	"avg_speed":            {extractSpeedKmh, AggAvg},
	"avg_hr":               {extractAvgHR, AggAvg},
	"avg_power":            {extractAvgPower, AggAvg},
	"cadence":              {extractCadence, AggAvg},
	"stride_length":        {extractStrideLength, AggAvg},
	"ground_contact_time":  {extractGroundContact, AggAvg},
	"vertical_oscillation": {extractVerticalOsc, AggAvg},
}

// pivotMetrics maps pivot-table metric names to behavior
var pivotMetrics = map[string]metricDef{
	"distance":  {extractDistanceKm, AggSum},
	"duration":  {extractMovingHours, AggSum},
	"elevation": {extractElevation, AggSum},
	"count":     {extractOne, AggSum},
	"calories":  {extractCalories, AggSum},
	"avg_speed": {extractSpeedKmh, AggAvg},
	"avg_hr":    {extractAvgHR, AggAvg},
	"avg_power": {extractAvgPower, AggAvg},
	"cadence":   {extractCadence, AggAvg},
}

// DefaultPivotMetrics is used when a pivot request yields no valid metrics
var DefaultPivotMetrics = []string{"distance", "duration", "elevation", "avg_hr"}

// DefaultMetric is used when a time-series or distribution request names
// no valid metric
const DefaultMetric = "distance"

func extractDistanceKm(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finite(s.Distance / 1000)
}

func extractMovingHours(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finite(float64(s.MovingTime) / 3600)
}

func extractMovingMinutes(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finite(float64(s.MovingTime) / 60)
}

func extractElevation(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finite(s.ElevationGain)
}

func extractOne(_ *dynamics.Resolver, _ *store.Session) *float64 {
	one := 1.0
	return &one
}

func extractSpeedKmh(_ *dynamics.Resolver, s *store.Session) *float64 {
	if s.AverageSpeed <= 0 {
		return nil
	}
	return finite(s.AverageSpeed * 3.6)
}

func extractAvgHR(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finitePtr(s.AverageHeartrate)
}

func extractMaxHR(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finitePtr(s.MaxHeartrate)
}

func extractAvgPower(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finitePtr(s.AveragePower)
}

func extractCadence(_ *dynamics.Resolver, s *store.Session) *float64 {
	if s.AverageCadence == nil {
		return nil
	}
	return finite(dynamics.NormalizeCadence(*s.AverageCadence))
}

func extractCalories(_ *dynamics.Resolver, s *store.Session) *float64 {
	return finitePtr(s.Calories)
}

func extractStrideLength(r *dynamics.Resolver, s *store.Session) *float64 {
	if v := r.Resolve(s); v != nil {
		return finite(v.StrideLength)
	}
	return nil
}

func extractGroundContact(r *dynamics.Resolver, s *store.Session) *float64 {
	if v := r.Resolve(s); v != nil {
		return finite(v.GroundContactTime)
	}
	return nil
}

func extractVerticalOsc(r *dynamics.Resolver, s *store.Session) *float64 {
	if v := r.Resolve(s); v != nil {
		return finite(v.VerticalOscillation)
	}
	return nil
}

// finite returns a pointer to v, or nil when v is NaN or infinite
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finitePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return finite(*p)
}
