package analysis

import (
	"sort"
	"time"

	"stridelab/internal/dynamics"
	"stridelab/internal/store"
)

// Bucket is the time-series bucketing granularity
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week" // Monday-anchored ISO week
	BucketMonth Bucket = "month"
)

// TimeseriesPoint is one bucket of the series
type TimeseriesPoint struct {
	Bucket  string  `json:"bucket"`
	Value   float64 `json:"value"`
	Samples int     `json:"samples"`
}

// TimeseriesResult is the payload of one time-series aggregation
type TimeseriesResult struct {
	Metric      string            `json:"metric"`
	Aggregation string            `json:"aggregation"`
	Series      []TimeseriesPoint `json:"series"`
}

// BuildTimeseries buckets sessions by subject-local start date and
// aggregates the selected metric per the metric's mode. Buckets with no
// contributing samples are omitted, not zero-filled.
func BuildTimeseries(sessions []store.Session, metric string, bucket Bucket) *TimeseriesResult {
	def, ok := timeseriesMetrics[metric]
	if !ok {
		metric = DefaultMetric
		def = timeseriesMetrics[metric]
	}
	switch bucket {
	case BucketDay, BucketWeek, BucketMonth:
	default:
		bucket = BucketDay
	}

	type acc struct {
		sum   float64
		count int
		max   float64
	}
	buckets := make(map[string]*acc)

	resolver := dynamics.NewResolver()
	for i := range sessions {
		v := def.extract(resolver, &sessions[i])
		if v == nil {
			continue
		}

		key := bucketKey(sessions[i].StartDateLocal, bucket)
		a := buckets[key]
		if a == nil {
			a = &acc{max: *v}
			buckets[key] = a
		} else if *v > a.max {
			a.max = *v
		}
		a.sum += *v
		a.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]TimeseriesPoint, 0, len(keys))
	for _, k := range keys {
		a := buckets[k]
		var value float64
		switch def.mode {
		case AggAvg:
			value = a.sum / float64(a.count)
		case AggMax:
			value = a.max
		default:
			value = a.sum
		}
		series = append(series, TimeseriesPoint{Bucket: k, Value: value, Samples: a.count})
	}

	return &TimeseriesResult{
		Metric:      metric,
		Aggregation: def.mode.String(),
		Series:      series,
	}
}

// bucketKey formats a local timestamp into its bucket key
func bucketKey(t time.Time, b Bucket) string {
	switch b {
	case BucketWeek:
		return mondayOf(t).Format("2006-01-02")
	case BucketMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// mondayOf returns midnight of the Monday starting t's ISO week
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
