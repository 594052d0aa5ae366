package analysis

import (
	"sort"

	"stridelab/internal/dynamics"
	"stridelab/internal/store"
)

// Histogram bin count bounds
const (
	MinBins = 1
	MaxBins = 100
)

// DistributionBin is one histogram bin
type DistributionBin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// DistributionResult is the payload of one histogram aggregation
type DistributionResult struct {
	Metric     string            `json:"metric"`
	Bins       []DistributionBin `json:"bins"`
	SampleSize int               `json:"sample_size"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
}

// BuildDistribution collects all finite values of the metric and bins
// them into the requested number of equal-width bins. The maximum value
// itself lands in the last bin.
func BuildDistribution(sessions []store.Session, metric string, bins int) *DistributionResult {
	def, ok := distributionMetrics[metric]
	if !ok {
		metric = DefaultMetric
		def = distributionMetrics[metric]
	}
	if bins < MinBins {
		bins = MinBins
	}
	if bins > MaxBins {
		bins = MaxBins
	}

	resolver := dynamics.NewResolver()
	var values []float64
	for i := range sessions {
		if v := def.extract(resolver, &sessions[i]); v != nil {
			values = append(values, *v)
		}
	}

	if len(values) == 0 {
		return &DistributionResult{Metric: metric, Bins: []DistributionBin{}}
	}

	sort.Float64s(values)
	min, max := values[0], values[len(values)-1]

	if min == max {
		// Degenerate: all samples in one bin
		return &DistributionResult{
			Metric:     metric,
			Bins:       []DistributionBin{{From: min, To: max, Count: len(values)}},
			SampleSize: len(values),
			Min:        min,
			Max:        max,
		}
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // absorbs the maximum value
		}
		counts[idx]++
	}

	result := make([]DistributionBin, 0, bins)
	for i, c := range counts {
		if c == 0 {
			continue // empty bins are omitted
		}
		result = append(result, DistributionBin{
			From:  min + float64(i)*width,
			To:    min + float64(i+1)*width,
			Count: c,
		})
	}

	return &DistributionResult{
		Metric:     metric,
		Bins:       result,
		SampleSize: len(values),
		Min:        min,
		Max:        max,
	}
}
