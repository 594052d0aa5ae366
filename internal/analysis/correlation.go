package analysis

import (
	"math"
	"sort"

	"stridelab/internal/dynamics"
	"stridelab/internal/store"
)

// Correlation methods
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
)

// MaxCorrelationVars caps the requested variable list
const MaxCorrelationVars = 20

// correlationVars is the closed set of variables a matrix may include.
// Charge is computed from the batch and the supplied hrMax.
var correlationVars = map[string]extractor{
	"distance":             extractDistanceKm,
	"duration":             extractMovingMinutes,
	"avg_speed":            extractSpeedKmh,
	"avg_hr":               extractAvgHR,
	"max_hr":               extractMaxHR,
	"avg_power":            extractAvgPower,
	"elevation":            extractElevation,
	"cadence":              extractCadence,
	"calories":             extractCalories,
	"stride_length":        extractStrideLength,
	"ground_contact_time":  extractGroundContact,
	"vertical_oscillation": extractVerticalOsc,
	"charge":               nil, // batch-derived, see varSeries
}

// defaultCorrelationVars is used when fewer than 2 requested variables
// are valid
var defaultCorrelationVars = []string{
	"distance", "duration", "avg_speed", "avg_hr", "elevation", "cadence", "charge",
}

// ScatterPoint is one session's (x, y) pair
type ScatterPoint struct {
	SessionID int64    `json:"session_id"`
	Date      string   `json:"date"` // YYYY-MM-DD, subject-local
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Color     *float64 `json:"color,omitempty"`
}

// ScatterResult is the scatter extraction for one variable pair.
// R is the correlation over exactly these points; a null color never
// excludes a point.
type ScatterResult struct {
	X      string         `json:"x"`
	Y      string         `json:"y"`
	Color  string         `json:"color,omitempty"`
	R      *float64       `json:"r"`
	Points []ScatterPoint `json:"points"`
}

// CorrelationResult is the payload of one correlation analysis
type CorrelationResult struct {
	Method  string         `json:"method"`
	Vars    []string       `json:"vars"`
	Matrix  [][]*float64   `json:"matrix"`
	Scatter *ScatterResult `json:"scatter,omitempty"`
}

// BuildCorrelations computes the full pairwise correlation matrix over
// the requested variables, plus an optional scatter extraction for one
// (x, y[, color]) triple. Each cell uses only sessions where both
// variables are non-null; degenerate cells are null.
func BuildCorrelations(sessions []store.Session, vars []string, method string, hrMax float64, scatterX, scatterY, scatterColor string) *CorrelationResult {
	if method != MethodSpearman {
		method = MethodPearson
	}

	var valid []string
	for _, v := range vars {
		if len(valid) >= MaxCorrelationVars {
			break
		}
		if _, ok := correlationVars[v]; ok {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		valid = append([]string(nil), defaultCorrelationVars...)
	}

	resolver := dynamics.NewResolver()
	charges := SessionCharges(sessions, hrMax)

	series := make([][]*float64, len(valid))
	for i, name := range valid {
		series[i] = varSeries(sessions, name, resolver, charges)
	}

	matrix := make([][]*float64, len(valid))
	for i := range valid {
		matrix[i] = make([]*float64, len(valid))
		for j := range valid {
			matrix[i][j] = correlate(series[i], series[j], method)
		}
	}

	result := &CorrelationResult{Method: method, Vars: valid, Matrix: matrix}

	if _, ok := correlationVars[scatterX]; ok {
		if _, ok := correlationVars[scatterY]; ok {
			result.Scatter = buildScatter(sessions, scatterX, scatterY, scatterColor, method, resolver, charges)
		}
	}

	return result
}

// varSeries returns one value per session for the named variable
func varSeries(sessions []store.Session, name string, resolver *dynamics.Resolver, charges []float64) []*float64 {
	values := make([]*float64, len(sessions))
	for i := range sessions {
		if name == "charge" {
			values[i] = finite(charges[i])
			continue
		}
		values[i] = correlationVars[name](resolver, &sessions[i])
	}
	return values
}

// buildScatter extracts one point per session where both x and y are
// defined and computes the headline correlation for that point set.
func buildScatter(sessions []store.Session, xName, yName, colorName, method string, resolver *dynamics.Resolver, charges []float64) *ScatterResult {
	xs := varSeries(sessions, xName, resolver, charges)
	ys := varSeries(sessions, yName, resolver, charges)

	var colors []*float64
	if _, ok := correlationVars[colorName]; ok {
		colors = varSeries(sessions, colorName, resolver, charges)
	}

	scatter := &ScatterResult{X: xName, Y: yName, Points: []ScatterPoint{}}
	if colors != nil {
		scatter.Color = colorName
	}

	var px, py []*float64
	for i := range sessions {
		if xs[i] == nil || ys[i] == nil {
			continue
		}
		point := ScatterPoint{
			SessionID: sessions[i].ID,
			Date:      sessions[i].StartDateLocal.Format("2006-01-02"),
			X:         *xs[i],
			Y:         *ys[i],
		}
		if colors != nil {
			point.Color = colors[i]
		}
		scatter.Points = append(scatter.Points, point)
		px = append(px, xs[i])
		py = append(py, ys[i])
	}

	scatter.R = correlate(px, py, method)
	return scatter
}

// correlate computes the correlation over the pairwise-complete subset
// of two equal-length series. Returns nil with fewer than 2 pairs or
// zero variance in either series.
func correlate(xs, ys []*float64, method string) *float64 {
	var px, py []float64
	for i := range xs {
		if xs[i] == nil || ys[i] == nil {
			continue
		}
		px = append(px, *xs[i])
		py = append(py, *ys[i])
	}

	if method == MethodSpearman {
		px = ranks(px)
		py = ranks(py)
	}

	return pearson(px, py)
}

// pearson is the standard sample correlation coefficient
func pearson(xs, ys []float64) *float64 {
	n := len(xs)
	if n < 2 {
		return nil
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return nil
	}

	r := cov / math.Sqrt(varX*varY)
	return &r
}

// ranks converts values to 1-based ranks, assigning tied values the
// average of the positions they span: k values tied at sorted positions
// i..j each receive rank (i+j+2)/2.
func ranks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	result := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		rank := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			result[order[k]] = rank
		}
		i = j + 1
	}
	return result
}
