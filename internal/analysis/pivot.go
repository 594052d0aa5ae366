package analysis

import (
	"sort"

	"stridelab/internal/dynamics"
	"stridelab/internal/store"
)

// RowKind determines how sessions group into pivot rows
type RowKind string

const (
	RowType  RowKind = "type"  // sport type
	RowWeek  RowKind = "week"  // ISO week start date
	RowMonth RowKind = "month" // calendar month
)

// PivotRow is one row of the pivot table. Cells are zero-filled:
// every requested metric has a value in every row.
type PivotRow struct {
	Key     string             `json:"key"`
	Cells   map[string]float64 `json:"cells"`
	Samples int                `json:"samples"`
}

// PivotResult is the payload of one pivot aggregation
type PivotResult struct {
	Row     string     `json:"row"`
	Metrics []string   `json:"metrics"`
	Rows    []PivotRow `json:"rows"`
}

// BuildPivot groups sessions by the row kind and accumulates each
// requested metric per row. Unknown metric names are dropped; an empty
// effective set falls back to the default list. Rows are sorted
// lexicographically by key.
func BuildPivot(sessions []store.Session, rowKind RowKind, metrics []string) *PivotResult {
	switch rowKind {
	case RowType, RowWeek, RowMonth:
	default:
		rowKind = RowType
	}

	// De-duplicate while preserving request order, dropping unknown names
	seen := make(map[string]bool)
	var effective []string
	for _, m := range metrics {
		if seen[m] {
			continue
		}
		if _, ok := pivotMetrics[m]; !ok {
			continue
		}
		seen[m] = true
		effective = append(effective, m)
	}
	if len(effective) == 0 {
		effective = append(effective, DefaultPivotMetrics...)
	}

	type acc struct {
		sum   map[string]float64
		count map[string]int
		rows  int
	}
	groups := make(map[string]*acc)

	resolver := dynamics.NewResolver()
	for i := range sessions {
		s := &sessions[i]
		key := pivotKey(s, rowKind)

		g := groups[key]
		if g == nil {
			g = &acc{sum: make(map[string]float64), count: make(map[string]int)}
			groups[key] = g
		}
		g.rows++

		for _, m := range effective {
			v := pivotMetrics[m].extract(resolver, s)
			if v == nil {
				continue
			}
			g.sum[m] += *v
			g.count[m]++
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]PivotRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		cells := make(map[string]float64, len(effective))
		for _, m := range effective {
			// Missing contributions render as 0; every row x metric
			// combination exists in the table.
			var value float64
			if g.count[m] > 0 {
				if pivotMetrics[m].mode == AggAvg {
					value = g.sum[m] / float64(g.count[m])
				} else {
					value = g.sum[m]
				}
			}
			cells[m] = value
		}
		rows = append(rows, PivotRow{Key: k, Cells: cells, Samples: g.rows})
	}

	return &PivotResult{
		Row:     string(rowKind),
		Metrics: effective,
		Rows:    rows,
	}
}

func pivotKey(s *store.Session, kind RowKind) string {
	switch kind {
	case RowWeek:
		return mondayOf(s.StartDateLocal).Format("2006-01-02")
	case RowMonth:
		return s.StartDateLocal.Format("2006-01")
	default:
		return s.Type
	}
}
