package tui

import (
	"fmt"
	"strings"

	"stridelab/internal/analysis"
	"stridelab/internal/service"
	"stridelab/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// analyticsView selects which engine output the screen shows
type analyticsView int

const (
	viewTimeseries analyticsView = iota
	viewDistribution
	viewPivot
	viewCorrelation
)

const distributionBins = 10

// AnalyticsModel is the analytics screen model
type AnalyticsModel struct {
	svc       *service.AnalyticsService
	athleteID int64
	units     Units

	view   analyticsView
	bucket analysis.Bucket

	timeseries   *analysis.TimeseriesResult
	distribution *analysis.DistributionResult
	pivot        *analysis.PivotResult
	correlation  *analysis.CorrelationResult

	loading bool
	err     error
}

// NewAnalyticsModel creates a new analytics model
func NewAnalyticsModel(svc *service.AnalyticsService, athleteID int64, units Units) AnalyticsModel {
	return AnalyticsModel{
		svc:       svc,
		athleteID: athleteID,
		units:     units,
		view:      viewTimeseries,
		bucket:    analysis.BucketWeek,
		loading:   true,
	}
}

// Init initializes the analytics screen
func (m AnalyticsModel) Init() tea.Cmd {
	return m.loadData
}

type analyticsDataMsg struct {
	timeseries   *analysis.TimeseriesResult
	distribution *analysis.DistributionResult
	pivot        *analysis.PivotResult
	correlation  *analysis.CorrelationResult
	err          error
}

func (m AnalyticsModel) loadData() tea.Msg {
	filter := store.SessionFilter{AthleteID: m.athleteID}

	ts, err := m.svc.Timeseries(filter, analysis.DefaultMetric, m.bucket)
	if err != nil {
		return analyticsDataMsg{err: err}
	}

	dist, err := m.svc.Distribution(filter, "duration", distributionBins)
	if err != nil {
		return analyticsDataMsg{err: err}
	}

	pivot, err := m.svc.Pivot(filter, analysis.RowType, nil)
	if err != nil {
		return analyticsDataMsg{err: err}
	}

	corr, err := m.svc.Correlations(filter, nil, analysis.MethodPearson, "", "", "")
	if err != nil {
		return analyticsDataMsg{err: err}
	}

	return analyticsDataMsg{timeseries: ts, distribution: dist, pivot: pivot, correlation: corr}
}

// Update handles messages
func (m AnalyticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		m.loading = false
		m.err = msg.err
		m.timeseries = msg.timeseries
		m.distribution = msg.distribution
		m.pivot = msg.pivot
		m.correlation = msg.correlation

	case tea.KeyMsg:
		switch msg.String() {
		case "t":
			m.view = viewTimeseries
		case "d":
			m.view = viewDistribution
		case "p":
			m.view = viewPivot
		case "c":
			m.view = viewCorrelation
		case "w":
			if m.bucket != analysis.BucketWeek {
				m.bucket = analysis.BucketWeek
				m.loading = true
				return m, m.loadData
			}
		case "m":
			if m.bucket != analysis.BucketMonth {
				m.bucket = analysis.BucketMonth
				m.loading = true
				return m, m.loadData
			}
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the analytics screen
func (m AnalyticsModel) View() string {
	if m.loading {
		return "\n  Loading analytics..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var content string
	switch m.view {
	case viewTimeseries:
		content = m.renderTimeseries()
	case viewDistribution:
		content = m.renderDistribution()
	case viewPivot:
		content = m.renderPivot()
	case viewCorrelation:
		content = m.renderCorrelation()
	}

	help := statusStyle.Render("\n  t: trend  d: histogram  p: by type  c: correlations  w/m: weekly/monthly  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

func (m AnalyticsModel) renderTimeseries() string {
	bucketLabel := "Weekly"
	if m.bucket == analysis.BucketMonth {
		bucketLabel = "Monthly"
	}
	title := cardTitleStyle.Render(fmt.Sprintf("%s Distance (%s)", bucketLabel, m.units.DistanceLabel()))

	if m.timeseries == nil || len(m.timeseries.Series) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "Not enough data to chart"))
	}

	series := m.timeseries.Series
	if len(series) > 52 {
		series = series[len(series)-52:]
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(64),
		asciigraph.Precision(1),
	)

	span := statusStyle.Render(fmt.Sprintf("%s .. %s", series[0].Bucket, series[len(series)-1].Bucket))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, span))
}

func (m AnalyticsModel) renderDistribution() string {
	title := cardTitleStyle.Render("Session Duration (minutes)")

	if m.distribution == nil || len(m.distribution.Bins) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No data"))
	}

	maxCount := 0
	for _, b := range m.distribution.Bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var lines []string
	for _, b := range m.distribution.Bins {
		barLen := b.Count * 40 / maxCount
		bar := strings.Repeat("█", barLen)
		lines = append(lines, fmt.Sprintf("%6.0f-%-6.0f %s %d", b.From, b.To, successStyle.Render(bar), b.Count))
	}

	lines = append(lines, "")
	lines = append(lines, statusStyle.Render(fmt.Sprintf("%d sessions", m.distribution.SampleSize)))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

func (m AnalyticsModel) renderPivot() string {
	title := cardTitleStyle.Render("Totals by Type")

	if m.pivot == nil || len(m.pivot.Rows) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No data"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-12s  %8s  %9s  %9s  %7s  %8s",
		"Type", "Count", "Distance", "Duration", "Elev", "AvgHR"))

	rows := []string{header}
	for _, r := range m.pivot.Rows {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-12s  %8d  %9.1f  %9.1f  %7.0f  %8.1f",
			r.Key,
			r.Samples,
			r.Cells["distance"],
			r.Cells["duration"],
			r.Cells["elevation"],
			r.Cells["avg_hr"],
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func (m AnalyticsModel) renderCorrelation() string {
	title := cardTitleStyle.Render("Correlation Matrix (Pearson)")

	if m.correlation == nil || len(m.correlation.Vars) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No data"))
	}

	c := m.correlation

	headerCells := make([]string, len(c.Vars)+1)
	headerCells[0] = fmt.Sprintf("%-20s", "")
	for i, v := range c.Vars {
		headerCells[i+1] = fmt.Sprintf("%7s", shortVar(v))
	}
	rows := []string{tableHeaderStyle.Render(strings.Join(headerCells, " "))}

	for i, v := range c.Vars {
		cells := make([]string, len(c.Vars)+1)
		cells[0] = fmt.Sprintf("%-20s", v)
		for j := range c.Vars {
			if c.Matrix[i][j] == nil {
				cells[j+1] = fmt.Sprintf("%7s", "-")
			} else {
				cells[j+1] = fmt.Sprintf("%7.2f", *c.Matrix[i][j])
			}
		}
		rows = append(rows, tableRowStyle.Render(strings.Join(cells, " ")))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

// shortVar abbreviates variable names for matrix column headers
func shortVar(name string) string {
	switch name {
	case "distance":
		return "dist"
	case "duration":
		return "dur"
	case "avg_speed":
		return "speed"
	case "avg_hr":
		return "hr"
	case "elevation":
		return "elev"
	case "cadence":
		return "cad"
	case "charge":
		return "charge"
	default:
		if len(name) > 7 {
			return name[:7]
		}
		return name
	}
}
