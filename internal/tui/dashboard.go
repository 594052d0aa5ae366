package tui

import (
	"fmt"

	"stridelab/internal/analysis"
	"stridelab/internal/service"
	"stridelab/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	svc       *service.AnalyticsService
	athleteID int64
	units     Units

	load    *analysis.LoadResult
	recent  []store.Session
	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(svc *service.AnalyticsService, athleteID int64, units Units) DashboardModel {
	return DashboardModel{
		svc:       svc,
		athleteID: athleteID,
		units:     units,
		loading:   true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	load   *analysis.LoadResult
	recent []store.Session
	err    error
}

func (m DashboardModel) loadData() tea.Msg {
	load, err := m.svc.LoadModel(store.SessionFilter{AthleteID: m.athleteID})
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	recent, err := m.svc.RecentSessions(m.athleteID, service.RecentSessionsLimit)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	return dashboardDataMsg{load: load, recent: recent}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.load = msg.load
		m.recent = msg.recent
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.load == nil || len(m.load.Series) == 0 {
		return "\n  No data available. Press 's' to sync."
	}

	var sections []string

	sections = append(sections, m.renderLoadCard())

	if len(m.load.Series) > 2 {
		sections = append(sections, m.renderLoadChart())
	}

	sections = append(sections, m.renderRecentSessions())

	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '3' for analytics")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")

	latest := m.load.Series[len(m.load.Series)-1]

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", latest.CTL)),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", latest.ATL)),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.1f", latest.TSB)),
		"",
		statusStyle.Render(formDescription(latest.TSB)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(38).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderLoadChart() string {
	title := cardTitleStyle.Render("Fitness (CTL) - Trend")

	series := m.load.Series
	if len(series) > 90 {
		series = series[len(series)-90:]
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.CTL
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentSessions() string {
	title := cardTitleStyle.Render("Recent Sessions")

	if len(m.recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No sessions yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-20s  %-10s  %9s  %7s  %6s",
		"Date", "Name", "Type", "Distance", "Time", "AvgHR"))

	rows := []string{header}

	for i, s := range m.recent {
		if i >= 5 {
			break
		}

		hr := "-"
		if s.AverageHeartrate != nil {
			hr = fmt.Sprintf("%.0f", *s.AverageHeartrate)
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-20s  %-10s  %9s  %7s  %6s",
			s.StartDateLocal.Format("Jan 02"),
			truncateName(s.Name, 20),
			s.Type,
			m.units.FormatDistance(s.Distance),
			formatDuration(s.MovingTime),
			hr,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

// formDescription interprets the training stress balance
func formDescription(tsb float64) string {
	switch {
	case tsb > 15:
		return "Very fresh. Detraining risk if this holds."
	case tsb > 5:
		return "Fresh. Good window for hard sessions or racing."
	case tsb > -10:
		return "Neutral. Normal training range."
	case tsb > -25:
		return "Fatigued. Productive overload if recovery follows."
	default:
		return "Heavily fatigued. Consider backing off."
	}
}
