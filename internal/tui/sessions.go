package tui

import (
	"fmt"

	"stridelab/internal/service"
	"stridelab/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionsModel is the session list screen model
type SessionsModel struct {
	svc       *service.AnalyticsService
	athleteID int64
	units     Units

	sessions []store.Session // newest first
	cursor   int
	offset   int
	pageSize int
	loading  bool
	err      error
}

// NewSessionsModel creates a new sessions model
func NewSessionsModel(svc *service.AnalyticsService, athleteID int64, units Units) SessionsModel {
	return SessionsModel{
		svc:       svc,
		athleteID: athleteID,
		units:     units,
		pageSize:  15,
		loading:   true,
	}
}

// Init initializes the sessions screen
func (m SessionsModel) Init() tea.Cmd {
	return m.loadSessions
}

type sessionsLoadedMsg struct {
	sessions []store.Session
	err      error
}

func (m SessionsModel) loadSessions() tea.Msg {
	sessions, err := m.svc.Sessions(store.SessionFilter{AthleteID: m.athleteID})
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	// Newest first
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}

	return sessionsLoadedMsg{sessions: sessions}
}

// Update handles messages
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions
		m.cursor = 0
		m.offset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
			}
		case "down", "j":
			if m.cursor < m.visibleCount()-1 {
				m.cursor++
			} else if m.offset+m.visibleCount() < len(m.sessions) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
			}
		case "pgdown":
			if m.offset+m.pageSize < len(m.sessions) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "r":
			m.loading = true
			return m, m.loadSessions
		}
	}
	return m, nil
}

func (m SessionsModel) visibleCount() int {
	remaining := len(m.sessions) - m.offset
	if remaining > m.pageSize {
		return m.pageSize
	}
	return remaining
}

// View renders the session list
func (m SessionsModel) View() string {
	if m.loading {
		return "\n  Loading sessions..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.sessions) == 0 {
		return "\n  No sessions found. Press 's' to sync."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + m.visibleCount()
	title := cardTitleStyle.Render(fmt.Sprintf("Sessions (%d-%d of %d)", startNum, endNum, len(m.sessions)))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-22s  %-10s  %9s  %8s  %6s  %6s",
		"Date", "Name", "Type", "Distance", "Pace", "AvgHR", "GCT"))
	sections = append(sections, header)

	end := m.offset + m.pageSize
	if end > len(m.sessions) {
		end = len(m.sessions)
	}

	for i := m.offset; i < end; i++ {
		s := m.sessions[i]

		hr := "-"
		if s.AverageHeartrate != nil {
			hr = fmt.Sprintf("%.0f", *s.AverageHeartrate)
		}

		gct := "-"
		if s.GroundContactTime != nil {
			gct = fmt.Sprintf("%.0f", *s.GroundContactTime)
		}

		cursor := "  "
		if i-m.offset == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-22s  %-10s  %9s  %8s  %6s  %6s",
			cursor,
			s.StartDateLocal.Format("Jan 02"),
			truncateName(s.Name, 22),
			s.Type,
			m.units.FormatDistance(s.Distance),
			m.units.FormatPace(s.MovingTime, s.Distance),
			hr,
			gct,
		)

		if i-m.offset == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
