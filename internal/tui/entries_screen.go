package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/domain"
)

// EntriesModel displays a scrollable audit log for one job
type EntriesModel struct {
	app        *app.App
	jobID      string
	entries    []*domain.TimeEntry
	cursor     int
	offset     int
	maxVisible int
	loading    bool
	err        error
}

type entriesDataMsg struct {
	entries []*domain.TimeEntry
	err     error
}

// NewEntriesModel creates a new entries screen model
func NewEntriesModel(a *app.App, jobID string) tea.Model {
	return &EntriesModel{
		app:        a,
		jobID:      jobID,
		maxVisible: 15,
		loading:    true,
	}
}

func (m *EntriesModel) Init() tea.Cmd {
	return m.loadEntries()
}

func (m *EntriesModel) loadEntries() tea.Cmd {
	a, jobID := m.app, m.jobID
	return func() tea.Msg {
		entries, err := a.TimerService.Entries(context.Background(), a.UserID(), jobID, 200)
		return entriesDataMsg{entries: entries, err: err}
	}
}

func (m *EntriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadEntries()

	case entriesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			if m.cursor >= len(m.entries) {
				m.cursor = max(0, len(m.entries)-1)
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxVisible {
					m.offset = m.cursor - m.maxVisible + 1
				}
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.loadEntries()
		}
	}

	return m, nil
}

func (m *EntriesModel) View() string {
	if m.loading {
		return "Loading entries..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	s := titleStyle.Render("Entries") + subtitleStyle.Render("  newest first") + "\n\n"
	if len(m.entries) == 0 {
		return s + subtitleStyle.Render("  Nothing recorded yet.")
	}

	s += subtitleStyle.Render(fmt.Sprintf("  %-16s %-7s %-19s %10s", "Recorded", "Kind", "Interval", "Duration")) + "\n"

	end := min(m.offset+m.maxVisible, len(m.entries))
	for i := m.offset; i < end; i++ {
		s += m.renderEntry(i, m.entries[i]) + "\n"
	}

	if len(m.entries) > m.maxVisible {
		s += subtitleStyle.Render(fmt.Sprintf("  %d-%d of %d", m.offset+1, end, len(m.entries))) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: scroll  r: refresh")
	return s
}

func (m *EntriesModel) renderEntry(index int, e *domain.TimeEntry) string {
	indicator := "  "
	style := lipgloss.NewStyle()
	if index == m.cursor {
		indicator = "> "
		style = style.Bold(true).Foreground(primaryColor)
	}

	interval := ""
	if e.StartTime != nil && e.EndTime != nil {
		interval = fmt.Sprintf("%s-%s", e.StartTime.Local().Format("15:04:05"), e.EndTime.Local().Format("15:04:05"))
	}

	duration := domain.FormatDuration(e.DurationMs)
	if e.Kind == domain.EntryKindReset {
		duration = "-" + duration
	}

	return indicator + style.Render(fmt.Sprintf("%-16s %-7s %-19s %10s",
		e.CreatedAt.Local().Format("2006-01-02 15:04"),
		e.Kind,
		interval,
		duration,
	))
}
