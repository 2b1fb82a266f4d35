package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/jobclock/internal/app"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenJobs Screen = iota
	ScreenTimer
	ScreenDraft
	ScreenEntries
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenJobs:
		return "Jobs"
	case ScreenTimer:
		return "Timer"
	case ScreenDraft:
		return "Draft"
	case ScreenEntries:
		return "Entries"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Job shown by the timer, draft and entries screens
	jobID string

	jobs    tea.Model
	timer   *TimerModel
	draft   *DraftModel
	entries tea.Model

	err error
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenJobs,
		jobs:          NewJobsModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.jobs.Init()
}

// initScreen builds the screen for the selected job on first visit or when
// the job changed, and asks an existing screen to reload otherwise
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }

	switch screen {
	case ScreenJobs:
		return refresh
	case ScreenTimer:
		if m.timer == nil || m.timer.jobID != m.jobID {
			m.timer.Close()
			m.timer = NewTimerModel(m.app, m.jobID)
			return m.timer.Init()
		}
		return refresh
	case ScreenDraft:
		if m.draft == nil || m.draft.jobID != m.jobID {
			m.draft = NewDraftModel(m.app, m.jobID)
			return m.draft.Init()
		}
		return refresh
	case ScreenEntries:
		m.entries = NewEntriesModel(m.app, m.jobID)
		return m.entries.Init()
	}
	return nil
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	if screen != ScreenJobs && m.jobID == "" {
		m.err = fmt.Errorf("select a job first")
		return nil
	}
	m.err = nil
	m.currentScreen = screen
	return m.initScreen(screen)
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) screen(s Screen) tea.Model {
	switch s {
	case ScreenJobs:
		return m.jobs
	case ScreenTimer:
		if m.timer != nil {
			return m.timer
		}
	case ScreenDraft:
		if m.draft != nil {
			return m.draft
		}
	case ScreenEntries:
		return m.entries
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screen(m.currentScreen).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// route delivers msg to screen s
func (m *Model) route(s Screen, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s {
	case ScreenJobs:
		m.jobs, cmd = m.jobs.Update(msg)
	case ScreenTimer:
		if m.timer != nil {
			_, cmd = m.timer.Update(msg)
		}
	case ScreenDraft:
		if m.draft != nil {
			_, cmd = m.draft.Update(msg)
		}
	case ScreenEntries:
		if m.entries != nil {
			m.entries, cmd = m.entries.Update(msg)
		}
	}
	return cmd
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Jobs):
				return m, m.switchTo(ScreenJobs)
			case key.Matches(msg, DefaultKeyMap.Timer):
				return m, m.switchTo(ScreenTimer)
			case key.Matches(msg, DefaultKeyMap.Draft):
				return m, m.switchTo(ScreenDraft)
			case key.Matches(msg, DefaultKeyMap.Entries):
				return m, m.switchTo(ScreenEntries)
			}
		}

	case SwitchScreenMsg:
		if msg.JobID != "" {
			m.jobID = msg.JobID
		}
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case screenMsg:
		// Background work keeps running for screens that are not shown
		return m, m.route(msg.target(), msg)
	}

	return m, m.route(m.currentScreen, msg)
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("jobclock - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[1] Jobs  [2] Timer  [3] Draft  [4] Entries  [q] Quit")

	content := "Loading..."
	if s := m.screen(m.currentScreen); s != nil {
		content = s.View()
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = errorStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat("─", dividerWidth))

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.timer.Close()
	}
	return err
}
