package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/domain"
)

type draftTickMsg struct {
	jobID string
	gen   uint64
}

type draftLoadedMsg struct {
	jobID string
	draft *domain.DraftSession
	saved int64
	err   error
}

func (draftTickMsg) target() Screen   { return ScreenDraft }
func (draftLoadedMsg) target() Screen { return ScreenDraft }

func (msg draftTickMsg) generation() uint64 { return msg.gen }

// DraftModel drives the local draft stopwatch of one job. The snapshot is
// re-read on every tick so other terminals' changes show up within a second.
type DraftModel struct {
	app   *app.App
	jobID string
	gen   uint64

	draft     *domain.DraftSession
	err       error
	statusMsg string
	busy      bool

	now func() time.Time
}

// NewDraftModel creates the draft screen for jobID
func NewDraftModel(a *app.App, jobID string) *DraftModel {
	return &DraftModel{app: a, jobID: jobID, gen: nextGen(), now: time.Now}
}

func (m *DraftModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m *DraftModel) tick() tea.Cmd {
	jobID, gen := m.jobID, m.gen
	return every(time.Second, func() tea.Msg { return draftTickMsg{jobID: jobID, gen: gen} })
}

func (m *DraftModel) load() tea.Cmd {
	return m.do(m.app.Drafts.Status)
}

// do runs a draft operation off the UI loop
func (m *DraftModel) do(op func(jobID string) (*domain.DraftSession, error)) tea.Cmd {
	jobID := m.jobID
	return func() tea.Msg {
		d, err := op(jobID)
		return draftLoadedMsg{jobID: jobID, draft: d, err: err}
	}
}

func (m *DraftModel) save() tea.Cmd {
	a, jobID := m.app, m.jobID
	return func() tea.Msg {
		d, seconds, err := a.Drafts.Save(context.Background(), jobID)
		return draftLoadedMsg{jobID: jobID, draft: d, saved: seconds, err: err}
	}
}

func (m *DraftModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftTickMsg:
		if msg.jobID != m.jobID || msg.gen != m.gen {
			return m, nil
		}
		if m.busy {
			return m, m.tick()
		}
		return m, tea.Batch(m.load(), m.tick())

	case RefreshDataMsg:
		return m, m.load()

	case draftLoadedMsg:
		if msg.jobID != m.jobID {
			return m, nil
		}
		m.busy = false
		if msg.draft != nil {
			m.draft = msg.draft
		}
		m.err = msg.err
		switch {
		case errors.Is(msg.err, domain.ErrAlreadySaved):
			m.err = errors.New("already saved; start again to track a new session")
		case errors.Is(msg.err, domain.ErrDraftSaveUnresolved):
			m.err = errors.New("last save did not finish; press save to settle it")
		case msg.err == nil && msg.saved > 0:
			m.statusMsg = fmt.Sprintf("Saved %s to the job", domain.FormatDuration(msg.saved*1000))
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Start):
			m.busy = true
			return m, m.do(m.app.Drafts.Start)
		case key.Matches(msg, DefaultKeyMap.Pause):
			m.busy = true
			return m, m.do(m.app.Drafts.Pause)
		case key.Matches(msg, DefaultKeyMap.Save):
			m.busy = true
			return m, m.save()
		case key.Matches(msg, DefaultKeyMap.Discard):
			m.busy = true
			m.statusMsg = "Draft discarded"
			return m, m.do(m.app.Drafts.Discard)
		}
	}

	return m, nil
}

func (m *DraftModel) View() string {
	s := titleStyle.Render("Draft stopwatch") + "\n"
	s += subtitleStyle.Render("  Time is kept on this machine until you save it to the job.") + "\n\n"

	if m.draft == nil {
		if m.err != nil {
			return s + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err))
		}
		return s + "  Loading..."
	}

	var state string
	switch m.draft.State() {
	case domain.DraftStateRunning:
		state = timerRunningStyle.Render("RUNNING")
	case domain.DraftStatePaused:
		state = timerPausedStyle.Render("PAUSED")
	case domain.DraftStateSaved:
		state = timerDoneStyle.Render("SAVED")
	default:
		state = subtitleStyle.Render("IDLE")
	}

	seconds := m.draft.Projected(m.now())
	s += clockStyle.Render(domain.FormatDuration(seconds*1000)) + "  " + state + "\n"

	if m.statusMsg != "" {
		s += "\n" + statusStyle.Render("  "+m.statusMsg) + "\n"
	}
	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  s: start/resume  p: pause  w: save to job  c: discard")
	return s
}
