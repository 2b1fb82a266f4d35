package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/notify"
)

type timerMode int

const (
	timerModeView timerMode = iota
	timerModeAdd
	timerModeConfirmReset
)

// timerTickMsg redraws the clock once per second
type timerTickMsg struct {
	jobID string
	gen   uint64
}

// timerPollMsg triggers a periodic resync
type timerPollMsg struct {
	jobID string
	gen   uint64
}

// timerSyncedMsg carries the result of a resync or a transition
type timerSyncedMsg struct {
	jobID      string
	projection domain.Projection
	receivedAt time.Time
	err        error
}

// timerSubscribedMsg carries the change feed for the job, if there is one
type timerSubscribedMsg struct {
	jobID       string
	gen         uint64
	events      <-chan notify.Event
	unsubscribe func() error
}

// timerChangedMsg arrives when another client changed the job
type timerChangedMsg struct {
	jobID string
	gen   uint64
	ok    bool
}

func (timerTickMsg) target() Screen       { return ScreenTimer }
func (timerPollMsg) target() Screen       { return ScreenTimer }
func (timerSyncedMsg) target() Screen     { return ScreenTimer }
func (timerSubscribedMsg) target() Screen { return ScreenTimer }
func (timerChangedMsg) target() Screen    { return ScreenTimer }

// TimerModel shows one job's running total. The clock is projected locally
// every second from the last synced state; the state itself is refreshed in
// the background every poll interval and whenever a change event arrives.
type TimerModel struct {
	app   *app.App
	jobID string
	gen   uint64

	job *domain.Job
	// server clock minus local clock at the last sync
	skew    time.Duration
	syncing bool
	lastErr error

	pollInterval time.Duration
	events       <-chan notify.Event
	unsubscribe  func() error

	mode      timerMode
	addInput  textinput.Model
	statusMsg string

	now func() time.Time
}

// NewTimerModel creates a new TimerModel for jobID
func NewTimerModel(a *app.App, jobID string) *TimerModel {
	m := &TimerModel{
		app:          a,
		jobID:        jobID,
		gen:          nextGen(),
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	if a != nil && a.Config.Server.PollInterval > 0 {
		m.pollInterval = a.Config.Server.PollInterval
	}
	return m
}

// IsCapturingInput returns true while the add-time form or reset prompt is open
func (m *TimerModel) IsCapturingInput() bool {
	return m.mode != timerModeView
}

func (m *TimerModel) Init() tea.Cmd {
	m.syncing = true
	return tea.Batch(m.sync(), m.tick(), m.poll(), m.subscribe())
}

// Close releases the change subscription
func (m *TimerModel) Close() {
	if m == nil || m.unsubscribe == nil {
		return
	}
	_ = m.unsubscribe()
	m.unsubscribe = nil
	m.events = nil
}

func (m *TimerModel) tick() tea.Cmd {
	jobID, gen := m.jobID, m.gen
	return every(time.Second, func() tea.Msg { return timerTickMsg{jobID: jobID, gen: gen} })
}

func (m *TimerModel) poll() tea.Cmd {
	jobID, gen := m.jobID, m.gen
	return every(m.pollInterval, func() tea.Msg { return timerPollMsg{jobID: jobID, gen: gen} })
}

func (m *TimerModel) sync() tea.Cmd {
	a, jobID, now := m.app, m.jobID, m.now
	return func() tea.Msg {
		p, err := a.TimerService.Snapshot(context.Background(), a.UserID(), jobID)
		return timerSyncedMsg{jobID: jobID, projection: p, receivedAt: now(), err: err}
	}
}

func (m *TimerModel) subscribe() tea.Cmd {
	a, jobID, gen := m.app, m.jobID, m.gen
	return func() tea.Msg {
		events, unsubscribe, err := a.Notifier.Subscribe(context.Background(), jobID)
		if err != nil {
			// Polling still keeps the screen current
			return timerSubscribedMsg{jobID: jobID, gen: gen}
		}
		return timerSubscribedMsg{jobID: jobID, gen: gen, events: events, unsubscribe: unsubscribe}
	}
}

func (m *TimerModel) waitForChange() tea.Cmd {
	jobID, gen, events := m.jobID, m.gen, m.events
	return func() tea.Msg {
		_, ok := <-events
		return timerChangedMsg{jobID: jobID, gen: gen, ok: ok}
	}
}

func (m *TimerModel) apply(tr domain.Transition) tea.Cmd {
	a, jobID, now := m.app, m.jobID, m.now
	return func() tea.Msg {
		job, err := a.TimerService.Apply(context.Background(), transitionRequest(a, jobID, tr))
		if err != nil {
			return ErrorMsg{Err: err}
		}
		t := now()
		return timerSyncedMsg{jobID: jobID, projection: domain.NewProjection(job, t), receivedAt: t}
	}
}

// Displayed returns the projected total at the current instant
func (m *TimerModel) Displayed() int64 {
	if m.job == nil {
		return 0
	}
	return m.job.Timer.Project(m.now().Add(m.skew))
}

func (m *TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.stale(msg) {
		// Left over from an earlier timer screen
		if sub, ok := msg.(timerSubscribedMsg); ok && sub.unsubscribe != nil {
			_ = sub.unsubscribe()
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		return m, m.sync()

	case timerTickMsg:
		return m, m.tick()

	case timerPollMsg:
		if m.syncing {
			return m, m.poll()
		}
		m.syncing = true
		return m, tea.Batch(m.sync(), m.poll())

	case timerSyncedMsg:
		m.syncing = false
		if msg.err != nil {
			// Keep projecting the last good state
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		m.job = msg.projection.Job
		if !msg.projection.ServerTime.IsZero() {
			m.skew = msg.projection.ServerTime.Sub(msg.receivedAt)
		}
		return m, nil

	case timerSubscribedMsg:
		if msg.events == nil {
			return m, nil
		}
		m.events = msg.events
		m.unsubscribe = msg.unsubscribe
		return m, m.waitForChange()

	case timerChangedMsg:
		if !msg.ok || m.events == nil {
			return m, nil
		}
		cmds := []tea.Cmd{m.waitForChange()}
		if !m.syncing {
			m.syncing = true
			cmds = append(cmds, m.sync())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch m.mode {
		case timerModeAdd:
			return m.updateAdd(msg)
		case timerModeConfirmReset:
			m.mode = timerModeView
			if msg.String() == "y" {
				m.statusMsg = "Total reset"
				return m, m.apply(domain.ResetTotal())
			}
			return m, nil
		}

		m.statusMsg = ""
		switch {
		case key.Matches(msg, DefaultKeyMap.Start):
			return m, m.apply(domain.Start())
		case key.Matches(msg, DefaultKeyMap.Pause), key.Matches(msg, DefaultKeyMap.Stop):
			return m, m.apply(domain.PauseOrStop())
		case key.Matches(msg, DefaultKeyMap.Done):
			return m, m.apply(domain.SetStatus(domain.JobStatusDone))
		case key.Matches(msg, DefaultKeyMap.Reset):
			m.mode = timerModeConfirmReset
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Add):
			m.mode = timerModeAdd
			m.addInput = textinput.New()
			m.addInput.Placeholder = "MM:SS or H:MM:SS"
			m.addInput.CharLimit = 12
			m.addInput.Width = 16
			return m, m.addInput.Focus()
		case key.Matches(msg, DefaultKeyMap.Refresh):
			if !m.syncing {
				m.syncing = true
				return m, m.sync()
			}
		}
	}

	return m, nil
}

func (m *TimerModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = timerModeView
		return m, nil
	case "enter":
		ms, err := domain.ParseDuration(m.addInput.Value())
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		m.mode = timerModeView
		m.lastErr = nil
		m.statusMsg = fmt.Sprintf("Added %s", domain.FormatDuration(ms))
		return m, m.apply(domain.ManualAdjust(ms))
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m *TimerModel) View() string {
	title := titleStyle.Render("Timer")
	if m.job == nil {
		if m.lastErr != nil {
			return title + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.lastErr))
		}
		return title + "\n\nLoading..."
	}

	var state string
	switch {
	case m.job.Timer.IsRunning():
		state = timerRunningStyle.Render("RUNNING")
	case m.job.Timer.Status == domain.JobStatusDone:
		state = timerDoneStyle.Render("DONE")
	default:
		state = timerPausedStyle.Render("STOPPED")
	}

	s := titleStyle.Render(m.job.Name) + "  " + state + "\n\n"
	s += clockStyle.Render(domain.FormatDuration(m.Displayed())) + "\n\n"
	s += subtitleStyle.Render(fmt.Sprintf("  Status: %s", m.job.Timer.Status)) + "\n"
	if since := m.job.Timer.RunningSince; since != nil {
		s += subtitleStyle.Render(fmt.Sprintf("  Running since %s", since.Local().Format("15:04:05"))) + "\n"
	}

	switch m.mode {
	case timerModeAdd:
		s += "\n  Add time: " + m.addInput.View() + "\n"
		s += helpStyle.Render("  enter: add  esc: cancel") + "\n"
	case timerModeConfirmReset:
		s += "\n" + errorStyle.Render("  Reset the total to 0:00:00? [y/N]") + "\n"
	}

	if m.statusMsg != "" {
		s += "\n" + statusStyle.Render("  "+m.statusMsg) + "\n"
	}
	if m.lastErr != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Sync failed, showing last known state: %v", m.lastErr)) + "\n"
	}

	s += "\n" + helpStyle.Render("  s: start  p/x: pause  d: done  a: add time  R: reset  r: refresh")
	return s
}

func (msg timerTickMsg) forJob() string       { return msg.jobID }
func (msg timerPollMsg) forJob() string       { return msg.jobID }
func (msg timerSyncedMsg) forJob() string     { return msg.jobID }
func (msg timerSubscribedMsg) forJob() string { return msg.jobID }
func (msg timerChangedMsg) forJob() string    { return msg.jobID }

func (msg timerTickMsg) generation() uint64       { return msg.gen }
func (msg timerPollMsg) generation() uint64       { return msg.gen }
func (msg timerSubscribedMsg) generation() uint64 { return msg.gen }
func (msg timerChangedMsg) generation() uint64    { return msg.gen }

// stale reports messages meant for another job or for an earlier model
func (m *TimerModel) stale(msg tea.Msg) bool {
	if cm, ok := msg.(chainMsg); ok && cm.generation() != m.gen {
		return true
	}
	if jm, ok := msg.(interface{ forJob() string }); ok && jm.forJob() != m.jobID {
		return true
	}
	return false
}
