package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/domain"
)

type jobsMode int

const (
	jobsModeList jobsMode = iota
	jobsModeNew
	jobsModeConfirmDelete
)

// new job form fields
const (
	jobFieldName = iota
	jobFieldNotes
	jobFieldCount
)

// JobsModel lists the user's jobs with their live totals
type JobsModel struct {
	app     *app.App
	jobs    []*domain.Job
	cursor  int
	filter  *domain.JobStatus
	loading bool
	err     error

	statusMsg string
	firstLoad bool

	mode       jobsMode
	fields     []textinput.Model
	fieldFocus int

	pollInterval time.Duration
}

type jobsDataMsg struct {
	jobs []*domain.Job
	err  error
}

type jobsTickMsg struct{}

type jobsPollMsg struct{}

type jobSavedMsg struct {
	job *domain.Job
	err error
}

type jobDeletedMsg struct {
	name string
	err  error
}

func (jobsTickMsg) target() Screen { return ScreenJobs }
func (jobsPollMsg) target() Screen { return ScreenJobs }

// NewJobsModel creates the jobs screen
func NewJobsModel(a *app.App) tea.Model {
	m := &JobsModel{
		app:          a,
		loading:      true,
		firstLoad:    true,
		pollInterval: defaultPollInterval,
	}
	if a != nil && a.Config.Server.PollInterval > 0 {
		m.pollInterval = a.Config.Server.PollInterval
	}
	return m
}

// IsCapturingInput returns true when the form or delete prompt is active
func (m *JobsModel) IsCapturingInput() bool {
	return m.mode != jobsModeList
}

func (m *JobsModel) Init() tea.Cmd {
	return tea.Batch(m.loadJobs(), m.tick(), m.poll())
}

func (m *JobsModel) tick() tea.Cmd {
	return every(time.Second, func() tea.Msg { return jobsTickMsg{} })
}

func (m *JobsModel) poll() tea.Cmd {
	return every(m.pollInterval, func() tea.Msg { return jobsPollMsg{} })
}

func (m *JobsModel) loadJobs() tea.Cmd {
	a, filter := m.app, m.filter
	return func() tea.Msg {
		jobs, err := a.JobService.List(context.Background(), a.UserID(), filter)
		return jobsDataMsg{jobs: jobs, err: err}
	}
}

func (m *JobsModel) selected() *domain.Job {
	if m.cursor < 0 || m.cursor >= len(m.jobs) {
		return nil
	}
	return m.jobs[m.cursor]
}

func (m *JobsModel) initForm() {
	m.fields = make([]textinput.Model, jobFieldCount)

	m.fields[jobFieldName] = textinput.New()
	m.fields[jobFieldName].Placeholder = "Job name"
	m.fields[jobFieldName].CharLimit = 100
	m.fields[jobFieldName].Width = 40

	m.fields[jobFieldNotes] = textinput.New()
	m.fields[jobFieldNotes].Placeholder = "Optional notes"
	m.fields[jobFieldNotes].CharLimit = 200
	m.fields[jobFieldNotes].Width = 50

	m.fieldFocus = jobFieldName
	m.fields[jobFieldName].Focus()
}

func (m *JobsModel) saveJob() tea.Cmd {
	a := m.app
	name := strings.TrimSpace(m.fields[jobFieldName].Value())
	notes := strings.TrimSpace(m.fields[jobFieldNotes].Value())
	return func() tea.Msg {
		job, err := a.JobService.Create(context.Background(), a.UserID(), name, notes, domain.JobStatusPaused)
		return jobSavedMsg{job: job, err: err}
	}
}

// toggle starts a stopped job or pauses a running one
func (m *JobsModel) toggle(job *domain.Job) tea.Cmd {
	a := m.app
	tr := domain.Start()
	if job.Timer.IsRunning() {
		tr = domain.PauseOrStop()
	}
	return func() tea.Msg {
		if _, err := a.TimerService.Apply(context.Background(), transitionRequest(a, job.ID, tr)); err != nil {
			return ErrorMsg{Err: err}
		}
		jobs, err := a.JobService.List(context.Background(), a.UserID(), nil)
		return jobsDataMsg{jobs: jobs, err: err}
	}
}

func (m *JobsModel) deleteJob(job *domain.Job) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.JobService.Delete(ctx, a.UserID(), job.ID); err != nil {
			return jobDeletedMsg{err: err}
		}
		_, err := a.Drafts.Discard(job.ID)
		return jobDeletedMsg{name: job.Name, err: err}
	}
}

func (m *JobsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobsTickMsg:
		return m, m.tick()

	case jobsPollMsg:
		if m.mode == jobsModeList && !m.loading {
			return m, tea.Batch(m.loadJobs(), m.poll())
		}
		return m, m.poll()

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadJobs()

	case jobsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.jobs = msg.jobs
		if m.cursor >= len(m.jobs) {
			m.cursor = max(0, len(m.jobs)-1)
		}
		// Nothing to track yet: go straight to the new job form
		if m.firstLoad && len(m.jobs) == 0 && m.filter == nil {
			m.mode = jobsModeNew
			m.initForm()
		}
		m.firstLoad = false
		return m, nil

	case jobSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = jobsModeList
		m.statusMsg = fmt.Sprintf("Created: %s", msg.job.Name)
		m.loading = true
		return m, m.loadJobs()

	case jobDeletedMsg:
		m.mode = jobsModeList
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		}
		m.loading = true
		return m, m.loadJobs()

	case tea.KeyMsg:
		switch m.mode {
		case jobsModeNew:
			return m.updateForm(msg)
		case jobsModeConfirmDelete:
			m.mode = jobsModeList
			if job := m.selected(); job != nil && msg.String() == "y" {
				return m, m.deleteJob(job)
			}
			return m, nil
		}

		if m.loading {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.jobs)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = jobsModeNew
			m.initForm()
			return m, m.fields[jobFieldName].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			if job := m.selected(); job != nil {
				return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenTimer, JobID: job.ID} }
			}
		case msg.String() == " ":
			if job := m.selected(); job != nil {
				return m, m.toggle(job)
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.selected() != nil {
				m.mode = jobsModeConfirmDelete
			}
		case msg.String() == "f":
			m.cycleFilter()
			m.cursor = 0
			m.loading = true
			return m, m.loadJobs()
		}
	}

	return m, nil
}

// cycleFilter steps through all, active, paused, done
func (m *JobsModel) cycleFilter() {
	order := []domain.JobStatus{domain.JobStatusActive, domain.JobStatusPaused, domain.JobStatusDone}
	if m.filter == nil {
		m.filter = &order[0]
		return
	}
	for i, s := range order {
		if s == *m.filter {
			if i+1 < len(order) {
				m.filter = &order[i+1]
			} else {
				m.filter = nil
			}
			return
		}
	}
	m.filter = nil
}

func (m *JobsModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = jobsModeList
		m.err = nil
		return m, nil
	case "tab", "down":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus + 1) % jobFieldCount
		return m, m.fields[m.fieldFocus].Focus()
	case "shift+tab", "up":
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus = (m.fieldFocus - 1 + jobFieldCount) % jobFieldCount
		return m, m.fields[m.fieldFocus].Focus()
	case "enter":
		if m.fieldFocus == jobFieldCount-1 {
			return m, m.saveJob()
		}
		m.fields[m.fieldFocus].Blur()
		m.fieldFocus++
		return m, m.fields[m.fieldFocus].Focus()
	case "ctrl+s":
		return m, m.saveJob()
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *JobsModel) View() string {
	if m.mode == jobsModeNew {
		return m.viewForm()
	}
	if m.loading && m.jobs == nil {
		return "Loading jobs..."
	}

	header := "Jobs"
	if m.filter != nil {
		header += subtitleStyle.Render(fmt.Sprintf("  (%s only)", *m.filter))
	}
	s := titleStyle.Render(header) + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.jobs) == 0 {
		s += subtitleStyle.Render("  No jobs yet. Press 'n' to add one.") + "\n"
		return s
	}

	now := time.Now()
	for i, job := range m.jobs {
		s += m.renderJob(i, job, now) + "\n"
	}

	if m.mode == jobsModeConfirmDelete {
		if job := m.selected(); job != nil {
			s += "\n" + errorStyle.Render(fmt.Sprintf("  Delete '%s' and its entries? [y/N]", job.Name)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: open  space: start/pause  n: new  X: delete  f: filter")
	return s
}

func (m *JobsModel) renderJob(index int, job *domain.Job, now time.Time) string {
	indicator := "  "
	nameStyle := lipgloss.NewStyle()
	if index == m.cursor {
		indicator = "> "
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	state := subtitleStyle.Render(string(job.Timer.Status))
	if job.Timer.IsRunning() {
		state = timerRunningStyle.Render("running")
	}

	return fmt.Sprintf("%s%-32s %10s  %s",
		indicator,
		nameStyle.Render(truncateStr(job.Name, 32)),
		domain.FormatDuration(job.Timer.Project(now)),
		state,
	)
}

func (m *JobsModel) viewForm() string {
	var s string
	if len(m.jobs) == 0 {
		s += titleStyle.Render("Welcome to jobclock!") + "\n"
		s += subtitleStyle.Render("  Create your first job to start tracking time.") + "\n\n"
	} else {
		s += titleStyle.Render("New Job") + "\n\n"
	}

	labels := []string{"Name:", "Notes:"}
	for i, label := range labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}
