package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/domain"
	"github.com/andy/jobclock/internal/service"
)

const defaultPollInterval = 6 * time.Second

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// every schedules msg after d
func every(d time.Duration, msg func() tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg()
	})
}

func transitionRequest(a *app.App, jobID string, tr domain.Transition) service.TransitionRequest {
	return service.TransitionRequest{JobID: jobID, OwnerID: a.UserID(), Transition: tr}
}
