package domain

import (
	"errors"
	"math"
	"time"
)

// JobStatus is the lifecycle stage of a job
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusDone   JobStatus = "done"
)

// Valid reports whether s is one of the known statuses
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusPaused, JobStatusDone:
		return true
	}
	return false
}

// ParseJobStatus converts user input into a JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// TimerState is the accrual state owned by a single job.
//
// RunningSince is authoritative for whether time is accruing: a job can be
// active without a running instant, in which case it is not ticking.
type TimerState struct {
	AccumulatedMs int64      `json:"accumulatedMs"`
	RunningSince  *time.Time `json:"runningSince"`
	Status        JobStatus  `json:"status"`
}

// NewTimerState returns a stopped timer with nothing accrued
func NewTimerState(status JobStatus) TimerState {
	if status == "" {
		status = JobStatusActive
	}
	return TimerState{Status: status}
}

// IsRunning returns true if live time is accruing
func (s TimerState) IsRunning() bool {
	return s.RunningSince != nil
}

// Project returns the milliseconds to display at now. It never mutates the state.
func (s TimerState) Project(now time.Time) int64 {
	total, err := AddMs(s.AccumulatedMs, liveMs(s.RunningSince, now))
	if err != nil {
		return math.MaxInt64
	}
	return total
}

// Validate returns an error if the state breaks the accrual invariants
func (s TimerState) Validate() error {
	if s.AccumulatedMs < 0 {
		return errors.New("accumulated time cannot be negative")
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	if s.Status != JobStatusActive && s.RunningSince != nil {
		return errors.New("only an active timer can be running")
	}
	return nil
}

// Equal compares two states, treating running instants by time value
func (s TimerState) Equal(o TimerState) bool {
	if s.AccumulatedMs != o.AccumulatedMs || s.Status != o.Status {
		return false
	}
	if s.RunningSince == nil || o.RunningSince == nil {
		return s.RunningSince == nil && o.RunningSince == nil
	}
	return s.RunningSince.Equal(*o.RunningSince)
}

// liveMs is the clamped running interval; clock skew yields 0, never a negative delta
func liveMs(since *time.Time, now time.Time) int64 {
	if since == nil {
		return 0
	}
	d := now.Sub(*since).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

// Projection is a point-in-time view of a job's elapsed time
type Projection struct {
	Job        *Job      `json:"job"`
	DisplayMs  int64     `json:"displayMs"`
	Display    string    `json:"display"`
	ServerTime time.Time `json:"serverTime"`
}

// NewProjection computes the display values for job at now
func NewProjection(job *Job, now time.Time) Projection {
	ms := job.Timer.Project(now)
	return Projection{
		Job:        job,
		DisplayMs:  ms,
		Display:    FormatDuration(ms),
		ServerTime: now,
	}
}
