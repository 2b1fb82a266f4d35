package domain

import "time"

// DraftState is derived from a draft snapshot, never stored
type DraftState string

const (
	DraftStateIdle    DraftState = "idle"
	DraftStateRunning DraftState = "running"
	DraftStatePaused  DraftState = "paused"
	DraftStateSaved   DraftState = "saved"
)

// DraftSession is a local stopwatch that buffers seconds before they are
// committed to a job in a single manual adjustment. It is persisted as a
// snapshot after every change and must be re-read before every operation.
type DraftSession struct {
	JobID           string     `json:"jobId"`
	SessionID       string     `json:"sessionId,omitempty"`
	BufferedSeconds int64      `json:"bufferedSeconds"`
	Running         bool       `json:"running"`
	StartedAtLocal  *time.Time `json:"startedAtLocal,omitempty"`
	BaseAtStart     int64      `json:"baseAtStart"`
	Committed       bool       `json:"committed"`
	// SaveAttempted is set before a commit is sent and cleared once its
	// outcome is known. While set, the session cannot be resumed.
	SaveAttempted bool      `json:"saveAttempted,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewDraftSession returns an idle draft for jobID
func NewDraftSession(jobID string) *DraftSession {
	return &DraftSession{JobID: jobID}
}

// State derives the stopwatch state from the snapshot fields
func (d *DraftSession) State() DraftState {
	switch {
	case d.Running:
		return DraftStateRunning
	case d.Committed:
		return DraftStateSaved
	case d.SessionID == "":
		return DraftStateIdle
	}
	return DraftStatePaused
}

// Projected returns the buffered seconds at now. While running it is derived
// from the captured start instant so throttled or missed ticks cannot drift.
func (d *DraftSession) Projected(now time.Time) int64 {
	if !d.Running || d.StartedAtLocal == nil {
		return d.BufferedSeconds
	}
	elapsed := int64(now.Sub(*d.StartedAtLocal) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return d.BaseAtStart + elapsed
}

// Tick refreshes BufferedSeconds from the wall clock
func (d *DraftSession) Tick(now time.Time) {
	if d.Running {
		d.BufferedSeconds = d.Projected(now)
		d.UpdatedAt = now
	}
}

// Start begins or resumes the stopwatch. A fresh session id is taken only
// when no session is in progress. A paused session with an unsettled save is
// not resumed, since the server may already hold its seconds.
func (d *DraftSession) Start(now time.Time, newSessionID func() string) error {
	switch d.State() {
	case DraftStateRunning:
		return ErrDraftNotStartable
	case DraftStatePaused:
		if d.SaveAttempted {
			return ErrDraftSaveUnresolved
		}
	case DraftStateIdle, DraftStateSaved:
		d.SessionID = newSessionID()
		d.BufferedSeconds = 0
	}

	t := now
	d.Running = true
	d.StartedAtLocal = &t
	d.BaseAtStart = d.BufferedSeconds
	d.Committed = false
	d.UpdatedAt = now
	return nil
}

// Pause freezes the buffered seconds
func (d *DraftSession) Pause(now time.Time) error {
	if !d.Running {
		return ErrDraftNotRunning
	}
	d.BufferedSeconds = d.Projected(now)
	d.Running = false
	d.StartedAtLocal = nil
	d.UpdatedAt = now
	return nil
}

// PrepareSave pauses the stopwatch and returns the seconds to commit.
// The session is not marked saved until MarkSaved is called.
func (d *DraftSession) PrepareSave(now time.Time) (int64, error) {
	switch d.State() {
	case DraftStateSaved:
		return 0, ErrAlreadySaved
	case DraftStateIdle:
		return 0, ErrNothingToSave
	case DraftStateRunning:
		if err := d.Pause(now); err != nil {
			return 0, err
		}
	}
	if d.BufferedSeconds <= 0 {
		return 0, ErrNothingToSave
	}
	return d.BufferedSeconds, nil
}

// MarkSaved records a successful commit. Further saves of this session are rejected.
func (d *DraftSession) MarkSaved(now time.Time) {
	d.Committed = true
	d.SaveAttempted = false
	d.Running = false
	d.StartedAtLocal = nil
	d.BufferedSeconds = 0
	d.BaseAtStart = 0
	d.UpdatedAt = now
}

// Discard drops the session without committing
func (d *DraftSession) Discard(now time.Time) {
	*d = DraftSession{JobID: d.JobID, UpdatedAt: now}
}
