package domain

import "errors"

var (
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidStatus     = errors.New("invalid job status")
	ErrInvalidTransition = errors.New("invalid timer transition")
	ErrNotFound          = errors.New("job not found")
	ErrUnauthorized      = errors.New("job belongs to another user")
	ErrConflict          = errors.New("job was modified concurrently")
	ErrInvalidJob        = errors.New("invalid job")

	// Draft stopwatch errors
	ErrAlreadySaved      = errors.New("draft session already saved")
	ErrDraftNotRunning   = errors.New("draft timer is not running")
	ErrDraftNotStartable = errors.New("draft timer is already running")
	ErrNothingToSave     = errors.New("draft timer has no time to save")

	// ErrDraftSaveUnresolved blocks resuming a session whose last save may
	// have reached the server. Saving again settles it.
	ErrDraftSaveUnresolved = errors.New("draft save did not finish; save again before resuming")
)
