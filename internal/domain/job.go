package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is a unit of work whose time is tracked
type Job struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Name      string     `json:"name"`
	Notes     string     `json:"notes,omitempty"`
	Timer     TimerState `json:"timer"`
	Version   int64      `json:"version"` // bumped on every timer write
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewJob creates a job with a stopped timer. An active status does not start the clock.
func NewJob(ownerID, name string, status JobStatus) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(ownerID),
		Name:      strings.TrimSpace(name),
		Timer:     NewTimerState(status),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OwnedBy returns true if userID owns the job
func (j *Job) OwnedBy(userID string) bool {
	return j.OwnerID != "" && j.OwnerID == userID
}

// Validate returns an error if the job is invalid
func (j *Job) Validate() error {
	if j.ID == "" {
		return errors.New("job ID is required")
	}
	if j.OwnerID == "" {
		return errors.New("job owner is required")
	}
	if strings.TrimSpace(j.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidJob)
	}
	return j.Timer.Validate()
}
