package domain

import (
	"time"
)

// EntryKind tells how an entry's time was added
type EntryKind string

const (
	EntryKindLive   EntryKind = "live"
	EntryKindManual EntryKind = "manual"
	EntryKindDraft  EntryKind = "draft"
	EntryKindReset  EntryKind = "reset"
)

// TimeEntry is an append-only audit row written alongside each accrual commit.
// Totals are never computed from entries.
type TimeEntry struct {
	ID         int64      `json:"id"`
	JobID      string     `json:"jobId"`
	Kind       EntryKind  `json:"kind"`
	StartTime  *time.Time `json:"startTime,omitempty"` // live entries only
	EndTime    *time.Time `json:"endTime,omitempty"`
	DurationMs int64      `json:"durationMs"`
	SessionID  string     `json:"sessionId,omitempty"` // draft entries only
	CreatedAt  time.Time  `json:"createdAt"`
}

// Duration returns the recorded duration
func (e *TimeEntry) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

// EntriesFor derives the audit rows describing the move from before to after
func EntriesFor(jobID string, before, after TimerState, tr Transition, sessionID string, now time.Time) []*TimeEntry {
	var entries []*TimeEntry

	if tr.Kind == TransitionResetTotal {
		return append(entries, &TimeEntry{
			JobID:      jobID,
			Kind:       EntryKindReset,
			DurationMs: before.Project(now),
			CreatedAt:  now,
		})
	}

	// A running timer that stopped committed its live interval
	if before.IsRunning() && !after.IsRunning() {
		start := *before.RunningSince
		end := now
		entries = append(entries, &TimeEntry{
			JobID:      jobID,
			Kind:       EntryKindLive,
			StartTime:  &start,
			EndTime:    &end,
			DurationMs: liveMs(before.RunningSince, now),
			CreatedAt:  now,
		})
	}

	if tr.Kind == TransitionManualAdjust {
		kind := EntryKindManual
		if sessionID != "" {
			kind = EntryKindDraft
		}
		entries = append(entries, &TimeEntry{
			JobID:      jobID,
			Kind:       kind,
			DurationMs: tr.DeltaMs,
			SessionID:  sessionID,
			CreatedAt:  now,
		})
	}

	return entries
}
