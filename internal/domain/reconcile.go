package domain

import (
	"fmt"
	"time"
)

// TransitionKind names a timer transition
type TransitionKind string

const (
	TransitionStart        TransitionKind = "start"
	TransitionPauseOrStop  TransitionKind = "pause"
	TransitionSetStatus    TransitionKind = "status"
	TransitionManualAdjust TransitionKind = "manual"
	TransitionResetTotal   TransitionKind = "reset"
)

// Transition is a requested change to a job's timer state
type Transition struct {
	Kind    TransitionKind
	Status  JobStatus // SetStatus only
	DeltaMs int64     // ManualAdjust only
}

// Start makes the job active and begins accruing if the clock is stopped.
// Starting a running job keeps the original running instant.
func Start() Transition { return Transition{Kind: TransitionStart} }

// PauseOrStop folds the live interval into the total and pauses the job.
// It is a no-op when nothing is running.
func PauseOrStop() Transition { return Transition{Kind: TransitionPauseOrStop} }

// ResetTotal zeroes the total and leaves the job paused
func ResetTotal() Transition { return Transition{Kind: TransitionResetTotal} }

// SetStatus moves the job to status. Moving to active starts the clock;
// any other status commits the live interval first.
func SetStatus(status JobStatus) Transition {
	return Transition{Kind: TransitionSetStatus, Status: status}
}

// ManualAdjust adds deltaMs to the total without touching the running clock.
// Reconcile rejects a delta that is not positive.
func ManualAdjust(deltaMs int64) Transition {
	return Transition{Kind: TransitionManualAdjust, DeltaMs: deltaMs}
}

// String is used in logs and audit entries
func (t Transition) String() string {
	switch t.Kind {
	case TransitionSetStatus:
		return fmt.Sprintf("status(%s)", t.Status)
	case TransitionManualAdjust:
		return fmt.Sprintf("manual(%dms)", t.DeltaMs)
	}
	return string(t.Kind)
}

// Reconcile applies tr to state at now and returns the new state.
//
// It is the only place accrual arithmetic happens. Callers must run it inside
// the storage layer's read-modify-write boundary so that two transitions never
// observe the same "before" state.
func Reconcile(state TimerState, tr Transition, now time.Time) (TimerState, error) {
	switch tr.Kind {
	case TransitionStart:
		return start(state, now), nil

	case TransitionPauseOrStop:
		if !state.IsRunning() {
			return state, nil
		}
		next, err := commit(state, now)
		if err != nil {
			return state, err
		}
		next.Status = JobStatusPaused
		return next, nil

	case TransitionSetStatus:
		if !tr.Status.Valid() {
			return state, ErrInvalidStatus
		}
		if tr.Status == JobStatusActive {
			return start(state, now), nil
		}
		next := state
		if state.IsRunning() {
			var err error
			if next, err = commit(state, now); err != nil {
				return state, err
			}
		}
		next.Status = tr.Status
		return next, nil

	case TransitionManualAdjust:
		if tr.DeltaMs <= 0 {
			return state, ErrInvalidDuration
		}
		total, err := AddMs(state.AccumulatedMs, tr.DeltaMs)
		if err != nil {
			return state, fmt.Errorf("%w: total would overflow", ErrInvalidDuration)
		}
		next := state
		next.AccumulatedMs = total
		return next, nil

	case TransitionResetTotal:
		return TimerState{Status: JobStatusPaused}, nil
	}

	return state, fmt.Errorf("%w: %q", ErrInvalidTransition, tr.Kind)
}

func start(state TimerState, now time.Time) TimerState {
	next := state
	next.Status = JobStatusActive
	if !state.IsRunning() {
		t := now
		next.RunningSince = &t
	}
	return next
}

// commit folds the live interval into the total and stops the clock
func commit(state TimerState, now time.Time) (TimerState, error) {
	total, err := AddMs(state.AccumulatedMs, liveMs(state.RunningSince, now))
	if err != nil {
		return state, fmt.Errorf("%w: total would overflow", ErrInvalidDuration)
	}
	next := state
	next.AccumulatedMs = total
	next.RunningSince = nil
	return next, nil
}

// ParseTransition maps a request payload of {type, minutes|seconds|status} to a Transition
func ParseTransition(kind string, minutes, seconds *int64, status string) (Transition, error) {
	switch kind {
	case "start":
		return Start(), nil
	case "pause", "stop":
		return PauseOrStop(), nil
	case "done":
		return SetStatus(JobStatusDone), nil
	case "status":
		s, err := ParseJobStatus(status)
		if err != nil {
			return Transition{}, err
		}
		return SetStatus(s), nil
	case "manual":
		switch {
		case minutes != nil:
			if *minutes <= 0 {
				return Transition{}, ErrInvalidDuration
			}
			ms, err := ScaleMs(*minutes, time.Minute)
			if err != nil {
				return Transition{}, fmt.Errorf("%w: %d minutes is too long", ErrInvalidDuration, *minutes)
			}
			return ManualAdjust(ms), nil
		case seconds != nil:
			if *seconds <= 0 {
				return Transition{}, ErrInvalidDuration
			}
			ms, err := ScaleMs(*seconds, time.Second)
			if err != nil {
				return Transition{}, fmt.Errorf("%w: %d seconds is too long", ErrInvalidDuration, *seconds)
			}
			return ManualAdjust(ms), nil
		}
		return Transition{}, fmt.Errorf("%w: manual requires minutes or seconds", ErrInvalidDuration)
	case "reset":
		return ResetTotal(), nil
	}
	return Transition{}, fmt.Errorf("%w: %q", ErrInvalidTransition, kind)
}
