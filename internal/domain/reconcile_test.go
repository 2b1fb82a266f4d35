package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func at(ms int64) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func running(accumulated int64, since time.Time) TimerState {
	s := since
	return TimerState{AccumulatedMs: accumulated, RunningSince: &s, Status: JobStatusActive}
}

func mustReconcile(t *testing.T, s TimerState, tr Transition, now time.Time) TimerState {
	t.Helper()
	next, err := Reconcile(s, tr, now)
	if err != nil {
		t.Fatalf("Reconcile(%s): unexpected error: %v", tr, err)
	}
	return next
}

func TestReconcile_StartThenPause(t *testing.T) {
	s := TimerState{Status: JobStatusPaused}

	s = mustReconcile(t, s, Start(), at(0))
	if !s.IsRunning() || s.Status != JobStatusActive {
		t.Fatalf("expected running active timer, got %+v", s)
	}

	s = mustReconcile(t, s, PauseOrStop(), at(5000))
	want := TimerState{AccumulatedMs: 5000, Status: JobStatusPaused}
	if !s.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
	if got := FormatDuration(s.AccumulatedMs); got != "0:00:05" {
		t.Fatalf("expected 0:00:05, got %s", got)
	}
}

func TestReconcile_StartIsIdempotent(t *testing.T) {
	s := TimerState{AccumulatedMs: 1200, Status: JobStatusPaused}

	once := mustReconcile(t, s, Start(), at(1000))
	twice := mustReconcile(t, once, Start(), at(90000))
	if !once.Equal(twice) {
		t.Fatalf("second start changed state: %+v -> %+v", once, twice)
	}
}

func TestReconcile_StartForcesActiveWhileRunning(t *testing.T) {
	s := running(0, at(0))
	s.Status = JobStatusPaused // legacy row: ticking but tagged paused

	next := mustReconcile(t, s, Start(), at(3000))
	if next.Status != JobStatusActive {
		t.Fatalf("expected active, got %s", next.Status)
	}
	if !next.RunningSince.Equal(at(0)) {
		t.Fatalf("start must not move running instant, got %v", next.RunningSince)
	}
}

func TestReconcile_PauseWhenStoppedIsNoop(t *testing.T) {
	s := TimerState{AccumulatedMs: 700, Status: JobStatusActive}
	next := mustReconcile(t, s, PauseOrStop(), at(100))
	if !next.Equal(s) {
		t.Fatalf("expected unchanged state, got %+v", next)
	}
}

func TestReconcile_SetStatusMatchesDedicatedTransitions(t *testing.T) {
	s := running(2000, at(0))

	viaStatus := mustReconcile(t, s, SetStatus(JobStatusPaused), at(4500))
	viaPause := mustReconcile(t, s, PauseOrStop(), at(4500))
	if viaStatus.AccumulatedMs != viaPause.AccumulatedMs || viaStatus.RunningSince != nil || viaPause.RunningSince != nil {
		t.Fatalf("status(paused) %+v differs from pause %+v", viaStatus, viaPause)
	}

	stopped := TimerState{AccumulatedMs: 10, Status: JobStatusPaused}
	viaStatus = mustReconcile(t, stopped, SetStatus(JobStatusActive), at(50))
	viaStart := mustReconcile(t, stopped, Start(), at(50))
	if !viaStatus.Equal(viaStart) {
		t.Fatalf("status(active) %+v differs from start %+v", viaStatus, viaStart)
	}
}

func TestReconcile_MarkDoneCommitsRunningTime(t *testing.T) {
	s := running(1000, at(0))
	next := mustReconcile(t, s, SetStatus(JobStatusDone), at(61000))

	want := TimerState{AccumulatedMs: 62000, Status: JobStatusDone}
	if !next.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, next)
	}
}

func TestReconcile_SetStatusRejectsUnknown(t *testing.T) {
	s := running(0, at(0))
	next, err := Reconcile(s, SetStatus("archived"), at(10))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if !next.Equal(s) {
		t.Fatalf("state changed on error: %+v", next)
	}
}

func TestReconcile_ManualAdjust(t *testing.T) {
	s := TimerState{Status: JobStatusPaused}

	next := mustReconcile(t, s, ManualAdjust(900000), at(0))
	want := TimerState{AccumulatedMs: 900000, Status: JobStatusPaused}
	if !next.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, next)
	}

	for _, delta := range []int64{0, -1} {
		same, err := Reconcile(next, ManualAdjust(delta), at(0))
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("delta %d: expected ErrInvalidDuration, got %v", delta, err)
		}
		if !same.Equal(next) {
			t.Fatalf("delta %d: state changed on error", delta)
		}
	}
}

func TestReconcile_ManualAdjustLeavesClockAlone(t *testing.T) {
	s := running(0, at(0))
	next := mustReconcile(t, s, ManualAdjust(60000), at(5000))

	if !next.IsRunning() || !next.RunningSince.Equal(at(0)) {
		t.Fatalf("manual add must not touch the running clock, got %+v", next)
	}
	if next.Status != JobStatusActive || next.AccumulatedMs != 60000 {
		t.Fatalf("unexpected state %+v", next)
	}
}

func TestReconcile_ResetTotal(t *testing.T) {
	states := []TimerState{
		{},
		{AccumulatedMs: 42, Status: JobStatusDone},
		running(3600000, at(0)),
	}
	want := TimerState{Status: JobStatusPaused}
	for _, s := range states {
		next := mustReconcile(t, s, ResetTotal(), at(1000))
		if !next.Equal(want) {
			t.Fatalf("reset of %+v: expected %+v, got %+v", s, want, next)
		}
	}
}

func TestReconcile_ClockSkewClampsToZero(t *testing.T) {
	s := running(500, at(10000))
	next := mustReconcile(t, s, PauseOrStop(), at(2000))
	if next.AccumulatedMs != 500 {
		t.Fatalf("expected accumulated 500 after skewed pause, got %d", next.AccumulatedMs)
	}
}

func TestReconcile_UnknownKind(t *testing.T) {
	_, err := Reconcile(TimerState{}, Transition{Kind: "rewind"}, at(0))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestProject(t *testing.T) {
	s := running(3600000, at(0))
	if got := s.Project(at(1800000)); got != 5400000 {
		t.Fatalf("expected 5400000, got %d", got)
	}

	stopped := TimerState{AccumulatedMs: 1234, Status: JobStatusActive}
	if got := stopped.Project(at(999999)); got != 1234 {
		t.Fatalf("stopped projection must equal accumulated, got %d", got)
	}

	skewed := running(10, at(5000))
	if got := skewed.Project(at(0)); got != 10 {
		t.Fatalf("skewed projection must clamp, got %d", got)
	}
}

func TestParseTransition(t *testing.T) {
	fifteen := int64(15)
	ninety := int64(90)
	zero := int64(0)
	maxMinutes := int64(math.MaxInt64 / 60000)
	hugeMinutes := int64(307445734561826)
	hugeSeconds := int64(math.MaxInt64/1000 + 1)

	tests := []struct {
		name    string
		kind    string
		minutes *int64
		seconds *int64
		status  string
		want    Transition
		wantErr error
	}{
		{name: "start", kind: "start", want: Start()},
		{name: "pause", kind: "pause", want: PauseOrStop()},
		{name: "stop", kind: "stop", want: PauseOrStop()},
		{name: "done", kind: "done", want: SetStatus(JobStatusDone)},
		{name: "status", kind: "status", status: "paused", want: SetStatus(JobStatusPaused)},
		{name: "bad status", kind: "status", status: "nope", wantErr: ErrInvalidStatus},
		{name: "minutes", kind: "manual", minutes: &fifteen, want: ManualAdjust(900000)},
		{name: "seconds", kind: "manual", seconds: &ninety, want: ManualAdjust(90000)},
		{name: "zero minutes", kind: "manual", minutes: &zero, wantErr: ErrInvalidDuration},
		{name: "no amount", kind: "manual", wantErr: ErrInvalidDuration},
		{name: "largest minutes", kind: "manual", minutes: &maxMinutes, want: ManualAdjust(maxMinutes * 60000)},
		{name: "minutes overflow", kind: "manual", minutes: &hugeMinutes, wantErr: ErrInvalidDuration},
		{name: "seconds overflow", kind: "manual", seconds: &hugeSeconds, wantErr: ErrInvalidDuration},
		{name: "reset", kind: "reset", want: ResetTotal()},
		{name: "unknown", kind: "warp", wantErr: ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTransition(tc.kind, tc.minutes, tc.seconds, tc.status)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestReconcile_RejectsOverflowingTotal(t *testing.T) {
	full := TimerState{AccumulatedMs: math.MaxInt64 - 1, Status: JobStatusPaused}
	got, err := Reconcile(full, ManualAdjust(10), at(0))
	if !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if got.AccumulatedMs != math.MaxInt64-1 {
		t.Fatalf("state must be unchanged on error, got %d", got.AccumulatedMs)
	}

	// Exactly reaching the limit is still allowed
	if got := mustReconcile(t, full, ManualAdjust(1), at(0)); got.AccumulatedMs != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d", got.AccumulatedMs)
	}

	live := running(math.MaxInt64-5, at(0))
	for _, tr := range []Transition{PauseOrStop(), SetStatus(JobStatusDone)} {
		got, err := Reconcile(live, tr, at(10))
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("%s: expected ErrInvalidDuration, got %v", tr, err)
		}
		if !got.IsRunning() || got.AccumulatedMs != math.MaxInt64-5 {
			t.Fatalf("%s: state must be unchanged on error, got %+v", tr, got)
		}
	}

	if got := live.Project(at(10)); got != math.MaxInt64 {
		t.Fatalf("projection must saturate, got %d", got)
	}
}

func TestEntriesFor(t *testing.T) {
	before := running(0, at(0))
	after := mustReconcile(t, before, PauseOrStop(), at(7000))

	entries := EntriesFor("job-1", before, after, PauseOrStop(), "", at(7000))
	if len(entries) != 1 || entries[0].Kind != EntryKindLive || entries[0].DurationMs != 7000 {
		t.Fatalf("expected one live entry of 7000ms, got %+v", entries)
	}

	stopped := TimerState{Status: JobStatusPaused}
	added := mustReconcile(t, stopped, ManualAdjust(30000), at(0))
	entries = EntriesFor("job-1", stopped, added, ManualAdjust(30000), "sess-1", at(0))
	if len(entries) != 1 || entries[0].Kind != EntryKindDraft || entries[0].SessionID != "sess-1" {
		t.Fatalf("expected one draft entry, got %+v", entries)
	}

	if entries := EntriesFor("job-1", stopped, stopped, Start(), "", at(0)); len(entries) != 0 {
		t.Fatalf("expected no entries for start, got %d", len(entries))
	}
}
