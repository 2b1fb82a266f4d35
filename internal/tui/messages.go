package tui

import "sync/atomic"

// SwitchScreenMsg requests a screen change. JobID selects the job the timer,
// draft and entries screens show; empty keeps the current selection.
type SwitchScreenMsg struct {
	Screen Screen
	JobID  string
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// screenMsg is implemented by background messages (ticks, resyncs, change
// events) that must reach their screen even while another one is shown
type screenMsg interface {
	target() Screen
}

// chainMsg is implemented by messages that reschedule themselves. A screen
// model takes a new generation when it is built and drops chains started by
// an earlier model of the same screen, even one for the same job.
type chainMsg interface {
	generation() uint64
}

var lastGen atomic.Uint64

func nextGen() uint64 { return lastGen.Add(1) }
