// Package timer implements the pause/resume work timer of a task.
//
// A timer is described by its status, the instant the current interval
// started (only while running) and the banked milliseconds of all finished
// intervals. Every operation is a pure function of that state and the
// current instant; nothing here reads the clock.
package timer

import (
	"fmt"
	"time"

	"tracker/internal/models"
)

// State is the persisted part of a task timer.
type State struct {
	Status        models.TimerStatus
	StartTime     *time.Time
	AccumulatedMs int64
}

type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionToggle Action = "toggle"
	ActionStop   Action = "stop"
	ActionReset  Action = "reset"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionStart, ActionPause, ActionToggle, ActionStop, ActionReset:
		return a, nil
	}
	return "", fmt.Errorf("unknown timer action %q", s)
}

// FromTask extracts the timer state of t.
func FromTask(t *models.Task) State {
	return State{Status: t.TimerStatus, StartTime: t.StartTime, AccumulatedMs: t.AccumulatedTime}
}

// ApplyTo writes s into the timer fields of t.
func (s State) ApplyTo(t *models.Task) {
	t.TimerStatus = s.Status
	t.StartTime = s.StartTime
	t.AccumulatedTime = s.AccumulatedMs
}

func (s State) running() bool {
	return s.Status == models.TimerRunning
}

// Apply runs action against s at now. changed is false when the action was
// a no-op, e.g. a start while already running.
func Apply(s State, action Action, now time.Time) (next State, changed bool) {
	switch action {
	case ActionStart:
		return Start(s, now)
	case ActionPause:
		return Pause(s, now)
	case ActionToggle:
		return Toggle(s, now)
	case ActionStop:
		return Stop(s, now)
	case ActionReset:
		return Reset(s)
	}
	return s, false
}

// Start moves an idle or paused timer to running. A running timer keeps its
// original start instant so a repeated start never drops time.
func Start(s State, now time.Time) (State, bool) {
	if s.running() {
		return s, false
	}
	start := now
	return State{
		Status:        models.TimerRunning,
		StartTime:     &start,
		AccumulatedMs: clamp(s.AccumulatedMs),
	}, true
}

// Pause banks the live interval and freezes the timer.
// A running state without a start instant is left untouched.
func Pause(s State, now time.Time) (State, bool) {
	if !s.running() || s.StartTime == nil {
		return s, false
	}
	return State{
		Status:        models.TimerPaused,
		AccumulatedMs: clamp(s.AccumulatedMs) + interval(*s.StartTime, now),
	}, true
}

// Toggle pauses a running timer and starts any other.
func Toggle(s State, now time.Time) (State, bool) {
	if s.running() {
		return Pause(s, now)
	}
	return Start(s, now)
}

// Stop banks the live interval (if any) and returns to idle keeping the total.
func Stop(s State, now time.Time) (State, bool) {
	acc := clamp(s.AccumulatedMs)
	if s.running() && s.StartTime != nil {
		acc += interval(*s.StartTime, now)
	}
	next := State{Status: models.TimerIdle, AccumulatedMs: acc}
	return next, !equal(s, next)
}

// Reset discards banked and live time.
func Reset(s State) (State, bool) {
	next := State{Status: models.TimerIdle}
	return next, !equal(s, next)
}

// Elapsed is the total time shown to the user: banked time plus the live
// interval when running.
func Elapsed(s State, now time.Time) int64 {
	acc := clamp(s.AccumulatedMs)
	if s.running() && s.StartTime != nil {
		acc += interval(*s.StartTime, now)
	}
	return acc
}

// interval is the length of [start, now] in ms; a clock that went backwards yields 0.
func interval(start, now time.Time) int64 {
	d := now.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

func clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms
}

func equal(a, b State) bool {
	if a.Status != b.Status || a.AccumulatedMs != b.AccumulatedMs {
		return false
	}
	if a.StartTime == nil || b.StartTime == nil {
		return a.StartTime == nil && b.StartTime == nil
	}
	return a.StartTime.Equal(*b.StartTime)
}
