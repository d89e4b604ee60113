package progress_test

import (
	"testing"

	"tracker/internal/models"
	"tracker/internal/progress"
)

func list(flags ...bool) []models.Subtask {
	out := make([]models.Subtask, len(flags))
	for i, f := range flags {
		out[i] = models.Subtask{Title: "s", Completed: f}
	}
	return out
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		subtasks []models.Subtask
		want     int
	}{
		{"empty", nil, 0},
		{"none done", list(false, false), 0},
		{"two of three", list(true, true, false), 67},
		{"one of three", list(true, false, false), 33},
		{"half", list(true, false), 50},
		{"one of eight", list(true, false, false, false, false, false, false, false), 13},
		{"all", list(true, true, true), 100},
	}
	for _, tt := range tests {
		if got := progress.Percent(tt.subtasks); got != tt.want {
			t.Errorf("%s: Percent = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestJustCompleted(t *testing.T) {
	tests := []struct {
		before, after int
		want          bool
	}{
		{0, 100, true},
		{67, 100, true},
		{100, 100, false},
		{67, 67, false},
		{100, 67, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := progress.JustCompleted(tt.before, tt.after); got != tt.want {
			t.Errorf("JustCompleted(%d, %d) = %v, want %v", tt.before, tt.after, got, tt.want)
		}
	}
}

func TestToggleLastItemSignalsOnce(t *testing.T) {
	subtasks := list(true, true, false)
	signals := 0

	toggle := func(i int) {
		before := progress.Percent(subtasks)
		subtasks[i].Completed = !subtasks[i].Completed
		if progress.JustCompleted(before, progress.Percent(subtasks)) {
			signals++
		}
	}

	toggle(2)
	if signals != 1 {
		t.Fatalf("signals after completing = %d, want 1", signals)
	}
	// re-save at 100% is not a rise
	before := progress.Percent(subtasks)
	if progress.JustCompleted(before, progress.Percent(subtasks)) {
		t.Error("re-save at 100% signalled")
	}
	toggle(2)
	toggle(2)
	if signals != 2 {
		t.Errorf("signals after reopen and complete = %d, want 2", signals)
	}
}
