package recurrence_test

import (
	"testing"
	"time"

	"tracker/internal/models"
	"tracker/internal/recurrence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		freq   models.Frequency
		want   time.Time
	}{
		{"daily", date(2024, 3, 1), models.FrequencyDaily, date(2024, 3, 2)},
		{"daily year end", date(2023, 12, 31), models.FrequencyDaily, date(2024, 1, 1)},
		{"weekly", date(2024, 3, 1), models.FrequencyWeekly, date(2024, 3, 8)},
		{"monthly", date(2024, 3, 15), models.FrequencyMonthly, date(2024, 4, 15)},
		{"monthly overflow leap", date(2024, 1, 31), models.FrequencyMonthly, date(2024, 3, 2)},
		{"monthly overflow", date(2023, 1, 31), models.FrequencyMonthly, date(2023, 3, 3)},
	}
	for _, tt := range tests {
		got, ok := recurrence.NextDueDate(tt.anchor, tt.freq)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("%s: NextDueDate = %v (ok=%v), want %v", tt.name, got, ok, tt.want)
		}
	}

	if _, ok := recurrence.NextDueDate(date(2024, 3, 1), models.FrequencyNone); ok {
		t.Error("NextDueDate(none) ok = true, want false")
	}
}

func TestSuccessorCopiesFields(t *testing.T) {
	due := date(2024, 3, 1)
	start := date(2024, 2, 29)
	mins := 30
	done := &models.Task{
		ID:              "orig",
		UserID:          "u1",
		Title:           "Water plants",
		Description:     "balcony",
		Priority:        models.PriorityHigh,
		Status:          models.TaskCompleted,
		DueDate:         &due,
		Pinned:          true,
		Tags:            models.StringList{"home"},
		Recurring:       models.Recurrence{IsRecurring: true, Frequency: models.FrequencyDaily},
		DurationMinutes: &mins,
		TimerStatus:     models.TimerPaused,
		StartTime:       &start,
		AccumulatedTime: 5000,
	}

	next := recurrence.Successor(done, date(2024, 3, 5))
	if next == nil {
		t.Fatal("Successor = nil")
	}
	if next.DueDate == nil || !next.DueDate.Equal(date(2024, 3, 2)) {
		t.Errorf("due = %v, want 2024-03-02", next.DueDate)
	}
	if next.Title != done.Title || next.Priority != done.Priority || next.Recurring != done.Recurring {
		t.Errorf("successor = %+v", next)
	}
	if next.Status != models.TaskPending || next.TimerStatus != models.TimerIdle ||
		next.StartTime != nil || next.AccumulatedTime != 0 || next.Pinned {
		t.Errorf("successor state = %+v, want fresh pending idle task", next)
	}
	if next.ID != "" || next.UserID != "u1" {
		t.Errorf("successor id/user = %q/%q", next.ID, next.UserID)
	}

	next.Tags[0] = "changed"
	if done.Tags[0] != "home" {
		t.Error("successor shares tag storage with the original")
	}
	if done.Status != models.TaskCompleted {
		t.Error("original was modified")
	}
}

func TestSuccessorWithoutDueDateAnchorsOnNow(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	task := &models.Task{
		Title:     "Review",
		Recurring: models.Recurrence{IsRecurring: true, Frequency: models.FrequencyWeekly},
	}
	next := recurrence.Successor(task, now)
	if next == nil {
		t.Fatal("Successor = nil")
	}
	if !next.DueDate.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("Successor due = %v, want %v", next.DueDate, now.AddDate(0, 0, 7))
	}
}

func TestSuccessorNotRecurring(t *testing.T) {
	now := date(2024, 1, 1)
	cases := []models.Recurrence{
		{IsRecurring: false, Frequency: models.FrequencyDaily},
		{IsRecurring: true, Frequency: models.FrequencyNone},
		{IsRecurring: true},
	}
	for _, r := range cases {
		if next := recurrence.Successor(&models.Task{Recurring: r}, now); next != nil {
			t.Errorf("Successor(%+v) = %+v, want nil", r, next)
		}
	}
}
