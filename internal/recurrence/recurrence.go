// Package recurrence computes the next occurrence of a recurring task.
package recurrence

import (
	"time"

	"tracker/internal/models"
)

// NextDueDate advances anchor by one period of freq. ok is false for
// "none" and unknown frequencies.
//
// Monthly steps use time.AddDate, which normalises overflow: Jan 31 plus
// one month is Mar 2 (Mar 3 outside leap years), not the end of February.
func NextDueDate(anchor time.Time, freq models.Frequency) (next time.Time, ok bool) {
	switch freq {
	case models.FrequencyDaily:
		return anchor.AddDate(0, 0, 1), true
	case models.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7), true
	case models.FrequencyMonthly:
		return anchor.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}

// Successor builds the next occurrence of a completed recurring task, or nil
// when t does not recur. The anchor is t's due date, or now when it has none.
// ID and timestamps are left for the caller to assign.
func Successor(t *models.Task, now time.Time) *models.Task {
	if t == nil || !t.Recurring.Active() {
		return nil
	}
	anchor := now
	if t.DueDate != nil {
		anchor = *t.DueDate
	}
	due, ok := NextDueDate(anchor, t.Recurring.Frequency)
	if !ok {
		return nil
	}

	tags := make(models.StringList, len(t.Tags))
	copy(tags, t.Tags)

	next := &models.Task{
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      models.TaskPending,
		DueDate:     &due,
		Tags:        tags,
		Recurring:   t.Recurring,
		TimerStatus: models.TimerIdle,
	}
	if t.DurationMinutes != nil {
		d := *t.DurationMinutes
		next.DurationMinutes = &d
	}
	return next
}
