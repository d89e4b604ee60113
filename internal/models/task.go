// internal/models/task.go
package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type TimerStatus string

const (
	TimerIdle    TimerStatus = "idle"
	TimerRunning TimerStatus = "running"
	TimerPaused  TimerStatus = "paused"
)

// Recurrence describes whether completing a task spawns a successor.
type Recurrence struct {
	IsRecurring bool      `json:"is_recurring"`
	Frequency   Frequency `json:"frequency"`
}

// Active reports whether completing the task should produce a successor.
func (r Recurrence) Active() bool {
	return r.IsRecurring && r.Frequency != "" && r.Frequency != FrequencyNone
}

// Task represents the structure of a task in the system.
//
// AccumulatedTime is in milliseconds and never includes the running interval.
// ElapsedTime is filled in at response time and is not stored.
type Task struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Priority        Priority    `json:"priority"`
	Status          TaskStatus  `json:"status"`
	DueDate         *time.Time  `json:"due_date,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	Pinned          bool        `json:"pinned"`
	Tags            StringList  `json:"tags"`
	Recurring       Recurrence  `json:"recurring"`
	DurationMinutes *int        `json:"duration_minutes,omitempty"`
	TimerStatus     TimerStatus `json:"timer_status"`
	StartTime       *time.Time  `json:"start_time,omitempty"`
	AccumulatedTime int64       `json:"accumulated_time"`
	ElapsedTime     int64       `json:"elapsed_time"`
	Version         int64       `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TaskPatch carries the fields of a partial task update. Nil means "leave as is".
// ClearDueDate distinguishes an explicit removal from an absent field.
type TaskPatch struct {
	Title           *string
	Description     *string
	Priority        *Priority
	Status          *TaskStatus
	DueDate         *time.Time
	ClearDueDate    bool
	Pinned          *bool
	Tags            *[]string
	Recurring       *Recurrence
	DurationMinutes *int
}

func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func IsValidTaskStatus(s TaskStatus) bool {
	return s == TaskPending || s == TaskCompleted
}

func IsValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}
