package models

import "time"

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

const DefaultGoalEmoji = "🎯"

// Subtask is one checklist entry of a goal. Slice order is display order.
type Subtask struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type Subtasks []Subtask

// Goal is a long-running objective with a checklist of subtasks.
// Progress is derived from Subtasks on every read.
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Emoji       string     `json:"emoji"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      GoalStatus `json:"status"`
	Subtasks    Subtasks   `json:"subtasks"`
	Streak      int        `json:"streak"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type GoalPatch struct {
	Title         *string
	Description   *string
	Emoji         *string
	Deadline      *time.Time
	ClearDeadline bool
	Priority      *Priority
	Status        *GoalStatus
	Subtasks      *[]Subtask
	Streak        *int
}

func IsValidGoalStatus(s GoalStatus) bool {
	switch s {
	case GoalActive, GoalCompleted, GoalArchived:
		return true
	}
	return false
}
