package models

import "time"

type ActivityAction string

const (
	ActionTaskCreated       ActivityAction = "task_created"
	ActionTaskCompleted     ActivityAction = "task_completed"
	ActionGoalCreated       ActivityAction = "goal_created"
	ActionGoalCompleted     ActivityAction = "goal_completed"
	ActionWatchlistAdded    ActivityAction = "watchlist_added"
	ActionWatchlistFinished ActivityAction = "watchlist_finished"
)

type EntityType string

const (
	EntityTask      EntityType = "task"
	EntityGoal      EntityType = "goal"
	EntityWatchlist EntityType = "watchlist"
	EntityUser      EntityType = "user"
)

// ActivityDetails is a snapshot taken at the time of the event, so history
// lines still render after the entity is edited or deleted.
// Type is only set for watchlist actions.
type ActivityDetails struct {
	Title string    `json:"title"`
	Type  MediaType `json:"type,omitempty"`
}

// Activity is an append-only history record.
type Activity struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     ActivityAction  `json:"action"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    ActivityDetails `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Analytics is the weekly summary served by GET /analytics.
// WeeklyCompletions[6] is the last 24h, WeeklyCompletions[0] six days before.
type Analytics struct {
	WeeklyCompletions [7]int         `json:"weekly_completions"`
	Stats             AnalyticsStats `json:"stats"`
}

type AnalyticsStats struct {
	PendingTasks         int `json:"pending_tasks"`
	ActiveGoals          int `json:"active_goals"`
	TotalActionsLastWeek int `json:"total_actions_last_week"`
}
