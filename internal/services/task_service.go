// internal/services/task_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/models"
	"tracker/internal/recurrence"
	"tracker/internal/repositories"
	"tracker/internal/timer"
)

// timerAttempts bounds the read-apply-write loop of a timer action.
const timerAttempts = 3

// TaskService defines the interface for task-related business logic.
// Every method is scoped to ownerID; a task of another owner is ErrNotFound.
type TaskService interface {
	Create(ctx context.Context, ownerID string, task *models.Task) (*models.Task, error)
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Get(ctx context.Context, ownerID, id string) (*models.Task, error)
	Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error

	// Timer runs a timer action against the stored state of the task.
	Timer(ctx context.Context, ownerID, id string, action timer.Action) (*models.Task, error)
}

type taskService struct {
	repo     repositories.TaskRepository
	activity ActivityService
	cache    cache.Cache
	clock    clock.Clock
	log      *zap.SugaredLogger
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(
	repo repositories.TaskRepository,
	activity ActivityService,
	c cache.Cache,
	clk clock.Clock,
	log *zap.SugaredLogger,
) TaskService {
	return &taskService{repo: repo, activity: activity, cache: c, clock: clk, log: log}
}

func (s *taskService) Create(ctx context.Context, ownerID string, task *models.Task) (*models.Task, error) {
	title, err := requireTitle(task.Title)
	if err != nil {
		return nil, err
	}
	task.Title = title
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(task.Priority) {
		return nil, validationf("invalid priority %q", task.Priority)
	}
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if !models.IsValidTaskStatus(task.Status) {
		return nil, validationf("invalid status %q", task.Status)
	}
	if task.Recurring.Frequency == "" {
		task.Recurring.Frequency = models.FrequencyNone
	}
	if !models.IsValidFrequency(task.Recurring.Frequency) {
		return nil, validationf("invalid frequency %q", task.Recurring.Frequency)
	}
	if task.DurationMinutes != nil && *task.DurationMinutes < 0 {
		return nil, validationf("duration_minutes must be >= 0")
	}

	now := s.clock.Now()
	task.ID = uuid.NewString()
	task.UserID = ownerID
	task.Tags = models.NewStringList(task.Tags)
	task.CompletedAt = nil
	if task.Status == models.TaskCompleted {
		task.CompletedAt = &now
	}
	task.TimerStatus = models.TimerIdle
	task.StartTime = nil
	task.AccumulatedTime = 0
	task.Version = 0
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	s.log.Infow("[task][create][ok]", "user_id", ownerID, "task_id", task.ID)
	s.activity.Record(ctx, ownerID, models.ActionTaskCreated, models.EntityTask, task.ID, models.ActivityDetails{Title: task.Title})
	s.invalidate(ctx, ownerID)
	return s.withElapsed(task, now), nil
}

func (s *taskService) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	tasks, err := cachedList(ctx, s.cache, s.log, cache.ListKey(cache.KindTasks, ownerID), func() ([]models.Task, error) {
		return s.repo.FindAllByUser(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range tasks {
		s.withElapsed(&tasks[i], now)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.withElapsed(task, s.clock.Now()), nil
}

func (s *taskService) Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	before := task.Status

	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !models.IsValidPriority(*patch.Priority) {
			return nil, validationf("invalid priority %q", *patch.Priority)
		}
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !models.IsValidTaskStatus(*patch.Status) {
			return nil, validationf("invalid status %q", *patch.Status)
		}
		task.Status = *patch.Status
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Pinned != nil {
		task.Pinned = *patch.Pinned
	}
	if patch.Tags != nil {
		task.Tags = models.NewStringList(*patch.Tags)
	}
	if patch.Recurring != nil {
		r := *patch.Recurring
		if r.Frequency == "" {
			r.Frequency = models.FrequencyNone
		}
		if !models.IsValidFrequency(r.Frequency) {
			return nil, validationf("invalid frequency %q", r.Frequency)
		}
		task.Recurring = r
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes < 0 {
			return nil, validationf("duration_minutes must be >= 0")
		}
		d := *patch.DurationMinutes
		task.DurationMinutes = &d
	}

	now := s.clock.Now()
	completedNow := before != models.TaskCompleted && task.Status == models.TaskCompleted
	switch {
	case completedNow:
		task.CompletedAt = &now
	case task.Status == models.TaskPending:
		task.CompletedAt = nil
	}
	task.UpdatedAt = now

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("[task][update][ok]", "user_id", ownerID, "task_id", id, "status", task.Status)

	if completedNow {
		s.activity.Record(ctx, ownerID, models.ActionTaskCompleted, models.EntityTask, task.ID, models.ActivityDetails{Title: task.Title})
		if task.Recurring.Active() {
			s.spawnSuccessor(ctx, task, now)
		}
	}
	s.invalidate(ctx, ownerID)
	return s.withElapsed(task, now), nil
}

// spawnSuccessor stores the next occurrence of a recurring task. The
// completion already happened, so failures are only logged.
func (s *taskService) spawnSuccessor(ctx context.Context, task *models.Task, now time.Time) {
	next := recurrence.Successor(task, now)
	if next == nil {
		return
	}
	next.ID = uuid.NewString()
	next.CreatedAt = now
	next.UpdatedAt = now
	if err := s.repo.Store(ctx, next); err != nil {
		s.log.Errorw("[task][recurrence][err]", "user_id", task.UserID, "task_id", task.ID, "err", err)
		return
	}
	s.log.Infow("[task][recurrence][ok]", "user_id", task.UserID, "task_id", task.ID, "next_id", next.ID, "due_date", next.DueDate)
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return storeErr(err)
	}
	s.log.Infow("[task][delete][ok]", "user_id", ownerID, "task_id", id)
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *taskService) Timer(ctx context.Context, ownerID, id string, action timer.Action) (*models.Task, error) {
	for attempt := 1; attempt <= timerAttempts; attempt++ {
		task, err := s.repo.FindByID(ctx, id, ownerID)
		if err != nil {
			return nil, storeErr(err)
		}
		now := s.clock.Now()
		next, changed := timer.Apply(timer.FromTask(task), action, now)
		if !changed {
			return s.withElapsed(task, now), nil
		}
		next.ApplyTo(task)
		task.UpdatedAt = now

		ok, err := s.repo.UpdateTimer(ctx, task, task.Version)
		if err != nil {
			return nil, storeErr(err)
		}
		if ok {
			s.log.Infow("[task][timer][ok]", "user_id", ownerID, "task_id", id, "action", action,
				"timer_status", task.TimerStatus, "accumulated_ms", task.AccumulatedTime)
			s.invalidate(ctx, ownerID)
			return s.withElapsed(task, now), nil
		}
		s.log.Debugw("[task][timer][retry]", "task_id", id, "attempt", attempt)
	}
	return nil, fmt.Errorf("%w: timer was modified concurrently", ErrConflict)
}

func (s *taskService) withElapsed(task *models.Task, now time.Time) *models.Task {
	task.ElapsedTime = elapsedOf(task, now)
	return task
}

func elapsedOf(task *models.Task, now time.Time) int64 {
	return timer.Elapsed(timer.FromTask(task), now)
}

func (s *taskService) invalidate(ctx context.Context, ownerID string) {
	invalidate(ctx, s.cache, s.log, cache.ListKey(cache.KindTasks, ownerID))
}
