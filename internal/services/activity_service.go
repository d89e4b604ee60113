package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/clock"
	"tracker/internal/models"
	"tracker/internal/repositories"
)

// HistoryLimit is the number of activities returned by History.
const HistoryLimit = 50

const day = 24 * time.Hour

// ActivityService is the append-only log of notable transitions plus the
// read models built on top of it.
type ActivityService interface {
	// Record appends an activity. Failures are logged, never returned.
	Record(ctx context.Context, ownerID string, action models.ActivityAction, entity models.EntityType, entityID string, details models.ActivityDetails)
	History(ctx context.Context, ownerID string) ([]models.Activity, error)
	Analytics(ctx context.Context, ownerID string) (*models.Analytics, error)
}

type activityService struct {
	repo  repositories.ActivityRepository
	tasks repositories.TaskRepository
	goals repositories.GoalRepository
	clock clock.Clock
	log   *zap.SugaredLogger
}

func NewActivityService(
	repo repositories.ActivityRepository,
	tasks repositories.TaskRepository,
	goals repositories.GoalRepository,
	clk clock.Clock,
	log *zap.SugaredLogger,
) ActivityService {
	return &activityService{repo: repo, tasks: tasks, goals: goals, clock: clk, log: log}
}

func (s *activityService) Record(ctx context.Context, ownerID string, action models.ActivityAction, entity models.EntityType, entityID string, details models.ActivityDetails) {
	a := &models.Activity{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Append(ctx, a); err != nil {
		s.log.Warnw("[activity][record][err]", "user_id", ownerID, "action", action, "entity_id", entityID, "err", err)
	}
}

func (s *activityService) History(ctx context.Context, ownerID string) ([]models.Activity, error) {
	return s.repo.ListRecent(ctx, ownerID, HistoryLimit)
}

func (s *activityService) Analytics(ctx context.Context, ownerID string) (*models.Analytics, error) {
	now := s.clock.Now()
	recent, err := s.repo.ListSince(ctx, ownerID, now.Add(-7*day))
	if err != nil {
		return nil, err
	}
	pending, err := s.tasks.CountByStatus(ctx, ownerID, models.TaskPending)
	if err != nil {
		return nil, err
	}
	active, err := s.goals.CountByStatus(ctx, ownerID, models.GoalActive)
	if err != nil {
		return nil, err
	}

	out := &models.Analytics{}
	out.Stats.PendingTasks = pending
	out.Stats.ActiveGoals = active
	out.Stats.TotalActionsLastWeek = len(recent)
	for _, a := range recent {
		if a.Action != models.ActionTaskCompleted {
			continue
		}
		if i, ok := weekdaySlot(now, a.CreatedAt); ok {
			out.WeeklyCompletions[i]++
		}
	}
	return out, nil
}

// weekdaySlot places an event aged d whole days at index 6-d; today is 6.
func weekdaySlot(now, at time.Time) (int, bool) {
	age := now.Sub(at)
	if age < 0 {
		return 0, false
	}
	d := int(age / day)
	if d > 6 {
		return 0, false
	}
	return 6 - d, true
}
