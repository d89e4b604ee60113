package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/models"
	"tracker/internal/progress"
	"tracker/internal/repositories"
)

// GoalResult is returned by goal writes that can move progress. It encodes
// as the goal record with just_completed added next to its fields.
// JustCompleted is true only on the save that first reaches 100%.
type GoalResult struct {
	*models.Goal
	JustCompleted bool `json:"just_completed"`
}

type GoalService interface {
	Create(ctx context.Context, ownerID string, goal *models.Goal) (*models.Goal, error)
	List(ctx context.Context, ownerID string) ([]models.Goal, error)
	Get(ctx context.Context, ownerID, id string) (*models.Goal, error)
	Update(ctx context.Context, ownerID, id string, patch models.GoalPatch) (*GoalResult, error)
	// ToggleSubtask flips the completion flag of subtasks[index].
	ToggleSubtask(ctx context.Context, ownerID, id string, index int) (*GoalResult, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type goalService struct {
	repo     repositories.GoalRepository
	activity ActivityService
	cache    cache.Cache
	clock    clock.Clock
	log      *zap.SugaredLogger
}

func NewGoalService(
	repo repositories.GoalRepository,
	activity ActivityService,
	c cache.Cache,
	clk clock.Clock,
	log *zap.SugaredLogger,
) GoalService {
	return &goalService{repo: repo, activity: activity, cache: c, clock: clk, log: log}
}

func (s *goalService) Create(ctx context.Context, ownerID string, goal *models.Goal) (*models.Goal, error) {
	title, err := requireTitle(goal.Title)
	if err != nil {
		return nil, err
	}
	goal.Title = title
	if goal.Emoji == "" {
		goal.Emoji = models.DefaultGoalEmoji
	}
	if goal.Priority == "" {
		goal.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(goal.Priority) {
		return nil, validationf("invalid priority %q", goal.Priority)
	}
	if goal.Status == "" {
		goal.Status = models.GoalActive
	}
	if !models.IsValidGoalStatus(goal.Status) {
		return nil, validationf("invalid status %q", goal.Status)
	}
	subtasks, err := cleanSubtasks(goal.Subtasks)
	if err != nil {
		return nil, err
	}
	if goal.Streak < 0 {
		return nil, validationf("streak must be >= 0")
	}

	now := s.clock.Now()
	goal.ID = uuid.NewString()
	goal.UserID = ownerID
	goal.Subtasks = subtasks
	goal.CompletedAt = nil
	if goal.Status == models.GoalCompleted {
		goal.CompletedAt = &now
	}
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := s.repo.Store(ctx, goal); err != nil {
		return nil, err
	}
	s.log.Infow("[goal][create][ok]", "user_id", ownerID, "goal_id", goal.ID)
	s.activity.Record(ctx, ownerID, models.ActionGoalCreated, models.EntityGoal, goal.ID, models.ActivityDetails{Title: goal.Title})
	s.invalidate(ctx, ownerID)
	return withProgress(goal), nil
}

func (s *goalService) List(ctx context.Context, ownerID string) ([]models.Goal, error) {
	goals, err := cachedList(ctx, s.cache, s.log, cache.ListKey(cache.KindGoals, ownerID), func() ([]models.Goal, error) {
		return s.repo.FindAllByUser(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	for i := range goals {
		withProgress(&goals[i])
	}
	return goals, nil
}

func (s *goalService) Get(ctx context.Context, ownerID, id string) (*models.Goal, error) {
	goal, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return withProgress(goal), nil
}

func (s *goalService) Update(ctx context.Context, ownerID, id string, patch models.GoalPatch) (*GoalResult, error) {
	goal, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		goal.Title = title
	}
	if patch.Description != nil {
		goal.Description = *patch.Description
	}
	if patch.Emoji != nil {
		goal.Emoji = *patch.Emoji
		if goal.Emoji == "" {
			goal.Emoji = models.DefaultGoalEmoji
		}
	}
	if patch.ClearDeadline {
		goal.Deadline = nil
	} else if patch.Deadline != nil {
		d := *patch.Deadline
		goal.Deadline = &d
	}
	if patch.Priority != nil {
		if !models.IsValidPriority(*patch.Priority) {
			return nil, validationf("invalid priority %q", *patch.Priority)
		}
		goal.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !models.IsValidGoalStatus(*patch.Status) {
			return nil, validationf("invalid status %q", *patch.Status)
		}
	}
	if patch.Streak != nil {
		if *patch.Streak < 0 {
			return nil, validationf("streak must be >= 0")
		}
		goal.Streak = *patch.Streak
	}

	var subtasks models.Subtasks
	if patch.Subtasks != nil {
		if subtasks, err = cleanSubtasks(*patch.Subtasks); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, goal, patch.Status, subtasks, patch.Subtasks != nil)
}

func (s *goalService) ToggleSubtask(ctx context.Context, ownerID, id string, index int) (*GoalResult, error) {
	goal, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	if index < 0 || index >= len(goal.Subtasks) {
		return nil, validationf("subtask index %d out of range", index)
	}
	subtasks := append(models.Subtasks(nil), goal.Subtasks...)
	subtasks[index].Completed = !subtasks[index].Completed
	return s.save(ctx, goal, nil, subtasks, true)
}

// save applies a status change and a replacement checklist to goal, stamps
// completion on the transition into completed and persists.
func (s *goalService) save(ctx context.Context, goal *models.Goal, status *models.GoalStatus, subtasks models.Subtasks, replaceSubtasks bool) (*GoalResult, error) {
	before := progress.Percent(goal.Subtasks)
	wasCompleted := goal.Status == models.GoalCompleted
	if replaceSubtasks {
		goal.Subtasks = subtasks
	}
	if status != nil {
		goal.Status = *status
	}

	now := s.clock.Now()
	completedNow := !wasCompleted && goal.Status == models.GoalCompleted
	switch {
	case completedNow:
		goal.CompletedAt = &now
	case goal.Status != models.GoalCompleted:
		goal.CompletedAt = nil
	}
	goal.UpdatedAt = now

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, storeErr(err)
	}
	withProgress(goal)
	res := &GoalResult{
		Goal:          goal,
		JustCompleted: replaceSubtasks && progress.JustCompleted(before, goal.Progress),
	}
	s.log.Infow("[goal][update][ok]", "user_id", goal.UserID, "goal_id", goal.ID,
		"progress", goal.Progress, "just_completed", res.JustCompleted)

	if completedNow {
		s.activity.Record(ctx, goal.UserID, models.ActionGoalCompleted, models.EntityGoal, goal.ID, models.ActivityDetails{Title: goal.Title})
	}
	s.invalidate(ctx, goal.UserID)
	return res, nil
}

func (s *goalService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return storeErr(err)
	}
	s.log.Infow("[goal][delete][ok]", "user_id", ownerID, "goal_id", id)
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *goalService) invalidate(ctx context.Context, ownerID string) {
	invalidate(ctx, s.cache, s.log, cache.ListKey(cache.KindGoals, ownerID))
}

func withProgress(goal *models.Goal) *models.Goal {
	goal.Progress = progress.Percent(goal.Subtasks)
	return goal
}

// cleanSubtasks trims titles and rejects blank ones. A nil list becomes empty.
func cleanSubtasks(in []models.Subtask) (models.Subtasks, error) {
	out := make(models.Subtasks, 0, len(in))
	for i, st := range in {
		title, err := requireTitle(st.Title)
		if err != nil {
			return nil, validationf("subtask %d: title is required", i)
		}
		st.Title = title
		if st.Deadline != nil {
			d := st.Deadline.UTC()
			st.Deadline = &d
		}
		out = append(out, st)
	}
	return out, nil
}
