package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/models"
	"tracker/internal/repositories"
)

// UserService covers the account-level operations of the signed-in owner.
type UserService interface {
	// GetPreferences returns the stored preferences or the defaults when the
	// user has never saved any.
	GetPreferences(ctx context.Context, ownerID string) (models.Preferences, error)
	// PatchPreferences merges patch into the stored preferences, creating the
	// user row from profile on first write.
	PatchPreferences(ctx context.Context, profile models.ExportUser, patch models.PreferencesPatch) (models.Preferences, error)
	Export(ctx context.Context, profile models.ExportUser) (*models.Export, error)
	// DeleteAccount removes every record owned by ownerID. All deletions are
	// attempted; their errors are joined.
	DeleteAccount(ctx context.Context, ownerID string) error
}

type userService struct {
	users      repositories.UserRepository
	tasks      repositories.TaskRepository
	goals      repositories.GoalRepository
	watchlist  repositories.WatchlistRepository
	activities repositories.ActivityRepository
	cache      cache.Cache
	clock      clock.Clock
	log        *zap.SugaredLogger
}

// UserDeps groups the repositories the account operations span.
type UserDeps struct {
	Users      repositories.UserRepository
	Tasks      repositories.TaskRepository
	Goals      repositories.GoalRepository
	Watchlist  repositories.WatchlistRepository
	Activities repositories.ActivityRepository
}

func NewUserService(deps UserDeps, c cache.Cache, clk clock.Clock, log *zap.SugaredLogger) UserService {
	return &userService{
		users:      deps.Users,
		tasks:      deps.Tasks,
		goals:      deps.Goals,
		watchlist:  deps.Watchlist,
		activities: deps.Activities,
		cache:      c,
		clock:      clk,
		log:        log,
	}
}

func (s *userService) GetPreferences(ctx context.Context, ownerID string) (models.Preferences, error) {
	u, err := s.users.GetByID(ctx, ownerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, err
	}
	return u.Preferences, nil
}

func (s *userService) PatchPreferences(ctx context.Context, profile models.ExportUser, patch models.PreferencesPatch) (models.Preferences, error) {
	if patch.Theme != nil && !models.IsValidTheme(*patch.Theme) {
		return models.Preferences{}, validationf("invalid theme %q", *patch.Theme)
	}

	now := s.clock.Now()
	u, err := s.users.GetByID(ctx, profile.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		u = &models.User{
			ID:          profile.ID,
			Name:        profile.Name,
			Email:       profile.Email,
			Preferences: models.DefaultPreferences(),
			CreatedAt:   now,
		}
	case err != nil:
		return models.Preferences{}, err
	}

	u.Preferences = patch.Apply(u.Preferences)
	u.UpdatedAt = now
	if err := s.users.Upsert(ctx, u); err != nil {
		return models.Preferences{}, err
	}
	s.log.Infow("[user][preferences][ok]", "user_id", u.ID, "theme", u.Preferences.Theme)
	return u.Preferences, nil
}

func (s *userService) Export(ctx context.Context, profile models.ExportUser) (*models.Export, error) {
	ownerID := profile.ID
	out := &models.Export{ExportDate: s.clock.Now(), User: profile}

	if u, err := s.users.GetByID(ctx, ownerID); err == nil {
		if u.Name != "" {
			out.User.Name = u.Name
		}
		if u.Email != "" {
			out.User.Email = u.Email
		}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	var err error
	if out.Data.Tasks, err = s.tasks.FindAllByUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	for i := range out.Data.Tasks {
		t := &out.Data.Tasks[i]
		t.ElapsedTime = elapsedOf(t, out.ExportDate)
	}
	if out.Data.Goals, err = s.goals.FindAllByUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}
	for i := range out.Data.Goals {
		withProgress(&out.Data.Goals[i])
	}
	if out.Data.Watchlist, err = s.watchlist.FindAllByUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("export watchlist: %w", err)
	}
	if out.Data.History, err = s.activities.FindAllByUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	s.log.Infow("[user][export][ok]", "user_id", ownerID,
		"tasks", len(out.Data.Tasks), "goals", len(out.Data.Goals),
		"watchlist", len(out.Data.Watchlist), "history", len(out.Data.History))
	return out, nil
}

func (s *userService) DeleteAccount(ctx context.Context, ownerID string) error {
	steps := []struct {
		name string
		run  func(context.Context, string) error
	}{
		{"tasks", s.tasks.DeleteAllByUser},
		{"goals", s.goals.DeleteAllByUser},
		{"watchlist", s.watchlist.DeleteAllByUser},
		{"activities", s.activities.DeleteAllByUser},
		{"user", s.users.Delete},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, step := range steps {
		step := step
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := step.run(ctx, ownerID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("delete %s: %w", step.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	invalidate(ctx, s.cache, s.log, cache.OwnerKeys(ownerID)...)
	if err := errors.Join(errs...); err != nil {
		s.log.Errorw("[user][delete][err]", "user_id", ownerID, "err", err)
		return err
	}
	s.log.Infow("[user][delete][ok]", "user_id", ownerID)
	return nil
}
