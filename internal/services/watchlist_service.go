package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker/internal/cache"
	"tracker/internal/clock"
	"tracker/internal/models"
	"tracker/internal/repositories"
)

type WatchlistService interface {
	Create(ctx context.Context, ownerID string, item *models.WatchlistItem) (*models.WatchlistItem, error)
	List(ctx context.Context, ownerID string) ([]models.WatchlistItem, error)
	Get(ctx context.Context, ownerID, id string) (*models.WatchlistItem, error)
	Update(ctx context.Context, ownerID, id string, patch models.WatchlistPatch) (*models.WatchlistItem, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type watchlistService struct {
	repo     repositories.WatchlistRepository
	activity ActivityService
	cache    cache.Cache
	clock    clock.Clock
	log      *zap.SugaredLogger
}

func NewWatchlistService(
	repo repositories.WatchlistRepository,
	activity ActivityService,
	c cache.Cache,
	clk clock.Clock,
	log *zap.SugaredLogger,
) WatchlistService {
	return &watchlistService{repo: repo, activity: activity, cache: c, clock: clk, log: log}
}

func (s *watchlistService) Create(ctx context.Context, ownerID string, item *models.WatchlistItem) (*models.WatchlistItem, error) {
	title, err := requireTitle(item.Title)
	if err != nil {
		return nil, err
	}
	item.Title = title
	if item.Type == "" {
		item.Type = models.MediaMovie
	}
	if !models.IsValidMediaType(item.Type) {
		return nil, validationf("invalid type %q", item.Type)
	}
	if item.Status == "" {
		item.Status = models.WatchNotStarted
	}
	if !models.IsValidWatchStatus(item.Status) {
		return nil, validationf("invalid status %q", item.Status)
	}
	if item.Rating != nil && !models.IsValidRating(*item.Rating) {
		return nil, validationf("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	now := s.clock.Now()
	item.ID = uuid.NewString()
	item.UserID = ownerID
	item.Genre = models.NewStringList(item.Genre)
	item.WatchedAt = nil
	if item.Status == models.WatchFinished {
		item.WatchedAt = &now
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Store(ctx, item); err != nil {
		return nil, err
	}
	s.log.Infow("[watchlist][create][ok]", "user_id", ownerID, "item_id", item.ID, "type", item.Type)
	s.activity.Record(ctx, ownerID, models.ActionWatchlistAdded, models.EntityWatchlist, item.ID,
		models.ActivityDetails{Title: item.Title, Type: item.Type})
	s.invalidate(ctx, ownerID)
	return item, nil
}

func (s *watchlistService) List(ctx context.Context, ownerID string) ([]models.WatchlistItem, error) {
	return cachedList(ctx, s.cache, s.log, cache.ListKey(cache.KindWatchlist, ownerID), func() ([]models.WatchlistItem, error) {
		return s.repo.FindAllByUser(ctx, ownerID)
	})
}

func (s *watchlistService) Get(ctx context.Context, ownerID, id string) (*models.WatchlistItem, error) {
	item, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return item, nil
}

func (s *watchlistService) Update(ctx context.Context, ownerID, id string, patch models.WatchlistPatch) (*models.WatchlistItem, error) {
	item, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	before := item.Status

	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		item.Title = title
	}
	if patch.Type != nil {
		if !models.IsValidMediaType(*patch.Type) {
			return nil, validationf("invalid type %q", *patch.Type)
		}
		item.Type = *patch.Type
	}
	if patch.Status != nil {
		if !models.IsValidWatchStatus(*patch.Status) {
			return nil, validationf("invalid status %q", *patch.Status)
		}
		item.Status = *patch.Status
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	if patch.Genre != nil {
		item.Genre = models.NewStringList(*patch.Genre)
	}
	if patch.Year != nil {
		y := *patch.Year
		item.Year = &y
	}
	if patch.Rating != nil {
		if !models.IsValidRating(*patch.Rating) {
			return nil, validationf("rating must be between %d and %d", models.MinRating, models.MaxRating)
		}
		r := *patch.Rating
		item.Rating = &r
	}
	if patch.PosterURL != nil {
		item.PosterURL = *patch.PosterURL
	}
	if patch.TrailerURL != nil {
		item.TrailerURL = *patch.TrailerURL
	}

	now := s.clock.Now()
	finishedNow := before != models.WatchFinished && item.Status == models.WatchFinished
	switch {
	case finishedNow:
		item.WatchedAt = &now
	case item.Status != models.WatchFinished:
		item.WatchedAt = nil
	}
	item.UpdatedAt = now

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("[watchlist][update][ok]", "user_id", ownerID, "item_id", id, "status", item.Status)
	if finishedNow {
		s.activity.Record(ctx, ownerID, models.ActionWatchlistFinished, models.EntityWatchlist, item.ID,
			models.ActivityDetails{Title: item.Title, Type: item.Type})
	}
	s.invalidate(ctx, ownerID)
	return item, nil
}

func (s *watchlistService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return storeErr(err)
	}
	s.log.Infow("[watchlist][delete][ok]", "user_id", ownerID, "item_id", id)
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *watchlistService) invalidate(ctx context.Context, ownerID string) {
	invalidate(ctx, s.cache, s.log, cache.ListKey(cache.KindWatchlist, ownerID))
}
