package repositories

import (
	"context"
	"database/sql"
	"errors"

	"tracker/internal/models"
)

type WatchlistRepository interface {
	Store(ctx context.Context, item *models.WatchlistItem) error
	FindByID(ctx context.Context, id, userID string) (*models.WatchlistItem, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	Update(ctx context.Context, item *models.WatchlistItem) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}

type watchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

const watchlistColumns = `id, user_id, title, type, status, notes, genre, year, rating,
       poster_url, trailer_url, watched_at, created_at, updated_at`

func scanWatchlistItem(row scanner, w *models.WatchlistItem) error {
	return row.Scan(
		&w.ID, &w.UserID, &w.Title, &w.Type, &w.Status, &w.Notes, &w.Genre, &w.Year, &w.Rating,
		&w.PosterURL, &w.TrailerURL, &w.WatchedAt, &w.CreatedAt, &w.UpdatedAt,
	)
}

func (r *watchlistRepository) Store(ctx context.Context, item *models.WatchlistItem) error {
	query := `
		INSERT INTO watchlist_items (
			id, user_id, title, type, status, notes, genre, year, rating,
			poster_url, trailer_url, watched_at, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.UserID, item.Title, item.Type, item.Status, item.Notes, item.Genre, item.Year, item.Rating,
		item.PosterURL, item.TrailerURL, item.WatchedAt, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (r *watchlistRepository) FindByID(ctx context.Context, id, userID string) (*models.WatchlistItem, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_items WHERE id = $1 AND user_id = $2`
	item := &models.WatchlistItem{}
	if err := scanWatchlistItem(r.db.QueryRowContext(ctx, query, id, userID), item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *watchlistRepository) FindAllByUser(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_items WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		var w models.WatchlistItem
		if err := scanWatchlistItem(rows, &w); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *watchlistRepository) Update(ctx context.Context, item *models.WatchlistItem) error {
	query := `
		UPDATE watchlist_items SET
			title=$1, type=$2, status=$3, notes=$4, genre=$5, year=$6, rating=$7,
			poster_url=$8, trailer_url=$9, watched_at=$10, updated_at=$11
		WHERE id=$12 AND user_id=$13`
	res, err := r.db.ExecContext(ctx, query,
		item.Title, item.Type, item.Status, item.Notes, item.Genre, item.Year, item.Rating,
		item.PosterURL, item.TrailerURL, item.WatchedAt, item.UpdatedAt,
		item.ID, item.UserID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *watchlistRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *watchlistRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM watchlist_items WHERE user_id = $1`, userID)
	return err
}
