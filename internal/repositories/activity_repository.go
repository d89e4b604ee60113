package repositories

import (
	"context"
	"database/sql"
	"time"

	"tracker/internal/models"
)

// ActivityRepository is append-only: there is no update, and deletion only
// happens for a whole account.
type ActivityRepository interface {
	Append(ctx context.Context, a *models.Activity) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Activity, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.Activity, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Activity, error)
	DeleteAllByUser(ctx context.Context, userID string) error
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

const activityColumns = `id, user_id, action, entity_type, entity_id, details, created_at`

func (r *activityRepository) Append(ctx context.Context, a *models.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.UserID, a.Action, a.EntityType, a.EntityID, a.Details, a.CreatedAt,
	)
	return err
}

func (r *activityRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	return r.query(ctx, `SELECT `+activityColumns+` FROM activities WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
}

func (r *activityRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.Activity, error) {
	return r.query(ctx, `SELECT `+activityColumns+` FROM activities WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC, id DESC`, userID, since)
}

func (r *activityRepository) FindAllByUser(ctx context.Context, userID string) ([]models.Activity, error) {
	return r.query(ctx, `SELECT `+activityColumns+` FROM activities WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
}

func (r *activityRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE user_id = $1`, userID)
	return err
}

func (r *activityRepository) query(ctx context.Context, q string, args ...any) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
