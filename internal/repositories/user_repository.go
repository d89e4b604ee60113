package repositories

import (
	"context"
	"database/sql"
	"errors"

	"tracker/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Upsert inserts the user or, when the id exists, overwrites its profile
	// and preferences. created_at is kept on conflict.
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, name, email, onboarded, preferences, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Onboarded, &u.Preferences, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	// ON CONFLICT ... DO UPDATE is understood by PostgreSQL and SQLite >= 3.24.
	const q = `
		INSERT INTO users (id, name, email, onboarded, preferences, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			onboarded = excluded.onboarded,
			preferences = excluded.preferences,
			updated_at = excluded.updated_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		user.ID, user.Name, user.Email, user.Onboarded, user.Preferences, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
