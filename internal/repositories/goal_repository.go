package repositories

import (
	"context"
	"database/sql"
	"errors"

	"tracker/internal/models"
)

type GoalRepository interface {
	Store(ctx context.Context, goal *models.Goal) error
	FindByID(ctx context.Context, id, userID string) (*models.Goal, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAllByUser(ctx context.Context, userID string) error
	CountByStatus(ctx context.Context, userID string, status models.GoalStatus) (int, error)
}

type goalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, user_id, title, description, emoji, deadline, priority, status,
       subtasks, streak, completed_at, created_at, updated_at`

func scanGoal(row scanner, g *models.Goal) error {
	return row.Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Emoji, &g.Deadline, &g.Priority, &g.Status,
		&g.Subtasks, &g.Streak, &g.CompletedAt, &g.CreatedAt, &g.UpdatedAt,
	)
}

func (r *goalRepository) Store(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (
			id, user_id, title, description, emoji, deadline, priority, status,
			subtasks, streak, completed_at, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.ExecContext(ctx, query,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Emoji, goal.Deadline, goal.Priority, goal.Status,
		goal.Subtasks, goal.Streak, goal.CompletedAt, goal.CreatedAt, goal.UpdatedAt,
	)
	return err
}

func (r *goalRepository) FindByID(ctx context.Context, id, userID string) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	goal := &models.Goal{}
	if err := scanGoal(r.db.QueryRowContext(ctx, query, id, userID), goal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (r *goalRepository) FindAllByUser(ctx context.Context, userID string) ([]models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		var g models.Goal
		if err := scanGoal(rows, &g); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE goals SET
			title=$1, description=$2, emoji=$3, deadline=$4, priority=$5, status=$6,
			subtasks=$7, streak=$8, completed_at=$9, updated_at=$10
		WHERE id=$11 AND user_id=$12`
	res, err := r.db.ExecContext(ctx, query,
		goal.Title, goal.Description, goal.Emoji, goal.Deadline, goal.Priority, goal.Status,
		goal.Subtasks, goal.Streak, goal.CompletedAt, goal.UpdatedAt,
		goal.ID, goal.UserID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *goalRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *goalRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = $1`, userID)
	return err
}

func (r *goalRepository) CountByStatus(ctx context.Context, userID string, status models.GoalStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE user_id = $1 AND status = $2`, userID, status).Scan(&n)
	return n, err
}
