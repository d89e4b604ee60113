package repositories

import (
	"context"
	"database/sql"
	"errors"

	"tracker/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id, userID string) (*models.Task, error)
	FindAllByUser(ctx context.Context, userID string) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAllByUser(ctx context.Context, userID string) error
	CountByStatus(ctx context.Context, userID string, status models.TaskStatus) (int, error)

	// UpdateTimer writes the timer fields only if the stored version still
	// equals expectedVersion, bumping it by one. ok is false when another
	// writer got there first.
	UpdateTimer(ctx context.Context, task *models.Task, expectedVersion int64) (ok bool, err error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, priority, status, due_date, completed_at,
       pinned, tags, is_recurring, frequency, duration_minutes,
       timer_status, start_time, accumulated_time, version, created_at, updated_at`

func scanTask(row scanner, t *models.Task) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CompletedAt,
		&t.Pinned, &t.Tags, &t.Recurring.IsRecurring, &t.Recurring.Frequency, &t.DurationMinutes,
		&t.TimerStatus, &t.StartTime, &t.AccumulatedTime, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, description, priority, status, due_date, completed_at,
			pinned, tags, is_recurring, frequency, duration_minutes,
			timer_status, start_time, accumulated_time, version, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.UserID, task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.CompletedAt,
		task.Pinned, task.Tags, task.Recurring.IsRecurring, task.Recurring.Frequency, task.DurationMinutes,
		task.TimerStatus, task.StartTime, task.AccumulatedTime, task.Version, task.CreatedAt, task.UpdatedAt,
	)
	return err
}

func (r *taskRepository) FindByID(ctx context.Context, id, userID string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task := &models.Task{}
	if err := scanTask(r.db.QueryRowContext(ctx, query, id, userID), task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAllByUser(ctx context.Context, userID string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1
		ORDER BY pinned DESC, created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update writes the user-editable columns. Timer columns are owned by
// UpdateTimer so a concurrent edit cannot roll back a timer transition.
func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title=$1, description=$2, priority=$3, status=$4, due_date=$5, completed_at=$6,
			pinned=$7, tags=$8, is_recurring=$9, frequency=$10, duration_minutes=$11, updated_at=$12
		WHERE id=$13 AND user_id=$14`
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Priority, task.Status, task.DueDate, task.CompletedAt,
		task.Pinned, task.Tags, task.Recurring.IsRecurring, task.Recurring.Frequency, task.DurationMinutes, task.UpdatedAt,
		task.ID, task.UserID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *taskRepository) UpdateTimer(ctx context.Context, task *models.Task, expectedVersion int64) (bool, error) {
	query := `
		UPDATE tasks SET
			timer_status=$1, start_time=$2, accumulated_time=$3, version=$4, updated_at=$5
		WHERE id=$6 AND user_id=$7 AND version=$8`
	res, err := r.db.ExecContext(ctx, query,
		task.TimerStatus, task.StartTime, task.AccumulatedTime, expectedVersion+1, task.UpdatedAt,
		task.ID, task.UserID, expectedVersion,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	task.Version = expectedVersion + 1
	return true, nil
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *taskRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	return err
}

func (r *taskRepository) CountByStatus(ctx context.Context, userID string, status models.TaskStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status = $2`, userID, status).Scan(&n)
	return n, err
}
