package repository

import (
	"context"
	"database/sql"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, tags,
        is_deleted, deleted_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var description, tags sql.NullString
	var dueDate, deletedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &description, &t.Status, &t.Priority,
		&dueDate, &tags, &t.IsDeleted, &deletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Tags = tags.String
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

// ListTasks returns a user's tasks. Soft-deleted rows are only included
// when includeDeleted is set; restore detection during sync needs them.
func (r *PostgresRepo) ListTasks(ctx context.Context, userID string, includeDeleted bool) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepo) GetTask(ctx context.Context, userID, id string, includeDeleted bool) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = $2`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	return scanTask(r.DB.QueryRowContext(ctx, query, userID, id))
}

func (r *PostgresRepo) CreateTask(ctx context.Context, t *model.Task) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, tags,
            is_deleted, deleted_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.Tags,
		t.IsDeleted, t.DeletedAt, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) UpdateTask(ctx context.Context, t *model.Task) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE tasks
        SET title = $3, description = $4, status = $5, priority = $6, due_date = $7,
            tags = $8, is_deleted = $9, deleted_at = $10, updated_at = $11
        WHERE user_id = $1 AND id = $2`,
		t.UserID, t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.Tags, t.IsDeleted, t.DeletedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (r *PostgresRepo) SoftDeleteTask(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE tasks
        SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
        WHERE user_id = $1 AND id = $2 AND is_deleted = FALSE`,
		userID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (r *PostgresRepo) RestoreTask(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE tasks
        SET is_deleted = FALSE, deleted_at = NULL, updated_at = now()
        WHERE user_id = $1 AND id = $2 AND is_deleted = TRUE`,
		userID, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}
