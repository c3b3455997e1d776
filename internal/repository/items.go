package repository

import (
	"context"
	"database/sql"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func (r *PostgresRepo) ListIdeas(ctx context.Context, userID string) ([]model.Idea, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, title, content, tags, created_at, updated_at
        FROM ideas WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		var i model.Idea
		var content, tags sql.NullString
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &content, &tags, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		i.Content = content.String
		i.Tags = tags.String
		ideas = append(ideas, i)
	}
	return ideas, rows.Err()
}

func (r *PostgresRepo) GetIdea(ctx context.Context, userID, id string) (*model.Idea, error) {
	var i model.Idea
	var content, tags sql.NullString
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, user_id, title, content, tags, created_at, updated_at
        FROM ideas WHERE user_id = $1 AND id = $2`, userID, id).Scan(
		&i.ID, &i.UserID, &i.Title, &content, &tags, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Content = content.String
	i.Tags = tags.String
	return &i, nil
}

func (r *PostgresRepo) CreateIdea(ctx context.Context, i *model.Idea) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO ideas (id, user_id, title, content, tags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.UserID, i.Title, i.Content, i.Tags, i.CreatedAt, i.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) UpdateIdea(ctx context.Context, i *model.Idea) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE ideas SET title = $3, content = $4, tags = $5, updated_at = $6
        WHERE user_id = $1 AND id = $2`,
		i.UserID, i.ID, i.Title, i.Content, i.Tags, i.UpdatedAt,
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

func (r *PostgresRepo) DeleteIdea(ctx context.Context, userID, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ideas WHERE user_id = $1 AND id = $2`, userID, id)
	return err
}

func (r *PostgresRepo) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, title, description, remind_at, is_completed, created_at, updated_at
        FROM reminders WHERE user_id = $1 ORDER BY remind_at NULLS LAST, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var m model.Reminder
		var description sql.NullString
		var remindAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &description, &remindAt,
			&m.IsCompleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Description = description.String
		if remindAt.Valid {
			m.RemindAt = &remindAt.Time
		}
		reminders = append(reminders, m)
	}
	return reminders, rows.Err()
}

func (r *PostgresRepo) GetReminder(ctx context.Context, userID, id string) (*model.Reminder, error) {
	var m model.Reminder
	var description sql.NullString
	var remindAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, user_id, title, description, remind_at, is_completed, created_at, updated_at
        FROM reminders WHERE user_id = $1 AND id = $2`, userID, id).Scan(
		&m.ID, &m.UserID, &m.Title, &description, &remindAt, &m.IsCompleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	if remindAt.Valid {
		m.RemindAt = &remindAt.Time
	}
	return &m, nil
}

func (r *PostgresRepo) CreateReminder(ctx context.Context, m *model.Reminder) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO reminders (id, user_id, title, description, remind_at, is_completed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.UserID, m.Title, m.Description, m.RemindAt, m.IsCompleted, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) UpdateReminder(ctx context.Context, m *model.Reminder) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE reminders SET title = $3, description = $4, remind_at = $5, is_completed = $6, updated_at = $7
        WHERE user_id = $1 AND id = $2`,
		m.UserID, m.ID, m.Title, m.Description, m.RemindAt, m.IsCompleted, m.UpdatedAt,
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

func (r *PostgresRepo) DeleteReminder(ctx context.Context, userID, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = $1 AND id = $2`, userID, id)
	return err
}
