package repository

import (
	"context"
	"database/sql"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func (r *PostgresRepo) ListNotes(ctx context.Context, userID string, includeDeleted bool) ([]model.Note, error) {
	query := `SELECT id, user_id, title, content, tags, is_deleted, deleted_at, created_at, updated_at
        FROM notes WHERE user_id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var content, tags sql.NullString
		var deletedAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &content, &tags,
			&n.IsDeleted, &deletedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		n.Content = content.String
		n.Tags = tags.String
		if deletedAt.Valid {
			n.DeletedAt = &deletedAt.Time
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *PostgresRepo) GetNote(ctx context.Context, userID, id string, includeDeleted bool) (*model.Note, error) {
	query := `SELECT id, user_id, title, content, tags, is_deleted, deleted_at, created_at, updated_at
        FROM notes WHERE user_id = $1 AND id = $2`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}

	var n model.Note
	var content, tags sql.NullString
	var deletedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID, id).Scan(
		&n.ID, &n.UserID, &n.Title, &content, &tags,
		&n.IsDeleted, &deletedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Content = content.String
	n.Tags = tags.String
	if deletedAt.Valid {
		n.DeletedAt = &deletedAt.Time
	}
	return &n, nil
}

func (r *PostgresRepo) CreateNote(ctx context.Context, n *model.Note) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO notes (id, user_id, title, content, tags, is_deleted, deleted_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Title, n.Content, n.Tags, n.IsDeleted, n.DeletedAt, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) UpdateNote(ctx context.Context, n *model.Note) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE notes
        SET title = $3, content = $4, tags = $5, is_deleted = $6, deleted_at = $7, updated_at = $8
        WHERE user_id = $1 AND id = $2`,
		n.UserID, n.ID, n.Title, n.Content, n.Tags, n.IsDeleted, n.DeletedAt, n.UpdatedAt,
	)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err == nil && cnt == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (r *PostgresRepo) SoftDeleteNote(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE notes
        SET is_deleted = TRUE, deleted_at = now(), updated_at = now()
        WHERE user_id = $1 AND id = $2 AND is_deleted = FALSE`,
		userID, id,
	)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err == nil && cnt == 0 {
		return sql.ErrNoRows
	}
	return err
}

func (r *PostgresRepo) RestoreNote(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE notes
        SET is_deleted = FALSE, deleted_at = NULL, updated_at = now()
        WHERE user_id = $1 AND id = $2 AND is_deleted = TRUE`,
		userID, id,
	)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err == nil && cnt == 0 {
		return sql.ErrNoRows
	}
	return err
}
