package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func (r *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, email, name, password_hash, created_at
        FROM users WHERE email = $1 LIMIT 1`, email).Scan(
		&u.ID, &u.Email, &name, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	return &u, nil
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, email, name, password_hash, created_at
        FROM users WHERE id = $1 LIMIT 1`, id).Scan(
		&u.ID, &u.Email, &name, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Name = name.String
	return &u, nil
}

func (r *PostgresRepo) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO users (id, email, name, password_hash, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	var s model.UserStats
	err := r.DB.QueryRowContext(ctx, `
        SELECT user_id, xp, level, updated_at
        FROM user_stats WHERE user_id = $1`, userID).Scan(
		&s.UserID, &s.XP, &s.Level, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return &model.UserStats{UserID: userID, XP: 0, Level: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepo) SaveUserStats(ctx context.Context, s *model.UserStats) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO user_stats (user_id, xp, level, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (user_id)
        DO UPDATE SET xp = EXCLUDED.xp, level = EXCLUDED.level, updated_at = now()`,
		s.UserID, s.XP, s.Level,
	)
	return err
}

func (r *PostgresRepo) CreateActivityLog(ctx context.Context, a *model.ActivityLog) error {
	metadata := a.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO activity_logs (user_id, action_type, item_type, item_id, item_title, description, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.UserID, a.ActionType, a.ItemType, a.ItemID, a.ItemTitle, a.Description, metadata,
	)
	return err
}

func (r *PostgresRepo) ListActivityLogs(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, action_type, item_type, item_id, item_title, description, metadata, created_at
        FROM activity_logs WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var a model.ActivityLog
		var itemID, itemTitle, description sql.NullString
		var metadata []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActionType, &a.ItemType,
			&itemID, &itemTitle, &description, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ItemID = itemID.String
		a.ItemTitle = itemTitle.String
		a.Description = description.String
		a.Metadata = metadata
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
