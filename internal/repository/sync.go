package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

func (r *PostgresRepo) ListMappings(ctx context.Context, userID, provider string, itemType model.ItemType) ([]model.SyncMapping, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, provider, item_type, local_id, remote_id, last_synced_at
        FROM sync_mappings
        WHERE user_id = $1 AND provider = $2 AND item_type = $3`,
		userID, provider, itemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []model.SyncMapping
	for rows.Next() {
		var m model.SyncMapping
		if err := rows.Scan(&m.ID, &m.UserID, &m.Provider, &m.ItemType,
			&m.LocalID, &m.RemoteID, &m.LastSyncedAt); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpsertMapping reuses the row keyed by (user, provider, item_type, remote_id)
// so re-syncs never duplicate the ledger.
func (r *PostgresRepo) UpsertMapping(ctx context.Context, m *model.SyncMapping) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO sync_mappings (id, user_id, provider, item_type, local_id, remote_id, last_synced_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, provider, item_type, remote_id)
        DO UPDATE SET local_id = EXCLUDED.local_id, last_synced_at = EXCLUDED.last_synced_at`,
		m.ID, m.UserID, m.Provider, m.ItemType, m.LocalID, m.RemoteID, m.LastSyncedAt,
	)
	return err
}

// UpdateMapping re-points an existing ledger row by its primary key. Needed
// when a pass pushes a replacement remote task: the new remote id matches no
// row, so the remote-id-keyed upsert would insert instead of re-pointing.
func (r *PostgresRepo) UpdateMapping(ctx context.Context, m *model.SyncMapping) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE sync_mappings
        SET local_id = $1, remote_id = $2, last_synced_at = $3
        WHERE id = $4 AND user_id = $5`,
		m.LocalID, m.RemoteID, m.LastSyncedAt, m.ID, m.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepo) DeleteMapping(ctx context.Context, userID, provider, id string) error {
	_, err := r.DB.ExecContext(ctx, `
        DELETE FROM sync_mappings WHERE user_id = $1 AND provider = $2 AND id = $3`,
		userID, provider, id)
	return err
}

// DeleteMappings wipes the whole ledger for a user+provider. Local and
// remote data are left untouched; the next sync rebuilds the mappings.
func (r *PostgresRepo) DeleteMappings(ctx context.Context, userID, provider string) error {
	_, err := r.DB.ExecContext(ctx, `
        DELETE FROM sync_mappings WHERE user_id = $1 AND provider = $2`,
		userID, provider)
	return err
}

func (r *PostgresRepo) GetCredentials(ctx context.Context, userID string) (*model.Credentials, error) {
	var c model.Credentials
	var refresh sql.NullString
	err := r.DB.QueryRowContext(ctx, `
        SELECT user_id, access_token, refresh_token, expires_at, created_at, updated_at
        FROM integration_credentials WHERE user_id = $1`, userID).Scan(
		&c.UserID, &c.AccessToken, &refresh, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.RefreshToken = refresh.String
	return &c, nil
}

func (r *PostgresRepo) SaveCredentials(ctx context.Context, c *model.Credentials) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO integration_credentials (user_id, access_token, refresh_token, expires_at, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (user_id)
        DO UPDATE SET access_token = EXCLUDED.access_token,
                      refresh_token = EXCLUDED.refresh_token,
                      expires_at = EXCLUDED.expires_at,
                      updated_at = now()`,
		c.UserID, c.AccessToken, c.RefreshToken, c.ExpiresAt,
	)
	return err
}

func (r *PostgresRepo) DeleteCredentials(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
        DELETE FROM integration_credentials WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresRepo) CreateSyncHistory(ctx context.Context, userID, syncType, status string, durationMs int64, details json.RawMessage) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO sync_history (user_id, sync_type, status, duration_ms, details)
        VALUES ($1, $2, $3, $4, $5)`,
		userID, syncType, status, durationMs, details)
	return err
}

func (r *PostgresRepo) GetSyncHistory(ctx context.Context, userID string, limit int) ([]model.SyncHistory, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, sync_time, sync_type, status, duration_ms, details
        FROM sync_history WHERE user_id = $1
        ORDER BY sync_time DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.SyncHistory
	for rows.Next() {
		var h model.SyncHistory
		var details []byte
		if err := rows.Scan(&h.ID, &h.UserID, &h.SyncTime, &h.SyncType,
			&h.Status, &h.DurationMs, &details); err != nil {
			return nil, err
		}
		h.Details = details
		history = append(history, h)
	}
	return history, rows.Err()
}
