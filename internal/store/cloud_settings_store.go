package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sloanb/pjourney/internal/domain"
)

type CloudSettingsStore struct {
	db *sql.DB
}

func NewCloudSettingsStore(db *sql.DB) *CloudSettingsStore {
	return &CloudSettingsStore{db: db}
}

func (s *CloudSettingsStore) Get(ctx context.Context, userID int64) (*domain.CloudSettings, error) {
	cs := &domain.CloudSettings{}
	var lastSync sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, provider, remote_folder, last_sync_at,
			account_display_name, account_email, enabled, created_at, updated_at
		FROM cloud_settings WHERE user_id = ?
	`, userID).Scan(&cs.ID, &cs.UserID, &cs.Provider, &cs.RemoteFolder, &lastSync,
		&cs.AccountDisplayName, &cs.AccountEmail, &cs.Enabled, &cs.CreatedAt, &cs.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cloud settings: %w", err)
	}
	cs.LastSyncAt = timePtr(lastSync)
	return cs, nil
}

// Save upserts the single settings row for a user. The row is overwritten in
// place, never versioned.
func (s *CloudSettingsStore) Save(ctx context.Context, cs *domain.CloudSettings) (*domain.CloudSettings, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cloud_settings (user_id, provider, remote_folder, last_sync_at,
			account_display_name, account_email, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			provider = excluded.provider,
			remote_folder = excluded.remote_folder,
			last_sync_at = excluded.last_sync_at,
			account_display_name = excluded.account_display_name,
			account_email = excluded.account_email,
			enabled = excluded.enabled,
			updated_at = datetime('now')
	`, cs.UserID, cs.Provider, cs.RemoteFolder, cs.LastSyncAt,
		cs.AccountDisplayName, cs.AccountEmail, cs.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to save cloud settings: %w", err)
	}

	return s.Get(ctx, cs.UserID)
}

// MarkSynced records a successful sync. It is only called after the upload
// has reported success, never before.
func (s *CloudSettingsStore) MarkSynced(ctx context.Context, userID int64, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cloud_settings SET last_sync_at = ?, updated_at = datetime('now')
		WHERE user_id = ?
	`, at, userID)
	if err != nil {
		return fmt.Errorf("failed to mark cloud sync: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CloudSettingsStore) Delete(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM cloud_settings WHERE user_id = ?
	`, userID); err != nil {
		return fmt.Errorf("failed to delete cloud settings: %w", err)
	}
	return nil
}
