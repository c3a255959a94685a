package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type CameraStore struct {
	db *sql.DB
}

func NewCameraStore(db *sql.DB) *CameraStore {
	return &CameraStore{db: db}
}

const cameraColumns = `id, user_id, name, make, model, serial_number, year_built,
	year_purchased, purchased_from, description, notes, camera_type, sensor_size,
	created_at, updated_at`

func scanCamera(row interface{ Scan(...any) error }) (*domain.Camera, error) {
	c := &domain.Camera{}
	var (
		yearBuilt     sql.NullInt64
		yearPurchased sql.NullInt64
		purchasedFrom sql.NullString
		sensorSize    sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Make, &c.Model, &c.SerialNumber,
		&yearBuilt, &yearPurchased, &purchasedFrom, &c.Description, &c.Notes,
		&c.CameraType, &sensorSize, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.YearBuilt = intPtr(yearBuilt)
	c.YearPurchased = intPtr(yearPurchased)
	c.PurchasedFrom = stringPtr(purchasedFrom)
	c.SensorSize = stringPtr(sensorSize)
	return c, nil
}

func (s *CameraStore) Create(ctx context.Context, c *domain.Camera) (*domain.Camera, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO cameras (user_id, name, make, model, serial_number, year_built,
			year_purchased, purchased_from, description, notes, camera_type, sensor_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.UserID, c.Name, c.Make, c.Model, c.SerialNumber, c.YearBuilt,
		c.YearPurchased, c.PurchasedFrom, c.Description, c.Notes, c.CameraType, c.SensorSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, c.UserID, id)
}

// GetByID returns the camera, or (nil, nil) when it does not exist or is
// owned by a different user.
func (s *CameraStore) GetByID(ctx context.Context, userID, id int64) (*domain.Camera, error) {
	c, err := scanCamera(s.db.QueryRowContext(ctx, `
		SELECT `+cameraColumns+` FROM cameras WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}
	return c, nil
}

func (s *CameraStore) List(ctx context.Context, userID int64) ([]*domain.Camera, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cameraColumns+` FROM cameras WHERE user_id = ? ORDER BY name ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var cameras []*domain.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cameras: %w", err)
	}

	return cameras, nil
}

func (s *CameraStore) Update(ctx context.Context, c *domain.Camera) (*domain.Camera, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cameras SET name = ?, make = ?, model = ?, serial_number = ?,
			year_built = ?, year_purchased = ?, purchased_from = ?, description = ?,
			notes = ?, camera_type = ?, sensor_size = ?, updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
	`, c.Name, c.Make, c.Model, c.SerialNumber, c.YearBuilt, c.YearPurchased,
		c.PurchasedFrom, c.Description, c.Notes, c.CameraType, c.SensorSize,
		c.ID, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update camera: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, c.UserID, c.ID)
}

// Delete removes a camera together with its issues, atomically.
func (s *CameraStore) Delete(ctx context.Context, userID, id int64) error {
	return InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM camera_issues WHERE camera_id IN
				(SELECT id FROM cameras WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete camera issues: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM cameras WHERE id = ? AND user_id = ?
		`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete camera: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Issues ---

func (s *CameraStore) CreateIssue(ctx context.Context, i *domain.CameraIssue) (*domain.CameraIssue, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO camera_issues (camera_id, description, date_noted, resolved, resolved_date, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, i.CameraID, i.Description, i.DateNoted, i.Resolved, i.ResolvedDate, i.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera issue: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetIssue(ctx, id)
}

func (s *CameraStore) GetIssue(ctx context.Context, id int64) (*domain.CameraIssue, error) {
	i := &domain.CameraIssue{}
	var resolvedDate sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, camera_id, description, date_noted, resolved, resolved_date, notes
		FROM camera_issues WHERE id = ?
	`, id).Scan(&i.ID, &i.CameraID, &i.Description, &i.DateNoted, &i.Resolved, &resolvedDate, &i.Notes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera issue: %w", err)
	}
	i.ResolvedDate = timePtr(resolvedDate)
	return i, nil
}

func (s *CameraStore) ListIssues(ctx context.Context, cameraID int64) ([]*domain.CameraIssue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, camera_id, description, date_noted, resolved, resolved_date, notes
		FROM camera_issues WHERE camera_id = ? ORDER BY date_noted DESC, id DESC
	`, cameraID)
	if err != nil {
		return nil, fmt.Errorf("failed to list camera issues: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var issues []*domain.CameraIssue
	for rows.Next() {
		i := &domain.CameraIssue{}
		var resolvedDate sql.NullTime
		if err := rows.Scan(&i.ID, &i.CameraID, &i.Description, &i.DateNoted,
			&i.Resolved, &resolvedDate, &i.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan camera issue: %w", err)
		}
		i.ResolvedDate = timePtr(resolvedDate)
		issues = append(issues, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating camera issues: %w", err)
	}

	return issues, nil
}

func (s *CameraStore) UpdateIssue(ctx context.Context, i *domain.CameraIssue) (*domain.CameraIssue, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE camera_issues SET description = ?, date_noted = ?, resolved = ?,
			resolved_date = ?, notes = ? WHERE id = ?
	`, i.Description, i.DateNoted, i.Resolved, i.ResolvedDate, i.Notes, i.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update camera issue: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetIssue(ctx, i.ID)
}

func (s *CameraStore) DeleteIssue(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM camera_issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete camera issue: %w", err)
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
