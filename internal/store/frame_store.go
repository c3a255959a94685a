package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type FrameStore struct {
	db *sql.DB
}

func NewFrameStore(db *sql.DB) *FrameStore {
	return &FrameStore{db: db}
}

const frameColumns = `id, roll_id, frame_number, subject, aperture, shutter_speed,
	lens_id, date_taken, location, rating, notes`

func scanFrame(row interface{ Scan(...any) error }) (*domain.Frame, error) {
	f := &domain.Frame{}
	var (
		lensID    sql.NullInt64
		dateTaken sql.NullTime
		rating    sql.NullInt64
	)
	err := row.Scan(&f.ID, &f.RollID, &f.FrameNumber, &f.Subject, &f.Aperture,
		&f.ShutterSpeed, &lensID, &dateTaken, &f.Location, &rating, &f.Notes)
	if err != nil {
		return nil, err
	}
	f.LensID = int64Ptr(lensID)
	f.DateTaken = timePtr(dateTaken)
	f.Rating = intPtr(rating)
	return f, nil
}

// BulkCreateTx pre-materializes count frames for a roll inside a caller-owned
// transaction, numbered 1..count, each seeded with the roll's default lens.
// Frames are never created one at a time by a user.
func (s *FrameStore) BulkCreateTx(ctx context.Context, tx *sql.Tx, rollID int64, count int, lensID *int64) error {
	if count <= 0 {
		return nil
	}

	query := `INSERT INTO frames (roll_id, frame_number, lens_id) VALUES `
	args := make([]any, 0, count*3)
	for i := 1; i <= count; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, rollID, i, lensID)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk-create frames: %w", err)
	}
	return nil
}

func (s *FrameStore) GetByID(ctx context.Context, id int64) (*domain.Frame, error) {
	f, err := scanFrame(s.db.QueryRowContext(ctx, `
		SELECT `+frameColumns+` FROM frames WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get frame: %w", err)
	}
	return f, nil
}

func (s *FrameStore) ListByRollID(ctx context.Context, rollID int64) ([]*domain.Frame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+frameColumns+` FROM frames WHERE roll_id = ? ORDER BY frame_number ASC
	`, rollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var frames []*domain.Frame
	for rows.Next() {
		f, err := scanFrame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frames: %w", err)
	}

	return frames, nil
}

func (s *FrameStore) CountByRollID(ctx context.Context, rollID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM frames WHERE roll_id = ?
	`, rollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return count, nil
}

// Update writes the mutable shooting fields. Roll membership and the frame
// number are fixed at creation.
func (s *FrameStore) Update(ctx context.Context, f *domain.Frame) (*domain.Frame, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE frames SET subject = ?, aperture = ?, shutter_speed = ?, lens_id = ?,
			date_taken = ?, location = ?, rating = ?, notes = ?
		WHERE id = ?
	`, f.Subject, f.Aperture, f.ShutterSpeed, f.LensID, f.DateTaken, f.Location,
		f.Rating, f.Notes, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update frame: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, f.ID)
}
