package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type RollStore struct {
	db *sql.DB
}

func NewRollStore(db *sql.DB) *RollStore {
	return &RollStore{db: db}
}

const rollColumns = `id, user_id, film_stock_id, camera_id, default_lens_id, status,
	loaded_at, finished_at, sent_at, developed_at, notes, title, push_pull_stops,
	scan_date, scan_notes, location, created_at`

func scanRoll(row interface{ Scan(...any) error }) (*domain.Roll, error) {
	r := &domain.Roll{}
	var (
		cameraID    sql.NullInt64
		lensID      sql.NullInt64
		status      string
		loadedAt    sql.NullTime
		finishedAt  sql.NullTime
		sentAt      sql.NullTime
		developedAt sql.NullTime
		scanDate    sql.NullTime
	)
	err := row.Scan(&r.ID, &r.UserID, &r.FilmStockID, &cameraID, &lensID, &status,
		&loadedAt, &finishedAt, &sentAt, &developedAt, &r.Notes, &r.Title,
		&r.PushPullStops, &scanDate, &r.ScanNotes, &r.Location, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.CameraID = int64Ptr(cameraID)
	r.DefaultLensID = int64Ptr(lensID)
	r.Status = domain.RollStatus(status)
	r.LoadedAt = timePtr(loadedAt)
	r.FinishedAt = timePtr(finishedAt)
	r.SentAt = timePtr(sentAt)
	r.DevelopedAt = timePtr(developedAt)
	r.ScanDate = timePtr(scanDate)
	return r, nil
}

// CreateTx inserts a fresh roll inside a caller-owned transaction and
// populates the generated ID. The lifecycle engine pairs this with the film
// stock quantity decrement.
func (s *RollStore) CreateTx(ctx context.Context, tx *sql.Tx, r *domain.Roll) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO rolls (user_id, film_stock_id, status, notes, title,
			push_pull_stops, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.UserID, r.FilmStockID, string(domain.StatusFresh), r.Notes, r.Title,
		r.PushPullStops, r.Location)
	if err != nil {
		return fmt.Errorf("failed to create roll: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.Status = domain.StatusFresh
	return nil
}

func (s *RollStore) GetByID(ctx context.Context, userID, id int64) (*domain.Roll, error) {
	return getRoll(ctx, s.db, userID, id)
}

func (s *RollStore) GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id int64) (*domain.Roll, error) {
	return getRoll(ctx, tx, userID, id)
}

func getRoll(ctx context.Context, q querier, userID, id int64) (*domain.Roll, error) {
	r, err := scanRoll(q.QueryRowContext(ctx, `
		SELECT `+rollColumns+` FROM rolls WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roll: %w", err)
	}
	return r, nil
}

// List returns the user's rolls, newest first, optionally filtered by status.
func (s *RollStore) List(ctx context.Context, userID int64, status *domain.RollStatus) ([]*domain.Roll, error) {
	query := `SELECT ` + rollColumns + ` FROM rolls WHERE user_id = ?`
	args := []any{userID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolls: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var rolls []*domain.Roll
	for rows.Next() {
		r, err := scanRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}
		rolls = append(rolls, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rolls: %w", err)
	}

	return rolls, nil
}

// UpdateDetails edits the roll fields a user may change at any status:
// notes, title, push/pull, scan metadata, and location. Status, lifecycle
// dates, and the film stock reference are never touched here.
func (s *RollStore) UpdateDetails(ctx context.Context, r *domain.Roll) (*domain.Roll, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rolls SET notes = ?, title = ?, push_pull_stops = ?, scan_date = ?,
			scan_notes = ?, location = ?
		WHERE id = ? AND user_id = ?
	`, r.Notes, r.Title, r.PushPullStops, r.ScanDate, r.ScanNotes, r.Location,
		r.ID, r.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update roll: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, r.UserID, r.ID)
}

// UpdateLifecycleTx writes the status, equipment references, and lifecycle
// dates inside a caller-owned transaction. Only the lifecycle engine calls
// this.
func (s *RollStore) UpdateLifecycleTx(ctx context.Context, tx *sql.Tx, r *domain.Roll) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE rolls SET camera_id = ?, default_lens_id = ?, status = ?,
			loaded_at = ?, finished_at = ?, sent_at = ?, developed_at = ?
		WHERE id = ? AND user_id = ?
	`, r.CameraID, r.DefaultLensID, string(r.Status), r.LoadedAt, r.FinishedAt,
		r.SentAt, r.DevelopedAt, r.ID, r.UserID)
	if err != nil {
		return fmt.Errorf("failed to update roll lifecycle: %w", err)
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

// Delete removes a roll together with its frames and development records,
// atomically. The film stock quantity is deliberately not restored.
func (s *RollStore) Delete(ctx context.Context, userID, id int64) error {
	return InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM development_steps WHERE development_id IN
				(SELECT rd.id FROM roll_development rd
				 JOIN rolls r ON rd.roll_id = r.id
				 WHERE r.id = ? AND r.user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete development steps: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM roll_development WHERE roll_id IN
				(SELECT id FROM rolls WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete roll development: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM frames WHERE roll_id IN
				(SELECT id FROM rolls WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete frames: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM rolls WHERE id = ? AND user_id = ?
		`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete roll: %w", err)
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
