package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type LensStore struct {
	db *sql.DB
}

func NewLensStore(db *sql.DB) *LensStore {
	return &LensStore{db: db}
}

const lensColumns = `id, user_id, name, make, model, focal_length, max_aperture,
	filter_diameter, year_built, year_purchased, purchase_location, created_at, updated_at`

func scanLens(row interface{ Scan(...any) error }) (*domain.Lens, error) {
	l := &domain.Lens{}
	var (
		maxAperture      sql.NullFloat64
		filterDiameter   sql.NullFloat64
		yearBuilt        sql.NullInt64
		yearPurchased    sql.NullInt64
		purchaseLocation sql.NullString
	)
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Make, &l.Model, &l.FocalLength,
		&maxAperture, &filterDiameter, &yearBuilt, &yearPurchased, &purchaseLocation,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.MaxAperture = floatPtr(maxAperture)
	l.FilterDiameter = floatPtr(filterDiameter)
	l.YearBuilt = intPtr(yearBuilt)
	l.YearPurchased = intPtr(yearPurchased)
	l.PurchaseLocation = stringPtr(purchaseLocation)
	return l, nil
}

func (s *LensStore) Create(ctx context.Context, l *domain.Lens) (*domain.Lens, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO lenses (user_id, name, make, model, focal_length, max_aperture,
			filter_diameter, year_built, year_purchased, purchase_location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.UserID, l.Name, l.Make, l.Model, l.FocalLength, l.MaxAperture,
		l.FilterDiameter, l.YearBuilt, l.YearPurchased, l.PurchaseLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to create lens: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, l.UserID, id)
}

func (s *LensStore) GetByID(ctx context.Context, userID, id int64) (*domain.Lens, error) {
	l, err := scanLens(s.db.QueryRowContext(ctx, `
		SELECT `+lensColumns+` FROM lenses WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lens: %w", err)
	}
	return l, nil
}

func (s *LensStore) List(ctx context.Context, userID int64) ([]*domain.Lens, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+lensColumns+` FROM lenses WHERE user_id = ? ORDER BY name ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lenses: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var lenses []*domain.Lens
	for rows.Next() {
		l, err := scanLens(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lens: %w", err)
		}
		lenses = append(lenses, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lenses: %w", err)
	}

	return lenses, nil
}

func (s *LensStore) Update(ctx context.Context, l *domain.Lens) (*domain.Lens, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lenses SET name = ?, make = ?, model = ?, focal_length = ?,
			max_aperture = ?, filter_diameter = ?, year_built = ?, year_purchased = ?,
			purchase_location = ?, updated_at = datetime('now')
		WHERE id = ? AND user_id = ?
	`, l.Name, l.Make, l.Model, l.FocalLength, l.MaxAperture, l.FilterDiameter,
		l.YearBuilt, l.YearPurchased, l.PurchaseLocation, l.ID, l.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update lens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, l.UserID, l.ID)
}

// Delete removes a lens together with its notes, atomically.
func (s *LensStore) Delete(ctx context.Context, userID, id int64) error {
	return InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM lens_notes WHERE lens_id IN
				(SELECT id FROM lenses WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete lens notes: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM lenses WHERE id = ? AND user_id = ?
		`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete lens: %w", err)
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

// --- Notes ---

func (s *LensStore) CreateNote(ctx context.Context, lensID int64, content string) (*domain.LensNote, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO lens_notes (lens_id, content) VALUES (?, ?)
	`, lensID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create lens note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetNote(ctx, id)
}

func (s *LensStore) GetNote(ctx context.Context, id int64) (*domain.LensNote, error) {
	n := &domain.LensNote{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, lens_id, content, created_at, updated_at FROM lens_notes WHERE id = ?
	`, id).Scan(&n.ID, &n.LensID, &n.Content, &n.CreatedAt, &n.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lens note: %w", err)
	}
	return n, nil
}

func (s *LensStore) ListNotes(ctx context.Context, lensID int64) ([]*domain.LensNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lens_id, content, created_at, updated_at
		FROM lens_notes WHERE lens_id = ? ORDER BY created_at DESC, id DESC
	`, lensID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lens notes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var notes []*domain.LensNote
	for rows.Next() {
		n := &domain.LensNote{}
		if err := rows.Scan(&n.ID, &n.LensID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lens note: %w", err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lens notes: %w", err)
	}

	return notes, nil
}

func (s *LensStore) UpdateNote(ctx context.Context, id int64, content string) (*domain.LensNote, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lens_notes SET content = ?, updated_at = datetime('now') WHERE id = ?
	`, content, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update lens note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetNote(ctx, id)
}

func (s *LensStore) DeleteNote(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lens_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lens note: %w", err)
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
