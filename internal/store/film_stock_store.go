package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type FilmStockStore struct {
	db *sql.DB
}

func NewFilmStockStore(db *sql.DB) *FilmStockStore {
	return &FilmStockStore{db: db}
}

const filmStockColumns = `id, user_id, brand, name, type, media_type, iso, format,
	frames_per_roll, quantity_on_hand, notes, created_at`

func scanFilmStock(row interface{ Scan(...any) error }) (*domain.FilmStock, error) {
	fs := &domain.FilmStock{}
	err := row.Scan(&fs.ID, &fs.UserID, &fs.Brand, &fs.Name, &fs.Type, &fs.MediaType,
		&fs.ISO, &fs.Format, &fs.FramesPerRoll, &fs.QuantityOnHand, &fs.Notes, &fs.CreatedAt)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *FilmStockStore) Create(ctx context.Context, fs *domain.FilmStock) (*domain.FilmStock, error) {
	if fs.FramesPerRoll < 0 {
		return nil, fmt.Errorf("frames per roll must not be negative")
	}
	if fs.QuantityOnHand < 0 {
		return nil, fmt.Errorf("quantity on hand must not be negative")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO film_stocks (user_id, brand, name, type, media_type, iso, format,
			frames_per_roll, quantity_on_hand, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fs.UserID, fs.Brand, fs.Name, fs.Type, fs.MediaType, fs.ISO, fs.Format,
		fs.FramesPerRoll, fs.QuantityOnHand, fs.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create film stock: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, fs.UserID, id)
}

func (s *FilmStockStore) GetByID(ctx context.Context, userID, id int64) (*domain.FilmStock, error) {
	return getFilmStock(ctx, s.db, userID, id)
}

// GetByIDTx reads a film stock inside a caller-owned transaction, so the
// lifecycle engine can validate and decrement as one atomic unit.
func (s *FilmStockStore) GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id int64) (*domain.FilmStock, error) {
	return getFilmStock(ctx, tx, userID, id)
}

func getFilmStock(ctx context.Context, q querier, userID, id int64) (*domain.FilmStock, error) {
	fs, err := scanFilmStock(q.QueryRowContext(ctx, `
		SELECT `+filmStockColumns+` FROM film_stocks WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get film stock: %w", err)
	}
	return fs, nil
}

func (s *FilmStockStore) List(ctx context.Context, userID int64) ([]*domain.FilmStock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+filmStockColumns+` FROM film_stocks
		WHERE user_id = ? ORDER BY brand ASC, name ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list film stocks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var stocks []*domain.FilmStock
	for rows.Next() {
		fs, err := scanFilmStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan film stock: %w", err)
		}
		stocks = append(stocks, fs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating film stocks: %w", err)
	}

	return stocks, nil
}

func (s *FilmStockStore) Update(ctx context.Context, fs *domain.FilmStock) (*domain.FilmStock, error) {
	if fs.FramesPerRoll < 0 {
		return nil, fmt.Errorf("frames per roll must not be negative")
	}
	if fs.QuantityOnHand < 0 {
		return nil, fmt.Errorf("quantity on hand must not be negative")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE film_stocks SET brand = ?, name = ?, type = ?, media_type = ?, iso = ?,
			format = ?, frames_per_roll = ?, quantity_on_hand = ?, notes = ?
		WHERE id = ? AND user_id = ?
	`, fs.Brand, fs.Name, fs.Type, fs.MediaType, fs.ISO, fs.Format,
		fs.FramesPerRoll, fs.QuantityOnHand, fs.Notes, fs.ID, fs.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update film stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, fs.UserID, fs.ID)
}

// Delete refuses to remove a film stock while rolls still reference it, so
// historical rolls are never orphaned.
func (s *FilmStockStore) Delete(ctx context.Context, userID, id int64) error {
	var refs int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rolls WHERE film_stock_id = ? AND user_id = ?
	`, id, userID).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count referencing rolls: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("film stock is referenced by %d roll(s): %w", refs, ErrConflict)
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM film_stocks WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete film stock: %w", err)
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

// DecrementQuantityTx subtracts one from quantity_on_hand inside a
// caller-owned transaction. The guard in the WHERE clause keeps the quantity
// from ever going negative: zero rows affected means the stock was exhausted.
func (s *FilmStockStore) DecrementQuantityTx(ctx context.Context, tx *sql.Tx, userID, id int64) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE film_stocks SET quantity_on_hand = quantity_on_hand - 1
		WHERE id = ? AND user_id = ? AND quantity_on_hand > 0
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to decrement film stock quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNoStock
	}
	return nil
}
