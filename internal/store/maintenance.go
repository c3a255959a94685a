package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Optimize compacts the database file with VACUUM. A failure is surfaced to
// the caller but leaves the store usable for other operations.
func Optimize(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
