package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open opens (creating if necessary) the database file at dbPath and brings
// its schema forward to the current shape. Migration failure is fatal: the
// database handle is closed and an error returned, there is no degraded mode.
func Open(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The store has exactly one logical writer; a single connection also
	// keeps every multi-statement transaction on the same SQLite handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// EnsureSchema is idempotent and safe to call on every startup. It applies
// the embedded versioned migrations (table creation) and then adds any
// columns the current model expects that an older database file lacks.
func EnsureSchema(db *sql.DB) error {
	if err := runMigrations(db); err != nil {
		return err
	}
	return ensureColumns(db)
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
