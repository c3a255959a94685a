package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	d, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func TestOpenInMemory(t *testing.T) {
	d := openMemory(t)
	assert.NoError(t, d.Ping())
}

func TestEnsureSchemaCreatesTables(t *testing.T) {
	d := openMemory(t)
	require.NoError(t, EnsureSchema(d))

	for _, table := range []string{
		"users", "cameras", "camera_issues", "lenses", "lens_notes",
		"film_stocks", "rolls", "frames", "roll_development",
		"development_steps", "dev_recipes", "dev_recipe_steps", "cloud_settings",
	} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	d := openMemory(t)
	require.NoError(t, EnsureSchema(d))
	assert.NoError(t, EnsureSchema(d))
}

func TestEnsureSchemaAddsColumnsToOldDatabase(t *testing.T) {
	d := openMemory(t)
	require.NoError(t, EnsureSchema(d))

	// The base migration predates these columns; the additive pass must have
	// brought them in.
	for table, cols := range additiveColumns {
		existing, err := tableColumns(d, table)
		require.NoError(t, err)
		for _, col := range cols {
			assert.True(t, existing[col.name], "%s.%s should exist", table, col.name)
		}
	}
}

func TestEnsureColumnsOnPartialSchema(t *testing.T) {
	d := openMemory(t)

	// An old database file with a frames table that predates the rating
	// column. ensureColumns must add only what is missing and skip tables
	// that do not exist at all.
	_, err := d.Exec(`CREATE TABLE frames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		roll_id INTEGER NOT NULL,
		frame_number INTEGER NOT NULL
	)`)
	require.NoError(t, err)

	require.NoError(t, ensureColumns(d))

	existing, err := tableColumns(d, "frames")
	require.NoError(t, err)
	assert.True(t, existing["rating"])

	// Second run is a clean no-op.
	assert.NoError(t, ensureColumns(d))
}

func TestFrameSequenceUniquePerRoll(t *testing.T) {
	d := openMemory(t)
	require.NoError(t, EnsureSchema(d))

	_, err := d.Exec(`INSERT INTO users (username, password_hash) VALUES ('u', 'x')`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO film_stocks (user_id, name) VALUES (1, 'HP5')`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO rolls (user_id, film_stock_id) VALUES (1, 1)`)
	require.NoError(t, err)

	_, err = d.Exec(`INSERT INTO frames (roll_id, frame_number) VALUES (1, 1)`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO frames (roll_id, frame_number) VALUES (1, 1)`)
	assert.Error(t, err, "duplicate frame number on the same roll must be rejected")
}
