package db

import (
	"database/sql"
	"fmt"
)

// column is an additive schema change: a column the current model expects
// that older database files may lack. Definitions must carry a safe default
// or be nullable, because existing rows are backfilled by SQLite on ALTER.
type column struct {
	name       string
	definition string
}

// additiveColumns lists, per table, every column added after the base schema.
// Only additions ever appear here; columns are never dropped, renamed, or
// retyped. Unknown extra columns in a database written by newer code are left
// alone (queries select columns by name, never SELECT *).
var additiveColumns = map[string][]column{
	"cameras": {
		{"camera_type", "TEXT NOT NULL DEFAULT 'film'"},
		{"sensor_size", "TEXT"},
	},
	"film_stocks": {
		{"media_type", "TEXT NOT NULL DEFAULT 'analog'"},
		{"quantity_on_hand", "INTEGER NOT NULL DEFAULT 0"},
	},
	"rolls": {
		{"default_lens_id", "INTEGER REFERENCES lenses(id)"},
		{"title", "TEXT NOT NULL DEFAULT ''"},
		{"push_pull_stops", "REAL NOT NULL DEFAULT 0.0"},
		{"scan_date", "DATE"},
		{"scan_notes", "TEXT NOT NULL DEFAULT ''"},
		{"location", "TEXT NOT NULL DEFAULT ''"},
	},
	"frames": {
		{"rating", "INTEGER"},
	},
	"roll_development": {
		{"recipe_id", "INTEGER REFERENCES dev_recipes(id)"},
	},
}

// ensureColumns diffs each table's live columns against the expected model
// and adds whatever is missing. It inspects schema metadata up front rather
// than attempting the ALTER and swallowing the duplicate-column error, so a
// second run is a clean no-op.
func ensureColumns(db *sql.DB) error {
	for table, cols := range additiveColumns {
		existing, err := tableColumns(db, table)
		if err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		if len(existing) == 0 {
			// Nothing to alter on a table that does not exist yet.
			continue
		}
		for _, col := range cols {
			if existing[col.name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.definition)
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", table, col.name, err)
			}
		}
	}
	return nil
}

// tableColumns returns the set of column names currently present on table.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
