package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type DevelopmentStore struct {
	db *sql.DB
}

func NewDevelopmentStore(db *sql.DB) *DevelopmentStore {
	return &DevelopmentStore{db: db}
}

const developmentColumns = `id, roll_id, dev_type, process_type, lab_name, lab_contact,
	cost_amount, recipe_id, notes, created_at`

func scanDevelopment(row interface{ Scan(...any) error }) (*domain.RollDevelopment, error) {
	d := &domain.RollDevelopment{}
	var (
		devType     string
		processType sql.NullString
		labName     sql.NullString
		labContact  sql.NullString
		costAmount  sql.NullFloat64
		recipeID    sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.RollID, &devType, &processType, &labName, &labContact,
		&costAmount, &recipeID, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.DevType = domain.DevBranch(devType)
	d.ProcessType = stringPtr(processType)
	d.LabName = stringPtr(labName)
	d.LabContact = stringPtr(labContact)
	d.CostAmount = floatPtr(costAmount)
	d.RecipeID = int64Ptr(recipeID)
	return d, nil
}

// CreateTx inserts a development record with its realized steps inside a
// caller-owned transaction. Steps are written as snapshots: later edits to a
// recipe never alter a roll's recorded development.
func (s *DevelopmentStore) CreateTx(ctx context.Context, tx *sql.Tx, d *domain.RollDevelopment, steps []domain.DevelopmentStep) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO roll_development (roll_id, dev_type, process_type, lab_name,
			lab_contact, cost_amount, recipe_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.RollID, string(d.DevType), d.ProcessType, d.LabName, d.LabContact,
		d.CostAmount, d.RecipeID, d.Notes)
	if err != nil {
		return fmt.Errorf("failed to create roll development: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	d.ID = id

	for i, step := range steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO development_steps (development_id, step_order, chemical_name,
				temperature, duration_seconds, agitation, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, i, step.ChemicalName, step.Temperature, step.DurationSeconds,
			step.Agitation, step.Notes); err != nil {
			return fmt.Errorf("failed to create development step: %w", err)
		}
	}
	return nil
}

func (s *DevelopmentStore) GetByRollID(ctx context.Context, rollID int64) (*domain.RollDevelopment, error) {
	d, err := scanDevelopment(s.db.QueryRowContext(ctx, `
		SELECT `+developmentColumns+` FROM roll_development WHERE roll_id = ?
	`, rollID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roll development: %w", err)
	}
	return d, nil
}

func (s *DevelopmentStore) ListSteps(ctx context.Context, developmentID int64) ([]*domain.DevelopmentStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, development_id, step_order, chemical_name, temperature,
			duration_seconds, agitation, notes
		FROM development_steps WHERE development_id = ? ORDER BY step_order ASC, id ASC
	`, developmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list development steps: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var steps []*domain.DevelopmentStep
	for rows.Next() {
		st := &domain.DevelopmentStep{}
		var duration sql.NullInt64
		if err := rows.Scan(&st.ID, &st.DevelopmentID, &st.StepOrder, &st.ChemicalName,
			&st.Temperature, &duration, &st.Agitation, &st.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan development step: %w", err)
		}
		st.DurationSeconds = intPtr(duration)
		steps = append(steps, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating development steps: %w", err)
	}

	return steps, nil
}
