package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sloanb/pjourney/internal/domain"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// Create inserts a recipe and its ordered steps as one atomic unit.
func (s *RecipeStore) Create(ctx context.Context, r *domain.DevRecipe, steps []domain.DevRecipeStep) (*domain.DevRecipe, error) {
	var id int64
	err := InTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO dev_recipes (user_id, name, process_type, notes)
			VALUES (?, ?, ?, ?)
		`, r.UserID, r.Name, r.ProcessType, r.Notes)
		if err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return insertRecipeSteps(ctx, tx, id, steps)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, r.UserID, id)
}

// Update rewrites the recipe row and replaces its steps as one atomic unit.
func (s *RecipeStore) Update(ctx context.Context, r *domain.DevRecipe, steps []domain.DevRecipeStep) (*domain.DevRecipe, error) {
	err := InTx(ctx, s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE dev_recipes SET name = ?, process_type = ?, notes = ?
			WHERE id = ? AND user_id = ?
		`, r.Name, r.ProcessType, r.Notes, r.ID, r.UserID)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM dev_recipe_steps WHERE recipe_id = ?
		`, r.ID); err != nil {
			return fmt.Errorf("failed to clear recipe steps: %w", err)
		}
		return insertRecipeSteps(ctx, tx, r.ID, steps)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, r.UserID, r.ID)
}

func insertRecipeSteps(ctx context.Context, tx *sql.Tx, recipeID int64, steps []domain.DevRecipeStep) error {
	for i, step := range steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dev_recipe_steps (recipe_id, step_order, chemical_name,
				temperature, duration_seconds, agitation, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, recipeID, i, step.ChemicalName, step.Temperature, step.DurationSeconds,
			step.Agitation, step.Notes); err != nil {
			return fmt.Errorf("failed to create recipe step: %w", err)
		}
	}
	return nil
}

func (s *RecipeStore) GetByID(ctx context.Context, userID, id int64) (*domain.DevRecipe, error) {
	r := &domain.DevRecipe{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, process_type, notes, created_at
		FROM dev_recipes WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&r.ID, &r.UserID, &r.Name, &r.ProcessType, &r.Notes, &r.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) List(ctx context.Context, userID int64) ([]*domain.DevRecipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, process_type, notes, created_at
		FROM dev_recipes WHERE user_id = ? ORDER BY name ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var recipes []*domain.DevRecipe
	for rows.Next() {
		r := &domain.DevRecipe{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.ProcessType, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

func (s *RecipeStore) ListSteps(ctx context.Context, recipeID int64) ([]*domain.DevRecipeStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recipe_id, step_order, chemical_name, temperature,
			duration_seconds, agitation, notes
		FROM dev_recipe_steps WHERE recipe_id = ? ORDER BY step_order ASC, id ASC
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe steps: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var steps []*domain.DevRecipeStep
	for rows.Next() {
		st := &domain.DevRecipeStep{}
		var duration sql.NullInt64
		if err := rows.Scan(&st.ID, &st.RecipeID, &st.StepOrder, &st.ChemicalName,
			&st.Temperature, &duration, &st.Agitation, &st.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan recipe step: %w", err)
		}
		st.DurationSeconds = intPtr(duration)
		steps = append(steps, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe steps: %w", err)
	}

	return steps, nil
}

// Delete removes a recipe and its steps. Historical roll developments keep
// their snapshotted steps; only the template disappears.
func (s *RecipeStore) Delete(ctx context.Context, userID, id int64) error {
	return InTx(ctx, s.db, func(tx *sql.Tx) error {
		// Developments keep their snapshotted steps but drop the template link.
		if _, err := tx.ExecContext(ctx, `
			UPDATE roll_development SET recipe_id = NULL WHERE recipe_id = ?
		`, id); err != nil {
			return fmt.Errorf("failed to unlink recipe from developments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM dev_recipe_steps WHERE recipe_id IN
				(SELECT id FROM dev_recipes WHERE id = ? AND user_id = ?)
		`, id, userID); err != nil {
			return fmt.Errorf("failed to delete recipe steps: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM dev_recipes WHERE id = ? AND user_id = ?
		`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
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
