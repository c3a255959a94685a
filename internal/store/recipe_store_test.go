package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloanb/pjourney/internal/domain"
)

func seedRecipe(t *testing.T, d *sql.DB, userID int64) *domain.DevRecipe {
	t.Helper()
	duration := 360
	recipe, err := NewRecipeStore(d).Create(context.Background(), &domain.DevRecipe{
		UserID:      userID,
		Name:        "HC-110 Dilution B",
		ProcessType: "B&W",
	}, []domain.DevRecipeStep{
		{ChemicalName: "HC-110", Temperature: "20C", DurationSeconds: &duration, Agitation: "first 30s, then 4 inversions per minute"},
		{ChemicalName: "Stop bath", Temperature: "20C"},
		{ChemicalName: "Fixer", Temperature: "20C"},
	})
	require.NoError(t, err)
	return recipe
}

func TestRecipeCreateWithSteps(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	recipes := NewRecipeStore(d)

	recipe := seedRecipe(t, d, user.ID)

	steps, err := recipes.ListSteps(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "HC-110", steps[0].ChemicalName)
	assert.Equal(t, 0, steps[0].StepOrder)
	assert.Equal(t, "Fixer", steps[2].ChemicalName)
}

func TestRecipeUpdateReplacesSteps(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	recipes := NewRecipeStore(d)

	recipe := seedRecipe(t, d, user.ID)

	recipe.Name = "Rodinal 1+50"
	updated, err := recipes.Update(ctx, recipe, []domain.DevRecipeStep{
		{ChemicalName: "Rodinal", Temperature: "20C"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rodinal 1+50", updated.Name)

	steps, err := recipes.ListSteps(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "Rodinal", steps[0].ChemicalName)
}

func TestRecipeDeleteKeepsDevelopmentSnapshots(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	user := seedUser(t, d, "ansel")
	stock := seedStock(t, d, user.ID, 36, 2)
	recipes := NewRecipeStore(d)
	devs := NewDevelopmentStore(d)

	recipe := seedRecipe(t, d, user.ID)
	roll := seedRoll(t, d, user.ID, stock.ID)

	dev := &domain.RollDevelopment{RollID: roll.ID, DevType: domain.DevBranchSelf, RecipeID: &recipe.ID}
	err := InTx(ctx, d, func(tx *sql.Tx) error {
		return devs.CreateTx(ctx, tx, dev, []domain.DevelopmentStep{
			{ChemicalName: "HC-110", Temperature: "20C"},
		})
	})
	require.NoError(t, err)

	require.NoError(t, recipes.Delete(ctx, user.ID, recipe.ID))

	gone, err := recipes.GetByID(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The development record survives with its snapshot, minus the link.
	got, err := devs.GetByRollID(ctx, roll.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.RecipeID)

	steps, err := devs.ListSteps(ctx, got.ID)
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}
