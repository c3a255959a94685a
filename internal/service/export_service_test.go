package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollsCSVExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exports := NewExportService(f.db)

	stock := f.seedStock(t, 12, 2)
	camera := f.seedCamera(t)

	roll, err := f.rolls.CreateRoll(ctx, f.user.ID, CreateRollInput{
		FilmStockID: stock.ID,
		Title:       "Harbour walk",
		Location:    "Halifax",
	})
	require.NoError(t, err)
	_, err = f.rolls.Load(ctx, f.user.ID, roll.ID, camera.ID, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exports.RollsCSV(ctx, f.user.ID, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Roll ID", records[0][0])
	assert.Equal(t, "Harbour walk", records[1][1])
	assert.Equal(t, "Ilford HP5 Plus", records[1][2])
	assert.Equal(t, "FM2", records[1][5])
	assert.Equal(t, "loaded", records[1][7])
	// Neutral push/pull renders as an empty cell.
	assert.Equal(t, "", records[1][9])
}

func TestFramesJSONExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exports := NewExportService(f.db)

	stock := f.seedStock(t, 3, 1)
	camera := f.seedCamera(t)
	lens := f.seedLens(t)

	roll, err := f.rolls.CreateRoll(ctx, f.user.ID, CreateRollInput{
		FilmStockID: stock.ID,
		Title:       "Test roll",
	})
	require.NoError(t, err)
	_, err = f.rolls.Load(ctx, f.user.ID, roll.ID, camera.ID, &lens.ID)
	require.NoError(t, err)

	frames, err := f.frames.ListByRollID(ctx, roll.ID)
	require.NoError(t, err)
	rating := 5
	frames[0].Subject = "lighthouse"
	frames[0].Rating = &rating
	_, err = f.frames.Update(ctx, frames[0])
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exports.FramesJSON(ctx, f.user.ID, &buf))

	var out []FrameExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "Test roll", out[0].RollTitle)
	assert.Equal(t, 1, out[0].FrameNumber)
	assert.Equal(t, "lighthouse", out[0].Subject)
	assert.Equal(t, "50mm f/1.8", out[0].Lens)
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, 5, *out[0].Rating)
	assert.Nil(t, out[1].Rating)
}

func TestExportEmptyUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exports := NewExportService(f.db)

	var buf bytes.Buffer
	require.NoError(t, exports.RollsJSON(ctx, f.user.ID, &buf))

	var out []RollExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Empty(t, out)
}
