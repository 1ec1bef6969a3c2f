package database

import (
	"context"
	"testing"

	"trailhead/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogKindsAreSeparateTables(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, kind := range []models.Kind{models.KindTrail, models.KindActivity, models.KindClimbing} {
		e := &models.CatalogEntry{
			Kind:       kind,
			Name:       "Entry " + string(kind),
			Difficulty: models.DifficultyModerate,
			Highlights: []string{"views"},
			Status:     models.StatusActive,
		}
		require.NoError(t, db.CreateCatalogEntry(ctx, e))
	}

	trails, total, err := db.ListCatalogEntries(ctx, models.KindTrail, models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Entry trails", trails[0].Name)
	assert.Equal(t, models.KindTrail, trails[0].Kind)
	assert.Equal(t, []string{"views"}, trails[0].Highlights)
}

func TestCatalogEntryUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	e := &models.CatalogEntry{Kind: models.KindClimbing, Name: "Island Peak", Price: 500, Status: models.StatusActive}
	require.NoError(t, db.CreateCatalogEntry(ctx, e))

	e.Name = "Island Peak (6189m)"
	e.Highlights = nil
	require.NoError(t, db.UpdateCatalogEntry(ctx, e.ID, e))

	got, err := db.GetCatalogEntry(ctx, models.KindClimbing, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Island Peak (6189m)", got.Name)
	assert.Equal(t, []string{}, got.Highlights)

	_, err = db.GetCatalogEntry(ctx, models.KindTrail, e.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, db.DeleteCatalogEntry(ctx, models.KindClimbing, e.ID))
	assert.ErrorIs(t, db.DeleteCatalogEntry(ctx, models.KindClimbing, e.ID), models.ErrNotFound)
}

func TestCatalogUnknownKind(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, _, err := db.ListCatalogEntries(context.Background(), models.Kind("users; DROP TABLE trails"), models.ListQuery{})
	assert.Error(t, err)
}
