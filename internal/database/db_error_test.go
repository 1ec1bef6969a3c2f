package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"trailhead/internal/config"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	assert.NoError(t, err)
	db.Close() // Close the DB to trigger errors

	ctx := context.Background()

	t.Run("CreateItinerary_Error", func(t *testing.T) {
		err := db.CreateItinerary(ctx, &models.Itinerary{Title: "x", Description: "y"})
		assert.Error(t, err)
		assert.False(t, models.IsValidation(err))
	})

	t.Run("ListItineraries_Error", func(t *testing.T) {
		_, _, err := db.ListItineraries(ctx, models.ListQuery{})
		assert.Error(t, err)
	})

	t.Run("GetDestination_Error", func(t *testing.T) {
		_, err := db.GetDestination(ctx, 1)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("UpdateCatalogEntry_Error", func(t *testing.T) {
		err := db.UpdateCatalogEntry(ctx, 1, &models.CatalogEntry{Kind: models.KindTrail, Name: "x"})
		assert.Error(t, err)
	})

	t.Run("ListReviews_Error", func(t *testing.T) {
		_, _, err := db.ListReviews(ctx, "itinerary", 1, models.ListQuery{})
		assert.Error(t, err)
	})

	t.Run("ListPosts_Error", func(t *testing.T) {
		_, _, err := db.ListPosts(ctx, models.ListQuery{})
		assert.Error(t, err)
	})

	t.Run("CreateSyncTask_Error", func(t *testing.T) {
		err := db.CreateSyncTask(ctx, &models.SyncTask{})
		assert.Error(t, err)
	})
}

func TestBackupService_BadStoragePath(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail.
	tmpFile := filepath.Join(t.TempDir(), "notadir")
	assert.NoError(t, os.WriteFile(tmpFile, nil, 0o644))

	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	assert.NoError(t, err)
	defer db.Close()

	bs := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: filepath.Join(tmpFile, "subdir")}, nil, &logger)
	_, err = bs.Backup(context.Background())
	assert.Error(t, err)

	_, err = bs.Cleanup()
	assert.NoError(t, err, "retention 0 disables cleanup")
}

func TestBackupService_ClosedDB(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(":memory:", &logger)
	assert.NoError(t, err)
	db.Close()

	bs := NewBackupService(db, config.BackupConfig{StoragePath: t.TempDir()}, nil, &logger)
	_, err = bs.Backup(context.Background())
	assert.Error(t, err)
}

func TestNewDB_Error(t *testing.T) {
	tmpDir := t.TempDir()

	logger := zerolog.New(io.Discard)
	_, err := NewDB(tmpDir, &logger)
	assert.Error(t, err)
}
