package database

import (
	"context"
	"testing"
	"time"

	"trailhead/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueueCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: "upsert",
		Entity:   "itinerary",
		RecordID: 100,
		Payload:  `{"test": true}`,
		Status:   models.SyncStatusPending,
	}

	// Create
	err := db.CreateSyncTask(ctx, task)
	require.NoError(t, err)

	// Get Pending
	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(100), tasks[0].RecordID)
	assert.Equal(t, "itinerary", tasks[0].Entity)

	// Update Status
	err = db.UpdateSyncTaskStatus(ctx, tasks[0].ID, models.SyncStatusCompleted, "", nil)
	require.NoError(t, err)

	tasks, _ = db.GetPendingSyncTasks(ctx, 10)
	assert.Len(t, tasks, 0)

	// Failed tasks
	errMsg := "some error"
	err1 := db.CreateSyncTask(ctx, &models.SyncTask{TaskType: "delete", Entity: "destination", RecordID: 101, Status: models.SyncStatusFailed, LastError: &errMsg})
	require.NoError(t, err1)
	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
	assert.Equal(t, "some error", *failed[0].LastError)

	// Retry logic
	task2 := &models.SyncTask{TaskType: "upsert", Entity: "itinerary", RecordID: 102, Status: models.SyncStatusPending}
	err2 := db.CreateSyncTask(ctx, task2)
	require.NoError(t, err2)

	nextRetry := time.Now().Add(time.Hour)
	err = db.UpdateSyncTaskStatus(ctx, task2.ID, models.SyncStatusRetry, "temporary error", &nextRetry)
	require.NoError(t, err)

	// Should not be returned by GetPendingSyncTasks because nextRetry is in the future
	tasks, _ = db.GetPendingSyncTasks(ctx, 10)
	for _, task := range tasks {
		if task.ID == task2.ID {
			assert.Fail(t, "task with future retry should not be pending")
		}
	}

	// Update to past retry
	pastRetry := time.Now().Add(-time.Hour)
	err = db.UpdateSyncTaskStatus(ctx, task2.ID, models.SyncStatusRetry, "temporary error", &pastRetry)
	require.NoError(t, err)
	tasks, _ = db.GetPendingSyncTasks(ctx, 10)
	found := false
	for _, task := range tasks {
		if task.ID == task2.ID {
			found = true
			assert.Equal(t, 2, task.RetryCount)
		}
	}
	assert.True(t, found)
}

func TestPurgeSyncTasks(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "upsert", Entity: "itinerary", RecordID: 1, Status: models.SyncStatusPending}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil))

	n, err := db.PurgeSyncTasks(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.PurgeSyncTasks(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
