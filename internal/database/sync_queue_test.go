package database

import (
	"context"
	"testing"
	"time"

	"washify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncQueueCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType:  models.TaskUpsert,
		BookingID: "b-100",
		Payload:   `{"test": true}`,
	}

	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.NotZero(t, task.ID)

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b-100", tasks[0].BookingID)

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, tasks[0].ID, models.TaskStatusCompleted, "", nil))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 0)

	// Failed tasks
	errMsg := "some error"
	require.NoError(t, db.CreateSyncTask(ctx, &models.SyncTask{TaskType: models.TaskNotifyOwner, BookingID: "b-101", Status: models.TaskStatusFailed, LastError: &errMsg}))
	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "some error", *failed[0].LastError)

	// Retry logic
	task2 := &models.SyncTask{TaskType: models.TaskDelete, BookingID: "b-102"}
	require.NoError(t, db.CreateSyncTask(ctx, task2))

	nextRetry := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task2.ID, models.TaskStatusRetry, "temporary error", &nextRetry))

	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	for _, pending := range tasks {
		assert.NotEqual(t, task2.ID, pending.ID, "task with future retry should not be pending")
	}

	pastRetry := time.Now().Add(-time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task2.ID, models.TaskStatusRetry, "temporary error", &pastRetry))
	tasks, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	found := false
	for _, pending := range tasks {
		if pending.ID == task2.ID {
			found = true
			assert.Equal(t, 2, pending.RetryCount)
			require.NotNil(t, pending.LastError)
			assert.Equal(t, "temporary error", *pending.LastError)
		}
	}
	assert.True(t, found)
}

func TestSyncQueueClaim(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: models.TaskNotifyOwner, BookingID: "b-1"}
	require.NoError(t, db.CreateSyncTask(ctx, task))

	ok, err := db.ClaimSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.ClaimSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := db.ReleaseProcessingSyncTasks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, task.ID, pending[0].ID)

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.TaskStatusCompleted, "", nil))
	ok, err = db.ClaimSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
