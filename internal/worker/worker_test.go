package worker

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"washify/internal/config"
	"washify/internal/database"
	"washify/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking(id string) *models.Booking {
	return &models.Booking{
		ID:       id,
		Name:     "tester",
		Phone:    "9876543210",
		City:     "Jaipur",
		Address:  "1 Main St",
		Date:     "2025-03-12",
		TimeSlot: "slot1",
		Packages: []string{"quick"},
		Car:      "sedan",
		Price:    399,
		Status:   models.StatusUpcoming,
	}
}

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSyncWorker(db, sheets, nil, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	require.NoError(t, worker.EnqueueTask(ctx, models.TaskUpsert, sampleBooking("b1")))

	task, ok := worker.tryLocalQueue()
	require.True(t, ok, "expected task in local queue")
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, status)
	assert.Equal(t, 0, retryCount)
	assert.False(t, nextRetry.Valid, "expected next_retry_at NULL on success")
	assert.Equal(t, 1, sheets.upsertCalls)
}

func TestProcessTaskOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	worker := NewSyncWorker(db, nil, notifier, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	require.NoError(t, worker.EnqueueTask(ctx, models.TaskNotifyOwner, sampleBooking("b1")))

	task, ok := worker.tryLocalQueue()
	require.True(t, ok)
	worker.processTask(ctx, &task)

	// the same task seen again through polling must not notify twice
	dup := task
	worker.processTask(ctx, &dup)
	assert.Equal(t, 1, notifier.calls)
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSyncWorker(db, sheets, nil, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	require.NoError(t, worker.EnqueueTask(ctx, models.TaskUpsert, sampleBooking("b2")))

	task, ok := worker.tryLocalQueue()
	require.True(t, ok)
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	assert.Equal(t, models.TaskStatusRetry, status)
	assert.Equal(t, 1, retryCount)
	require.True(t, nextRetry.Valid)
	assert.True(t, nextRetry.Time.After(time.Now().Add(-time.Second)))

	// retried task is not due yet
	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessTaskFailToDeadLetter(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	notifier := &fakeNotifier{err: errors.New("smtp down")}
	worker := NewSyncWorker(db, nil, notifier, rdb, RetryPolicy{MaxRetries: 1}, nil)

	ctx := context.Background()
	require.NoError(t, worker.EnqueueTask(ctx, models.TaskNotifyOwner, sampleBooking("b3")))

	task, ok := worker.tryRedis(ctx)
	require.True(t, ok, "expected task in redis queue")
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	assert.Equal(t, models.TaskStatusFailed, status)

	dead, err := rdb.LLen(ctx, worker.deadLetterKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, dead)

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "smtp down", *failed[0].LastError)
}

func TestProcessTaskBadPayload(t *testing.T) {
	db := newTestDB(t)
	worker := NewSyncWorker(db, &fakeSheets{}, nil, nil, RetryPolicy{}, nil)
	ctx := context.Background()

	task := models.SyncTask{TaskType: models.TaskUpsert, BookingID: "b4", Payload: "not json"}
	require.NoError(t, db.CreateSyncTask(ctx, &task))
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	assert.Equal(t, models.TaskStatusFailed, status)
}

func TestSyncWorker_HandleTask(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	notifier := &fakeNotifier{}
	worker := NewSyncWorker(db, sheets, notifier, nil, RetryPolicy{MaxRetries: 3}, nil)

	ctx := context.Background()

	t.Run("Upsert", func(t *testing.T) {
		require.NoError(t, worker.handleTask(ctx, models.TaskUpsert, taskPayload{Booking: sampleBooking("b1")}))
		assert.Equal(t, 1, sheets.upsertCalls)
		assert.Error(t, worker.handleTask(ctx, models.TaskUpsert, taskPayload{}))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, worker.handleTask(ctx, models.TaskDelete, taskPayload{BookingID: "b1"}))
		assert.Equal(t, 1, sheets.deleteCalls)
		assert.Error(t, worker.handleTask(ctx, models.TaskDelete, taskPayload{}))
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, worker.handleTask(ctx, models.TaskUpdateStatus, taskPayload{BookingID: "b1", Status: models.StatusCompleted}))
		assert.Equal(t, 1, sheets.statusCalls)
		assert.Equal(t, models.StatusCompleted, sheets.lastStatus)
		assert.Error(t, worker.handleTask(ctx, models.TaskUpdateStatus, taskPayload{BookingID: "b1"}))
	})

	t.Run("NotifyOwner", func(t *testing.T) {
		require.NoError(t, worker.handleTask(ctx, models.TaskNotifyOwner, taskPayload{Booking: sampleBooking("b1")}))
		assert.Equal(t, 1, notifier.calls)
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, worker.handleTask(ctx, "reindex", taskPayload{}))
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 5*time.Second, policy.NextDelay(5))
	assert.Equal(t, time.Second, policy.NextDelay(0))
	assert.Equal(t, 5*time.Second, policy.NextDelay(1000))
}

func TestRetryPolicyExhausted(t *testing.T) {
	assert.False(t, RetryPolicy{MaxRetries: 3}.Exhausted(2))
	assert.True(t, RetryPolicy{MaxRetries: 3}.Exhausted(3))
	// без настроек действует лимит по умолчанию
	assert.False(t, RetryPolicy{}.Exhausted(defaultMaxRetries-1))
	assert.True(t, RetryPolicy{}.Exhausted(defaultMaxRetries))
	assert.Equal(t, defaultInitialDelay, RetryPolicy{}.NextDelay(1))
}

func TestRetryPolicyFromConfig(t *testing.T) {
	p := RetryPolicyFromConfig(config.WorkerConfig{MaxRetries: 7, BaseDelay: 3 * time.Second, MaxDelay: time.Minute})
	assert.Equal(t, 7, p.MaxRetries)
	assert.Equal(t, 3*time.Second, p.NextDelay(1))
	assert.Equal(t, 6*time.Second, p.NextDelay(2))
}

func TestSyncWorker_EnqueueTask(t *testing.T) {
	db := newTestDB(t)
	worker := NewSyncWorker(db, &fakeSheets{}, nil, nil, RetryPolicy{}, nil)
	ctx := context.Background()

	t.Run("ValidTask", func(t *testing.T) {
		require.NoError(t, worker.EnqueueTask(ctx, models.TaskUpdateStatus, sampleBooking("b1")))
		task, ok := worker.tryLocalQueue()
		require.True(t, ok)
		payload, err := decodePayload(task.Payload)
		require.NoError(t, err)
		assert.Equal(t, "b1", payload.BookingID)
		assert.Equal(t, models.StatusUpcoming, payload.Status)
		assert.Nil(t, payload.Booking)
	})

	t.Run("InvalidTaskType", func(t *testing.T) {
		assert.Error(t, worker.EnqueueTask(ctx, "", sampleBooking("b1")))
	})

	t.Run("MissingBookingID", func(t *testing.T) {
		assert.Error(t, worker.EnqueueTask(ctx, models.TaskUpsert, nil))
		assert.Error(t, worker.EnqueueTask(ctx, models.TaskUpsert, &models.Booking{}))
	})

	t.Run("NoNotifierSkipsNotifyTask", func(t *testing.T) {
		require.NoError(t, worker.EnqueueTask(ctx, models.TaskNotifyOwner, sampleBooking("b9")))
		_, ok := worker.tryLocalQueue()
		assert.False(t, ok)
	})
}

func TestSyncWorker_StartDrainsQueue(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{done: make(chan struct{}, 1)}
	worker := NewSyncWorker(db, nil, notifier, nil, RetryPolicy{}, nil)
	worker.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(stopped)
	}()

	require.NoError(t, worker.EnqueueTask(ctx, models.TaskNotifyOwner, sampleBooking("b5")))

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestDecodePayload(t *testing.T) {
	decoded, err := decodePayload(`{"booking_id":"abc","status":"completed"}`)
	require.NoError(t, err)
	assert.Equal(t, "abc", decoded.BookingID)
	assert.Equal(t, "completed", decoded.Status)

	_, err = decodePayload(`invalid json`)
	assert.Error(t, err)
}

// Helpers

type fakeSheets struct {
	err         error
	upsertCalls int
	deleteCalls int
	statusCalls int
	lastStatus  string
}

func (f *fakeSheets) UpsertBooking(ctx context.Context, b *models.Booking) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeSheets) DeleteBookingRow(ctx context.Context, id string) error {
	f.deleteCalls++
	return f.err
}

func (f *fakeSheets) UpdateBookingStatus(ctx context.Context, id, status string) error {
	f.statusCalls++
	f.lastStatus = status
	return f.err
}

type fakeNotifier struct {
	err   error
	calls int
	done  chan struct{}
}

func (f *fakeNotifier) NotifyOwner(ctx context.Context, b *models.Booking) error {
	f.calls++
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.Nop()
	db, err := database.NewDB(path, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	require.NoError(t, row.Scan(&status, &retryCount, &nextRetry))
	return status, retryCount, nextRetry
}
