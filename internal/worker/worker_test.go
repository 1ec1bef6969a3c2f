package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"trailhead/internal/database"
	"trailhead/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func testItinerary(id int64) *models.Itinerary {
	return &models.Itinerary{
		ID:              id,
		Title:           "Annapurna Circuit",
		Description:     "Classic loop",
		DurationDays:    14,
		Price:           1800,
		MaxParticipants: 12,
		Difficulty:      models.DifficultyHard,
		Status:          models.StatusActive,
	}
}

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	if err := worker.EnqueueUpsert(ctx, EntityItinerary, 1, testItinerary(1)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != models.SyncStatusCompleted {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if len(sheets.itineraries) != 1 || sheets.itineraries[0].Title != "Annapurna Circuit" {
		t.Fatalf("expected itinerary upsert, got %+v", sheets.itineraries)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	ctx := context.Background()
	if err := worker.EnqueueUpsert(ctx, EntityItinerary, 2, testItinerary(2)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != models.SyncStatusRetry {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("fatal")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 1}, nil)

	ctx := context.Background()
	if err := worker.EnqueueDelete(ctx, EntityDestination, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != models.SyncStatusFailed {
		t.Fatalf("expected status=failed, got %s", status)
	}

	failed, err := db.GetFailedSyncTasks(ctx)
	if err != nil || len(failed) != 1 {
		t.Fatalf("expected 1 failed task, got %d (%v)", len(failed), err)
	}
	if failed[0].LastError == nil || *failed[0].LastError != "fatal" {
		t.Fatalf("expected last_error=fatal, got %v", failed[0].LastError)
	}
}

func TestProcessTaskBadPayloadFailsWithoutRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 5}, nil)

	ctx := context.Background()
	task := models.SyncTask{TaskType: TaskUpsert, Entity: EntityItinerary, RecordID: 9, Payload: "not json", Status: models.SyncStatusPending}
	if err := db.CreateSyncTask(ctx, &task); err != nil {
		t.Fatalf("create: %v", err)
	}
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != models.SyncStatusFailed {
		t.Fatalf("expected status=failed, got %s", status)
	}
	if sheets.calls() != 0 {
		t.Fatalf("expected no sheet calls, got %d", sheets.calls())
	}
}

func TestSheetsWorker_HandleSheetTask(t *testing.T) {
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(nil, sheets, nil, RetryPolicy{MaxRetries: 3}, nil)

	ctx := context.Background()
	record := func(v any) syncPayload {
		raw, _ := json.Marshal(v)
		return syncPayload{Record: raw}
	}

	t.Run("UpsertItinerary", func(t *testing.T) {
		task := &models.SyncTask{TaskType: TaskUpsert, Entity: EntityItinerary, RecordID: 7}
		if err := worker.handleSheetTask(ctx, task, record(testItinerary(0))); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(sheets.itineraries) != 1 || sheets.itineraries[0].ID != 7 {
			t.Fatalf("expected itinerary 7 upserted, got %+v", sheets.itineraries)
		}
	})

	t.Run("UpsertDestination", func(t *testing.T) {
		task := &models.SyncTask{TaskType: TaskUpsert, Entity: EntityDestination, RecordID: 8}
		if err := worker.handleSheetTask(ctx, task, record(&models.Destination{Name: "Pokhara"})); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(sheets.destinations) != 1 || sheets.destinations[0].Name != "Pokhara" {
			t.Fatalf("expected destination upserted, got %+v", sheets.destinations)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		task := &models.SyncTask{TaskType: TaskDelete, Entity: EntityDestination, RecordID: 123}
		if err := worker.handleSheetTask(ctx, task, syncPayload{}); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(sheets.deleted) != 1 || sheets.deleted[0] != "destination/123" {
			t.Fatalf("expected delete call, got %v", sheets.deleted)
		}
	})

	t.Run("MissingRecord", func(t *testing.T) {
		task := &models.SyncTask{TaskType: TaskUpsert, Entity: EntityItinerary, RecordID: 1}
		if err := worker.handleSheetTask(ctx, task, syncPayload{}); err == nil {
			t.Fatalf("expected error for missing record")
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		task := &models.SyncTask{TaskType: "rename", Entity: EntityItinerary, RecordID: 1}
		if err := worker.handleSheetTask(ctx, task, syncPayload{}); err == nil {
			t.Fatalf("expected error for unknown task type")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2}.withDefaults()
	if policy.MaxRetries != 2 || policy.InitialDelay != 2*time.Second || policy.MaxDelay != time.Minute {
		t.Fatalf("unexpected policy: %+v", policy)
	}
	if policy.Exhausted(1) || !policy.Exhausted(2) {
		t.Fatalf("expected budget of 2 attempts")
	}
	if d := policy.NextDelay(0); d != 2*time.Second {
		t.Fatalf("attempt0 expected initial delay, got %s", d)
	}
}

func TestSheetsWorker_Enqueue(t *testing.T) {
	db := newTestDB(t)
	worker := NewSheetsWorker(db, &fakeSheets{}, nil, RetryPolicy{}, nil)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		if err := worker.EnqueueUpsert(ctx, EntityDestination, 1, &models.Destination{Name: "x"}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		tasks, err := db.GetPendingSyncTasks(ctx, 10)
		if err != nil || len(tasks) != 1 {
			t.Fatalf("expected 1 pending task, got %d (%v)", len(tasks), err)
		}
		if tasks[0].Entity != EntityDestination || tasks[0].RecordID != 1 || tasks[0].TaskType != TaskUpsert {
			t.Fatalf("unexpected task: %+v", tasks[0])
		}
	})

	t.Run("UnknownEntity", func(t *testing.T) {
		if err := worker.EnqueueDelete(ctx, "trail", 1); err == nil {
			t.Fatalf("expected error for unknown entity")
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		if err := worker.EnqueueDelete(ctx, EntityItinerary, 0); err == nil {
			t.Fatalf("expected error for missing record id")
		}
	})

	t.Run("MissingRecord", func(t *testing.T) {
		if err := worker.EnqueueUpsert(ctx, EntityItinerary, 1, nil); err == nil {
			t.Fatalf("expected error for nil record")
		}
	})
}

func TestSheetsWorker_RedisQueueAndDeadLetter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("sheet locked")}
	worker := NewSheetsWorker(db, sheets, client, RetryPolicy{MaxRetries: 1}, nil)

	ctx := context.Background()
	if err := worker.EnqueueUpsert(ctx, EntityItinerary, 5, testItinerary(5)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, ok := worker.tryLocalQueue(); ok {
		t.Fatalf("expected task to go to redis, not the local queue")
	}

	task, ok := worker.tryRedis(ctx)
	if !ok {
		t.Fatalf("expected task in redis")
	}
	if task.RecordID != 5 {
		t.Fatalf("expected record 5, got %d", task.RecordID)
	}
	worker.processTask(ctx, &task)

	dead, err := mr.List("sheets:deadletter")
	if err != nil || len(dead) != 1 {
		t.Fatalf("expected 1 deadletter entry, got %v (%v)", dead, err)
	}

	n, err := worker.RequeueFailed(ctx)
	if err != nil || n != 1 {
		t.Fatalf("requeue: n=%d err=%v", n, err)
	}
	if mr.Exists("sheets:deadletter") {
		t.Fatalf("expected deadletter list cleared")
	}
	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != models.SyncStatusPending {
		t.Fatalf("expected status=pending after requeue, got %s", status)
	}
}

func TestSheetsWorker_StartDrainsPendingTasks(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)
	worker.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persisted directly, as if left over from a previous run.
	raw, _ := json.Marshal(syncPayload{})
	task := models.SyncTask{TaskType: TaskDelete, Entity: EntityItinerary, RecordID: 11, Payload: string(raw), Status: models.SyncStatusPending}
	if err := db.CreateSyncTask(ctx, &task); err != nil {
		t.Fatalf("create: %v", err)
	}

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, _, _ := loadTaskStatus(t, db, task.ID)
		if status == models.SyncStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("task not processed, status=%s", status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop")
	}
}

func TestSheetsWorker_DecodePayload(t *testing.T) {
	worker := NewSheetsWorker(nil, nil, nil, RetryPolicy{}, nil)

	t.Run("ValidPayload", func(t *testing.T) {
		decoded, err := worker.decodePayload(`{"record":{"title":"x"}}`)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(decoded.Record) != `{"title":"x"}` {
			t.Fatalf("unexpected decoded payload: %s", decoded.Record)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		if _, err := worker.decodePayload(`invalid json`); err == nil {
			t.Fatalf("expected error for invalid json")
		}
	})
}

// Helpers

type fakeSheets struct {
	err          error
	itineraries  []*models.Itinerary
	destinations []*models.Destination
	deleted      []string
}

func (f *fakeSheets) UpsertItinerary(ctx context.Context, it *models.Itinerary) error {
	f.itineraries = append(f.itineraries, it)
	return f.err
}

func (f *fakeSheets) UpsertDestination(ctx context.Context, d *models.Destination) error {
	f.destinations = append(f.destinations, d)
	return f.err
}

func (f *fakeSheets) DeleteRow(ctx context.Context, entity string, id int64) error {
	f.deleted = append(f.deleted, entity+"/"+strconv.FormatInt(id, 10))
	return f.err
}

func (f *fakeSheets) calls() int {
	return len(f.itineraries) + len(f.destinations) + len(f.deleted)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.Nop()
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
