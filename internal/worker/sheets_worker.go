// Package worker mirrors catalog writes into the operators' spreadsheet. Jobs
// are persisted in sync_queue first, then delivered through Redis or an
// in-process channel; the table is polled as the fallback.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/domain"
	"trailhead/internal/metrics"
	"trailhead/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskUpsert = "upsert"
	TaskDelete = "delete"
)

const (
	EntityItinerary   = "itinerary"
	EntityDestination = "destination"
)

// syncPayload is persisted in SyncTask.Payload as JSON.
type syncPayload struct {
	Record json.RawMessage `json:"record,omitempty"`
}

type SheetsWorker struct {
	repo          domain.SyncQueueRepository
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	retention     time.Duration
	lastPurge     time.Time
	logger        *zerolog.Logger
}

// NewSheetsWorker builds a worker; zero fields of retry take defaults.
// redisClient may be nil.
func NewSheetsWorker(repo domain.SyncQueueRepository, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SheetsWorker{
		repo:          repo,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		retention:     7 * 24 * time.Hour,
		logger:        logger,
	}
}

func (w *SheetsWorker) EnqueueUpsert(ctx context.Context, entity string, id int64, record any) error {
	if record == nil {
		return errors.New("record is required")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return w.enqueue(ctx, TaskUpsert, entity, id, syncPayload{Record: raw})
}

func (w *SheetsWorker) EnqueueDelete(ctx context.Context, entity string, id int64) error {
	return w.enqueue(ctx, TaskDelete, entity, id, syncPayload{})
}

// enqueue persists the task to the DB and schedules it via redis or the
// in-memory queue.
func (w *SheetsWorker) enqueue(ctx context.Context, taskType, entity string, id int64, payload syncPayload) error {
	if entity != EntityItinerary && entity != EntityDestination {
		return fmt.Errorf("unsupported entity: %s", entity)
	}
	if id == 0 {
		return errors.New("record id is required")
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType:  taskType,
		Entity:    entity,
		RecordID:  id,
		Payload:   string(payloadBytes),
		Status:    models.SyncStatusPending,
		CreatedAt: time.Now(),
	}
	if err := w.repo.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}
	metrics.IncSyncTask("queued")

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("in-memory queue full, task left to polling")
	}
	return nil
}

// Start launches the main loop; it returns when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.purge(ctx)

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.repo.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending sync tasks")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.sleep(ctx)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

// RequeueFailed moves dead tasks back to pending and returns how many moved.
// Their retry count is kept, so each gets one more attempt.
func (w *SheetsWorker) RequeueFailed(ctx context.Context) (int, error) {
	tasks, err := w.repo.GetFailedSyncTasks(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		if err := w.repo.UpdateSyncTaskStatus(ctx, t.ID, models.SyncStatusPending, "", nil); err != nil {
			return 0, fmt.Errorf("requeue task %d: %w", t.ID, err)
		}
	}
	if w.redis != nil && len(tasks) > 0 {
		if err := w.redis.Del(ctx, w.deadLetterKey).Err(); err != nil {
			w.logger.Warn().Err(err).Msg("clear deadletter list")
		}
	}
	return len(tasks), nil
}

func (w *SheetsWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

func (w *SheetsWorker) purge(ctx context.Context) {
	if time.Since(w.lastPurge) < time.Hour {
		return
	}
	w.lastPurge = time.Now()
	n, err := w.repo.PurgeSyncTasks(ctx, time.Now().Add(-w.retention))
	if err != nil {
		w.logger.Warn().Err(err).Msg("purge sync tasks")
		return
	}
	if n > 0 {
		w.logger.Info().Int64("purged", n).Msg("old sync tasks removed")
	}
}

func (w *SheetsWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return models.SyncTask{}, false
		}
		w.logger.Warn().Err(err).Msg("redis BRPOP error")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Warn().Err(err).Msg("decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task *models.SyncTask) {
	payload, err := w.decodePayload(task.Payload)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handleSheetTask(ctx, task, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncSyncTask(models.SyncStatusCompleted)
	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark completed")
	}
}

func (w *SheetsWorker) handleSheetTask(ctx context.Context, task *models.SyncTask, payload syncPayload) error {
	switch task.TaskType {
	case TaskUpsert:
		if len(payload.Record) == 0 {
			return errors.New("record payload missing")
		}
		switch task.Entity {
		case EntityItinerary:
			var it models.Itinerary
			if err := json.Unmarshal(payload.Record, &it); err != nil {
				return fmt.Errorf("decode itinerary: %w", err)
			}
			it.ID = task.RecordID
			return w.sheets.UpsertItinerary(ctx, &it)
		case EntityDestination:
			var d models.Destination
			if err := json.Unmarshal(payload.Record, &d); err != nil {
				return fmt.Errorf("decode destination: %w", err)
			}
			d.ID = task.RecordID
			return w.sheets.UpsertDestination(ctx, &d)
		}
		return fmt.Errorf("unsupported entity: %s", task.Entity)
	case TaskDelete:
		if task.RecordID == 0 {
			return errors.New("record id missing")
		}
		return w.sheets.DeleteRow(ctx, task.Entity, task.RecordID)
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.failTask(ctx, task, cause)
		return
	}

	metrics.IncSyncTask(models.SyncStatusRetry)
	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", nextTime).Msg("sync task will be retried")
	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark retry")
	}
}

func (w *SheetsWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	metrics.IncSyncTask(models.SyncStatusFailed)
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Str("entity", task.Entity).Int64("record_id", task.RecordID).Msg("sync task failed")
	if err := w.repo.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("mark failed")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *SheetsWorker) decodePayload(raw string) (syncPayload, error) {
	var payload syncPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (w *SheetsWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("deadletter push")
	}
}
