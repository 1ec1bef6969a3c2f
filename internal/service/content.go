package service

import (
	"context"
	"encoding/json"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/events"
	"trailhead/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

// writeHooks runs the side effects shared by every successful catalog write.
// Each collaborator is optional.
type writeHooks struct {
	entity   string
	eventBus domain.EventPublisher
	sync     domain.SyncWorker
	logger   *zerolog.Logger
}

func (h writeHooks) written(ctx context.Context, action string, id int64, title string, record any) {
	metrics.IncContentWrite(h.entity, action)
	h.publish(action, id, title, record)
	h.enqueueSync(ctx, action, id, record)
}

func (h writeHooks) publish(action string, id int64, title string, record any) {
	if h.eventBus == nil {
		return
	}

	payload := events.ContentEventPayload{
		Entity: h.entity,
		Action: action,
		ID:     id,
		Title:  title,
	}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			h.logger.Error().Err(err).Str("entity", h.entity).Int64("id", id).Msg("encode event record error")
		} else {
			payload.Record = raw
		}
	}

	eventType := events.EventContentUpdated
	switch action {
	case actionCreate:
		eventType = events.EventContentCreated
	case actionDelete:
		eventType = events.EventContentDeleted
	}

	if err := h.eventBus.PublishJSON(eventType, payload); err != nil {
		h.logger.Error().Err(err).Str("event_type", eventType).Int64("id", id).Msg("publish event error")
	}
}

func (h writeHooks) enqueueSync(ctx context.Context, action string, id int64, record any) {
	if h.sync == nil {
		return
	}

	var err error
	if action == actionDelete {
		err = h.sync.EnqueueDelete(ctx, h.entity, id)
	} else {
		err = h.sync.EnqueueUpsert(ctx, h.entity, id, record)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("entity", h.entity).Int64("id", id).Str("task", action).Msg("sheets enqueue error")
	}
}

// cleanList trims entries and drops blank ones. The result is never nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
