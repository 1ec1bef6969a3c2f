package editor

import (
	"context"
	"errors"
	"fmt"

	"trailhead/internal/metrics"
)

// Action names accepted by Dispatch.
const (
	ActionSetField      = "set_field"
	ActionSetBuffer     = "set_buffer"
	ActionAdd           = "add"
	ActionRemove        = "remove"
	ActionSetDay        = "set_day"
	ActionAddDay        = "add_day"
	ActionRemoveDay     = "remove_day"
	ActionSubmit        = "submit"
	ActionClose         = "close"
	ActionRequestDelete = "request_delete"
	ActionConfirmDelete = "confirm_delete"
	ActionCancelDelete  = "cancel_delete"
)

var ErrUnknownAction = errors.New("unknown form action")

// Action is one operator input as sent by the admin UI.
type Action struct {
	Type  string    `json:"type"`
	Field string    `json:"field,omitempty"`
	List  string    `json:"list,omitempty"`
	Value string    `json:"value,omitempty"`
	Index int       `json:"index,omitempty"`
	Day   *DayDraft `json:"day,omitempty"`
}

// Dispatch applies an action. Only submit and confirm_delete touch the backend.
func Dispatch(ctx context.Context, s FormState, a Action, b Backend) (Outcome, error) {
	var out Outcome
	switch a.Type {
	case ActionSetField:
		out.State = s.SetField(a.Field, a.Value)
	case ActionSetBuffer:
		out.State = s.SetBuffer(a.List, a.Value)
	case ActionAdd:
		state := s
		if a.Value != "" {
			state = state.SetBuffer(a.List, a.Value)
		}
		out.State = state.Add(a.List)
	case ActionRemove:
		out.State = s.Remove(a.List, a.Index)
	case ActionSetDay:
		if a.Day == nil {
			return Outcome{}, fmt.Errorf("%w: set_day needs a day", ErrUnknownAction)
		}
		out.State = s.SetDayDraft(*a.Day)
	case ActionAddDay:
		state := s
		if a.Day != nil {
			state = state.SetDayDraft(*a.Day)
		}
		out.State = state.AddDayPlan()
	case ActionRemoveDay:
		out.State = s.RemoveDayPlan(a.Index)
	case ActionSubmit:
		out = Submit(ctx, s, b)
	case ActionClose:
		out.State = s.Close()
	case ActionRequestDelete:
		out.State = s.RequestDelete()
	case ActionConfirmDelete:
		out = ConfirmDeletion(ctx, s, b)
	case ActionCancelDelete:
		out.State = s.CancelDelete()
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	result := "ok"
	if out.State.Error != "" {
		result = "rejected"
	}
	metrics.IncFormAction(a.Type, result)
	return out, nil
}
