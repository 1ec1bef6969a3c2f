package service

import (
	"context"
	"fmt"

	"trailhead/internal/domain"
	"trailhead/internal/editor"
	"trailhead/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ItineraryEditor is the part of ItineraryService the admin form needs.
type ItineraryEditor interface {
	editor.ItineraryStore
	Get(ctx context.Context, id int64) (*models.Itinerary, error)
}

type DestinationEditor interface {
	editor.DestinationStore
	Get(ctx context.Context, id int64) (*models.Destination, error)
}

// FormService keeps admin form sessions and applies actions to them.
type FormService struct {
	repo         domain.FormRepository
	itineraries  ItineraryEditor
	destinations DestinationEditor
	logger       *zerolog.Logger
	newSession   func() string
}

func NewFormService(repo domain.FormRepository, itineraries ItineraryEditor, destinations DestinationEditor, logger *zerolog.Logger) *FormService {
	return &FormService{
		repo:         repo,
		itineraries:  itineraries,
		destinations: destinations,
		logger:       logger,
		newSession:   uuid.NewString,
	}
}

func (s *FormService) backend() editor.Backend {
	return editor.Backend{Itineraries: s.itineraries, Destinations: s.destinations}
}

// Open starts a session. With id == 0 the form is empty; otherwise it is
// pre-populated from the stored record.
func (s *FormService) Open(ctx context.Context, kind editor.Kind, id int64) (string, editor.FormState, error) {
	if !kind.Valid() {
		return "", editor.FormState{}, models.NewValidationError("kind", "must be itinerary or destination")
	}

	state := editor.OpenCreate(kind)
	if id != 0 {
		switch kind {
		case editor.KindItinerary:
			it, err := s.itineraries.Get(ctx, id)
			if err != nil {
				return "", editor.FormState{}, err
			}
			state = editor.OpenEditItinerary(it)
		case editor.KindDestination:
			d, err := s.destinations.Get(ctx, id)
			if err != nil {
				return "", editor.FormState{}, err
			}
			state = editor.OpenEditDestination(d)
		}
	}

	session := s.newSession()
	if err := s.repo.SetForm(ctx, session, state); err != nil {
		return "", editor.FormState{}, fmt.Errorf("save form session: %w", err)
	}
	s.logger.Debug().Str("session", session).Str("kind", string(kind)).Int64("id", id).Msg("form opened")
	return session, state, nil
}

func (s *FormService) Get(ctx context.Context, session string) (editor.FormState, error) {
	state, err := s.repo.GetForm(ctx, session)
	if err != nil {
		return editor.FormState{}, fmt.Errorf("load form session: %w", err)
	}
	if state == nil {
		return editor.FormState{}, fmt.Errorf("form session %s: %w", session, models.ErrNotFound)
	}
	return *state, nil
}

// Apply runs one action against the stored session and saves the result.
func (s *FormService) Apply(ctx context.Context, session string, action editor.Action) (editor.Outcome, error) {
	state, err := s.Get(ctx, session)
	if err != nil {
		return editor.Outcome{}, err
	}

	out, err := editor.Dispatch(ctx, state, action, s.backend())
	if err != nil {
		return editor.Outcome{}, models.NewValidationError("type", "%s", err.Error())
	}
	if out.State.Error != "" {
		s.logger.Info().Str("session", session).Str("action", action.Type).Str("error", out.State.Error).Msg("form action rejected")
	}

	if err := s.repo.SetForm(ctx, session, out.State); err != nil {
		return editor.Outcome{}, fmt.Errorf("save form session: %w", err)
	}
	return out, nil
}

func (s *FormService) Discard(ctx context.Context, session string) error {
	return s.repo.DeleteForm(ctx, session)
}
