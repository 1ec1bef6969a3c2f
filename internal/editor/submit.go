package editor

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"trailhead/internal/models"
)

// MsgRetry is shown for failures that are neither validation nor not-found.
const MsgRetry = "request failed, please retry"

type ItineraryStore interface {
	Create(ctx context.Context, it *models.Itinerary) error
	Update(ctx context.Context, id int64, it *models.Itinerary) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error)
}

type DestinationStore interface {
	Create(ctx context.Context, d *models.Destination) error
	Update(ctx context.Context, id int64, d *models.Destination) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q models.ListQuery) ([]models.Destination, int, error)
}

// Backend is where submitted forms are written.
type Backend struct {
	Itineraries  ItineraryStore
	Destinations DestinationStore
}

// Outcome is the state after a submit or delete. After a successful write the
// listing of the form's kind is re-read from the store.
type Outcome struct {
	State        FormState            `json:"state"`
	Itineraries  []models.Itinerary   `json:"itineraries,omitempty"`
	Destinations []models.Destination `json:"destinations,omitempty"`
	Saved        int64                `json:"saved,omitempty"`
}

// Submit validates the form and creates or fully replaces the record. On
// failure the returned state is the same open form with Error set.
func Submit(ctx context.Context, s FormState, b Backend) Outcome {
	if !s.IsOpen() {
		return Outcome{State: withError(s, errNotOpen)}
	}
	out := s.clone()
	out.ConfirmDelete = false

	var (
		id  int64
		err error
	)
	switch s.Kind {
	case KindItinerary:
		id, err = submitItinerary(ctx, out, b.Itineraries)
	case KindDestination:
		id, err = submitDestination(ctx, out, b.Destinations)
	default:
		err = models.NewValidationError("kind", "unknown form kind")
	}
	if err != nil {
		return Outcome{State: withError(out, UserMessage(err))}
	}

	verb := "created"
	if s.Mode == ModeEdit {
		verb = "updated"
	}
	closed := Closed()
	closed.Notice = s.Kind.Label() + " " + verb
	result := refresh(ctx, closed, s.Kind, b)
	result.Saved = id
	return result
}

// ConfirmDeletion deletes the bound record once RequestDelete was accepted.
func ConfirmDeletion(ctx context.Context, s FormState, b Backend) Outcome {
	if s.Mode != ModeEdit || !s.ConfirmDelete {
		return Outcome{State: withError(s, "deletion was not requested")}
	}
	out := s.clone()
	out.ConfirmDelete = false

	var err error
	switch s.Kind {
	case KindItinerary:
		err = b.Itineraries.Delete(ctx, s.ID)
	case KindDestination:
		err = b.Destinations.Delete(ctx, s.ID)
	}
	if err != nil {
		return Outcome{State: withError(out, UserMessage(err))}
	}

	closed := Closed()
	closed.Notice = s.Kind.Label() + " deleted"
	return refresh(ctx, closed, s.Kind, b)
}

func refresh(ctx context.Context, closed FormState, kind Kind, b Backend) Outcome {
	result := Outcome{State: closed}
	var err error
	switch kind {
	case KindItinerary:
		result.Itineraries, _, err = b.Itineraries.List(ctx, models.ListQuery{})
	case KindDestination:
		result.Destinations, _, err = b.Destinations.List(ctx, models.ListQuery{})
	}
	if err != nil {
		result.State.Error = "saved, but the list could not be reloaded"
	}
	return result
}

// UserMessage converts an error into the text shown to operators.
func UserMessage(err error) string {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, models.ErrNotFound):
		return "not found"
	default:
		return MsgRetry
	}
}

func submitItinerary(ctx context.Context, s FormState, store ItineraryStore) (int64, error) {
	it, err := BuildItinerary(s)
	if err != nil {
		return 0, err
	}
	if s.Mode == ModeEdit {
		return s.ID, store.Update(ctx, s.ID, it)
	}
	if err := store.Create(ctx, it); err != nil {
		return 0, err
	}
	return it.ID, nil
}

func submitDestination(ctx context.Context, s FormState, store DestinationStore) (int64, error) {
	d, err := BuildDestination(s)
	if err != nil {
		return 0, err
	}
	if s.Mode == ModeEdit {
		return s.ID, store.Update(ctx, s.ID, d)
	}
	if err := store.Create(ctx, d); err != nil {
		return 0, err
	}
	return d.ID, nil
}

// BuildItinerary validates the form's required fields and assembles the record.
func BuildItinerary(s FormState) (*models.Itinerary, error) {
	for _, f := range []string{
		FieldTitle, FieldDescription, FieldDurationDays, FieldLocation, FieldBestSeason, FieldPrice, FieldMaxParticipants,
	} {
		if strings.TrimSpace(s.Field(f)) == "" {
			return nil, models.NewValidationError(f, "is required")
		}
	}

	days, err := strconv.Atoi(strings.TrimSpace(s.Field(FieldDurationDays)))
	if err != nil || days <= 0 {
		return nil, models.NewValidationError(FieldDurationDays, "must be a positive number")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(s.Field(FieldPrice)), 64)
	if err != nil || price < 0 {
		return nil, models.NewValidationError(FieldPrice, "must be a non-negative number")
	}
	maxParticipants, err := strconv.Atoi(strings.TrimSpace(s.Field(FieldMaxParticipants)))
	if err != nil || maxParticipants <= 0 {
		return nil, models.NewValidationError(FieldMaxParticipants, "must be a positive number")
	}

	difficulty := models.DifficultyModerate
	if raw := s.Field(FieldDifficulty); strings.TrimSpace(raw) != "" {
		var ok bool
		if difficulty, ok = models.ParseDifficulty(raw); !ok {
			return nil, models.NewValidationError(FieldDifficulty, "must be one of Easy, Moderate, Hard, Expert")
		}
	}
	status := models.StatusActive
	if raw := s.Field(FieldStatus); strings.TrimSpace(raw) != "" {
		var ok bool
		if status, ok = models.ParseStatus(raw); !ok {
			return nil, models.NewValidationError(FieldStatus, "must be one of active, inactive, archived")
		}
	}

	return &models.Itinerary{
		Title:           strings.TrimSpace(s.Field(FieldTitle)),
		Description:     strings.TrimSpace(s.Field(FieldDescription)),
		DurationDays:    days,
		Difficulty:      difficulty,
		Price:           price,
		Location:        strings.TrimSpace(s.Field(FieldLocation)),
		BestSeason:      strings.TrimSpace(s.Field(FieldBestSeason)),
		Image:           strings.TrimSpace(s.Field(FieldImage)),
		Highlights:      orEmpty(s.Items(ListHighlights)),
		DayByDayPlan:    orEmptyPlans(cloneDayPlans(s.DayPlans)),
		Includes:        orEmpty(s.Items(ListIncludes)),
		Excludes:        orEmpty(s.Items(ListExcludes)),
		MaxParticipants: maxParticipants,
		Status:          status,
	}, nil
}

// BuildDestination validates name and location and assembles the record.
func BuildDestination(s FormState) (*models.Destination, error) {
	for _, f := range []string{FieldName, FieldLocation} {
		if strings.TrimSpace(s.Field(f)) == "" {
			return nil, models.NewValidationError(f, "is required")
		}
	}
	return &models.Destination{
		Name:        strings.TrimSpace(s.Field(FieldName)),
		Location:    strings.TrimSpace(s.Field(FieldLocation)),
		BestSeason:  strings.TrimSpace(s.Field(FieldBestSeason)),
		Description: strings.TrimSpace(s.Field(FieldDescription)),
		Images:      orEmpty(s.Items(ListImages)),
		Videos:      orEmpty(s.Items(ListVideos)),
	}, nil
}

func orEmptyPlans(plans []models.DayPlan) []models.DayPlan {
	if plans == nil {
		return []models.DayPlan{}
	}
	return plans
}
