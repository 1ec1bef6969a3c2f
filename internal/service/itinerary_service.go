package service

import (
	"context"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

const entityItinerary = "itinerary"

type ItineraryService struct {
	repo  domain.ItineraryRepository
	hooks writeHooks
}

func NewItineraryService(repo domain.ItineraryRepository, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *ItineraryService {
	return &ItineraryService{
		repo:  repo,
		hooks: writeHooks{entity: entityItinerary, eventBus: eventBus, sync: syncWorker, logger: logger},
	}
}

func (s *ItineraryService) List(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error) {
	return s.repo.ListItineraries(ctx, q)
}

func (s *ItineraryService) Get(ctx context.Context, id int64) (*models.Itinerary, error) {
	return s.repo.GetItinerary(ctx, id)
}

func (s *ItineraryService) Create(ctx context.Context, it *models.Itinerary) error {
	if err := NormalizeItinerary(it); err != nil {
		return err
	}
	if err := s.repo.CreateItinerary(ctx, it); err != nil {
		return err
	}
	s.hooks.written(ctx, actionCreate, it.ID, it.Title, it)
	return nil
}

// Update replaces every field of the stored itinerary with it.
func (s *ItineraryService) Update(ctx context.Context, id int64, it *models.Itinerary) error {
	if err := NormalizeItinerary(it); err != nil {
		return err
	}
	if err := s.repo.UpdateItinerary(ctx, id, it); err != nil {
		return err
	}
	s.hooks.written(ctx, actionUpdate, id, it.Title, it)
	return nil
}

func (s *ItineraryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItinerary(ctx, id); err != nil {
		return err
	}
	s.hooks.written(ctx, actionDelete, id, "", nil)
	return nil
}

// NormalizeItinerary trims text, drops blank list entries, applies the
// difficulty and status defaults and validates the result in place.
func NormalizeItinerary(it *models.Itinerary) error {
	it.Title = strings.TrimSpace(it.Title)
	it.Description = strings.TrimSpace(it.Description)
	it.Location = strings.TrimSpace(it.Location)
	it.BestSeason = strings.TrimSpace(it.BestSeason)
	it.Image = strings.TrimSpace(it.Image)
	it.Highlights = cleanList(it.Highlights)
	it.Includes = cleanList(it.Includes)
	it.Excludes = cleanList(it.Excludes)

	if it.Title == "" {
		return models.NewValidationError("title", "is required")
	}
	if it.Description == "" {
		return models.NewValidationError("description", "is required")
	}
	if it.DurationDays <= 0 {
		return models.NewValidationError("duration_days", "must be a positive number")
	}
	if it.Price < 0 {
		return models.NewValidationError("price", "must be a non-negative number")
	}
	if it.MaxParticipants <= 0 {
		return models.NewValidationError("maxParticipants", "must be a positive number")
	}

	if strings.TrimSpace(string(it.Difficulty)) == "" {
		it.Difficulty = models.DifficultyModerate
	} else if d, ok := models.ParseDifficulty(string(it.Difficulty)); ok {
		it.Difficulty = d
	} else {
		return models.NewValidationError("difficulty", "must be one of Easy, Moderate, Hard, Expert")
	}

	if strings.TrimSpace(string(it.Status)) == "" {
		it.Status = models.StatusActive
	} else if st, ok := models.ParseStatus(string(it.Status)); ok {
		it.Status = st
	} else {
		return models.NewValidationError("status", "must be one of active, inactive, archived")
	}

	plans := make([]models.DayPlan, 0, len(it.DayByDayPlan))
	for i, p := range it.DayByDayPlan {
		if p.Day <= 0 {
			return models.NewValidationError("dayByDayPlan", "entry %d: day must be a positive number", i+1)
		}
		p.Title = strings.TrimSpace(p.Title)
		p.Description = strings.TrimSpace(p.Description)
		p.Activities = cleanList(p.Activities)
		plans = append(plans, p)
	}
	it.DayByDayPlan = plans
	return nil
}
