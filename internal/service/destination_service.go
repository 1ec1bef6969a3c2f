package service

import (
	"context"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

const entityDestination = "destination"

type DestinationService struct {
	repo  domain.DestinationRepository
	hooks writeHooks
}

func NewDestinationService(repo domain.DestinationRepository, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *DestinationService {
	return &DestinationService{
		repo:  repo,
		hooks: writeHooks{entity: entityDestination, eventBus: eventBus, sync: syncWorker, logger: logger},
	}
}

func (s *DestinationService) List(ctx context.Context, q models.ListQuery) ([]models.Destination, int, error) {
	return s.repo.ListDestinations(ctx, q)
}

func (s *DestinationService) Get(ctx context.Context, id int64) (*models.Destination, error) {
	return s.repo.GetDestination(ctx, id)
}

func (s *DestinationService) Create(ctx context.Context, d *models.Destination) error {
	if err := NormalizeDestination(d); err != nil {
		return err
	}
	if err := s.repo.CreateDestination(ctx, d); err != nil {
		return err
	}
	s.hooks.written(ctx, actionCreate, d.ID, d.Name, d)
	return nil
}

func (s *DestinationService) Update(ctx context.Context, id int64, d *models.Destination) error {
	if err := NormalizeDestination(d); err != nil {
		return err
	}
	if err := s.repo.UpdateDestination(ctx, id, d); err != nil {
		return err
	}
	s.hooks.written(ctx, actionUpdate, id, d.Name, d)
	return nil
}

func (s *DestinationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDestination(ctx, id); err != nil {
		return err
	}
	s.hooks.written(ctx, actionDelete, id, "", nil)
	return nil
}

// NormalizeDestination validates name and location and folds the legacy
// singular media fields into the lists when the lists are empty.
func NormalizeDestination(d *models.Destination) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	d.BestSeason = strings.TrimSpace(d.BestSeason)
	d.Description = strings.TrimSpace(d.Description)
	if d.Name == "" {
		return models.NewValidationError("name", "is required")
	}
	if d.Location == "" {
		return models.NewValidationError("location", "is required")
	}

	d.Images = cleanList(d.ImageList())
	d.Videos = cleanList(d.VideoList())
	d.ImageURL = ""
	d.VideoURL = ""
	if len(d.Images) > 0 {
		d.ImageURL = d.Images[0]
	}
	if len(d.Videos) > 0 {
		d.VideoURL = d.Videos[0]
	}
	return nil
}
