package service

import (
	"context"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService serves one catalog kind (trails, activities or climbing).
type CatalogService struct {
	kind  models.Kind
	repo  domain.CatalogRepository
	hooks writeHooks
}

func NewCatalogService(kind models.Kind, repo domain.CatalogRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		kind:  kind,
		repo:  repo,
		hooks: writeHooks{entity: kind.Singular(), eventBus: eventBus, logger: logger},
	}
}

func (s *CatalogService) Kind() models.Kind {
	return s.kind
}

func (s *CatalogService) List(ctx context.Context, q models.ListQuery) ([]models.CatalogEntry, int, error) {
	return s.repo.ListCatalogEntries(ctx, s.kind, q)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.CatalogEntry, error) {
	return s.repo.GetCatalogEntry(ctx, s.kind, id)
}

func (s *CatalogService) Create(ctx context.Context, e *models.CatalogEntry) error {
	e.Kind = s.kind
	if err := NormalizeCatalogEntry(e); err != nil {
		return err
	}
	if err := s.repo.CreateCatalogEntry(ctx, e); err != nil {
		return err
	}
	s.hooks.written(ctx, actionCreate, e.ID, e.Name, e)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, e *models.CatalogEntry) error {
	e.Kind = s.kind
	if err := NormalizeCatalogEntry(e); err != nil {
		return err
	}
	if err := s.repo.UpdateCatalogEntry(ctx, id, e); err != nil {
		return err
	}
	s.hooks.written(ctx, actionUpdate, id, e.Name, e)
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCatalogEntry(ctx, s.kind, id); err != nil {
		return err
	}
	s.hooks.written(ctx, actionDelete, id, "", nil)
	return nil
}

// NormalizeCatalogEntry requires a name. Difficulty may stay empty; status
// defaults to active.
func NormalizeCatalogEntry(e *models.CatalogEntry) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.Location = strings.TrimSpace(e.Location)
	e.Duration = strings.TrimSpace(e.Duration)
	e.Image = strings.TrimSpace(e.Image)
	e.BestSeason = strings.TrimSpace(e.BestSeason)
	e.Highlights = cleanList(e.Highlights)

	if e.Name == "" {
		return models.NewValidationError("name", "is required")
	}
	if e.Price < 0 {
		return models.NewValidationError("price", "must be a non-negative number")
	}
	if raw := strings.TrimSpace(string(e.Difficulty)); raw != "" {
		d, ok := models.ParseDifficulty(raw)
		if !ok {
			return models.NewValidationError("difficulty", "must be one of Easy, Moderate, Hard, Expert")
		}
		e.Difficulty = d
	}
	if strings.TrimSpace(string(e.Status)) == "" {
		e.Status = models.StatusActive
	} else if st, ok := models.ParseStatus(string(e.Status)); ok {
		e.Status = st
	} else {
		return models.NewValidationError("status", "must be one of active, inactive, archived")
	}
	return nil
}
