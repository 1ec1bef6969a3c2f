package service

import (
	"context"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

type GalleryService struct {
	repo  domain.GalleryRepository
	hooks writeHooks
}

func NewGalleryService(repo domain.GalleryRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *GalleryService {
	return &GalleryService{
		repo:  repo,
		hooks: writeHooks{entity: "gallery", eventBus: eventBus, logger: logger},
	}
}

func (s *GalleryService) List(ctx context.Context, q models.ListQuery) ([]models.GalleryItem, int, error) {
	return s.repo.ListGalleryItems(ctx, q)
}

func (s *GalleryService) Get(ctx context.Context, id int64) (*models.GalleryItem, error) {
	return s.repo.GetGalleryItem(ctx, id)
}

func (s *GalleryService) Create(ctx context.Context, g *models.GalleryItem) error {
	if err := normalizeGalleryItem(g); err != nil {
		return err
	}
	if err := s.repo.CreateGalleryItem(ctx, g); err != nil {
		return err
	}
	s.hooks.written(ctx, actionCreate, g.ID, g.Title, g)
	return nil
}

func (s *GalleryService) Update(ctx context.Context, id int64, g *models.GalleryItem) error {
	if err := normalizeGalleryItem(g); err != nil {
		return err
	}
	if err := s.repo.UpdateGalleryItem(ctx, id, g); err != nil {
		return err
	}
	s.hooks.written(ctx, actionUpdate, id, g.Title, g)
	return nil
}

func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteGalleryItem(ctx, id); err != nil {
		return err
	}
	s.hooks.written(ctx, actionDelete, id, "", nil)
	return nil
}

func normalizeGalleryItem(g *models.GalleryItem) error {
	g.Title = strings.TrimSpace(g.Title)
	g.ImageURL = strings.TrimSpace(g.ImageURL)
	g.ThumbnailURL = strings.TrimSpace(g.ThumbnailURL)
	g.Category = strings.TrimSpace(g.Category)
	g.Description = strings.TrimSpace(g.Description)
	if g.ImageURL == "" {
		return models.NewValidationError("image_url", "is required")
	}
	if g.ThumbnailURL == "" {
		g.ThumbnailURL = g.ImageURL
	}
	return nil
}
