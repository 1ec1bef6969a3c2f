package service

import (
	"context"
	"strings"

	"trailhead/internal/domain"
	"trailhead/internal/events"
	"trailhead/internal/metrics"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

// ReviewSummary aggregates the reviews of one record.
type ReviewSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type ReviewService struct {
	repo     domain.ReviewRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(repo domain.ReviewRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ReviewService) List(ctx context.Context, reviewType string, typeID int64, q models.ListQuery) ([]models.Review, int, error) {
	if err := validateReviewTarget(reviewType, typeID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListReviews(ctx, reviewType, typeID, q)
}

func (s *ReviewService) Summary(ctx context.Context, reviewType string, typeID int64) (ReviewSummary, error) {
	if err := validateReviewTarget(reviewType, typeID); err != nil {
		return ReviewSummary{}, err
	}
	avg, count, err := s.repo.AverageRating(ctx, reviewType, typeID)
	if err != nil {
		return ReviewSummary{}, err
	}
	return ReviewSummary{Average: avg, Count: count}, nil
}

func (s *ReviewService) Create(ctx context.Context, r *models.Review) error {
	r.Author = strings.TrimSpace(r.Author)
	r.Comment = strings.TrimSpace(r.Comment)
	if err := validateReviewTarget(r.Type, r.TypeID); err != nil {
		return err
	}
	if r.Author == "" {
		return models.NewValidationError("author", "is required")
	}
	if r.Rating < models.ReviewMinRating || r.Rating > models.ReviewMaxRating {
		return models.NewValidationError("rating", "must be between %d and %d", models.ReviewMinRating, models.ReviewMaxRating)
	}

	if err := s.repo.CreateReview(ctx, r); err != nil {
		return err
	}
	metrics.IncContentWrite("review", actionCreate)

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{
			ReviewID: r.ID,
			Type:     r.Type,
			TypeID:   r.TypeID,
			Author:   r.Author,
			Rating:   r.Rating,
			Comment:  r.Comment,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", r.ID).Msg("publish event error")
		}
	}
	return nil
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return err
	}
	metrics.IncContentWrite("review", actionDelete)
	return nil
}

func validateReviewTarget(reviewType string, typeID int64) error {
	if !models.ValidReviewType(reviewType) {
		return models.NewValidationError("type", "must be one of %s", strings.Join(models.ReviewTypes, ", "))
	}
	if typeID <= 0 {
		return models.NewValidationError("type_id", "must be a positive number")
	}
	return nil
}
