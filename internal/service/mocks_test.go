package service

import (
	"context"

	"trailhead/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockItineraryRepo struct {
	mock.Mock
}

func (m *mockItineraryRepo) CreateItinerary(ctx context.Context, it *models.Itinerary) error {
	return m.Called(ctx, it).Error(0)
}

func (m *mockItineraryRepo) UpdateItinerary(ctx context.Context, id int64, it *models.Itinerary) error {
	return m.Called(ctx, id, it).Error(0)
}

func (m *mockItineraryRepo) DeleteItinerary(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockItineraryRepo) GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *mockItineraryRepo) ListItineraries(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Itinerary), args.Int(1), args.Error(2)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReviewRepo) ListReviews(ctx context.Context, t string, id int64, q models.ListQuery) ([]models.Review, int, error) {
	args := m.Called(ctx, t, id, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) AverageRating(ctx context.Context, t string, id int64) (float64, int, error) {
	args := m.Called(ctx, t, id)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload any) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueUpsert(ctx context.Context, entity string, id int64, record any) error {
	return m.Called(ctx, entity, id, record).Error(0)
}

func (m *mockSyncWorker) EnqueueDelete(ctx context.Context, entity string, id int64) error {
	return m.Called(ctx, entity, id).Error(0)
}
