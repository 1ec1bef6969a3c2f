package service

import (
	"context"
	"testing"

	"trailhead/internal/events"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validItinerary() *models.Itinerary {
	return &models.Itinerary{
		Title:           " EBC Trek ",
		Description:     "Walk to base camp",
		DurationDays:    14,
		Price:           1400,
		MaxParticipants: 12,
		Highlights:      []string{"Kala Pathar", "  ", "Sherpa culture "},
		DayByDayPlan: []models.DayPlan{
			{Day: 1, Title: " Arrival ", Description: "Fly to Kathmandu", Location: " KTM "},
		},
	}
}

func TestNormalizeItinerary(t *testing.T) {
	it := validItinerary()
	require.NoError(t, NormalizeItinerary(it))

	assert.Equal(t, "EBC Trek", it.Title)
	assert.Equal(t, []string{"Kala Pathar", "Sherpa culture"}, it.Highlights)
	assert.Equal(t, []string{}, it.Includes)
	assert.Equal(t, []string{}, it.Excludes)
	assert.Equal(t, models.DifficultyModerate, it.Difficulty)
	assert.Equal(t, models.StatusActive, it.Status)
	require.Len(t, it.DayByDayPlan, 1)
	assert.Equal(t, "Arrival", it.DayByDayPlan[0].Title)
	assert.Equal(t, []string{}, it.DayByDayPlan[0].Activities)
	assert.Equal(t, " KTM ", it.DayByDayPlan[0].Location)
}

func TestNormalizeItineraryValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(it *models.Itinerary)
		field string
	}{
		{"blank title", func(it *models.Itinerary) { it.Title = "   " }, "title"},
		{"missing description", func(it *models.Itinerary) { it.Description = "" }, "description"},
		{"zero duration", func(it *models.Itinerary) { it.DurationDays = 0 }, "duration_days"},
		{"negative price", func(it *models.Itinerary) { it.Price = -1 }, "price"},
		{"no participants", func(it *models.Itinerary) { it.MaxParticipants = 0 }, "maxParticipants"},
		{"unknown difficulty", func(it *models.Itinerary) { it.Difficulty = "Extreme" }, "difficulty"},
		{"unknown status", func(it *models.Itinerary) { it.Status = "deleted" }, "status"},
		{"day zero", func(it *models.Itinerary) { it.DayByDayPlan[0].Day = 0 }, "dayByDayPlan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validItinerary()
			tt.edit(it)
			err := NormalizeItinerary(it)

			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	it := validItinerary()
	it.Difficulty = "hard"
	it.Status = "ARCHIVED"
	require.NoError(t, NormalizeItinerary(it))
	assert.Equal(t, models.DifficultyHard, it.Difficulty)
	assert.Equal(t, models.StatusArchived, it.Status)
}

func TestItineraryService_Create(t *testing.T) {
	repo := new(mockItineraryRepo)
	bus := new(mockPublisher)
	worker := new(mockSyncWorker)
	logger := zerolog.Nop()
	s := NewItineraryService(repo, bus, worker, &logger)
	ctx := context.Background()

	it := validItinerary()
	repo.On("CreateItinerary", ctx, it).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Itinerary).ID = 10
	}).Return(nil).Once()
	bus.On("PublishJSON", events.EventContentCreated, mock.MatchedBy(func(p events.ContentEventPayload) bool {
		return p.Entity == "itinerary" && p.ID == 10 && p.Title == "EBC Trek" && len(p.Record) > 0
	})).Return(nil).Once()
	worker.On("EnqueueUpsert", ctx, "itinerary", int64(10), it).Return(nil).Once()

	require.NoError(t, s.Create(ctx, it))
	assert.Equal(t, int64(10), it.ID)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestItineraryService_CreateInvalidSkipsStore(t *testing.T) {
	repo := new(mockItineraryRepo)
	logger := zerolog.Nop()
	s := NewItineraryService(repo, nil, nil, &logger)

	it := validItinerary()
	it.Title = ""
	err := s.Create(context.Background(), it)

	assert.True(t, models.IsValidation(err))
	repo.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything)
}

func TestItineraryService_UpdateNotFound(t *testing.T) {
	repo := new(mockItineraryRepo)
	bus := new(mockPublisher)
	logger := zerolog.Nop()
	s := NewItineraryService(repo, bus, nil, &logger)
	ctx := context.Background()

	repo.On("UpdateItinerary", ctx, int64(99), mock.Anything).Return(models.ErrNotFound).Once()

	err := s.Update(ctx, 99, validItinerary())
	assert.ErrorIs(t, err, models.ErrNotFound)
	bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestItineraryService_Delete(t *testing.T) {
	repo := new(mockItineraryRepo)
	bus := new(mockPublisher)
	worker := new(mockSyncWorker)
	logger := zerolog.Nop()
	s := NewItineraryService(repo, bus, worker, &logger)
	ctx := context.Background()

	repo.On("DeleteItinerary", ctx, int64(4)).Return(nil).Once()
	bus.On("PublishJSON", events.EventContentDeleted, mock.Anything).Return(assert.AnError).Once()
	worker.On("EnqueueDelete", ctx, "itinerary", int64(4)).Return(assert.AnError).Once()

	// Hook failures are logged, not returned.
	assert.NoError(t, s.Delete(ctx, 4))
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestItineraryService_ListAndGet(t *testing.T) {
	repo := new(mockItineraryRepo)
	logger := zerolog.Nop()
	s := NewItineraryService(repo, nil, nil, &logger)
	ctx := context.Background()
	q := models.ListQuery{Limit: 2}

	repo.On("ListItineraries", ctx, q).Return([]models.Itinerary{{ID: 1}}, 5, nil).Once()
	repo.On("GetItinerary", ctx, int64(1)).Return(&models.Itinerary{ID: 1}, nil).Once()

	items, total, err := s.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 5, total)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}
