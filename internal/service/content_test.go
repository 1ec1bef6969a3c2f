package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"trailhead/internal/database"
	"trailhead/internal/events"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *database.DB {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNormalizeDestination(t *testing.T) {
	t.Run("legacy fields fill empty lists", func(t *testing.T) {
		d := &models.Destination{Name: "Pokhara", Location: "Nepal", ImageURL: " /img/lake.jpg ", VideoURL: "https://v/1"}
		require.NoError(t, NormalizeDestination(d))
		assert.Equal(t, []string{"/img/lake.jpg"}, d.Images)
		assert.Equal(t, []string{"https://v/1"}, d.Videos)
		assert.Equal(t, "/img/lake.jpg", d.ImageURL)
	})

	t.Run("lists win over legacy", func(t *testing.T) {
		d := &models.Destination{Name: "Pokhara", Location: "Nepal", Images: []string{"", "/a.jpg"}, ImageURL: "/legacy.jpg"}
		require.NoError(t, NormalizeDestination(d))
		assert.Equal(t, []string{"/a.jpg"}, d.Images)
		assert.Equal(t, "/a.jpg", d.ImageURL)
		assert.Equal(t, []string{}, d.Videos)
		assert.Equal(t, "", d.VideoURL)
	})

	t.Run("explicit empty lists clear media", func(t *testing.T) {
		var d models.Destination
		body := `{"name":"Pokhara","location":"Nepal","images":[],"image_url":"/a.jpg","videos":[],"video_url":"https://v/1"}`
		require.NoError(t, json.Unmarshal([]byte(body), &d))
		require.NoError(t, NormalizeDestination(&d))
		assert.Equal(t, []string{}, d.Images)
		assert.Equal(t, []string{}, d.Videos)
		assert.Equal(t, "", d.ImageURL)
		assert.Equal(t, "", d.VideoURL)
	})

	t.Run("null list keeps legacy fallback", func(t *testing.T) {
		var d models.Destination
		body := `{"name":"Pokhara","location":"Nepal","images":null,"image_url":"/a.jpg"}`
		require.NoError(t, json.Unmarshal([]byte(body), &d))
		require.NoError(t, NormalizeDestination(&d))
		assert.Equal(t, []string{"/a.jpg"}, d.Images)
	})

	t.Run("location required", func(t *testing.T) {
		err := NormalizeDestination(&models.Destination{Name: "Pokhara"})
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "location", ve.Field)
	})
}

func TestDestinationServiceWithStore(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	s := NewDestinationService(db, nil, nil, &logger)
	ctx := context.Background()

	d := &models.Destination{Name: "Mustang", Location: "Nepal", ImageURL: "/m.jpg"}
	require.NoError(t, s.Create(ctx, d))

	got, err := s.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/m.jpg"}, got.Images)
	assert.Equal(t, "/m.jpg", got.MainImage())

	require.NoError(t, s.Delete(ctx, d.ID))
	_, err = s.Get(ctx, d.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCatalogService(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	trails := NewCatalogService(models.KindTrail, db, nil, &logger)
	climbing := NewCatalogService(models.KindClimbing, db, nil, &logger)
	ctx := context.Background()

	e := &models.CatalogEntry{Name: " Poon Hill ", Difficulty: "easy", Highlights: []string{"sunrise", " "}}
	require.NoError(t, trails.Create(ctx, e))
	assert.Equal(t, models.KindTrail, e.Kind)
	assert.Equal(t, models.DifficultyEasy, e.Difficulty)
	assert.Equal(t, models.StatusActive, e.Status)

	got, err := trails.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Poon Hill", got.Name)
	assert.Equal(t, []string{"sunrise"}, got.Highlights)

	_, err = climbing.Get(ctx, e.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = trails.Create(ctx, &models.CatalogEntry{Name: "x", Difficulty: "insane"})
	assert.True(t, models.IsValidation(err))
}

func TestReviewService(t *testing.T) {
	repo := new(mockReviewRepo)
	bus := new(mockPublisher)
	logger := zerolog.Nop()
	s := NewReviewService(repo, bus, &logger)
	ctx := context.Background()

	t.Run("rejects bad input", func(t *testing.T) {
		cases := []models.Review{
			{Type: "hotel", TypeID: 1, Author: "a", Rating: 3},
			{Type: "trail", TypeID: 0, Author: "a", Rating: 3},
			{Type: "trail", TypeID: 1, Author: " ", Rating: 3},
			{Type: "trail", TypeID: 1, Author: "a", Rating: 6},
		}
		for _, r := range cases {
			r := r
			assert.True(t, models.IsValidation(s.Create(ctx, &r)), "%+v", r)
		}
		repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
	})

	t.Run("publishes on create", func(t *testing.T) {
		r := &models.Review{Type: "itinerary", TypeID: 3, Author: " Mira ", Rating: 5, Comment: "Superb"}
		repo.On("CreateReview", ctx, r).Return(nil).Once()
		bus.On("PublishJSON", events.EventReviewCreated, mock.MatchedBy(func(p events.ReviewEventPayload) bool {
			return p.Author == "Mira" && p.Rating == 5 && p.TypeID == 3
		})).Return(nil).Once()

		require.NoError(t, s.Create(ctx, r))
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("summary", func(t *testing.T) {
		repo.On("AverageRating", ctx, "trail", int64(2)).Return(4.5, 2, nil).Once()
		sum, err := s.Summary(ctx, "trail", 2)
		require.NoError(t, err)
		assert.Equal(t, ReviewSummary{Average: 4.5, Count: 2}, sum)
	})
}

func TestGalleryService(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	s := NewGalleryService(db, nil, &logger)
	ctx := context.Background()

	err := s.Create(ctx, &models.GalleryItem{Title: "No image"})
	assert.True(t, models.IsValidation(err))

	g := &models.GalleryItem{Title: "Lake", ImageURL: "/lake.jpg"}
	require.NoError(t, s.Create(ctx, g))
	assert.Equal(t, "/lake.jpg", g.ThumbnailURL)
}

func TestPostService(t *testing.T) {
	db := setupDB(t)
	logger := zerolog.Nop()
	s := NewPostService(db, nil, &logger)
	ctx := context.Background()

	p := &models.Post{Title: "Best Treks of 2024!", Tags: []string{"nepal", ""}}
	require.NoError(t, s.Create(ctx, p))
	assert.Equal(t, "best-treks-of-2024", p.Slug)
	assert.Equal(t, models.PostStatusDraft, p.Status)

	got, err := s.GetBySlug(ctx, " Best-Treks-of-2024 ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, []string{"nepal"}, got.Tags)

	dup := &models.Post{Title: "Best treks of 2024"}
	err = s.Create(ctx, dup)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "slug", ve.Field)

	assert.True(t, models.IsValidation(s.Create(ctx, &models.Post{Title: "x", Status: "hidden"})))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "annapurna-base-camp", Slugify("  Annapurna   Base-Camp "))
	assert.Equal(t, "k2", Slugify("--K2--"))
	assert.Equal(t, "", Slugify("!!!"))
}
