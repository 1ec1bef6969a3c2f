package database

import (
	"context"
	"testing"

	"trailhead/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for i, rating := range []int{5, 4, 3} {
		r := &models.Review{Type: "itinerary", TypeID: 1, Author: "guest", Rating: rating, Comment: "ok"}
		require.NoError(t, db.CreateReview(ctx, r), i)
	}
	require.NoError(t, db.CreateReview(ctx, &models.Review{Type: "destination", TypeID: 1, Author: "guest", Rating: 1}))

	reviews, total, err := db.ListReviews(ctx, "itinerary", 1, models.ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, reviews, 2)
	assert.Equal(t, 3, reviews[0].Rating)

	avg, count, err := db.AverageRating(ctx, "itinerary", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.InDelta(t, 4.0, avg, 0.001)

	avg, count, err = db.AverageRating(ctx, "trail", 7)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)

	err = db.CreateReview(ctx, &models.Review{Type: "itinerary", TypeID: 1, Author: "guest", Rating: 9})
	assert.True(t, models.IsValidation(err))

	require.NoError(t, db.DeleteReview(ctx, reviews[0].ID))
	assert.ErrorIs(t, db.DeleteReview(ctx, reviews[0].ID), models.ErrNotFound)
}

func TestGallery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	g := &models.GalleryItem{Title: "Sunrise", ImageURL: "/uploads/a.jpg", ThumbnailURL: "/uploads/a_thumb.jpg", Category: "peaks"}
	require.NoError(t, db.CreateGalleryItem(ctx, g))
	require.NoError(t, db.CreateGalleryItem(ctx, &models.GalleryItem{ImageURL: "/uploads/b.jpg", Category: "people"}))

	items, total, err := db.ListGalleryItems(ctx, models.ListQuery{Category: "peaks"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Sunrise", items[0].Title)

	g.Title = "Sunset"
	require.NoError(t, db.UpdateGalleryItem(ctx, g.ID, g))
	got, err := db.GetGalleryItem(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunset", got.Title)

	assert.True(t, models.IsValidation(db.CreateGalleryItem(ctx, &models.GalleryItem{Title: "no image"})))
	require.NoError(t, db.DeleteGalleryItem(ctx, g.ID))
	_, err = db.GetGalleryItem(ctx, g.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPosts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	p := &models.Post{Title: "Packing list", Slug: "packing-list", Tags: []string{"gear", "tips"}, Status: models.PostStatusPublished}
	require.NoError(t, db.CreatePost(ctx, p))
	require.NoError(t, db.CreatePost(ctx, &models.Post{Title: "Draft", Slug: "draft", Status: models.PostStatusDraft}))

	dup := db.CreatePost(ctx, &models.Post{Title: "Again", Slug: "packing-list", Status: models.PostStatusDraft})
	var ve *models.ValidationError
	require.ErrorAs(t, dup, &ve)
	assert.Equal(t, "slug", ve.Field)

	bySlug, err := db.GetPostBySlug(ctx, "packing-list")
	require.NoError(t, err)
	assert.Equal(t, []string{"gear", "tips"}, bySlug.Tags)

	published, total, err := db.ListPosts(ctx, models.ListQuery{Status: models.PostStatusPublished})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, p.ID, published[0].ID)

	_, err = db.ExecContext(ctx, `UPDATE posts SET tags = '{broken' WHERE slug = 'draft'`)
	require.NoError(t, err)
	tagged, total, err := db.ListPosts(ctx, models.ListQuery{Category: "gear"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Packing list", tagged[0].Title)

	require.NoError(t, db.DeletePost(ctx, p.ID))
	_, err = db.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
