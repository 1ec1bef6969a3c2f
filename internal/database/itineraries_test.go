package database

import (
	"context"
	"errors"
	"testing"

	"trailhead/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItinerary(title string) *models.Itinerary {
	return &models.Itinerary{
		Title:        title,
		Description:  "Classic trek through Khumbu valley",
		DurationDays: 14,
		Difficulty:   models.DifficultyHard,
		Price:        1450,
		Location:     "Khumbu",
		BestSeason:   "Oct-Nov",
		Image:        "🏔️",
		Highlights:   []string{"Kala Pathar", "Tengboche"},
		DayByDayPlan: []models.DayPlan{
			{Day: 1, Title: "Arrival", Description: "Kathmandu", Activities: []string{}},
			{Day: 2, Title: "Lukla", Description: "Flight and walk", Activities: []string{"flight"}, Location: "Lukla"},
		},
		Includes:        []string{"Permits"},
		Excludes:        []string{},
		MaxParticipants: 12,
		Status:          models.StatusActive,
	}
}

func TestItineraryCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	it := testItinerary("Everest Base Camp")
	require.NoError(t, db.CreateItinerary(ctx, it))
	require.NotZero(t, it.ID)

	got, err := db.GetItinerary(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Everest Base Camp", got.Title)
	assert.Equal(t, models.DifficultyHard, got.Difficulty)
	assert.Equal(t, it.Highlights, got.Highlights)
	assert.Equal(t, it.DayByDayPlan, got.DayByDayPlan)
	assert.Equal(t, []string{"Permits"}, got.Includes)
	assert.Equal(t, []string{}, got.Excludes)
	assert.Equal(t, 12, got.MaxParticipants)

	require.NoError(t, db.DeleteItinerary(ctx, it.ID))
	_, err = db.GetItinerary(ctx, it.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUpdateItineraryReplacesAllColumns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	it := testItinerary("Annapurna Circuit")
	require.NoError(t, db.CreateItinerary(ctx, it))

	replacement := &models.Itinerary{
		Title:           "Annapurna Circuit (short)",
		Description:     "Shortened loop",
		DurationDays:    9,
		Difficulty:      models.DifficultyModerate,
		MaxParticipants: 8,
		Status:          models.StatusInactive,
	}
	require.NoError(t, db.UpdateItinerary(ctx, it.ID, replacement))

	got, err := db.GetItinerary(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annapurna Circuit (short)", got.Title)
	assert.Equal(t, 9, got.DurationDays)
	assert.Empty(t, got.Location)
	assert.Empty(t, got.Image)
	assert.Equal(t, []string{}, got.Highlights)
	assert.Equal(t, []models.DayPlan{}, got.DayByDayPlan)
	assert.Equal(t, []string{}, got.Includes)
	assert.Equal(t, models.StatusInactive, got.Status)
}

func TestItineraryNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	err := db.UpdateItinerary(ctx, 404, testItinerary("Ghost"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = db.DeleteItinerary(ctx, 404)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = db.GetItinerary(ctx, 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateItineraryMissingTitle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	it := testItinerary("")
	err := db.CreateItinerary(context.Background(), it)

	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)
	assert.Zero(t, it.ID)
}

func TestItineraryCorruptedColumns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	it := testItinerary("Langtang")
	require.NoError(t, db.CreateItinerary(ctx, it))

	_, err := db.ExecContext(ctx, `UPDATE itineraries SET highlights = 'not json', day_by_day_plan = NULL, excludes = '' WHERE id = ?`, it.ID)
	require.NoError(t, err)

	got, err := db.GetItinerary(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Highlights)
	assert.Equal(t, []models.DayPlan{}, got.DayByDayPlan)
	assert.Equal(t, []string{}, got.Excludes)
	assert.Equal(t, []string{"Permits"}, got.Includes)
	assert.Equal(t, "Langtang", got.Title)

	list, total, err := db.ListItineraries(ctx, models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, []string{}, list[0].Highlights)
}

func TestListItineraries(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, title := range []string{"Everest Base Camp", "Annapurna Circuit", "Manaslu Circuit"} {
		require.NoError(t, db.CreateItinerary(ctx, testItinerary(title)))
	}
	easy := testItinerary("Poon Hill")
	easy.Difficulty = models.DifficultyEasy
	easy.Location = "Annapurna"
	require.NoError(t, db.CreateItinerary(ctx, easy))

	all, total, err := db.ListItineraries(ctx, models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, all, 4)
	assert.Equal(t, "Poon Hill", all[0].Title)

	byDifficulty, total, err := db.ListItineraries(ctx, models.ListQuery{Difficulty: "easy"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Poon Hill", byDifficulty[0].Title)

	bySearch, total, err := db.ListItineraries(ctx, models.ListQuery{Q: "circuit"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, bySearch, 2)

	paged, total, err := db.ListItineraries(ctx, models.ListQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, paged, 2)
	assert.Equal(t, "Manaslu Circuit", paged[0].Title)

	tail, _, err := db.ListItineraries(ctx, models.ListQuery{Offset: 3})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "Everest Base Camp", tail[0].Title)
}
