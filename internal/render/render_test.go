package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItineraries struct {
	items map[int64]*models.Itinerary
	err   error
}

func (f *fakeItineraries) Get(_ context.Context, id int64) (*models.Itinerary, error) {
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return it, nil
}

func (f *fakeItineraries) List(_ context.Context, _ models.ListQuery) ([]models.Itinerary, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []models.Itinerary
	for _, it := range f.items {
		out = append(out, *it)
	}
	return out, len(out), nil
}

type fakeDestinations struct {
	items map[int64]*models.Destination
}

func (f *fakeDestinations) Get(_ context.Context, id int64) (*models.Destination, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return d, nil
}

func (f *fakeDestinations) List(_ context.Context, _ models.ListQuery) ([]models.Destination, int, error) {
	var out []models.Destination
	for _, d := range f.items {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func ebc() *models.Itinerary {
	return &models.Itinerary{
		ID:           7,
		Title:        "EBC Trek",
		Description:  "Classic route to base camp",
		DurationDays: 14,
		Difficulty:   models.DifficultyHard,
		Price:        1450,
		Location:     "Khumbu",
		Highlights:   []string{"Kala Pathar", "Sherpa culture"},
		DayByDayPlan: []models.DayPlan{{Day: 1, Title: "Arrival", Description: "Fly to Kathmandu"}},
		Includes:     []string{},
		Excludes:     nil,
	}
}

func newTestPages(its *fakeItineraries, dests *fakeDestinations) *Pages {
	logger := zerolog.Nop()
	return NewPages(its, dests, "https://trails.example.com/", &logger)
}

func TestItineraryView(t *testing.T) {
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{7: ebc()}}, &fakeDestinations{})

	v := pages.Itinerary(context.Background(), 7)
	require.True(t, v.Ready())
	assert.Equal(t, "EBC Trek", v.Title)
	assert.Equal(t, []string{"Kala Pathar", "Sherpa culture"}, v.Highlights)
	assert.Equal(t, "Arrival", v.Days[0].Title)
	assert.Nil(t, v.Includes)
	assert.Nil(t, v.Excludes)
	assert.Equal(t, models.DefaultItineraryImage, v.Image)
	assert.Equal(t, "https://trails.example.com/itineraries/7", v.PageURL)
	assert.Equal(t, "https://trails.example.com/itineraries/7/brochure.pdf", v.BrochureURL)
}

func TestItineraryErrorStates(t *testing.T) {
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{}}, &fakeDestinations{})
	v := pages.Itinerary(context.Background(), 99)
	assert.Equal(t, StateNotFound, v.State)
	assert.Equal(t, "not found", v.Message)
	assert.Equal(t, "/itineraries", v.BackURL)

	pages = newTestPages(&fakeItineraries{err: errors.New("disk I/O error")}, &fakeDestinations{})
	v = pages.Itinerary(context.Background(), 1)
	assert.Equal(t, StateFailed, v.State)
	assert.Equal(t, "failed to load", v.Message)
	assert.NotContains(t, v.Message, "disk")
}

func TestDestinationMedia(t *testing.T) {
	dests := &fakeDestinations{items: map[int64]*models.Destination{
		1: {ID: 1, Name: "Annapurna", Images: []string{"a.jpg", "b.jpg", "c.jpg"}, ImageURL: "legacy.jpg"},
		2: {ID: 2, Name: "Langtang", ImageURL: "legacy.jpg", VideoURL: "tour.mp4"},
		3: {ID: 3, Name: "Mustang"},
	}}
	pages := newTestPages(&fakeItineraries{}, dests)
	ctx := context.Background()

	v := pages.Destination(ctx, 1)
	assert.Equal(t, "a.jpg", v.MainImage)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, v.Gallery)

	v = pages.Destination(ctx, 2)
	assert.Equal(t, "legacy.jpg", v.MainImage)
	assert.Nil(t, v.Gallery)
	assert.Equal(t, []string{"tour.mp4"}, v.Videos)

	v = pages.Destination(ctx, 3)
	assert.Empty(t, v.MainImage)
	assert.Nil(t, v.Videos)

	assert.Equal(t, StateNotFound, pages.Destination(ctx, 4).State)
}

func TestTemplatesOmitEmptySections(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{7: ebc()}}, &fakeDestinations{})

	var buf bytes.Buffer
	require.NoError(t, tpl.Itinerary(&buf, pages.Itinerary(context.Background(), 7)))
	html := buf.String()

	assert.Contains(t, html, "Kala Pathar")
	assert.Contains(t, html, "Day 1: Arrival")
	assert.Contains(t, html, `class="highlights"`)
	assert.NotContains(t, html, `class="includes"`)
	assert.NotContains(t, html, `class="excludes"`)
}

func TestTemplatesRenderStates(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{}}, &fakeDestinations{})

	var buf bytes.Buffer
	require.NoError(t, tpl.Itinerary(&buf, pages.Itinerary(context.Background(), 3)))
	assert.Contains(t, buf.String(), "not found")
	assert.Contains(t, buf.String(), `href="/itineraries"`)

	buf.Reset()
	require.NoError(t, tpl.Listing(&buf, pages.Itineraries(context.Background())))
	assert.Contains(t, buf.String(), "Nothing here yet.")
}

func TestTemplatesEscapeContent(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)
	it := ebc()
	it.Highlights = []string{"<script>alert(1)</script>"}
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{7: it}}, &fakeDestinations{})

	var buf bytes.Buffer
	require.NoError(t, tpl.Itinerary(&buf, pages.Itinerary(context.Background(), 7)))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestBrochure(t *testing.T) {
	pages := newTestPages(&fakeItineraries{items: map[int64]*models.Itinerary{7: ebc()}}, &fakeDestinations{})

	var buf bytes.Buffer
	require.NoError(t, Brochure(&buf, pages.Itinerary(context.Background(), 7)))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	err := Brochure(&buf, pages.Itinerary(context.Background(), 8))
	assert.ErrorIs(t, err, ErrNotReady)
}
