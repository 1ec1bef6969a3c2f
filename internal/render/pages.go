// Package render builds the read-only public pages for itineraries and
// destinations. Fetch errors become a page state; templates never see them.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

type PageState string

const (
	StateReady    PageState = "ready"
	StateNotFound PageState = "not_found"
	StateFailed   PageState = "failed"
)

const (
	itineraryListPath   = "/itineraries"
	destinationListPath = "/destinations"
	listingLimit        = 50
)

type ItinerarySource interface {
	Get(ctx context.Context, id int64) (*models.Itinerary, error)
	List(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error)
}

type DestinationSource interface {
	Get(ctx context.Context, id int64) (*models.Destination, error)
	List(ctx context.Context, q models.ListQuery) ([]models.Destination, int, error)
}

// Page carries what every template needs besides its record.
type Page struct {
	State   PageState
	Title   string
	Message string
	BackURL string
}

func (p Page) Ready() bool {
	return p.State == StateReady
}

type ItineraryView struct {
	Page
	ID              int64
	Description     string
	DurationDays    int
	Difficulty      string
	Price           float64
	Location        string
	BestSeason      string
	Image           string
	MaxParticipants int
	// Empty sections are nil so templates skip them with {{with}}.
	Highlights  []string
	Days        []models.DayPlan
	Includes    []string
	Excludes    []string
	PageURL     string
	BrochureURL string
}

type DestinationView struct {
	Page
	ID          int64
	Location    string
	BestSeason  string
	Description string
	MainImage   string
	Gallery     []string
	Videos      []string
}

type ListingItem struct {
	URL      string
	Title    string
	Subtitle string
	Image    string
}

type ListingView struct {
	Page
	Items []ListingItem
}

// Pages turns stored records into view models.
type Pages struct {
	itineraries  ItinerarySource
	destinations DestinationSource
	baseURL      string
	logger       *zerolog.Logger
}

func NewPages(itineraries ItinerarySource, destinations DestinationSource, baseURL string, logger *zerolog.Logger) *Pages {
	return &Pages{
		itineraries:  itineraries,
		destinations: destinations,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

func (p *Pages) Itinerary(ctx context.Context, id int64) ItineraryView {
	it, err := p.itineraries.Get(ctx, id)
	if err != nil {
		return ItineraryView{Page: p.failure(err, "itinerary", id, itineraryListPath)}
	}

	image := it.Image
	if image == "" {
		image = models.DefaultItineraryImage
	}
	pageURL := fmt.Sprintf("%s%s/%d", p.baseURL, itineraryListPath, it.ID)

	return ItineraryView{
		Page:            Page{State: StateReady, Title: it.Title, BackURL: itineraryListPath},
		ID:              it.ID,
		Description:     it.Description,
		DurationDays:    it.DurationDays,
		Difficulty:      string(it.Difficulty),
		Price:           it.Price,
		Location:        it.Location,
		BestSeason:      it.BestSeason,
		Image:           image,
		MaxParticipants: it.MaxParticipants,
		Highlights:      section(it.Highlights),
		Days:            daySection(it.DayByDayPlan),
		Includes:        section(it.Includes),
		Excludes:        section(it.Excludes),
		PageURL:         pageURL,
		BrochureURL:     pageURL + "/brochure.pdf",
	}
}

func (p *Pages) Destination(ctx context.Context, id int64) DestinationView {
	d, err := p.destinations.Get(ctx, id)
	if err != nil {
		return DestinationView{Page: p.failure(err, "destination", id, destinationListPath)}
	}

	view := DestinationView{
		Page:        Page{State: StateReady, Title: d.Name, BackURL: destinationListPath},
		ID:          d.ID,
		Location:    d.Location,
		BestSeason:  d.BestSeason,
		Description: d.Description,
		Videos:      section(d.VideoList()),
	}
	if images := d.ImageList(); len(images) > 0 {
		view.MainImage = images[0]
		view.Gallery = section(images[1:])
	}
	return view
}

func (p *Pages) Itineraries(ctx context.Context) ListingView {
	items, _, err := p.itineraries.List(ctx, models.ListQuery{Status: string(models.StatusActive), Limit: listingLimit})
	if err != nil {
		return ListingView{Page: p.failure(err, "itineraries", 0, "/")}
	}
	view := ListingView{Page: Page{State: StateReady, Title: "Itineraries", BackURL: "/"}}
	for _, it := range items {
		view.Items = append(view.Items, ListingItem{
			URL:      fmt.Sprintf("%s/%d", itineraryListPath, it.ID),
			Title:    it.Title,
			Subtitle: fmt.Sprintf("%d days · %s", it.DurationDays, it.Location),
			Image:    it.Image,
		})
	}
	return view
}

func (p *Pages) Destinations(ctx context.Context) ListingView {
	items, _, err := p.destinations.List(ctx, models.ListQuery{Limit: listingLimit})
	if err != nil {
		return ListingView{Page: p.failure(err, "destinations", 0, "/")}
	}
	view := ListingView{Page: Page{State: StateReady, Title: "Destinations", BackURL: "/"}}
	for i := range items {
		d := &items[i]
		view.Items = append(view.Items, ListingItem{
			URL:      fmt.Sprintf("%s/%d", destinationListPath, d.ID),
			Title:    d.Name,
			Subtitle: d.Location,
			Image:    d.MainImage(),
		})
	}
	return view
}

// NotFoundPage is the state shown for a missing record.
func NotFoundPage(back string) Page {
	return Page{State: StateNotFound, Title: "Not found", Message: "not found", BackURL: back}
}

func (p *Pages) failure(err error, what string, id int64, back string) Page {
	if errors.Is(err, models.ErrNotFound) {
		return NotFoundPage(back)
	}
	p.logger.Error().Err(err).Str("entity", what).Int64("id", id).Msg("page load failed")
	return Page{State: StateFailed, Title: "Error", Message: "failed to load", BackURL: back}
}

func section(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return items
}

func daySection(days []models.DayPlan) []models.DayPlan {
	if len(days) == 0 {
		return nil
	}
	return days
}
