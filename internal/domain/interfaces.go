package domain

import (
	"context"
	"io"
	"time"

	"trailhead/internal/editor"
	"trailhead/internal/models"
)

type ItineraryRepository interface {
	CreateItinerary(ctx context.Context, it *models.Itinerary) error
	UpdateItinerary(ctx context.Context, id int64, it *models.Itinerary) error
	DeleteItinerary(ctx context.Context, id int64) error
	GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error)
	ListItineraries(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error)
}

type DestinationRepository interface {
	CreateDestination(ctx context.Context, d *models.Destination) error
	UpdateDestination(ctx context.Context, id int64, d *models.Destination) error
	DeleteDestination(ctx context.Context, id int64) error
	GetDestination(ctx context.Context, id int64) (*models.Destination, error)
	ListDestinations(ctx context.Context, q models.ListQuery) ([]models.Destination, int, error)
}

// CatalogRepository stores trails, activities and climbing spots; each kind
// lives in its own table.
type CatalogRepository interface {
	CreateCatalogEntry(ctx context.Context, e *models.CatalogEntry) error
	UpdateCatalogEntry(ctx context.Context, id int64, e *models.CatalogEntry) error
	DeleteCatalogEntry(ctx context.Context, kind models.Kind, id int64) error
	GetCatalogEntry(ctx context.Context, kind models.Kind, id int64) (*models.CatalogEntry, error)
	ListCatalogEntries(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.CatalogEntry, int, error)
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, reviewType string, typeID int64, q models.ListQuery) ([]models.Review, int, error)
	AverageRating(ctx context.Context, reviewType string, typeID int64) (float64, int, error)
	DeleteReview(ctx context.Context, id int64) error
}

type GalleryRepository interface {
	CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error
	UpdateGalleryItem(ctx context.Context, id int64, g *models.GalleryItem) error
	DeleteGalleryItem(ctx context.Context, id int64) error
	GetGalleryItem(ctx context.Context, id int64) (*models.GalleryItem, error)
	ListGalleryItems(ctx context.Context, q models.ListQuery) ([]models.GalleryItem, int, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, p *models.Post) error
	UpdatePost(ctx context.Context, id int64, p *models.Post) error
	DeletePost(ctx context.Context, id int64) error
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, q models.ListQuery) ([]models.Post, int, error)
}

type SyncQueueRepository interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
	PurgeSyncTasks(ctx context.Context, before time.Time) (int64, error)
}

// FormRepository keeps admin form sessions between requests. Get returns
// (nil, nil) for an unknown or expired session.
type FormRepository interface {
	GetForm(ctx context.Context, session string) (*editor.FormState, error)
	SetForm(ctx context.Context, session string, state editor.FormState) error
	DeleteForm(ctx context.Context, session string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// SheetsWriter mirrors catalog records into the operators' spreadsheet.
type SheetsWriter interface {
	UpsertItinerary(ctx context.Context, it *models.Itinerary) error
	UpsertDestination(ctx context.Context, d *models.Destination) error
	DeleteRow(ctx context.Context, entity string, id int64) error
}

// SyncWorker accepts mirror jobs; implementations persist them before returning.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, entity string, id int64, record any) error
	EnqueueDelete(ctx context.Context, entity string, id int64) error
}

// ObjectStorage stores uploaded media and returns its public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
