// Package storage handles media uploads: the original goes to object storage
// next to a JPEG thumbnail scaled to a fixed width.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"path"
	"strings"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Result holds the public URLs of a stored upload.
type Result struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type Uploader struct {
	store      domain.ObjectStorage
	maxBytes   int64
	thumbWidth int
	logger     *zerolog.Logger
	newKey     func() string
}

func NewUploader(store domain.ObjectStorage, cfg config.StorageConfig, logger *zerolog.Logger) *Uploader {
	return &Uploader{
		store:      store,
		maxBytes:   cfg.MaxUploadMB << 20,
		thumbWidth: cfg.ThumbnailWidth,
		logger:     logger,
		newKey: func() string {
			return time.Now().UTC().Format("2006/01/") + uuid.NewString()
		},
	}
}

// MaxBytes is the largest accepted upload.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Upload validates an image, stores it and its thumbnail, and returns both URLs.
func (u *Uploader) Upload(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, models.NewValidationError("file", "is empty")
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return Result{}, models.NewValidationError("file", "must be at most %d MB", u.maxBytes>>20)
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return Result{}, models.NewValidationError("file", "must be a JPEG, PNG or GIF image")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, models.NewValidationError("file", "is not a readable image")
	}

	thumb, err := Thumbnail(img, u.thumbWidth)
	if err != nil {
		return Result{}, err
	}

	key := u.newKey()
	original := key + ext
	url, err := u.store.Put(ctx, path.Join("uploads", original), contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, err
	}
	thumbURL, err := u.store.Put(ctx, path.Join("thumbs", strings.TrimSuffix(original, ext)+".jpg"), "image/jpeg", bytes.NewReader(thumb), int64(len(thumb)))
	if err != nil {
		return Result{}, err
	}

	u.logger.Info().Str("key", original).Int("bytes", len(data)).Msg("upload stored")
	return Result{URL: url, ThumbnailURL: thumbURL}, nil
}

// Thumbnail scales img to width, keeping the aspect ratio, and encodes it as
// JPEG. Images narrower than width are not enlarged.
func Thumbnail(img image.Image, width int) ([]byte, error) {
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
