package models

import "time"

type GalleryItem struct {
	ID           int64     `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	ImageURL     string    `json:"image_url" yaml:"image_url"`
	ThumbnailURL string    `json:"thumbnail_url" yaml:"thumbnail_url"`
	Category     string    `json:"category" yaml:"category"`
	Description  string    `json:"description" yaml:"description"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Post struct {
	ID         int64     `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Slug       string    `json:"slug" yaml:"slug"`
	Excerpt    string    `json:"excerpt" yaml:"excerpt"`
	Content    string    `json:"content" yaml:"content"`
	CoverImage string    `json:"cover_image" yaml:"cover_image"`
	Author     string    `json:"author" yaml:"author"`
	Tags       []string  `json:"tags" yaml:"tags"`
	Status     string    `json:"status" yaml:"status"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"-"`
}
