package service

import (
	"context"
	"strings"
	"unicode"

	"trailhead/internal/domain"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
)

type PostService struct {
	repo  domain.PostRepository
	hooks writeHooks
}

func NewPostService(repo domain.PostRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *PostService {
	return &PostService{
		repo:  repo,
		hooks: writeHooks{entity: "post", eventBus: eventBus, logger: logger},
	}
}

// List filters by tag through ListQuery.Category.
func (s *PostService) List(ctx context.Context, q models.ListQuery) ([]models.Post, int, error) {
	return s.repo.ListPosts(ctx, q)
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.repo.GetPost(ctx, id)
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.repo.GetPostBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *PostService) Create(ctx context.Context, p *models.Post) error {
	if err := normalizePost(p); err != nil {
		return err
	}
	if err := s.repo.CreatePost(ctx, p); err != nil {
		return err
	}
	s.hooks.written(ctx, actionCreate, p.ID, p.Title, p)
	return nil
}

func (s *PostService) Update(ctx context.Context, id int64, p *models.Post) error {
	if err := normalizePost(p); err != nil {
		return err
	}
	if err := s.repo.UpdatePost(ctx, id, p); err != nil {
		return err
	}
	s.hooks.written(ctx, actionUpdate, id, p.Title, p)
	return nil
}

func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	s.hooks.written(ctx, actionDelete, id, "", nil)
	return nil
}

func normalizePost(p *models.Post) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	p.CoverImage = strings.TrimSpace(p.CoverImage)
	p.Author = strings.TrimSpace(p.Author)
	p.Tags = cleanList(p.Tags)
	if p.Title == "" {
		return models.NewValidationError("title", "is required")
	}

	p.Slug = Slugify(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		return models.NewValidationError("slug", "must contain a letter or digit")
	}

	switch strings.ToLower(strings.TrimSpace(p.Status)) {
	case "", models.PostStatusDraft:
		p.Status = models.PostStatusDraft
	case models.PostStatusPublished:
		p.Status = models.PostStatusPublished
	default:
		return models.NewValidationError("status", "must be draft or published")
	}
	return nil
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
