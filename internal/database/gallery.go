package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/models"
)

const galleryColumns = `id, title, image_url, thumbnail_url, category, description, created_at, updated_at`

func (db *DB) CreateGalleryItem(ctx context.Context, g *models.GalleryItem) error {
	query := `INSERT INTO gallery (title, image_url, thumbnail_url, category, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		g.Title, nullable(g.ImageURL), g.ThumbnailURL, g.Category, g.Description, now, now,
	)
	if err != nil {
		return writeError("create gallery item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

func (db *DB) UpdateGalleryItem(ctx context.Context, id int64, g *models.GalleryItem) error {
	query := `UPDATE gallery SET title = ?, image_url = ?, thumbnail_url = ?, category = ?, description = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		g.Title, nullable(g.ImageURL), g.ThumbnailURL, g.Category, g.Description, now, id,
	)
	if err != nil {
		return writeError("update gallery item", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	g.ID = id
	g.UpdatedAt = now
	return nil
}

func (db *DB) DeleteGalleryItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM gallery WHERE id = ?`, id)
	if err != nil {
		return writeError("delete gallery item", err)
	}
	return requireAffected(result)
}

func (db *DB) GetGalleryItem(ctx context.Context, id int64) (*models.GalleryItem, error) {
	row := db.QueryRowContext(ctx, `SELECT `+galleryColumns+` FROM gallery WHERE id = ?`, id)
	g, err := scanGalleryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gallery item: %w", err)
	}
	return g, nil
}

func (db *DB) ListGalleryItems(ctx context.Context, q models.ListQuery) ([]models.GalleryItem, int, error) {
	f := &filter{}
	f.like(q.Q, "title", "description")
	f.eq("category", q.Category)

	total, err := db.count(ctx, "gallery", f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT ` + galleryColumns + ` FROM gallery` + f.where() + ` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gallery: %w", err)
	}
	defer rows.Close()

	items := []models.GalleryItem{}
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan gallery item: %w", err)
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate gallery: %w", err)
	}
	return items, total, nil
}

func scanGalleryItem(s scanner) (*models.GalleryItem, error) {
	var (
		g                                       models.GalleryItem
		title, thumbnail, category, description sql.NullString
		createdAt, updatedAt                    sql.NullTime
	)
	if err := s.Scan(&g.ID, &title, &g.ImageURL, &thumbnail, &category, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	g.Title = title.String
	g.ThumbnailURL = thumbnail.String
	g.Category = category.String
	g.Description = description.String
	g.CreatedAt = createdAt.Time
	g.UpdatedAt = updatedAt.Time
	return &g, nil
}
