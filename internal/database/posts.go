package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailhead/internal/codec"
	"trailhead/internal/models"
)

const postColumns = `id, title, slug, excerpt, content, cover_image, author, tags, status, created_at, updated_at`

func (db *DB) CreatePost(ctx context.Context, p *models.Post) error {
	tags, err := codec.EncodeStringsColumn(p.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (title, slug, excerpt, content, cover_image, author, tags, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(p.Title), nullable(p.Slug), p.Excerpt, p.Content, p.CoverImage, p.Author, tags, p.Status, now, now,
	)
	if err != nil {
		return writeError("create post", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) UpdatePost(ctx context.Context, id int64, p *models.Post) error {
	tags, err := codec.EncodeStringsColumn(p.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, cover_image = ?, author = ?, tags = ?,
				status = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(p.Title), nullable(p.Slug), p.Excerpt, p.Content, p.CoverImage, p.Author, tags, p.Status, now, id,
	)
	if err != nil {
		return writeError("update post", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	p.ID = id
	p.UpdatedAt = now
	return nil
}

func (db *DB) DeletePost(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return writeError("delete post", err)
	}
	return requireAffected(result)
}

func (db *DB) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return db.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
}

func (db *DB) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return db.getPost(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (db *DB) getPost(ctx context.Context, query string, arg any) (*models.Post, error) {
	p, err := db.scanPost(db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

func (db *DB) ListPosts(ctx context.Context, q models.ListQuery) ([]models.Post, int, error) {
	f := &filter{}
	f.like(q.Q, "title", "excerpt", "content")
	f.eq("status", q.Status)
	if q.Category != "" {
		// tags hold a JSON array; malformed rows never match
		f.clauses = append(f.clauses,
			"CASE WHEN json_valid(posts.tags) THEN EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?) ELSE 0 END")
		f.args = append(f.args, q.Category)
	}

	total, err := db.count(ctx, "posts", f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT ` + postColumns + ` FROM posts` + f.where() + ` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := db.scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, total, nil
}

func (db *DB) scanPost(s scanner) (*models.Post, error) {
	var (
		p                               models.Post
		excerpt, content, cover, author sql.NullString
		tags                            sql.NullString
		createdAt, updatedAt            sql.NullTime
	)
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &content, &cover, &author, &tags, &p.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Excerpt = excerpt.String
	p.Content = content.String
	p.CoverImage = cover.String
	p.Author = author.String
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	var decodeErr error
	p.Tags, decodeErr = codec.DecodeStrings(codec.FieldTags, tags)
	db.logDecode("post", p.ID, decodeErr)
	return &p, nil
}
