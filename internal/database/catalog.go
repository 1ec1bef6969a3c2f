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

// trails, activities and climbing share one row shape; the table name comes
// from a validated Kind only.
const catalogColumns = `id, name, description, location, difficulty, duration, price, image, best_season, highlights, status, created_at, updated_at`

func catalogTable(kind models.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown catalog kind %q", kind)
	}
	return string(kind), nil
}

func (db *DB) CreateCatalogEntry(ctx context.Context, e *models.CatalogEntry) error {
	table, err := catalogTable(e.Kind)
	if err != nil {
		return err
	}
	highlights, err := codec.EncodeStringsColumn(e.Highlights)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (
				name, description, location, difficulty, duration, price, image, best_season, highlights, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(e.Name), e.Description, e.Location, string(e.Difficulty), e.Duration,
		e.Price, e.Image, e.BestSeason, highlights, string(e.Status),
		now, now,
	)
	if err != nil {
		return writeError("create "+e.Kind.Singular(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (db *DB) UpdateCatalogEntry(ctx context.Context, id int64, e *models.CatalogEntry) error {
	table, err := catalogTable(e.Kind)
	if err != nil {
		return err
	}
	highlights, err := codec.EncodeStringsColumn(e.Highlights)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + ` SET
				name = ?, description = ?, location = ?, difficulty = ?, duration = ?, price = ?,
				image = ?, best_season = ?, highlights = ?, status = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(e.Name), e.Description, e.Location, string(e.Difficulty), e.Duration,
		e.Price, e.Image, e.BestSeason, highlights, string(e.Status),
		now, id,
	)
	if err != nil {
		return writeError("update "+e.Kind.Singular(), err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	e.ID = id
	e.UpdatedAt = now
	return nil
}

func (db *DB) DeleteCatalogEntry(ctx context.Context, kind models.Kind, id int64) error {
	table, err := catalogTable(kind)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return writeError("delete "+kind.Singular(), err)
	}
	return requireAffected(result)
}

func (db *DB) GetCatalogEntry(ctx context.Context, kind models.Kind, id int64) (*models.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, `SELECT `+catalogColumns+` FROM `+table+` WHERE id = ?`, id)
	e, err := db.scanCatalogEntry(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind.Singular(), err)
	}
	return e, nil
}

func (db *DB) ListCatalogEntries(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.CatalogEntry, int, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, 0, err
	}

	f := &filter{}
	f.like(q.Q, "name", "description")
	f.like(q.Location, "location")
	f.eq("difficulty", q.Difficulty)
	f.eq("status", q.Status)

	total, err := db.count(ctx, table, f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT ` + catalogColumns + ` FROM ` + table + f.where() + ` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	entries := []models.CatalogEntry{}
	for rows.Next() {
		e, err := db.scanCatalogEntry(kind, rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s: %w", kind.Singular(), err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return entries, total, nil
}

func (db *DB) scanCatalogEntry(kind models.Kind, s scanner) (*models.CatalogEntry, error) {
	var (
		e                               models.CatalogEntry
		description, location, duration sql.NullString
		image, bestSeason, highlights   sql.NullString
		difficulty, status              string
		createdAt, updatedAt            sql.NullTime
	)
	err := s.Scan(
		&e.ID, &e.Name, &description, &location, &difficulty, &duration, &e.Price,
		&image, &bestSeason, &highlights, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Kind = kind
	e.Description = description.String
	e.Location = location.String
	e.Difficulty = models.Difficulty(difficulty)
	e.Duration = duration.String
	e.Image = image.String
	e.BestSeason = bestSeason.String
	e.Status = models.Status(status)
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	var decodeErr error
	e.Highlights, decodeErr = codec.DecodeStrings(codec.FieldHighlights, highlights)
	db.logDecode(kind.Singular(), e.ID, decodeErr)
	return &e, nil
}
