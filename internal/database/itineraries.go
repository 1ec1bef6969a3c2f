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

const itineraryColumns = `id, title, description, duration_days, difficulty, price, location, best_season, image,
	highlights, day_by_day_plan, includes, excludes, max_participants, status, created_at, updated_at`

// CreateItinerary inserts the record and sets its ID and timestamps.
func (db *DB) CreateItinerary(ctx context.Context, it *models.Itinerary) error {
	cols, err := codec.EncodeItinerary(it)
	if err != nil {
		return err
	}

	query := `INSERT INTO itineraries (
				title, description, duration_days, difficulty, price, location, best_season, image,
				highlights, day_by_day_plan, includes, excludes, max_participants, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(it.Title),
		nullable(it.Description),
		it.DurationDays,
		string(it.Difficulty),
		it.Price,
		it.Location,
		it.BestSeason,
		it.Image,
		cols.Highlights,
		cols.DayByDayPlan,
		cols.Includes,
		cols.Excludes,
		it.MaxParticipants,
		string(it.Status),
		now,
		now,
	)
	if err != nil {
		return writeError("create itinerary", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	it.ID = id
	it.CreatedAt = now
	it.UpdatedAt = now
	return nil
}

// UpdateItinerary replaces every column of an existing row.
func (db *DB) UpdateItinerary(ctx context.Context, id int64, it *models.Itinerary) error {
	cols, err := codec.EncodeItinerary(it)
	if err != nil {
		return err
	}

	query := `UPDATE itineraries SET
				title = ?, description = ?, duration_days = ?, difficulty = ?, price = ?, location = ?,
				best_season = ?, image = ?, highlights = ?, day_by_day_plan = ?, includes = ?, excludes = ?,
				max_participants = ?, status = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(it.Title),
		nullable(it.Description),
		it.DurationDays,
		string(it.Difficulty),
		it.Price,
		it.Location,
		it.BestSeason,
		it.Image,
		cols.Highlights,
		cols.DayByDayPlan,
		cols.Includes,
		cols.Excludes,
		it.MaxParticipants,
		string(it.Status),
		now,
		id,
	)
	if err != nil {
		return writeError("update itinerary", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	it.ID = id
	it.UpdatedAt = now
	return nil
}

func (db *DB) DeleteItinerary(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = ?`, id)
	if err != nil {
		return writeError("delete itinerary", err)
	}
	return requireAffected(result)
}

func (db *DB) GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = ?`, id)
	it, err := db.scanItinerary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return it, nil
}

// ListItineraries returns matching rows newest first together with the
// number of rows matching before pagination.
func (db *DB) ListItineraries(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error) {
	f := &filter{}
	f.like(q.Q, "title", "description")
	f.like(q.Location, "location")
	f.eq("difficulty", q.Difficulty)
	f.eq("status", q.Status)

	total, err := db.count(ctx, "itineraries", f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT ` + itineraryColumns + ` FROM itineraries` + f.where() + ` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	itineraries := []models.Itinerary{}
	for rows.Next() {
		it, err := db.scanItinerary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		itineraries = append(itineraries, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate itineraries: %w", err)
	}
	return itineraries, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanItinerary(s scanner) (*models.Itinerary, error) {
	var (
		it                          models.Itinerary
		difficulty, status          string
		location, bestSeason, image sql.NullString
		cols                        codec.ItineraryColumns
		createdAt, updatedAt        sql.NullTime
	)
	err := s.Scan(
		&it.ID, &it.Title, &it.Description, &it.DurationDays, &difficulty, &it.Price,
		&location, &bestSeason, &image,
		&cols.Highlights, &cols.DayByDayPlan, &cols.Includes, &cols.Excludes,
		&it.MaxParticipants, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Difficulty = models.Difficulty(difficulty)
	it.Status = models.Status(status)
	it.Location = location.String
	it.BestSeason = bestSeason.String
	it.Image = image.String
	it.CreatedAt = createdAt.Time
	it.UpdatedAt = updatedAt.Time

	db.logDecode("itinerary", it.ID, codec.DecodeItinerary(cols, &it))
	return &it, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
