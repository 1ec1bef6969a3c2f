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

const destinationColumns = `id, name, location, best_season, description, images, videos, image_url, video_url, created_at, updated_at`

// destinationArgs encodes the media lists and keeps the legacy singular
// columns pointing at the first element for older readers.
func destinationArgs(d *models.Destination) (images, videos sql.NullString, imageURL, videoURL string, err error) {
	if images, err = codec.EncodeStringsColumn(d.Images); err != nil {
		return
	}
	if videos, err = codec.EncodeStringsColumn(d.Videos); err != nil {
		return
	}
	imageURL, videoURL = d.ImageURL, d.VideoURL
	if len(d.Images) > 0 {
		imageURL = d.Images[0]
	}
	if len(d.Videos) > 0 {
		videoURL = d.Videos[0]
	}
	return
}

func (db *DB) CreateDestination(ctx context.Context, d *models.Destination) error {
	images, videos, imageURL, videoURL, err := destinationArgs(d)
	if err != nil {
		return err
	}

	query := `INSERT INTO destinations (
				name, location, best_season, description, images, videos, image_url, video_url, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(d.Name), d.Location, d.BestSeason, d.Description,
		images, videos, imageURL, videoURL,
		now, now,
	)
	if err != nil {
		return writeError("create destination", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	d.ID = id
	d.ImageURL, d.VideoURL = imageURL, videoURL
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

func (db *DB) UpdateDestination(ctx context.Context, id int64, d *models.Destination) error {
	images, videos, imageURL, videoURL, err := destinationArgs(d)
	if err != nil {
		return err
	}

	query := `UPDATE destinations SET
				name = ?, location = ?, best_season = ?, description = ?, images = ?, videos = ?,
				image_url = ?, video_url = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		nullable(d.Name), d.Location, d.BestSeason, d.Description,
		images, videos, imageURL, videoURL,
		now, id,
	)
	if err != nil {
		return writeError("update destination", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	d.ID = id
	d.ImageURL, d.VideoURL = imageURL, videoURL
	d.UpdatedAt = now
	return nil
}

func (db *DB) DeleteDestination(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM destinations WHERE id = ?`, id)
	if err != nil {
		return writeError("delete destination", err)
	}
	return requireAffected(result)
}

func (db *DB) GetDestination(ctx context.Context, id int64) (*models.Destination, error) {
	row := db.QueryRowContext(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = ?`, id)
	d, err := db.scanDestination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}
	return d, nil
}

func (db *DB) ListDestinations(ctx context.Context, q models.ListQuery) ([]models.Destination, int, error) {
	f := &filter{}
	f.like(q.Q, "name", "description")
	f.like(q.Location, "location")

	total, err := db.count(ctx, "destinations", f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT ` + destinationColumns + ` FROM destinations` + f.where() + ` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list destinations: %w", err)
	}
	defer rows.Close()

	destinations := []models.Destination{}
	for rows.Next() {
		d, err := db.scanDestination(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan destination: %w", err)
		}
		destinations = append(destinations, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate destinations: %w", err)
	}
	return destinations, total, nil
}

func (db *DB) scanDestination(s scanner) (*models.Destination, error) {
	var (
		d                                  models.Destination
		location, bestSeason, description  sql.NullString
		images, videos, imageURL, videoURL sql.NullString
		createdAt, updatedAt               sql.NullTime
	)
	err := s.Scan(
		&d.ID, &d.Name, &location, &bestSeason, &description,
		&images, &videos, &imageURL, &videoURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Location = location.String
	d.BestSeason = bestSeason.String
	d.Description = description.String
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time

	var imgErr, vidErr error
	d.Images, imgErr = codec.DecodeMedia(codec.FieldImages, images, imageURL)
	d.Videos, vidErr = codec.DecodeMedia(codec.FieldVideos, videos, videoURL)
	db.logDecode("destination", d.ID, errors.Join(imgErr, vidErr))

	d.ImageURL = d.MainImage()
	if len(d.Videos) > 0 {
		d.VideoURL = d.Videos[0]
	}
	return &d, nil
}
