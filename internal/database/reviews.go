package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trailhead/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, r *models.Review) error {
	query := `INSERT INTO reviews (type, type_id, author, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, nullable(r.Type), r.TypeID, nullable(r.Author), r.Rating, r.Comment, now)
	if err != nil {
		return writeError("create review", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return nil
}

// ListReviews returns the reviews of one record, newest first.
func (db *DB) ListReviews(ctx context.Context, reviewType string, typeID int64, q models.ListQuery) ([]models.Review, int, error) {
	f := &filter{}
	f.clauses = append(f.clauses, "type = ?", "type_id = ?")
	f.args = append(f.args, reviewType, typeID)

	total, err := db.count(ctx, "reviews", f)
	if err != nil {
		return nil, 0, err
	}

	limit, pageArgs := page(q)
	query := `SELECT id, type, type_id, author, rating, comment, created_at FROM reviews` + f.where() +
		` ORDER BY created_at DESC, id DESC` + limit
	rows, err := db.QueryContext(ctx, query, append(f.args, pageArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var (
			r         models.Review
			comment   sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Type, &r.TypeID, &r.Author, &r.Rating, &comment, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		r.Comment = comment.String
		r.CreatedAt = createdAt.Time
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, total, nil
}

// AverageRating returns the mean rating of one record and the number of reviews.
func (db *DB) AverageRating(ctx context.Context, reviewType string, typeID int64) (float64, int, error) {
	var (
		avg   sql.NullFloat64
		count int
	)
	err := db.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM reviews WHERE type = ? AND type_id = ?`, reviewType, typeID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get average rating: %w", err)
	}
	return avg.Float64, count, nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return writeError("delete review", err)
	}
	return requireAffected(result)
}
