package database

import (
	"context"
	"fmt"
	"strings"

	"trailhead/internal/models"
)

// filter accumulates WHERE clauses for listing queries.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) eq(column, value string) {
	if value = strings.TrimSpace(value); value == "" {
		return
	}
	f.clauses = append(f.clauses, column+" = ? COLLATE NOCASE")
	f.args = append(f.args, value)
}

func (f *filter) like(value string, columns ...string) {
	if value = strings.TrimSpace(value); value == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " LIKE ?"
		f.args = append(f.args, "%"+value+"%")
	}
	f.clauses = append(f.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

func (db *DB) count(ctx context.Context, table string, f *filter) (int, error) {
	var total int
	query := "SELECT COUNT(*) FROM " + table + f.where()
	if err := db.QueryRowContext(ctx, query, f.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

// page appends LIMIT/OFFSET. A zero limit keeps every row.
func page(q models.ListQuery) (string, []any) {
	limit, offset := q.Limit, q.Offset
	if limit > models.MaxListLimit {
		limit = models.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		if offset == 0 {
			return "", nil
		}
		return " LIMIT -1 OFFSET ?", []any{offset}
	}
	return " LIMIT ? OFFSET ?", []any{limit, offset}
}
