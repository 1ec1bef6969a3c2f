package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trailhead/internal/codec"
	"trailhead/internal/metrics"
	"trailhead/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" a single database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger}
	if err := db.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := db.ensureMediaColumns(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate destinations: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

const catalogTableSchema = `(
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT,
            location TEXT,
            difficulty TEXT NOT NULL DEFAULT 'Moderate',
            duration TEXT,
            price REAL NOT NULL DEFAULT 0,
            image TEXT,
            best_season TEXT,
            highlights TEXT,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`

func (db *DB) createTables() error {
	queries := []string{
		// Маршруты (itineraries)
		`CREATE TABLE IF NOT EXISTS itineraries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            duration_days INTEGER NOT NULL,
            difficulty TEXT NOT NULL DEFAULT 'Moderate',
            price REAL NOT NULL DEFAULT 0,
            location TEXT,
            best_season TEXT,
            image TEXT,
            highlights TEXT,
            day_by_day_plan TEXT,
            includes TEXT,
            excludes TEXT,
            max_participants INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Направления; image_url/video_url остались от старой схемы
		`CREATE TABLE IF NOT EXISTS destinations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            location TEXT,
            best_season TEXT,
            description TEXT,
            image_url TEXT,
            video_url TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS trails ` + catalogTableSchema,
		`CREATE TABLE IF NOT EXISTS activities ` + catalogTableSchema,
		`CREATE TABLE IF NOT EXISTS climbing ` + catalogTableSchema,
		`CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            type TEXT NOT NULL,
            type_id INTEGER NOT NULL,
            author TEXT NOT NULL,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS gallery (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT,
            image_url TEXT NOT NULL,
            thumbnail_url TEXT,
            category TEXT,
            description TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS posts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            slug TEXT NOT NULL UNIQUE,
            excerpt TEXT,
            content TEXT,
            cover_image TEXT,
            author TEXT,
            tags TEXT,
            status TEXT NOT NULL DEFAULT 'draft',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Очередь синхронизации с Google Sheets
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            entity TEXT NOT NULL,
            record_id INTEGER NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_itineraries_status ON itineraries(status)`,
		`CREATE INDEX IF NOT EXISTS idx_itineraries_difficulty ON itineraries(difficulty)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_target ON reviews(type, type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_gallery_category ON gallery(category)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// ensureMediaColumns adds the plural media columns to databases created
// before destinations could hold several images and videos.
func (db *DB) ensureMediaColumns() error {
	for _, column := range []string{"images", "videos"} {
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE destinations ADD COLUMN %s TEXT", column))
		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return err
		}
	}
	return nil
}

// writeError maps constraint violations to validation errors so that callers
// can show them to operators; everything else is wrapped.
func writeError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		msg := sqliteErr.Error()
		if _, column, ok := strings.Cut(msg, "NOT NULL constraint failed: "); ok {
			if _, field, ok := strings.Cut(column, "."); ok {
				column = field
			}
			return models.NewValidationError(column, "is required")
		}
		if _, column, ok := strings.Cut(msg, "UNIQUE constraint failed: "); ok {
			if _, field, ok := strings.Cut(column, "."); ok {
				column = field
			}
			return models.NewValidationError(column, "already exists")
		}
		return &models.ValidationError{Message: msg}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// nullable turns an empty required string into NULL so that the schema
// rejects it instead of storing a blank value.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// logDecode records a nested column that was read back as empty.
func (db *DB) logDecode(entity string, id int64, err error) {
	if err == nil {
		return
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var de *codec.DecodeError
		field := "unknown"
		if errors.As(e, &de) {
			field = de.Field
		}
		metrics.IncDecodeFallback(entity, field)
		db.logger.Warn().Err(e).Str("entity", entity).Int64("id", id).Str("field", field).Msg("Stored JSON is malformed, using empty value")
	}
}
