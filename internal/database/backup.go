package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/domain"
	"trailhead/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	backupPrefix = "trailhead_"
	backupSuffix = ".db"
)

// BackupService snapshots the catalog database on a fixed interval. When a
// remote store is set, each snapshot is also copied under backups/.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	remote domain.ObjectStorage
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, remote domain.ObjectStorage, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		remote: remote,
		logger: logger,
		now:    time.Now,
	}
}

// Start takes a snapshot right away and then once per schedule interval.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Str("schedule", s.config.Schedule).Msg("Invalid backup schedule, using 24h")
		}
	}
	s.logger.Info().Dur("interval", interval).Str("dir", s.config.StoragePath).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Backup(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Backup failed")
		}
		if _, err := s.Cleanup(); err != nil {
			s.logger.Error().Err(err).Msg("Backup cleanup failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// returns its path.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		metrics.IncBackup("error")
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	name := backupPrefix + s.now().Format("20060102_150405") + backupSuffix
	path := filepath.Join(s.config.StoragePath, name)

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		metrics.IncBackup("error")
		return "", fmt.Errorf("vacuum into %s: %w", path, err)
	}

	if s.remote != nil {
		if err := s.upload(ctx, path, name); err != nil {
			// The local copy is still usable.
			metrics.IncBackup("upload_error")
			s.logger.Warn().Err(err).Str("file", name).Msg("Backup upload failed")
			return path, nil
		}
	}

	metrics.IncBackup("ok")
	s.logger.Info().Str("path", path).Msg("Backup completed")
	return path, nil
}

func (s *BackupService) upload(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	_, err = s.remote.Put(ctx, "backups/"+name, "application/vnd.sqlite3", f, info.Size())
	return err
}

// Cleanup removes local snapshots older than the retention period and
// returns how many were removed. Other files in the directory are ignored.
func (s *BackupService) Cleanup() (int, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		info, err := file.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, name)); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to delete old backup")
			continue
		}
		s.logger.Info().Str("file", name).Msg("Deleted old backup")
		removed++
	}
	return removed, nil
}
