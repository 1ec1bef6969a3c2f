package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"trailhead/internal/api"
	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

// seedFile is the layout of the catalog seed YAML. Catalog kinds are keyed
// by their table name (trails, activities, climbing).
type seedFile struct {
	Itineraries  []models.Itinerary                    `yaml:"itineraries"`
	Destinations []models.Destination                  `yaml:"destinations"`
	Catalog      map[models.Kind][]models.CatalogEntry `yaml:"catalog"`
	Posts        []models.Post                         `yaml:"posts"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for kind := range seed.Catalog {
		if !kind.Valid() {
			return nil, fmt.Errorf("parse %s: unknown catalog kind %q", path, kind)
		}
	}
	return &seed, nil
}

// seedCatalog fills empty tables from the seed file. Tables that already
// hold rows are left alone, so restarts do not duplicate records.
func seedCatalog(ctx context.Context, path string, svc api.Services, logger *zerolog.Logger) error {
	seed, err := loadSeed(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Str("seed_file", path).Msg("no seed file, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	if err := seedTable(ctx, "itineraries", seed.Itineraries, svc.Itineraries.List, svc.Itineraries.Create, logger); err != nil {
		return err
	}
	if err := seedTable(ctx, "destinations", seed.Destinations, svc.Destinations.List, svc.Destinations.Create, logger); err != nil {
		return err
	}
	for _, cs := range svc.Catalog {
		if err := seedTable(ctx, string(cs.Kind()), seed.Catalog[cs.Kind()], cs.List, cs.Create, logger); err != nil {
			return err
		}
	}
	return seedTable(ctx, "posts", seed.Posts, svc.Posts.List, svc.Posts.Create, logger)
}

func seedTable[T any](
	ctx context.Context,
	table string,
	records []T,
	list func(context.Context, models.ListQuery) ([]T, int, error),
	create func(context.Context, *T) error,
	logger *zerolog.Logger,
) error {
	if len(records) == 0 {
		return nil
	}
	_, total, err := list(ctx, models.ListQuery{Limit: 1})
	if err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if total > 0 {
		return nil
	}

	for i := range records {
		if err := create(ctx, &records[i]); err != nil {
			return fmt.Errorf("seed %s #%d: %w", table, i+1, err)
		}
	}
	logger.Info().Str("table", table).Int("records", len(records)).Msg("table seeded")
	return nil
}
