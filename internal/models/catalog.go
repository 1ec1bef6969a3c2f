package models

import "time"

// Kind names one of the catalog tables that share the CatalogEntry shape.
type Kind string

const (
	KindTrail    Kind = "trails"
	KindActivity Kind = "activities"
	KindClimbing Kind = "climbing"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTrail, KindActivity, KindClimbing:
		return true
	}
	return false
}

// Singular is the key used for single-record response envelopes.
func (k Kind) Singular() string {
	switch k {
	case KindTrail:
		return "trail"
	case KindActivity:
		return "activity"
	default:
		return "climbing"
	}
}

type CatalogEntry struct {
	ID          int64      `json:"id" yaml:"id"`
	Kind        Kind       `json:"-" yaml:"-"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Location    string     `json:"location" yaml:"location"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Duration    string     `json:"duration" yaml:"duration"`
	Price       float64    `json:"price" yaml:"price"`
	Image       string     `json:"image" yaml:"image"`
	BestSeason  string     `json:"best_season" yaml:"best_season"`
	Highlights  []string   `json:"highlights" yaml:"highlights"`
	Status      Status     `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"-"`
}
