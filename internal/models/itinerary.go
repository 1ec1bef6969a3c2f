package models

import (
	"strings"
	"time"
)

// Itinerary is one bookable multi-day trek package.
type Itinerary struct {
	ID              int64      `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Description     string     `json:"description" yaml:"description"`
	DurationDays    int        `json:"duration_days" yaml:"duration_days"`
	Difficulty      Difficulty `json:"difficulty" yaml:"difficulty"`
	Price           float64    `json:"price" yaml:"price"`
	Location        string     `json:"location" yaml:"location"`
	BestSeason      string     `json:"best_season" yaml:"best_season"`
	Image           string     `json:"image" yaml:"image"`
	Highlights      []string   `json:"highlights" yaml:"highlights"`
	DayByDayPlan    []DayPlan  `json:"dayByDayPlan" yaml:"day_by_day_plan"`
	Includes        []string   `json:"includes" yaml:"includes"`
	Excludes        []string   `json:"excludes" yaml:"excludes"`
	MaxParticipants int        `json:"maxParticipants" yaml:"max_participants"`
	Status          Status     `json:"status" yaml:"status"`
	CreatedAt       time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time  `json:"updated_at" yaml:"-"`
}

// DayPlan is a nested entry of an itinerary; it has no identity of its own.
// Day numbers are not tied to the entry's position.
type DayPlan struct {
	Day         int      `json:"day" yaml:"day"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Activities  []string `json:"activities" yaml:"activities"`
	Location    string   `json:"location,omitempty" yaml:"location"`
}

type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHard     Difficulty = "Hard"
	DifficultyExpert   Difficulty = "Expert"
)

// ParseDifficulty matches case-insensitively and returns the canonical spelling.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyModerate, DifficultyHard, DifficultyExpert} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, true
	case StatusInactive:
		return StatusInactive, true
	case StatusArchived:
		return StatusArchived, true
	}
	return "", false
}
