package models

import "time"

const (
	ReviewMinRating = 1
	ReviewMaxRating = 5
)

// Review belongs to any catalog record through the (Type, TypeID) pair.
type Review struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	TypeID    int64     `json:"type_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewTypes lists the record types a review may point at.
var ReviewTypes = []string{"itinerary", "destination", "trail", "activity", "climbing"}

func ValidReviewType(t string) bool {
	for _, v := range ReviewTypes {
		if v == t {
			return true
		}
	}
	return false
}
