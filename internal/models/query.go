package models

// ListQuery filters a listing. Zero values mean "no filter"; Limit == 0
// returns the whole table.
type ListQuery struct {
	Q          string
	Difficulty string
	Location   string
	Status     string
	Category   string
	Limit      int
	Offset     int
}

const MaxListLimit = 200
