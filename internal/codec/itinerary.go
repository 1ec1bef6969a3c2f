package codec

import (
	"database/sql"
	"errors"

	"trailhead/internal/models"
)

// Column names of the nested itinerary fields.
const (
	FieldHighlights   = "highlights"
	FieldDayByDayPlan = "day_by_day_plan"
	FieldIncludes     = "includes"
	FieldExcludes     = "excludes"
	FieldImages       = "images"
	FieldVideos       = "videos"
	FieldTags         = "tags"
)

// ItineraryColumns is the stored form of an itinerary's nested fields.
type ItineraryColumns struct {
	Highlights   sql.NullString
	DayByDayPlan sql.NullString
	Includes     sql.NullString
	Excludes     sql.NullString
}

func EncodeItinerary(it *models.Itinerary) (ItineraryColumns, error) {
	var cols ItineraryColumns
	var err error
	if cols.Highlights, err = EncodeStringsColumn(it.Highlights); err != nil {
		return cols, err
	}
	plan, err := EncodeDayPlans(it.DayByDayPlan)
	if err != nil {
		return cols, err
	}
	cols.DayByDayPlan = sql.NullString{String: plan, Valid: true}
	if cols.Includes, err = EncodeStringsColumn(it.Includes); err != nil {
		return cols, err
	}
	if cols.Excludes, err = EncodeStringsColumn(it.Excludes); err != nil {
		return cols, err
	}
	return cols, nil
}

// DecodeItinerary fills the nested fields of it. Each column is decoded on its
// own; a bad column only empties that field. The joined decode errors are
// returned for logging.
func DecodeItinerary(cols ItineraryColumns, it *models.Itinerary) error {
	var errs []error
	var err error

	it.Highlights, err = DecodeStrings(FieldHighlights, cols.Highlights)
	errs = append(errs, err)
	it.DayByDayPlan, err = DecodeDayPlans(FieldDayByDayPlan, cols.DayByDayPlan)
	errs = append(errs, err)
	it.Includes, err = DecodeStrings(FieldIncludes, cols.Includes)
	errs = append(errs, err)
	it.Excludes, err = DecodeStrings(FieldExcludes, cols.Excludes)
	errs = append(errs, err)

	return errors.Join(errs...)
}

// EncodeStringsColumn is EncodeStrings for a nullable column.
func EncodeStringsColumn(values []string) (sql.NullString, error) {
	raw, err := EncodeStrings(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: raw, Valid: true}, nil
}
