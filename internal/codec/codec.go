// Package codec converts the nested parts of catalog records to and from the
// JSON text stored in their columns.
//
// Encoding is faithful: order and duplicates are kept. Decoding never fails a
// read. A field that is NULL, blank or not valid JSON decodes to an empty
// sequence. Only text that is present but malformed is reported, as a
// *DecodeError returned next to the value so callers can log it.
package codec

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"trailhead/internal/models"
)

// DecodeError describes a nested column that could not be decoded.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func EncodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode strings: %w", err)
	}
	return string(raw), nil
}

func EncodeDayPlans(plans []models.DayPlan) (string, error) {
	out := make([]models.DayPlan, len(plans))
	for i, p := range plans {
		if p.Activities == nil {
			p.Activities = []string{}
		}
		out[i] = p
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode day plans: %w", err)
	}
	return string(raw), nil
}

// DecodeStrings returns the stored list, or an empty list and a *DecodeError.
func DecodeStrings(field string, raw sql.NullString) ([]string, error) {
	var out []string
	if err := decode(raw, &out); err != nil {
		return []string{}, &DecodeError{Field: field, Err: err}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// DecodeDayPlans returns the stored plan, or an empty plan and a *DecodeError.
func DecodeDayPlans(field string, raw sql.NullString) ([]models.DayPlan, error) {
	var out []models.DayPlan
	if err := decode(raw, &out); err != nil {
		return []models.DayPlan{}, &DecodeError{Field: field, Err: err}
	}
	if out == nil {
		out = []models.DayPlan{}
	}
	for i := range out {
		if out[i].Activities == nil {
			out[i].Activities = []string{}
		}
	}
	return out, nil
}

// DecodeMedia resolves a plural JSON column against its legacy singular
// column. A valid non-empty plural list wins; otherwise a non-blank legacy
// value becomes a one-element list; otherwise the list is empty. The returned
// error only reports a malformed plural column.
func DecodeMedia(field string, plural, legacy sql.NullString) ([]string, error) {
	list, err := DecodeStrings(field, plural)
	if len(list) > 0 {
		return list, nil
	}
	if v := strings.TrimSpace(legacy.String); legacy.Valid && v != "" {
		return []string{v}, err
	}
	return []string{}, err
}

// decode leaves dst untouched for NULL or blank text.
func decode(raw sql.NullString, dst any) error {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}
