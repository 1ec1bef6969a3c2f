package editor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"trailhead/internal/models"
)

const errNotOpen = "form is not open"

// SetField replaces one scalar input. The value is kept as typed; parsing
// happens on submit.
func (s FormState) SetField(name, value string) FormState {
	if !s.IsOpen() {
		return withError(s, errNotOpen)
	}
	if !slices.Contains(fieldsOf(s.Kind), name) {
		return withError(s, fmt.Sprintf("unknown field %q", name))
	}
	out := s.clone()
	out.Fields[name] = value
	return out
}

// SetBuffer replaces the pending input of a list.
func (s FormState) SetBuffer(list, value string) FormState {
	if !s.IsOpen() {
		return withError(s, errNotOpen)
	}
	if !slices.Contains(listsOf(s.Kind), list) {
		return withError(s, fmt.Sprintf("unknown list %q", list))
	}
	out := s.clone()
	lf := out.Lists[list]
	lf.Buffer = value
	out.Lists[list] = lf
	return out
}

// Add appends the trimmed buffer to the list and clears the buffer. A blank
// buffer changes nothing.
func (s FormState) Add(list string) FormState {
	if !s.IsOpen() {
		return withError(s, errNotOpen)
	}
	if !slices.Contains(listsOf(s.Kind), list) {
		return withError(s, fmt.Sprintf("unknown list %q", list))
	}
	out := s.clone()
	lf := out.Lists[list]
	value := strings.TrimSpace(lf.Buffer)
	if value == "" {
		return out
	}
	if limit, ok := listCaps[list]; ok && len(lf.Items) >= limit {
		return withError(out, fmt.Sprintf("at most %d %s", limit, list))
	}
	lf.Items = append(lf.Items, value)
	lf.Buffer = ""
	out.Lists[list] = lf
	return out
}

// Remove drops the entry at index. An out-of-range index changes nothing.
func (s FormState) Remove(list string, index int) FormState {
	if !s.IsOpen() {
		return withError(s, errNotOpen)
	}
	out := s.clone()
	lf, ok := out.Lists[list]
	if !ok || index < 0 || index >= len(lf.Items) {
		return out
	}
	lf.Items = slices.Delete(lf.Items, index, index+1)
	out.Lists[list] = lf
	return out
}

func (s FormState) SetDayDraft(d DayDraft) FormState {
	if !s.IsOpen() || s.Kind != KindItinerary {
		return withError(s, "day plans belong to itineraries")
	}
	out := s.clone()
	out.DayDraft = d
	return out
}

// AddDayPlan appends the draft as a DayPlan. Day, title and description are
// required and the day must be a positive number; otherwise the plan is left
// unchanged. The activity buffer becomes the single activity when non-blank.
// Location is kept verbatim.
func (s FormState) AddDayPlan() FormState {
	if !s.IsOpen() || s.Kind != KindItinerary {
		return withError(s, "day plans belong to itineraries")
	}
	out := s.clone()
	d := out.DayDraft
	if strings.TrimSpace(d.Day) == "" || strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" {
		return withError(out, "day, title and description are required")
	}
	day, err := strconv.Atoi(strings.TrimSpace(d.Day))
	if err != nil || day <= 0 {
		return withError(out, "day must be a positive number")
	}

	activities := []string{}
	if a := strings.TrimSpace(d.Activity); a != "" {
		activities = []string{a}
	}
	out.DayPlans = append(out.DayPlans, models.DayPlan{
		Day:         day,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Activities:  activities,
		Location:    d.Location,
	})
	out.DayDraft = DayDraft{}
	return out
}

func (s FormState) RemoveDayPlan(index int) FormState {
	if !s.IsOpen() {
		return withError(s, errNotOpen)
	}
	out := s.clone()
	if index < 0 || index >= len(out.DayPlans) {
		return out
	}
	out.DayPlans = slices.Delete(out.DayPlans, index, index+1)
	return out
}

// RequestDelete asks for confirmation before a bound record is deleted.
func (s FormState) RequestDelete() FormState {
	if s.Mode != ModeEdit {
		return withError(s, "only a saved record can be deleted")
	}
	out := s.clone()
	out.ConfirmDelete = true
	return out
}

func (s FormState) CancelDelete() FormState {
	out := s.clone()
	out.ConfirmDelete = false
	return out
}
