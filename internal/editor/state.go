// Package editor implements the admin form used to build itineraries and
// destinations. A FormState is an immutable value: every transition returns a
// new state and leaves its input untouched, so a stored session can be replayed
// or discarded without side effects.
package editor

import (
	"maps"
	"slices"
	"strconv"

	"trailhead/internal/models"
)

type Kind string

const (
	KindItinerary   Kind = "itinerary"
	KindDestination Kind = "destination"
)

func (k Kind) Valid() bool {
	return k == KindItinerary || k == KindDestination
}

// Label is the capitalized name used in notices.
func (k Kind) Label() string {
	switch k {
	case KindItinerary:
		return "Itinerary"
	case KindDestination:
		return "Destination"
	}
	return string(k)
}

type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Scalar field names.
const (
	FieldTitle           = "title"
	FieldName            = "name"
	FieldDescription     = "description"
	FieldDurationDays    = "duration_days"
	FieldDifficulty      = "difficulty"
	FieldPrice           = "price"
	FieldLocation        = "location"
	FieldBestSeason      = "best_season"
	FieldImage           = "image"
	FieldMaxParticipants = "max_participants"
	FieldStatus          = "status"
)

// List field names.
const (
	ListHighlights = "highlights"
	ListIncludes   = "includes"
	ListExcludes   = "excludes"
	ListImages     = "images"
	ListVideos     = "videos"
)

var (
	itineraryFields = []string{
		FieldTitle, FieldDescription, FieldDurationDays, FieldDifficulty, FieldPrice,
		FieldLocation, FieldBestSeason, FieldImage, FieldMaxParticipants, FieldStatus,
	}
	destinationFields = []string{FieldName, FieldLocation, FieldBestSeason, FieldDescription}

	itineraryLists   = []string{ListHighlights, ListIncludes, ListExcludes}
	destinationLists = []string{ListImages, ListVideos}

	// listCaps limits list length in the editor only; the store accepts any length.
	listCaps = map[string]int{
		ListImages: models.MaxDestinationImages,
		ListVideos: models.MaxDestinationVideos,
	}
)

// ListField is a committed sequence plus its pending input buffer.
type ListField struct {
	Items  []string `json:"items"`
	Buffer string   `json:"buffer"`
}

// DayDraft holds the raw inputs of the day-plan entry being composed.
type DayDraft struct {
	Day         string `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Activity    string `json:"activity"`
	Location    string `json:"location"`
}

type FormState struct {
	Kind          Kind                 `json:"kind,omitempty"`
	Mode          Mode                 `json:"mode"`
	ID            int64                `json:"id,omitempty"`
	Fields        map[string]string    `json:"fields,omitempty"`
	Lists         map[string]ListField `json:"lists,omitempty"`
	DayPlans      []models.DayPlan     `json:"day_plans,omitempty"`
	DayDraft      DayDraft             `json:"day_draft"`
	ConfirmDelete bool                 `json:"confirm_delete"`
	Error         string               `json:"error,omitempty"`
	Notice        string               `json:"notice,omitempty"`
}

// Closed is the hidden form.
func Closed() FormState {
	return FormState{Mode: ModeClosed}
}

func (s FormState) IsOpen() bool {
	return s.Mode == ModeCreate || s.Mode == ModeEdit
}

func (s FormState) Field(name string) string {
	return s.Fields[name]
}

// Items returns a copy of the committed entries of a list.
func (s FormState) Items(list string) []string {
	return slices.Clone(s.Lists[list].Items)
}

func (s FormState) Buffer(list string) string {
	return s.Lists[list].Buffer
}

// OpenCreate opens an empty form of the given kind.
func OpenCreate(kind Kind) FormState {
	if !kind.Valid() {
		return withError(Closed(), "unknown form kind "+strconv.Quote(string(kind)))
	}
	s := FormState{
		Kind:   kind,
		Mode:   ModeCreate,
		Fields: map[string]string{},
		Lists:  map[string]ListField{},
	}
	for _, f := range fieldsOf(kind) {
		s.Fields[f] = ""
	}
	for _, l := range listsOf(kind) {
		s.Lists[l] = ListField{Items: []string{}}
	}
	if kind == KindItinerary {
		s.Fields[FieldDifficulty] = string(models.DifficultyModerate)
		s.Fields[FieldStatus] = string(models.StatusActive)
		s.DayPlans = []models.DayPlan{}
	}
	return s
}

// OpenEditItinerary pre-populates the form from a stored itinerary.
func OpenEditItinerary(it *models.Itinerary) FormState {
	s := OpenCreate(KindItinerary)
	s.Mode = ModeEdit
	s.ID = it.ID
	s.Fields[FieldTitle] = it.Title
	s.Fields[FieldDescription] = it.Description
	s.Fields[FieldDurationDays] = strconv.Itoa(it.DurationDays)
	s.Fields[FieldDifficulty] = string(it.Difficulty)
	s.Fields[FieldPrice] = strconv.FormatFloat(it.Price, 'f', -1, 64)
	s.Fields[FieldLocation] = it.Location
	s.Fields[FieldBestSeason] = it.BestSeason
	s.Fields[FieldImage] = it.Image
	s.Fields[FieldMaxParticipants] = strconv.Itoa(it.MaxParticipants)
	s.Fields[FieldStatus] = string(it.Status)
	s.Lists[ListHighlights] = ListField{Items: orEmpty(it.Highlights)}
	s.Lists[ListIncludes] = ListField{Items: orEmpty(it.Includes)}
	s.Lists[ListExcludes] = ListField{Items: orEmpty(it.Excludes)}
	s.DayPlans = cloneDayPlans(it.DayByDayPlan)
	return s
}

// OpenEditDestination pre-populates the form from a stored destination,
// resolving legacy singular media the same way public pages do.
func OpenEditDestination(d *models.Destination) FormState {
	s := OpenCreate(KindDestination)
	s.Mode = ModeEdit
	s.ID = d.ID
	s.Fields[FieldName] = d.Name
	s.Fields[FieldLocation] = d.Location
	s.Fields[FieldBestSeason] = d.BestSeason
	s.Fields[FieldDescription] = d.Description
	s.Lists[ListImages] = ListField{Items: d.ImageList()}
	s.Lists[ListVideos] = ListField{Items: d.VideoList()}
	return s
}

// Close hides the form and drops everything entered.
func (s FormState) Close() FormState {
	return Closed()
}

// clone deep-copies s and clears the previous action's feedback.
func (s FormState) clone() FormState {
	out := s
	out.Fields = maps.Clone(s.Fields)
	if s.Lists != nil {
		out.Lists = make(map[string]ListField, len(s.Lists))
		for k, v := range s.Lists {
			out.Lists[k] = ListField{Items: slices.Clone(v.Items), Buffer: v.Buffer}
		}
	}
	out.DayPlans = cloneDayPlans(s.DayPlans)
	out.Error = ""
	out.Notice = ""
	return out
}

func withError(s FormState, msg string) FormState {
	s.Error = msg
	return s
}

func cloneDayPlans(plans []models.DayPlan) []models.DayPlan {
	if plans == nil {
		return nil
	}
	out := make([]models.DayPlan, len(plans))
	for i, p := range plans {
		p.Activities = orEmpty(p.Activities)
		out[i] = p
	}
	return out
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

func fieldsOf(kind Kind) []string {
	if kind == KindDestination {
		return destinationFields
	}
	return itineraryFields
}

func listsOf(kind Kind) []string {
	if kind == KindDestination {
		return destinationLists
	}
	return itineraryLists
}
