// Package google mirrors catalog records into a Google spreadsheet with one
// tab per entity. Column A holds the record ID and is used to find rows.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"trailhead/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	TabItineraries  = "Itineraries"
	TabDestinations = "Destinations"
)

var (
	itineraryHeaders = []interface{}{
		"ID", "Title", "Difficulty", "Duration (days)", "Price", "Location", "Best Season",
		"Max Participants", "Status", "Highlights", "Days", "Updated At",
	}
	destinationHeaders = []interface{}{
		"ID", "Name", "Location", "Best Season", "Images", "Videos", "Updated At",
	}
)

var errRowNotFound = errors.New("row not found")

type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[string]map[int64]int
	cacheMu       sync.RWMutex
}

// NewSheetsService authenticates with a service account key file.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newSheetsService(srv, spreadsheetID), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID string) *SheetsService {
	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[string]map[int64]int),
	}
}

// TestConnection reads one cell to check access to the spreadsheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, TabItineraries+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

// EnsureHeaders writes the header row of both tabs.
func (s *SheetsService) EnsureHeaders(ctx context.Context) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*sheets.ValueRange{
			{Range: headerRange(TabItineraries, len(itineraryHeaders)), Values: [][]interface{}{itineraryHeaders}},
			{Range: headerRange(TabDestinations, len(destinationHeaders)), Values: [][]interface{}{destinationHeaders}},
		},
	}
	_, err := s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	return err
}

// WarmUpCache loads the ID column of both tabs into the row cache.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	for _, tab := range []string{TabItineraries, TabDestinations} {
		resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, tab+"!A:A").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read %s ids: %w", tab, err)
		}
		rows := make(map[int64]int, len(resp.Values))
		for i, row := range resp.Values {
			if id, ok := cellID(row); ok {
				rows[id] = i + 1
			}
		}
		s.cacheMu.Lock()
		s.rowCache[tab] = rows
		s.cacheMu.Unlock()
	}
	return nil
}

func (s *SheetsService) UpsertItinerary(ctx context.Context, it *models.Itinerary) error {
	if it == nil {
		return errors.New("itinerary is nil")
	}
	return s.upsertRow(ctx, TabItineraries, it.ID, itineraryRowValues(it))
}

func (s *SheetsService) UpsertDestination(ctx context.Context, d *models.Destination) error {
	if d == nil {
		return errors.New("destination is nil")
	}
	return s.upsertRow(ctx, TabDestinations, d.ID, destinationRowValues(d))
}

// DeleteRow clears the row of the record. A missing row is not an error.
func (s *SheetsService) DeleteRow(ctx context.Context, entity string, id int64) error {
	tab, width, err := tabFor(entity)
	if err != nil {
		return err
	}

	rowIdx, err := s.findRow(ctx, tab, id)
	if errors.Is(err, errRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rowRange(tab, rowIdx, width), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCachedRow(tab, id)
	}
	return err
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]map[int64]int)
}

func (s *SheetsService) upsertRow(ctx context.Context, tab string, id int64, values []interface{}) error {
	rowIdx, err := s.findRow(ctx, tab, id)
	if errors.Is(err, errRowNotFound) {
		_, err = s.service.Spreadsheets.Values.Append(s.spreadsheetID, tab+"!A:A", &sheets.ValueRange{
			Values: [][]interface{}{values},
		}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	}
	if err != nil {
		return err
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rowRange(tab, rowIdx, len(values)), &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// findRow locates the 1-based row of id in column A, using the cache first.
func (s *SheetsService) findRow(ctx context.Context, tab string, id int64) (int, error) {
	if id == 0 {
		return 0, errors.New("record id is required")
	}
	if row, ok := s.getCachedRow(tab, id); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, tab+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if v, ok := cellID(row); ok && v == id {
			s.setCachedRow(tab, id, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(tab string, id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[tab][id]
	return row, ok
}

func (s *SheetsService) setCachedRow(tab string, id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.rowCache[tab] == nil {
		s.rowCache[tab] = make(map[int64]int)
	}
	s.rowCache[tab][id] = row
}

func (s *SheetsService) deleteCachedRow(tab string, id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache[tab], id)
}

func tabFor(entity string) (tab string, width int, err error) {
	switch entity {
	case "itinerary":
		return TabItineraries, len(itineraryHeaders), nil
	case "destination":
		return TabDestinations, len(destinationHeaders), nil
	}
	return "", 0, fmt.Errorf("unsupported entity: %s", entity)
}

// cellID reads column A, which holds numbers or numeric strings.
func cellID(row []interface{}) (int64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil
	}
	return 0, false
}

func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func rowRange(tab string, row, width int) string {
	return fmt.Sprintf("%s!A%d:%s%d", tab, row, columnLetter(width), row)
}

func headerRange(tab string, width int) string {
	return rowRange(tab, 1, width)
}

func itineraryRowValues(it *models.Itinerary) []interface{} {
	days := make([]string, 0, len(it.DayByDayPlan))
	for _, d := range it.DayByDayPlan {
		days = append(days, fmt.Sprintf("Day %d: %s", d.Day, d.Title))
	}
	return []interface{}{
		it.ID,
		it.Title,
		string(it.Difficulty),
		it.DurationDays,
		it.Price,
		it.Location,
		it.BestSeason,
		it.MaxParticipants,
		string(it.Status),
		strings.Join(it.Highlights, "\n"),
		strings.Join(days, "\n"),
		formatTime(it.UpdatedAt),
	}
}

func destinationRowValues(d *models.Destination) []interface{} {
	return []interface{}{
		d.ID,
		d.Name,
		d.Location,
		d.BestSeason,
		strings.Join(d.ImageList(), "\n"),
		strings.Join(d.VideoList(), "\n"),
		formatTime(d.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
