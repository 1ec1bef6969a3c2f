// Package export builds operator spreadsheets from the catalog.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"trailhead/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	itinerarySheet = "Itineraries"
	daySheet       = "Days"
)

var itineraryHeaders = []string{
	"ID", "Title", "Status", "Difficulty", "Days", "Price", "Max participants",
	"Location", "Best season", "Highlights", "Includes", "Excludes", "Updated",
}

var dayHeaders = []string{"Itinerary ID", "Itinerary", "Day", "Title", "Description", "Location", "Activities"}

type ItinerarySource interface {
	List(ctx context.Context, q models.ListQuery) ([]models.Itinerary, int, error)
}

type Exporter struct {
	itineraries ItinerarySource
	logger      *zerolog.Logger
}

func NewExporter(itineraries ItinerarySource, logger *zerolog.Logger) *Exporter {
	return &Exporter{itineraries: itineraries, logger: logger}
}

// WriteItineraries writes an xlsx workbook with one sheet of itineraries and
// one sheet of their day plans.
func (e *Exporter) WriteItineraries(ctx context.Context, w io.Writer) error {
	items, _, err := e.itineraries.List(ctx, models.ListQuery{})
	if err != nil {
		return fmt.Errorf("error getting itineraries: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itinerarySheet); err != nil {
		return fmt.Errorf("error renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(daySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	writeHeader(f, itinerarySheet, itineraryHeaders, headerStyle)
	writeHeader(f, daySheet, dayHeaders, headerStyle)

	dayRow := 2
	for i := range items {
		it := &items[i]
		row := []any{
			it.ID, it.Title, string(it.Status), string(it.Difficulty), it.DurationDays, it.Price,
			it.MaxParticipants, it.Location, it.BestSeason,
			strings.Join(it.Highlights, "\n"), strings.Join(it.Includes, "\n"), strings.Join(it.Excludes, "\n"),
			it.UpdatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(itinerarySheet, cell, &row); err != nil {
			return fmt.Errorf("error writing itinerary %d: %w", it.ID, err)
		}

		for _, d := range it.DayByDayPlan {
			dr := []any{it.ID, it.Title, d.Day, d.Title, d.Description, d.Location, strings.Join(d.Activities, ", ")}
			cell, _ := excelize.CoordinatesToCellName(1, dayRow)
			if err := f.SetSheetRow(daySheet, cell, &dr); err != nil {
				return fmt.Errorf("error writing day plan of %d: %w", it.ID, err)
			}
			dayRow++
		}
	}

	_ = f.SetColWidth(itinerarySheet, "B", "B", 30)
	_ = f.SetColWidth(itinerarySheet, "H", "L", 25)
	_ = f.SetColWidth(daySheet, "B", "B", 30)
	_ = f.SetColWidth(daySheet, "D", "E", 35)
	_ = f.SetPanes(itinerarySheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}

	e.logger.Info().Int("itineraries", len(items)).Int("days", dayRow-2).Msg("itineraries exported")
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	_ = f.SetSheetRow(sheet, "A1", &headers)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
}
