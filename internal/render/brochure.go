package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var ErrNotReady = errors.New("page is not ready")

const qrSize = 256

// Brochure writes a printable A4 summary of the itinerary with a QR code
// that points back to its public page.
func Brochure(w io.Writer, v ItineraryView) error {
	if !v.Ready() {
		return ErrNotReady
	}

	qrPNG, err := qrcode.Encode(v.PageURL, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(v.Title, true)
	pdf.AddPage()

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(140, 9, tr(v.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	facts := []string{fmt.Sprintf("%d days", v.DurationDays)}
	for _, f := range []string{v.Difficulty, v.Location, v.BestSeason} {
		if f != "" {
			facts = append(facts, f)
		}
	}
	facts = append(facts, fmt.Sprintf("$%.2f", v.Price))
	pdf.MultiCell(140, 6, tr(strings.Join(facts, " | ")), "", "L", false)
	pdf.SetY(50)

	if v.Description != "" {
		pdf.MultiCell(0, 6, tr(v.Description), "", "L", false)
		pdf.Ln(4)
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, item := range items {
			pdf.MultiCell(0, 6, tr("- "+item), "", "L", false)
		}
		pdf.Ln(3)
	}

	list("Highlights", v.Highlights)

	if len(v.Days) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Day by day")
		pdf.Ln(8)
		for _, d := range v.Days {
			pdf.SetFont("Arial", "B", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("Day %d: %s", d.Day, d.Title)), "", "L", false)
			pdf.SetFont("Arial", "", 11)
			if d.Description != "" {
				pdf.MultiCell(0, 6, tr(d.Description), "", "L", false)
			}
			if len(d.Activities) > 0 {
				pdf.MultiCell(0, 6, tr(strings.Join(d.Activities, ", ")), "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(1)
	}

	list("Included", v.Includes)
	list("Not included", v.Excludes)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, tr(v.PageURL))

	return pdf.Output(w)
}
