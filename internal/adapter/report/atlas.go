// Package report writes a PDF atlas of the per-well figures.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// Entry is one well in the atlas.
type Entry struct {
	Group     domain.WellGroup
	ImagePath string // PNG written by the static plotter
}

// Summary is the table row printed for a well.
type Summary struct {
	WellID       string
	DepthFeet    string
	DepthMeters  string
	Observations int
	FirstYear    float64
	LastYear     float64
}

// Summarize computes the table row for g.
func Summarize(g domain.WellGroup) Summary {
	s := Summary{
		WellID:       g.WellID,
		DepthFeet:    "unknown",
		DepthMeters:  "unknown",
		Observations: len(g.Observations),
		FirstYear:    math.NaN(),
		LastYear:     math.NaN(),
	}
	if g.Depth.Known {
		s.DepthFeet = fmt.Sprintf("%.1f", g.Depth.Feet)
		s.DepthMeters = domain.FormatMeters(g.Depth.Feet)
	}
	for _, o := range g.Observations {
		if math.IsNaN(s.FirstYear) || o.Year < s.FirstYear {
			s.FirstYear = o.Year
		}
		if math.IsNaN(s.LastYear) || o.Year > s.LastYear {
			s.LastYear = o.Year
		}
	}
	return s
}

// WriteAtlas writes a summary table followed by one page per well image.
func WriteAtlas(path, title string, entries []Entry, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", generated.Format("January 2, 2006 at 3:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	headers := []string{"Well ID", "Depth (ft)", "Depth (m)", "Observations", "First Year", "Last Year"}
	widths := []float64{50, 35, 35, 35, 35, 35}

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	for _, e := range entries {
		if pdf.GetY() > pageHeight-25 {
			pdf.AddPage()
			writeHeader()
		}
		s := Summarize(e.Group)
		cells := []string{s.WellID, s.DepthFeet, s.DepthMeters, fmt.Sprintf("%d", s.Observations),
			formatYear(s.FirstYear), formatYear(s.LastYear)}
		for i, c := range cells {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, e := range entries {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Well %s - Depth %s", e.Group.WellID, e.Group.Depth.Label()), "", 1, "L", false, 0, "")
		pdf.ImageOptions(e.ImagePath, 30, 25, 200, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write atlas %s: %w", path, err)
	}
	return nil
}

func formatYear(y float64) string {
	if math.IsNaN(y) {
		return "-"
	}
	return fmt.Sprintf("%.2f", y)
}

// Atlas writes the atlas to a fixed path. It implements pipeline.AtlasWriter.
type Atlas struct {
	Path  string
	Title string
	Now   func() time.Time
}

// WriteAtlas pairs each group with the figure written for it.
func (a Atlas) WriteAtlas(groups []domain.WellGroup, paths []string) error {
	if len(groups) != len(paths) {
		return fmt.Errorf("atlas: %d groups but %d figures", len(groups), len(paths))
	}
	entries := make([]Entry, len(groups))
	for i := range groups {
		entries[i] = Entry{Group: groups[i], ImagePath: paths[i]}
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return WriteAtlas(a.Path, a.Title, entries, now())
}
