package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfTimeWidth  = 42.0
	pdfValueWidth = 38.0
	pdfRowHeight  = 6.0
)

// BuildPDF renders the table as a landscape A4 document titled title.
func BuildPDF(t Table, loc *time.Location, title string) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %d", len(t.Rows)))
	pdf.Ln(8)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		for i, h := range Header() {
			pdf.CellFormat(cellWidth(i), pdfRowHeight, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	for _, rec := range t.Records(loc)[1:] {
		for i, v := range rec {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(cellWidth(i), pdfRowHeight, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func cellWidth(col int) float64 {
	if col == 0 {
		return pdfTimeWidth
	}
	return pdfValueWidth
}
