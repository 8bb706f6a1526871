package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin        = 10.0
	landscapeColumns = 6
)

// PDFExporter renders datasets into a tabular PDF. Wide tables such as the
// comparison matrix switch to landscape.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF document with an optional title, notes and the table body.
// The header row repeats on every page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	orientation := "P"
	if len(data.Headers) > landscapeColumns {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, 15, pdfMargin)
	pdf.SetAutoPageBreak(true, 15)
	generated := e.now().UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s  |  Page %d", generated, pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	}
	if len(data.Notes) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, note := range data.Notes {
			pdf.CellFormat(0, 5, note, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pageWidth, pageHeight := pdf.GetPageSize()
	colWidth := (pageWidth - 2*pdfMargin) / float64(len(data.Headers))
	aligns := columnAlignments(data)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range data.Headers {
			pdf.CellFormat(colWidth, 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	const rowHeight = 7.0
	for _, row := range data.Rows {
		if pdf.GetY()+rowHeight > pageHeight-20 {
			pdf.AddPage()
			header()
		}
		for i := range data.Headers {
			pdf.CellFormat(colWidth, rowHeight, data.cell(row, i), "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnAlignments right-aligns columns whose non-empty cells are all numeric.
func columnAlignments(data Dataset) []string {
	aligns := make([]string, len(data.Headers))
	for col := range data.Headers {
		numeric, seen := true, false
		for _, row := range data.Rows {
			value := strings.TrimSuffix(strings.TrimSpace(data.cell(row, col)), "%")
			if value == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric && seen {
			aligns[col] = "R"
		} else {
			aligns[col] = "L"
		}
	}
	return aligns
}
