package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Card holds the printable fields of a single ID card.
type Card struct {
	Name        string
	LoginID     string
	Line1       string
	Line2       string
	Institution string
}

// PDFExporter renders printable ID-card sheets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	cardWidth   = 90.0
	cardHeight  = 52.0
	cardsPerRow = 2
	rowsPerPage = 5
)

// RenderCardSheet lays cards out in a fixed grid, two per row, five rows per
// A4 page.
func (e *PDFExporter) RenderCardSheet(title string, cards []Card) ([]byte, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("card sheet requires at least one card")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	perPage := cardsPerRow * rowsPerPage
	for i, card := range cards {
		if i > 0 && i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		x := 10.0 + float64(slot%cardsPerRow)*(cardWidth+5)
		y := 30.0 + float64(slot/cardsPerRow)*(cardHeight+4)

		pdf.Rect(x, y, cardWidth, cardHeight, "D")
		pdf.SetFont("Arial", "B", 9)
		pdf.SetXY(x+3, y+4)
		pdf.CellFormat(cardWidth-6, 5, card.Institution, "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.SetXY(x+3, y+12)
		pdf.CellFormat(cardWidth-6, 6, card.Name, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.SetXY(x+3, y+20)
		pdf.CellFormat(cardWidth-6, 5, card.LoginID, "", 1, "L", false, 0, "")
		pdf.SetXY(x+3, y+26)
		pdf.CellFormat(cardWidth-6, 5, card.Line1, "", 1, "L", false, 0, "")
		pdf.SetXY(x+3, y+32)
		pdf.CellFormat(cardWidth-6, 5, card.Line2, "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render card sheet: %w", err)
	}
	return buf.Bytes(), nil
}
