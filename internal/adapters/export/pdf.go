package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

func RenderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, tr(doc.Title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", doc.From, doc.To))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Apartment", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Resident", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	for _, l := range flatten(doc.Rows) {
		style := ""
		if l.subtotal {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(30, 6, tr(l.apartment), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 6, tr(l.resident), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money(l.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, money(doc.GrandTotal), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
