// Package export renders apartment reports as CSV, PDF or XLSX.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"guestflat/internal/adapters/observability"
	"guestflat/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// FileFormats are the formats written to disk by the exporter.
var FileFormats = []Format{FormatCSV, FormatPDF, FormatXLSX}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", &domain.ValidationError{Field: "format", Reason: "must be json, csv, pdf or xlsx"}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

func (f Format) Ext() string { return string(f) }

// Document is a grouped apartment report ready for rendering.
type Document struct {
	Title      string             `json:"title"`
	From       string             `json:"from"`
	To         string             `json:"to"`
	Rows       []domain.ReportRow `json:"rows"`
	GrandTotal decimal.Decimal    `json:"grand_total"`
}

// Render encodes doc in the requested format.
func Render(f Format, doc Document) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch f {
	case FormatJSON:
		b, err = json.Marshal(doc)
	case FormatCSV:
		b, err = RenderCSV(doc)
	case FormatPDF:
		b, err = RenderPDF(doc)
	case FormatXLSX:
		b, err = RenderXLSX(doc)
	default:
		err = fmt.Errorf("export: unsupported format %q", f)
	}
	observability.ObserveReport(string(f), err)
	return b, err
}

// line is the flattened form of a report row shared by every renderer.
type line struct {
	apartment string
	resident  string
	amount    decimal.Decimal
	subtotal  bool
}

func flatten(rows []domain.ReportRow) []line {
	out := make([]line, 0, len(rows))
	for _, r := range rows {
		switch {
		case r.Kind == domain.RowItem && r.Item != nil:
			out = append(out, line{apartment: r.Item.ApartmentNumber, resident: r.Item.ResidentName, amount: r.Item.TotalAmount})
		case r.Kind == domain.RowSubtotal && r.Subtotal != nil:
			out = append(out, line{apartment: r.Subtotal.ApartmentNumber, resident: r.Subtotal.Label, amount: r.Subtotal.Subtotal, subtotal: true})
		}
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
