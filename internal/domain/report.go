package domain

import "github.com/shopspring/decimal"

// LineItem is one already-priced report line.
type LineItem struct {
	ApartmentNumber string          `json:"apartment_number"`
	ResidentName    string          `json:"resident_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// SubtotalRow sums the line items of one apartment group.
type SubtotalRow struct {
	ApartmentNumber string          `json:"apartment_number"`
	Label           string          `json:"label"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type RowKind string

const (
	RowItem     RowKind = "item"
	RowSubtotal RowKind = "subtotal"
)

// ReportRow is either a pass-through line item or a synthesized subtotal.
type ReportRow struct {
	Kind     RowKind      `json:"kind"`
	Item     *LineItem    `json:"item,omitempty"`
	Subtotal *SubtotalRow `json:"subtotal,omitempty"`
}
