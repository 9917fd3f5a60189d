package export

import (
	"bytes"
	"encoding/csv"
)

var csvHeader = []string{"apartment", "resident", "amount", "row_type"}

func RenderCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, l := range flatten(doc.Rows) {
		kind := "item"
		if l.subtotal {
			kind = "subtotal"
		}
		if err := w.Write([]string{l.apartment, l.resident, money(l.amount), kind}); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"", "Total", money(doc.GrandTotal), "total"}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
