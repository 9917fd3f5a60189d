package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "report"

func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(xlsxSheet, "A1", doc.Title)
	_ = f.SetCellValue(xlsxSheet, "A2", "From")
	_ = f.SetCellValue(xlsxSheet, "B2", doc.From)
	_ = f.SetCellValue(xlsxSheet, "A3", "To")
	_ = f.SetCellValue(xlsxSheet, "B3", doc.To)

	_ = f.SetCellValue(xlsxSheet, "A5", "Apartment")
	_ = f.SetCellValue(xlsxSheet, "B5", "Resident")
	_ = f.SetCellValue(xlsxSheet, "C5", "Amount")

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(xlsxSheet, "A5", "C5", bold)

	row := 6
	for _, l := range flatten(doc.Rows) {
		_ = f.SetCellValue(xlsxSheet, fmt.Sprintf("A%d", row), l.apartment)
		_ = f.SetCellValue(xlsxSheet, fmt.Sprintf("B%d", row), l.resident)
		_ = f.SetCellValue(xlsxSheet, fmt.Sprintf("C%d", row), l.amount.InexactFloat64())
		if l.subtotal {
			_ = f.SetCellStyle(xlsxSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), bold)
		}
		row++
	}
	_ = f.SetCellValue(xlsxSheet, fmt.Sprintf("B%d", row), "Total")
	_ = f.SetCellValue(xlsxSheet, fmt.Sprintf("C%d", row), doc.GrandTotal.InexactFloat64())
	_ = f.SetCellStyle(xlsxSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), bold)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
