package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateHeaders are the canonical column labels offered for offline edits.
var TemplateHeaders = []string{"ID", "Name", "Category", "Quantity", "Price", "Supplier", "Date Added"}

// BuildTemplate renders a blank workbook with only the canonical header row,
// served when no watched file exists yet.
func BuildTemplate() ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	for col, label := range TemplateHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("xlsx: template cell: %w", err)
		}
		_ = f.SetCellValue(sheet, cell, label)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
