package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	inventory "stockdeck/internal/inventory/domain"
)

// Totals summarizes an inventory record set.
type Totals struct {
	Records    int
	Units      int
	Value      decimal.Decimal
	InStock    int
	LowStock   int
	OutOfStock int
}

// Summarize computes record-set totals. Inventory value is accumulated as
// exact decimals, not floats, and rounded to cents once at the end.
func Summarize(records []inventory.InventoryRecord) Totals {
	totals := Totals{Records: len(records), Value: decimal.Zero}
	for _, record := range records {
		totals.Units += record.Quantity
		price := decimal.NewFromFloat(record.Price)
		qty := decimal.NewFromInt(int64(record.Quantity))
		totals.Value = totals.Value.Add(price.Mul(qty))
		switch record.Status {
		case inventory.StatusInStock:
			totals.InStock++
		case inventory.StatusLowStock:
			totals.LowStock++
		case inventory.StatusOutOfStock:
			totals.OutOfStock++
		}
	}
	totals.Value = totals.Value.Round(2)
	return totals
}

// BuildStockPDF renders the current record set as a stock report.
func BuildStockPDF(records []inventory.InventoryRecord) ([]byte, error) {
	totals := Summarize(records)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Inventory Stock Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d", totals.Records))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Units: %d", totals.Units))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Value: %s", totals.Value.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("In Stock: %d  Low Stock: %d  Out of Stock: %d", totals.InStock, totals.LowStock, totals.OutOfStock))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(30, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Supplier", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, record := range records {
		pdf.CellFormat(30, 6, record.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, record.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, record.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", record.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", record.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(55, 6, record.Supplier, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, string(record.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
