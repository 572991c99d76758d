package inventory

import "time"

// StockStatus classifies a record by its on-hand quantity.
type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// LowStockThreshold is the inclusive upper bound for the low-stock band.
const LowStockThreshold = 50

// InventoryRecord is a canonical, normalized inventory entry.
type InventoryRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Quantity  int         `json:"quantity"`
	Price     float64     `json:"price"`
	Supplier  string      `json:"supplier"`
	DateAdded string      `json:"dateAdded"`
	Status    StockStatus `json:"status"`
}

// DeriveStatus maps an on-hand quantity to its stock status.
func DeriveStatus(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// Snapshot is the complete row set produced by one read cycle.
type Snapshot struct {
	Seq  int64
	Rows []RawRow
	At   time.Time
}
