package inventory

import (
	"strconv"
	"strings"
	"time"
)

// RawRow is one decoded source row keyed by whatever column labels the
// workbook used. Values are strings when read from a sheet and may be JSON
// numbers after a round trip over the wire.
type RawRow map[string]any

// Default values for fields absent from the source.
const (
	DefaultName     = "Unknown Product"
	DefaultCategory = "Uncategorized"
	DefaultSupplier = "Unknown Supplier"
)

// Alias lists per canonical field, in precedence order. Matching is
// case-insensitive on trimmed keys; the first alias present in the row wins.
var (
	idAliases       = []string{"id", "pid", "product id", "item id"}
	nameAliases     = []string{"name", "product name", "item name", "product"}
	categoryAliases = []string{"category", "type", "group"}
	quantityAliases = []string{"quantity", "qty", "stock", "amount"}
	priceAliases    = []string{"price", "cost", "unit price", "rate"}
	supplierAliases = []string{"supplier", "vendor", "source", "manufacturer"}
	dateAliases     = []string{"dateadded", "date", "added", "created"}
)

// Normalize converts a raw source row into a canonical record. It is total:
// missing or malformed fields degrade to defaults, never to an error. The
// source's own status-like column, if any, is ignored; status is always
// recomputed from quantity.
func Normalize(row RawRow) InventoryRecord {
	keys := make(map[string]any, len(row))
	for k, v := range row {
		keys[strings.ToLower(strings.TrimSpace(k))] = v
	}

	record := InventoryRecord{
		ID:        stringField(keys, idAliases, ""),
		Name:      stringField(keys, nameAliases, DefaultName),
		Category:  stringField(keys, categoryAliases, DefaultCategory),
		Quantity:  int(numericField(keys, quantityAliases)),
		Price:     numericField(keys, priceAliases),
		Supplier:  stringField(keys, supplierAliases, DefaultSupplier),
		DateAdded: stringField(keys, dateAliases, time.Now().UTC().Format("2006-01-02")),
	}
	record.Status = DeriveStatus(record.Quantity)
	return record
}

// NormalizeAll maps every raw row to its canonical record, preserving order.
func NormalizeAll(rows []RawRow) []InventoryRecord {
	if len(rows) == 0 {
		return nil
	}
	records := make([]InventoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, Normalize(row))
	}
	return records
}

func stringField(keys map[string]any, aliases []string, fallback string) string {
	for _, alias := range aliases {
		value, ok := keys[alias]
		if !ok {
			continue
		}
		text := strings.TrimSpace(asString(value))
		if text != "" {
			return text
		}
	}
	return fallback
}

// numericField resolves the first aliased value and coerces it to a
// non-negative number. Non-numeric input coerces to 0; no currency stripping
// happens here.
func numericField(keys map[string]any, aliases []string) float64 {
	for _, alias := range aliases {
		value, ok := keys[alias]
		if !ok {
			continue
		}
		parsed, ok := asNumber(value)
		if !ok || parsed < 0 {
			return 0
		}
		return parsed
	}
	return 0
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return ""
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
