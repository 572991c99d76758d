package xlsx

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	inventory "stockdeck/internal/inventory/domain"
	"stockdeck/internal/observability/metrics"
)

// Reader decodes the watched workbook into raw rows.
type Reader struct {
	path   string
	logger *log.Logger
}

// NewReader constructs a reader for the watched path.
func NewReader(path string, logger *log.Logger) (*Reader, error) {
	if path == "" {
		return nil, errors.New("xlsx: empty watch path")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reader{path: path, logger: logger}, nil
}

// Path returns the watched file path.
func (r *Reader) Path() string {
	return r.path
}

// ReadAll loads the current contents of the watched workbook. A missing file
// is an empty inventory, and a workbook that fails to decode is logged and
// also treated as empty; neither case may break the watch loop.
func (r *Reader) ReadAll(ctx context.Context) []inventory.RawRow {
	if err := ctx.Err(); err != nil {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Printf("inventory read error: %v", err)
			metrics.IncDecodeFailure("read")
		}
		return nil
	}
	rows, err := DecodeRows(data)
	if err != nil {
		r.logger.Printf("inventory decode error: %v", err)
		metrics.IncDecodeFailure("decode")
		return nil
	}
	return rows
}

// DecodeRows parses workbook bytes into raw rows. Only the first sheet is
// considered; row 0 supplies the column labels.
func DecodeRows(data []byte) ([]inventory.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx: workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(cells) < 2 {
		return nil, nil
	}

	header := cells[0]
	rows := make([]inventory.RawRow, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(inventory.RawRow)
		populated := false
		for col, label := range header {
			if strings.TrimSpace(label) == "" || col >= len(line) {
				continue
			}
			row[label] = line[col]
			if strings.TrimSpace(line[col]) != "" {
				populated = true
			}
		}
		if !populated {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
