package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	inventory "stockdeck/internal/inventory/domain"
	"stockdeck/internal/inventory/infrastructure/xlsx"
	"stockdeck/internal/inventory/interfaces/report"
	"stockdeck/internal/observability/metrics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUploadBytes caps uploaded workbook size.
const maxUploadBytes = 32 << 20

// Handler serves the inventory REST endpoints.
type Handler struct {
	reader *xlsx.Reader
	logger *log.Logger
}

// NewHandler constructs the inventory handler.
func NewHandler(reader *xlsx.Reader, logger *log.Logger) (*Handler, error) {
	if reader == nil {
		return nil, errors.New("inventory handler: nil reader")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{reader: reader, logger: logger}, nil
}

// ServeHTTP routes the inventory endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/inventory" && r.Method == http.MethodGet:
		h.handleFetch(w, r)
	case r.URL.Path == "/api/v1/inventory/upload" && r.Method == http.MethodPost:
		h.handleUpload(w, r)
	case r.URL.Path == "/api/v1/inventory/template" && r.Method == http.MethodGet:
		h.handleTemplate(w, r)
	case r.URL.Path == "/api/v1/inventory/report.pdf" && r.Method == http.MethodGet:
		h.handleReport(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleFetch returns the current decoded row sequence. Rows are raw: the
// stream and this endpoint share one wire shape, and consumers normalize.
func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	rows := h.reader.ReadAll(r.Context())
	if rows == nil {
		rows = []inventory.RawRow{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// handleUpload accepts a replacement workbook and atomically overwrites the
// watched path. Success means "file accepted" only; propagation to viewers
// is the watcher's job.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		metrics.IncUpload(metrics.ResultError)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		metrics.IncUpload(metrics.ResultError)
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		metrics.IncUpload(metrics.ResultError)
		http.Error(w, "read upload error", http.StatusBadRequest)
		return
	}
	if _, err := xlsx.DecodeRows(data); err != nil {
		metrics.IncUpload(metrics.ResultError)
		http.Error(w, "not a valid workbook", http.StatusBadRequest)
		return
	}

	if err := h.replaceWatchedFile(data); err != nil {
		h.logger.Printf("upload write error: %v", err)
		metrics.IncUpload(metrics.ResultError)
		http.Error(w, "write error", http.StatusInternalServerError)
		return
	}

	metrics.IncUpload(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (h *Handler) replaceWatchedFile(data []byte) error {
	target := h.reader.Path()
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*.xlsx")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}

// handleTemplate returns the watched file verbatim for offline editing, or a
// generated blank template when no file exists yet.
func (h *Handler) handleTemplate(w http.ResponseWriter, _ *http.Request) {
	data, err := os.ReadFile(h.reader.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			http.Error(w, "read error", http.StatusInternalServerError)
			return
		}
		data, err = xlsx.BuildTemplate()
		if err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_template.xlsx"`)
	_, _ = w.Write(data)
}

// handleReport renders the current inventory as a PDF stock report.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	records := inventory.NormalizeAll(h.reader.ReadAll(r.Context()))
	data, err := report.BuildStockPDF(records)
	if err != nil {
		metrics.IncExport("pdf", metrics.ResultError)
		http.Error(w, "report error", http.StatusInternalServerError)
		return
	}
	metrics.IncExport("pdf", metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_report.pdf"`)
	_, _ = w.Write(data)
}
