package http

import (
	"bytes"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	inventory "stockdeck/internal/inventory/domain"
	"stockdeck/internal/inventory/infrastructure/xlsx"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func newTestHandler(t *testing.T, path string) *Handler {
	t.Helper()
	reader, err := xlsx.NewReader(path, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	handler, err := NewHandler(reader, log.New(os.Stderr, "", 0))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestFetchMissingFileIsEmptyArray(t *testing.T) {
	handler := newTestHandler(t, filepath.Join(t.TempDir(), "absent.xlsx"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []inventory.RawRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty array, got %d rows", len(rows))
	}
	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Fatalf("expected a JSON array, got %s", rec.Body.String())
	}
}

func TestUploadThenFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	handler := newTestHandler(t, path)

	data := workbookBytes(t, [][]any{
		{"ID", "Name", "Quantity"},
		{"P-1", "Widget", 4},
	})
	body, contentType := multipartBody(t, "file", "inventory.xlsx", data)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected watched file written: %v", err)
	}

	fetch := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	fetchRec := httptest.NewRecorder()
	handler.ServeHTTP(fetchRec, fetch)

	var rows []inventory.RawRow
	if err := json.Unmarshal(fetchRec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 1 || rows[0]["ID"] != "P-1" {
		t.Fatalf("unexpected rows after upload: %+v", rows)
	}
}

func TestUploadReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	if err := os.WriteFile(path, workbookBytes(t, [][]any{{"ID"}, {"old"}}), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	handler := newTestHandler(t, path)

	data := workbookBytes(t, [][]any{{"ID"}, {"new"}})
	body, contentType := multipartBody(t, "file", "inventory.xlsx", data)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rows, err := xlsx.DecodeRows(mustRead(t, path))
	if err != nil {
		t.Fatalf("decode replaced file: %v", err)
	}
	if len(rows) != 1 || rows[0]["ID"] != "new" {
		t.Fatalf("expected replacement content, got %+v", rows)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestUploadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	handler := newTestHandler(t, path)

	body, contentType := multipartBody(t, "file", "junk.xlsx", []byte("not a workbook"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected watched file untouched")
	}
}

func TestUploadRejectsMissingField(t *testing.T) {
	handler := newTestHandler(t, filepath.Join(t.TempDir(), "inventory.xlsx"))

	body, contentType := multipartBody(t, "wrong", "inventory.xlsx", workbookBytes(t, [][]any{{"ID"}}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTemplateServesWatchedFileVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	content := workbookBytes(t, [][]any{{"ID", "Name"}, {"P-1", "Widget"}})
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	handler := newTestHandler(t, path)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/template", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Fatalf("expected watched file bytes verbatim")
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", got)
	}
}

func TestTemplateGeneratedWhenMissing(t *testing.T) {
	handler := newTestHandler(t, filepath.Join(t.TempDir(), "absent.xlsx"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/template", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("expected a valid workbook: %v", err)
	}
	defer f.Close()
	cells, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(cells) != 1 || cells[0][0] != "ID" {
		t.Fatalf("expected generated template headers, got %+v", cells)
	}
}

func TestReportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	if err := os.WriteFile(path, workbookBytes(t, [][]any{
		{"ID", "Name", "Quantity", "Price"},
		{"P-1", "Widget", 4, 2.5},
	}), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	handler := newTestHandler(t, path)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/report.pdf", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type: %s", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a PDF body")
	}
}

func TestUnknownRouteOrMethod(t *testing.T) {
	handler := newTestHandler(t, filepath.Join(t.TempDir(), "inventory.xlsx"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/inventory", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	return data
}
