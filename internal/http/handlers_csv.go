package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mapcocoro/kakeiboApp/internal/csvio"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
)

// handleImport accepts a CSV stream in the request body or as a
// multipart "file" part. Well-formed rows become one batch insert;
// bad rows are reported back, never fatal.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := importBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	result, err := csvio.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "CSV parse failed: "+err.Error())
		return
	}

	created, err := s.ledger.CreateBatch(r.Context(), result.Records)
	if err != nil {
		writeStoreError(w, r, err, "import_csv")
		return
	}
	s.invalidateAggregates()

	rowErrors := make([]string, 0, len(result.RowErrors))
	for _, re := range result.RowErrors {
		rowErrors = append(rowErrors, re.String())
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "CSV import finished",
		applog.FieldCount, len(created),
		"skipped", result.Skipped)
	writeJSON(w, http.StatusOK, map[string]any{
		"imported":  len(created),
		"skipped":   result.Skipped,
		"rowErrors": rowErrors,
	})
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file part: %w", err)
		}
		return f, nil
	}
	return r.Body, nil
}

// handleExport streams the full ledger as CSV with a UTF-8 BOM so
// spreadsheet applications pick the right encoding.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	records := s.ledger.Records().All()
	if r.URL.Query().Get("year") != "" {
		year := parseYear(r)
		month, ok := parseMonth(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}
		if month == 0 {
			records = s.ledger.Records().ByYear(year)
		} else {
			records = s.ledger.Records().ByMonth(year, month)
		}
	}

	filename := fmt.Sprintf("kakeibo-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := csvio.Write(w, records); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			applog.FieldError, err)
	}
}
