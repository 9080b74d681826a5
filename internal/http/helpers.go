package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	applog "github.com/mapcocoro/kakeiboApp/internal/log"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps persistence failures to a response. A full
// snapshot store is the one failure the user can act on, so it gets
// its own status and message.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	logger := applog.FromContext(r.Context())
	if errors.Is(err, storage.ErrQuotaExceeded) {
		logger.WarnContext(r.Context(), "Snapshot quota exceeded",
			applog.FieldOperation, operation,
			applog.FieldError, err)
		writeError(w, http.StatusInsufficientStorage,
			"保存容量が上限に達しました。古いデータを削除するか、インポートを分割してください。")
		return
	}
	logger.ErrorContext(r.Context(), "Store operation failed",
		applog.FieldOperation, operation,
		applog.FieldError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// pathID extracts the trailing id from a prefixed route such as
// /api/expenses/{id}. Empty or nested paths return "".
func pathID(r *http.Request, prefix string) string {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// parseYear reads the year query parameter, defaulting to the current
// year.
func parseYear(r *http.Request) int {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	return year
}

// parseMonth reads the optional month query parameter. Zero means the
// whole year.
func parseMonth(r *http.Request) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return 0, true
	}
	m, err := strconv.Atoi(v)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
