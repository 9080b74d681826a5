package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/report"
)

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.reports.Reports())
	case http.MethodPost:
		var req core.Report
		if !decodeJSONBody(w, r, &req) {
			return
		}
		saved, err := s.reports.SaveReport(r.Context(), req)
		if err != nil {
			if errors.Is(err, report.ErrNameRequired) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeStoreError(w, r, err, "save_report")
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleReportByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/reports/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	found, err := s.reports.DeleteReport(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "delete_report")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type monthlyMemoRequest struct {
	YearMonth string `json:"yearMonth"`
	Events    string `json:"events"`
	Plans     string `json:"plans"`
}

func (s *Server) handleMonthlyMemo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ym := strings.TrimSpace(r.URL.Query().Get("yearMonth"))
		memo, ok := s.reports.MonthlyMemo(ym)
		if !ok {
			writeJSON(w, http.StatusOK, core.MonthlyMemo{})
			return
		}
		writeJSON(w, http.StatusOK, memo)
	case http.MethodPut:
		var req monthlyMemoRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		memo := core.MonthlyMemo{Events: req.Events, Plans: req.Plans}
		if err := s.reports.SetMonthlyMemo(r.Context(), req.YearMonth, memo); err != nil {
			if errors.Is(err, report.ErrInvalidYearMonth) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeStoreError(w, r, err, "set_monthly_memo")
			return
		}
		writeJSON(w, http.StatusOK, memo)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

type yearlyMemoRequest struct {
	Year string `json:"year"`
	Text string `json:"text"`
}

func (s *Server) handleYearlyMemo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		year := strings.TrimSpace(r.URL.Query().Get("year"))
		text, _ := s.reports.YearlyMemo(year)
		writeJSON(w, http.StatusOK, map[string]string{"year": year, "text": text})
	case http.MethodPut:
		var req yearlyMemoRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if err := s.reports.SetYearlyMemo(r.Context(), req.Year, req.Text); err != nil {
			writeStoreError(w, r, err, "set_yearly_memo")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"year": req.Year, "text": req.Text})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleUIState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.reports.UIState())
	case http.MethodPut:
		var req map[string]string
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if err := s.reports.SaveUIState(r.Context(), req); err != nil {
			writeStoreError(w, r, err, "save_ui_state")
			return
		}
		writeJSON(w, http.StatusOK, s.reports.UIState())
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
