package http

import (
	"errors"
	"net/http"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/ledger"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
)

// isValidationError separates record validation failures, which are
// the caller's fault, from persistence failures.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyCategory)
}

// expenseRequest is the create payload. Amount is whole yen. With
// applyTax set, the amount is taken as tax-exclusive and stored with
// 10% consumption tax added.
type expenseRequest struct {
	Date        string `json:"date"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Amount      int64  `json:"amount"`
	ApplyTax    bool   `json:"applyTax,omitempty"`
	Place       string `json:"place"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// expensePatch mirrors ledger.Patch over JSON. Absent fields stay
// untouched; present fields overwrite, including with empty strings.
type expensePatch struct {
	Date        *string `json:"date"`
	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	Amount      *int64  `json:"amount"`
	Place       *string `json:"place"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	records := s.ledger.Records()

	if r.URL.Query().Get("year") == "" {
		writeJSON(w, http.StatusOK, records.All())
		return
	}

	year := parseYear(r)
	month, ok := parseMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}
	if month == 0 {
		writeJSON(w, http.StatusOK, records.ByYear(year))
		return
	}
	writeJSON(w, http.StatusOK, records.ByMonth(year, month))
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}

	amount := req.Amount
	if req.ApplyTax {
		amount = core.WithTax(amount)
	}

	rec := core.Record{
		Date:        date,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      amount,
		Place:       req.Place,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.ledger.Create(r.Context(), rec)
	if err != nil {
		writeStoreError(w, r, err, "create_expense")
		return
	}
	s.invalidateAggregates()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		applog.FieldRecordID, created.ID,
		applog.FieldCategory, created.Category,
		applog.FieldAmount, created.Amount)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/api/expenses/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, ok := s.ledger.Records().Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodPut, http.MethodPatch:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id string) {
	var req expensePatch
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p := ledger.Patch{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      req.Amount,
		Place:       req.Place,
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		p.Date = &date
	}
	if req.Amount != nil && *req.Amount < 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must not be negative")
		return
	}

	updated, found, err := s.ledger.Update(r.Context(), id, p)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeStoreError(w, r, err, "update_expense")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.invalidateAggregates()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	found, err := s.ledger.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "delete_expense")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.invalidateAggregates()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	groups := s.ledger.DuplicateGroups()
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

func (s *Server) handleDuplicateRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	res, err := s.ledger.RemoveDuplicates(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "remove_duplicates")
		return
	}
	s.invalidateAggregates()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Duplicates removed",
		"groups", res.Groups,
		"removed", res.Removed)
	writeJSON(w, http.StatusOK, map[string]int{
		"groups":  res.Groups,
		"removed": res.Removed,
	})
}
