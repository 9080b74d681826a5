package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mapcocoro/kakeiboApp/internal/aggregate"
	"github.com/mapcocoro/kakeiboApp/internal/core"
)

// monthlyResponse is the per-year dashboard payload. Totals is indexed
// January first.
type monthlyResponse struct {
	Year   int       `json:"year"`
	Months []string  `json:"months"`
	Totals [12]int64 `json:"totals"`
	Total  int64     `json:"total"`
}

// matrixResponse is the category×month pivot payload.
type matrixResponse struct {
	Categories   []string  `json:"categories"`
	Months       []string  `json:"months"`
	Cells        [][]int64 `json:"cells"`
	RowTotals    []int64   `json:"rowTotals"`
	ColumnTotals []int64   `json:"columnTotals"`
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year := parseYear(r)
	cacheKey := strconv.Itoa(year)
	if resp, ok := s.monthlyCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	records := s.ledger.Records().ByYear(year)
	totals := aggregate.MonthlyTotals(records, year)

	var sum int64
	for _, v := range totals {
		sum += v
	}

	resp := monthlyResponse{
		Year:   year,
		Months: aggregate.MonthsOfYear(year),
		Totals: totals,
		Total:  sum,
	}
	s.monthlyCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboardMatrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	year := parseYear(r)

	// sort selects a column whose values order the rows descending.
	sortCol := -1
	if v := strings.TrimSpace(r.URL.Query().Get("sort")); v != "" {
		col, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sort must be a column index")
			return
		}
		sortCol = col
	}

	// from/to switch the columns from one calendar year to an
	// arbitrary YYYY-MM range spanning year boundaries.
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	// Only valid parameter sets ever get cached, so a hit needs no
	// re-validation and no record fetch.
	cacheKey := fmt.Sprintf("%d:%s:%s:%d", year, from, to, sortCol)
	if resp, ok := s.matrixCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var months []string
	var records []core.Record
	if from != "" || to != "" {
		var err error
		months, err = aggregate.MonthsBetween(from, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = s.ledger.Records().All()
	} else {
		months = aggregate.MonthsOfYear(year)
		records = s.ledger.Records().ByYear(year)
	}

	categories, err := core.CategoryNames()
	if err != nil {
		writeStoreError(w, r, err, "load_categories")
		return
	}

	m := aggregate.NewMatrix(records, categories, months)
	if sortCol >= 0 {
		m = m.SortRowsByColumn(sortCol)
	}

	resp := matrixResponse{
		Categories:   m.Categories,
		Months:       m.Months,
		Cells:        m.Cells,
		RowTotals:    m.RowTotals(),
		ColumnTotals: m.ColumnTotals(),
	}
	s.matrixCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	records := s.ledger.Records()
	year := parseYear(r)
	month, ok := parseMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	var scoped []core.Record
	if month == 0 {
		scoped = records.ByYear(year)
	} else {
		scoped = records.ByMonth(year, month)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":           year,
		"month":          month,
		"categoryTotals": aggregate.CategoryTotals(scoped),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	defs, err := core.CategoryMaster()
	if err != nil {
		writeStoreError(w, r, err, "load_categories")
		return
	}
	writeJSON(w, http.StatusOK, defs)
}
