// Package aggregate rolls raw expense records into category and time
// summaries. Everything here is a pure function over a record slice:
// no mutation, no I/O, integer yen throughout.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/mapcocoro/kakeiboApp/internal/core"
)

// CategoryTotals sums amounts per category. Categories absent from the
// input do not appear; there is no zero-fill.
func CategoryTotals(records []core.Record) map[string]int64 {
	totals := make(map[string]int64)
	for _, r := range records {
		totals[r.Category] += r.Amount
	}
	return totals
}

// MonthlyTotals sums amounts per month of the given year into a fixed
// 12-slot array, January at index 0. Months without records stay zero.
func MonthlyTotals(records []core.Record, year int) [12]int64 {
	var totals [12]int64
	for _, r := range records {
		if r.Date.Year() == year {
			totals[r.Date.Month()-1] += r.Amount
		}
	}
	return totals
}

// MonthsOfYear returns the twelve YYYY-MM keys of a calendar year, in
// order. This is the "group by calendar month" axis.
func MonthsOfYear(year int) []string {
	months := make([]string, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = fmt.Sprintf("%04d-%02d", year, m)
	}
	return months
}

// MonthsBetween returns every YYYY-MM key from from to to inclusive,
// crossing year boundaries as needed. This is the "group by absolute
// year-month" axis. from must not be after to.
func MonthsBetween(from, to string) ([]string, error) {
	fy, fm, err := splitYearMonth(from)
	if err != nil {
		return nil, err
	}
	ty, tm, err := splitYearMonth(to)
	if err != nil {
		return nil, err
	}
	if fy > ty || (fy == ty && fm > tm) {
		return nil, fmt.Errorf("month range %s..%s is inverted", from, to)
	}

	var months []string
	for y, m := fy, fm; y < ty || (y == ty && m <= tm); {
		months = append(months, fmt.Sprintf("%04d-%02d", y, m))
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return months, nil
}

func splitYearMonth(ym string) (int, int, error) {
	var y, m int
	if _, err := fmt.Sscanf(ym, "%4d-%2d", &y, &m); err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("invalid year-month %q", ym)
	}
	return y, m, nil
}

// Matrix is a category×month pivot table. Rows follow Categories,
// columns follow Months, and Cells[row][col] holds the summed amount.
type Matrix struct {
	Categories []string
	Months     []string
	Cells      [][]int64
}

// NewMatrix builds the pivot for a fixed ordered category list and an
// ordered list of YYYY-MM keys. Records whose category is not listed,
// or whose month is outside the keys, are ignored.
func NewMatrix(records []core.Record, categories, months []string) Matrix {
	rowIndex := make(map[string]int, len(categories))
	for i, c := range categories {
		rowIndex[c] = i
	}
	colIndex := make(map[string]int, len(months))
	for i, m := range months {
		colIndex[m] = i
	}

	cells := make([][]int64, len(categories))
	for i := range cells {
		cells[i] = make([]int64, len(months))
	}

	for _, r := range records {
		row, ok := rowIndex[r.Category]
		if !ok {
			continue
		}
		col, ok := colIndex[r.Date.YearMonth()]
		if !ok {
			continue
		}
		cells[row][col] += r.Amount
	}

	return Matrix{
		Categories: append([]string(nil), categories...),
		Months:     append([]string(nil), months...),
		Cells:      cells,
	}
}

// RowTotals returns the per-category sum across all columns.
func (m Matrix) RowTotals() []int64 {
	totals := make([]int64, len(m.Categories))
	for i, row := range m.Cells {
		for _, v := range row {
			totals[i] += v
		}
	}
	return totals
}

// ColumnTotals returns the per-month sum across all categories: the
// synthetic "total" row of the pivot.
func (m Matrix) ColumnTotals() []int64 {
	totals := make([]int64, len(m.Months))
	for _, row := range m.Cells {
		for j, v := range row {
			totals[j] += v
		}
	}
	return totals
}

// SortRowsByColumn returns a copy of the matrix with rows reordered by
// the given column's values, descending. The sort is stable: ties keep
// the original category order. An out-of-range column returns the
// matrix unchanged.
func (m Matrix) SortRowsByColumn(col int) Matrix {
	if col < 0 || col >= len(m.Months) {
		return m
	}

	order := make([]int, len(m.Categories))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return m.Cells[order[a]][col] > m.Cells[order[b]][col]
	})

	sorted := Matrix{
		Categories: make([]string, len(m.Categories)),
		Months:     append([]string(nil), m.Months...),
		Cells:      make([][]int64, len(m.Categories)),
	}
	for i, idx := range order {
		sorted.Categories[i] = m.Categories[idx]
		sorted.Cells[i] = append([]int64(nil), m.Cells[idx]...)
	}
	return sorted
}
