// Package csvio reads and writes the ledger's CSV exchange format.
//
// The schema is a fixed contract: header 日付,カテゴリ,小項目,金額,場所,
// 商品名・メモ, UTF-8 with a byte-order mark on export so spreadsheet
// applications pick the encoding up. Import is tolerant: missing
// trailing optional fields are filled with empty strings, and a row
// missing its date, category, or amount is skipped and counted rather
// than aborting the batch.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mapcocoro/kakeiboApp/internal/core"
)

// Header is the exchange format's column row.
var Header = []string{"日付", "カテゴリ", "小項目", "金額", "場所", "商品名・メモ"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowError describes one skipped import row.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseResult is what an import pass produced. Records holds every
// well-formed row in file order; Skipped counts the bad ones.
type ParseResult struct {
	Records   []core.Record
	Skipped   int
	RowErrors []RowError
}

// Parse reads the whole CSV stream into memory. Records are returned
// unparsed-id (the store assigns ids); nothing is persisted here.
func Parse(r io.Reader) (ParseResult, error) {
	br := newBOMReader(r)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1 // rows may omit trailing optional fields

	var res ParseResult
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Quote errors carry their own position; quoted fields may
			// span physical lines, so no counter of our own can be
			// trusted here.
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			res.Skipped++
			res.RowErrors = append(res.RowErrors, RowError{Line: line, Reason: err.Error()})
			continue
		}
		// The physical line the record started on, as reported by the
		// reader itself.
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}

		rec, rowErr := parseRow(row)
		if rowErr != "" {
			res.Skipped++
			res.RowErrors = append(res.RowErrors, RowError{Line: line, Reason: rowErr})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// parseRow maps one CSV row to a record, reporting a non-empty reason
// when a required field is missing or malformed.
func parseRow(row []string) (core.Record, string) {
	// Pad to full width so optional trailing fields read as empty.
	fields := make([]string, len(Header))
	copy(fields, row)

	if fields[0] == "" {
		return core.Record{}, "missing date"
	}
	date, err := core.ParseDate(fields[0])
	if err != nil {
		return core.Record{}, fmt.Sprintf("bad date %q", fields[0])
	}
	if fields[1] == "" {
		return core.Record{}, "missing category"
	}
	if fields[3] == "" {
		return core.Record{}, "missing amount"
	}
	amount, err := core.ParseAmount(fields[3])
	if err != nil {
		return core.Record{}, fmt.Sprintf("bad amount %q", fields[3])
	}

	return core.Record{
		Date:        date,
		Category:    fields[1],
		Subcategory: fields[2],
		Amount:      amount,
		Place:       fields[4],
		Description: fields[5],
	}, ""
}

func isHeader(row []string) bool {
	return len(row) > 0 && row[0] == Header[0]
}

// Write serializes records in file order: BOM, header, one row per
// record. Quoting and quote-doubling follow RFC 4180 via encoding/csv.
func Write(w io.Writer, records []core.Record) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.ISO(),
			r.Category,
			r.Subcategory,
			strconv.FormatInt(r.Amount, 10),
			r.Place,
			r.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// newBOMReader strips a leading UTF-8 byte-order mark if present.
func newBOMReader(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf[:n]), r)
}
