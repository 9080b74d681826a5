package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel values used when a donation entry is derived from an expense
// record whose optional fields are empty.
const (
	DonationMarker   = "ふるさと納税"
	NoItemSentinel   = "品名なし"
	UnknownApplicant = "不明"
	FallbackCategory = "その他"
)

type (
	Date struct {
		time.Time
	}

	// Record is a single expense entry. Amounts are whole yen; fractional
	// yen never occurs anywhere in the ledger.
	Record struct {
		ID          string `json:"id"`
		Date        Date   `json:"date"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory,omitempty"`
		Amount      int64  `json:"amount"`
		Place       string `json:"place,omitempty"`
		Description string `json:"description,omitempty"`
		Notes       string `json:"notes,omitempty"`
	}

	// DonationEntry is one row of the furusato-nozei sub-ledger. It has no
	// persisted link to the expense record it may have been derived from;
	// correspondence is re-derived through the (Year, Amount, Item,
	// Applicant) tuple.
	DonationEntry struct {
		ID               string `json:"id"`
		Year             string `json:"year"`
		Amount           int64  `json:"amount"`
		Item             string `json:"item"`
		Applicant        string `json:"applicant"`
		Municipality     string `json:"municipality,omitempty"`
		ItemReceived     bool   `json:"itemReceived"`
		DocumentReceived bool   `json:"documentReceived"`
	}

	// Report is a saved filter preset.
	Report struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
		Year      string    `json:"year,omitempty"`
		Month     string    `json:"month,omitempty"`
		Category  string    `json:"category,omitempty"`
		Keyword   string    `json:"keyword,omitempty"`
	}

	// MonthlyMemo holds free-text notes attached to one calendar month.
	MonthlyMemo struct {
		Events string `json:"events,omitempty"`
		Plans  string `json:"plans,omitempty"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date in YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// YearMonth returns the YYYY-MM prefix of the date.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// IsDonation reports whether the record's subcategory carries the
// furusato-nozei marker.
func (r Record) IsDonation() bool {
	return strings.Contains(r.Subcategory, DonationMarker)
}

func (e DonationEntry) Validate() error {
	if strings.TrimSpace(e.Year) == "" {
		return errors.New("empty year")
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DonationKey is the natural key used to match donation entries against
// expense-derived candidates. It is a comparable struct on purpose:
// free-text field values can never collide the way a separator-joined
// string could.
type DonationKey struct {
	Year      string
	Amount    int64
	Item      string
	Applicant string
}

// Key returns the entry's 4-tuple matching key.
func (e DonationEntry) Key() DonationKey {
	return DonationKey{Year: e.Year, Amount: e.Amount, Item: e.Item, Applicant: e.Applicant}
}

// DeriveDonation maps a donation-flagged expense record to the donation
// entry it materializes. Municipality starts empty and is owned by the
// user afterwards; the fulfillment flags are never derived.
func DeriveDonation(r Record) DonationEntry {
	item := strings.TrimSpace(r.Description)
	if item == "" {
		item = NoItemSentinel
	}
	applicant := strings.TrimSpace(r.Place)
	if applicant == "" {
		applicant = UnknownApplicant
	}
	return DonationEntry{
		Year:      fmt.Sprintf("%d", r.Date.Year()),
		Amount:    r.Amount,
		Item:      item,
		Applicant: applicant,
	}
}
