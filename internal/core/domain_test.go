package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-04-01", true},
		{"2024-12-31", true},
		{" 2024-01-05 ", true},
		{"2024-13-01", false},
		{"2024/04/01", false},
		{"", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if tc.ok && d.Validate() != nil {
			t.Fatalf("case %d parsed date fails validation", i)
		}
	}
}

func TestDateYearMonth(t *testing.T) {
	d := NewDate(2024, 4, 1)
	if d.ISO() != "2024-04-01" {
		t.Fatalf("ISO = %q", d.ISO())
	}
	if d.YearMonth() != "2024-04" {
		t.Fatalf("YearMonth = %q", d.YearMonth())
	}
}

func TestDateJSONRoundtrip(t *testing.T) {
	r := Record{ID: "x", Date: NewDate(2024, 4, 1), Category: "食品", Amount: 500}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Date.ISO() != "2024-04-01" {
		t.Fatalf("date roundtrip = %q", back.Date.ISO())
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Date:     NewDate(2024, 4, 1),
		Category: "食品",
		Amount:   500,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Description is unbounded free text; length never invalidates a
	// record.
	long := good
	long.Description = strings.Repeat("あ", 2000)
	if err := long.Validate(); err != nil {
		t.Fatalf("long description: expected ok, got %v", err)
	}

	bads := []Record{
		{Date: Date{Time: time.Time{}}, Category: "食品", Amount: 1},
		{Date: NewDate(2024, 4, 1), Category: "", Amount: 1},
		{Date: NewDate(2024, 4, 1), Category: "食品", Amount: -1},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// Zero amount is legal: free items happen.
	free := Record{Date: NewDate(2024, 4, 1), Category: "食品", Amount: 0}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}
}

func TestIsDonation(t *testing.T) {
	cases := []struct {
		sub  string
		want bool
	}{
		{"ふるさと納税", true},
		{"ふるさと納税（ワンストップ）", true},
		{"固定資産税", false},
		{"", false},
	}
	for i, tc := range cases {
		r := Record{Subcategory: tc.sub}
		if r.IsDonation() != tc.want {
			t.Fatalf("case %d IsDonation(%q) = %v", i, tc.sub, r.IsDonation())
		}
	}
}

func TestDeriveDonation(t *testing.T) {
	r := Record{
		Date:        NewDate(2024, 4, 1),
		Category:    "税金",
		Subcategory: "ふるさと納税",
		Amount:      10000,
		Place:       "X市",
		Description: "米",
	}
	e := DeriveDonation(r)
	want := DonationKey{Year: "2024", Amount: 10000, Item: "米", Applicant: "X市"}
	if e.Key() != want {
		t.Fatalf("derived key = %+v", e.Key())
	}
	if e.Municipality != "" || e.ItemReceived || e.DocumentReceived {
		t.Fatalf("derived entry must not populate user-owned fields: %+v", e)
	}
}

func TestDeriveDonationSentinels(t *testing.T) {
	r := Record{Date: NewDate(2023, 12, 30), Subcategory: "ふるさと納税", Amount: 5000}
	e := DeriveDonation(r)
	if e.Item != NoItemSentinel {
		t.Fatalf("item sentinel = %q", e.Item)
	}
	if e.Applicant != UnknownApplicant {
		t.Fatalf("applicant sentinel = %q", e.Applicant)
	}
	if e.Year != "2023" {
		t.Fatalf("year = %q", e.Year)
	}
}
