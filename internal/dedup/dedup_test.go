package dedup

import (
	"context"
	"reflect"
	"testing"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/ledger"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

func rec(id, date, category, sub string, amount int64, place, desc string) core.Record {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Record{
		ID: id, Date: d, Category: category, Subcategory: sub,
		Amount: amount, Place: place, Description: desc,
	}
}

func TestIsDuplicateOf(t *testing.T) {
	a := rec("a", "2024-04-01", "食品", "", 500, "スーパー", "米")
	cases := []struct {
		b    core.Record
		want bool
	}{
		{rec("b", "2024-04-01", "食品", "", 500, "スーパー", "米"), true},
		{rec("b", "2024-04-02", "食品", "", 500, "スーパー", "米"), false},
		{rec("b", "2024-04-01", "食品", "", 501, "スーパー", "米"), false},
		{rec("b", "2024-04-01", "食品", "野菜", 500, "スーパー", "米"), false},
	}
	for i, tc := range cases {
		if got := IsDuplicateOf(tc.b, a); got != tc.want {
			t.Fatalf("case %d IsDuplicateOf = %v", i, got)
		}
	}
}

func TestKeyNoSeparatorCollision(t *testing.T) {
	// Joined-string keys would confuse these two; structural keys must not.
	a := rec("a", "2024-04-01", "食品", "", 500, "X|Y", "Z")
	b := rec("b", "2024-04-01", "食品", "", 500, "X", "Y|Z")
	if IsDuplicateOf(a, b) {
		t.Fatal("records with shifted field boundaries matched")
	}
}

func TestFindDuplicateGroups(t *testing.T) {
	records := []core.Record{
		rec("r1", "2024-04-01", "食品", "", 500, "A", "x"),
		rec("r2", "2024-04-02", "日用品", "", 300, "B", "y"),
		rec("r3", "2024-04-01", "食品", "", 500, "A", "x"), // dup of r1
		rec("r4", "2024-04-02", "日用品", "", 300, "B", "y"), // dup of r2
		rec("r5", "2024-04-01", "食品", "", 500, "A", "x"), // dup of r1
	}

	groups := FindDuplicateGroups(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups", len(groups))
	}
	if !reflect.DeepEqual(groups[0].IDs, []string{"r1", "r3", "r5"}) {
		t.Fatalf("group 0 ids = %v", groups[0].IDs)
	}
	if !reflect.DeepEqual(groups[1].IDs, []string{"r2", "r4"}) {
		t.Fatalf("group 1 ids = %v", groups[1].IDs)
	}

	// Idempotent and deterministic.
	again := FindDuplicateGroups(records)
	if !reflect.DeepEqual(groups, again) {
		t.Fatal("second scan yielded different groups")
	}
}

func TestFindDuplicateGroupsNone(t *testing.T) {
	records := []core.Record{
		rec("r1", "2024-04-01", "食品", "", 500, "A", "x"),
		rec("r2", "2024-04-02", "食品", "", 500, "A", "x"),
	}
	if groups := FindDuplicateGroups(records); len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", groups)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	ctx := context.Background()
	store, err := ledger.New(ctx, storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}

	base := rec("", "2024-04-01", "食品", "", 500, "A", "x")
	first, err := store.Add(ctx, base)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := store.Add(ctx, base); err != nil {
			t.Fatalf("add dup: %v", err)
		}
	}
	if _, err := store.Add(ctx, rec("", "2024-04-02", "日用品", "", 300, "B", "y")); err != nil {
		t.Fatalf("add distinct: %v", err)
	}

	res, err := RemoveDuplicates(ctx, store)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if res.Groups != 1 || res.Removed != 2 {
		t.Fatalf("result = %+v", res)
	}

	// The earliest-inserted member survives.
	if _, ok := store.Get(first.ID); !ok {
		t.Fatal("earliest record removed")
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d records", store.Len())
	}

	// A second run finds nothing.
	res, err = RemoveDuplicates(ctx, store)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Groups != 0 || res.Removed != 0 {
		t.Fatalf("second run result = %+v", res)
	}
}
