package donation

import (
	"context"
	"testing"

	"github.com/mapcocoro/kakeiboApp/internal/core"
)

func donationRecord(date, sub string, amount int64, place, desc string) core.Record {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Record{
		ID: "rec", Date: d, Category: "税金", Subcategory: sub,
		Amount: amount, Place: place, Description: desc,
	}
}

func newBridge(t *testing.T) (*Bridge, *Store, *int) {
	t.Helper()
	store := newTestStore(t)
	changes := 0
	b, err := NewBridge(store, WithChangeCallback(func() { changes++ }))
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	return b, store, &changes
}

func TestBridgeCreateDonation(t *testing.T) {
	b, store, changes := newBridge(t)
	ctx := context.Background()

	r := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, r); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}

	key := core.DonationKey{Year: "2024", Amount: 10000, Item: "米", Applicant: "X市"}
	if _, ok := store.FindByKey(key); !ok {
		t.Fatal("no entry mirrored")
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d", store.Len())
	}
	if *changes != 1 {
		t.Fatalf("changes = %d", *changes)
	}
}

func TestBridgeCreateNonDonation(t *testing.T) {
	b, store, changes := newBridge(t)
	ctx := context.Background()

	r := donationRecord("2024-04-01", "固定資産税", 80000, "市役所", "")
	if err := b.RecordAdded(ctx, r); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}
	if store.Len() != 0 || *changes != 0 {
		t.Fatalf("non-donation mirrored: len=%d changes=%d", store.Len(), *changes)
	}
}

func TestBridgeRepeatedAddNoDuplicate(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	r := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	for i := 0; i < 3; i++ {
		if err := b.RecordAdded(ctx, r); err != nil {
			t.Fatalf("RecordAdded %d: %v", i, err)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, duplicates created", store.Len())
	}
}

func TestBridgeUpdateUnflagsRemovesEntry(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	old := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, old); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}

	updated := old
	updated.Subcategory = "固定資産税"
	if err := b.RecordUpdated(ctx, old, updated); err != nil {
		t.Fatalf("RecordUpdated: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("entry remains after unflag: len=%d", store.Len())
	}
}

func TestBridgeUpdateFlagsCreatesEntry(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	old := donationRecord("2024-04-01", "固定資産税", 10000, "X市", "米")
	updated := old
	updated.Subcategory = "ふるさと納税"
	if err := b.RecordUpdated(ctx, old, updated); err != nil {
		t.Fatalf("RecordUpdated: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d", store.Len())
	}
}

func TestBridgeUpdateKeyFieldMovesEntry(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	old := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, old); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}

	updated := old
	updated.Amount = 15000
	if err := b.RecordUpdated(ctx, old, updated); err != nil {
		t.Fatalf("RecordUpdated: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("len = %d", store.Len())
	}
	oldKey := core.DonationKey{Year: "2024", Amount: 10000, Item: "米", Applicant: "X市"}
	newKey := core.DonationKey{Year: "2024", Amount: 15000, Item: "米", Applicant: "X市"}
	if _, ok := store.FindByKey(oldKey); ok {
		t.Fatal("stale entry for old amount remains")
	}
	if _, ok := store.FindByKey(newKey); !ok {
		t.Fatal("no entry for new amount")
	}
}

func TestBridgeUpdateNonKeyFieldKeepsUserEdits(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	old := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, old); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}

	// User fills in the municipality on the mirrored entry.
	mirrored := store.All()[0]
	muni := "X市中央区"
	if _, _, err := store.Update(ctx, mirrored.ID, Patch{Municipality: &muni}); err != nil {
		t.Fatalf("update entry: %v", err)
	}

	// An expense edit that leaves the derived key alone must not
	// recreate the entry.
	updated := old
	updated.Notes = "ワンストップ申請済"
	if err := b.RecordUpdated(ctx, old, updated); err != nil {
		t.Fatalf("RecordUpdated: %v", err)
	}

	entries := store.All()
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].Municipality != muni {
		t.Fatalf("municipality lost: %+v", entries[0])
	}
}

func TestBridgeDelete(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	r := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, r); err != nil {
		t.Fatalf("RecordAdded: %v", err)
	}
	if err := b.RecordDeleted(ctx, r); err != nil {
		t.Fatalf("RecordDeleted: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("len = %d", store.Len())
	}

	// Deleting a never-flagged record leaves the ledger alone.
	other := donationRecord("2024-05-01", "食品", 500, "スーパー", "")
	if err := b.RecordDeleted(ctx, other); err != nil {
		t.Fatalf("RecordDeleted non-donation: %v", err)
	}
}

func TestBridgeNilStoreSkips(t *testing.T) {
	b, err := NewBridge(nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	ctx := context.Background()

	r := donationRecord("2024-04-01", "ふるさと納税", 10000, "X市", "米")
	if err := b.RecordAdded(ctx, r); err != nil {
		t.Fatalf("RecordAdded must skip, got %v", err)
	}
	if err := b.RecordUpdated(ctx, r, r); err != nil {
		t.Fatalf("RecordUpdated must skip, got %v", err)
	}
	if err := b.RecordDeleted(ctx, r); err != nil {
		t.Fatalf("RecordDeleted must skip, got %v", err)
	}
}

func TestBridgeRequiredStore(t *testing.T) {
	if _, err := NewBridge(nil, WithRequiredStore()); err == nil {
		t.Fatal("expected construction error for nil store")
	}
	store := newTestStore(t)
	if _, err := NewBridge(store, WithRequiredStore()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBridgeDistinctTupleInvariant(t *testing.T) {
	b, store, _ := newBridge(t)
	ctx := context.Background()

	// Several flagged records, two of them sharing a derived tuple.
	records := []core.Record{
		donationRecord("2024-01-10", "ふるさと納税", 10000, "X市", "米"),
		donationRecord("2024-02-11", "ふるさと納税", 10000, "X市", "米"), // same tuple
		donationRecord("2024-03-12", "ふるさと納税", 8000, "Y町", "蟹"),
	}
	for _, r := range records {
		if err := b.RecordAdded(ctx, r); err != nil {
			t.Fatalf("RecordAdded: %v", err)
		}
	}

	// At most one entry per distinct tuple among flagged records.
	keys := make(map[core.DonationKey]int)
	for _, e := range store.All() {
		keys[e.Key()]++
	}
	for k, n := range keys {
		if n > 1 {
			t.Fatalf("tuple %+v mirrored %d times", k, n)
		}
	}
	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2 distinct tuples", store.Len())
	}
}
