package donation

import (
	"context"
	"testing"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func entry(year string, amount int64, item, applicant string) core.DonationEntry {
	return core.DonationEntry{Year: year, Amount: amount, Item: item, Applicant: applicant}
}

func TestAddIfAbsentSuppressesDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddIfAbsent(ctx, entry("2024", 10000, "米", "X市"))
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = s.AddIfAbsent(ctx, entry("2024", 10000, "米", "X市"))
	if err != nil || added {
		t.Fatalf("duplicate add: added=%v err=%v", added, err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}

	// A different key is not a duplicate.
	added, err = s.AddIfAbsent(ctx, entry("2024", 10000, "肉", "X市"))
	if err != nil || !added {
		t.Fatalf("distinct add: added=%v err=%v", added, err)
	}
}

func TestRemoveByKeyFirstMatchOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Two genuinely identical donations in one year, added directly.
	first, err := s.Add(ctx, entry("2024", 5000, "蟹", "Y町"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.Add(ctx, entry("2024", 5000, "蟹", "Y町"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	removed, err := s.RemoveByKey(ctx, first.Key())
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	// The first inserted entry goes; the second stays.
	if _, ok := s.FindByKey(second.Key()); !ok {
		t.Fatal("both entries removed")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}

	removed, err = s.RemoveByKey(ctx, core.DonationKey{Year: "1999", Amount: 1, Item: "x", Applicant: "y"})
	if err != nil || removed {
		t.Fatalf("remove missing: removed=%v err=%v", removed, err)
	}
}

func TestUpdatePreservesUnpatchedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.Add(ctx, entry("2024", 10000, "米", "X市"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	muni := "X市△△区"
	received := true
	updated, found, err := s.Update(ctx, e.ID, Patch{Municipality: &muni, ItemReceived: &received})
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}
	if updated.Municipality != muni || !updated.ItemReceived {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.Item != "米" || updated.DocumentReceived {
		t.Fatalf("unpatched fields changed: %+v", updated)
	}

	_, found, err = s.Update(ctx, "missing", Patch{})
	if err != nil || found {
		t.Fatalf("update missing: found=%v err=%v", found, err)
	}
}

func TestStoreReload(t *testing.T) {
	snap := storage.NewMemoryStore()
	ctx := context.Background()

	s, err := NewStore(ctx, snap)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Add(ctx, entry("2024", 10000, "米", "X市")); err != nil {
		t.Fatalf("add: %v", err)
	}

	s2, err := NewStore(ctx, snap)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s2.Len() != 1 {
		t.Fatalf("len after reload = %d", s2.Len())
	}
	if _, ok := s2.FindByKey(core.DonationKey{Year: "2024", Amount: 10000, Item: "米", Applicant: "X市"}); !ok {
		t.Fatal("entry lost across reload")
	}
}
