// Package dedup detects and collapses duplicate expense records.
//
// Two records are duplicates when their natural key matches: the full
// (date, category, subcategory, amount, place, description) tuple. The
// key is a comparable struct rather than a joined string, so field
// values containing any separator text can never produce a false match.
package dedup

import (
	"context"
	"fmt"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/ledger"
)

// Key is the natural key of an expense record.
type Key struct {
	Date        string
	Category    string
	Subcategory string
	Amount      int64
	Place       string
	Description string
}

// KeyOf computes the record's natural key. Empty optional fields count
// as empty strings, so records differing only in omission still match.
func KeyOf(r core.Record) Key {
	return Key{
		Date:        r.Date.ISO(),
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Amount:      r.Amount,
		Place:       r.Place,
		Description: r.Description,
	}
}

// IsDuplicateOf reports whether candidate and existing share a natural
// key.
func IsDuplicateOf(candidate, existing core.Record) bool {
	return KeyOf(candidate) == KeyOf(existing)
}

// Group is a set of records sharing one natural key, in first-seen
// order. IDs always holds two or more members.
type Group struct {
	Key Key
	IDs []string
}

// FindDuplicateGroups scans records left to right and groups the ones
// sharing a natural key. Group order follows the first occurrence of
// each key; member order preserves encounter order. The result is
// deterministic: the same input always yields the same groups.
func FindDuplicateGroups(records []core.Record) []Group {
	firstSeen := make(map[Key]int)
	var order []Key
	members := make(map[Key][]string)

	for _, r := range records {
		k := KeyOf(r)
		if _, ok := firstSeen[k]; !ok {
			firstSeen[k] = len(order)
			order = append(order, k)
		}
		members[k] = append(members[k], r.ID)
	}

	var groups []Group
	for _, k := range order {
		if ids := members[k]; len(ids) >= 2 {
			groups = append(groups, Group{Key: k, IDs: ids})
		}
	}
	return groups
}

// Result reports what RemoveDuplicates did.
type Result struct {
	Groups  int
	Removed int
}

// RemoveDuplicates deletes every duplicate except the earliest-inserted
// member of each group. Running it again afterwards finds nothing.
func RemoveDuplicates(ctx context.Context, store *ledger.Store) (Result, error) {
	groups := FindDuplicateGroups(store.All())

	var res Result
	for _, g := range groups {
		res.Groups++
		for _, id := range g.IDs[1:] {
			found, err := store.Delete(ctx, id)
			if err != nil {
				return res, fmt.Errorf("remove duplicate %s: %w", id, err)
			}
			if found {
				res.Removed++
			}
		}
	}
	return res, nil
}
