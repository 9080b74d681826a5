// Package donation holds the furusato-nozei sub-ledger and the bridge
// that keeps it in step with the expense ledger.
package donation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

// Store is the donation entry collection, persisted like the expense
// ledger: one snapshot per mutation.
type Store struct {
	mu        sync.Mutex
	snapshots storage.Store
	entries   []core.DonationEntry
	byID      map[string]int
}

// Patch carries a partial donation entry update. Nil fields stay
// untouched. Municipality and the fulfillment flags are the fields
// users normally edit; the key fields are editable too since the
// sub-ledger is an independent collection.
type Patch struct {
	Year             *string
	Amount           *int64
	Item             *string
	Applicant        *string
	Municipality     *string
	ItemReceived     *bool
	DocumentReceived *bool
}

func (p Patch) apply(e *core.DonationEntry) {
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Item != nil {
		e.Item = *p.Item
	}
	if p.Applicant != nil {
		e.Applicant = *p.Applicant
	}
	if p.Municipality != nil {
		e.Municipality = *p.Municipality
	}
	if p.ItemReceived != nil {
		e.ItemReceived = *p.ItemReceived
	}
	if p.DocumentReceived != nil {
		e.DocumentReceived = *p.DocumentReceived
	}
}

// NewStore loads the persisted donation entries.
func NewStore(ctx context.Context, snapshots storage.Store) (*Store, error) {
	s := &Store{
		snapshots: snapshots,
		byID:      make(map[string]int),
	}

	raw, err := snapshots.Get(ctx, storage.KeyDonationEntries)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return s, nil
		}
		return nil, fmt.Errorf("load donation entries: %w", err)
	}
	if err := json.Unmarshal(raw, &s.entries); err != nil {
		return nil, fmt.Errorf("decode donation entries: %w", err)
	}
	for i, e := range s.entries {
		s.byID[e.ID] = i
	}

	slog.InfoContext(ctx, "Donation entries loaded", "count", len(s.entries))
	return s, nil
}

// Add appends an entry under a fresh id and persists.
func (s *Store) Add(ctx context.Context, e core.DonationEntry) (core.DonationEntry, error) {
	if err := e.Validate(); err != nil {
		return core.DonationEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	s.entries = append(s.entries, e)
	s.byID[e.ID] = len(s.entries) - 1

	if err := s.persist(ctx); err != nil {
		return core.DonationEntry{}, err
	}
	return e, nil
}

// AddIfAbsent adds the entry only when no existing entry shares its
// 4-tuple key. Reports whether an entry was added.
func (s *Store) AddIfAbsent(ctx context.Context, e core.DonationEntry) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Key()
	for _, existing := range s.entries {
		if existing.Key() == key {
			return false, nil
		}
	}

	e.ID = uuid.NewString()
	s.entries = append(s.entries, e)
	s.byID[e.ID] = len(s.entries) - 1

	if err := s.persist(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Update merges the patch into the entry at id.
func (s *Store) Update(ctx context.Context, id string, p Patch) (core.DonationEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return core.DonationEntry{}, false, nil
	}

	updated := s.entries[i]
	p.apply(&updated)
	if err := updated.Validate(); err != nil {
		return core.DonationEntry{}, true, err
	}
	s.entries[i] = updated

	if err := s.persist(ctx); err != nil {
		return core.DonationEntry{}, true, err
	}
	return updated, true, nil
}

// Delete removes the entry at id, reporting false for an unknown id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	s.removeAt(i)

	if err := s.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// RemoveByKey removes the first entry (in insertion order) whose
// 4-tuple matches. When several entries genuinely share a key there is
// nothing to disambiguate them by, so only the first goes; this is a
// known limitation carried over from the original design.
func (s *Store) RemoveByKey(ctx context.Context, key core.DonationKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Key() == key {
			s.removeAt(i)
			if err := s.persist(ctx); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

// FindByKey returns the first entry matching the 4-tuple.
func (s *Store) FindByKey(key core.DonationKey) (core.DonationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Key() == key {
			return e, true
		}
	}
	return core.DonationEntry{}, false
}

// All returns a copy of every entry in insertion order.
func (s *Store) All() []core.DonationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.DonationEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// removeAt drops the entry at index i. Callers must hold s.mu.
func (s *Store) removeAt(i int) {
	delete(s.byID, s.entries[i].ID)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	for j := i; j < len(s.entries); j++ {
		s.byID[s.entries[j].ID] = j
	}
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode donation entries: %w", err)
	}
	if err := s.snapshots.Put(ctx, storage.KeyDonationEntries, raw); err != nil {
		return fmt.Errorf("persist donation entries: %w", err)
	}
	return nil
}
