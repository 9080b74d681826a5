// Package ledger owns the expense record collection: identity
// assignment, CRUD primitives, and synchronous snapshot persistence.
package ledger

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

// Store holds the expense records in memory and writes the whole
// collection to the snapshot store after every successful mutation.
// There is exactly one logical writer; the mutex only guards against
// overlapping HTTP handlers.
type Store struct {
	mu        sync.Mutex
	snapshots storage.Store
	records   []core.Record
	byID      map[string]int
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Date        *core.Date
	Category    *string
	Subcategory *string
	Amount      *int64
	Place       *string
	Description *string
	Notes       *string
}

func (p Patch) apply(r *core.Record) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Subcategory != nil {
		r.Subcategory = *p.Subcategory
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Place != nil {
		r.Place = *p.Place
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

// New loads the persisted record collection, starting empty when no
// snapshot exists yet.
func New(ctx context.Context, snapshots storage.Store) (*Store, error) {
	s := &Store{
		snapshots: snapshots,
		byID:      make(map[string]int),
	}

	raw, err := snapshots.Get(ctx, storage.KeyExpenseRecords)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			return s, nil
		}
		return nil, fmt.Errorf("load expense records: %w", err)
	}
	if err := json.Unmarshal(raw, &s.records); err != nil {
		return nil, fmt.Errorf("decode expense records: %w", err)
	}
	for i, r := range s.records {
		s.byID[r.ID] = i
	}

	slog.InfoContext(ctx, "Expense records loaded", "count", len(s.records))
	return s, nil
}

// Add assigns a fresh id, appends the record, and persists. The stored
// record is returned with its id populated. UUIDs make id collision
// structurally impossible, however fast callers add.
func (s *Store) Add(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	s.records = append(s.records, r)
	s.byID[r.ID] = len(s.records) - 1

	if err := s.persist(ctx); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// AddBatch inserts every record with its own fresh id, then persists
// exactly once. The final collection is identical to sequential Add
// calls without paying a serialization per record.
func (s *Store) AddBatch(ctx context.Context, records []core.Record) ([]core.Record, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]core.Record, len(records))
	for i, r := range records {
		r.ID = uuid.NewString()
		s.records = append(s.records, r)
		s.byID[r.ID] = len(s.records) - 1
		stored[i] = r
	}

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

// Update merges non-nil patch fields into the record at id. The second
// return value is false when id is unknown; that is an expected
// outcome, not an error.
func (s *Store) Update(ctx context.Context, id string, p Patch) (core.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return core.Record{}, false, nil
	}

	updated := s.records[i]
	p.apply(&updated)
	if err := updated.Validate(); err != nil {
		return core.Record{}, true, err
	}
	s.records[i] = updated

	if err := s.persist(ctx); err != nil {
		return core.Record{}, true, err
	}
	return updated, true, nil
}

// Delete removes the record at id, reporting false for an unknown id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false, nil
	}

	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.byID, id)
	for j := i; j < len(s.records); j++ {
		s.byID[s.records[j].ID] = j
	}

	if err := s.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Get returns the record at id.
func (s *Store) Get(id string) (core.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return core.Record{}, false
	}
	return s.records[i], true
}

// All returns a copy of every record in insertion order. Mutating the
// returned slice never touches the store.
func (s *Store) All() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// ByMonth returns the records dated in the given calendar month.
func (s *Store) ByMonth(year, month int) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Record
	for _, r := range s.records {
		if r.Date.Year() == year && r.Date.Month() == month {
			out = append(out, r)
		}
	}
	return out
}

// ByYear returns the records dated in the given calendar year.
func (s *Store) ByYear(year int) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Record
	for _, r := range s.records {
		if r.Date.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persist writes the whole collection synchronously. A failed write
// leaves memory ahead of the snapshot until the next successful save;
// the error (quota errors included) reaches the mutating caller.
// Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("encode expense records: %w", err)
	}
	if err := s.snapshots.Put(ctx, storage.KeyExpenseRecords, raw); err != nil {
		return fmt.Errorf("persist expense records: %w", err)
	}
	return nil
}
