// Package services orchestrates expense mutations across the record
// store and the donation sync bridge.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/dedup"
	"github.com/mapcocoro/kakeiboApp/internal/donation"
	"github.com/mapcocoro/kakeiboApp/internal/ledger"
)

// LedgerService routes every expense mutation through the store first
// and the donation bridge second. Bridge failures are logged and
// swallowed: the expense mutation must never fail because the donation
// sub-ledger misbehaved.
type LedgerService struct {
	records *ledger.Store
	bridge  *donation.Bridge
}

func NewLedgerService(records *ledger.Store, bridge *donation.Bridge) *LedgerService {
	return &LedgerService{
		records: records,
		bridge:  bridge,
	}
}

// Records exposes the underlying record store for read-only callers.
func (s *LedgerService) Records() *ledger.Store {
	return s.records
}

// Create stores a new expense and mirrors it into the donation ledger
// when flagged.
func (s *LedgerService) Create(ctx context.Context, r core.Record) (core.Record, error) {
	stored, err := s.records.Add(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.bridge.RecordAdded(ctx, stored); err != nil {
		slog.ErrorContext(ctx, "Donation sync failed after create",
			"id", stored.ID, "error", err)
	}
	return stored, nil
}

// CreateBatch stores all records with a single persist, then runs the
// bridge over each stored record. All records are accumulated before
// anything is written, so a failed persist leaves no partial batch
// behind.
func (s *LedgerService) CreateBatch(ctx context.Context, records []core.Record) ([]core.Record, error) {
	stored, err := s.records.AddBatch(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("save expense batch: %w", err)
	}

	for _, r := range stored {
		if err := s.bridge.RecordAdded(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Donation sync failed during batch",
				"id", r.ID, "error", err)
		}
	}
	return stored, nil
}

// Update patches the record at id. The pre-update snapshot feeds the
// bridge so flag transitions and key-field edits propagate.
func (s *LedgerService) Update(ctx context.Context, id string, p ledger.Patch) (core.Record, bool, error) {
	old, ok := s.records.Get(id)
	if !ok {
		return core.Record{}, false, nil
	}

	updated, found, err := s.records.Update(ctx, id, p)
	if err != nil || !found {
		return core.Record{}, found, err
	}

	if err := s.bridge.RecordUpdated(ctx, old, updated); err != nil {
		slog.ErrorContext(ctx, "Donation sync failed after update",
			"id", id, "error", err)
	}
	return updated, true, nil
}

// Delete removes the record at id and un-mirrors its donation entry if
// it had one.
func (s *LedgerService) Delete(ctx context.Context, id string) (bool, error) {
	old, ok := s.records.Get(id)
	if !ok {
		return false, nil
	}

	found, err := s.records.Delete(ctx, id)
	if err != nil || !found {
		return found, err
	}

	if err := s.bridge.RecordDeleted(ctx, old); err != nil {
		slog.ErrorContext(ctx, "Donation sync failed after delete",
			"id", id, "error", err)
	}
	return true, nil
}

// RemoveDuplicates collapses duplicate groups in the expense ledger.
// Removed duplicates are mirror-identical to the kept record, so their
// donation entries (one per distinct tuple at most) stay put; the
// bridge is not involved.
func (s *LedgerService) RemoveDuplicates(ctx context.Context) (dedup.Result, error) {
	return dedup.RemoveDuplicates(ctx, s.records)
}

// DuplicateGroups scans the ledger without changing it.
func (s *LedgerService) DuplicateGroups() []dedup.Group {
	return dedup.FindDuplicateGroups(s.records.All())
}
