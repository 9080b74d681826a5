// Package storage persists the ledger's state as serialized snapshots.
//
// Each logical collection (expense records, donation entries, saved
// reports, memos, UI state) lives under one well-known key and is
// written as a single serialized value, so a collection is always
// persisted atomically: readers never observe a half-written batch.
package storage

import (
	"context"
	"errors"
)

// Well-known snapshot keys.
const (
	KeyExpenseRecords  = "expense_records"
	KeyDonationEntries = "donation_entries"
	KeySavedReports    = "saved_reports"
	KeyMonthlyMemos    = "monthly_memos"
	KeyYearlyMemos     = "yearly_memos"
	KeyUIState         = "ui_state"
)

var (
	// ErrKeyNotFound is returned by Get for a key that was never written.
	ErrKeyNotFound = errors.New("snapshot key not found")

	// ErrQuotaExceeded is returned by Put when a snapshot would exceed
	// the configured capacity. Callers treat it differently from other
	// persistence failures: the user is told to delete old data or split
	// the import.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is the snapshot persistence port.
type Store interface {
	// Get returns the value last written under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value under key. A value larger than the store's
	// quota fails with ErrQuotaExceeded before anything is written.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
