package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mapcocoro/kakeiboApp/internal/core"
)

// ErrStoreUnavailable is returned at construction when the bridge is
// configured to require a donation store and none was supplied.
var ErrStoreUnavailable = errors.New("donation store unavailable")

// Bridge mirrors donation-flagged expense mutations into the donation
// sub-ledger. It reads record snapshots handed to it by the caller and
// never holds references into the expense store.
//
// The bridge is an optional collaborator: with no store wired in it
// logs a warning and skips, so an expense mutation can never fail on
// the sub-ledger's account.
type Bridge struct {
	entries  *Store
	onChange func()
	skip     bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithChangeCallback registers a callback invoked after every actual
// add or remove on the donation ledger, so presentation code can
// refresh.
func WithChangeCallback(fn func()) Option {
	return func(b *Bridge) {
		b.onChange = fn
	}
}

// WithRequiredStore makes a missing donation store a construction
// error instead of the default skip-silently behavior.
func WithRequiredStore() Option {
	return func(b *Bridge) {
		b.skip = false
	}
}

// NewBridge wires the bridge to its donation store. entries may be nil
// unless WithRequiredStore is set.
func NewBridge(entries *Store, opts ...Option) (*Bridge, error) {
	b := &Bridge{entries: entries, skip: true}
	for _, opt := range opts {
		opt(b)
	}
	if b.entries == nil && !b.skip {
		return nil, ErrStoreUnavailable
	}
	return b, nil
}

// RecordAdded handles a freshly created expense record.
func (b *Bridge) RecordAdded(ctx context.Context, r core.Record) error {
	if !b.available(ctx) || !r.IsDonation() {
		return nil
	}
	return b.deriveAndAdd(ctx, r)
}

// RecordUpdated handles an in-place expense update given the record's
// pre-update and post-update state.
func (b *Bridge) RecordUpdated(ctx context.Context, old, updated core.Record) error {
	if !b.available(ctx) {
		return nil
	}

	oldFlagged := old.IsDonation()
	newFlagged := updated.IsDonation()

	switch {
	case !oldFlagged && !newFlagged:
		return nil

	case !oldFlagged && newFlagged:
		return b.deriveAndAdd(ctx, updated)

	case oldFlagged && !newFlagged:
		return b.removeDerived(ctx, old)

	default:
		oldKey := core.DeriveDonation(old).Key()
		newKey := core.DeriveDonation(updated).Key()
		if oldKey == newKey {
			// Key fields untouched: the existing entry still matches, and
			// replacing it would wipe the user's municipality and
			// fulfillment edits.
			return nil
		}
		if err := b.removeDerived(ctx, old); err != nil {
			return err
		}
		return b.deriveAndAdd(ctx, updated)
	}
}

// RecordDeleted handles an expense deletion given the record's
// pre-delete state.
func (b *Bridge) RecordDeleted(ctx context.Context, old core.Record) error {
	if !b.available(ctx) || !old.IsDonation() {
		return nil
	}
	return b.removeDerived(ctx, old)
}

func (b *Bridge) deriveAndAdd(ctx context.Context, r core.Record) error {
	entry := core.DeriveDonation(r)
	added, err := b.entries.AddIfAbsent(ctx, entry)
	if err != nil {
		return fmt.Errorf("mirror donation entry: %w", err)
	}
	if added {
		slog.InfoContext(ctx, "Donation entry mirrored from expense",
			"year", entry.Year,
			"amount", entry.Amount,
			"item", entry.Item,
			"applicant", entry.Applicant)
		b.notify()
	}
	return nil
}

func (b *Bridge) removeDerived(ctx context.Context, r core.Record) error {
	key := core.DeriveDonation(r).Key()
	removed, err := b.entries.RemoveByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("remove mirrored donation entry: %w", err)
	}
	if removed {
		slog.InfoContext(ctx, "Donation entry removed with expense",
			"year", key.Year,
			"amount", key.Amount,
			"item", key.Item,
			"applicant", key.Applicant)
		b.notify()
	}
	return nil
}

func (b *Bridge) available(ctx context.Context) bool {
	if b.entries != nil {
		return true
	}
	slog.WarnContext(ctx, "Donation store not available, skipping sync")
	return false
}

func (b *Bridge) notify() {
	if b.onChange != nil {
		b.onChange()
	}
}
