// Package backend assembles the application's stores from configuration:
// snapshot storage, expense ledger, donation sub-ledger, sync bridge,
// and the orchestrating service. Everything is wired explicitly here;
// nothing looks collaborators up at runtime.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mapcocoro/kakeiboApp/internal/config"
	"github.com/mapcocoro/kakeiboApp/internal/donation"
	"github.com/mapcocoro/kakeiboApp/internal/ledger"
	"github.com/mapcocoro/kakeiboApp/internal/report"
	"github.com/mapcocoro/kakeiboApp/internal/services"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

// Result bundles the wired application graph.
type Result struct {
	Snapshots storage.Store
	Records   *ledger.Store
	Donations *donation.Store
	Bridge    *donation.Bridge
	Service   *services.LedgerService
	Reports   *report.Store

	// Cleanup releases the snapshot store. Always non-nil.
	Cleanup func() error
}

// Build constructs the full store graph for the configured backend.
// bridgeOpts lets callers hang a change callback on the donation
// bridge.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, bridgeOpts ...donation.Option) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	snapshots, err := openSnapshots(cfg)
	if err != nil {
		return nil, err
	}

	records, err := ledger.New(ctx, snapshots)
	if err != nil {
		snapshots.Close()
		return nil, fmt.Errorf("initialize expense ledger: %w", err)
	}

	// The donation store is an optional collaborator: with sync disabled
	// the bridge gets no store and skips, and expense mutations proceed
	// untouched.
	var donations *donation.Store
	if cfg.DonationSyncEnabled {
		donations, err = donation.NewStore(ctx, snapshots)
		if err != nil {
			snapshots.Close()
			return nil, fmt.Errorf("initialize donation ledger: %w", err)
		}
	} else {
		logger.Warn("Donation sync disabled, donation ledger will not mirror expenses")
	}

	bridge, err := donation.NewBridge(donations, bridgeOpts...)
	if err != nil {
		snapshots.Close()
		return nil, fmt.Errorf("initialize donation bridge: %w", err)
	}

	reports, err := report.NewStore(ctx, snapshots)
	if err != nil {
		snapshots.Close()
		return nil, fmt.Errorf("initialize report store: %w", err)
	}

	logger.Info("Backend initialized",
		"backend", cfg.DataBackend,
		"records", records.Len(),
		"donation_sync", cfg.DonationSyncEnabled)

	return &Result{
		Snapshots: snapshots,
		Records:   records,
		Donations: donations,
		Bridge:    bridge,
		Service:   services.NewLedgerService(records, bridge),
		Reports:   reports,
		Cleanup:   snapshots.Close,
	}, nil
}

func openSnapshots(cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.SQLiteDBPath, storage.WithQuota(cfg.QuotaBytes))
		if err != nil {
			return nil, fmt.Errorf("open sqlite snapshot store: %w", err)
		}
		return s, nil
	case "memory":
		return storage.NewMemoryStore(storage.WithMemoryQuota(cfg.QuotaBytes)), nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
