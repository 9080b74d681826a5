package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mapcocoro/kakeiboApp/internal/cli"
	"github.com/mapcocoro/kakeiboApp/internal/core"
	"github.com/mapcocoro/kakeiboApp/internal/csvio"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
	"github.com/mapcocoro/kakeiboApp/internal/storage"
)

func main() {
	file := flag.String("file", "", "CSV file to import (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: kakeibo-import -file <path.csv> [-dry-run]")
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("Failed to open CSV file", "error", err, "file", *file)
		os.Exit(1)
	}
	defer f.Close()

	result, err := csvio.Parse(f)
	if err != nil {
		logger.Error("CSV parse failed", "error", err, "file", *file)
		os.Exit(1)
	}

	for _, re := range result.RowErrors {
		logger.Warn("Skipped row", "line", re.Line, "reason", re.Reason)
	}
	logger.Info("CSV parsed",
		"file", *file,
		"rows", len(result.Records),
		"skipped", result.Skipped)

	if *dryRun {
		fmt.Printf("dry run: %d rows parsed, %d skipped\n", len(result.Records), result.Skipped)
		return
	}

	ctx := context.Background()
	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Snapshot store close error", "error", err)
		}
	}()

	if err := validateAll(result.Records, cfg.ImportChunkSize, logger); err != nil {
		logger.Error("Import aborted before write", "error", err)
		os.Exit(1)
	}

	// One batch, one persist. A failure here leaves no partial batch
	// in the snapshot.
	created, err := backend.Service.CreateBatch(ctx, result.Records)
	if err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			fmt.Fprintln(os.Stderr, "保存容量が上限に達しました。古いデータを削除するか、インポートを分割してください。")
			os.Exit(1)
		}
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("imported %d records (%d rows skipped)\n", len(created), result.Skipped)
}

// validateAll checks every record before anything is written, logging
// progress every chunkSize rows so long imports stay observable.
func validateAll(records []core.Record, chunkSize int, logger *applog.Logger) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if (i+1)%chunkSize == 0 {
			logger.Info("Validation progress", "checked", i+1, "total", len(records))
		}
	}
	return nil
}
