package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mapcocoro/kakeiboApp/internal/cli"
	"github.com/mapcocoro/kakeiboApp/internal/core"
	applog "github.com/mapcocoro/kakeiboApp/internal/log"
)

func main() {
	remove := flag.Bool("remove", false, "remove duplicates instead of just listing them")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(applog.ComponentDedup)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	backend := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Snapshot store close error", "error", err)
		}
	}()

	groups := backend.Service.DuplicateGroups()
	if len(groups) == 0 {
		fmt.Println("no duplicates found")
		return
	}

	for i, g := range groups {
		fmt.Printf("group %d: %s %s %s (%d records)\n",
			i+1, g.Key.Date, g.Key.Category, core.FormatYen(g.Key.Amount), len(g.IDs))
	}

	if !*remove {
		fmt.Printf("%d duplicate groups found; run with -remove to delete\n", len(groups))
		return
	}

	res, err := backend.Service.RemoveDuplicates(ctx)
	if err != nil {
		logger.Error("Duplicate removal failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("removed %d duplicates across %d groups\n", res.Removed, res.Groups)
}
