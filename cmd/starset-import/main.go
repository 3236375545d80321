package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/anastasia/starset/internal/config"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/restore"
	"github.com/anastasia/starset/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	inPath := flag.String("in", "", "path to export CSV (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into the store")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("starset-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *inPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: starset-import -config config.yaml -in export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Error("failed to open export file", "path", *inPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode, nothing will be written to the store")
	}

	store, closeStore, err := storage.Open(ctx, cfg.Storage, notify.NewHub())
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	imp := restore.New(store, log, *dryRun)
	stats, err := imp.Import(ctx, f)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *restore.Stats) {
	log.Info("import stats",
		"sessions_inserted", stats.SessionsInserted,
		"sessions_duplicated", stats.SessionsDuplicated,
		"sessions_skipped", stats.SessionsSkipped,
		"logs_inserted", stats.LogsInserted,
		"logs_duplicated", stats.LogsDuplicated,
		"logs_orphaned", stats.LogsOrphaned,
		"rows_errored", stats.RowsErrored,
	)
}
