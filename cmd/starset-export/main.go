package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/anastasia/starset/internal/config"
	"github.com/anastasia/starset/internal/export"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("out", "", "output file (default: stdout)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("starset-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg.Storage, notify.NewHub())
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sessions, err := store.ListAllSessions(ctx)
	if err != nil {
		log.Error("failed to list sessions", "error", err)
		os.Exit(1)
	}
	logs, err := store.ListAllLogs(ctx)
	if err != nil {
		log.Error("failed to list logs", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Error("failed to create output file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, sessions, logs); err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
	log.Info("export complete", "sessions", len(sessions), "logs", len(logs))
}
