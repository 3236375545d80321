package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/anastasia/starset/internal/config"
	"github.com/anastasia/starset/internal/mcp"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/storage"
	"github.com/anastasia/starset/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("starset-mcp", Version)
		return
	}

	// Stdout carries the MCP protocol; logs go to stderr.
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

	coord := workout.NewCoordinator(store, workout.SystemClock{}, log)
	if err := coord.SeedDefaults(ctx); err != nil {
		log.Error("failed to seed defaults", "error", err)
		os.Exit(1)
	}

	mcpServer := mcp.New(coord, Version, log)
	log.Info("StarSet MCP server starting", "transport", "stdio")
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
