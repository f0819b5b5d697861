package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/fetch"
	"github.com/mailsift/mailsift/internal/rate"
	"github.com/mailsift/mailsift/internal/runtime"
	"github.com/mailsift/mailsift/internal/store"
)

type fetchConfig struct {
	configFile string
	query      string
	max        int
}

func main() {
	cfg := parseFetchFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("mailsift-fetch failed", "error", err)
		os.Exit(1)
	}
}

func parseFetchFlags() fetchConfig {
	configFile := flag.String("config", "", "config file path")
	query := flag.String("query", "", "restrict fetch to a raw Gmail query")
	maxFlag := flag.Int("max", 0, "max messages to fetch (0 = config default)")
	flag.Parse()

	return fetchConfig{
		configFile: *configFile,
		query:      *query,
		max:        *maxFlag,
	}
}

func run(fc fetchConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(fc.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := runtime.NewGmailConnection(ctx, cfg.AuthDir, runtime.ScopeReadonly)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	bucket := rate.NewTokenBucket(cfg.RequestsPerSec)
	defer bucket.Stop()

	svc := fetch.NewService(conn.Client, db, bucket, runtime.DefaultLogger())

	maxFetch := fc.max
	if maxFetch == 0 {
		maxFetch = cfg.MaxFetch
	}
	spec := fetch.Spec{
		Query:    fc.query,
		PageSize: cfg.PageSize,
		Max:      maxFetch,
	}

	count, err := svc.Run(ctx, spec)
	if err != nil {
		return fmt.Errorf("run fetch: %w", err)
	}
	total, err := db.Count(ctx)
	if err != nil {
		return fmt.Errorf("count stored messages: %w", err)
	}
	fmt.Printf("fetched %d messages into %s (%d stored)\n", count, cfg.DBPath, total)
	return nil
}
