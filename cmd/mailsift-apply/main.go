package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/engine"
	"github.com/mailsift/mailsift/internal/rate"
	"github.com/mailsift/mailsift/internal/rules"
	"github.com/mailsift/mailsift/internal/runtime"
	"github.com/mailsift/mailsift/internal/store"
)

type applyConfig struct {
	configFile string
	rulesFile  string
	limit      int
	dryRun     bool
	jsonOut    bool
}

func main() {
	cfg := parseApplyFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("mailsift-apply failed", "error", err)
		os.Exit(1)
	}
}

func parseApplyFlags() applyConfig {
	configFile := flag.String("config", "", "config file path")
	rulesFile := flag.String("rules", "", "rules file (overrides config)")
	limit := flag.Int("limit", 0, "max messages to evaluate (0 = all stored)")
	dryRun := flag.Bool("dry-run", false, "log matches; skip all actions")
	jsonOut := flag.Bool("json", false, "print the run summary as JSON")
	flag.Parse()

	return applyConfig{
		configFile: *configFile,
		rulesFile:  *rulesFile,
		limit:      *limit,
		dryRun:     *dryRun,
		jsonOut:    *jsonOut,
	}
}

func run(ac applyConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ac.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rulesFile := ac.rulesFile
	if rulesFile == "" {
		rulesFile = cfg.RulesFile
	}

	// Fail fast: a broken rules file aborts before anything is touched.
	ruleSet, err := rules.Load(rulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	conn, err := runtime.NewGmailConnection(ctx, cfg.AuthDir, runtime.ScopeModify)
	if err != nil {
		return fmt.Errorf("create gmail client: %w", err)
	}

	gate := rate.NewInterval(cfg.ActionInterval)
	defer gate.Stop()

	log := runtime.DefaultLogger()
	exec := engine.NewExecutor(conn.Actions, db, gate, log)
	exec.MaxRetries = cfg.MaxRetries

	svc := engine.NewService(db, exec, log)
	svc.Workers = cfg.Workers

	summary, err := svc.Run(ctx, ruleSet, engine.Options{Limit: ac.limit, DryRun: ac.dryRun})
	if err != nil {
		return fmt.Errorf("run engine: %w", err)
	}

	if ac.jsonOut {
		out, merr := json.MarshalIndent(summary, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("evaluated %d messages, %d rule matches, actions %d attempted / %d succeeded / %d failed\n",
		summary.MessagesEvaluated, summary.RulesMatched,
		summary.ActionsAttempted, summary.ActionsSucceeded, summary.ActionsFailed)
	return nil
}
