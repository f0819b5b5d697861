// Package engine orchestrates a rules run: it streams stored messages, asks
// the rule matcher which rules fire for each one, and dispatches matched
// actions through the executor.
//
// Messages are independent of each other, so matching fans out over a small
// worker pool. Everything touching the provider stays serialized behind the
// executor's shared rate limiter, and within one message rules fire in
// declared order with their actions dispatched sequentially.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mailsift/mailsift/internal/mail"
	"github.com/mailsift/mailsift/internal/rules"
)

const defaultWorkers = 4

// MessageSource supplies the stored messages a run evaluates.
// *store.Store satisfies this.
type MessageSource interface {
	List(ctx context.Context, limit int) ([]mail.Message, error)
}

// Options controls a single run.
type Options struct {
	Limit  int  // max messages to evaluate (0 = source default)
	DryRun bool // log matches, skip all dispatch
}

// Summary reports what one run did.
type Summary struct {
	MessagesEvaluated int `json:"messagesEvaluated"`
	RulesMatched      int `json:"rulesMatched"`
	ActionsAttempted  int `json:"actionsAttempted"`
	ActionsSucceeded  int `json:"actionsSucceeded"`
	ActionsFailed     int `json:"actionsFailed"`
}

// Service runs a compiled rule set over stored messages.
type Service struct {
	Source   MessageSource
	Executor *Executor
	Log      *slog.Logger
	Clock    func() time.Time
	Workers  int
}

// NewService constructs a Service with sane defaults.
func NewService(source MessageSource, exec *Executor, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		Source:   source,
		Executor: exec,
		Log:      log,
		Clock:    time.Now,
		Workers:  defaultWorkers,
	}
}

// messageReport tallies one message's evaluation for the run summary.
type messageReport struct {
	rulesMatched int
	outcomes     []ActionOutcome
}

// Run evaluates every rule against every stored message and dispatches the
// actions of every matching rule. Rules are independent filters: a message
// matching several rules gets all of their actions, in rule order. The run
// always completes and reports a summary; only an unreadable message source
// or a cancellation aborts it.
func (s *Service) Run(ctx context.Context, ruleSet []rules.CompiledRule, opts Options) (Summary, error) {
	if len(ruleSet) == 0 {
		return Summary{}, errors.New("no rules to apply")
	}

	runID := uuid.NewString()
	log := s.Log.With("run", runID)
	now := s.Clock()

	messages, err := s.Source.List(ctx, opts.Limit)
	if err != nil {
		return Summary{}, fmt.Errorf("list messages: %w", err)
	}
	log.Info("starting run", "messages", len(messages), "rules", len(ruleSet), "dry_run", opts.DryRun)

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(messages) {
		workers = len(messages)
	}

	jobs := make(chan mail.Message)
	reports := make(chan messageReport, len(messages))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				reports <- s.processMessage(ctx, log, msg, ruleSet, now, opts.DryRun)
			}
		}()
	}

feed:
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- msg:
		}
	}
	close(jobs)
	wg.Wait()
	close(reports)

	summary := Summary{}
	for report := range reports {
		summary.MessagesEvaluated++
		summary.RulesMatched += report.rulesMatched
		for _, out := range report.outcomes {
			summary.ActionsAttempted++
			if out.Err != nil {
				summary.ActionsFailed++
			} else {
				summary.ActionsSucceeded++
			}
		}
	}

	log.Info("run complete",
		"messages_evaluated", summary.MessagesEvaluated,
		"rules_matched", summary.RulesMatched,
		"actions_attempted", summary.ActionsAttempted,
		"actions_succeeded", summary.ActionsSucceeded,
		"actions_failed", summary.ActionsFailed)
	return summary, ctx.Err()
}

// processMessage evaluates one message against every rule, dispatching
// matched actions as it goes. Evaluation errors on one rule are logged and
// skipped; they never abort the message or the run.
func (s *Service) processMessage(ctx context.Context, log *slog.Logger, msg mail.Message, ruleSet []rules.CompiledRule, now time.Time, dryRun bool) messageReport {
	report := messageReport{}
	for _, rule := range ruleSet {
		result, err := rules.Match(msg, rule, now)
		if err != nil {
			log.Warn("rule evaluation skipped", "message", msg.ID, "rule", rule.Index, "error", err)
			continue
		}
		if !result.Matched {
			continue
		}
		report.rulesMatched++
		log.Info("rule matched",
			"message", msg.ID, "rule", rule.Index,
			"from", msg.From, "subject", msg.Subject)
		if dryRun {
			continue
		}
		report.outcomes = append(report.outcomes, s.Executor.Apply(ctx, msg.ID, rule.Actions)...)
	}
	return report
}
