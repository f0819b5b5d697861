package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/mailsift/mailsift/internal/mail"
	"github.com/mailsift/mailsift/internal/rules"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 2 * time.Second
)

// Recorder mirrors successful provider mutations into the local store so the
// stored record tracks the mailbox. *store.Store satisfies this.
type Recorder interface {
	SetRead(ctx context.Context, id mail.MessageID, read bool) error
	SetLabel(ctx context.Context, id mail.MessageID, label string) error
}

// ActionOutcome records one attempted action. Err is nil on success.
type ActionOutcome struct {
	Type  rules.ActionType
	Label string
	Err   error
}

// Executor dispatches a matched rule's actions against the provider. Actions
// run sequentially in declared order; each outcome is recorded independently
// and a failed action never blocks the ones after it. Provider calls are
// gated by the shared limiter and retried with linear backoff up to
// MaxRetries before the action is recorded as failed.
type Executor struct {
	Actions    mail.Actions
	Recorder   Recorder
	Limiter    interface{ Wait(context.Context) error }
	Log        *slog.Logger
	MaxRetries int
	Backoff    time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor constructs an Executor with sane retry defaults.
func NewExecutor(actions mail.Actions, recorder Recorder, limiter interface{ Wait(context.Context) error }, log *slog.Logger) *Executor {
	return &Executor{
		Actions:    actions,
		Recorder:   recorder,
		Limiter:    limiter,
		Log:        log,
		MaxRetries: defaultMaxRetries,
		Backoff:    defaultBackoff,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Apply executes the actions for one matched message, in order.
func (e *Executor) Apply(ctx context.Context, id mail.MessageID, actions []rules.CompiledAction) []ActionOutcome {
	outcomes := make([]ActionOutcome, 0, len(actions))
	for _, action := range actions {
		out := ActionOutcome{Type: action.Type, Label: action.Label}
		out.Err = e.applyOne(ctx, id, action)
		if out.Err != nil {
			e.Log.Error("action failed",
				"message", id, "action", action.Type, "error", out.Err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (e *Executor) applyOne(ctx context.Context, id mail.MessageID, action rules.CompiledAction) error {
	err := e.withRetry(ctx, func() error {
		return e.dispatch(ctx, id, action)
	})
	if err != nil {
		return err
	}
	return e.record(ctx, id, action)
}

func (e *Executor) dispatch(ctx context.Context, id mail.MessageID, action rules.CompiledAction) error {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	switch action.Type {
	case rules.ActionMarkRead:
		return e.Actions.SetReadStatus(ctx, id, action.Read)
	case rules.ActionMarkUnread:
		return e.Actions.SetReadStatus(ctx, id, false)
	case rules.ActionMoveMessage:
		return e.Actions.MoveToLabel(ctx, id, action.Label)
	default:
		// Compile rejects unknown types; reaching here is a programming error.
		panic("unknown action type " + string(action.Type))
	}
}

func (e *Executor) record(ctx context.Context, id mail.MessageID, action rules.CompiledAction) error {
	if e.Recorder == nil {
		return nil
	}
	switch action.Type {
	case rules.ActionMarkRead:
		return e.Recorder.SetRead(ctx, id, action.Read)
	case rules.ActionMarkUnread:
		return e.Recorder.SetRead(ctx, id, false)
	case rules.ActionMoveMessage:
		return e.Recorder.SetLabel(ctx, id, action.Label)
	}
	return nil
}

func (e *Executor) withRetry(ctx context.Context, call func() error) error {
	maxRetries := e.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	sleep := e.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if serr := sleep(ctx, time.Duration(attempt)*e.Backoff); serr != nil {
				return serr
			}
		}
		if err = call(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
