package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound Gmail API calls so we respect provider quotas. One
// limiter instance is shared process-wide: fetch paging and action dispatch
// all funnel through the same gate, even when evaluation runs on a pool.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket implements a simple fixed-rate token bucket limiter.
type TokenBucket struct {
	ticker   *time.Ticker
	tokens   chan struct{}
	quit     chan struct{}
	stopDone chan struct{}
}

// NewTokenBucket returns a limiter that releases rps tokens per second.
func NewTokenBucket(rps int) *TokenBucket {
	if rps <= 0 {
		rps = 1
	}
	return newBucket(time.Second/time.Duration(rps), rps)
}

// NewInterval returns a limiter enforcing a fixed minimum interval between
// operations, with no bursting. This is the shape action dispatch wants: at
// most one provider mutation per interval regardless of how many workers are
// matching rules.
func NewInterval(d time.Duration) *TokenBucket {
	if d <= 0 {
		d = time.Second
	}
	return newBucket(d, 1)
}

func newBucket(interval time.Duration, burst int) *TokenBucket {
	tb := &TokenBucket{
		ticker:   time.NewTicker(interval),
		tokens:   make(chan struct{}, burst),
		quit:     make(chan struct{}),
		stopDone: make(chan struct{}),
	}
	// allow the first call to proceed immediately
	tb.tokens <- struct{}{}
	go tb.run()
	return tb
}

func (t *TokenBucket) run() {
	defer close(t.stopDone)
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default:
			}
		}
	}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop releases resources held by the limiter and waits for its goroutine
// to exit. Stopping the ticker alone is not enough: its channel never
// closes, so run needs the quit signal.
func (t *TokenBucket) Stop() {
	t.ticker.Stop()
	close(t.quit)
	<-t.stopDone
}

var _ Limiter = (*TokenBucket)(nil)
