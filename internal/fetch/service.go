// Package fetch pulls message content from the provider into the local
// store, paging through the mailbox behind the shared rate limiter.
package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mailsift/mailsift/internal/mail"
)

const defaultPageSize = 100

// Sink receives fetched messages. *store.Store satisfies this.
type Sink interface {
	Upsert(ctx context.Context, m mail.Message) error
}

// Spec controls one fetch pass.
type Spec struct {
	Query    string // optional raw Gmail query to restrict the fetch
	PageSize int
	Max      int // stop after this many messages (0 = unlimited)
}

// Service copies mailbox content into the store.
type Service struct {
	Client  mail.Client
	Sink    Sink
	Limiter interface{ Wait(context.Context) error }
	Log     *slog.Logger
}

// NewService constructs a fetch Service.
func NewService(client mail.Client, sink Sink, limiter interface{ Wait(context.Context) error }, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Client: client, Sink: sink, Limiter: limiter, Log: log}
}

// Run lists matching message IDs, fetches each record, and upserts it. Re-run
// freely: existing rows are replaced, so a second pass refreshes read flags
// and labels without duplicating anything.
func (s *Service) Run(ctx context.Context, spec Spec) (int, error) {
	pageSize := spec.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	fetched := 0
	pageToken := ""
	for {
		if err := s.wait(ctx); err != nil {
			return fetched, err
		}
		page, err := s.Client.List(ctx, mail.Query{Raw: spec.Query}, pageToken, pageSize)
		if err != nil {
			return fetched, fmt.Errorf("list messages: %w", err)
		}
		for _, id := range page.IDs {
			if spec.Max > 0 && fetched >= spec.Max {
				s.Log.Info("fetch limit reached", "count", fetched)
				return fetched, nil
			}
			if err := s.wait(ctx); err != nil {
				return fetched, err
			}
			msg, err := s.Client.Get(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return fetched, fmt.Errorf("get message %s: %w", id, err)
				}
				// one unreadable message must not sink a long sync
				s.Log.Warn("skipping message", "id", id, "error", err)
				continue
			}
			if err := s.Sink.Upsert(ctx, msg); err != nil {
				return fetched, err
			}
			fetched++
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	s.Log.Info("fetch complete", "count", fetched)
	return fetched, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Wait(ctx)
}
