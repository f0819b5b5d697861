// Package store persists fetched messages in a local sqlite database.
//
// The schema mirrors what the engine evaluates: one row per message with the
// addressing headers, body text, received timestamp, read flag, and current
// label. Queries live in embedded .sql files managed by dotsql; sqlx handles
// struct scanning.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/qustavo/dotsql"

	"github.com/mailsift/mailsift/internal/mail"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// ErrNotFound indicates the requested message is not in the store.
var ErrNotFound = errors.New("message not found")

// Store is a sqlite-backed message store.
type Store struct {
	db  *sqlx.DB
	dot *dotsql.DotSql
}

type messageRow struct {
	ID           string    `db:"id"`
	ThreadID     string    `db:"thread_id"`
	FromAddress  string    `db:"from_address"`
	ToAddress    string    `db:"to_address"`
	Subject      string    `db:"subject"`
	Message      string    `db:"message"`
	ReceivedDate time.Time `db:"received_date"`
	IsRead       bool      `db:"is_read"`
	Label        string    `db:"label"`
}

func (r messageRow) toMessage() mail.Message {
	return mail.Message{
		ID:       mail.MessageID(r.ID),
		ThreadID: r.ThreadID,
		From:     r.FromAddress,
		To:       r.ToAddress,
		Subject:  r.Subject,
		Body:     r.Message,
		Received: r.ReceivedDate.UTC(),
		Read:     r.IsRead,
		Label:    r.Label,
	}
}

// Open opens (or creates) the database at path and bootstraps the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: sqlite serializes writes anyway, and ":memory:" is a
	// fresh database per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	dot, err := loadQueries()
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, dot: dot}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func loadQueries() (*dotsql.DotSql, error) {
	var combined string
	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, readErr := queriesFS.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
		combined += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load query files: %w", err)
	}
	dot, err := dotsql.LoadFromString(combined)
	if err != nil {
		return nil, fmt.Errorf("parse queries: %w", err)
	}
	return dot, nil
}

func (s *Store) migrate() error {
	ddl := []string{
		"create-messages-table",
		"create-from-index",
		"create-subject-index",
		"create-date-index",
		"create-read-index",
	}
	for _, name := range ddl {
		if _, err := s.exec(context.Background(), name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, name string, args ...any) (sql.Result, error) {
	query, err := s.dot.Raw(name)
	if err != nil {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return s.db.ExecContext(ctx, query, args...)
}

// Upsert inserts or replaces one message record.
func (s *Store) Upsert(ctx context.Context, m mail.Message) error {
	_, err := s.exec(ctx, "upsert-message",
		string(m.ID), m.ThreadID, m.From, m.To, m.Subject, m.Body,
		m.Received.UTC(), m.Read, m.Label)
	if err != nil {
		return fmt.Errorf("upsert message %s: %w", m.ID, err)
	}
	return nil
}

// Get returns one message by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id mail.MessageID) (mail.Message, error) {
	query, err := s.dot.Raw("get-message")
	if err != nil {
		return mail.Message{}, fmt.Errorf("query not found: get-message")
	}
	var row messageRow
	if err := s.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mail.Message{}, ErrNotFound
		}
		return mail.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}
	return row.toMessage(), nil
}

// List returns up to limit messages, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]mail.Message, error) {
	if limit <= 0 {
		limit = 1000
	}
	query, err := s.dot.Raw("list-messages")
	if err != nil {
		return nil, fmt.Errorf("query not found: list-messages")
	}
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]mail.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toMessage())
	}
	return out, nil
}

// SetRead mirrors a read-status change applied at the provider.
func (s *Store) SetRead(ctx context.Context, id mail.MessageID, read bool) error {
	if _, err := s.exec(ctx, "set-read", read, string(id)); err != nil {
		return fmt.Errorf("set read %s: %w", id, err)
	}
	return nil
}

// SetLabel mirrors a label change applied at the provider.
func (s *Store) SetLabel(ctx context.Context, id mail.MessageID, label string) error {
	if _, err := s.exec(ctx, "set-label", label, string(id)); err != nil {
		return fmt.Errorf("set label %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, err := s.dot.Raw("count-messages")
	if err != nil {
		return 0, fmt.Errorf("query not found: count-messages")
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
