package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsift/mailsift/internal/mail"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMessage(id string) mail.Message {
	return mail.Message{
		ID:       mail.MessageID(id),
		ThreadID: "thread-1",
		From:     "alice@example.com",
		To:       "bob@example.com",
		Subject:  "hello",
		Body:     "body text",
		Received: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
		Read:     false,
		Label:    "",
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := sampleMessage("m1")
	require.NoError(t, s.Upsert(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, msg.Received.Equal(got.Received), "received timestamp round-trip")
	got.Received = msg.Received
	assert.Equal(t, msg, got)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := sampleMessage("m1")
	require.NoError(t, s.Upsert(ctx, msg))

	msg.Read = true
	msg.Label = "Archive"
	require.NoError(t, s.Upsert(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.Equal(t, "Archive", got.Label)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListOrdersByReceivedDesc(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := sampleMessage("old")
	older.Received = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleMessage("new")
	newer.Received = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Upsert(ctx, older))
	require.NoError(t, s.Upsert(ctx, newer))

	messages, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, mail.MessageID("new"), messages[0].ID)
	assert.Equal(t, mail.MessageID("old"), messages[1].ID)
}

func TestListHonorsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Upsert(ctx, sampleMessage(id)))
	}
	messages, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestSetReadAndSetLabel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, sampleMessage("m1")))

	require.NoError(t, s.SetRead(ctx, "m1", true))
	require.NoError(t, s.SetLabel(ctx, "m1", "Newsletters"))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Read)
	assert.Equal(t, "Newsletters", got.Label)

	// Re-applying the same update succeeds and changes nothing.
	require.NoError(t, s.SetRead(ctx, "m1", true))
	got, err = s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Read)
}
