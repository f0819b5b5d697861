package mail

import "context"

// Client is the narrow fetch surface required by mailsift.
type Client interface {
	List(ctx context.Context, q Query, pageToken string, pageSize int) (ListPage, error)
	Get(ctx context.Context, id MessageID) (Message, error)
	ListLabels(ctx context.Context) (map[string]LabelID, map[LabelID]string, error)
	EnsureLabel(ctx context.Context, name string) (LabelID, error)
}

// Actions is the mutation surface the rule engine drives. Both operations are
// idempotent on the provider side: re-marking a read message read, or moving a
// message to a label it already carries, succeeds without effect.
type Actions interface {
	SetReadStatus(ctx context.Context, id MessageID, read bool) error
	MoveToLabel(ctx context.Context, id MessageID, label string) error
}
