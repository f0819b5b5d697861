// internal/mail/types.go
package mail

import "time"

type MessageID string
type LabelID string

// Message is one stored email record. Fetched once, then updated in place as
// actions flip the read flag or relabel it. An empty Label means the message
// sits in the default inbox.
type Message struct {
	ID       MessageID
	ThreadID string
	From     string
	To       string
	Subject  string
	Body     string
	Received time.Time
	Read     bool
	Label    string
}

// ListPage is one page of a mailbox listing.
type ListPage struct {
	IDs           []MessageID
	NextPageToken string
}

type Query struct {
	Raw string // Gmail query string, already formed (e.g., `in:inbox newer_than:7d`)
}
