// internal/runtime/googleapi.go — adapts *gmail.Service to our small interfaces
package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/mailsift/mailsift/internal/mail"
)

type googleClient struct{ svc *gmail.Service }

func NewGoogleAPIClient(svc *gmail.Service) *googleClient { return &googleClient{svc} }

func (g *googleClient) List(ctx context.Context, q mail.Query, pageToken string, pageSize int) (mail.ListPage, error) {
	call := g.svc.Users.Messages.List("me").Q(q.Raw).MaxResults(int64(pageSize))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return mail.ListPage{}, err
	}
	page := mail.ListPage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		page.IDs = append(page.IDs, mail.MessageID(m.Id))
	}
	return page, nil
}

func (g *googleClient) Get(ctx context.Context, id mail.MessageID) (mail.Message, error) {
	msg, err := g.svc.Users.Messages.Get("me", string(id)).Format("full").Context(ctx).Do()
	if err != nil {
		return mail.Message{}, err
	}
	return toMessage(msg), nil
}

func toMessage(msg *gmail.Message) mail.Message {
	out := mail.Message{
		ID:       mail.MessageID(msg.Id),
		ThreadID: msg.ThreadId,
		Received: time.UnixMilli(msg.InternalDate).UTC(),
		Read:     true,
	}
	for _, l := range msg.LabelIds {
		switch {
		case l == "UNREAD":
			out.Read = false
		case isSystemLabel(l):
			// INBOX and the category labels map to the default location
		default:
			out.Label = l
		}
	}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			out.From = h.Value
		case "To":
			out.To = h.Value
		case "Subject":
			out.Subject = h.Value
		}
	}
	out.Body = extractBody(msg.Payload)
	return out
}

func isSystemLabel(id string) bool {
	switch id {
	case "INBOX", "SENT", "DRAFT", "SPAM", "TRASH", "STARRED", "IMPORTANT":
		return true
	}
	return strings.HasPrefix(id, "CATEGORY_")
}

// extractBody walks the MIME tree and returns the first text/plain part, or
// the top-level body for single-part messages.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.Body != nil && part.Body.Data != "" && !strings.HasPrefix(part.MimeType, "multipart/") {
		if part.MimeType == "" || strings.HasPrefix(part.MimeType, "text/") {
			if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
				return string(decoded)
			}
		}
	}
	for _, p := range part.Parts {
		if p.MimeType == "text/plain" {
			if body := extractBody(p); body != "" {
				return body
			}
		}
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}

// SetReadStatus flips the UNREAD system label. Gmail treats adding a label
// the message already has (or removing one it lacks) as a no-op, so repeat
// applications succeed.
func (g *googleClient) SetReadStatus(ctx context.Context, id mail.MessageID, read bool) error {
	req := &gmail.ModifyMessageRequest{}
	if read {
		req.RemoveLabelIds = []string{"UNREAD"}
	} else {
		req.AddLabelIds = []string{"UNREAD"}
	}
	_, err := g.svc.Users.Messages.Modify("me", string(id), req).Context(ctx).Do()
	return err
}

// MoveToLabel takes the message out of the inbox and files it under the named
// label, creating the label on first use.
func (g *googleClient) MoveToLabel(ctx context.Context, id mail.MessageID, label string) error {
	lid, err := g.EnsureLabel(ctx, label)
	if err != nil {
		return err
	}
	req := &gmail.ModifyMessageRequest{
		AddLabelIds:    []string{string(lid)},
		RemoveLabelIds: []string{"INBOX"},
	}
	_, err = g.svc.Users.Messages.Modify("me", string(id), req).Context(ctx).Do()
	return err
}

func (g *googleClient) ListLabels(ctx context.Context) (map[string]mail.LabelID, map[mail.LabelID]string, error) {
	lr, err := g.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, nil, err
	}
	byName := map[string]mail.LabelID{}
	byID := map[mail.LabelID]string{}
	for _, l := range lr.Labels {
		byName[l.Name] = mail.LabelID(l.Id)
		byID[mail.LabelID(l.Id)] = l.Name
	}
	return byName, byID, nil
}

func (g *googleClient) EnsureLabel(ctx context.Context, name string) (mail.LabelID, error) {
	byName, _, err := g.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	if id, ok := byName[name]; ok {
		return id, nil
	}
	created, err := g.svc.Users.Labels.Create("me", &gmail.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}
	return mail.LabelID(created.Id), nil
}

var (
	_ mail.Client  = (*googleClient)(nil)
	_ mail.Actions = (*googleClient)(nil)
)
