// internal/runtime/auth.go
package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/mbrt/gmailctl/cmd/gmailctl/localcred"
	"google.golang.org/api/gmail/v1"

	"github.com/mailsift/mailsift/internal/mail"
)

type Scope int

const (
	ScopeReadonly Scope = iota
	ScopeModify
)

// Connection bundles the fetch and mutation surfaces of one authenticated
// Gmail session. Readonly connections still expose Actions; calls fail at the
// API with an insufficient-scope error.
type Connection struct {
	Client  mail.Client
	Actions mail.Actions
}

func NewGmailConnection(ctx context.Context, cfgDir string, scope Scope) (Connection, error) {
	var svc *gmail.Service
	var err error
	// localcred chooses scopes based on what the binary requests on first run
	switch scope {
	case ScopeReadonly:
		svc, err = (localcred.Provider{}).ServiceWithScopes(ctx, cfgDir, gmail.GmailReadonlyScope)
	case ScopeModify:
		svc, err = (localcred.Provider{}).ServiceWithScopes(ctx, cfgDir, gmail.GmailModifyScope)
	default:
		panic("unknown scope")
	}
	if err != nil {
		return Connection{}, err
	}
	client := NewGoogleAPIClient(svc)
	return Connection{Client: client, Actions: client}, nil
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
