// Package workspace implements the agent's service interfaces on top of the
// Google Workspace APIs (Gmail, Calendar, Drive, Docs, Sheets, Tasks,
// People). Every client is built per call from the actor's OAuth credentials;
// nothing here caches a user's API client across requests.
package workspace

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vocalagent/vocalagent/agent"
)

// ClientFactory hands out an authenticated HTTP client for an actor. The
// auth package implements it over the persisted OAuth tokens.
type ClientFactory interface {
	HTTPClient(ctx context.Context, actor string) (*http.Client, error)
}

// NewServices builds the full service bundle over one client factory.
func NewServices(factory ClientFactory) agent.Services {
	return agent.Services{
		Gmail:    &GmailClient{factory: factory},
		Calendar: &CalendarClient{factory: factory, now: time.Now},
		Drive:    &DriveClient{factory: factory},
		Docs:     &DocsClient{factory: factory},
		Sheets:   &SheetsClient{factory: factory},
		Tasks:    &TasksClient{factory: factory},
		Contacts: &ContactsClient{factory: factory},
		Keep:     &KeepClient{factory: factory},
	}
}

// authFail is the shared envelope for a factory failure; it usually means
// the actor's refresh token was revoked and they must sign in again.
func authFail(actor string, err error) agent.ResultEnvelope {
	slog.Warn("workspace client unavailable", "actor", actor, "error", err)
	return agent.Fail("Your Google account connection has expired. Please sign in again.")
}

func apiFail(op string, err error) agent.ResultEnvelope {
	slog.Error("workspace call failed", "op", op, "error", err)
	return agent.Fail("Failed to %s: %v", op, err)
}

// escapeQuery escapes single quotes and backslashes for embedding in a
// Drive query string literal.
func escapeQuery(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	return strings.ReplaceAll(q, `'`, `\'`)
}
