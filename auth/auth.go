// Package auth manages the Google OAuth flow and hands out authenticated
// HTTP clients backed by the persisted per-user tokens.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/vocalagent/vocalagent/internal/profile"
	"github.com/vocalagent/vocalagent/store"
)

// scopes is everything the assistant can be asked to do. Requested up front
// in one consent screen; incremental auth is not worth the re-consent churn
// for a personal assistant.
var scopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/tasks",
	"https://www.googleapis.com/auth/contacts",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Manager implements the OAuth flow and the workspace.ClientFactory
// contract.
type Manager struct {
	config *oauth2.Config
	store  *store.Store

	mu sync.Mutex // serializes refresh-and-persist per process
}

// NewManager creates an auth manager from the instance profile.
func NewManager(p *profile.Profile, s *store.Store) (*Manager, error) {
	if p.GoogleClientID == "" || p.GoogleClientSecret == "" {
		return nil, errors.New("google client id and secret are required")
	}
	redirect := strings.TrimRight(p.InstanceURL, "/") + "/auth/google/callback"
	return &Manager{
		config: &oauth2.Config{
			ClientID:     p.GoogleClientID,
			ClientSecret: p.GoogleClientSecret,
			RedirectURL:  redirect,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		store: s,
	}, nil
}

// AuthURL returns the consent-screen URL for the given CSRF state.
// AccessTypeOffline is what yields a refresh token.
func (m *Manager) AuthURL(state string) string {
	return m.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the callback code for tokens, resolves the account's email
// address, and persists the credential. It returns the email, which becomes
// the actor identity for every later call.
func (m *Manager) Exchange(ctx context.Context, code string) (string, error) {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange authorization code")
	}

	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(m.config.Client(ctx, token)))
	if err != nil {
		return "", errors.Wrap(err, "failed to create userinfo service")
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch user info")
	}
	if info.Email == "" {
		return "", errors.New("google account has no email address")
	}

	if _, err := m.store.UpsertUserToken(ctx, &store.UserToken{
		Email:        info.Email,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}); err != nil {
		return "", errors.Wrap(err, "failed to persist token")
	}

	slog.Info("google account connected", "actor", info.Email)
	return info.Email, nil
}

// SignOut forgets the actor's credential.
func (m *Manager) SignOut(ctx context.Context, email string) error {
	return m.store.DeleteUserToken(ctx, email)
}

// HTTPClient implements workspace.ClientFactory. The returned client
// refreshes expired access tokens transparently and persists every refresh,
// so a restart never loses a live session.
func (m *Manager) HTTPClient(ctx context.Context, actor string) (*http.Client, error) {
	saved, err := m.store.GetUserToken(ctx, actor)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, errors.Errorf("no google credential for %s", actor)
	}

	token := &oauth2.Token{
		AccessToken:  saved.AccessToken,
		RefreshToken: saved.RefreshToken,
		TokenType:    saved.TokenType,
		Expiry:       saved.Expiry,
	}
	source := &persistingTokenSource{
		manager:  m,
		actor:    actor,
		delegate: m.config.TokenSource(ctx, token),
		last:     token,
	}
	return oauth2.NewClient(ctx, source), nil
}

// persistingTokenSource wraps the refreshing source and writes every new
// access token back to the store.
type persistingTokenSource struct {
	manager  *Manager
	actor    string
	delegate oauth2.TokenSource
	last     *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.delegate.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken == s.last.AccessToken {
		return token, nil
	}

	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()
	s.last = token
	if _, err := s.manager.store.UpsertUserToken(context.Background(), &store.UserToken{
		Email:        s.actor,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}); err != nil {
		// The refreshed token still works for this process; losing the
		// persisted copy only costs a re-auth after restart.
		slog.Error("failed to persist refreshed token", "actor", s.actor, "error", err)
	}
	return token, nil
}
