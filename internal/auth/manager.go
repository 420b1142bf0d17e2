// ABOUTME: OAuth credential management for Google Calendar access
// ABOUTME: Loads per-user tokens, refreshes on expiry, writes refreshed tokens back
package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/harper/aide/internal/models"
	"github.com/harper/aide/internal/storage/sqlite"
)

// Scopes requested during sign-in.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
}

// Manager exchanges, stores, and refreshes per-user OAuth credentials.
// Credentials are always an explicit parameter downstream, never process
// state: every calendar call receives the credential it should act with.
type Manager struct {
	store *sqlite.CredentialStore
	cfg   *oauth2.Config
}

// NewManager creates a Manager backed by the credential store.
func NewManager(store *sqlite.CredentialStore, clientID, clientSecret, redirectURI string) *Manager {
	return &Manager{
		store: store,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent-screen URL for the sign-in flow.
func (m *Manager) AuthURL(state string) string {
	return m.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens and persists them for
// the user. Called once per sign-in by the web channel.
func (m *Manager) Exchange(ctx context.Context, user, code string) (*models.Credential, error) {
	tok, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %v: %w", err, models.ErrExternalAPI)
	}

	cred := &models.Credential{
		UserID:       user,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if err := m.store.Put(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// CredentialFor loads the user's credential, refreshing through the OAuth
// endpoint if expired. A refreshed token overwrites the stored record.
func (m *Manager) CredentialFor(ctx context.Context, user string) (*models.Credential, error) {
	cred, err := m.store.Get(user)
	if err != nil {
		return nil, err
	}
	if !cred.Expired(time.Now()) {
		return cred, nil
	}

	src := m.cfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token for %s: %v: %w", user, err, models.ErrExternalAPI)
	}

	refreshed := &models.Credential{
		UserID:       user,
		AccessToken:  tok.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if tok.RefreshToken != "" {
		refreshed.RefreshToken = tok.RefreshToken
	}
	if err := m.store.Put(refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// TokenSource adapts a stored credential for Google API clients.
func (m *Manager) TokenSource(ctx context.Context, cred *models.Credential) oauth2.TokenSource {
	return m.cfg.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	})
}
