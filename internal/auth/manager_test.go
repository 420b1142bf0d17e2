// ABOUTME: Tests for OAuth credential management backed by the sqlite store
// ABOUTME: Refresh paths that hit Google's endpoint are not exercised here
package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harper/aide/internal/models"
	"github.com/harper/aide/internal/storage/sqlite"
)

const testUser = "alice@example.com"

func newTestManager(t *testing.T) (*Manager, *sqlite.CredentialStore) {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewCredentialStore(db)
	return NewManager(store, "client-id", "client-secret", "http://localhost:8080/auth/callback"), store
}

func TestAuthURL(t *testing.T) {
	m, _ := newTestManager(t)
	u := m.AuthURL("alice-state")
	for _, want := range []string{
		"client_id=client-id",
		"access_type=offline",
		"prompt=consent",
		"state=alice-state",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("auth URL missing %q: %s", want, u)
		}
	}
}

func TestCredentialForValidToken(t *testing.T) {
	m, store := newTestManager(t)
	seeded := &models.Credential{
		UserID:       testUser,
		AccessToken:  "access-tok",
		RefreshToken: "refresh-tok",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := store.Put(seeded); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cred, err := m.CredentialFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("CredentialFor: %v", err)
	}
	if cred.AccessToken != "access-tok" || cred.RefreshToken != "refresh-tok" {
		t.Errorf("got %+v", cred)
	}
}

func TestCredentialForNonExpiringToken(t *testing.T) {
	// Zero expiry means the token never expires; no refresh attempt.
	m, store := newTestManager(t)
	if err := store.Put(&models.Credential{UserID: testUser, AccessToken: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	cred, err := m.CredentialFor(context.Background(), testUser)
	if err != nil {
		t.Fatalf("CredentialFor: %v", err)
	}
	if cred.AccessToken != "tok" {
		t.Errorf("got %+v", cred)
	}
}

func TestCredentialForUnknownUser(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.CredentialFor(context.Background(), "stranger@example.com")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
