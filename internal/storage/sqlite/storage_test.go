// ABOUTME: Tests for the SQLite stores using in-memory databases
// ABOUTME: Covers batch atomicity, bounded reads, upserts, and link lookups
package sqlite

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harper/aide/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func turn(user, session, role, content string, at time.Time) models.ConversationTurn {
	return models.ConversationTurn{
		UserEmail: user,
		SessionID: session,
		Role:      role,
		Content:   content,
		CreatedAt: at,
	}
}

func TestConversationStore_AppendBatchAndLoadRecent(t *testing.T) {
	store := NewConversationStore(newTestDB(t))
	now := time.Now().UTC()

	batch := []models.ConversationTurn{
		turn("alice@example.com", "web", models.RoleUser, "hello", now),
		turn("alice@example.com", "web", models.RoleTool, `{"ok":true}`, now),
		turn("alice@example.com", "web", models.RoleAssistant, "hi there", now),
	}
	if err := store.AppendBatch(batch); err != nil {
		t.Fatalf("AppendBatch() error = %v", err)
	}

	got, err := store.LoadRecent("alice@example.com", "web", 10)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("LoadRecent() = %d turns, want 3", len(got))
	}
	wantRoles := []string{models.RoleUser, models.RoleTool, models.RoleAssistant}
	for i, r := range wantRoles {
		if got[i].Role != r {
			t.Errorf("turn[%d].Role = %q, want %q (oldest-first order)", i, got[i].Role, r)
		}
	}
}

func TestConversationStore_LoadRecentBounded(t *testing.T) {
	store := NewConversationStore(newTestDB(t))
	now := time.Now().UTC()

	var batch []models.ConversationTurn
	for i := 0; i < 10; i++ {
		batch = append(batch, turn("bob@example.com", "web", models.RoleUser, fmt.Sprintf("msg %d", i), now))
	}
	if err := store.AppendBatch(batch); err != nil {
		t.Fatalf("AppendBatch() error = %v", err)
	}

	got, err := store.LoadRecent("bob@example.com", "web", 3)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("LoadRecent() = %d turns, want 3", len(got))
	}
	// Most recent three, oldest first
	for i, want := range []string{"msg 7", "msg 8", "msg 9"} {
		if got[i].Content != want {
			t.Errorf("turn[%d].Content = %q, want %q", i, got[i].Content, want)
		}
	}
}

func TestConversationStore_SessionsIsolated(t *testing.T) {
	store := NewConversationStore(newTestDB(t))
	now := time.Now().UTC()

	if err := store.AppendBatch([]models.ConversationTurn{
		turn("alice@example.com", "web", models.RoleUser, "web message", now),
		turn("alice@example.com", "telegram:7", models.RoleUser, "bot message", now),
	}); err != nil {
		t.Fatalf("AppendBatch() error = %v", err)
	}

	got, err := store.LoadRecent("alice@example.com", "telegram:7", 10)
	if err != nil {
		t.Fatalf("LoadRecent() error = %v", err)
	}
	if len(got) != 1 || got[0].Content != "bot message" {
		t.Errorf("LoadRecent() = %+v, want only the bot session turn", got)
	}
}

func TestConversationStore_EmptyBatchIsNoop(t *testing.T) {
	store := NewConversationStore(newTestDB(t))
	if err := store.AppendBatch(nil); err != nil {
		t.Fatalf("AppendBatch(nil) error = %v", err)
	}
	n, err := store.CountForSession("alice@example.com", "web")
	if err != nil {
		t.Fatalf("CountForSession() error = %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestCredentialStore_PutOverwrites(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))

	first := &models.Credential{
		UserID:       "alice@example.com",
		AccessToken:  "tok-1",
		RefreshToken: "ref-1",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	if err := store.Put(first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := &models.Credential{
		UserID:       "alice@example.com",
		AccessToken:  "tok-2",
		RefreshToken: "ref-2",
		Expiry:       time.Now().Add(2 * time.Hour).UTC(),
	}
	if err := store.Put(second); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}

	got, err := store.Get("alice@example.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AccessToken != "tok-2" || got.RefreshToken != "ref-2" {
		t.Errorf("Get() = %+v, want the refreshed tokens", got)
	}
}

func TestCredentialStore_GetUnknownUser(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))
	_, err := store.Get("nobody@example.com")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestLinkStore(t *testing.T) {
	store := NewLinkStore(newTestDB(t))

	if _, err := store.UserFor(42); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UserFor(unlinked) error = %v, want ErrNotFound", err)
	}

	if err := store.Link(42, "alice@example.com"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	user, err := store.UserFor(42)
	if err != nil {
		t.Fatalf("UserFor() error = %v", err)
	}
	if user != "alice@example.com" {
		t.Errorf("UserFor() = %q, want alice@example.com", user)
	}

	// Relinking replaces the previous mapping
	if err := store.Link(42, "bob@example.com"); err != nil {
		t.Fatalf("Link() relink error = %v", err)
	}
	user, _ = store.UserFor(42)
	if user != "bob@example.com" {
		t.Errorf("UserFor() after relink = %q, want bob@example.com", user)
	}
}
