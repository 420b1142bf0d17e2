// ABOUTME: Bot tests against a local fake of the Bot API
// ABOUTME: covering linking, the unlinked prompt, /brief, and chat routing
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/harper/aide/internal/models"
	"github.com/harper/aide/internal/storage/sqlite"
)

const (
	testUser = "alice@example.com"
	testChat = int64(4242)
)

type sentMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// fakeAPI records sendMessage calls.
type fakeAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			http.NotFound(w, r)
			return
		}
		var msg sentMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.sent = append(f.sent, msg)
		f.mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	})
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1].Text
}

type stubChat struct {
	reply string
	calls int
	user  string
	text  string
}

func (s *stubChat) HandleMessage(_ context.Context, user, _ string, text string) (string, error) {
	s.calls++
	s.user, s.text = user, text
	return s.reply, nil
}

type stubBriefs struct{ text string }

func (s *stubBriefs) Generate(context.Context, models.Credential, string) (string, error) {
	return s.text, nil
}

type stubCreds struct{ known map[string]bool }

func (s *stubCreds) CredentialFor(_ context.Context, user string) (*models.Credential, error) {
	if !s.known[user] {
		return nil, fmt.Errorf("credential for %s: %w", user, models.ErrNotFound)
	}
	return &models.Credential{UserID: user, AccessToken: "tok"}, nil
}

type fixture struct {
	bot   *Bot
	api   *fakeAPI
	chat  *stubChat
	links *sqlite.LinkStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	chat := &stubChat{reply: "assistant says hi"}
	links := sqlite.NewLinkStore(db)
	creds := &stubCreds{known: map[string]bool{testUser: true}}
	bot := NewBot("test-token", chat, &stubBriefs{text: "today looks calm"}, creds, links)
	bot.SetBaseURL(srv.URL)
	return &fixture{bot: bot, api: api, chat: chat, links: links}
}

func textUpdate(chatID int64, text string) update {
	return update{UpdateID: 1, Message: &message{Chat: chatRef{ID: chatID}, Text: text}}
}

func TestUnlinkedChatGetsPromptAndNoHistory(t *testing.T) {
	f := newFixture(t)

	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "what's on today?"))

	if got := f.api.lastText(t); got != linkPrompt {
		t.Errorf("got %q, want the linking prompt", got)
	}
	if f.chat.calls != 0 {
		t.Errorf("orchestrator reached %d times for an unlinked chat", f.chat.calls)
	}
}

func TestStartLinksKnownAccount(t *testing.T) {
	f := newFixture(t)

	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "/start "+testUser))
	if got := f.api.lastText(t); !strings.Contains(got, "Linked to "+testUser) {
		t.Fatalf("got %q", got)
	}

	user, err := f.links.UserFor(testChat)
	if err != nil {
		t.Fatalf("UserFor: %v", err)
	}
	if user != testUser {
		t.Errorf("linked to %q", user)
	}
}

func TestStartRejectsUnknownAccount(t *testing.T) {
	f := newFixture(t)

	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "/start stranger@example.com"))
	if got := f.api.lastText(t); !strings.Contains(got, "No account found") {
		t.Errorf("got %q", got)
	}
	if _, err := f.links.UserFor(testChat); err == nil {
		t.Error("chat should not be linked")
	}
}

func TestStartValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name, text, want string
	}{
		{"no argument", "/start", "Usage:"},
		{"not an email", "/start bob", "does not look like an email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.bot.HandleUpdate(context.Background(), textUpdate(testChat, tt.text))
			if got := f.api.lastText(t); !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkedChatReachesOrchestrator(t *testing.T) {
	f := newFixture(t)
	if err := f.links.Link(testChat, testUser); err != nil {
		t.Fatalf("Link: %v", err)
	}

	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "remind me to stretch"))

	if got := f.api.lastText(t); got != "assistant says hi" {
		t.Errorf("got %q", got)
	}
	if f.chat.user != testUser || f.chat.text != "remind me to stretch" {
		t.Errorf("orchestrator saw user=%q text=%q", f.chat.user, f.chat.text)
	}
}

func TestBriefCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.links.Link(testChat, testUser); err != nil {
		t.Fatalf("Link: %v", err)
	}

	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "/brief"))
	if got := f.api.lastText(t); got != "today looks calm" {
		t.Errorf("got %q", got)
	}
}

func TestHelpCommand(t *testing.T) {
	f := newFixture(t)
	f.bot.HandleUpdate(context.Background(), textUpdate(testChat, "/help"))
	if got := f.api.lastText(t); !strings.Contains(got, "/start") {
		t.Errorf("got %q", got)
	}
}
