// ABOUTME: Telegram channel: long-polling bot that routes chat messages to
// ABOUTME: the agent once a chat is linked to a known user
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harper/aide/internal/models"
	"github.com/harper/aide/internal/storage/sqlite"
)

const defaultBaseURL = "https://api.telegram.org"

const pollTimeout = 30 * time.Second

const linkPrompt = "This chat is not linked yet. Send /start your@email.com to link it."

// ChatHandler runs one user message through the agent.
type ChatHandler interface {
	HandleMessage(ctx context.Context, user, session, text string) (string, error)
}

// BriefSource produces the daily brief text for /brief.
type BriefSource interface {
	Generate(ctx context.Context, cred models.Credential, user string) (string, error)
}

// CredentialSource resolves a user's calendar credential. Linking requires
// one so a chat can only bind to an account that has signed in.
type CredentialSource interface {
	CredentialFor(ctx context.Context, user string) (*models.Credential, error)
}

// Bot is the Telegram channel adapter.
type Bot struct {
	token   string
	baseURL string
	client  *http.Client
	chat    ChatHandler
	briefs  BriefSource
	creds   CredentialSource
	links   *sqlite.LinkStore
	offset  int64
}

// NewBot wires the bot. briefs may be nil, which turns /brief into a
// polite refusal.
func NewBot(token string, chat ChatHandler, briefs BriefSource, creds CredentialSource, links *sqlite.LinkStore) *Bot {
	return &Bot{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: pollTimeout + 10*time.Second},
		chat:    chat,
		briefs:  briefs,
		creds:   creds,
		links:   links,
	}
}

// SetBaseURL points the bot at a different API host. Tests use it to run
// against a local server.
func (b *Bot) SetBaseURL(u string) {
	b.baseURL = strings.TrimRight(u, "/")
	b.client = &http.Client{Timeout: pollTimeout + 10*time.Second}
}

// update mirrors the subset of the Bot API update payload the bot reads.
type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Chat chatRef `json:"chat"`
	Text string  `json:"text"`
}

type chatRef struct {
	ID int64 `json:"id"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []update `json:"result"`
	Description string   `json:"description"`
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("telegram bot polling %s", b.baseURL)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		updates, err := b.getUpdates(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Printf("warning: telegram poll: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context) ([]update, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(b.offset, 10))
	q.Set("timeout", strconv.Itoa(int(pollTimeout.Seconds())))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.methodURL("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed updatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding getUpdates response: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates: %s", parsed.Description)
	}
	return parsed.Result, nil
}

// HandleUpdate routes one incoming update. Exported so tests can drive the
// bot without the polling loop.
func (b *Bot) HandleUpdate(ctx context.Context, u update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	chatID := u.Message.Chat.ID
	text := strings.TrimSpace(u.Message.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		b.handleStart(ctx, chatID, text)
	case text == "/help":
		b.reply(ctx, chatID, "Commands:\n/start your@email.com - link this chat\n/brief - today's brief\nAnything else goes to your assistant.")
	case text == "/brief":
		b.handleBrief(ctx, chatID)
	default:
		b.handleMessage(ctx, chatID, text)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		b.reply(ctx, chatID, "Usage: /start your@email.com")
		return
	}
	email := strings.ToLower(fields[1])
	if !strings.Contains(email, "@") {
		b.reply(ctx, chatID, fmt.Sprintf("%q does not look like an email address.", fields[1]))
		return
	}
	// Only accounts that have completed Google sign-in can be linked.
	if _, err := b.creds.CredentialFor(ctx, email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(ctx, chatID, fmt.Sprintf("No account found for %s. Sign in on the web first, then try again.", email))
			return
		}
		log.Printf("error: telegram link for %s: %v", email, err)
		b.reply(ctx, chatID, "Something went wrong while linking, try again later.")
		return
	}
	if err := b.links.Link(chatID, email); err != nil {
		log.Printf("error: saving telegram link for %s: %v", email, err)
		b.reply(ctx, chatID, "Something went wrong while linking, try again later.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Linked to %s. Say hello!", email))
}

func (b *Bot) handleBrief(ctx context.Context, chatID int64) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	if b.briefs == nil {
		b.reply(ctx, chatID, "The daily brief is not available right now.")
		return
	}
	cred, err := b.creds.CredentialFor(ctx, user)
	if err != nil {
		log.Printf("error: telegram brief credential for %s: %v", user, err)
		b.reply(ctx, chatID, "I could not reach your calendar, try again later.")
		return
	}
	text, err := b.briefs.Generate(ctx, *cred, user)
	if err != nil {
		log.Printf("error: telegram brief for %s: %v", user, err)
		b.reply(ctx, chatID, "I could not put your brief together, try again later.")
		return
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	session := fmt.Sprintf("telegram-%d", chatID)
	reply, err := b.chat.HandleMessage(ctx, user, session, text)
	if err != nil {
		log.Printf("error: telegram chat for %s: %v", user, err)
		b.reply(ctx, chatID, "Sorry, I could not answer that, try again.")
		return
	}
	b.reply(ctx, chatID, reply)
}

// linkedUser resolves the account behind a chat. Unlinked chats get the
// linking prompt and never reach the orchestrator.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (string, bool) {
	user, err := b.links.UserFor(chatID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(ctx, chatID, linkPrompt)
			return "", false
		}
		log.Printf("error: resolving telegram chat %d: %v", chatID, err)
		b.reply(ctx, chatID, "Something went wrong, try again later.")
		return "", false
	}
	return user, true
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		log.Printf("error: encoding telegram reply: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		log.Printf("error: building telegram reply: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.client.Do(req)
	if err != nil {
		log.Printf("error: sending telegram reply to chat %d: %v", chatID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("error: telegram sendMessage for chat %d: status %d: %s", chatID, resp.StatusCode, body)
	}
}

func (b *Bot) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
}
