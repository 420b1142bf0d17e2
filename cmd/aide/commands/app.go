// ABOUTME: Shared application wiring for CLI commands
// ABOUTME: Builds config, stores, clients, and the orchestrator once
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/harper/aide/internal/agent"
	"github.com/harper/aide/internal/auth"
	"github.com/harper/aide/internal/brief"
	"github.com/harper/aide/internal/calendar"
	"github.com/harper/aide/internal/config"
	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/llm"
	"github.com/harper/aide/internal/scheduler"
	"github.com/harper/aide/internal/storage/sqlite"
)

// app bundles everything a command might need.
type app struct {
	cfg    *config.Config
	db     *sqlite.DB
	kb     *kb.Store
	turns  *sqlite.ConversationStore
	links  *sqlite.LinkStore
	auth   *auth.Manager
	chat   *llm.Client
	cal    *calendar.Adapter
	agent  *agent.Orchestrator
	briefs *brief.Generator
	mirror *kb.CharmMirror
}

// buildApp wires the full application. Commands that do not chat (kb,
// reminders) tolerate a missing OpenAI key; chat-driven ones check
// app.chat themselves.
func buildApp() (*app, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{
		cfg:   cfg,
		db:    db,
		kb:    kb.NewStore(cfg.DataDir),
		turns: sqlite.NewConversationStore(db),
		links: sqlite.NewLinkStore(db),
	}

	if cfg.CharmSync {
		mirror, err := kb.NewCharmMirror(cfg.CharmHost, cfg.CharmDBName)
		if err != nil {
			log.Printf("warning: charm sync disabled: %v", err)
		} else {
			a.mirror = mirror
			a.kb.SetMirror(mirror)
		}
	}

	a.auth = auth.NewManager(sqlite.NewCredentialStore(db), cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	loc := cfg.Location()
	var backend calendar.Service
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		backend = calendar.NewGoogleService(a.auth, loc)
	} else {
		if verbose {
			log.Println("Google OAuth not configured, using the in-memory calendar")
		}
		backend = calendar.NewFake()
	}
	a.cal = calendar.NewAdapter(backend, loc)

	if cfg.OpenAIKey != "" {
		client, err := llm.NewClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing OpenAI client: %w", err)
		}
		a.chat = client
	}

	var chatForBrief llm.Chatter
	if a.chat != nil {
		chatForBrief = a.chat
	}
	a.briefs = brief.NewGenerator(a.kb, backend, chatForBrief, loc)

	if a.chat != nil {
		a.agent = agent.NewOrchestrator(a.chat, a.cal, a.kb, a.turns, a.auth, a.briefs, loc)
		a.agent.SetHistoryWindow(cfg.HistoryWindow)
		a.agent.SetMaxToolCalls(cfg.MaxToolCalls)
		if cfg.SMTPAddress != "" && cfg.SMTPPassword != "" {
			a.agent.SetMailer(scheduler.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPAddress, cfg.SMTPPassword))
		}
	}

	return a, nil
}

// Close releases the database and the charm mirror.
func (a *app) Close() {
	if a.mirror != nil {
		a.mirror.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// requireAgent fails loudly when chat features are used without an API key.
func (a *app) requireAgent() (*agent.Orchestrator, error) {
	if a.agent == nil {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set; chat features need it")
	}
	return a.agent, nil
}

// resolveUser picks the acting account: --user flag, then BRIEF_USER.
func (a *app) resolveUser() (string, error) {
	if asUser != "" {
		return asUser, nil
	}
	if a.cfg.BriefUser != "" {
		return a.cfg.BriefUser, nil
	}
	return "", fmt.Errorf("no user given: pass --user or set BRIEF_USER")
}
