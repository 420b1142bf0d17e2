// ABOUTME: Main entry point for the aide MCP server with stdio transport
// ABOUTME: Wires stores, clients, and the agent, then serves MCP tools
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/aide/internal/agent"
	"github.com/harper/aide/internal/auth"
	"github.com/harper/aide/internal/brief"
	"github.com/harper/aide/internal/calendar"
	"github.com/harper/aide/internal/config"
	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/llm"
	"github.com/harper/aide/internal/mcp"
	"github.com/harper/aide/internal/scheduler"
	"github.com/harper/aide/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := kb.NewStore(cfg.DataDir)
	mgr := auth.NewManager(sqlite.NewCredentialStore(db), cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	loc := cfg.Location()
	var backend calendar.Service
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		backend = calendar.NewGoogleService(mgr, loc)
	} else {
		log.Println("Warning: Google OAuth not configured, using the in-memory calendar")
		backend = calendar.NewFake()
	}

	chat, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:     cfg.OpenAIKey,
		ChatModel:  cfg.ChatModel,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	briefs := brief.NewGenerator(store, backend, chat, loc)
	orch := agent.NewOrchestrator(chat, calendar.NewAdapter(backend, loc), store, sqlite.NewConversationStore(db), mgr, briefs, loc)
	orch.SetHistoryWindow(cfg.HistoryWindow)
	orch.SetMaxToolCalls(cfg.MaxToolCalls)
	if cfg.SMTPAddress != "" && cfg.SMTPPassword != "" {
		orch.SetMailer(scheduler.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPAddress, cfg.SMTPPassword))
	}

	server := mcpserver.NewMCPServer(
		"aide personal assistant",
		"0.1.0",
	)
	mcp.RegisterTools(server, orch, briefs, mgr, store, cfg.BriefUser)

	log.Println("aide MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
