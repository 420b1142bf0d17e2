// ABOUTME: MCP tool handler implementations for the assistant server
// ABOUTME: Errors come back as tool results, never as protocol failures
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/models"
)

// ChatHandler runs one user message through the agent.
type ChatHandler interface {
	HandleMessage(ctx context.Context, user, session, text string) (string, error)
}

// BriefSource produces the daily brief text.
type BriefSource interface {
	Generate(ctx context.Context, cred models.Credential, user string) (string, error)
}

// CredentialSource resolves a user's calendar credential.
type CredentialSource interface {
	CredentialFor(ctx context.Context, user string) (*models.Credential, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	chat        ChatHandler
	briefs      BriefSource
	creds       CredentialSource
	kb          *kb.Store
	defaultUser string
}

func (h *Handlers) user(request mcp.CallToolRequest) (string, error) {
	user := request.GetString("user", h.defaultUser)
	if user == "" {
		return "", fmt.Errorf("no user given and no default user configured")
	}
	return user, nil
}

// Chat handles the chat tool
func (h *Handlers) Chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	session := request.GetString("session_id", "mcp")

	reply, err := h.chat.HandleMessage(ctx, user, session, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}
	return mcp.NewToolResultText(reply), nil
}

// GenerateBrief handles the generate_brief tool
func (h *Handlers) GenerateBrief(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cred, err := h.creds.CredentialFor(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Google Calendar is not connected for %s", user)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading credential: %v", err)), nil
	}
	text, err := h.briefs.Generate(ctx, *cred, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generating brief: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// GetKnowledgeBase handles the get_knowledge_base tool
func (h *Handlers) GetKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := h.kb.Load(user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading knowledge base: %v", err)), nil
	}
	return mcp.NewToolResultText(string(doc.Marshal())), nil
}

// UpdateKnowledgeBase handles the update_knowledge_base tool
func (h *Handlers) UpdateKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := request.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError("section argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.kb.AppendSection(user, section, content); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("updating knowledge base: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"success":true,"section":%q}`, section)), nil
}

// ListReminders handles the list_reminders tool
func (h *Handlers) ListReminders(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reminders, err := h.kb.Reminders(user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing reminders: %v", err)), nil
	}
	raw, err := json.Marshal(map[string]interface{}{"reminders": reminders})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// AddReminder handles the add_reminder tool
func (h *Handlers) AddReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec := models.Recurrence(request.GetString("recurrence", string(models.RecurrenceNone)))
	if !models.ValidRecurrence(rec) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown recurrence %q", rec)), nil
	}
	date := request.GetString("date", "")
	if (rec == models.RecurrenceYearly || rec == models.RecurrenceDate) && date == "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s recurrence needs a date", rec)), nil
	}

	reminder := models.NewReminder(text, rec, date)
	if err := h.kb.AppendReminder(user, reminder); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving reminder: %v", err)), nil
	}
	raw, err := json.Marshal(reminder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// RemoveReminder handles the remove_reminder tool
func (h *Handlers) RemoveReminder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("reminder_id")
	if err != nil {
		return mcp.NewToolResultError("reminder_id argument is required and must be a string"), nil
	}
	user, err := h.user(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.kb.RemoveReminder(user, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no reminder with id %s", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("removing reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"success":true,"removed":%q}`, id)), nil
}
