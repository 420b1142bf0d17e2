// ABOUTME: MCP tool definitions and registration for the assistant server
// ABOUTME: Exposes chat, brief, knowledge base, and reminder tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/aide/internal/kb"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, chat ChatHandler, briefs BriefSource, creds CredentialSource, store *kb.Store, defaultUser string) *Handlers {
	handlers := &Handlers{
		chat:        chat,
		briefs:      briefs,
		creds:       creds,
		kb:          store,
		defaultUser: defaultUser,
	}

	userProp := map[string]interface{}{
		"type":        "string",
		"description": "Account email; defaults to the configured user",
	}

	// 1. chat - run one message through the assistant
	server.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Send a message to the personal assistant. The assistant can manage the calendar, knowledge base, and reminders.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Message for the assistant",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation session id (default: mcp)",
				},
				"user": userProp,
			},
			Required: []string{"message"},
		},
	}, handlers.Chat)

	// 2. generate_brief - today's schedule and due reminders
	server.AddTool(mcp.Tool{
		Name:        "generate_brief",
		Description: "Generate the daily brief: today's calendar events plus reminders due today.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": userProp,
			},
		},
	}, handlers.GenerateBrief)

	// 3. get_knowledge_base - full document as Markdown
	server.AddTool(mcp.Tool{
		Name:        "get_knowledge_base",
		Description: "Read the user's full knowledge base document as Markdown.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": userProp,
			},
		},
	}, handlers.GetKnowledgeBase)

	// 4. update_knowledge_base - append to one section
	server.AddTool(mcp.Tool{
		Name:        "update_knowledge_base",
		Description: "Append a note to a section of the knowledge base. Sections: About Me, Important People, Work Context, Preferences, Custom Reminders, Notes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"section": map[string]interface{}{
					"type":        "string",
					"description": "Section name",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Text to append",
				},
				"user": userProp,
			},
			Required: []string{"section", "content"},
		},
	}, handlers.UpdateKnowledgeBase)

	// 5. list_reminders
	server.AddTool(mcp.Tool{
		Name:        "list_reminders",
		Description: "List the user's reminders with ids and recurrence.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user": userProp,
			},
		},
	}, handlers.ListReminders)

	// 6. add_reminder
	server.AddTool(mcp.Tool{
		Name:        "add_reminder",
		Description: "Add a reminder. Recurrence is none, daily, weekly, yearly, or date (single-fire on the given day).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Reminder text",
				},
				"recurrence": map[string]interface{}{
					"type":        "string",
					"description": "none, daily, weekly, yearly, or date",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "YYYY-MM-DD, required for yearly and date recurrence",
				},
				"user": userProp,
			},
			Required: []string{"text"},
		},
	}, handlers.AddReminder)

	// 7. remove_reminder
	server.AddTool(mcp.Tool{
		Name:        "remove_reminder",
		Description: "Remove a reminder by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"reminder_id": map[string]interface{}{
					"type":        "string",
					"description": "Reminder id from list_reminders",
				},
				"user": userProp,
			},
			Required: []string{"reminder_id"},
		},
	}, handlers.RemoveReminder)

	return handlers
}
