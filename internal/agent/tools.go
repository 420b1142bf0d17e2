// ABOUTME: Tool definitions advertised to the model: calendar actions plus
// ABOUTME: knowledge base, reminder, and daily brief operations
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/aide/internal/llm"
	"github.com/harper/aide/internal/models"
)

// Assistant-side tool names. Calendar action names live in the calendar
// package catalog.
const (
	toolUpdateKnowledgeBase = "update_knowledge_base"
	toolAddReminder         = "add_reminder"
	toolRemoveReminder      = "remove_reminder"
	toolListReminders       = "list_reminders"
	toolGenerateDailyBrief  = "generate_daily_brief"
	toolSendEmail           = "send_email"
)

func schema(s string) json.RawMessage { return json.RawMessage(s) }

// toolSpecs is the full catalog sent with every completion request. The
// model can only request what is listed here.
var toolSpecs = []llm.ToolSpec{
	{
		Name:        "list_events_today",
		Description: "List all events on the user's calendar for today.",
		Parameters:  schema(`{"type":"object","properties":{}}`),
	},
	{
		Name:        "list_upcoming_events",
		Description: "List events on the user's calendar over the next N days (default 7).",
		Parameters: schema(`{"type":"object","properties":{
			"days":{"type":"integer","description":"How many days ahead to look"}
		}}`),
	},
	{
		Name:        "create_event",
		Description: "Create a calendar event with a start and end time.",
		Parameters: schema(`{"type":"object","properties":{
			"title":{"type":"string"},
			"date":{"type":"string","description":"YYYY-MM-DD"},
			"start":{"type":"string","description":"HH:MM, 24-hour"},
			"end":{"type":"string","description":"HH:MM, 24-hour"},
			"attendees":{"type":"array","items":{"type":"string"}},
			"location":{"type":"string"}
		},"required":["title","date","start","end"]}`),
	},
	{
		Name:        "create_recurring_yearly_event",
		Description: "Create an all-day event that repeats every year, such as a birthday or anniversary.",
		Parameters: schema(`{"type":"object","properties":{
			"title":{"type":"string"},
			"date":{"type":"string","description":"YYYY-MM-DD of the first occurrence"}
		},"required":["title","date"]}`),
	},
	{
		Name:        "find_free_slots",
		Description: "Find free time slots of a given length during working hours on a date.",
		Parameters: schema(`{"type":"object","properties":{
			"date":{"type":"string","description":"YYYY-MM-DD"},
			"duration_minutes":{"type":"integer"},
			"attendees":{"type":"array","items":{"type":"string"}}
		},"required":["date"]}`),
	},
	{
		Name:        "delete_event",
		Description: "Delete a calendar event by its id.",
		Parameters: schema(`{"type":"object","properties":{
			"event_id":{"type":"string"}
		},"required":["event_id"]}`),
	},
	{
		Name:        toolUpdateKnowledgeBase,
		Description: "Append a note to a section of the user's knowledge base. Use when the user shares a lasting fact about themselves, their people, work, or preferences.",
		Parameters: schema(`{"type":"object","properties":{
			"section":{"type":"string","description":"One of: About Me, Important People, Work Context, Preferences, Custom Reminders, Notes"},
			"content":{"type":"string"}
		},"required":["section","content"]}`),
	},
	{
		Name:        toolAddReminder,
		Description: "Add a reminder. Recurrence is one of none, daily, weekly, yearly, date; a date recurrence fires once on the given day.",
		Parameters: schema(`{"type":"object","properties":{
			"text":{"type":"string"},
			"recurrence":{"type":"string","enum":["none","daily","weekly","yearly","date"]},
			"date":{"type":"string","description":"YYYY-MM-DD, required for yearly and date recurrence"}
		},"required":["text"]}`),
	},
	{
		Name:        toolRemoveReminder,
		Description: "Remove a reminder by its id. Use list_reminders first to find the id.",
		Parameters: schema(`{"type":"object","properties":{
			"reminder_id":{"type":"string"}
		},"required":["reminder_id"]}`),
	},
	{
		Name:        toolListReminders,
		Description: "List all of the user's reminders with their ids and recurrence.",
		Parameters:  schema(`{"type":"object","properties":{}}`),
	},
	{
		Name:        toolGenerateDailyBrief,
		Description: "Generate the user's daily brief: today's schedule plus due reminders.",
		Parameters:  schema(`{"type":"object","properties":{}}`),
	},
	{
		Name:        toolSendEmail,
		Description: "Send an email on the user's behalf. Confirm the recipient and content with the user before calling this.",
		Parameters: schema(`{"type":"object","properties":{
			"to":{"type":"string","description":"Recipient email address"},
			"subject":{"type":"string"},
			"body":{"type":"string","description":"Plain text body"}
		},"required":["to","subject","body"]}`),
	},
}

type updateKnowledgeBaseArgs struct {
	Section string `json:"section"`
	Content string `json:"content"`
}

type addReminderArgs struct {
	Text       string `json:"text"`
	Recurrence string `json:"recurrence"`
	Date       string `json:"date"`
}

type removeReminderArgs struct {
	ReminderID string `json:"reminder_id"`
}

type sendEmailArgs struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// renderResult serializes a tool result for the tool message fed back to
// the model.
func renderResult(res models.ToolResult) string {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"message":"encoding tool result: %s"}`, strings.ReplaceAll(err.Error(), `"`, `'`))
	}
	return string(raw)
}
