// ABOUTME: Chat orchestrator: bounded tool-call loop between the model and
// ABOUTME: the calendar, knowledge base, and reminder tools
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harper/aide/internal/calendar"
	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/llm"
	"github.com/harper/aide/internal/models"
	"github.com/harper/aide/internal/storage/sqlite"
)

// DefaultMaxToolCalls bounds how many tool invocations one user message
// may trigger. Calls past the bound are answered with a limit notice
// instead of being executed.
const DefaultMaxToolCalls = 5

// DefaultHistoryWindow is how many recent turns seed the model context.
const DefaultHistoryWindow = 20

const limitNotice = `{"ok":false,"message":"tool call limit reached for this message; answer with the information you already have"}`

// CredentialSource resolves a user's Google credential. auth.Manager
// implements it; tests substitute a stub.
type CredentialSource interface {
	CredentialFor(ctx context.Context, user string) (*models.Credential, error)
}

// BriefSource produces a daily brief on demand for the
// generate_daily_brief tool.
type BriefSource interface {
	Generate(ctx context.Context, cred models.Credential, user string) (string, error)
}

// MailSender delivers outbound mail for the send_email tool.
// scheduler.Mailer implements it.
type MailSender interface {
	Send(to, subject, body string) error
}

// Orchestrator runs one user message through the model, executing
// requested tools until the model produces a final answer or the tool-call
// bound is hit. Tool failures are reported to the model, never raised.
type Orchestrator struct {
	chat   llm.Chatter
	cal    *calendar.Adapter
	kb     *kb.Store
	turns  *sqlite.ConversationStore
	creds  CredentialSource
	briefs BriefSource
	mail   MailSender

	historyWindow int
	maxToolCalls  int
	loc           *time.Location
	clock         func() time.Time
}

// NewOrchestrator wires the orchestrator. briefs may be nil, in which case
// generate_daily_brief reports itself unavailable.
func NewOrchestrator(chat llm.Chatter, cal *calendar.Adapter, store *kb.Store, turns *sqlite.ConversationStore, creds CredentialSource, briefs BriefSource, loc *time.Location) *Orchestrator {
	return &Orchestrator{
		chat:          chat,
		cal:           cal,
		kb:            store,
		turns:         turns,
		creds:         creds,
		briefs:        briefs,
		historyWindow: DefaultHistoryWindow,
		maxToolCalls:  DefaultMaxToolCalls,
		loc:           loc,
		clock:         time.Now,
	}
}

// SetHistoryWindow overrides the history window when positive.
func (o *Orchestrator) SetHistoryWindow(n int) {
	if n > 0 {
		o.historyWindow = n
	}
}

// SetMaxToolCalls overrides the tool-call bound when positive.
func (o *Orchestrator) SetMaxToolCalls(n int) {
	if n > 0 {
		o.maxToolCalls = n
	}
}

// SetMailer enables the send_email tool. Without it the tool reports
// itself unavailable.
func (o *Orchestrator) SetMailer(m MailSender) {
	o.mail = m
}

// HandleMessage runs one user message to completion and returns the
// assistant's reply. All turns produced by the exchange, including tool
// result turns, are persisted as one batch after the loop finishes.
func (o *Orchestrator) HandleMessage(ctx context.Context, user, session, text string) (string, error) {
	system, err := o.systemPrompt(user)
	if err != nil {
		return "", fmt.Errorf("assembling context for %s: %v: %w", user, err, models.ErrContextUnavailable)
	}
	history, err := o.turns.LoadRecent(user, session, o.historyWindow)
	if err != nil {
		return "", fmt.Errorf("loading history for %s: %v: %w", user, err, models.ErrContextUnavailable)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, turn := range history {
		// Tool turns are kept for the record but not replayed; the model
		// only needs the user/assistant thread.
		switch turn.Role {
		case models.RoleUser:
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: turn.Content})
		case models.RoleAssistant:
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: turn.Content})
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})

	now := o.clock()
	batch := []models.ConversationTurn{{
		UserEmail: user,
		SessionID: session,
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: now,
	}}

	executed := 0
	limited := false
	var final string
	for {
		tools := toolSpecs
		if limited {
			tools = nil
		}
		reply, err := o.chat.Complete(ctx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("model completion for %s: %w", user, err)
		}
		if len(reply.ToolCalls) == 0 {
			final = reply.Content
			break
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			var content string
			if executed >= o.maxToolCalls {
				limited = true
				content = limitNotice
				log.Printf("user %s: discarding tool call %s past the limit of %d", user, call.Name, o.maxToolCalls)
			} else {
				executed++
				res := o.dispatch(ctx, user, call)
				content = renderResult(res)
				batch = append(batch, models.ConversationTurn{
					UserEmail: user,
					SessionID: session,
					Role:      models.RoleTool,
					Content:   fmt.Sprintf("%s: %s", call.Name, content),
					CreatedAt: o.clock(),
				})
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Content:    content,
			})
		}
	}

	batch = append(batch, models.ConversationTurn{
		UserEmail: user,
		SessionID: session,
		Role:      models.RoleAssistant,
		Content:   final,
		CreatedAt: o.clock(),
	})
	if err := o.turns.AppendBatch(batch); err != nil {
		log.Printf("warning: user %s: persisting conversation batch: %v", user, err)
	}
	return final, nil
}

// dispatch executes one requested tool call. Every outcome, including an
// unknown tool name, comes back as a result for the model.
func (o *Orchestrator) dispatch(ctx context.Context, user string, call llm.ToolCall) models.ToolResult {
	switch call.Name {
	case toolUpdateKnowledgeBase:
		return o.updateKnowledgeBase(user, call.Args)
	case toolAddReminder:
		return o.addReminder(user, call.Args)
	case toolRemoveReminder:
		return o.removeReminder(user, call.Args)
	case toolListReminders:
		return o.listReminders(user)
	case toolGenerateDailyBrief:
		return o.generateBrief(ctx, user)
	case toolSendEmail:
		return o.sendEmail(user, call.Args)
	}
	if calendar.Known(call.Name) {
		cred, err := o.creds.CredentialFor(ctx, user)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ToolResult{OK: false, Message: "Google Calendar is not connected for this account; ask the user to link it first"}
			}
			return models.ToolResult{OK: false, Message: fmt.Sprintf("loading calendar credential: %v", err)}
		}
		return o.cal.Invoke(ctx, *cred, calendar.Action(call.Name), call.Args)
	}
	log.Printf("user %s: model requested unknown tool %q", user, call.Name)
	return models.ToolResult{OK: false, Message: fmt.Sprintf("unknown tool %q: %v", call.Name, models.ErrInvalidToolRequest)}
}

func (o *Orchestrator) updateKnowledgeBase(user string, raw json.RawMessage) models.ToolResult {
	var args updateKnowledgeBaseArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("update_knowledge_base: bad arguments: %v", err)}
	}
	if args.Section == "" || args.Content == "" {
		return models.ToolResult{OK: false, Message: "update_knowledge_base: section and content are required"}
	}
	if err := o.kb.AppendSection(user, args.Section, args.Content); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("updating knowledge base: %v", err)}
	}
	return models.ToolResult{OK: true, Message: fmt.Sprintf("added to %q", args.Section)}
}

func (o *Orchestrator) addReminder(user string, raw json.RawMessage) models.ToolResult {
	var args addReminderArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("add_reminder: bad arguments: %v", err)}
	}
	if args.Text == "" {
		return models.ToolResult{OK: false, Message: "add_reminder: text is required"}
	}
	rec := models.Recurrence(args.Recurrence)
	if args.Recurrence == "" {
		rec = models.RecurrenceNone
	}
	if !models.ValidRecurrence(rec) {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("add_reminder: unknown recurrence %q", args.Recurrence)}
	}
	if (rec == models.RecurrenceYearly || rec == models.RecurrenceDate) && args.Date == "" {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("add_reminder: %s recurrence needs a date", rec)}
	}
	r := models.NewReminder(args.Text, rec, args.Date)
	if err := o.kb.AppendReminder(user, r); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("saving reminder: %v", err)}
	}
	return models.ToolResult{OK: true, Message: fmt.Sprintf("added reminder %s: %s", r.ID, r.Text)}
}

func (o *Orchestrator) removeReminder(user string, raw json.RawMessage) models.ToolResult {
	var args removeReminderArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("remove_reminder: bad arguments: %v", err)}
	}
	if args.ReminderID == "" {
		return models.ToolResult{OK: false, Message: "remove_reminder: reminder_id is required"}
	}
	if err := o.kb.RemoveReminder(user, args.ReminderID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ToolResult{OK: false, Message: fmt.Sprintf("no reminder with id %s", args.ReminderID)}
		}
		return models.ToolResult{OK: false, Message: fmt.Sprintf("removing reminder: %v", err)}
	}
	return models.ToolResult{OK: true, Message: fmt.Sprintf("removed reminder %s", args.ReminderID)}
}

func (o *Orchestrator) listReminders(user string) models.ToolResult {
	reminders, err := o.kb.Reminders(user)
	if err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("listing reminders: %v", err)}
	}
	raw, err := json.Marshal(reminders)
	if err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("encoding reminders: %v", err)}
	}
	return models.ToolResult{OK: true, Message: string(raw)}
}

func (o *Orchestrator) generateBrief(ctx context.Context, user string) models.ToolResult {
	if o.briefs == nil {
		return models.ToolResult{OK: false, Message: "daily brief is not available on this channel"}
	}
	cred, err := o.creds.CredentialFor(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ToolResult{OK: false, Message: "Google Calendar is not connected for this account; ask the user to link it first"}
		}
		return models.ToolResult{OK: false, Message: fmt.Sprintf("loading calendar credential: %v", err)}
	}
	text, err := o.briefs.Generate(ctx, *cred, user)
	if err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("generating brief: %v", err)}
	}
	return models.ToolResult{OK: true, Message: text}
}

func (o *Orchestrator) sendEmail(user string, raw json.RawMessage) models.ToolResult {
	if o.mail == nil {
		return models.ToolResult{OK: false, Message: "email is not configured; set up SMTP first"}
	}
	var args sendEmailArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("send_email: bad arguments: %v", err)}
	}
	if args.To == "" || args.Subject == "" || args.Body == "" {
		return models.ToolResult{OK: false, Message: "send_email: to, subject, and body are required"}
	}
	if !strings.Contains(args.To, "@") {
		return models.ToolResult{OK: false, Message: fmt.Sprintf("send_email: %q is not an email address", args.To)}
	}
	if err := o.mail.Send(args.To, args.Subject, args.Body); err != nil {
		log.Printf("user %s: sending email to %s: %v", user, args.To, err)
		return models.ToolResult{OK: false, Message: fmt.Sprintf("sending email: %v", err)}
	}
	return models.ToolResult{OK: true, Message: fmt.Sprintf("email sent to %s", args.To)}
}

func (o *Orchestrator) systemPrompt(user string) (string, error) {
	kbContext, err := o.kb.ChatContext(user)
	if err != nil {
		return "", err
	}
	reminders, err := o.kb.Reminders(user)
	if err != nil {
		return "", err
	}
	remindersJSON, err := json.Marshal(reminders)
	if err != nil {
		remindersJSON = []byte("[]")
	}
	now := o.clock().In(o.loc)
	return fmt.Sprintf(`You are a personal assistant for %s. Be concise and practical.
Use the available tools to manage the user's calendar, knowledge base, and
reminders. Record lasting facts the user shares with update_knowledge_base.
Never invent calendar data; call a tool instead.

Current date and time: %s

%s

User's reminders:
%s`,
		user,
		now.Format("Monday, January 2, 2006 15:04 MST"),
		kbContext,
		remindersJSON,
	), nil
}
