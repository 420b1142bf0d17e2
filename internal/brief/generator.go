// ABOUTME: Builds the daily brief from calendar events, due reminders, and
// ABOUTME: knowledge base context, with an LLM polish pass when available
package brief

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harper/aide/internal/calendar"
	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/llm"
	"github.com/harper/aide/internal/models"
)

const briefAnalysisPrompt = `You review a personal assistant's daily brief.
Given the rendered brief and the user's knowledge base, write one or two
plain-text sentences on what might be missing or worth preparing for, such
as a commitment mentioned in the knowledge base but absent from the
schedule, or an event that needs travel or prep time. Respond with the
analysis only. Do not greet the user and do not restate the brief.`

// Generator assembles the daily brief for one user. With chat set, a short
// model-written analysis of what might be missing is appended to the
// rendered brief; without it, or when the model fails, the plain rendering
// is returned as-is.
type Generator struct {
	kb    *kb.Store
	svc   calendar.Service
	chat  llm.Chatter
	loc   *time.Location
	clock func() time.Time
}

// NewGenerator builds a brief generator. chat may be nil.
func NewGenerator(store *kb.Store, svc calendar.Service, chat llm.Chatter, loc *time.Location) *Generator {
	return &Generator{kb: store, svc: svc, chat: chat, loc: loc, clock: time.Now}
}

// Generate produces the brief for user. Calendar failures degrade to a
// brief without events rather than failing the whole run.
func (g *Generator) Generate(ctx context.Context, cred models.Credential, user string) (string, error) {
	now := g.clock().In(g.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc)
	to := from.AddDate(0, 0, 1)

	events, err := g.svc.EventsBetween(ctx, cred, from, to)
	if err != nil {
		log.Printf("warning: brief for %s: calendar unavailable: %v", user, err)
		events = nil
	}

	reminders, err := g.kb.Reminders(user)
	if err != nil {
		return "", fmt.Errorf("loading reminders for brief: %w", err)
	}
	var due []models.Reminder
	for _, r := range reminders {
		if r.DueOn(now) {
			due = append(due, r)
		}
	}

	plain := renderPlain(now, events, due)
	if g.chat == nil {
		return plain, nil
	}

	kbContext, err := g.kb.ChatContext(user)
	if err != nil {
		return "", fmt.Errorf("loading knowledge base for brief: %w", err)
	}
	reply, err := g.chat.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: briefAnalysisPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("%s\n\n%s", plain, kbContext)},
	}, nil)
	if err != nil || strings.TrimSpace(reply.Content) == "" {
		log.Printf("warning: brief for %s: skipping analysis: %v", user, err)
		return plain, nil
	}
	return fmt.Sprintf("%s\nWorth a look:\n  %s\n", plain, strings.TrimSpace(reply.Content)), nil
}

func renderPlain(now time.Time, events []models.Event, due []models.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily brief for %s\n\n", now.Format("Monday, January 2, 2006"))

	b.WriteString("Schedule:\n")
	if len(events) == 0 {
		b.WriteString("  No events today.\n")
	}
	for _, ev := range events {
		if ev.AllDay {
			fmt.Fprintf(&b, "  All day: %s\n", ev.Title)
			continue
		}
		fmt.Fprintf(&b, "  %s - %s: %s", ev.Start.Format("15:04"), ev.End.Format("15:04"), ev.Title)
		if ev.Location != "" {
			fmt.Fprintf(&b, " (%s)", ev.Location)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nReminders due:\n")
	if len(due) == 0 {
		b.WriteString("  None.\n")
	}
	for _, r := range due {
		fmt.Fprintf(&b, "  - %s\n", r.Text)
	}
	return b.String()
}
