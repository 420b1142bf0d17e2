// ABOUTME: Renders knowledge base content and reminders for LLM prompts
// ABOUTME: Used by the orchestrator context bundle and the daily brief
package kb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BriefContext renders the user's knowledge base plus reminders as a single
// text block for the daily brief prompt.
func (s *Store) BriefContext(user string) (string, error) {
	doc, err := s.Load(user)
	if err != nil {
		return "", err
	}
	reminders, err := s.Reminders(user)
	if err != nil {
		return "", err
	}

	remindersJSON, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		remindersJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("## Knowledge Base\n")
	b.Write(doc.Marshal())
	b.WriteString("\n## Reminders\n")
	b.Write(remindersJSON)
	b.WriteString("\n")
	return b.String(), nil
}

// ChatContext renders the user's knowledge base for the chat system prompt.
func (s *Store) ChatContext(user string) (string, error) {
	doc, err := s.Load(user)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User's Knowledge Base:\n%s", doc.Marshal()), nil
}
