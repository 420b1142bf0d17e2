// ABOUTME: ConversationTurn is one message in a user's session history
// ABOUTME: Append-only, ordered by creation time, read back most-recent-N
package models

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ConversationTurn is a single history row.
type ConversationTurn struct {
	UserEmail string    `json:"user_email"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
