// ABOUTME: Chat identity link store for the bot channel
// ABOUTME: Maps one chat id to one app user via the one-time /start command
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harper/aide/internal/models"
)

// LinkStore handles chat-identity to user mappings
type LinkStore struct {
	db *DB
}

// NewLinkStore creates a new LinkStore
func NewLinkStore(db *DB) *LinkStore {
	return &LinkStore{db: db}
}

// Link associates a chat id with a user, replacing any previous link for
// that chat.
func (s *LinkStore) Link(chatID int64, user string) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO chat_links (chat_id, user_email)
		VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET user_email = excluded.user_email
	`, chatID, user)
	if err != nil {
		return fmt.Errorf("linking chat %d: %v: %w", chatID, err, models.ErrIO)
	}
	return nil
}

// UserFor resolves a chat id to the linked user email, or ErrNotFound for
// an unlinked chat.
func (s *LinkStore) UserFor(chatID int64) (string, error) {
	var user string
	err := s.db.conn.QueryRow(`SELECT user_email FROM chat_links WHERE chat_id = ?`, chatID).Scan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("chat %d: %w", chatID, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolving chat %d: %v: %w", chatID, err, models.ErrIO)
	}
	return user, nil
}
