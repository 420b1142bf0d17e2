// ABOUTME: Conversation history store backed by SQLite
// ABOUTME: Append-only batches per message; bounded most-recent-N reads
package sqlite

import (
	"fmt"

	"github.com/harper/aide/internal/models"
)

// ConversationStore handles conversation turn persistence
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// AppendBatch writes all turns for one incoming message in a single
// transaction. Either every turn is persisted or none are: a mid-loop
// crash must not leave partial turns behind.
func (s *ConversationStore) AppendBatch(turns []models.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %v: %w", err, models.ErrIO)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO conversation_turns (user_email, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %v: %w", err, models.ErrIO)
	}
	defer func() { _ = stmt.Close() }()

	for _, turn := range turns {
		if _, err := stmt.Exec(turn.UserEmail, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting turn: %v: %w", err, models.ErrIO)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing turns: %v: %w", err, models.ErrIO)
	}
	return nil
}

// LoadRecent returns the most recent n turns for a user/session,
// oldest-first. The result is a plain slice, re-readable by the caller.
func (s *ConversationStore) LoadRecent(user, session string, n int) ([]models.ConversationTurn, error) {
	rows, err := s.db.conn.Query(`
		SELECT user_email, session_id, role, content, created_at
		FROM (
			SELECT id, user_email, session_id, role, content, created_at
			FROM conversation_turns
			WHERE user_email = ? AND session_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`, user, session, n)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %v: %w", err, models.ErrIO)
	}
	defer func() { _ = rows.Close() }()

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.UserEmail, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %v: %w", err, models.ErrIO)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading turns: %v: %w", err, models.ErrIO)
	}
	return turns, nil
}

// CountForSession returns the number of turns stored for a user/session.
func (s *ConversationStore) CountForSession(user, session string) (int, error) {
	var n int
	err := s.db.conn.QueryRow(`
		SELECT COUNT(*) FROM conversation_turns
		WHERE user_email = ? AND session_id = ?
	`, user, session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %v: %w", err, models.ErrIO)
	}
	return n, nil
}
