// ABOUTME: Credential store: one OAuth token record per user
// ABOUTME: Overwritten on refresh, never versioned, never logged
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/aide/internal/models"
)

// CredentialStore handles OAuth token persistence
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Put inserts or overwrites the user's credential record.
func (s *CredentialStore) Put(cred *models.Credential) error {
	_, err := s.db.conn.Exec(`
		INSERT INTO credentials (user_email, access_token, refresh_token, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_email) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`, cred.UserID, cred.AccessToken, cred.RefreshToken, cred.Expiry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing credential for %s: %v: %w", cred.UserID, err, models.ErrIO)
	}
	return nil
}

// Get returns the user's credential record, or ErrNotFound if the user has
// never signed in.
func (s *CredentialStore) Get(user string) (*models.Credential, error) {
	var cred models.Credential
	var expiry sql.NullTime
	err := s.db.conn.QueryRow(`
		SELECT user_email, access_token, refresh_token, expiry
		FROM credentials WHERE user_email = ?
	`, user).Scan(&cred.UserID, &cred.AccessToken, &cred.RefreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credential for %s: %w", user, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential for %s: %v: %w", user, err, models.ErrIO)
	}
	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	return &cred, nil
}
