// ABOUTME: Credential is the per-user OAuth token record
// ABOUTME: Opaque to this system beyond expiry comparison; never logged
package models

import "time"

// Credential holds one user's OAuth tokens. Exactly one per user,
// overwritten on refresh.
type Credential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the access token has passed its expiry. A zero
// expiry is treated as non-expiring.
func (c *Credential) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}
