package domain

import "time"

// Session is what register and login hand back: the caller's profile and a fresh token.
type Session struct {
	User      Profile   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Revocation marks a token id as logged out until the token would have expired anyway.
type Revocation struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *Revocation) IsExpired(reference time.Time) bool {
	if r == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !r.ExpiresAt.After(reference)
}
