package sessioncache

import (
	"context"
	"time"
)

// Token is an opaque upstream session credential and the time it stops being reused.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the token is usable at now.
func (t Token) ValidAt(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// Store holds at most one token. A Get must never observe a partially written token.
type Store interface {
	// Get returns the stored token, if any
	Get(ctx context.Context) (Token, bool, error)

	// Set replaces the stored token, keeping it for ttl. A non-positive ttl empties the slot.
	Set(ctx context.Context, token Token, ttl time.Duration) error

	// Delete empties the slot
	Delete(ctx context.Context) error
}
