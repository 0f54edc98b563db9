// Package sessioncache keeps the single upstream session token and refreshes it
// through a caller-supplied login when it is missing or expired.
package sessioncache

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/jrsteele09/office-roster/internal/metrics"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a fresh login is reused.
const DefaultTTL = 30 * 24 * time.Hour

// LoginFunc obtains a fresh session token from the upstream service.
type LoginFunc func(ctx context.Context) (string, error)

// Cache hands out a valid upstream token. It does not lock around refresh:
// concurrent misses may each log in and store an equally valid token.
type Cache struct {
	store   Store
	ttl     time.Duration
	nowTime func() time.Time
}

// Option modifies a Cache.
type Option func(*Cache)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Cache) {
		c.nowTime = nowFunc
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New creates a Cache over store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		ttl:     DefaultTTL,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetValidToken returns the cached token while it is unexpired, otherwise logs in,
// caches the new token for the TTL and returns it. Login failures are returned as
// UpstreamAuthError.
func (c *Cache) GetValidToken(ctx context.Context, login LoginFunc) (Token, error) {
	now := c.nowTime()

	cached, found, err := c.store.Get(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Upstream session store read failed, logging in again")
		metrics.SessionCacheLookup("miss")
	case found && cached.ValidAt(now):
		metrics.SessionCacheLookup("hit")
		return cached, nil
	case found:
		metrics.SessionCacheLookup("expired")
	default:
		metrics.SessionCacheLookup("miss")
	}

	value, err := login(ctx)
	if err != nil {
		var authErr *apperrors.UpstreamAuthError
		if errors.As(err, &authErr) {
			return Token{}, err
		}
		return Token{}, &apperrors.UpstreamAuthError{Err: err}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Token{}, &apperrors.UpstreamAuthError{Err: errors.New("login returned no session token")}
	}

	token := Token{Value: value, ExpiresAt: now.Add(c.ttl)}
	if err := c.store.Set(ctx, token, c.ttl); err != nil {
		log.Warn().Err(err).Msg("Failed to cache upstream session token")
	}
	log.Info().Time("expires_at", token.ExpiresAt).Msg("Upstream session refreshed")
	return token, nil
}

// Invalidate drops the cached token so the next GetValidToken logs in again.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate upstream session token")
		return
	}
	log.Debug().Msg("Upstream session invalidated, will log in on next request")
}
