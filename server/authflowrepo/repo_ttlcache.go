package authflowrepo

import (
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
)

// TTLRepo keeps auth flow states in memory and forgets them after the timeout,
// so abandoned sign-ins do not accumulate.
type TTLRepo struct {
	cache *ttlcache.Cache[string, AuthFlowState]
}

var _ Repo = (*TTLRepo)(nil)

// NewTTLRepo creates a repo whose entries expire after timeout.
func NewTTLRepo(timeout time.Duration) *TTLRepo {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, AuthFlowState](timeout),
		ttlcache.WithDisableTouchOnHit[string, AuthFlowState](),
	)
	go cache.Start()

	return &TTLRepo{cache: cache}
}

// Upsert stores or updates an auth flow state
func (r *TTLRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	// Stored by value so later changes by the caller are not visible
	r.cache.Set(state, *authState, ttlcache.DefaultTTL)
	return nil
}

// Get retrieves an auth flow state by state parameter
func (r *TTLRepo) Get(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	item := r.cache.Get(state)
	if item == nil {
		return nil, apperrors.ErrNotFound
	}

	authState := item.Value()
	return &authState, nil
}

// Delete removes an auth flow state
func (r *TTLRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.cache.Delete(state)
	return nil
}

// Len returns the number of pending sign-ins.
func (r *TTLRepo) Len() int {
	return r.cache.Len()
}

// Close stops the expiry goroutine.
func (r *TTLRepo) Close() {
	r.cache.Stop()
}
