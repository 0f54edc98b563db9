package storefake

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/office-roster/upstream/sessioncache"
)

// FakeStore is an in-memory sessioncache.Store that ignores expiry and can be made to fail.
type FakeStore struct {
	mu      sync.Mutex
	token   *sessioncache.Token
	GetErr  error
	SetErr  error
	Sets    int
	Deletes int
	LastTTL time.Duration
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (f *FakeStore) Get(_ context.Context) (sessioncache.Token, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return sessioncache.Token{}, false, f.GetErr
	}
	if f.token == nil {
		return sessioncache.Token{}, false, nil
	}
	return *f.token, true, nil
}

func (f *FakeStore) Set(_ context.Context, token sessioncache.Token, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Sets++
	f.LastTTL = ttl
	if f.SetErr != nil {
		return f.SetErr
	}
	f.token = &token
	return nil
}

func (f *FakeStore) Delete(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Deletes++
	f.token = nil
	return nil
}

// Token returns the stored token, if any.
func (f *FakeStore) Token() (sessioncache.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token == nil {
		return sessioncache.Token{}, false
	}
	return *f.token, true
}
