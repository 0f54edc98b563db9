package sessioncache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const slotKey = "upstream-session"

// MemoryStore keeps the token in process memory. It is lost on restart, which
// only costs one extra login.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Token]
}

// NewMemoryStore creates an in-memory store with a single slot.
func NewMemoryStore() *MemoryStore {
	cache := ttlcache.New(
		ttlcache.WithCapacity[string, Token](1),
		ttlcache.WithDisableTouchOnHit[string, Token](),
	)
	go cache.Start()

	return &MemoryStore{cache: cache}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context) (Token, bool, error) {
	item := s.cache.Get(slotKey)
	if item == nil {
		return Token{}, false, nil
	}
	return item.Value(), true, nil
}

// Set implements Store.Set. The entry is evicted after ttl.
func (s *MemoryStore) Set(_ context.Context, token Token, ttl time.Duration) error {
	if ttl <= 0 {
		s.cache.Delete(slotKey)
		return nil
	}
	s.cache.Set(slotKey, token, ttl)
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context) error {
	s.cache.Delete(slotKey)
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
