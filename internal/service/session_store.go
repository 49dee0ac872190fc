package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

const sessionKeyPattern = "worklist:session:%s:filters"

// SessionStore persists the filter state of a session so it survives reloads.
type SessionStore struct {
	cache *CacheService
	ttl   time.Duration
}

// NewSessionStore constructs a SessionStore. A disabled cache makes every load a miss.
func NewSessionStore(cache *CacheService, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{cache: cache, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPattern, id)
}

// Load returns the persisted state, or nil when none exists.
func (s *SessionStore) Load(ctx context.Context, id string) (*models.FilterState, error) {
	var state models.FilterState
	hit, err := s.cache.Get(ctx, sessionKey(id), &state)
	if err != nil || !hit {
		return nil, err
	}
	return &state, nil
}

// Save writes the state with the session TTL.
func (s *SessionStore) Save(ctx context.Context, id string, state models.FilterState) error {
	return s.cache.Set(ctx, sessionKey(id), state, s.ttl)
}

// Clear removes the persisted state.
func (s *SessionStore) Clear(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKey(id))
}
