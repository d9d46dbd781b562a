package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prediction-market-gateway/internal/core/domain"
)

// ChallengeStore implements ports.ChallengeStore for single-instance runs
// without Redis.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]entry
	now        func() time.Time
}

type entry struct {
	challenge domain.Challenge
	expiresAt time.Time
}

// NewChallengeStore creates an empty in-memory challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{challenges: make(map[string]entry), now: time.Now}
}

func (s *ChallengeStore) Save(_ context.Context, c *domain.Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	if _, exists := s.challenges[c.Nonce]; exists {
		return fmt.Errorf("challenge nonce %s already in use", c.Nonce)
	}
	s.challenges[c.Nonce] = entry{challenge: *c, expiresAt: now.Add(ttl)}
	return nil
}

func (s *ChallengeStore) Consume(_ context.Context, nonce string) (*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.challenges[nonce]
	if !ok {
		return nil, nil
	}
	delete(s.challenges, nonce)
	if !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	c := e.challenge
	return &c, nil
}

func (s *ChallengeStore) evictExpired(now time.Time) {
	for nonce, e := range s.challenges {
		if !now.Before(e.expiresAt) {
			delete(s.challenges, nonce)
		}
	}
}
