package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prediction-market-gateway/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNonceInUse is returned by Save when the nonce already has a live challenge.
var ErrNonceInUse = errors.New("challenge nonce already in use")

// ChallengeStore implements ports.ChallengeStore. Challenges are JSON
// values written with SET NX and read back once with GETDEL.
type ChallengeStore struct {
	client *goredis.Client
	prefix string
}

// NewChallengeStore creates a new Redis-backed challenge store.
func NewChallengeStore(client *goredis.Client) *ChallengeStore {
	return &ChallengeStore{
		client: client,
		prefix: "challenge:",
	}
}

// Save stores c under its nonce until ttl elapses.
func (s *ChallengeStore) Save(ctx context.Context, c *domain.Challenge, ttl time.Duration) error {
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}

	result, err := s.client.SetArgs(ctx, s.prefix+c.Nonce, value, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrNonceInUse
		}
		return fmt.Errorf("redis challenge save: %w", err)
	}
	if result != "OK" {
		return ErrNonceInUse
	}
	return nil
}

// Consume atomically reads and deletes the challenge for nonce.
func (s *ChallengeStore) Consume(ctx context.Context, nonce string) (*domain.Challenge, error) {
	value, err := s.client.GetDel(ctx, s.prefix+nonce).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis challenge consume: %w", err)
	}

	var c domain.Challenge
	if err := json.Unmarshal(value, &c); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &c, nil
}
