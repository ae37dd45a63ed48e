package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned when an OAuth state is unknown or already used.
var ErrStateNotFound = errors.New("oauth state not found")

func nonceKey(deviceID, nonce string) string {
	return fmt.Sprintf("sig:nonce:%s:%s", deviceID, nonce)
}

func oauthStateKey(state string) string {
	return "oauth:state:" + state
}

// NonceStore remembers signed-request nonces so a signature cannot be replayed.
type NonceStore struct {
	client *redis.Client
}

func NewNonceStore(client *redis.Client) *NonceStore {
	return &NonceStore{client: client}
}

// Claim records the nonce and reports whether it was unused.
func (s *NonceStore) Claim(ctx context.Context, deviceID, nonce string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, nonceKey(deviceID, nonce), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim nonce: %w", err)
	}
	return ok, nil
}

// StateStore keeps short-lived OAuth login state.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Save(ctx context.Context, state, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, oauthStateKey(state), value, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// Take returns the stored value and deletes it, so a state is single use.
func (s *StateStore) Take(ctx context.Context, state string) (string, error) {
	value, err := s.client.GetDel(ctx, oauthStateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("take oauth state: %w", err)
	}
	return value, nil
}
