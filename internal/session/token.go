package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// TokenKey is the bucket key holding the bearer token.
const TokenKey = "census_token"

// TokenStore keeps the auth token in the client key-value bucket. It
// satisfies auth.TokenStore.
type TokenStore struct {
	kv jetstream.KeyValue
}

// NewTokenStore wraps a key-value bucket.
func NewTokenStore(kv jetstream.KeyValue) *TokenStore {
	return &TokenStore{kv: kv}
}

// LoadToken returns the stored token, or "" when none is stored.
func (s *TokenStore) LoadToken(ctx context.Context) (string, error) {
	entry, err := s.kv.Get(ctx, TokenKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", TokenKey, err)
	}
	return string(entry.Value()), nil
}

// SaveToken replaces the stored token.
func (s *TokenStore) SaveToken(ctx context.Context, token string) error {
	if _, err := s.kv.PutString(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("writing %s: %w", TokenKey, err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an empty store is not an
// error.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	err := s.kv.Delete(ctx, TokenKey)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s: %w", TokenKey, err)
	}
	return nil
}
