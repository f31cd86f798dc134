// Package auth keeps the bearer token of the logged-in enumerator and
// issues and checks tokens for the development server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/logger"
)

// ErrNotLoggedIn is returned when no usable token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenStore persists the token between runs.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
}

// Manager caches the token in memory and mirrors changes to its store.
// It satisfies api.TokenSource.
type Manager struct {
	mu    sync.RWMutex
	store TokenStore
	token string
	now   func() time.Time
}

// NewManager loads any stored token.
func NewManager(ctx context.Context, store TokenStore) (*Manager, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	tok, err := store.LoadToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	return &Manager{store: store, token: tok, now: time.Now}, nil
}

// Token returns the current token or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Login authenticates and stores the returned token.
func (m *Manager) Login(ctx context.Context, authn Authenticator, creds api.Credentials) (*Claims, error) {
	tok, err := authn.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := m.store.SaveToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	logger.Info("Logged in as %s", creds.Username)
	claims, err := ParseClaims(tok)
	if err != nil {
		// Opaque tokens are still usable.
		return &Claims{Username: creds.Username}, nil
	}
	return claims, nil
}

// Logout forgets the token.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	if err := m.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	logger.Info("Logged out")
	return nil
}

// HandleUnauthorized is the api client's 401 hook.
func (m *Manager) HandleUnauthorized() {
	if err := m.Logout(context.Background()); err != nil {
		logger.Error("Failed to clear token after 401: %v", err)
	}
}

// Claims decodes the current token. It fails with ErrNotLoggedIn when no
// token is held or the token has expired.
func (m *Manager) Claims() (*Claims, error) {
	tok := m.Token()
	if tok == "" {
		return nil, ErrNotLoggedIn
	}
	claims, err := ParseClaims(tok)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	if claims.Expired(m.now()) {
		return nil, fmt.Errorf("%w: token expired", ErrNotLoggedIn)
	}
	return claims, nil
}

// LoggedIn reports whether a token is held.
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// MemoryStore keeps the token in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) LoadToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) ClearToken(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
