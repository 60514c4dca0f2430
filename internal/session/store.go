// Package session keeps the bearer token and cached profile between runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/finanzas/internal/model"
)

// Storage keys. They are always written and removed together.
const (
	TokenKey = "auth_token"
	UserKey  = "user_data"
)

// Backend is the persistent key-value storage behind a Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes all values in one step.
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Store holds the current session. Only the auth controller and the request
// pipeline's 401/403 handler write to it; everything else reads.
type Store struct {
	backend Backend
	logger  *slog.Logger
	balance *model.UserBalance
	session model.Session
	mu      sync.RWMutex
}

// NewStore wraps a backend. Call Load to restore a persisted session.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "session"),
	}
}

// Load restores the persisted session into memory. A half-written session
// (token without user or the reverse) or an unreadable profile is discarded.
func (s *Store) Load(ctx context.Context) (model.Session, error) {
	token, hasToken, err := s.backend.Get(ctx, TokenKey)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to read session token: %w", err)
	}
	rawUser, hasUser, err := s.backend.Get(ctx, UserKey)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to read session user: %w", err)
	}

	if !hasToken && !hasUser {
		return model.Session{}, nil
	}

	var user model.User
	if !hasToken || !hasUser || token == "" || json.Unmarshal([]byte(rawUser), &user) != nil {
		s.logger.Warn("discarding incomplete persisted session",
			"has_token", hasToken,
			"has_user", hasUser)
		return model.Session{}, s.Clear(ctx)
	}

	restored := model.Session{Token: token, User: user}

	s.mu.Lock()
	s.session = restored
	s.balance = nil
	s.mu.Unlock()

	return restored, nil
}

// Token returns the bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// User returns the cached profile.
func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User, s.session.Active()
}

// Session returns a copy of the current session.
func (s *Store) Session() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Save persists a new token and profile, replacing any previous session.
func (s *Store) Save(ctx context.Context, token string, user model.User) error {
	if token == "" {
		return fmt.Errorf("session token cannot be empty")
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(ctx, map[string]string{
		TokenKey: token,
		UserKey:  string(rawUser),
	}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.session = model.Session{Token: token, User: user}
	s.balance = nil

	return nil
}

// Clear drops the session from memory and storage. Memory is cleared even
// when the backend fails, so no further request carries the token.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = model.Session{}
	s.balance = nil

	if err := s.backend.Delete(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// SetBalance caches the latest balance for the current session.
func (s *Store) SetBalance(balance model.UserBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Active() {
		return
	}
	s.balance = &balance
}

// Balance returns the cached balance, if one was fetched this session.
func (s *Store) Balance() (model.UserBalance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.balance == nil {
		return model.UserBalance{}, false
	}
	return *s.balance, true
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
