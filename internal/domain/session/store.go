package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"autogest/internal/core/apperror"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

// Store owns the single active session. Only the auth gateway and the
// backend response inspector call Set and Clear.
type Store interface {
	// Bootstrap loads persisted session material. Absent, partial or
	// malformed material yields nil; it is never surfaced as an error.
	Bootstrap(ctx context.Context) *Session

	// Set replaces the current session and persists it.
	Set(ctx context.Context, s *Session) error

	// Clear destroys the current session and its persisted material.
	// Clearing an absent session is a no-op.
	Clear(ctx context.Context) error

	// Current returns a copy of the in-memory session, or nil.
	Current() *Session

	// Loaded reports whether Bootstrap has completed.
	Loaded() bool
}

// Keys are the fixed storage keys for session material.
type Keys struct {
	Token string
	User  string
}

// DefaultKeys returns the documented storage keys.
func DefaultKeys() Keys {
	return Keys{Token: "token", User: "user"}
}

// Manager implements Store over a Storage.
type Manager struct {
	storage Storage
	keys    Keys
	now     func() time.Time

	mu      sync.RWMutex
	current *Session
	loaded  atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager persisting under keys.
func NewManager(storage Storage, keys Keys, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		keys:    keys,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Compile-time check that Manager implements Store.
var _ Store = (*Manager)(nil)

// Bootstrap implements Store. Storage is read without holding the lock; a
// session installed by Set in the meantime wins over the persisted one and is
// never discarded.
func (m *Manager) Bootstrap(ctx context.Context) *Session {
	defer m.loaded.Store(true)

	s, reason := m.load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		logger.Info(ctx, "session installed during bootstrap, persisted material ignored")
		return nil
	}
	if s == nil {
		if reason != "" {
			logger.Warn(ctx, "discarding persisted session", "reason", reason)
			metrics.RecordTeardown(reason)
			if err := m.deleteLocked(ctx); err != nil {
				logger.Warn(ctx, "failed to clear persisted session", "error", err)
			}
		}
		return nil
	}

	m.current = s
	logger.Info(ctx, "session restored", "user_id", s.UserID, "role", s.Role)
	return s.Clone()
}

// load reads persisted material. A nil session with an empty reason means
// nothing was persisted.
func (m *Manager) load(ctx context.Context) (*Session, string) {
	token, tokenErr := m.storage.Get(ctx, m.keys.Token)
	raw, userErr := m.storage.Get(ctx, m.keys.User)

	if errors.Is(tokenErr, ErrNotFound) && errors.Is(userErr, ErrNotFound) {
		return nil, ""
	}
	for _, err := range []error{tokenErr, userErr} {
		if err != nil && !errors.Is(err, ErrNotFound) {
			logger.Warn(ctx, "failed to read persisted session", "error", err)
			return nil, "malformed"
		}
	}
	if tokenErr != nil || userErr != nil {
		return nil, "malformed"
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, "malformed"
	}

	s := FromIdentity(id, string(token))
	if !s.Complete() {
		return nil, "malformed"
	}
	if exp, ok := TokenExpiry(s.Token); ok && !exp.After(m.now()) {
		return nil, "expired"
	}
	return s, ""
}

// Set implements Store.
func (m *Manager) Set(ctx context.Context, s *Session) error {
	if !s.Complete() {
		return apperror.NewValidation("session requires a user id and a token")
	}

	raw, err := json.Marshal(s.Identity())
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Put(ctx, m.keys.Token, []byte(s.Token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.storage.Put(ctx, m.keys.User, raw); err != nil {
		if rbErr := m.restoreTokenLocked(ctx); rbErr != nil {
			// Storage no longer matches memory; drop both.
			m.current = nil
			return errors.Join(fmt.Errorf("persist user: %w", err), rbErr, m.deleteLocked(ctx))
		}
		return fmt.Errorf("persist user: %w", err)
	}

	m.current = s.Clone()
	return nil
}

// Clear implements Store. The in-memory session is dropped even when the
// storage delete fails.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	return m.deleteLocked(ctx)
}

// restoreTokenLocked puts back the persisted token of the current session
// after a failed Set, or removes it when there was none.
func (m *Manager) restoreTokenLocked(ctx context.Context) error {
	if m.current == nil {
		return m.storage.Delete(ctx, m.keys.Token)
	}
	return m.storage.Put(ctx, m.keys.Token, []byte(m.current.Token))
}

func (m *Manager) deleteLocked(ctx context.Context) error {
	return errors.Join(
		m.storage.Delete(ctx, m.keys.Token),
		m.storage.Delete(ctx, m.keys.User),
	)
}

// ClearIfToken clears the session only while token is still the current one.
// It reports whether a session was cleared.
// A rejection of an older token must not destroy a newer session.
func (m *Manager) ClearIfToken(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.Token != token {
		return false, nil
	}
	m.current = nil
	return true, m.deleteLocked(ctx)
}

// Current implements Store.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Loaded implements Store.
func (m *Manager) Loaded() bool {
	return m.loaded.Load()
}
