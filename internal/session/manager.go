package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// liveTTL bounds how long an idle State stays in memory before its
// caches are dropped and reloaded on the next request.
const liveTTL = 30 * time.Minute

// Manager creates, resolves and destroys sessions. Persisted sessions live in
// the Store; the matching live States sit in an LRU cache keyed by session id.
type Manager struct {
	store  Store
	live   *cache.LRUCache[*State]
	ttl    time.Duration
	now    func() time.Time
	logger *applog.Logger
}

type ManagerConfig struct {
	// TTL applies when the token carries no expiry.
	TTL time.Duration
	// CacheSize caps the number of live States.
	CacheSize int
}

func NewManager(store Store, cfg ManagerConfig, logger *applog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 500
	}
	m := &Manager{
		store:  store,
		live:   cache.NewLRUCache[*State](cfg.CacheSize, liveTTL),
		ttl:    cfg.TTL,
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentSession),
	}
	m.live.OnEvict(func(id string, _ *State) {
		m.logger.Debug("Live session state evicted", applog.FieldSessionID, id)
	})
	return m
}

// Live exposes the in-memory cache so a cache.Manager can sweep it.
func (m *Manager) Live() cache.Cleaner {
	return m.live
}

// Create opens a session for a freshly authenticated user.
func (m *Manager) Create(ctx context.Context, user core.User, token string) (*State, error) {
	now := m.now()
	expires, ok := TokenExpiry(token)
	if !ok || expires.After(now.Add(m.ttl)) {
		expires = now.Add(m.ttl)
	}

	s := Session{
		ID:        uuid.NewString(),
		User:      user,
		Token:     token,
		CreatedAt: now.UTC(),
		ExpiresAt: expires.UTC(),
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	st := NewState(s)
	m.live.Set(s.ID, st)
	m.logger.InfoContext(ctx, "Session created",
		applog.FieldSessionID, s.ID,
		applog.FieldUserID, user.ID,
		"expires_at", s.ExpiresAt)
	return st, nil
}

// Get resolves a session id. Expired sessions are destroyed and reported as ErrExpired.
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	if st, ok := m.live.Get(id); ok {
		if st.Session().Expired(m.now()) {
			_ = m.Destroy(ctx, id)
			return nil, ErrExpired
		}
		m.live.Touch(id)
		return st, nil
	}

	s, err := m.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s.Expired(m.now()) {
		_ = m.Destroy(ctx, id)
		return nil, ErrExpired
	}

	// Concurrent loads of the same id must share one State.
	st, _ := m.live.GetOrSet(id, NewState(s))
	return st, nil
}

// Save persists profile changes made through the State.
func (m *Manager) Save(ctx context.Context, st *State) error {
	if err := m.store.SaveSession(ctx, st.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy drops the session everywhere. Destroying an unknown id is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.live.Delete(id)
	if err := m.store.DeleteSession(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.InfoContext(ctx, "Session destroyed", applog.FieldSessionID, id)
	return nil
}

// Sweep removes expired sessions from the store.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if n > 0 {
		m.logger.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.logger.WarnContext(ctx, "Session sweep failed", applog.FieldError, err)
			}
		}
	}
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}
