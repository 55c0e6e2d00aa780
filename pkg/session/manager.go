package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/stepform/internal/logging"
	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-session locks

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks. Defaults to DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open returns the session for sessionID. A session missing from the store
// starts empty and is only persisted on its first Save.
func (m *Manager) Open(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.New("session id is empty")
	}
	data, err := m.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.DebugContext(ctx, "starting new session", "session_id", sessionID)
		return newSession(m, domain.NewSessionData(sessionID), true), nil
	}
	if err != nil {
		return nil, err
	}
	return newSession(m, data, false), nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.SessionData, error) {
	var data *domain.SessionData
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		data, err = m.store.Load(ctx, sessionID)
		return err
	})
	return data, err
}

// Save persists the session payload.
func (m *Manager) Save(ctx context.Context, data *domain.SessionData) error {
	return m.WithLock(ctx, data.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, data)
	})
}

// Update applies fn to the latest stored payload (or an empty one) and saves
// the result, all under the session lock.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*domain.SessionData) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		data, err := m.store.Load(ctx, sessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			data = domain.NewSessionData(sessionID)
		} else if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if data.Values == nil {
			data.Values = make(map[string]any)
		}
		if err := fn(data); err != nil {
			return err
		}
		return m.store.Save(ctx, data)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
