package ports

import (
	"context"
	"time"

	"github.com/aretw0/stepform/pkg/domain"
)

// SessionStore persists session payloads between requests.
type SessionStore interface {
	// Save persists the session under data.ID, replacing any previous value.
	Save(ctx context.Context, data *domain.SessionData) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionData, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes session updates across server replicas
// sharing one store. The session Manager takes it around every read-modify-write.
type DistributedLocker interface {
	// Lock waits until key is free or ctx is done. The lock expires after ttl
	// if it is never released. The returned UnlockFunc must always be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
