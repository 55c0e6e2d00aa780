// Package bolt provides a session store backed by a bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/stepform/pkg/domain"
)

var sessionsBucket = []byte("sessions")

// Store implements ports.SessionStore on a single bbolt database file.
// Sessions are JSON documents in one bucket keyed by session ID.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path. bbolt holds an exclusive
// file lock; Open gives up after a second if another process holds it.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, data *domain.SessionData) error {
	if data.ID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(data.ID), raw)
	})
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionData, error) {
	var data *domain.SessionData
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(sessionsBucket).Get([]byte(sessionID))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		// raw is only valid inside the transaction; Unmarshal copies it.
		data = &domain.SessionData{}
		if err := json.Unmarshal(raw, data); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data.Values == nil {
		data.Values = make(map[string]any)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(sessionID))
	})
}

// List returns the session IDs in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}
