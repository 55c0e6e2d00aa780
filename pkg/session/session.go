package session

import (
	"context"
	"maps"

	"github.com/aretw0/stepform/pkg/domain"
)

// Session is a request-scoped handle on a stored session. It implements
// domain.Session. Changes are buffered until Save, which applies only the
// keys touched through this handle on top of the latest stored payload, so
// concurrent requests editing different keys do not clobber each other.
//
// A Session is not safe for concurrent use.
type Session struct {
	manager *Manager
	id      string
	values  map[string]any
	isNew   bool

	changed map[string]bool
}

func newSession(m *Manager, data *domain.SessionData, isNew bool) *Session {
	values := data.Values
	if values == nil {
		values = make(map[string]any)
	}
	return &Session{
		manager: m,
		id:      data.ID,
		values:  values,
		isNew:   isNew,
		changed: make(map[string]bool),
	}
}

func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session did not exist in the store when opened
// and has not been saved since.
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key string, value any) {
	s.values[key] = value
	s.changed[key] = true
}

func (s *Session) Delete(key string) {
	delete(s.values, key)
	s.changed[key] = true
}

// Values returns a copy of the session values.
func (s *Session) Values() map[string]any {
	return maps.Clone(s.values)
}

// Save persists the keys changed since the last Save.
func (s *Session) Save(ctx context.Context) error {
	if len(s.changed) == 0 && !s.isNew {
		return nil
	}
	err := s.manager.Update(ctx, s.id, func(data *domain.SessionData) error {
		for key := range s.changed {
			if v, ok := s.values[key]; ok {
				data.Values[key] = v
			} else {
				delete(data.Values, key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.changed = make(map[string]bool)
	s.isNew = false
	return nil
}

// Destroy removes the session from the store and clears the handle.
func (s *Session) Destroy(ctx context.Context) error {
	if err := s.manager.Delete(ctx, s.id); err != nil {
		return err
	}
	s.values = make(map[string]any)
	s.changed = make(map[string]bool)
	s.isNew = true
	return nil
}

var _ domain.Session = (*Session)(nil)
