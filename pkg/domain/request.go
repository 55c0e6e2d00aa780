package domain

import (
	"context"
	"net/http"
	"net/url"
)

// Request is the transport-neutral view of an inbound request as seen by
// triggers and wizards. Adapters (HTTP, tests) build it.
type Request struct {
	Method string
	Path   string

	// Query holds the URL query parameters.
	Query url.Values

	// Form holds the parsed body. Fields may be removed (the dispatcher strips
	// the routing field before calling a handler).
	Form url.Values

	// Session is the per-client key-value store. May be nil for stateless views.
	Session Session
}

// NewRequest builds a request with non-nil value maps.
func NewRequest(method, path string, query, form url.Values) *Request {
	if query == nil {
		query = url.Values{}
	}
	if form == nil {
		form = url.Values{}
	}
	return &Request{Method: method, Path: path, Query: query, Form: form}
}

// Param returns the first query parameter value for key.
func (r *Request) Param(key string) string {
	if r == nil || r.Query == nil {
		return ""
	}
	return r.Query.Get(key)
}

// Session is the client-scoped key-value bag persisted between requests.
// Set and Delete only affect the in-memory copy until Save is called.
type Session interface {
	ID() string
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Save(ctx context.Context) error
}

// SessionData is the persisted form of a Session.
type SessionData struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// NewSessionData creates an empty session payload.
func NewSessionData(id string) *SessionData {
	return &SessionData{ID: id, Values: make(map[string]any)}
}

// Clone copies the top-level values map so the copy can be mutated safely.
func (s *SessionData) Clone() *SessionData {
	if s == nil {
		return nil
	}
	out := &SessionData{ID: s.ID, Values: make(map[string]any, len(s.Values))}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return out
}

// Namespace is a render context handed to the presentation layer.
type Namespace map[string]any

// Redirect instructs the host to send the client elsewhere.
type Redirect struct {
	Location string `json:"location"`
	Status   int    `json:"status"`
}

// RedirectTo builds a 303 See Other redirect, the usual answer to a POST.
func RedirectTo(location string) Redirect {
	return Redirect{Location: location, Status: http.StatusSeeOther}
}
