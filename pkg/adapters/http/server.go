package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/stepform/internal/logging"
	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/form"
	"github.com/aretw0/stepform/pkg/session"
)

// DefaultCookieName is the session cookie set by the server.
const DefaultCookieName = "stepform_session"

// DefaultMaxMemory bounds the multipart body kept in memory; file parts above
// it spill to disk.
const DefaultMaxMemory = 32 << 20

// Factory builds the view serving one request. Errors are mapped to HTTP
// statuses like dispatch errors (e.g. domain.ErrStepOutOfRange is a 404).
type Factory[V any] func(ctx context.Context, req *domain.Request) (V, error)

// Server binds form views to HTTP: it decodes requests, attaches the client
// session and renders dispatch results.
type Server struct {
	sessions   *session.Manager
	cookieName string
	secure     bool
	maxMemory  int64
	logger     *slog.Logger
	gatherer   prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithCookieName changes the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.cookieName = name
	}
}

// WithSecureCookie marks the session cookie Secure (HTTPS only).
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// WithMaxMemory changes the in-memory limit for multipart bodies.
func WithMaxMemory(n int64) Option {
	return func(s *Server) {
		s.maxMemory = n
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the given registry on /metrics.
// Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a server. sessions may be nil for stateless views.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:   sessions,
		cookieName: DefaultCookieName,
		maxMemory:  DefaultMaxMemory,
		logger:     logging.NewNop(),
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a chi router carrying the operational endpoints
// (/health, /metrics). Mount form routes on it with Route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// parseForm fills r.PostForm from urlencoded and multipart bodies alike.
func (s *Server) parseForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return r.ParseForm()
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return fmt.Errorf("content type %q: %w", ct, err)
	}
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(s.maxMemory)
	}
	return r.ParseForm()
}

// Route serves a form view on pattern: GET renders the view, POST dispatches
// the submitted action.
func Route[V any](r chi.Router, pattern string, s *Server, view *form.View[V], factory Factory[V]) {
	h := Handle(s, view, factory)
	r.Get(pattern, h)
	r.Post(pattern, h)
}

// Handle returns the handler serving a form view.
func Handle[V any](s *Server, view *form.View[V], factory Factory[V]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := s.parseForm(r); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		req := domain.NewRequest(r.Method, r.URL.Path, r.URL.Query(), r.PostForm)

		if s.sessions != nil {
			sess, err := s.openSession(w, r)
			if err != nil {
				s.fail(w, r, http.StatusInternalServerError, err)
				return
			}
			req.Session = sess
		}

		v, err := factory(ctx, req)
		if err != nil {
			s.fail(w, r, StatusFor(err), err)
			return
		}

		if r.Method != http.MethodPost {
			s.render(w, http.StatusOK, view.Namespace(v, req, nil))
			return
		}

		result, err := view.ProcessAction(ctx, v, req)
		if err != nil {
			s.fail(w, r, StatusFor(err), err)
			return
		}
		respond(s, w, r, view, v, req, result)
	}
}

// respond renders a handler result: redirects are followed, namespaces are
// merged into the view namespace (422 when they carry errors), nil is 204 and
// anything else is encoded as JSON.
func respond[V any](s *Server, w http.ResponseWriter, r *http.Request, view *form.View[V], v V, req *domain.Request, result any) {
	switch res := result.(type) {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case domain.Redirect:
		status := res.Status
		if status == 0 {
			status = http.StatusSeeOther
		}
		http.Redirect(w, r, res.Location, status)
	case domain.Namespace:
		status := http.StatusOK
		if errs, ok := res["errors"]; ok && !isEmpty(errs) {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, status, view.Namespace(v, req, res))
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	id := ""
	if c, err := r.Cookie(s.cookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.sessions.Open(r.Context(), id)
}

// render writes a namespace as JSON. The request entry is internal to the
// server and left out.
func (s *Server) render(w http.ResponseWriter, status int, ns domain.Namespace) {
	out := make(map[string]any, len(ns))
	for k, v := range ns {
		if k == "request" {
			continue
		}
		out[k] = v
	}
	if err := writeJSON(w, status, out); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}
	s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// StatusFor maps dispatch and wizard errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoActionSubmitted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrActionNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrStepOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func isEmpty(v any) bool {
	switch e := v.(type) {
	case nil:
		return true
	case map[string][]string:
		return len(e) == 0
	case map[string]any:
		return len(e) == 0
	default:
		return false
	}
}
