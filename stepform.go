package stepform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stepform/internal/logging"
	stephttp "github.com/aretw0/stepform/pkg/adapters/http"
	"github.com/aretw0/stepform/pkg/adapters/memory"
	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/form"
	"github.com/aretw0/stepform/pkg/ports"
	"github.com/aretw0/stepform/pkg/registry"
	"github.com/aretw0/stepform/pkg/session"
	"github.com/aretw0/stepform/pkg/wizard"
)

// WizardServer serves one or more wizards over HTTP, sharing a session store.
type WizardServer struct {
	router   chi.Router
	server   *stephttp.Server
	sessions *session.Manager
	view     *form.View[*wizard.Form]
	cfg      config
}

type config struct {
	store      ports.SessionStore
	locker     ports.DistributedLocker
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	gatherer   prometheus.Gatherer
	registry   *registry.Registry
	cookieName string
	secure     bool
}

// Option configures a WizardServer.
type Option func(*config)

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = locker
	}
}

// WithLogger sets a structured logger shared by every layer.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for dispatch and wizard events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// WithRegistry sets the trigger registry wizard forms are resolved through.
// Defaults to registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithCookieName changes the session cookie name.
func WithCookieName(name string) Option {
	return func(c *config) {
		c.cookieName = name
	}
}

// WithSecureCookie marks the session cookie Secure (HTTPS only).
func WithSecureCookie(secure bool) Option {
	return func(c *config) {
		c.secure = secure
	}
}

// NewWizardServer creates a server with the operational endpoints mounted.
// Add wizards with Mount.
func NewWizardServer(opts ...Option) *WizardServer {
	cfg := config{
		logger:     logging.NewNop(),
		gatherer:   prometheus.DefaultGatherer,
		registry:   registry.Default,
		cookieName: stephttp.DefaultCookieName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(cfg.logger)}
	if cfg.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(cfg.locker))
	}
	sessions := session.NewManager(cfg.store, managerOpts...)

	server := stephttp.NewServer(sessions,
		stephttp.WithLogger(cfg.logger),
		stephttp.WithGatherer(cfg.gatherer),
		stephttp.WithCookieName(cfg.cookieName),
		stephttp.WithSecureCookie(cfg.secure),
	)

	return &WizardServer{
		router:   server.Router(),
		server:   server,
		sessions: sessions,
		view: form.FromRegistry[*wizard.Form](cfg.registry,
			form.WithLogger(cfg.logger),
			form.WithLifecycleHooks(cfg.hooks),
		),
		cfg: cfg,
	}
}

// Mount serves def on path (default "/<key>"). A nil concluder resets the
// wizard and reports the collected data. Extra wizard options (e.g. a model
// payload) are applied to every request.
func (s *WizardServer) Mount(path string, def *wizard.Definition, concluder wizard.Concluder, opts ...func() wizard.Option) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if path == "" {
		path = "/" + def.Key
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("wizard path %q must start with /", path)
	}
	if concluder == nil {
		concluder = ReportConcluder()
	}

	factory := func(ctx context.Context, req *domain.Request) (*wizard.Form, error) {
		wopts := []wizard.Option{
			wizard.WithConcluder(concluder),
			wizard.WithLogger(s.cfg.logger),
			wizard.WithLifecycleHooks(s.cfg.hooks),
		}
		for _, o := range opts {
			wopts = append(wopts, o())
		}
		w, err := wizard.New(ctx, def, req, wopts...)
		if err != nil {
			return nil, err
		}
		return wizard.NewForm(w, nil), nil
	}
	stephttp.Route(s.router, path, s.server, s.view, factory)

	s.cfg.logger.Info("wizard mounted", "wizard", def.Key, "path", path, "steps", def.Len())
	return nil
}

// Sessions returns the session manager.
func (s *WizardServer) Sessions() *session.Manager {
	return s.sessions
}

func (s *WizardServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ReportConcluder clears the wizard from the session and returns the data it
// collected as a namespace.
func ReportConcluder() wizard.Concluder {
	return wizard.ConcludeFunc(func(ctx context.Context, w *wizard.Wizard) (any, error) {
		data := w.Data()
		if err := w.Reset(ctx); err != nil {
			return nil, err
		}
		return domain.Namespace{"completed": w.Definition().Key, "data": data}, nil
	})
}
