package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/stepform/internal/logging"
	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/registry"
)

// View dispatches submitted actions to the triggers of a view type V.
// A View is stateless apart from its frozen table (or the registry it resolves
// tables from) and may serve any number of concurrent requests.
type View[V any] struct {
	triggers    *domain.Triggers[V]
	registry    *registry.Registry
	actionField string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

// Option configures a View.
type Option func(*options)

type options struct {
	actionField string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

// WithActionField changes the form field carrying the trigger id.
func WithActionField(field string) Option {
	return func(o *options) {
		o.actionField = field
	}
}

// WithLogger sets a structured logger for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// New creates a dispatcher over the given trigger table.
// A nil table behaves like an empty one.
func New[V any](triggers *domain.Triggers[V], opts ...Option) *View[V] {
	o := options{
		actionField: domain.ActionField,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if triggers == nil {
		triggers = domain.NewTriggers[V]()
	}
	return &View[V]{
		triggers:    triggers,
		actionField: o.actionField,
		logger:      o.logger,
		hooks:       o.hooks,
	}
}

// FromRegistry creates a dispatcher that resolves the table of each view it
// serves through r: the view's own table when it implements registry.Owner,
// otherwise the table registered for V. A nil r means registry.Default.
func FromRegistry[V any](r *registry.Registry, opts ...Option) *View[V] {
	if r == nil {
		r = registry.Default
	}
	v := New[V](nil, opts...)
	v.registry = r
	return v
}

// Triggers returns the table the view dispatches to. For a registry-backed
// view it is the table registered for V, or an empty table if it fails to
// build.
func (v *View[V]) Triggers() *domain.Triggers[V] {
	if v.registry == nil {
		return v.triggers
	}
	table, err := registry.Lookup[V](v.registry)
	if err != nil {
		v.logger.Warn("trigger table unavailable", "error", err)
		return domain.NewTriggers[V]()
	}
	return table
}

func (v *View[V]) tableFor(view V) (*domain.Triggers[V], error) {
	if v.registry == nil {
		return v.triggers, nil
	}
	table, err := registry.TriggersOf(v.registry, view)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return domain.NewTriggers[V](), nil
	}
	return table, nil
}

// ActionField returns the name of the routing field.
func (v *View[V]) ActionField() string {
	return v.actionField
}

// ExtractAction removes the routing field from the request payload and
// returns its value. The second result is false when no action was submitted.
func (v *View[V]) ExtractAction(req *domain.Request) (string, bool) {
	if req == nil || req.Form == nil {
		return "", false
	}
	values, ok := req.Form[v.actionField]
	if !ok {
		return "", false
	}
	req.Form.Del(v.actionField)
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// ProcessAction runs the trigger requested by req against view and returns
// the handler's result unchanged.
//
// It fails with domain.ErrNoActionSubmitted when the request names no action,
// domain.ErrActionNotFound when the action is not in the table and
// domain.ErrActionNotAllowed when the trigger's condition rejects the request.
// Errors returned by the handler itself are passed through as is.
func (v *View[V]) ProcessAction(ctx context.Context, view V, req *domain.Request) (any, error) {
	start := time.Now()

	id, ok := v.ExtractAction(req)
	if !ok {
		v.report(ctx, req, "", domain.OutcomeNoAction, start)
		return nil, domain.ErrNoActionSubmitted
	}

	table, err := v.tableFor(view)
	if err != nil {
		v.report(ctx, req, id, domain.OutcomeError, start)
		return nil, err
	}

	trigger, ok := table.Get(id)
	if !ok {
		v.report(ctx, req, id, domain.OutcomeNotFound, start)
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotFound, id)
	}

	if !trigger.Allowed(view, req) {
		v.report(ctx, req, id, domain.OutcomeNotAllowed, start)
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotAllowed, id)
	}

	v.logger.Debug("dispatching action", "action", id)
	result, err := trigger.Invoke(ctx, view, req, req.Form)
	if err != nil {
		v.report(ctx, req, id, domain.OutcomeError, start)
		return nil, err
	}

	v.report(ctx, req, id, domain.OutcomeOK, start)
	return result, nil
}

// Actions returns the display projection of the triggers visible for view
// and req, in table order.
func (v *View[V]) Actions(view V, req *domain.Request) []domain.Action {
	actions := []domain.Action{}
	table, err := v.tableFor(view)
	if err != nil {
		v.logger.Warn("trigger table unavailable", "error", err)
		return actions
	}
	for _, t := range table.Filtered(view, req) {
		actions = append(actions, t.Action())
	}
	return actions
}

// Namespace builds the render context for view: the visible actions, the view
// itself and the request. Entries in extra override the defaults.
func (v *View[V]) Namespace(view V, req *domain.Request, extra map[string]any) domain.Namespace {
	ns := domain.Namespace{
		"actions": v.Actions(view, req),
		"request": req,
		"view":    view,
	}
	for k, val := range extra {
		ns[k] = val
	}
	return ns
}

func (v *View[V]) report(ctx context.Context, req *domain.Request, id, outcome string, start time.Time) {
	if outcome != domain.OutcomeOK && outcome != domain.OutcomeError {
		v.logger.Debug("action rejected", "action", id, "outcome", outcome)
	}
	event := &domain.DispatchEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventDispatch,
		},
		ActionID: id,
		Outcome:  outcome,
		Duration: time.Since(start),
	}
	if req != nil && req.Session != nil {
		event.SessionID = req.Session.ID()
	}
	v.hooks.EmitDispatch(ctx, event)
}

// IsDispatchError reports whether err is one of the dispatcher's own
// rejections (as opposed to a handler failure).
func IsDispatchError(err error) bool {
	return errors.Is(err, domain.ErrNoActionSubmitted) ||
		errors.Is(err, domain.ErrActionNotFound) ||
		errors.Is(err, domain.ErrActionNotAllowed)
}
