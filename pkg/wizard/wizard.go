package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/stepform/internal/logging"
	"github.com/aretw0/stepform/pkg/domain"
)

var (
	// ErrNoSession is returned when the wizard has to persist data but the
	// request carries no session.
	ErrNoSession = errors.New("wizard requires a session")
	// ErrNoConcluder is returned by Conclude when no Concluder was configured.
	ErrNoConcluder = errors.New("wizard has no concluder")
)

// Concluder finishes a wizard once the last step was saved. Its result is
// returned to the client as the outcome of the final action.
type Concluder interface {
	Conclude(ctx context.Context, w *Wizard) (any, error)
}

// ConcludeFunc adapts a function to Concluder.
type ConcludeFunc func(ctx context.Context, w *Wizard) (any, error)

func (f ConcludeFunc) Conclude(ctx context.Context, w *Wizard) (any, error) {
	return f(ctx, w)
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithPayload sets the storage strategy. Defaults to a FlatPayload.
func WithPayload(p Payload) Option {
	return func(w *Wizard) {
		w.payload = p
	}
}

// WithConcluder sets the action run by Save after the last step.
func WithConcluder(c Concluder) Option {
	return func(w *Wizard) {
		w.concluder = c
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// Wizard is the per-request state of a multi-step form: the definition, the
// step selected by the request and the data saved so far.
type Wizard struct {
	def     *Definition
	req     *domain.Request
	index   int
	payload Payload

	concluder Concluder
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// New resolves the current step from req and loads the saved payload from the
// request session. It fails with domain.ErrStepOutOfRange when the request
// selects a step outside the definition.
func New(ctx context.Context, def *Definition, req *domain.Request, opts ...Option) (*Wizard, error) {
	index, err := ResolveStepIndex(req, def.ParamName(), def.Len())
	if err != nil {
		return nil, err
	}

	w := &Wizard{
		def:     def,
		req:     req,
		index:   index,
		payload: NewFlatPayload(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	var raw any
	if req.Session != nil {
		raw, _ = req.Session.Get(def.Key)
	}
	if err := w.payload.Load(raw); err != nil {
		return nil, err
	}

	w.logger.DebugContext(ctx, "wizard loaded", "wizard", def.Key, "step", index, "total", def.Len())
	return w, nil
}

// ResolveStepIndex reads the 1-based step index from the query parameter
// param. A missing parameter selects the first step; anything that is not the
// canonical decimal form of an integer in [1, total] is out of range, so each
// step has exactly one URL.
func ResolveStepIndex(req *domain.Request, param string, total int) (int, error) {
	raw := req.Param(param)
	if raw == "" {
		if total < 1 {
			return 0, fmt.Errorf("%w: wizard has no steps", domain.ErrStepOutOfRange)
		}
		return 1, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 1 || index > total || strconv.Itoa(index) != raw {
		return 0, fmt.Errorf("%w: %q not in [1, %d]", domain.ErrStepOutOfRange, raw, total)
	}
	return index, nil
}

// Definition returns the wizard definition.
func (w *Wizard) Definition() *Definition {
	return w.def
}

// Request returns the request the wizard was resolved from.
func (w *Wizard) Request() *domain.Request {
	return w.req
}

// Index returns the 1-based current step index.
func (w *Wizard) Index() int {
	return w.index
}

// Len returns the number of steps.
func (w *Wizard) Len() int {
	return w.def.Len()
}

// IsFirst reports whether the current step is the first one.
func (w *Wizard) IsFirst() bool {
	return w.index == 1
}

// IsLast reports whether the current step is the last one.
func (w *Wizard) IsLast() bool {
	return w.index == w.def.Len()
}

// Payload returns the storage strategy, for concluders that need the model.
func (w *Wizard) Payload() Payload {
	return w.payload
}

// CurrentStep returns the current step with its saved data.
func (w *Wizard) CurrentStep() domain.Step {
	return w.step(w.index)
}

// Steps returns every step with its saved data, in order.
func (w *Wizard) Steps() []domain.Step {
	steps := make([]domain.Step, 0, w.def.Len())
	for i := 1; i <= w.def.Len(); i++ {
		steps = append(steps, w.step(i))
	}
	return steps
}

// Data returns the saved data of every step, keyed by index.
func (w *Wizard) Data() domain.WizardData {
	data := domain.WizardData{}
	for _, s := range w.Steps() {
		if len(s.Data) > 0 {
			data[s.Index] = s.Data
		}
	}
	return data
}

func (w *Wizard) step(index int) domain.Step {
	spec, _ := w.def.Step(index)
	return domain.Step{
		Index:       index,
		Title:       spec.Title,
		Description: spec.Description,
		Data:        w.payload.StepData(index, spec.Fields),
	}
}

// SaveStep merges data into the current step and persists the whole payload
// to the session. Data of other steps is kept.
func (w *Wizard) SaveStep(ctx context.Context, data domain.StepData) error {
	if w.req.Session == nil {
		return ErrNoSession
	}
	if err := w.payload.Merge(w.index, data); err != nil {
		return err
	}
	w.req.Session.Set(w.def.Key, w.payload.Value())
	if err := w.req.Session.Save(ctx); err != nil {
		return fmt.Errorf("saving wizard %s step %d: %w", w.def.Key, w.index, err)
	}

	w.logger.DebugContext(ctx, "wizard step saved", "wizard", w.def.Key, "step", w.index)
	w.hooks.EmitStepSaved(ctx, w.event(domain.EventStepSaved))
	return nil
}

// Save stores the last step and concludes the wizard.
func (w *Wizard) Save(ctx context.Context, data domain.StepData) (any, error) {
	if err := w.SaveStep(ctx, data); err != nil {
		return nil, err
	}
	return w.Conclude(ctx)
}

// Conclude runs the configured Concluder.
func (w *Wizard) Conclude(ctx context.Context) (any, error) {
	if w.concluder == nil {
		return nil, ErrNoConcluder
	}
	result, err := w.concluder.Conclude(ctx, w)
	if err != nil {
		return nil, err
	}
	w.logger.InfoContext(ctx, "wizard concluded", "wizard", w.def.Key)
	w.hooks.EmitConclude(ctx, w.event(domain.EventConclude))
	return result, nil
}

// Reset removes the wizard payload from the session.
func (w *Wizard) Reset(ctx context.Context) error {
	if w.req.Session == nil {
		return ErrNoSession
	}
	w.req.Session.Delete(w.def.Key)
	if err := w.payload.Load(nil); err != nil {
		return err
	}
	return w.req.Session.Save(ctx)
}

func (w *Wizard) event(typ domain.EventType) *domain.StepEvent {
	e := &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Wizard:    w.def.Key,
		Index:     w.index,
		Total:     w.def.Len(),
	}
	if w.req.Session != nil {
		e.SessionID = w.req.Session.ID()
	}
	return e
}

// MarshalJSON renders the wizard progress for the presentation layer.
func (w *Wizard) MarshalJSON() ([]byte, error) {
	type stepInfo struct {
		Index       int    `json:"index"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}
	steps := make([]stepInfo, 0, w.def.Len())
	for i, s := range w.def.Steps {
		steps = append(steps, stepInfo{Index: i + 1, Title: s.Title, Description: s.Description})
	}
	return json.Marshal(struct {
		Key     string     `json:"key"`
		Current int        `json:"current"`
		Total   int        `json:"total"`
		Steps   []stepInfo `json:"steps"`
	}{w.def.Key, w.index, w.def.Len(), steps})
}
