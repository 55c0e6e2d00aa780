package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatch  EventType = "dispatch"
	EventStepSaved EventType = "step_saved"
	EventConclude  EventType = "conclude"
)

// Dispatch outcomes reported in DispatchEvent.Outcome.
const (
	OutcomeOK         = "ok"
	OutcomeNoAction   = "no_action"
	OutcomeNotFound   = "not_found"
	OutcomeNotAllowed = "not_allowed"
	OutcomeError      = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// DispatchEvent reports a single ProcessAction call.
type DispatchEvent struct {
	EventBase
	ActionID string        `json:"action_id"`
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// StepEvent reports wizard persistence activity.
type StepEvent struct {
	EventBase
	Wizard string `json:"wizard"`
	Index  int    `json:"index"`
	Total  int    `json:"total"`
}

// LifecycleHooks defines callbacks for dispatcher and wizard observability.
// Every field is optional.
type LifecycleHooks struct {
	OnDispatch  func(context.Context, *DispatchEvent)
	OnStepSaved func(context.Context, *StepEvent)
	OnConclude  func(context.Context, *StepEvent)
}

// EmitDispatch invokes OnDispatch when set.
func (h LifecycleHooks) EmitDispatch(ctx context.Context, e *DispatchEvent) {
	if h.OnDispatch != nil {
		h.OnDispatch(ctx, e)
	}
}

// EmitStepSaved invokes OnStepSaved when set.
func (h LifecycleHooks) EmitStepSaved(ctx context.Context, e *StepEvent) {
	if h.OnStepSaved != nil {
		h.OnStepSaved(ctx, e)
	}
}

// EmitConclude invokes OnConclude when set.
func (h LifecycleHooks) EmitConclude(ctx context.Context, e *StepEvent) {
	if h.OnConclude != nil {
		h.OnConclude(ctx, e)
	}
}
