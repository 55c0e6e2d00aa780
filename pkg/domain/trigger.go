package domain

import (
	"context"
	"net/url"
	"reflect"
	"strings"
)

// Condition gates the visibility of a trigger for a given view and request.
// A nil Condition means the trigger is always visible and allowed.
type Condition[V any] func(view V, req *Request) bool

// Handler implements the business logic bound to a trigger.
// data is the submitted form payload with the routing field already removed.
// The returned value is passed back to the caller untouched: typically a
// Redirect, a Namespace to render, or any response value the host understands.
type Handler[V any] func(ctx context.Context, view V, req *Request, data url.Values) (any, error)

// Trigger describes a named action a view exposes (e.g. "save", "next").
type Trigger[V any] struct {
	// ID is unique within a trigger table, conventionally "trigger.<name>".
	ID string `json:"id"`

	// Title is the display label (button text).
	Title string `json:"title"`

	// CSS is a style hint for the rendering layer.
	CSS string `json:"css,omitempty"`

	// Order sorts triggers ascending inside a table. Defaults to DefaultOrder.
	Order int `json:"order"`

	Condition Condition[V] `json:"-"`
	Handler   Handler[V]   `json:"-"`
}

// Invoke calls the bound handler. Errors from the handler propagate unchanged.
func (t Trigger[V]) Invoke(ctx context.Context, view V, req *Request, data url.Values) (any, error) {
	return t.Handler(ctx, view, req, data)
}

// Allowed reports whether the trigger is visible for the view and request.
func (t Trigger[V]) Allowed(view V, req *Request) bool {
	return t.Condition == nil || t.Condition(view, req)
}

// Action returns the display-only projection of the trigger.
func (t Trigger[V]) Action() Action {
	return Action{ID: t.ID, Title: t.Title, CSS: t.CSS, Order: t.Order}
}

// Equal reports whether both triggers carry the same descriptor.
// Functions are compared by code pointer, so two closures built from the same
// literal compare equal while distinct functions never do.
func (t Trigger[V]) Equal(other Trigger[V]) bool {
	return t.ID == other.ID &&
		t.Title == other.Title &&
		t.CSS == other.CSS &&
		t.Order == other.Order &&
		samePointer(t.Condition, other.Condition) &&
		samePointer(t.Handler, other.Handler)
}

func samePointer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsNil() || vb.IsNil() {
		return va.IsNil() == vb.IsNil()
	}
	return va.Pointer() == vb.Pointer()
}

// TriggerID normalizes a handler name into a trigger identifier.
// "Save Draft" becomes "trigger.save_draft".
func TriggerID(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	return TriggerPrefix + name
}

// Action is the rendering projection of a trigger (what a template needs to
// draw a button).
type Action struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	CSS   string `json:"css,omitempty"`
	Order int    `json:"order"`
}
