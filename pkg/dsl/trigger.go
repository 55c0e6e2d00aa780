package dsl

import "github.com/aretw0/stepform/pkg/domain"

// TriggerBuilder provides a fluent API for configuring a trigger.
type TriggerBuilder[V any] struct {
	name    string
	trigger domain.Trigger[V]
	builder *Builder[V]
}

// Title sets the display label. Defaults to the trigger name.
func (t *TriggerBuilder[V]) Title(title string) *TriggerBuilder[V] {
	t.trigger.Title = title
	return t
}

// ID overrides the identifier derived from the trigger name.
func (t *TriggerBuilder[V]) ID(id string) *TriggerBuilder[V] {
	t.trigger.ID = id
	return t
}

// CSS sets the style hint.
func (t *TriggerBuilder[V]) CSS(css string) *TriggerBuilder[V] {
	t.trigger.CSS = css
	return t
}

// Order sets the sort order (lower first).
func (t *TriggerBuilder[V]) Order(order int) *TriggerBuilder[V] {
	t.trigger.Order = order
	return t
}

// When sets the visibility condition.
func (t *TriggerBuilder[V]) When(cond domain.Condition[V]) *TriggerBuilder[V] {
	t.trigger.Condition = cond
	return t
}

// Do binds the handler. Every trigger needs one.
func (t *TriggerBuilder[V]) Do(handler domain.Handler[V]) *TriggerBuilder[V] {
	t.trigger.Handler = handler
	return t
}

// Builder returns the table builder this trigger belongs to, so declarations
// can be chained.
func (t *TriggerBuilder[V]) Builder() *Builder[V] {
	return t.builder
}

// Build returns the configured descriptor.
// This is primarily used by the Builder, but exposed for advanced usage.
func (t *TriggerBuilder[V]) Build() domain.Trigger[V] {
	return t.trigger
}
