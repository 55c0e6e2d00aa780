package dsl

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/aretw0/stepform/pkg/domain"
)

// Builder assembles the trigger table of a view type.
//
// Inherited entries come first (most general base first), then the triggers
// declared on the builder in declaration order. A declared trigger whose id
// matches an inherited one replaces it in place. Build stable-sorts the result
// by Order, so ties keep the base-before-derived, declaration order.
type Builder[V any] struct {
	inherited []domain.Trigger[V]
	declared  []*TriggerBuilder[V]
	byName    map[string]*TriggerBuilder[V]
}

// New creates an empty builder.
func New[V any]() *Builder[V] {
	return &Builder[V]{
		byName: make(map[string]*TriggerBuilder[V]),
	}
}

// Extend seeds the builder with the triggers of base tables for the same view
// type. Bases are applied in the order given; a later base overrides an
// earlier one on id collision.
func (b *Builder[V]) Extend(bases ...*domain.Triggers[V]) *Builder[V] {
	for _, base := range bases {
		for _, t := range base.All() {
			b.inherit(t)
		}
	}
	return b
}

// Inherit seeds b with the triggers of a table declared for an embedded view
// type B. up projects the outer view onto the embedded one; conditions and
// handlers are lifted through it.
func Inherit[V, B any](b *Builder[V], base *domain.Triggers[B], up func(V) B) *Builder[V] {
	for _, t := range base.All() {
		b.inherit(lift(t, up))
	}
	return b
}

func lift[V, B any](t domain.Trigger[B], up func(V) B) domain.Trigger[V] {
	out := domain.Trigger[V]{
		ID:    t.ID,
		Title: t.Title,
		CSS:   t.CSS,
		Order: t.Order,
	}
	if cond := t.Condition; cond != nil {
		out.Condition = func(v V, req *domain.Request) bool {
			return cond(up(v), req)
		}
	}
	if h := t.Handler; h != nil {
		out.Handler = func(ctx context.Context, v V, req *domain.Request, data url.Values) (any, error) {
			return h(ctx, up(v), req, data)
		}
	}
	return out
}

func (b *Builder[V]) inherit(t domain.Trigger[V]) {
	for i := range b.inherited {
		if b.inherited[i].ID == t.ID {
			b.inherited[i] = t
			return
		}
	}
	b.inherited = append(b.inherited, t)
}

// Add declares a trigger named name on the view.
// If a trigger with that name was already declared, the existing builder is
// returned.
func (b *Builder[V]) Add(name string) *TriggerBuilder[V] {
	if tb, ok := b.byName[name]; ok {
		return tb
	}
	tb := &TriggerBuilder[V]{
		name:    name,
		builder: b,
		trigger: domain.Trigger[V]{
			ID:    domain.TriggerID(name),
			Title: name,
			Order: domain.DefaultOrder,
		},
	}
	b.byName[name] = tb
	b.declared = append(b.declared, tb)
	return tb
}

// Build computes and freezes the trigger table.
func (b *Builder[V]) Build() (*domain.Triggers[V], error) {
	entries := make([]domain.Trigger[V], len(b.inherited))
	copy(entries, b.inherited)

	position := make(map[string]int, len(entries))
	for i, t := range entries {
		position[t.ID] = i
	}

	seen := make(map[string]string, len(b.declared))
	for _, tb := range b.declared {
		t := tb.trigger
		if t.Handler == nil {
			return nil, fmt.Errorf("trigger %q has no handler", tb.name)
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("triggers %q and %q share id %q", prev, tb.name, t.ID)
		}
		seen[t.ID] = tb.name

		if i, ok := position[t.ID]; ok {
			entries[i] = t
			continue
		}
		position[t.ID] = len(entries)
		entries = append(entries, t)
	}

	slices.SortStableFunc(entries, func(a, b domain.Trigger[V]) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return domain.NewTriggers(entries...), nil
}

// MustBuild is like Build but panics on error.
// It is meant for package-level table declarations.
func (b *Builder[V]) MustBuild() *domain.Triggers[V] {
	table, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: %v", err))
	}
	return table
}
