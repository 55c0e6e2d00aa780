package domain

import "iter"

// Triggers is the frozen, ordered id->Trigger table owned by a view type.
// The order is the display and evaluation order. A Triggers value is never
// mutated after construction and is safe to share across goroutines.
type Triggers[V any] struct {
	entries []Trigger[V]
	index   map[string]int
}

// NewTriggers freezes the given entries in the order received.
// Later entries with an id already present replace the earlier value in place.
func NewTriggers[V any](entries ...Trigger[V]) *Triggers[V] {
	t := &Triggers[V]{
		entries: make([]Trigger[V], 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := t.index[e.ID]; ok {
			t.entries[i] = e
			continue
		}
		t.index[e.ID] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Get looks up a trigger by id.
func (t *Triggers[V]) Get(id string) (Trigger[V], bool) {
	if t == nil {
		return Trigger[V]{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return Trigger[V]{}, false
	}
	return t.entries[i], true
}

// Len returns the number of triggers in the table.
func (t *Triggers[V]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// IDs returns the trigger ids in table order.
func (t *Triggers[V]) IDs() []string {
	ids := make([]string, 0, t.Len())
	for _, e := range t.All() {
		ids = append(ids, e.ID)
	}
	return ids
}

// All returns a copy of the entries in table order.
func (t *Triggers[V]) All() []Trigger[V] {
	if t == nil {
		return []Trigger[V]{}
	}
	out := make([]Trigger[V], len(t.entries))
	copy(out, t.entries)
	return out
}

// Filtered yields, in table order, every trigger whose condition is absent or
// holds for view and req. The sequence is evaluated lazily on each iteration.
func (t *Triggers[V]) Filtered(view V, req *Request) iter.Seq2[string, Trigger[V]] {
	return func(yield func(string, Trigger[V]) bool) {
		if t == nil {
			return
		}
		for _, e := range t.entries {
			if !e.Allowed(view, req) {
				continue
			}
			if !yield(e.ID, e) {
				return
			}
		}
	}
}
