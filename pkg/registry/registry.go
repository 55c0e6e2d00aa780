package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/stepform/pkg/domain"
)

// Owner is implemented by views that carry their own trigger table.
// Such a table is used verbatim and the registry is never consulted.
type Owner[V any] interface {
	OwnTriggers() *domain.Triggers[V]
}

// entry builds its table at most once.
type entry struct {
	once  sync.Once
	build func() (any, error)
	table any
	err   error
}

// Registry caches one trigger table per view type.
// Tables are built lazily, exactly once, on first lookup.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]*entry),
	}
}

// Default is the process-wide registry used by Register.
var Default = NewRegistry()

func typeOf[V any]() reflect.Type {
	return reflect.TypeOf((*V)(nil)).Elem()
}

// Define registers the table builder for view type V.
// Defining the same view type twice is an error.
func Define[V any](r *Registry, build func() (*domain.Triggers[V], error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := typeOf[V]()
	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("trigger table for %s already defined", key)
	}
	r.entries[key] = &entry{
		build: func() (any, error) { return build() },
	}
	return nil
}

// Register is Define on the Default registry, panicking on error.
// It is meant to be called from package init or a package-level var.
func Register[V any](build func() (*domain.Triggers[V], error)) {
	if err := Define(Default, build); err != nil {
		panic(err)
	}
}

// Lookup returns the table registered for V, building it on first use.
// A view type without a registration resolves to an empty table.
func Lookup[V any](r *Registry) (*domain.Triggers[V], error) {
	r.mu.RLock()
	e, ok := r.entries[typeOf[V]()]
	r.mu.RUnlock()

	if !ok {
		return domain.NewTriggers[V](), nil
	}

	e.once.Do(func() {
		e.table, e.err = e.build()
	})
	if e.err != nil {
		return nil, fmt.Errorf("building trigger table for %s: %w", typeOf[V](), e.err)
	}
	table, ok := e.table.(*domain.Triggers[V])
	if !ok || table == nil {
		return domain.NewTriggers[V](), nil
	}
	return table, nil
}

// TriggersOf resolves the table for a concrete view. Views implementing
// Owner win; otherwise the registry is consulted.
func TriggersOf[V any](r *Registry, view V) (*domain.Triggers[V], error) {
	if owner, ok := any(view).(Owner[V]); ok {
		return owner.OwnTriggers(), nil
	}
	return Lookup[V](r)
}
