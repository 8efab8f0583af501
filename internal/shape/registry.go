package shape

import (
	"reflect"
	"sync"
)

// Registry marks struct types as value composites without requiring them to
// embed Composite. Types built at run time with reflect.StructOf cannot carry
// methods, so they are registered instead.
//
// Registry is safe for concurrent use. Registration is permanent.
type Registry struct {
	types sync.Map // map[reflect.Type]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register marks t as a value composite. A pointer type registers its element.
// Registering a type twice is a no-op.
func (r *Registry) Register(t reflect.Type) error {
	if t == nil {
		return &ResolutionError{Reason: "cannot register nil type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return &ResolutionError{Type: t, Reason: "only struct types can be registered as composites"}
	}
	r.types.Store(t, struct{}{})
	return nil
}

// Registered reports whether t was registered.
func (r *Registry) Registered(t reflect.Type) bool {
	_, ok := r.types.Load(t)
	return ok
}
