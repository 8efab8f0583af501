package shape

import (
	"fmt"
	"reflect"
	"sync"
)

// Introspector classifies types and enumerates the fields of value
// composites. Implementations must be pure functions of the type's shape:
// repeated calls for the same type return the same classification and the
// same field order.
type Introspector interface {
	// Classify returns the kind of t. It never fails; a nil type is Invalid.
	Classify(t reflect.Type) Kind
	// Describe returns the fields of a struct or array type.
	// Returns *ResolutionError for any other type.
	Describe(t reflect.Type) (*Type, error)
}

// Reflect is the Introspector backed by package reflect.
//
// Thread-safety: Reflect is safe for concurrent use. Descriptions are cached
// with compute-if-absent semantics; two goroutines describing the same type
// at once build equivalent descriptions and one of them is kept.
type Reflect struct {
	registry *Registry
	types    sync.Map // map[reflect.Type]*Type
}

// NewReflect creates a reflect-backed introspector. A nil registry means
// only types embedding Composite are marked.
func NewReflect(registry *Registry) *Reflect {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Reflect{registry: registry}
}

// Registry returns the registry consulted for marked types.
func (r *Reflect) Registry() *Registry {
	return r.registry
}

// IsMarked reports whether t is a struct type marked as a value composite.
func (r *Reflect) IsMarked(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	return t.Implements(markedType) || r.registry.Registered(t)
}

// IsHandle reports whether t is a pointer to a marked composite.
func (r *Reflect) IsHandle(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && r.IsMarked(t.Elem())
}

// Classify implements Introspector.
func (r *Reflect) Classify(t reflect.Type) Kind {
	if t == nil {
		return Invalid
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return Primitive
	case reflect.Struct, reflect.Array:
		return ValueComposite
	case reflect.Pointer:
		if r.IsMarked(t.Elem()) {
			return ValueComposite
		}
		return Reference
	case reflect.Invalid:
		return Invalid
	default:
		return Reference
	}
}

// Describe implements Introspector.
func (r *Reflect) Describe(t reflect.Type) (*Type, error) {
	if t == nil {
		return nil, &ResolutionError{Reason: "nil type"}
	}
	if cached, ok := r.types.Load(t); ok {
		return cached.(*Type), nil
	}

	var fields []Field
	switch t.Kind() {
	case reflect.Struct:
		fields = r.structFields(t, nil, "", nil)
	case reflect.Array:
		fields = r.arrayFields(t)
	default:
		return nil, &ResolutionError{Type: t, Reason: fmt.Sprintf("%s is not a value composite", t.Kind())}
	}

	desc := &Type{Go: t, Kind: ValueComposite, Fields: fields}
	actual, _ := r.types.LoadOrStore(t, desc)
	return actual.(*Type), nil
}

// structFields appends the observable fields of t in declaration order.
// Embedded structs held by value contribute their fields at the position of
// the embedding; index is the path from the outermost struct.
func (r *Reflect) structFields(t reflect.Type, index []int, prefix string, out []Field) []Field {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" || sf.Type == compositeType {
			continue
		}
		path := append(append([]int(nil), index...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			out = r.structFields(sf.Type, path, prefix+sf.Name+".", out)
			continue
		}
		out = append(out, Field{
			Name: prefix + sf.Name,
			Type: sf.Type,
			Kind: r.fieldKind(sf.Type),
			Get:  fieldAccessor(path),
		})
	}
	return out
}

func (r *Reflect) arrayFields(t reflect.Type) []Field {
	elem := t.Elem()
	kind := r.fieldKind(elem)
	fields := make([]Field, t.Len())
	for i := range fields {
		fields[i] = Field{
			Name: fmt.Sprintf("[%d]", i),
			Type: elem,
			Kind: kind,
			Get:  elementAccessor(i),
		}
	}
	return fields
}

func (r *Reflect) fieldKind(t reflect.Type) FieldKind {
	switch r.Classify(t) {
	case Primitive:
		return FieldPrimitive
	case ValueComposite:
		return FieldNestedValue
	default:
		return FieldReference
	}
}

func fieldAccessor(path []int) func(reflect.Value) reflect.Value {
	if len(path) == 1 {
		i := path[0]
		return func(v reflect.Value) reflect.Value { return v.Field(i) }
	}
	return func(v reflect.Value) reflect.Value { return v.FieldByIndex(path) }
}

func elementAccessor(i int) func(reflect.Value) reflect.Value {
	return func(v reflect.Value) reflect.Value { return v.Index(i) }
}
