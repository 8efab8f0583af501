package shape

import (
	"reflect"
)

// Composite marks a struct type as a value composite when embedded:
//
//	type Point struct {
//		valsem.Composite
//		X, Y float64
//	}
//
// Composite has no state and is never reported as a field.
type Composite struct{}

func (Composite) valueComposite() {}

type marked interface{ valueComposite() }

// TagKey is the struct tag key that carries the declared name of a dynamic
// record type on its Composite marker field.
const TagKey = "valsem"

var (
	compositeType = reflect.TypeFor[Composite]()
	markedType    = reflect.TypeFor[marked]()
)

// Type describes a value composite: its Go type and its ordered fields.
// A Type is immutable once returned by an Introspector.
type Type struct {
	Go     reflect.Type
	Kind   Kind
	Fields []Field
}

// Name returns the diagnostic name of the described type.
func (t *Type) Name() string {
	return TypeName(t.Go)
}

// Field describes one observable field of a value composite.
type Field struct {
	// Name is for diagnostics only. Promoted fields carry the embedding path
	// ("Base.ID"), array elements their index ("[2]").
	Name string
	// Type is the declared type of the field.
	Type reflect.Type
	// Kind is derived from Type when the field is described.
	Kind FieldKind
	// Get reads the field from an instance of the containing type.
	Get func(reflect.Value) reflect.Value
}

// TypeName returns a readable name for t. Dynamic record types report the
// name declared on their marker field.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Struct && t.NumField() > 0 {
		if f := t.Field(0); f.Type == compositeType {
			if name := f.Tag.Get(TagKey); name != "" {
				return name
			}
		}
	}
	return t.String()
}

// IsMarker reports whether t is the Composite marker type.
func IsMarker(t reflect.Type) bool {
	return t == compositeType
}

// MarkerType returns the Composite marker type, for building dynamic records.
func MarkerType() reflect.Type {
	return compositeType
}
