package engine

import (
	"reflect"

	"github.com/roach88/valsem/internal/prim"
	"github.com/roach88/valsem/internal/shape"
)

// fieldEqual compares one field, already read from both instances.
type fieldEqual func(w *walk, x, y reflect.Value) bool

// comparator builds the structural comparator of desc. Fields are compared in
// description order and the first unequal field decides.
func (e *Engine) comparator(desc *shape.Type, links []*link) func(w *walk, a, b reflect.Value) bool {
	gets := make([]func(reflect.Value) reflect.Value, len(desc.Fields))
	eqs := make([]fieldEqual, len(desc.Fields))
	for i, f := range desc.Fields {
		gets[i] = f.Get
		eqs[i] = e.fieldEqual(f, links[i])
	}

	return func(w *walk, a, b reflect.Value) bool {
		for i, get := range gets {
			if !eqs[i](w, get(a), get(b)) {
				return false
			}
		}
		return true
	}
}

func (e *Engine) fieldEqual(f shape.Field, l *link) fieldEqual {
	switch f.Kind {
	case shape.FieldPrimitive:
		eq, _, ok := prim.Lookup(f.Type.Kind())
		if !ok {
			panic(failure{NewShapeError(f.Name, &shape.ResolutionError{Type: f.Type, Reason: "not a primitive kind"})})
		}
		return func(_ *walk, x, y reflect.Value) bool {
			return eq(x, y)
		}

	case shape.FieldNestedValue:
		if f.Type.Kind() == reflect.Pointer {
			return func(w *walk, x, y reflect.Value) bool {
				xn, yn := x.IsNil(), y.IsNil()
				if xn || yn {
					return xn && yn
				}
				if x.Pointer() == y.Pointer() || !w.enter(f.Type, x.Pointer(), y.Pointer()) {
					return true
				}
				return l.get().compare(w, x.Elem(), y.Elem())
			}
		}
		return func(w *walk, x, y reflect.Value) bool {
			return l.get().compare(w, x, y)
		}

	default:
		if f.Type.Kind() == reflect.Interface {
			return func(w *walk, x, y reflect.Value) bool {
				return e.equal(w, x.Elem(), y.Elem())
			}
		}
		return func(_ *walk, x, y reflect.Value) bool {
			return prim.SameReference(x, y)
		}
	}
}
