package engine

import (
	"reflect"

	"github.com/roach88/valsem/internal/prim"
	"github.com/roach88/valsem/internal/shape"
)

// fieldHash hashes one field, already read from an instance.
type fieldHash func(w *walk, x reflect.Value) int32

// TypeHash returns the hash of t's identity that seeds every composite hash
// of t. Named types hash their import path and name, dynamic records their
// declared name, anything else its type literal. It is stable across runs.
func TypeHash(t reflect.Type) int32 {
	if t.PkgPath() != "" && t.Name() != "" {
		return prim.String(t.PkgPath() + "." + t.Name())
	}
	return prim.String(shape.TypeName(t))
}

// hasher builds the structural hasher of desc:
//
//	h = salt
//	h = 31*h + TypeHash(type)
//	h = 31*h + hash(field) for each field in order
//
// with 32-bit wraparound.
func (e *Engine) hasher(desc *shape.Type, links []*link) func(w *walk, v reflect.Value) int32 {
	seed := prim.Combine(e.salt, TypeHash(desc.Go))
	gets := make([]func(reflect.Value) reflect.Value, len(desc.Fields))
	hs := make([]fieldHash, len(desc.Fields))
	for i, f := range desc.Fields {
		gets[i] = f.Get
		hs[i] = e.fieldHash(f, links[i])
	}

	return func(w *walk, v reflect.Value) int32 {
		h := seed
		for i, get := range gets {
			h = prim.Combine(h, hs[i](w, get(v)))
		}
		return h
	}
}

func (e *Engine) fieldHash(f shape.Field, l *link) fieldHash {
	switch f.Kind {
	case shape.FieldPrimitive:
		_, hash, ok := prim.Lookup(f.Type.Kind())
		if !ok {
			panic(failure{NewShapeError(f.Name, &shape.ResolutionError{Type: f.Type, Reason: "not a primitive kind"})})
		}
		return func(_ *walk, x reflect.Value) int32 {
			return hash(x)
		}

	case shape.FieldNestedValue:
		if f.Type.Kind() == reflect.Pointer {
			return func(w *walk, x reflect.Value) int32 {
				if x.IsNil() {
					return 0
				}
				w.push(f.Type, x.Pointer())
				h := l.get().hash(w, x.Elem())
				w.pop()
				return h
			}
		}
		return func(w *walk, x reflect.Value) int32 {
			return l.get().hash(w, x)
		}

	default:
		if f.Type.Kind() == reflect.Interface {
			return func(w *walk, x reflect.Value) int32 {
				return e.hash(w, x.Elem())
			}
		}
		return func(_ *walk, x reflect.Value) int32 {
			return referenceHash(x)
		}
	}
}
