package prim

import "reflect"

// SameReference reports whether a and b, two values of the same reference
// type, are the same object. Slices are the same object when they share the
// backing array start, length and capacity. Funcs compare by code pointer,
// which is the only identity reflect exposes for them.
func SameReference(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len() && a.Cap() == b.Cap()
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	default:
		panic("prim: not a reference kind: " + a.Kind().String())
	}
}

// IdentityHash hashes the identity of a reference value. Nil references
// hash to 0. Values that are SameReference hash identically.
func IdentityHash(v reflect.Value) int32 {
	switch v.Kind() {
	case reflect.Invalid:
		return 0
	case reflect.Slice:
		if v.IsNil() {
			return 0
		}
		h := Pointer(v.Pointer())
		h = Combine(h, int32(v.Len()))
		return Combine(h, int32(v.Cap()))
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return 0
		}
		return Pointer(v.Pointer())
	default:
		panic("prim: not a reference kind: " + v.Kind().String())
	}
}
