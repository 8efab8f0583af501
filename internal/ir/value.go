package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface for the values that have a canonical
// encoding. Only String, Int, Bool, Array and Object implement it.
type Value interface {
	irValue()
}

// String is a string value.
type String string

func (String) irValue() {}

// Int is an integer value.
type Int int64

func (Int) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) irValue() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// sort.Strings orders by UTF-8 bytes, which differs above U+FFFF.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// Value returns the canonical value of the schema.
func (s *Schema) Value() Value {
	types := make(Array, len(s.Types))
	for i, t := range s.Types {
		types[i] = t.Value()
	}
	return Object{
		"ir_version": String(IRVersion),
		"types":      types,
	}
}

// Value returns the canonical value of the declaration. An empty Extends is
// omitted.
func (t TypeDecl) Value() Value {
	fields := make(Array, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = Object{"name": String(f.Name), "type": String(f.Type)}
	}
	obj := Object{
		"name":   String(t.Name),
		"kind":   String(t.Kind),
		"fields": fields,
	}
	if t.Extends != "" {
		obj["extends"] = String(t.Extends)
	}
	return obj
}
