package ir

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Form is the outermost constructor of a type expression.
type Form int

const (
	FormPrimitive Form = iota // bool, int64, string, ...
	FormNamed                 // a declared type, held by value
	FormPointer               // *T
	FormSlice                 // []T
	FormArray                 // [N]T
	FormAny                   // any
)

var formNames = [...]string{"primitive", "named", "pointer", "slice", "array", "any"}

func (f Form) String() string {
	if int(f) < len(formNames) {
		return formNames[f]
	}
	return fmt.Sprintf("Form(%d)", int(f))
}

// TypeExpr is a parsed field type expression.
type TypeExpr struct {
	Form Form
	Name string    // FormPrimitive, FormNamed
	Elem *TypeExpr // FormPointer, FormSlice, FormArray
	Len  int       // FormArray
}

var primitives = map[string]reflect.Type{
	"bool":       reflect.TypeFor[bool](),
	"int":        reflect.TypeFor[int](),
	"int8":       reflect.TypeFor[int8](),
	"int16":      reflect.TypeFor[int16](),
	"int32":      reflect.TypeFor[int32](),
	"int64":      reflect.TypeFor[int64](),
	"uint":       reflect.TypeFor[uint](),
	"uint8":      reflect.TypeFor[uint8](),
	"uint16":     reflect.TypeFor[uint16](),
	"uint32":     reflect.TypeFor[uint32](),
	"uint64":     reflect.TypeFor[uint64](),
	"uintptr":    reflect.TypeFor[uintptr](),
	"byte":       reflect.TypeFor[byte](),
	"rune":       reflect.TypeFor[rune](),
	"float32":    reflect.TypeFor[float32](),
	"float64":    reflect.TypeFor[float64](),
	"complex64":  reflect.TypeFor[complex64](),
	"complex128": reflect.TypeFor[complex128](),
	"string":     reflect.TypeFor[string](),
}

// PrimitiveType returns the Go type of a primitive type name.
func PrimitiveType(name string) (reflect.Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// TypeExprError reports a malformed type expression.
type TypeExprError struct {
	Expr   string
	Reason string
}

func (e *TypeExprError) Error() string {
	return fmt.Sprintf("invalid type expression %q: %s", e.Expr, e.Reason)
}

// ParseTypeExpr parses a field type expression:
//
//	bool | int8 ... | string   primitive
//	Name                       declared type by value
//	*T                         nullable handle or reference
//	[]T                        slice, compared by identity
//	[N]T                       array of N elements, by value
//	any                        dynamic value
func ParseTypeExpr(s string) (*TypeExpr, error) {
	t, err := parseTypeExpr(strings.TrimSpace(s))
	if err != nil {
		return nil, &TypeExprError{Expr: s, Reason: err.Error()}
	}
	return t, nil
}

func parseTypeExpr(s string) (*TypeExpr, error) {
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type")
	case s[0] == '*':
		elem, err := parseTypeExpr(s[1:])
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Form: FormPointer, Elem: elem}, nil
	case strings.HasPrefix(s, "[]"):
		elem, err := parseTypeExpr(s[2:])
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Form: FormSlice, Elem: elem}, nil
	case s[0] == '[':
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array length")
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("array length %q is not a non-negative integer", s[1:end])
		}
		elem, err := parseTypeExpr(s[end+1:])
		if err != nil {
			return nil, err
		}
		return &TypeExpr{Form: FormArray, Len: n, Elem: elem}, nil
	case s == "any":
		return &TypeExpr{Form: FormAny}, nil
	case !IsIdentifier(s):
		return nil, fmt.Errorf("%q is not an identifier", s)
	}
	if _, ok := primitives[s]; ok {
		return &TypeExpr{Form: FormPrimitive, Name: s}, nil
	}
	return &TypeExpr{Form: FormNamed, Name: s}, nil
}

// IsIdentifier reports whether s is an ASCII identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// String formats t back into expression syntax.
func (t *TypeExpr) String() string {
	switch t.Form {
	case FormPointer:
		return "*" + t.Elem.String()
	case FormSlice:
		return "[]" + t.Elem.String()
	case FormArray:
		return fmt.Sprintf("[%d]%s", t.Len, t.Elem.String())
	case FormAny:
		return "any"
	default:
		return t.Name
	}
}

// Dep is a declared type named inside a type expression.
type Dep struct {
	Name string
	// ByValue is true when the named type is embedded in the containing
	// type's storage, false when it is reached through a pointer or slice.
	ByValue bool
}

// Deps returns the declared types named in t, outermost first.
func (t *TypeExpr) Deps() []Dep {
	var deps []Dep
	byValue := true
	for e := t; e != nil; e = e.Elem {
		switch e.Form {
		case FormNamed:
			deps = append(deps, Dep{Name: e.Name, ByValue: byValue})
		case FormPointer, FormSlice:
			byValue = false
		}
	}
	return deps
}
