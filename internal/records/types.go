package records

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/valsem/internal/ir"
	"github.com/roach88/valsem/internal/shape"
)

// identityField is the leading field of reference records. It keeps them
// from being zero-sized, so distinct instances have distinct addresses.
const identityField = "Identity"

// Types is the set of Go types built for one schema.
//
// Thread-safety: Types is immutable after Build; Instance may be called
// concurrently.
type Types struct {
	schema  *ir.Schema
	decls   map[string]*ir.TypeDecl
	structs map[string]reflect.Type
	fields  map[string][]recordField
}

// recordField maps a declared field to its Go struct field.
type recordField struct {
	Name  string // declared name
	Index int    // Go field index
	Expr  *ir.TypeExpr
}

// BuildError reports a schema that cannot be turned into Go types.
type BuildError struct {
	Type    string
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %s", e.Type, e.Message)
}

// Build creates Go types for every declaration in s and registers the value
// types in reg. s must have passed compiler.Check; in particular it must be
// free of cycles.
func Build(s *ir.Schema, reg *shape.Registry) (*Types, error) {
	ts := &Types{
		schema:  s,
		decls:   make(map[string]*ir.TypeDecl, len(s.Types)),
		structs: make(map[string]reflect.Type, len(s.Types)),
		fields:  make(map[string][]recordField, len(s.Types)),
	}
	for i := range s.Types {
		ts.decls[s.Types[i].Name] = &s.Types[i]
	}

	building := make(map[string]bool)
	for _, t := range s.Types {
		if err := ts.build(t.Name, building); err != nil {
			return nil, err
		}
	}

	for _, t := range s.Types {
		if t.Kind != ir.KindValue {
			continue
		}
		if err := reg.Register(ts.structs[t.Name]); err != nil {
			return nil, &BuildError{Type: t.Name, Message: err.Error()}
		}
	}
	return ts, nil
}

// build creates the struct for name after every type it depends on.
func (ts *Types) build(name string, building map[string]bool) error {
	if _, done := ts.structs[name]; done {
		return nil
	}
	decl, ok := ts.decls[name]
	if !ok {
		return &BuildError{Type: name, Message: "unknown type"}
	}
	if building[name] {
		return &BuildError{Type: name, Message: "recursive type"}
	}
	building[name] = true
	defer delete(building, name)

	var sfs []reflect.StructField
	if decl.Kind == ir.KindValue {
		sfs = append(sfs, reflect.StructField{
			Name: "Composite",
			Type: shape.MarkerType(),
			Tag:  reflect.StructTag(fmt.Sprintf(`%s:%q`, shape.TagKey, name)),
		})
	} else {
		sfs = append(sfs, reflect.StructField{
			Name: identityField,
			Type: reflect.TypeFor[uint64](),
			Tag:  reflect.StructTag(fmt.Sprintf(`%s:%q`, shape.TagKey, name)),
		})
	}

	var fields []recordField
	used := map[string]string{sfs[0].Name: ""}
	for _, f := range ts.schema.AllFields(name) {
		expr, err := ir.ParseTypeExpr(f.Type)
		if err != nil {
			return &BuildError{Type: name, Message: err.Error()}
		}
		for _, dep := range expr.Deps() {
			if err := ts.build(dep.Name, building); err != nil {
				return err
			}
		}
		typ, err := ts.goType(expr)
		if err != nil {
			return &BuildError{Type: name, Message: fmt.Sprintf("field %s: %v", f.Name, err)}
		}

		goName := ExportedName(f.Name)
		if other, taken := used[goName]; taken {
			return &BuildError{Type: name, Message: fmt.Sprintf("fields %q and %q both map to Go field %s", other, f.Name, goName)}
		}
		used[goName] = f.Name

		fields = append(fields, recordField{Name: f.Name, Index: len(sfs), Expr: expr})
		sfs = append(sfs, reflect.StructField{
			Name: goName,
			Type: typ,
			Tag:  reflect.StructTag(fmt.Sprintf(`%s:%q`, shape.TagKey, f.Name)),
		})
	}

	ts.structs[name] = reflect.StructOf(sfs)
	ts.fields[name] = fields
	return nil
}

// goType maps a type expression to a Go type. Named types must be built.
func (ts *Types) goType(expr *ir.TypeExpr) (reflect.Type, error) {
	switch expr.Form {
	case ir.FormPrimitive:
		t, _ := ir.PrimitiveType(expr.Name)
		return t, nil
	case ir.FormAny:
		return reflect.TypeFor[any](), nil
	case ir.FormNamed:
		t, ok := ts.structs[expr.Name]
		if !ok {
			return nil, fmt.Errorf("type %q is not built", expr.Name)
		}
		return t, nil
	}

	elem, err := ts.goType(expr.Elem)
	if err != nil {
		return nil, err
	}
	switch expr.Form {
	case ir.FormPointer:
		return reflect.PointerTo(elem), nil
	case ir.FormSlice:
		return reflect.SliceOf(elem), nil
	case ir.FormArray:
		return reflect.ArrayOf(expr.Len, elem), nil
	default:
		return nil, fmt.Errorf("unknown form %v", expr.Form)
	}
}

// Resolve returns the Go type of a type expression over this schema.
func (ts *Types) Resolve(expr string) (reflect.Type, error) {
	parsed, err := ir.ParseTypeExpr(expr)
	if err != nil {
		return nil, err
	}
	return ts.goType(parsed)
}

// Struct returns the struct type built for a declared name.
func (ts *Types) Struct(name string) (reflect.Type, bool) {
	t, ok := ts.structs[name]
	return t, ok
}

// Schema returns the schema the types were built from.
func (ts *Types) Schema() *ir.Schema {
	return ts.schema
}

// ExportedName maps a declared field name to an exported Go field name.
func ExportedName(name string) string {
	goName := cases.Title(language.Und, cases.NoLower).String(name)
	if r, _ := utf8.DecodeRuneInString(goName); !unicode.IsUpper(r) {
		goName = "X" + goName
	}
	return goName
}
