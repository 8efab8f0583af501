package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/valsem/internal/ir"
)

// CompileSchema parses the top-level `types` struct of a CUE value into a
// Schema. Types and fields keep their declaration order.
//
//	types: {
//		Point: {
//			fields: [{name: "x", type: "float64"}, {name: "y", type: "float64"}]
//		}
//		Point3: {
//			extends: "Point"
//			fields: [{name: "z", type: "float64"}]
//		}
//		Buffer: {kind: "reference"}
//	}
func CompileSchema(v cue.Value) (*ir.Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "types is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	schema := &ir.Schema{}
	for iter.Next() {
		decl, err := CompileType(iter.Value())
		if err != nil {
			return nil, err
		}
		schema.Types = append(schema.Types, *decl)
	}
	return schema, nil
}

// CompileType parses one type declaration. The type name is the last path
// selector of v.
func CompileType(v cue.Value) (*ir.TypeDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.TypeDecl{Kind: ir.KindValue}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = labels[len(labels)-1].String()
	}

	if kindVal := v.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
		kind, err := kindVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		decl.Kind = ir.DeclKind(kind)
	}

	if extVal := v.LookupPath(cue.ParsePath("extends")); extVal.Exists() {
		ext, err := extVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		decl.Extends = ext
	}

	fields, err := parseFields(v)
	if err != nil {
		return nil, err
	}
	decl.Fields = fields

	return decl, nil
}

// parseFields reads the optional `fields` list.
func parseFields(v cue.Value) ([]ir.FieldDecl, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.FieldDecl
	for iter.Next() {
		elem := iter.Value()
		name, err := requiredString(elem, "name")
		if err != nil {
			return nil, err
		}
		typ, err := requiredString(elem, "type")
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.FieldDecl{Name: name, Type: typ})
	}
	return fields, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   "fields." + field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
