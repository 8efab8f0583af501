package compiler

import (
	"fmt"

	"github.com/roach88/valsem/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrEmptyName          = "E101" // type or field name is empty
	ErrInvalidIdentifier  = "E102" // name is not an identifier
	ErrDuplicateType      = "E103" // type declared twice
	ErrDuplicateField     = "E104" // field declared twice, including inherited fields
	ErrInvalidTypeExpr    = "E105" // field type does not parse
	ErrUnknownType        = "E106" // field type or base names an undeclared type
	ErrInvalidKind        = "E107" // kind is not "value" or "reference"
	ErrReferenceByValue   = "E108" // reference type used without a pointer
	ErrInvalidExtends     = "E109" // reference kind with extends, or extending a reference type
	ErrReservedName       = "E110" // type name shadows a primitive or "any"
	ErrCircularComposite  = "E111" // value type nests itself by value
	ErrUnsupportedPointer = "E112" // recursion through pointers (dynamic records cannot express it)
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled schema against the declaration rules.
// Returns all errors found (does not fail-fast). Cycles are reported by
// AnalyzeCycles, not here.
func Validate(s *ir.Schema) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]*ir.TypeDecl, len(s.Types))
	for i := range s.Types {
		decl := &s.Types[i]
		path := fmt.Sprintf("types[%d]", i)

		switch {
		case decl.Name == "":
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: "type name is required",
				Code:    ErrEmptyName,
			})
			continue
		case !ir.IsIdentifier(decl.Name):
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("type name %q is not an identifier", decl.Name),
				Code:    ErrInvalidIdentifier,
			})
			continue
		}
		if isReserved(decl.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("type name %q is reserved", decl.Name),
				Code:    ErrReservedName,
			})
		}
		if _, dup := declared[decl.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate type name: %q", decl.Name),
				Code:    ErrDuplicateType,
			})
			continue
		}
		declared[decl.Name] = decl

		if !ir.ValidKinds[decl.Kind] {
			errs = append(errs, ValidationError{
				Field:   path + ".kind",
				Message: fmt.Sprintf("invalid kind %q, must be \"value\" or \"reference\"", decl.Kind),
				Code:    ErrInvalidKind,
			})
		}
	}

	for i := range s.Types {
		decl := &s.Types[i]
		if declared[decl.Name] != decl {
			continue
		}
		path := fmt.Sprintf("types[%d]", i)
		errs = append(errs, validateExtends(decl, declared, path)...)
		errs = append(errs, validateFields(s, decl, declared, path)...)
	}

	return errs
}

func isReserved(name string) bool {
	if name == "any" {
		return true
	}
	_, ok := ir.PrimitiveType(name)
	return ok
}

func validateExtends(decl *ir.TypeDecl, declared map[string]*ir.TypeDecl, path string) []ValidationError {
	if decl.Extends == "" {
		return nil
	}
	if decl.Kind == ir.KindReference {
		return []ValidationError{{
			Field:   path + ".extends",
			Message: fmt.Sprintf("reference type %q cannot extend another type", decl.Name),
			Code:    ErrInvalidExtends,
		}}
	}
	base, ok := declared[decl.Extends]
	if !ok {
		return []ValidationError{{
			Field:   path + ".extends",
			Message: fmt.Sprintf("unknown base type %q", decl.Extends),
			Code:    ErrUnknownType,
		}}
	}
	if base.Kind == ir.KindReference {
		return []ValidationError{{
			Field:   path + ".extends",
			Message: fmt.Sprintf("value type %q cannot extend reference type %q", decl.Name, base.Name),
			Code:    ErrInvalidExtends,
		}}
	}
	return nil
}

func validateFields(s *ir.Schema, decl *ir.TypeDecl, declared map[string]*ir.TypeDecl, path string) []ValidationError {
	var errs []ValidationError

	// Inherited names count as taken.
	seen := make(map[string]bool)
	if decl.Extends != "" {
		for _, f := range s.AllFields(decl.Extends) {
			seen[f.Name] = true
		}
	}

	for j, f := range decl.Fields {
		fpath := fmt.Sprintf("%s.fields[%d]", path, j)
		switch {
		case f.Name == "":
			errs = append(errs, ValidationError{
				Field:   fpath + ".name",
				Message: "field name is required",
				Code:    ErrEmptyName,
			})
		case !ir.IsIdentifier(f.Name):
			errs = append(errs, ValidationError{
				Field:   fpath + ".name",
				Message: fmt.Sprintf("field name %q is not an identifier", f.Name),
				Code:    ErrInvalidIdentifier,
			})
		case seen[f.Name]:
			errs = append(errs, ValidationError{
				Field:   fpath + ".name",
				Message: fmt.Sprintf("duplicate field name %q in type %q", f.Name, decl.Name),
				Code:    ErrDuplicateField,
			})
		}
		seen[f.Name] = true

		expr, err := ir.ParseTypeExpr(f.Type)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fpath + ".type",
				Message: err.Error(),
				Code:    ErrInvalidTypeExpr,
			})
			continue
		}
		errs = append(errs, validateTypeExpr(expr, nil, declared, fpath+".type")...)
	}
	return errs
}

// validateTypeExpr checks every declared name in expr. parent is the
// enclosing constructor, nil at the top.
func validateTypeExpr(expr, parent *ir.TypeExpr, declared map[string]*ir.TypeDecl, path string) []ValidationError {
	if expr.Form != ir.FormNamed {
		if expr.Elem == nil {
			return nil
		}
		return validateTypeExpr(expr.Elem, expr, declared, path)
	}

	decl, ok := declared[expr.Name]
	if !ok {
		return []ValidationError{{
			Field:   path,
			Message: fmt.Sprintf("unknown type %q", expr.Name),
			Code:    ErrUnknownType,
		}}
	}
	if decl.Kind == ir.KindReference && (parent == nil || parent.Form != ir.FormPointer) {
		return []ValidationError{{
			Field:   path,
			Message: fmt.Sprintf("reference type %q must be used through a pointer (*%s)", expr.Name, expr.Name),
			Code:    ErrReferenceByValue,
		}}
	}
	return nil
}

// Check validates s and analyzes its cycles. It returns every problem found;
// an empty result means the schema can be built.
func Check(s *ir.Schema) []error {
	var errs []error
	for _, e := range Validate(s) {
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return errs
	}
	for _, c := range AnalyzeCycles(s) {
		errs = append(errs, c)
	}
	return errs
}
