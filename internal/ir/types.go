package ir

// Schema is a compiled set of type declarations.
type Schema struct {
	Types []TypeDecl `json:"types"`
}

// TypeDecl declares one composite type.
type TypeDecl struct {
	Name    string      `json:"name"`
	Kind    DeclKind    `json:"kind"`
	Extends string      `json:"extends,omitempty"` // Base type; its fields come first
	Fields  []FieldDecl `json:"fields"`
}

// FieldDecl declares one field of a type.
type FieldDecl struct {
	Name string `json:"name"`
	Type string `json:"type"` // Type expression, see ParseTypeExpr
}

// DeclKind says how instances of a declared type are compared.
type DeclKind string

const (
	// KindValue types are value composites: compared field by field.
	KindValue DeclKind = "value"

	// KindReference types are ordinary objects: compared by identity.
	KindReference DeclKind = "reference"
)

// ValidKinds defines allowed declaration kinds.
var ValidKinds = map[DeclKind]bool{
	KindValue:     true,
	KindReference: true,
}

// Lookup returns the declaration named name.
func (s *Schema) Lookup(name string) (*TypeDecl, bool) {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// Names returns the declared type names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Types))
	for i, t := range s.Types {
		names[i] = t.Name
	}
	return names
}

// AllFields returns the fields of name with inherited fields first, base
// before derived. It stops at an unknown base and at a repeated type, so it
// terminates on unvalidated schemas.
func (s *Schema) AllFields(name string) []FieldDecl {
	var chain []*TypeDecl
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		seen[name] = true
		decl, ok := s.Lookup(name)
		if !ok {
			break
		}
		chain = append(chain, decl)
		name = decl.Extends
	}

	var fields []FieldDecl
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, chain[i].Fields...)
	}
	return fields
}
