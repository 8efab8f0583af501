package shape

import "fmt"

// Kind classifies a type for substitutability.
type Kind uint8

const (
	// Invalid is the zero Kind, reported for a nil type.
	Invalid Kind = iota
	// Primitive types compare by value using the boxed-equality rules.
	Primitive
	// ValueComposite types compare field by field.
	ValueComposite
	// Reference types compare by identity.
	Reference
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Primitive:
		return "primitive"
	case ValueComposite:
		return "value"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// FieldKind classifies a field by its declared type.
type FieldKind uint8

const (
	// FieldPrimitive is a field of primitive type.
	FieldPrimitive FieldKind = iota + 1
	// FieldNestedValue is a field holding a value composite, either by value
	// or through a nullable handle.
	FieldNestedValue
	// FieldReference is a field holding a plain reference.
	FieldReference
)

func (k FieldKind) String() string {
	switch k {
	case FieldPrimitive:
		return "primitive"
	case FieldNestedValue:
		return "nested"
	case FieldReference:
		return "reference"
	default:
		return fmt.Sprintf("FieldKind(%d)", uint8(k))
	}
}
