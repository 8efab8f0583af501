// Package shape describes the observable structure of Go types for the
// substitutability engine.
//
// Every type is classified into one of three kinds:
//
//   - Primitive: booleans, integers, floats, complex numbers and strings.
//   - ValueComposite: structs held by value, arrays, and pointers to structs
//     that are marked as composites (the nullable handle to a composite).
//   - Reference: everything else. References are compared by identity.
//
// A struct is marked as a composite by embedding Composite, or by being
// registered in a Registry. Marking only matters for pointers: a *T where T is
// marked is compared structurally, a *T where T is not marked is compared by
// identity.
//
// Describe enumerates the fields of a composite in a deterministic order:
// declaration order, with embedded structs held by value expanded in place.
// Descriptions are computed once per type and cached.
//
// This package imports nothing internal.
package shape
