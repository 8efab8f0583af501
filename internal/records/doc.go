// Package records builds Go types for declared schemas and instances of them
// from decoded YAML data.
//
// Value types become structs built with reflect.StructOf whose first field is
// a Composite marker tagged with the declared name, so two declarations with
// the same fields are still different Go types. They are registered in a
// shape.Registry, which makes pointers to them nullable handles compared
// structurally. Reference types become structs used only through pointers
// and compare by identity.
//
// Instance data:
//
//	{x: 1.5, y: bits:0x7ff8000000000001}  struct fields by declared name
//	null                                   nil handle, slice or any
//	{$ref: name}                           the existing instance called name
//	{type: "*Point", value: {...}}         dynamic value for an any field
//	[1, 2]                                 slice or array elements
//	[re, im]                               complex number
package records
