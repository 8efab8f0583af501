// Package engine decides substitutability and computes structural hash codes
// for value composites.
//
// Two values are substitutable when no observation can tell them apart.
// Primitives compare by boxed equality, value composites compare field by
// field, and everything else compares by identity.
//
// ARCHITECTURE:
//
// Dispatcher:
// Substitutable and Hash classify the runtime type of their operands and
// take a fast path for nulls, primitives and references. Value composites
// go through the function cache.
//
// Function Cache:
// The first request for a composite type synthesizes a Pair, a comparator
// and a hasher specialized to that type's fields. Pairs are installed with
// compute-if-absent semantics and never evicted. Concurrent first requests
// may synthesize twice; one result wins and both callers use it.
//
// Synthesis:
//  1. Describe the type's fields through the shape.Introspector
//  2. Synthesize nested composites held by value (eager, same session)
//  3. Link nested composites held through handles (lazy, on first use)
//  4. Build the comparator and hasher over the same field order
//
// A composite that nests itself by value is rejected with a
// CIRCULAR_COMPOSITION error. Nesting through a handle is allowed.
//
// Traversal:
// Each Substitutable or Hash call carries the handles it has followed.
// Comparison takes a handle pair met a second time as equal, so values that
// refer to themselves compare as the graphs they are. Hashing fails with
// CIRCULAR_COMPOSITION when a handle reappears on its own path, since such a
// value has no finite hash.
//
// INVARIANTS:
//
// Equal-implies-equal-hash: if Substitutable(a, b) then Hash(a) == Hash(b).
// Both functions visit the same fields in the same order with compatible
// per-field pairs.
//
// Salt: every composite hash starts from the engine salt. The salt is fixed
// for the lifetime of an Engine and differs between runs unless configured.
package engine
