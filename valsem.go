// Package valsem decides whether two Go values are substitutable, meaning no
// observation can tell them apart, and computes hash codes consistent with
// that relation.
//
// Structs and arrays held by value are value composites and compare field by
// field. A struct that embeds Composite is additionally compared through
// pointers to it:
//
//	type Point struct {
//		valsem.Composite
//		X, Y float64
//	}
//
//	valsem.Substitutable(&Point{X: 1}, &Point{X: 1}) // true, nil
//
// Floating-point fields follow boxed equality: every NaN equals every other
// NaN, and +0.0 differs from -0.0. Slices, maps, channels, funcs and pointers
// to unmarked types compare by identity.
//
// The package-level functions use a process-wide Engine whose hash salt is
// read from the VALSEM_HASH_SALT environment variable or, when unset, from
// the clock. Hash codes are stable within a run and differ between runs.
package valsem

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/roach88/valsem/internal/engine"
	"github.com/roach88/valsem/internal/shape"
)

// Composite marks a struct as a value composite when embedded.
type Composite = shape.Composite

// Hasher is implemented by reference types that define their own hash code.
type Hasher = engine.Hasher

// Engine is a substitutability engine with its own salt and function cache.
type Engine = engine.Engine

var (
	defaultOnce     sync.Once
	defaultEngine   *engine.Engine
	defaultRegistry = shape.NewRegistry()
)

// Default returns the process-wide engine, creating it on first use.
func Default() *Engine {
	defaultOnce.Do(func() {
		opts := []engine.Option{engine.WithIntrospector(shape.NewReflect(defaultRegistry))}
		salt, ok, err := engine.SaltFromEnv()
		if err != nil {
			slog.Warn("ignoring salt override", "env", engine.SaltEnv, "error", err)
		}
		if ok {
			opts = append(opts, engine.WithSalt(salt))
		}
		defaultEngine = engine.New(opts...)
	})
	return defaultEngine
}

// Register marks t, a struct type or pointer to one, as a value composite for
// the default engine. It is for types that cannot embed Composite, such as
// those built with reflect.StructOf.
func Register(t reflect.Type) error {
	return defaultRegistry.Register(t)
}

// Substitutable reports whether a and b are indistinguishable.
func Substitutable(a, b any) (bool, error) {
	return Default().Substitutable(a, b)
}

// Hash returns the structural hash code of o. Substitutable values have equal
// hash codes.
func Hash(o any) (int32, error) {
	return Default().Hash(o)
}

// MustSubstitutable is like Substitutable but panics on error.
func MustSubstitutable(a, b any) bool {
	ok, err := Substitutable(a, b)
	if err != nil {
		panic(err)
	}
	return ok
}

// MustHash is like Hash but panics on error.
func MustHash(o any) int32 {
	h, err := Hash(o)
	if err != nil {
		panic(err)
	}
	return h
}

// IsShapeResolutionError reports whether err means a type's fields could not
// be determined.
func IsShapeResolutionError(err error) bool {
	return engine.IsShapeResolutionError(err)
}

// IsCircularCompositionError reports whether err means a composite nests
// itself by value.
func IsCircularCompositionError(err error) bool {
	return engine.IsCircularCompositionError(err)
}

// IsInternalFailure reports whether err wraps a panic raised during traversal.
func IsInternalFailure(err error) bool {
	return engine.IsInternalFailure(err)
}
