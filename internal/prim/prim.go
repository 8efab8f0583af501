// Package prim implements substitutability equality and hashing for
// primitive values and identity hashing for references.
//
// Equality deliberately differs from == for floating-point kinds: values are
// compared by their canonical bit patterns, so every NaN equals every other
// NaN of the same kind, while +0.0 and -0.0 are different values.
//
// Hash codes follow the usual boxed conventions: 64-bit values fold their
// high and low words, floats hash their canonical bits, strings fold bytes
// with a multiplier of 31.
package prim

import (
	"math"
	"reflect"
	"unsafe"
)

// Canonical NaN bit patterns. Every NaN is replaced by these before
// comparison or hashing.
const (
	canonicalNaN32 uint32 = 0x7fc00000
	canonicalNaN64 uint64 = 0x7ff8000000000000
)

// EqualFunc compares two primitive values of the same type.
type EqualFunc func(a, b reflect.Value) bool

// HashFunc hashes one primitive value.
type HashFunc func(v reflect.Value) int32

type entry struct {
	equal EqualFunc
	hash  HashFunc
}

// table holds one entry per primitive kind.
var table = map[reflect.Kind]entry{
	reflect.Bool:       {equalBool, hashBool},
	reflect.Int:        {equalInt, hashInt64},
	reflect.Int8:       {equalInt, hashInt32},
	reflect.Int16:      {equalInt, hashInt32},
	reflect.Int32:      {equalInt, hashInt32},
	reflect.Int64:      {equalInt, hashInt64},
	reflect.Uint:       {equalUint, hashUint64},
	reflect.Uint8:      {equalUint, hashUint32},
	reflect.Uint16:     {equalUint, hashUint32},
	reflect.Uint32:     {equalUint, hashUint32},
	reflect.Uint64:     {equalUint, hashUint64},
	reflect.Uintptr:    {equalUint, hashUint64},
	reflect.Float32:    {equalFloat32, hashFloat32},
	reflect.Float64:    {equalFloat64, hashFloat64},
	reflect.Complex64:  {equalComplex64, hashComplex64},
	reflect.Complex128: {equalComplex128, hashComplex128},
	reflect.String:     {equalString, hashString},
}

// Lookup returns the equality and hash functions for kind k.
// ok is false if k is not a primitive kind.
func Lookup(k reflect.Kind) (EqualFunc, HashFunc, bool) {
	e, ok := table[k]
	if !ok {
		return nil, nil, false
	}
	return e.equal, e.hash, true
}

// IsPrimitive reports whether k is a primitive kind.
func IsPrimitive(k reflect.Kind) bool {
	_, ok := table[k]
	return ok
}

// Equal compares two primitive values of the same type.
// It panics if the kind is not primitive.
func Equal(a, b reflect.Value) bool {
	return mustLookup(a.Kind()).equal(a, b)
}

// Hash hashes a primitive value.
// It panics if the kind is not primitive.
func Hash(v reflect.Value) int32 {
	return mustLookup(v.Kind()).hash(v)
}

func mustLookup(k reflect.Kind) entry {
	e, ok := table[k]
	if !ok {
		panic("prim: not a primitive kind: " + k.String())
	}
	return e
}

// Float32Bits returns the bits of f with every NaN canonicalised.
func Float32Bits(f float32) uint32 {
	if f != f {
		return canonicalNaN32
	}
	return math.Float32bits(f)
}

// Float64Bits returns the bits of f with every NaN canonicalised.
func Float64Bits(f float64) uint64 {
	if f != f {
		return canonicalNaN64
	}
	return math.Float64bits(f)
}

// Fold64 folds a 64-bit value into 32 bits by XOR of its halves.
func Fold64(u uint64) int32 {
	return int32(uint32(u ^ u>>32))
}

// Combine folds h into acc with multiplier 31. Overflow wraps.
func Combine(acc, h int32) int32 {
	return acc*31 + h
}

// String hashes s byte by byte with multiplier 31.
func String(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = Combine(h, int32(s[i]))
	}
	return h
}

// Pointer hashes an address.
func Pointer(p uintptr) int32 {
	if unsafe.Sizeof(p) == 4 {
		return int32(uint32(p))
	}
	return Fold64(uint64(p))
}

func equalBool(a, b reflect.Value) bool { return a.Bool() == b.Bool() }

func equalInt(a, b reflect.Value) bool { return a.Int() == b.Int() }

func equalUint(a, b reflect.Value) bool { return a.Uint() == b.Uint() }

func equalString(a, b reflect.Value) bool { return a.String() == b.String() }

func equalFloat32(a, b reflect.Value) bool {
	return Float32Bits(float32(a.Float())) == Float32Bits(float32(b.Float()))
}

func equalFloat64(a, b reflect.Value) bool {
	return Float64Bits(a.Float()) == Float64Bits(b.Float())
}

func equalComplex64(a, b reflect.Value) bool {
	x, y := a.Complex(), b.Complex()
	return Float32Bits(float32(real(x))) == Float32Bits(float32(real(y))) &&
		Float32Bits(float32(imag(x))) == Float32Bits(float32(imag(y)))
}

func equalComplex128(a, b reflect.Value) bool {
	x, y := a.Complex(), b.Complex()
	return Float64Bits(real(x)) == Float64Bits(real(y)) &&
		Float64Bits(imag(x)) == Float64Bits(imag(y))
}

func hashBool(v reflect.Value) int32 {
	if v.Bool() {
		return 1231
	}
	return 1237
}

func hashInt32(v reflect.Value) int32 { return int32(v.Int()) }

func hashInt64(v reflect.Value) int32 { return Fold64(uint64(v.Int())) }

func hashUint32(v reflect.Value) int32 { return int32(uint32(v.Uint())) }

func hashUint64(v reflect.Value) int32 { return Fold64(v.Uint()) }

func hashFloat32(v reflect.Value) int32 { return int32(Float32Bits(float32(v.Float()))) }

func hashFloat64(v reflect.Value) int32 { return Fold64(Float64Bits(v.Float())) }

func hashComplex64(v reflect.Value) int32 {
	c := v.Complex()
	return Combine(int32(Float32Bits(float32(real(c)))), int32(Float32Bits(float32(imag(c)))))
}

func hashComplex128(v reflect.Value) int32 {
	c := v.Complex()
	return Combine(Fold64(Float64Bits(real(c))), Fold64(Float64Bits(imag(c))))
}

func hashString(v reflect.Value) int32 { return String(v.String()) }
