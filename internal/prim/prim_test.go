package prim

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(x any) reflect.Value { return reflect.ValueOf(x) }

func TestEqual_Integral(t *testing.T) {
	assert.True(t, Equal(v(int8(-3)), v(int8(-3))))
	assert.False(t, Equal(v(int64(1)), v(int64(2))))
	assert.True(t, Equal(v(uint16(7)), v(uint16(7))))
	assert.True(t, Equal(v('x'), v('x')))
	assert.True(t, Equal(v(true), v(true)))
	assert.False(t, Equal(v(true), v(false)))
	assert.True(t, Equal(v("héllo"), v("héllo")))
	assert.False(t, Equal(v("a"), v("b")))
}

func TestEqual_NaN(t *testing.T) {
	nan1 := math.NaN()
	nan2 := math.Float64frombits(0x7ff0000000000001) // signalling payload
	nan3 := math.Float64frombits(0xfff8000000000abc) // negative quiet payload

	require.True(t, math.IsNaN(nan2))
	require.True(t, math.IsNaN(nan3))
	assert.False(t, nan1 == nan2, "raw comparison reports NaN unordered")

	assert.True(t, Equal(v(nan1), v(nan1)))
	assert.True(t, Equal(v(nan1), v(nan2)))
	assert.True(t, Equal(v(nan2), v(nan3)))

	f1 := float32(math.NaN())
	f2 := math.Float32frombits(0x7f800001)
	assert.True(t, Equal(v(f1), v(f2)))
}

func TestEqual_SignedZero(t *testing.T) {
	pos := 0.0
	neg := math.Copysign(0, -1)
	require.True(t, pos == neg, "raw comparison reports zeros equal")

	assert.False(t, Equal(v(pos), v(neg)))
	assert.False(t, Equal(v(float32(pos)), v(float32(neg))))
	assert.True(t, Equal(v(neg), v(neg)))
}

func TestEqual_Complex(t *testing.T) {
	n := math.NaN()
	assert.True(t, Equal(v(complex(n, 1)), v(complex(n, 1))))
	assert.False(t, Equal(v(complex(0, 1)), v(complex(math.Copysign(0, -1), 1))))
	assert.True(t, Equal(v(complex64(complex(1, 2))), v(complex64(complex(1, 2)))))
}

func TestHash_Conventions(t *testing.T) {
	assert.Equal(t, int32(1231), Hash(v(true)))
	assert.Equal(t, int32(1237), Hash(v(false)))
	assert.Equal(t, int32(-5), Hash(v(int32(-5))))
	assert.Equal(t, int32(200), Hash(v(uint8(200))))

	// 64-bit values fold high and low words.
	assert.Equal(t, int32(0), Hash(v(int64(-1))), "0xffffffff ^ 0xffffffff")
	assert.Equal(t, int32(1), Hash(v(int64(1)<<32)))

	assert.Equal(t, int32(0x3f800000), Hash(v(float32(1))))
	assert.Equal(t, int32(0), Hash(v("")))
	assert.Equal(t, int32('a'*31+'b'), Hash(v("ab")))
}

func TestHash_ConsistentWithEqual(t *testing.T) {
	pairs := [][2]any{
		{math.NaN(), math.Float64frombits(0x7ff0000000000001)},
		{float32(math.NaN()), math.Float32frombits(0x7fc00abc)},
		{complex(math.NaN(), 0), complex(math.Float64frombits(0xfff8000000000001), 0)},
		{int64(99), int64(99)},
		{"same", "same"},
	}
	for _, p := range pairs {
		a, b := v(p[0]), v(p[1])
		require.True(t, Equal(a, b), "%v vs %v", p[0], p[1])
		assert.Equal(t, Hash(a), Hash(b), "%T values equal but hashes differ", p[0])
	}
}

func TestHash_SignedZeroDiffers(t *testing.T) {
	assert.NotEqual(t, Hash(v(0.0)), Hash(v(math.Copysign(0, -1))))
}

func TestLookup(t *testing.T) {
	eq, h, ok := Lookup(reflect.Float64)
	require.True(t, ok)
	assert.True(t, eq(v(1.5), v(1.5)))
	assert.Equal(t, Hash(v(1.5)), h(v(1.5)))

	_, _, ok = Lookup(reflect.Slice)
	assert.False(t, ok)
	assert.False(t, IsPrimitive(reflect.Map))
	assert.True(t, IsPrimitive(reflect.Uintptr))
}

func TestEqual_PanicsOnNonPrimitive(t *testing.T) {
	assert.Panics(t, func() { Equal(v([]int{}), v([]int{})) })
}

type hidden struct {
	f float64
}

func TestEqual_UnexportedFields(t *testing.T) {
	a := v(hidden{f: math.NaN()}).Field(0)
	b := v(hidden{f: math.NaN()}).Field(0)
	assert.True(t, Equal(a, b))
	assert.Equal(t, Hash(a), Hash(b))
}

func TestSameReference(t *testing.T) {
	listA := []int{1, 2, 3}
	listB := []int{1, 2, 3}
	assert.True(t, SameReference(v(listA), v(listA)))
	assert.False(t, SameReference(v(listA), v(listB)))
	assert.False(t, SameReference(v(listA), v(listA[:2])), "different length is a different view")

	x, y := new(int), new(int)
	assert.True(t, SameReference(v(x), v(x)))
	assert.False(t, SameReference(v(x), v(y)))

	m := map[string]int{}
	assert.True(t, SameReference(v(m), v(m)))

	assert.Panics(t, func() { SameReference(v(1), v(1)) })
}

func TestIdentityHash(t *testing.T) {
	listA := []int{1, 2, 3}
	assert.Equal(t, IdentityHash(v(listA)), IdentityHash(v(listA)))

	var nilSlice []int
	var nilPtr *int
	assert.Equal(t, int32(0), IdentityHash(v(nilSlice)))
	assert.Equal(t, int32(0), IdentityHash(v(nilPtr)))
	assert.Equal(t, int32(0), IdentityHash(reflect.Value{}))

	p := new(int)
	assert.Equal(t, Pointer(reflect.ValueOf(p).Pointer()), IdentityHash(v(p)))
}

func TestFold64(t *testing.T) {
	assert.Equal(t, int32(0), Fold64(0))
	assert.Equal(t, int32(3), Fold64(0x0000000100000002))
}
