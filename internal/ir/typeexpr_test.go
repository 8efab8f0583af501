package ir

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		in   string
		form Form
		str  string
	}{
		{"int64", FormPrimitive, "int64"},
		{"byte", FormPrimitive, "byte"},
		{"Point", FormNamed, "Point"},
		{"*Node", FormPointer, "*Node"},
		{"[]string", FormSlice, "[]string"},
		{"[3]float64", FormArray, "[3]float64"},
		{"[0]Point", FormArray, "[0]Point"},
		{"any", FormAny, "any"},
		{"[2][]*Node", FormArray, "[2][]*Node"},
		{"  string ", FormPrimitive, "string"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := ParseTypeExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.form, expr.Form)
			assert.Equal(t, tt.str, expr.String())
		})
	}
}

func TestParseTypeExpr_Invalid(t *testing.T) {
	for _, in := range []string{"", "*", "[]", "[x]int", "[-1]int", "[3int", "9lives", "map[string]int", "a.b"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTypeExpr(in)
			require.Error(t, err)
			var te *TypeExprError
			assert.ErrorAs(t, err, &te)
		})
	}
}

func TestTypeExprDeps(t *testing.T) {
	tests := []struct {
		in   string
		want []Dep
	}{
		{"int", nil},
		{"Point", []Dep{{Name: "Point", ByValue: true}}},
		{"[4]Point", []Dep{{Name: "Point", ByValue: true}}},
		{"*Node", []Dep{{Name: "Node", ByValue: false}}},
		{"[2]*Node", []Dep{{Name: "Node", ByValue: false}}},
		{"[]Point", []Dep{{Name: "Point", ByValue: false}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, err := ParseTypeExpr(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Deps())
		})
	}
}

func TestPrimitiveType(t *testing.T) {
	typ, ok := PrimitiveType("rune")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[int32](), typ)

	_, ok = PrimitiveType("Point")
	assert.False(t, ok)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("Point"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier("a-b"))
	assert.False(t, IsIdentifier("é"))
}
