package shape

import (
	"reflect"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Composite
	X, Y float64
}

type plain struct {
	N int
}

type base struct {
	ID   int64
	Tags []string
}

type derived struct {
	Composite
	Name string
	base
	_     int32
	Score float32
	Next  *derived
	Other *plain
	Any   any
}

type empty struct {
	Composite
}

func fieldNames(t *Type) []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

func TestClassify(t *testing.T) {
	r := NewReflect(nil)

	tests := []struct {
		name string
		typ  reflect.Type
		want Kind
	}{
		{"nil", nil, Invalid},
		{"bool", reflect.TypeFor[bool](), Primitive},
		{"int64", reflect.TypeFor[int64](), Primitive},
		{"uintptr", reflect.TypeFor[uintptr](), Primitive},
		{"float32", reflect.TypeFor[float32](), Primitive},
		{"complex128", reflect.TypeFor[complex128](), Primitive},
		{"string", reflect.TypeFor[string](), Primitive},
		{"marked struct", reflect.TypeFor[point](), ValueComposite},
		{"plain struct by value", reflect.TypeFor[plain](), ValueComposite},
		{"array", reflect.TypeFor[[3]int](), ValueComposite},
		{"handle", reflect.TypeFor[*point](), ValueComposite},
		{"pointer to plain", reflect.TypeFor[*plain](), Reference},
		{"slice", reflect.TypeFor[[]int](), Reference},
		{"map", reflect.TypeFor[map[string]int](), Reference},
		{"chan", reflect.TypeFor[chan int](), Reference},
		{"func", reflect.TypeFor[func()](), Reference},
		{"interface", reflect.TypeFor[any](), Reference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Classify(tt.typ))
		})
	}
}

func TestDescribe_DeclarationOrderWithEmbeddedExpanded(t *testing.T) {
	r := NewReflect(nil)

	desc, err := r.Describe(reflect.TypeFor[derived]())
	require.NoError(t, err)

	want := []string{"Name", "base.ID", "base.Tags", "Score", "Next", "Other", "Any"}
	if diff := cmp.Diff(want, fieldNames(desc)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}

	kinds := make([]FieldKind, len(desc.Fields))
	for i, f := range desc.Fields {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []FieldKind{
		FieldPrimitive, FieldPrimitive, FieldReference, FieldPrimitive,
		FieldNestedValue, FieldReference, FieldReference,
	}, kinds)
}

func TestDescribe_AccessorsReadPromotedFields(t *testing.T) {
	r := NewReflect(nil)
	desc, err := r.Describe(reflect.TypeFor[derived]())
	require.NoError(t, err)

	v := reflect.ValueOf(derived{Name: "n", base: base{ID: 42}, Score: 1.5})
	assert.Equal(t, "n", desc.Fields[0].Get(v).String())
	assert.Equal(t, int64(42), desc.Fields[1].Get(v).Int())
	assert.Equal(t, 1.5, desc.Fields[3].Get(v).Float())
}

func TestDescribe_Array(t *testing.T) {
	r := NewReflect(nil)
	desc, err := r.Describe(reflect.TypeFor[[3]point]())
	require.NoError(t, err)

	assert.Equal(t, []string{"[0]", "[1]", "[2]"}, fieldNames(desc))
	for _, f := range desc.Fields {
		assert.Equal(t, FieldNestedValue, f.Kind)
	}

	v := reflect.ValueOf([3]point{{X: 1}, {X: 2}, {X: 3}})
	assert.Equal(t, 3.0, desc.Fields[2].Get(v).Field(1).Float())
}

func TestDescribe_EmptyComposite(t *testing.T) {
	r := NewReflect(nil)
	desc, err := r.Describe(reflect.TypeFor[empty]())
	require.NoError(t, err)
	assert.Empty(t, desc.Fields)
}

func TestDescribe_Stable(t *testing.T) {
	r := NewReflect(nil)
	first, err := r.Describe(reflect.TypeFor[derived]())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := r.Describe(reflect.TypeFor[derived]())
		require.NoError(t, err)
		assert.Same(t, first, again, "cached description should be reused")
	}

	// A fresh introspector yields the same order.
	other, err := NewReflect(nil).Describe(reflect.TypeFor[derived]())
	require.NoError(t, err)
	assert.Equal(t, fieldNames(first), fieldNames(other))
}

func TestDescribe_Concurrent(t *testing.T) {
	r := NewReflect(nil)
	const goroutines = 32

	var wg sync.WaitGroup
	results := make([]*Type, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			desc, err := r.Describe(reflect.TypeFor[point]())
			if err == nil {
				results[i] = desc
			}
		}(i)
	}
	wg.Wait()

	for _, desc := range results {
		require.NotNil(t, desc)
		assert.Same(t, results[0], desc, "all callers observe the stored description")
	}
}

func TestDescribe_Errors(t *testing.T) {
	r := NewReflect(nil)

	_, err := r.Describe(nil)
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, err.Error(), "nil type")

	_, err = r.Describe(reflect.TypeFor[int]())
	require.ErrorAs(t, err, &re)
	assert.Equal(t, reflect.TypeFor[int](), re.Type)
	assert.Contains(t, err.Error(), "not a value composite")

	_, err = r.Describe(reflect.TypeFor[*point]())
	require.ErrorAs(t, err, &re)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	r := NewReflect(reg)

	assert.Equal(t, Reference, r.Classify(reflect.TypeFor[*plain]()))

	require.NoError(t, reg.Register(reflect.TypeFor[*plain]()))
	assert.True(t, reg.Registered(reflect.TypeFor[plain]()))
	assert.Equal(t, ValueComposite, r.Classify(reflect.TypeFor[*plain]()))
	assert.True(t, r.IsHandle(reflect.TypeFor[*plain]()))

	// Idempotent.
	require.NoError(t, reg.Register(reflect.TypeFor[plain]()))

	var re *ResolutionError
	require.ErrorAs(t, reg.Register(reflect.TypeFor[int]()), &re)
	require.ErrorAs(t, reg.Register(nil), &re)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "<nil>", TypeName(nil))
	assert.Equal(t, "shape.point", TypeName(reflect.TypeFor[point]()))

	dynamic := reflect.StructOf([]reflect.StructField{
		{Name: "Composite", Type: MarkerType(), Tag: `valsem:"Money"`},
		{Name: "Units", Type: reflect.TypeFor[int64]()},
	})
	assert.Equal(t, "Money", TypeName(dynamic))
	assert.True(t, IsMarker(dynamic.Field(0).Type))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "primitive", Primitive.String())
	assert.Equal(t, "value", ValueComposite.String())
	assert.Equal(t, "reference", Reference.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "nested", FieldNestedValue.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
