package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/valsem/internal/shape"
)

// loopA and loopB are ordinary structs; scriptedShapes describes loopB as
// holding a loopA by value, which Go itself cannot express.
type loopA struct {
	shape.Composite
	B loopB
}

type loopB struct {
	shape.Composite
	N int
}

type unreadable struct {
	shape.Composite
	N int
}

// scriptedShapes overrides the descriptions of selected types.
type scriptedShapes struct {
	*shape.Reflect
	describe map[reflect.Type]func() (*shape.Type, error)
}

func (s *scriptedShapes) Describe(t reflect.Type) (*shape.Type, error) {
	if f, ok := s.describe[t]; ok {
		return f()
	}
	return s.Reflect.Describe(t)
}

func newScripted() *scriptedShapes {
	return &scriptedShapes{
		Reflect:  shape.NewReflect(nil),
		describe: make(map[reflect.Type]func() (*shape.Type, error)),
	}
}

func TestCircularComposition(t *testing.T) {
	shapes := newScripted()
	typA, typB := reflect.TypeFor[loopA](), reflect.TypeFor[loopB]()
	shapes.describe[typB] = func() (*shape.Type, error) {
		return &shape.Type{Go: typB, Kind: shape.ValueComposite, Fields: []shape.Field{{
			Name: "A",
			Type: typA,
			Kind: shape.FieldNestedValue,
			Get:  func(v reflect.Value) reflect.Value { return reflect.Zero(typA) },
		}}}, nil
	}
	e := New(WithSalt(1), WithIntrospector(shapes))

	_, err := e.Substitutable(loopA{}, loopA{})

	require.Error(t, err)
	assert.True(t, IsCircularCompositionError(err))
	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{"engine.loopA", "engine.loopB", "engine.loopA"}, ee.Path)
	assert.Equal(t, "engine.loopA", ee.Type)
	assert.Contains(t, err.Error(), "engine.loopA → engine.loopB → engine.loopA")

	_, err = e.Hash(loopA{})
	assert.True(t, IsCircularCompositionError(err), "failed types are not cached")
	assert.Equal(t, 0.0, countSynthesized(e))
}

func TestCircularComposition_DirectSelf(t *testing.T) {
	shapes := newScripted()
	typ := reflect.TypeFor[loopB]()
	shapes.describe[typ] = func() (*shape.Type, error) {
		return &shape.Type{Go: typ, Kind: shape.ValueComposite, Fields: []shape.Field{{
			Name: "Self",
			Type: typ,
			Kind: shape.FieldNestedValue,
			Get:  func(v reflect.Value) reflect.Value { return v },
		}}}, nil
	}
	e := New(WithSalt(1), WithIntrospector(shapes))

	_, err := e.Hash(loopB{})

	require.Error(t, err)
	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{"engine.loopB", "engine.loopB"}, ee.Path)
}

func TestShapeResolutionFailure(t *testing.T) {
	shapes := newScripted()
	cause := errors.New("metadata stripped")
	shapes.describe[reflect.TypeFor[unreadable]()] = func() (*shape.Type, error) {
		return nil, cause
	}
	e := New(WithSalt(1), WithIntrospector(shapes))

	_, err := e.Substitutable(unreadable{N: 1}, unreadable{N: 1})

	require.Error(t, err)
	assert.True(t, IsShapeResolutionError(err))
	assert.False(t, IsCircularCompositionError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "type=engine.unreadable")
}

func TestAccessorPanicIsInternalFailure(t *testing.T) {
	shapes := newScripted()
	typ := reflect.TypeFor[unreadable]()
	shapes.describe[typ] = func() (*shape.Type, error) {
		return &shape.Type{Go: typ, Kind: shape.ValueComposite, Fields: []shape.Field{{
			Name: "N",
			Type: reflect.TypeFor[int](),
			Kind: shape.FieldPrimitive,
			Get:  func(reflect.Value) reflect.Value { panic(errors.New("accessor broke")) },
		}}}, nil
	}
	e := New(WithSalt(1), WithIntrospector(shapes))

	_, err := e.Substitutable(unreadable{}, unreadable{})

	require.Error(t, err)
	assert.True(t, IsInternalFailure(err))
	assert.Contains(t, err.Error(), "accessor broke")
}

func TestHandleCycleIsNotCircular(t *testing.T) {
	e := New(WithSalt(1))

	p, err := e.Pair(reflect.TypeFor[node]())

	require.NoError(t, err)
	assert.NotNil(t, p)
}

func countSynthesized(e *Engine) float64 {
	var n float64
	e.cache.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func ring(values ...int) *node {
	head := list(values...)
	last := head
	for last.Next != nil {
		last = last.Next
	}
	last.Next = head
	return head
}

func TestSelfReferencingHandles_Substitutable(t *testing.T) {
	e := New(WithSalt(1))

	a, b := ring(1), ring(1)
	ok, err := e.Substitutable(a, b)
	require.NoError(t, err)
	assert.True(t, ok, "one-node loops with equal values")

	ok, err = e.Substitutable(ring(1, 2, 1, 2), ring(1, 2))
	require.NoError(t, err)
	assert.True(t, ok, "unrolled loop is indistinguishable")

	ok, err = e.Substitutable(ring(1, 2), ring(1, 3))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.Substitutable(ring(1), list(1, 1, 1))
	require.NoError(t, err)
	assert.False(t, ok, "a loop never reaches nil")
}

func TestSelfReferencingHandles_InterfaceField(t *testing.T) {
	e := New(WithSalt(1))

	a, b := &holder{}, &holder{}
	a.Any, b.Any = a, b

	ok, err := e.Substitutable(a, b)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSelfReferencingHandles_Hash(t *testing.T) {
	e := New(WithSalt(1))

	_, err := e.Hash(ring(1, 2))

	require.Error(t, err)
	assert.True(t, IsCircularCompositionError(err))
	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{"engine.node", "engine.node", "engine.node"}, ee.Path)
	assert.Contains(t, err.Error(), "no finite hash")

	_, err = e.Hash(boxOf(ring(4)))
	assert.True(t, IsCircularCompositionError(err), "loop below a value composite")
}

func TestSharedHandlesAreNotCycles(t *testing.T) {
	e := New(WithSalt(1))
	shared := list(7)

	a := &node{Value: 1, Next: shared}
	b := &pairOfNodes{Left: shared, Right: shared}

	_, err := e.Hash(a)
	require.NoError(t, err)
	h, err := e.Hash(b)
	require.NoError(t, err)

	c := &pairOfNodes{Left: list(7), Right: list(7)}
	assert.Equal(t, h, mustHash(t, e, c), "sharing is not observable")
}

type pairOfNodes struct {
	shape.Composite
	Left, Right *node
}

type nodeBox struct {
	shape.Composite
	N *node
}

func boxOf(n *node) nodeBox {
	return nodeBox{N: n}
}

func TestFirstUnequalFieldDecides(t *testing.T) {
	shapes := newScripted()
	typ := reflect.TypeFor[unreadable]()
	shapes.describe[typ] = func() (*shape.Type, error) {
		return &shape.Type{Go: typ, Kind: shape.ValueComposite, Fields: []shape.Field{
			{
				Name: "N",
				Type: reflect.TypeFor[int](),
				Kind: shape.FieldPrimitive,
				Get:  func(v reflect.Value) reflect.Value { return v.FieldByName("N") },
			},
			{
				Name: "Later",
				Type: reflect.TypeFor[int](),
				Kind: shape.FieldPrimitive,
				Get:  func(reflect.Value) reflect.Value { panic(errors.New("read after a decided comparison")) },
			},
		}}, nil
	}
	e := New(WithSalt(1), WithIntrospector(shapes))

	ok, err := e.Substitutable(unreadable{N: 1}, unreadable{N: 2})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.Substitutable(unreadable{N: 1}, unreadable{N: 1})
	assert.True(t, IsInternalFailure(err), "equal first field moves on to the second")
}
