package engine

import (
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/valsem/internal/prim"
	"github.com/roach88/valsem/internal/shape"
)

// Hasher is implemented by reference types that define their own hash code.
// The hash of a reference field is Hash() when the referenced object offers
// it, and its identity hash otherwise.
type Hasher interface {
	Hash() uint32
}

// Engine decides substitutability and computes structural hash codes.
//
// Thread-safety: all methods are safe for concurrent use. The function cache
// is the only shared mutable state; it is never locked as a whole and never
// evicts entries.
type Engine struct {
	salt    int32
	shapes  shape.Introspector
	cache   sync.Map // map[reflect.Type]*Pair
	metrics *Metrics
	logger  *slog.Logger

	// Construction-time settings, read only by New.
	saltSet    bool
	clock      func() time.Time
	registerer prometheus.Registerer
}

// Option configures an Engine.
type Option func(*Engine)

// WithSalt fixes the salt instead of deriving it from the clock.
func WithSalt(salt int32) Option {
	return func(e *Engine) {
		e.salt = salt
		e.saltSet = true
	}
}

// WithClock sets the clock the default salt is derived from.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// WithIntrospector replaces the reflect-backed introspector.
func WithIntrospector(shapes shape.Introspector) Option {
	return func(e *Engine) {
		e.shapes = shapes
	}
}

// WithRegisterer registers the engine metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
	}
}

// WithLogger sets the logger. Synthesis is logged at Debug, failures at Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. Without options it uses a reflect-backed
// introspector with an empty registry, a salt read from time.Now, unregistered
// metrics and slog.Default().
func New(opts ...Option) *Engine {
	e := &Engine{
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.saltSet {
		e.salt = ClockSalt(e.clock())
	}
	if e.shapes == nil {
		e.shapes = shape.NewReflect(nil)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.metrics = NewMetrics(e.registerer)

	return e
}

// Salt returns the salt folded into every structural hash.
func (e *Engine) Salt() int32 {
	return e.salt
}

// Introspector returns the introspector the engine synthesizes from.
func (e *Engine) Introspector() shape.Introspector {
	return e.shapes
}

// Metrics returns the engine's collectors.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Substitutable reports whether a and b are indistinguishable:
//   - both null: true
//   - exactly one null: false
//   - different runtime types: false
//   - primitive: boxed equality (NaN equals NaN, +0.0 differs from -0.0)
//   - value composite: field by field through the cached comparator
//   - reference: identity
//
// Null is a nil interface or a nil pointer, map, slice, chan or func.
func (e *Engine) Substitutable(a, b any) (ok bool, err error) {
	defer e.recover(&err, reflect.TypeOf(a))
	return e.equal(&walk{}, reflect.ValueOf(a), reflect.ValueOf(b)), nil
}

// Hash returns the structural hash code of o. For any a and b with
// Substitutable(a, b), Hash(a) == Hash(b). Null hashes to 0, primitives use
// the boxed hash conventions and references hash by identity unless they
// implement Hasher.
func (e *Engine) Hash(o any) (h int32, err error) {
	defer e.recover(&err, reflect.TypeOf(o))
	return e.hash(&walk{}, reflect.ValueOf(o)), nil
}

// failure carries an *Error out of a traversal as a panic value. The entry
// points recover it and return the error.
type failure struct {
	err *Error
}

func (e *Engine) recover(err *error, subject reflect.Type) {
	r := recover()
	if r == nil {
		return
	}
	var ee *Error
	if f, ok := r.(failure); ok {
		ee = f.err
	} else {
		ee = NewInternalFailure(shape.TypeName(subject), r)
	}
	e.metrics.FailuresTotal.WithLabelValues(string(ee.Code)).Inc()
	e.logger.Warn("substitutability failed",
		"code", ee.Code,
		"type", ee.Type,
		"error", ee.Error(),
	)
	*err = ee
}

// equal is the dispatcher shared by Substitutable and dynamically typed
// (interface) fields. It panics with failure when synthesis fails.
func (e *Engine) equal(w *walk, a, b reflect.Value) bool {
	an, bn := isNull(a), isNull(b)
	if an || bn {
		return an && bn
	}
	t := a.Type()
	if t != b.Type() {
		return false
	}

	switch e.shapes.Classify(t) {
	case shape.Primitive:
		return prim.Equal(a, b)
	case shape.ValueComposite:
		if t.Kind() == reflect.Pointer {
			if a.Pointer() == b.Pointer() || !w.enter(t, a.Pointer(), b.Pointer()) {
				return true
			}
			return e.mustPair(t.Elem()).compare(w, a.Elem(), b.Elem())
		}
		return e.mustPair(t).compare(w, a, b)
	default:
		return prim.SameReference(a, b)
	}
}

func (e *Engine) hash(w *walk, v reflect.Value) int32 {
	if isNull(v) {
		return 0
	}
	t := v.Type()

	switch e.shapes.Classify(t) {
	case shape.Primitive:
		return prim.Hash(v)
	case shape.ValueComposite:
		if t.Kind() == reflect.Pointer {
			w.push(t, v.Pointer())
			h := e.mustPair(t.Elem()).hash(w, v.Elem())
			w.pop()
			return h
		}
		return e.mustPair(t).hash(w, v)
	default:
		return referenceHash(v)
	}
}

func referenceHash(v reflect.Value) int32 {
	if v.CanInterface() {
		if h, ok := v.Interface().(Hasher); ok {
			return int32(h.Hash())
		}
	}
	return prim.IdentityHash(v)
}

func isNull(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
