package engine

import (
	"errors"
	"reflect"
	"sync/atomic"

	"github.com/roach88/valsem/internal/shape"
)

// Pair is the synthesized comparator and hasher of one value composite type.
// Both take values of exactly Type (the struct or array, never a pointer to
// it). A Pair is immutable and lives as long as its Engine.
type Pair struct {
	Type    reflect.Type
	compare func(w *walk, a, b reflect.Value) bool
	hash    func(w *walk, v reflect.Value) int32
}

// Compare reports whether a and b are substitutable.
func (p *Pair) Compare(a, b reflect.Value) bool {
	return p.compare(&walk{}, a, b)
}

// Hash returns the structural hash of v.
func (p *Pair) Hash(v reflect.Value) int32 {
	return p.hash(&walk{}, v)
}

// Pair returns the cached pair for t, synthesizing it on first use.
// t must be a struct or array type.
//
// Concurrent first requests for the same type may each synthesize a pair;
// the first one stored is returned to every caller, the others are dropped.
func (e *Engine) Pair(t reflect.Type) (p *Pair, err error) {
	defer e.recover(&err, t)
	return e.mustPair(t), nil
}

func (e *Engine) lookup(t reflect.Type) (*Pair, *Error) {
	if p, ok := e.cache.Load(t); ok {
		e.metrics.LookupsTotal.WithLabelValues("hit").Inc()
		return p.(*Pair), nil
	}
	e.metrics.LookupsTotal.WithLabelValues("miss").Inc()
	s := &synthesis{engine: e}
	return s.resolve(t)
}

// mustPair is lookup for use inside a traversal.
func (e *Engine) mustPair(t reflect.Type) *Pair {
	p, err := e.lookup(t)
	if err != nil {
		panic(failure{err})
	}
	return p
}

// synthesis is one top-level cache miss. Nested composites held by value are
// synthesized eagerly within the same synthesis; stack holds the types being
// synthesized so that a type nesting itself by value is reported instead of
// recursing forever. Nested handles are linked lazily and never recurse here.
type synthesis struct {
	engine *Engine
	stack  []reflect.Type
}

func (s *synthesis) resolve(t reflect.Type) (*Pair, *Error) {
	e := s.engine
	if p, ok := e.cache.Load(t); ok {
		return p.(*Pair), nil
	}
	for i, seen := range s.stack {
		if seen == t {
			path := make([]string, 0, len(s.stack)-i+1)
			for _, st := range s.stack[i:] {
				path = append(path, shape.TypeName(st))
			}
			return nil, NewCircularError(append(path, shape.TypeName(t)))
		}
	}

	s.stack = append(s.stack, t)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()

	desc, err := e.shapes.Describe(t)
	if err != nil {
		var ee *Error
		if errors.As(err, &ee) {
			return nil, ee
		}
		return nil, NewShapeError(shape.TypeName(t), err)
	}

	links, ee := s.link(desc)
	if ee != nil {
		return nil, ee
	}

	p := &Pair{
		Type:    t,
		compare: e.comparator(desc, links),
		hash:    e.hasher(desc, links),
	}

	actual, loaded := e.cache.LoadOrStore(t, p)
	if loaded {
		e.metrics.DuplicatesTotal.Inc()
	} else {
		e.metrics.SynthesizedTotal.Inc()
		e.logger.Debug("synthesized pair",
			"type", desc.Name(),
			"fields", len(desc.Fields),
		)
	}
	return actual.(*Pair), nil
}

// link resolves the pair of every nested composite field of desc.
// The result is indexed like desc.Fields; non-nested fields get nil.
func (s *synthesis) link(desc *shape.Type) ([]*link, *Error) {
	links := make([]*link, len(desc.Fields))
	for i, f := range desc.Fields {
		if f.Kind != shape.FieldNestedValue {
			continue
		}
		if f.Type.Kind() == reflect.Pointer {
			links[i] = &link{engine: s.engine, elem: f.Type.Elem()}
			continue
		}
		p, err := s.resolve(f.Type)
		if err != nil {
			return nil, err
		}
		l := &link{engine: s.engine, elem: f.Type}
		l.pair.Store(p)
		links[i] = l
	}
	return links, nil
}

// link is a reference to the pair of a nested composite. Links to types held
// by value are resolved at synthesis; links through handles are resolved
// through the cache on first use, which is what lets a composite refer to
// itself through a pointer.
type link struct {
	engine *Engine
	elem   reflect.Type
	pair   atomic.Pointer[Pair]
}

func (l *link) get() *Pair {
	if p := l.pair.Load(); p != nil {
		return p
	}
	p := l.engine.mustPair(l.elem)
	l.pair.Store(p)
	return p
}
