package engine

import (
	"reflect"

	"github.com/roach88/valsem/internal/shape"
)

// walk is the state of one Substitutable or Hash traversal. It tracks the
// handles followed so far, which is what lets self-referencing values
// terminate.
type walk struct {
	// visited holds every handle pair compared so far. A pair met again is
	// either under comparison further up or already found equal, so it is
	// taken as equal.
	visited map[visit]struct{}

	// onPath holds the handles on the current hash path, path their order.
	onPath map[handle]struct{}
	path   []handle
}

type visit struct {
	t    reflect.Type
	a, b uintptr
}

type handle struct {
	t reflect.Type
	p uintptr
}

// enter records the handle pair (a, b) of pointer type t. It reports false if
// the pair was seen before.
func (w *walk) enter(t reflect.Type, a, b uintptr) bool {
	v := visit{t: t, a: a, b: b}
	if _, seen := w.visited[v]; seen {
		return false
	}
	if w.visited == nil {
		w.visited = make(map[visit]struct{})
	}
	w.visited[v] = struct{}{}
	return true
}

// push adds the handle p of pointer type t to the hash path. A handle already
// on the path means the value contains itself and has no finite hash; push
// fails the traversal with CIRCULAR_COMPOSITION.
func (w *walk) push(t reflect.Type, p uintptr) {
	h := handle{t: t, p: p}
	if _, ok := w.onPath[h]; ok {
		panic(failure{NewCyclicValueError(w.cycle(h))})
	}
	if w.onPath == nil {
		w.onPath = make(map[handle]struct{})
	}
	w.onPath[h] = struct{}{}
	w.path = append(w.path, h)
}

func (w *walk) pop() {
	last := w.path[len(w.path)-1]
	delete(w.onPath, last)
	w.path = w.path[:len(w.path)-1]
}

// cycle names the types on the path from h back to h.
func (w *walk) cycle(h handle) []string {
	var names []string
	for i := len(w.path) - 1; i >= 0; i-- {
		if w.path[i] == h {
			for _, on := range w.path[i:] {
				names = append(names, shape.TypeName(on.t.Elem()))
			}
			break
		}
	}
	return append(names, shape.TypeName(h.t.Elem()))
}
