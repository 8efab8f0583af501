package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/valsem/internal/ir"
)

// CircularComposition is the engine's name for a value type that nests
// itself by value. Schema cycles of that shape carry it in their message so
// both layers report the same condition the same way.
const CircularComposition = "CIRCULAR_COMPOSITION"

// CycleError reports a cycle among declared types.
type CycleError struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"` // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"`
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AnalyzeCycles performs static cycle analysis on a schema.
//
// Two graphs are built over the declared types:
//   - by-value: an edge for every type held by value (fields, array
//     elements) and for every base type named in extends
//   - full: the by-value edges plus every type reached through a pointer or
//     slice
//
// Every strongly connected component of the by-value graph with more than
// one node, or with a self-loop, is a circular composition: instances would
// be infinitely large. Remaining cycles of the full graph are legal Go types
// but cannot be built with reflect.StructOf, which has no way to name a type
// before it exists, so they are reported as unsupported.
//
// An acyclic schema returns an empty list.
func AnalyzeCycles(s *ir.Schema) []*CycleError {
	byValue := buildGraph(s, false)
	full := buildGraph(s, true)

	var errs []*CycleError
	covered := make(map[string]bool)
	for _, scc := range tarjanSCC(byValue) {
		if !byValue.cyclic(scc) {
			continue
		}
		path := byValue.cyclePath(scc)
		for _, n := range scc {
			covered[n] = true
		}
		errs = append(errs, &CycleError{
			Code:    ErrCircularComposite,
			Path:    path,
			Message: fmt.Sprintf("%s: type nests itself by value: %s", CircularComposition, strings.Join(path, " → ")),
		})
	}

	for _, scc := range tarjanSCC(full) {
		if !full.cyclic(scc) || allCovered(scc, covered) {
			continue
		}
		path := full.cyclePath(scc)
		errs = append(errs, &CycleError{
			Code:    ErrUnsupportedPointer,
			Path:    path,
			Message: fmt.Sprintf("recursive types are not supported for declared records: %s", strings.Join(path, " → ")),
		})
	}

	return errs
}

func allCovered(scc []string, covered map[string]bool) bool {
	for _, n := range scc {
		if !covered[n] {
			return false
		}
	}
	return true
}

// dependencyGraph maps type name → types it depends on. nodes keeps
// declaration order so results are deterministic.
type dependencyGraph struct {
	nodes []string
	order map[string]int
	edges map[string][]string
}

func buildGraph(s *ir.Schema, indirect bool) *dependencyGraph {
	g := &dependencyGraph{
		order: make(map[string]int),
		edges: make(map[string][]string),
	}
	for _, t := range s.Types {
		if _, dup := g.order[t.Name]; dup {
			continue
		}
		g.order[t.Name] = len(g.nodes)
		g.nodes = append(g.nodes, t.Name)
	}

	for _, t := range s.Types {
		if t.Extends != "" {
			g.addEdge(t.Name, t.Extends)
		}
		for _, f := range t.Fields {
			expr, err := ir.ParseTypeExpr(f.Type)
			if err != nil {
				continue
			}
			for _, dep := range expr.Deps() {
				if dep.ByValue || indirect {
					g.addEdge(t.Name, dep.Name)
				}
			}
		}
	}
	return g
}

func (g *dependencyGraph) addEdge(from, to string) {
	if _, ok := g.order[to]; !ok {
		return
	}
	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// cyclic reports whether an SCC is a cycle: more than one node, or a
// single node with a self-loop.
func (g *dependencyGraph) cyclic(scc []string) bool {
	if len(scc) > 1 {
		return true
	}
	return len(scc) == 1 && slices.Contains(g.edges[scc[0]], scc[0])
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(g *dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(scc, func(a, b string) int { return g.order[a] - g.order[b] })
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	slices.SortFunc(sccs, func(a, b []string) int { return g.order[a[0]] - g.order[b[0]] })
	return sccs
}

// cyclePath walks edges inside the SCC from its first declared member until
// it returns there. For a self-loop the path is [name, name].
func (g *dependencyGraph) cyclePath(scc []string) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	for current := start; ; {
		next := ""
		for _, w := range g.edges[current] {
			if w == start {
				next = w
				break
			}
			if members[w] && !visited[w] && next == "" {
				next = w
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
