package graph

import (
	"container/heap"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/afcarl/mcdp/internal/poset"
)

// DefaultMaxCutStates bounds the number of partial cuts the search expands.
// A cap of zero or less disables the bound.
const DefaultMaxCutStates = 1 << 16

// cutState is a partial cut: a sorted set of connection indices.
type cutState struct {
	edges  []int
	weight int
}

func (s cutState) key() string {
	parts := make([]string, len(s.edges))
	for i, e := range s.edges {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, ",")
}

func (s cutState) has(e int) bool {
	_, ok := slices.BinarySearch(s.edges, e)
	return ok
}

func (s cutState) with(e, w int) cutState {
	edges := slices.Clone(s.edges)
	i, _ := slices.BinarySearch(edges, e)
	edges = slices.Insert(edges, i, e)
	return cutState{edges: edges, weight: s.weight + w}
}

// cutQueue orders states by weight, then size, then key.
type cutQueue []cutState

func (q cutQueue) Len() int { return len(q) }

func (q cutQueue) Less(i, j int) bool {
	if q[i].weight != q[j].weight {
		return q[i].weight < q[j].weight
	}
	if len(q[i].edges) != len(q[j].edges) {
		return len(q[i].edges) < len(q[j].edges)
	}
	return slices.Compare(q[i].edges, q[j].edges) < 0
}

func (q cutQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *cutQueue) Push(x any) { *q = append(*q, x.(cutState)) }

func (q *cutQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// connectionWeights gives each connection the dimensionality of the space
// it carries.
func connectionWeights(g *Composite) ([]int, error) {
	w := make([]int, len(g.Connections))
	for i, c := range g.Connections {
		if c.DP1 == Boundary {
			w[i] = 1
			continue
		}
		n := g.Nodes[c.DP1]
		spaces, err := n.resSpaces()
		if err != nil {
			return nil, err
		}
		idx := slices.Index(n.Resources, c.S1)
		if idx < 0 {
			return nil, fmt.Errorf("connection %s: no resource %q", c, c.S1)
		}
		w[i] = poset.Dimensionality(spaces[idx])
	}
	return w, nil
}

// minimumCut finds a set of connections of least total weight that meets
// every cycle. Ties prefer fewer connections, then lower indices.
func minimumCut(cycles [][]int, weights []int, maxStates int) ([]int, error) {
	if len(cycles) == 0 {
		return nil, nil
	}
	q := &cutQueue{{}}
	seen := set.New[string](64)
	seen.Insert("")
	expanded := 0
	for q.Len() > 0 {
		s := heap.Pop(q).(cutState)
		open := slices.IndexFunc(cycles, func(cycle []int) bool {
			return !slices.ContainsFunc(cycle, s.has)
		})
		if open < 0 {
			return s.edges, nil
		}
		expanded++
		if maxStates > 0 && expanded > maxStates {
			return nil, &CutSearchError{States: expanded - 1, Limit: maxStates, Cycles: len(cycles)}
		}
		for _, e := range cycles[open] {
			next := s.with(e, weights[e])
			if seen.Insert(next.key()) {
				heap.Push(q, next)
			}
		}
	}
	// unreachable: the full edge set meets every cycle
	return nil, &CutSearchError{States: expanded, Limit: maxStates, Cycles: len(cycles)}
}
