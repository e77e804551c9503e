package poset

import (
	"fmt"
	"slices"
	"strings"
)

// FinitePoset is a finite set of named elements with an explicit order.
// The order is the reflexive-transitive closure of the given relations.
type FinitePoset struct {
	elements []string
	index    map[string]int
	leq      [][]bool
}

// NewFinitePoset builds a FinitePoset from elements and (a ≤ b) relations.
// It fails if a relation names an unknown element or the closure is not
// antisymmetric.
func NewFinitePoset(elements []string, relations [][2]string) (*FinitePoset, error) {
	p := &FinitePoset{
		elements: slices.Clone(elements),
		index:    make(map[string]int, len(elements)),
	}
	for i, e := range elements {
		if _, dup := p.index[e]; dup {
			return nil, fmt.Errorf("finite poset: duplicate element %q", e)
		}
		p.index[e] = i
	}

	n := len(elements)
	p.leq = make([][]bool, n)
	for i := range p.leq {
		p.leq[i] = make([]bool, n)
		p.leq[i][i] = true
	}
	for _, rel := range relations {
		a, okA := p.index[rel[0]]
		b, okB := p.index[rel[1]]
		if !okA || !okB {
			return nil, fmt.Errorf("finite poset: relation %s ≤ %s names an unknown element", rel[0], rel[1])
		}
		p.leq[a][b] = true
	}

	// Floyd-Warshall style closure
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !p.leq[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if p.leq[k][j] {
					p.leq[i][j] = true
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if p.leq[i][j] && p.leq[j][i] {
				return nil, fmt.Errorf("finite poset: %s and %s form a cycle", elements[i], elements[j])
			}
		}
	}
	return p, nil
}

// Elements returns the elements in declaration order.
func (p *FinitePoset) Elements() []string { return slices.Clone(p.elements) }

func (p *FinitePoset) String() string {
	return "{" + strings.Join(p.elements, ",") + "}"
}

func (p *FinitePoset) Belongs(x Point) error {
	s, ok := x.(string)
	if !ok {
		return notBelong(p, x, "expected string")
	}
	if _, ok := p.index[s]; !ok {
		return notBelong(p, x, "unknown element")
	}
	return nil
}

func (p *FinitePoset) Format(x Point) string {
	if s, ok := x.(string); ok {
		return s
	}
	return Key(x)
}

func (p *FinitePoset) Leq(a, b Point) bool {
	return p.leq[p.index[a.(string)]][p.index[b.(string)]]
}

func (p *FinitePoset) Join(a, b Point) (Point, error) {
	ia, ib := p.index[a.(string)], p.index[b.(string)]
	var upper []int
	for k := range p.elements {
		if p.leq[ia][k] && p.leq[ib][k] {
			upper = append(upper, k)
		}
	}
	if least, ok := p.least(upper); ok {
		return p.elements[least], nil
	}
	return nil, &NotJoinableError{Space: p.String(), A: a.(string), B: b.(string)}
}

func (p *FinitePoset) Meet(a, b Point) (Point, error) {
	ia, ib := p.index[a.(string)], p.index[b.(string)]
	var lower []int
	for k := range p.elements {
		if p.leq[k][ia] && p.leq[k][ib] {
			lower = append(lower, k)
		}
	}
	if greatest, ok := p.greatest(lower); ok {
		return p.elements[greatest], nil
	}
	return nil, &NotMeetableError{Space: p.String(), A: a.(string), B: b.(string)}
}

func (p *FinitePoset) Top() (Point, error) {
	if len(p.elements) == 0 {
		return nil, &UninhabitedError{Space: p.String()}
	}
	if g, ok := p.greatest(p.all()); ok {
		return p.elements[g], nil
	}
	return nil, &UnboundedError{Space: p.String(), Which: "top"}
}

func (p *FinitePoset) Bottom() (Point, error) {
	if len(p.elements) == 0 {
		return nil, &UninhabitedError{Space: p.String()}
	}
	if l, ok := p.least(p.all()); ok {
		return p.elements[l], nil
	}
	return nil, &UnboundedError{Space: p.String(), Which: "bottom"}
}

// Chain walks upward from the first minimal element, always stepping to the
// first element (in declaration order) that covers the current one.
func (p *FinitePoset) Chain(n int) []Point {
	if n <= 0 || len(p.elements) == 0 {
		return nil
	}
	cur := -1
	for i := range p.elements {
		if p.isMinimal(i) {
			cur = i
			break
		}
	}
	chain := []Point{p.elements[cur]}
	for len(chain) < n {
		next := -1
		for j := range p.elements {
			if j == cur || !p.leq[cur][j] {
				continue
			}
			if next == -1 || p.leq[j][next] {
				next = j
			}
		}
		if next == -1 {
			break
		}
		chain = append(chain, p.elements[next])
		cur = next
	}
	return chain
}

func (p *FinitePoset) all() []int {
	out := make([]int, len(p.elements))
	for i := range out {
		out[i] = i
	}
	return out
}

func (p *FinitePoset) isMinimal(i int) bool {
	for j := range p.elements {
		if j != i && p.leq[j][i] {
			return false
		}
	}
	return true
}

func (p *FinitePoset) least(candidates []int) (int, bool) {
	for _, c := range candidates {
		ok := true
		for _, d := range candidates {
			if !p.leq[c][d] {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}
	return 0, false
}

func (p *FinitePoset) greatest(candidates []int) (int, bool) {
	for _, c := range candidates {
		ok := true
		for _, d := range candidates {
			if !p.leq[d][c] {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}
	return 0, false
}

// FiniteSet is an unordered finite set of names, used for implementation
// spaces.
type FiniteSet struct {
	names map[string]bool
	desc  string
}

// NewFiniteSet returns the set of the given names.
func NewFiniteSet(names ...string) FiniteSet {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return FiniteSet{names: m, desc: "{" + strings.Join(names, ",") + "}"}
}

func (s FiniteSet) String() string { return s.desc }

func (s FiniteSet) Belongs(x Point) error {
	name, ok := x.(string)
	if !ok || !s.names[name] {
		return notBelong(s, x, "unknown element")
	}
	return nil
}

func (s FiniteSet) Format(x Point) string {
	if name, ok := x.(string); ok {
		return name
	}
	return Key(x)
}
