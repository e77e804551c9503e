package poset

import (
	"fmt"
	"slices"
	"strings"
)

// UpperSet is the upward closure of a finite antichain of minimal points.
// Values are immutable; every operation returns a fresh UpperSet.
type UpperSet struct {
	space  Poset
	points []Point
}

// NewUpperSet wraps minimals that the caller guarantees form an antichain.
func NewUpperSet(p Poset, minimals []Point) UpperSet {
	pts := slices.Clone(minimals)
	SortByKey(pts)
	return UpperSet{space: p, points: pts}
}

// UpperSetFrom returns the upward closure of arbitrary candidate points.
func UpperSetFrom(p Poset, candidates []Point) UpperSet {
	return UpperSet{space: p, points: Minimize(p, candidates)}
}

// Principal returns ↑{x}.
func Principal(p Poset, x Point) UpperSet {
	return UpperSet{space: p, points: []Point{x}}
}

// EmptyUpperSet returns the empty upper set, the top of UpperSets(p).
func EmptyUpperSet(p Poset) UpperSet {
	return UpperSet{space: p}
}

func (u UpperSet) Space() Poset { return u.space }

// Minimals returns a copy of the minimal points, sorted by key.
func (u UpperSet) Minimals() []Point { return slices.Clone(u.points) }

func (u UpperSet) Len() int { return len(u.points) }

func (u UpperSet) IsEmpty() bool { return len(u.points) == 0 }

// Contains reports whether x lies in the upward closure.
func (u UpperSet) Contains(x Point) bool {
	for _, m := range u.points {
		if u.space.Leq(m, x) {
			return true
		}
	}
	return false
}

// Check verifies that every point belongs to the space and that the points
// form an antichain.
func (u UpperSet) Check() error {
	for _, m := range u.points {
		if err := u.space.Belongs(m); err != nil {
			return err
		}
	}
	return CheckAntichain(u.space, u.points)
}

func (u UpperSet) String() string { return "↑" + formatPoints(u.space, u.points) }

// LowerSet is the downward closure of a finite antichain of maximal points.
type LowerSet struct {
	space  Poset
	points []Point
}

// NewLowerSet wraps maximals that the caller guarantees form an antichain.
func NewLowerSet(p Poset, maximals []Point) LowerSet {
	pts := slices.Clone(maximals)
	SortByKey(pts)
	return LowerSet{space: p, points: pts}
}

// LowerSetFrom returns the downward closure of arbitrary candidate points.
func LowerSetFrom(p Poset, candidates []Point) LowerSet {
	return LowerSet{space: p, points: Maximize(p, candidates)}
}

// PrincipalLower returns ↓{x}.
func PrincipalLower(p Poset, x Point) LowerSet {
	return LowerSet{space: p, points: []Point{x}}
}

// EmptyLowerSet returns the empty lower set, the top of LowerSets(p).
func EmptyLowerSet(p Poset) LowerSet {
	return LowerSet{space: p}
}

func (l LowerSet) Space() Poset { return l.space }

// Maximals returns a copy of the maximal points, sorted by key.
func (l LowerSet) Maximals() []Point { return slices.Clone(l.points) }

func (l LowerSet) Len() int { return len(l.points) }

func (l LowerSet) IsEmpty() bool { return len(l.points) == 0 }

// Contains reports whether x lies in the downward closure.
func (l LowerSet) Contains(x Point) bool {
	for _, m := range l.points {
		if l.space.Leq(x, m) {
			return true
		}
	}
	return false
}

func (l LowerSet) Check() error {
	for _, m := range l.points {
		if err := l.space.Belongs(m); err != nil {
			return err
		}
	}
	return CheckAntichain(l.space, l.points)
}

func (l LowerSet) String() string { return "↓" + formatPoints(l.space, l.points) }

func formatPoints(p Poset, points []Point) string {
	parts := make([]string, len(points))
	for i, x := range points {
		if p == nil {
			parts[i] = Key(x)
			continue
		}
		parts[i] = p.Format(x)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// UpperSets is the lattice of upper sets of P ordered by reverse inclusion:
// A ≤ B iff every minimal of B is dominated by some minimal of A. Its bottom
// is ↑{⊥P} and its top is the empty set.
type UpperSets struct {
	P Poset
}

func (s UpperSets) String() string { return "U(" + s.P.String() + ")" }

func (s UpperSets) Belongs(x Point) error {
	u, ok := x.(UpperSet)
	if !ok {
		return notBelong(s, x, "expected UpperSet")
	}
	return u.Check()
}

func (s UpperSets) Format(x Point) string {
	if u, ok := x.(UpperSet); ok {
		return u.String()
	}
	return Key(x)
}

func (s UpperSets) Leq(a, b Point) bool {
	ua, ub := a.(UpperSet), b.(UpperSet)
	for _, y := range ub.points {
		if !ua.Contains(y) {
			return false
		}
	}
	return true
}

// Join is the intersection: the minimal pairwise joins.
func (s UpperSets) Join(a, b Point) (Point, error) {
	ua, ub := a.(UpperSet), b.(UpperSet)
	var out []Point
	for _, x := range ua.points {
		for _, y := range ub.points {
			j, err := s.P.Join(x, y)
			if err != nil {
				return nil, err
			}
			out = append(out, j)
		}
	}
	return UpperSetFrom(s.P, out), nil
}

// Meet is the union.
func (s UpperSets) Meet(a, b Point) (Point, error) {
	ua, ub := a.(UpperSet), b.(UpperSet)
	return UpperSetFrom(s.P, append(slices.Clone(ua.points), ub.points...)), nil
}

func (s UpperSets) Top() (Point, error) { return EmptyUpperSet(s.P), nil }

func (s UpperSets) Bottom() (Point, error) {
	b, err := s.P.Bottom()
	if err != nil {
		return nil, err
	}
	return Principal(s.P, b), nil
}

func (s UpperSets) Chain(n int) []Point {
	base := s.P.Chain(n)
	out := make([]Point, len(base))
	for i, x := range base {
		out[i] = Principal(s.P, x)
	}
	return out
}

// LowerSets is the lattice of lower sets of P ordered by reverse inclusion:
// A ≤ B iff every maximal of B is dominated by some maximal of A. Its bottom
// is ↓{⊤P} and its top is the empty set.
type LowerSets struct {
	P Poset
}

func (s LowerSets) String() string { return "L(" + s.P.String() + ")" }

func (s LowerSets) Belongs(x Point) error {
	l, ok := x.(LowerSet)
	if !ok {
		return notBelong(s, x, "expected LowerSet")
	}
	return l.Check()
}

func (s LowerSets) Format(x Point) string {
	if l, ok := x.(LowerSet); ok {
		return l.String()
	}
	return Key(x)
}

func (s LowerSets) Leq(a, b Point) bool {
	la, lb := a.(LowerSet), b.(LowerSet)
	for _, y := range lb.points {
		if !la.Contains(y) {
			return false
		}
	}
	return true
}

// Join is the intersection: the maximal pairwise meets.
func (s LowerSets) Join(a, b Point) (Point, error) {
	la, lb := a.(LowerSet), b.(LowerSet)
	var out []Point
	for _, x := range la.points {
		for _, y := range lb.points {
			m, err := s.P.Meet(x, y)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return LowerSetFrom(s.P, out), nil
}

// Meet is the union.
func (s LowerSets) Meet(a, b Point) (Point, error) {
	la, lb := a.(LowerSet), b.(LowerSet)
	return LowerSetFrom(s.P, append(slices.Clone(la.points), lb.points...)), nil
}

func (s LowerSets) Top() (Point, error) { return EmptyLowerSet(s.P), nil }

func (s LowerSets) Bottom() (Point, error) {
	t, err := s.P.Top()
	if err != nil {
		return nil, err
	}
	return PrincipalLower(s.P, t), nil
}

// Chain maps a decreasing chain of P to an increasing chain of lower sets.
func (s LowerSets) Chain(n int) []Point {
	base := s.P.Chain(n)
	out := make([]Point, len(base))
	for i := range base {
		out[i] = PrincipalLower(s.P, base[len(base)-1-i])
	}
	return out
}

// ProjectUpper returns the minimal i-th components of a product upper set.
func ProjectUpper(u UpperSet, i int) (UpperSet, error) {
	prod, ok := u.space.(Product)
	if !ok || i < 0 || i >= prod.Len() {
		return UpperSet{}, fmt.Errorf("project upper set: %s has no component %d", u.space, i)
	}
	out := make([]Point, len(u.points))
	for k, x := range u.points {
		out[k] = Project(x, i)
	}
	return UpperSetFrom(prod.Components[i], out), nil
}

// ProjectLower returns the maximal i-th components of a product lower set.
func ProjectLower(l LowerSet, i int) (LowerSet, error) {
	prod, ok := l.space.(Product)
	if !ok || i < 0 || i >= prod.Len() {
		return LowerSet{}, fmt.Errorf("project lower set: %s has no component %d", l.space, i)
	}
	out := make([]Point, len(l.points))
	for k, x := range l.points {
		out[k] = Project(x, i)
	}
	return LowerSetFrom(prod.Components[i], out), nil
}

// ProductUpper returns the cartesian product of upper sets. The result is
// already an antichain in the product order, so no pruning happens.
func ProductUpper(sets ...UpperSet) UpperSet {
	comps := make([]Poset, len(sets))
	lists := make([][]Point, len(sets))
	for i, s := range sets {
		comps[i] = s.space
		lists[i] = s.points
	}
	return NewUpperSet(NewProduct(comps...), Cartesian(lists))
}

// ProductLower returns the cartesian product of lower sets.
func ProductLower(sets ...LowerSet) LowerSet {
	comps := make([]Poset, len(sets))
	lists := make([][]Point, len(sets))
	for i, s := range sets {
		comps[i] = s.space
		lists[i] = s.points
	}
	return NewLowerSet(NewProduct(comps...), Cartesian(lists))
}

// Cartesian enumerates every tuple choosing one point from each list.
// An empty list of lists yields the single empty tuple.
func Cartesian(lists [][]Point) []Point {
	out := []Point{Tuple{}}
	for _, list := range lists {
		next := make([]Point, 0, len(out)*len(list))
		for _, prefix := range out {
			for _, x := range list {
				t := make(Tuple, 0, len(prefix.(Tuple))+1)
				t = append(t, prefix.(Tuple)...)
				next = append(next, append(t, x))
			}
		}
		out = next
	}
	return out
}

// Antichain is the common view of UpperSet and LowerSet used by tracers.
type Antichain interface {
	Space() Poset
	Len() int
	String() string
}
