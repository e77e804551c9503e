package poset

import (
	"fmt"
	"strings"
)

// Product is the ordered tuple of posets with the componentwise order.
// Its elements are Tuple values. The empty product has the single element
// Tuple{}.
type Product struct {
	Components []Poset
}

// NewProduct returns the product of the given posets.
func NewProduct(components ...Poset) Product {
	return Product{Components: components}
}

// One is the empty product, the function space of constants.
var One = Product{}

func (p Product) Len() int { return len(p.Components) }

func (p Product) String() string {
	names := make([]string, len(p.Components))
	for i, c := range p.Components {
		names[i] = c.String()
	}
	return "(" + strings.Join(names, "×") + ")"
}

func (p Product) Belongs(x Point) error {
	t, ok := x.(Tuple)
	if !ok {
		return notBelong(p, x, "expected Tuple")
	}
	if len(t) != len(p.Components) {
		return notBelong(p, x, fmt.Sprintf("expected %d components, got %d", len(p.Components), len(t)))
	}
	for i, c := range p.Components {
		if err := c.Belongs(t[i]); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (p Product) Format(x Point) string {
	t, ok := x.(Tuple)
	if !ok || len(t) != len(p.Components) {
		return Key(x)
	}
	parts := make([]string, len(t))
	for i, c := range p.Components {
		parts[i] = c.Format(t[i])
	}
	return "⟨" + strings.Join(parts, ", ") + "⟩"
}

func (p Product) Leq(a, b Point) bool {
	ta, tb := a.(Tuple), b.(Tuple)
	for i, c := range p.Components {
		if !c.Leq(ta[i], tb[i]) {
			return false
		}
	}
	return true
}

func (p Product) Join(a, b Point) (Point, error) {
	ta, tb := a.(Tuple), b.(Tuple)
	out := make(Tuple, len(p.Components))
	for i, c := range p.Components {
		j, err := c.Join(ta[i], tb[i])
		if err != nil {
			return nil, err
		}
		out[i] = j
	}
	return out, nil
}

func (p Product) Meet(a, b Point) (Point, error) {
	ta, tb := a.(Tuple), b.(Tuple)
	out := make(Tuple, len(p.Components))
	for i, c := range p.Components {
		m, err := c.Meet(ta[i], tb[i])
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (p Product) Top() (Point, error) {
	out := make(Tuple, len(p.Components))
	for i, c := range p.Components {
		t, err := c.Top()
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (p Product) Bottom() (Point, error) {
	out := make(Tuple, len(p.Components))
	for i, c := range p.Components {
		b, err := c.Bottom()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// Chain advances every component chain in lock step; a component whose
// chain is exhausted stays at its last element.
func (p Product) Chain(n int) []Point {
	if n <= 0 {
		return nil
	}
	if len(p.Components) == 0 {
		return []Point{Tuple{}}
	}
	chains := make([][]Point, len(p.Components))
	longest := 0
	for i, c := range p.Components {
		chains[i] = c.Chain(n)
		if len(chains[i]) == 0 {
			return nil
		}
		longest = max(longest, len(chains[i]))
	}
	out := make([]Point, 0, longest)
	for k := 0; k < longest; k++ {
		t := make(Tuple, len(chains))
		for i, ch := range chains {
			t[i] = ch[min(k, len(ch)-1)]
		}
		out = append(out, t)
	}
	return out
}

// Project returns the i-th component of a Tuple.
func Project(x Point, i int) Point {
	return x.(Tuple)[i]
}

// Dimensionality counts the scalar leaves of a space: a product contributes
// the sum of its components, every other space counts as one.
func Dimensionality(s Space) int {
	switch v := s.(type) {
	case Product:
		n := 0
		for _, c := range v.Components {
			n += Dimensionality(c)
		}
		return n
	case SpaceProduct:
		n := 0
		for _, c := range v.Components {
			n += Dimensionality(c)
		}
		return n
	}
	return 1
}

// SpaceProduct is the cartesian product of plain spaces.
type SpaceProduct struct {
	Components []Space
}

// NewSpaceProduct returns the product of the given spaces.
func NewSpaceProduct(components ...Space) SpaceProduct {
	return SpaceProduct{Components: components}
}

func (p SpaceProduct) String() string {
	names := make([]string, len(p.Components))
	for i, c := range p.Components {
		names[i] = c.String()
	}
	return "(" + strings.Join(names, "×") + ")"
}

func (p SpaceProduct) Belongs(x Point) error {
	t, ok := x.(Tuple)
	if !ok || len(t) != len(p.Components) {
		return notBelong(p, x, fmt.Sprintf("expected %d-tuple", len(p.Components)))
	}
	for i, c := range p.Components {
		if err := c.Belongs(t[i]); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	return nil
}

func (p SpaceProduct) Format(x Point) string {
	t, ok := x.(Tuple)
	if !ok || len(t) != len(p.Components) {
		return Key(x)
	}
	parts := make([]string, len(t))
	for i, c := range p.Components {
		parts[i] = c.Format(t[i])
	}
	return "⟨" + strings.Join(parts, ", ") + "⟩"
}

// Coproduct is the disjoint union of spaces. Its elements are Tagged values.
type Coproduct struct {
	Branches []Space
}

func (c Coproduct) String() string {
	names := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		names[i] = b.String()
	}
	return "(" + strings.Join(names, "+") + ")"
}

func (c Coproduct) Belongs(x Point) error {
	t, ok := x.(Tagged)
	if !ok {
		return notBelong(c, x, "expected Tagged")
	}
	if t.Branch < 0 || t.Branch >= len(c.Branches) {
		return notBelong(c, x, fmt.Sprintf("branch %d out of range", t.Branch))
	}
	return c.Branches[t.Branch].Belongs(t.Value)
}

func (c Coproduct) Format(x Point) string {
	t, ok := x.(Tagged)
	if !ok || t.Branch < 0 || t.Branch >= len(c.Branches) {
		return Key(x)
	}
	return fmt.Sprintf("#%d:%s", t.Branch, c.Branches[t.Branch].Format(t.Value))
}
