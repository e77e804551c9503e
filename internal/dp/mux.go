package dp

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/afcarl/mcdp/internal/poset"
)

// Coord selects part of a nested product. A leaf addresses the component at
// Path (the empty path is the whole value); a group builds a tuple from its
// Sub coordinates.
type Coord struct {
	Path []int
	Sub  []Coord
}

// Leaf addresses the component reached by following path.
func Leaf(path ...int) Coord { return Coord{Path: path} }

// Group builds a tuple out of coords.
func Group(coords ...Coord) Coord { return Coord{Sub: append([]Coord{}, coords...)} }

func (c Coord) isGroup() bool { return c.Sub != nil }

func (c Coord) String() string {
	if c.isGroup() {
		parts := make([]string, len(c.Sub))
		for i, s := range c.Sub {
			parts[i] = s.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	}
	parts := make([]string, len(c.Path))
	for i, p := range c.Path {
		parts[i] = strconv.Itoa(p)
	}
	return "[" + strings.Join(parts, ".") + "]"
}

// Mux rearranges the parts of its functionality. A part may be used more
// than once or not at all.
type Mux struct {
	F   poset.Poset
	Out Coord
	r   poset.Poset
}

// NewMux checks out against f and derives the resource space.
func NewMux(f poset.Poset, out Coord) (Mux, error) {
	r, err := coordSpace(f, out)
	if err != nil {
		return Mux{}, NewStructureError(ErrCodeInvalidValue, "Mux", fmt.Sprintf("bad coordinates %s for %s", out, f), err)
	}
	return Mux{F: f, Out: out, r: r}, nil
}

func coordSpace(f poset.Poset, c Coord) (poset.Poset, error) {
	if c.isGroup() {
		comps := make([]poset.Poset, len(c.Sub))
		for i, s := range c.Sub {
			p, err := coordSpace(f, s)
			if err != nil {
				return nil, err
			}
			comps[i] = p
		}
		return poset.NewProduct(comps...), nil
	}
	return spaceAt(f, c.Path)
}

func spaceAt(p poset.Poset, path []int) (poset.Poset, error) {
	for _, i := range path {
		prod, ok := p.(poset.Product)
		if !ok || i < 0 || i >= prod.Len() {
			return nil, fmt.Errorf("no component %d in %s", i, p)
		}
		p = prod.Components[i]
	}
	return p, nil
}

func valueAt(x poset.Point, path []int) poset.Point {
	for _, i := range path {
		x = x.(poset.Tuple)[i]
	}
	return x
}

func (d Mux) String() string        { return fmt.Sprintf("Mux%s", d.Out) }
func (d Mux) FunSpace() poset.Poset { return d.F }
func (d Mux) ResSpace() poset.Poset { return d.r }
func (d Mux) ImpSpace() poset.Space { return d.F }

func (d Mux) apply(f poset.Point, c Coord) poset.Point {
	if !c.isGroup() {
		return valueAt(f, c.Path)
	}
	out := make(poset.Tuple, len(c.Sub))
	for i, s := range c.Sub {
		out[i] = d.apply(f, s)
	}
	return out
}

func (d Mux) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	return poset.Principal(d.r, d.apply(f, d.Out)), nil
}

// SolveR gives each part of F the meet of the resources it feeds. Parts
// that feed nothing stay at top, so only they need a bounded space.
func (d Mux) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	var bounds []bound
	var visit func(c Coord, r poset.Point)
	visit = func(c Coord, r poset.Point) {
		if c.isGroup() {
			rt := r.(poset.Tuple)
			for i, s := range c.Sub {
				visit(s, rt[i])
			}
			return
		}
		bounds = append(bounds, bound{path: c.Path, value: r})
	}
	visit(d.Out, r)
	f, err := largestWithin(d.F, nil, nil, bounds)
	if err != nil {
		return poset.LowerSet{}, fmt.Errorf("%s: %w", d, err)
	}
	return poset.PrincipalLower(d.F, f), nil
}

// bound caps the component of F at path.
type bound struct {
	path  []int
	value poset.Point
}

// largestWithin builds the largest point of p (the component at path) that
// respects every bound. above is a bound inherited from an enclosing
// component, nil if there is none.
func largestWithin(p poset.Poset, path []int, above poset.Point, bounds []bound) (poset.Point, error) {
	v := above
	deeper := false
	for _, b := range bounds {
		switch {
		case slices.Equal(b.path, path):
			if v == nil {
				v = b.value
				continue
			}
			m, err := p.Meet(v, b.value)
			if err != nil {
				return nil, err
			}
			v = m
		case len(b.path) > len(path) && slices.Equal(b.path[:len(path)], path):
			deeper = true
		}
	}
	if !deeper {
		if v == nil {
			return p.Top()
		}
		return v, nil
	}
	prod := p.(poset.Product)
	out := make(poset.Tuple, prod.Len())
	for i, comp := range prod.Components {
		var sub poset.Point
		if v != nil {
			sub = v.(poset.Tuple)[i]
		}
		x, err := largestWithin(comp, append(slices.Clone(path), i), sub, bounds)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (d Mux) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.F.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(d.F, m), poset.Principal(d.r, d.apply(m, d.Out)), nil
}

func (d Mux) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !d.r.Leq(d.apply(f, d.Out), r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{f}, nil
}

func (d Mux) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}
