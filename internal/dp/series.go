package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// Series feeds the resources of DP1 into the functionality of DP2.
type Series struct {
	DP1, DP2 DP
	imp      poset.SpaceProduct
}

// NewSeries composes dp1 then dp2. R1 and F2 must be the same space.
func NewSeries(dp1, dp2 DP) (*Series, error) {
	if !poset.SameSpace(dp1.ResSpace(), dp2.FunSpace()) {
		return nil, NewStructureError(ErrCodeSpaceMismatch, "Series",
			fmt.Sprintf("resources %s of %s do not match functionality %s of %s", dp1.ResSpace(), dp1, dp2.FunSpace(), dp2), nil)
	}
	return &Series{DP1: dp1, DP2: dp2, imp: poset.NewSpaceProduct(dp1.ImpSpace(), dp2.ImpSpace())}, nil
}

func (d *Series) String() string        { return fmt.Sprintf("Series(%s, %s)", d.DP1, d.DP2) }
func (d *Series) Children() []DP        { return []DP{d.DP1, d.DP2} }
func (d *Series) FunSpace() poset.Poset { return d.DP1.FunSpace() }
func (d *Series) ResSpace() poset.Poset { return d.DP2.ResSpace() }
func (d *Series) ImpSpace() poset.Space { return d.imp }

func (d *Series) Solve(c *Context, f poset.Point) (poset.UpperSet, error) {
	u1, err := Solve(c, d.DP1, f)
	if err != nil {
		return poset.UpperSet{}, wrap(err, "solve", d.DP1)
	}
	var out []poset.Point
	for _, r1 := range u1.Minimals() {
		u2, err := Solve(c, d.DP2, r1)
		if err != nil {
			return poset.UpperSet{}, wrap(err, "solve", d.DP2)
		}
		out = append(out, u2.Minimals()...)
	}
	return poset.UpperSetFrom(d.ResSpace(), out), nil
}

func (d *Series) SolveR(c *Context, r poset.Point) (poset.LowerSet, error) {
	l2, err := SolveR(c, d.DP2, r)
	if err != nil {
		return poset.LowerSet{}, wrap(err, "solve_r", d.DP2)
	}
	var out []poset.Point
	for _, f2 := range l2.Maximals() {
		l1, err := SolveR(c, d.DP1, f2)
		if err != nil {
			return poset.LowerSet{}, wrap(err, "solve_r", d.DP1)
		}
		out = append(out, l1.Maximals()...)
	}
	return poset.LowerSetFrom(d.FunSpace(), out), nil
}

// Evaluate requires the two stages to connect: some resource required by
// the first stage must be within some functionality provided by the second.
func (d *Series) Evaluate(c *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.imp.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	t := m.(poset.Tuple)
	lf1, ur1, err := d.DP1.Evaluate(c, t[0])
	if err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, wrap(err, "evaluate", d.DP1)
	}
	lf2, ur2, err := d.DP2.Evaluate(c, t[1])
	if err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, wrap(err, "evaluate", d.DP2)
	}
	mid := d.DP1.ResSpace()
	for _, r1 := range ur1.Minimals() {
		for _, f2 := range lf2.Maximals() {
			if mid.Leq(r1, f2) {
				return lf1, ur2, nil
			}
		}
	}
	return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("%s: %w: stages do not connect for %s", d, ErrNotFeasible, d.imp.Format(m))
}

func (d *Series) Implementations(c *Context, f, r poset.Point) ([]poset.Point, error) {
	u1, err := Solve(c, d.DP1, f)
	if err != nil {
		return nil, wrap(err, "solve", d.DP1)
	}
	ws := NewWitnessSet()
	for _, r1 := range u1.Minimals() {
		u2, err := Solve(c, d.DP2, r1)
		if err != nil {
			return nil, wrap(err, "solve", d.DP2)
		}
		if !u2.Contains(r) {
			continue
		}
		m1s, err := d.DP1.Implementations(c, f, r1)
		if err != nil {
			return nil, wrap(err, "implementations", d.DP1)
		}
		m2s, err := d.DP2.Implementations(c, r1, r)
		if err != nil {
			return nil, wrap(err, "implementations", d.DP2)
		}
		for _, m1 := range m1s {
			for _, m2 := range m2s {
				ws.Add(poset.Tuple{m1, m2})
			}
		}
	}
	if ws.Len() == 0 {
		return nil, notFeasible(d, f, r)
	}
	return ws.Points(), nil
}

// NormalForm chains the two normal forms: the state is the pair of states
// and the second stage sees the output of the first.
func (d *Series) NormalForm(c *Context) (NormalForm, error) {
	nf1, err := d.DP1.NormalForm(c)
	if err != nil {
		return NormalForm{}, err
	}
	nf2, err := d.DP2.NormalForm(c)
	if err != nil {
		return NormalForm{}, err
	}
	return NormalForm{
		S: poset.NewProduct(nf1.S, nf2.S),
		Alpha: func(c *Context, uf poset.UpperSet, s poset.Point) (poset.UpperSet, error) {
			t := s.(poset.Tuple)
			u1, err := nf1.Alpha(c, uf, t[0])
			if err != nil {
				return poset.UpperSet{}, err
			}
			return nf2.Alpha(c, u1, t[1])
		},
		Beta: func(c *Context, uf poset.UpperSet, s poset.Point) (poset.Point, error) {
			t := s.(poset.Tuple)
			u1, err := nf1.Alpha(c, uf, t[0])
			if err != nil {
				return nil, err
			}
			s1, err := nf1.Beta(c, uf, t[0])
			if err != nil {
				return nil, err
			}
			s2, err := nf2.Beta(c, u1, t[1])
			if err != nil {
				return nil, err
			}
			return poset.Tuple{s1, s2}, nil
		},
	}, nil
}
