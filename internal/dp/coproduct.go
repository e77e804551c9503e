package dp

import (
	"fmt"
	"strings"

	"github.com/afcarl/mcdp/internal/poset"
)

// CoProduct is the choice between alternatives sharing F and R. An
// implementation is a poset.Tagged naming the chosen branch.
type CoProduct struct {
	DPs []DP
	imp poset.Coproduct
}

// NewCoProduct builds the choice between one or more DPs.
func NewCoProduct(dps ...DP) (*CoProduct, error) {
	if len(dps) == 0 {
		return nil, NewStructureError(ErrCodeInvalidValue, "CoProduct", "no alternatives", nil)
	}
	ms := make([]poset.Space, len(dps))
	for i, d := range dps {
		if !poset.SameSpace(d.FunSpace(), dps[0].FunSpace()) || !poset.SameSpace(d.ResSpace(), dps[0].ResSpace()) {
			return nil, NewStructureError(ErrCodeSpaceMismatch, fmt.Sprintf("CoProduct[%d]", i),
				fmt.Sprintf("%s is %s→%s, want %s→%s", d, d.FunSpace(), d.ResSpace(), dps[0].FunSpace(), dps[0].ResSpace()), nil)
		}
		ms[i] = d.ImpSpace()
	}
	return &CoProduct{DPs: append([]DP(nil), dps...), imp: poset.Coproduct{Branches: ms}}, nil
}

func (d *CoProduct) String() string {
	parts := make([]string, len(d.DPs))
	for i, c := range d.DPs {
		parts[i] = c.String()
	}
	return "CoProduct(" + strings.Join(parts, " | ") + ")"
}

func (d *CoProduct) Children() []DP        { return append([]DP(nil), d.DPs...) }
func (d *CoProduct) FunSpace() poset.Poset { return d.DPs[0].FunSpace() }
func (d *CoProduct) ResSpace() poset.Poset { return d.DPs[0].ResSpace() }
func (d *CoProduct) ImpSpace() poset.Space { return d.imp }

func (d *CoProduct) Solve(c *Context, f poset.Point) (poset.UpperSet, error) {
	var out []poset.Point
	for i, sub := range d.DPs {
		u, err := Solve(c, sub, f)
		if err != nil {
			return poset.UpperSet{}, wrap(err, fmt.Sprintf("solve branch %d", i), sub)
		}
		out = append(out, u.Minimals()...)
	}
	return poset.UpperSetFrom(d.ResSpace(), out), nil
}

func (d *CoProduct) SolveR(c *Context, r poset.Point) (poset.LowerSet, error) {
	var out []poset.Point
	for i, sub := range d.DPs {
		l, err := SolveR(c, sub, r)
		if err != nil {
			return poset.LowerSet{}, wrap(err, fmt.Sprintf("solve_r branch %d", i), sub)
		}
		out = append(out, l.Maximals()...)
	}
	return poset.LowerSetFrom(d.FunSpace(), out), nil
}

func (d *CoProduct) Evaluate(c *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.imp.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	tg := m.(poset.Tagged)
	return d.DPs[tg.Branch].Evaluate(c, tg.Value)
}

// Implementations collects the witnesses of every feasible branch.
func (d *CoProduct) Implementations(c *Context, f, r poset.Point) ([]poset.Point, error) {
	ws := NewWitnessSet()
	for i, sub := range d.DPs {
		ms, err := sub.Implementations(c, f, r)
		if IsNotFeasible(err) {
			continue
		}
		if err != nil {
			return nil, wrap(err, fmt.Sprintf("implementations branch %d", i), sub)
		}
		for _, m := range ms {
			ws.Add(poset.Tagged{Branch: i, Value: m})
		}
	}
	if ws.Len() == 0 {
		return nil, notFeasible(d, f, r)
	}
	return ws.Points(), nil
}

func (d *CoProduct) NormalForm(c *Context) (NormalForm, error) {
	nfs := make([]NormalForm, len(d.DPs))
	ss := make([]poset.Poset, len(d.DPs))
	for i, sub := range d.DPs {
		nf, err := sub.NormalForm(c)
		if err != nil {
			return NormalForm{}, err
		}
		nfs[i], ss[i] = nf, nf.S
	}
	return NormalForm{
		S: poset.NewProduct(ss...),
		Alpha: func(c *Context, uf poset.UpperSet, s poset.Point) (poset.UpperSet, error) {
			st := s.(poset.Tuple)
			var out []poset.Point
			for i, nf := range nfs {
				u, err := nf.Alpha(c, uf, st[i])
				if err != nil {
					return poset.UpperSet{}, err
				}
				out = append(out, u.Minimals()...)
			}
			return poset.UpperSetFrom(d.ResSpace(), out), nil
		},
		Beta: func(c *Context, uf poset.UpperSet, s poset.Point) (poset.Point, error) {
			st := s.(poset.Tuple)
			next := make(poset.Tuple, len(nfs))
			for i, nf := range nfs {
				si, err := nf.Beta(c, uf, st[i])
				if err != nil {
					return nil, err
				}
				next[i] = si
			}
			return next, nil
		},
	}, nil
}
