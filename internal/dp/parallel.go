package dp

import (
	"fmt"
	"strings"

	"github.com/afcarl/mcdp/internal/poset"
)

// Parallel runs independent DPs side by side. Functionality, resources and
// implementations are the products of the components.
type Parallel struct {
	DPs  []DP
	f, r poset.Product
	imp  poset.SpaceProduct
}

// NewParallel composes two DPs in parallel.
func NewParallel(dp1, dp2 DP) *Parallel {
	p, _ := NewParallelN(dp1, dp2)
	return p
}

// NewParallelN composes one or more DPs in parallel.
func NewParallelN(dps ...DP) (*Parallel, error) {
	if len(dps) == 0 {
		return nil, NewStructureError(ErrCodeInvalidValue, "ParallelN", "no components", nil)
	}
	fs := make([]poset.Poset, len(dps))
	rs := make([]poset.Poset, len(dps))
	ms := make([]poset.Space, len(dps))
	for i, d := range dps {
		fs[i], rs[i], ms[i] = d.FunSpace(), d.ResSpace(), d.ImpSpace()
	}
	return &Parallel{
		DPs: append([]DP(nil), dps...),
		f:   poset.NewProduct(fs...),
		r:   poset.NewProduct(rs...),
		imp: poset.NewSpaceProduct(ms...),
	}, nil
}

func (d *Parallel) String() string {
	parts := make([]string, len(d.DPs))
	for i, c := range d.DPs {
		parts[i] = c.String()
	}
	return "Parallel(" + strings.Join(parts, ", ") + ")"
}

func (d *Parallel) Children() []DP        { return append([]DP(nil), d.DPs...) }
func (d *Parallel) FunSpace() poset.Poset { return d.f }
func (d *Parallel) ResSpace() poset.Poset { return d.r }
func (d *Parallel) ImpSpace() poset.Space { return d.imp }

func (d *Parallel) Solve(c *Context, f poset.Point) (poset.UpperSet, error) {
	t := f.(poset.Tuple)
	parts := make([]poset.UpperSet, len(d.DPs))
	for i, sub := range d.DPs {
		u, err := Solve(c, sub, t[i])
		if err != nil {
			return poset.UpperSet{}, wrap(err, fmt.Sprintf("solve component %d", i), sub)
		}
		parts[i] = u
	}
	return poset.NewUpperSet(d.r, poset.ProductUpper(parts...).Minimals()), nil
}

func (d *Parallel) SolveR(c *Context, r poset.Point) (poset.LowerSet, error) {
	t := r.(poset.Tuple)
	parts := make([]poset.LowerSet, len(d.DPs))
	for i, sub := range d.DPs {
		l, err := SolveR(c, sub, t[i])
		if err != nil {
			return poset.LowerSet{}, wrap(err, fmt.Sprintf("solve_r component %d", i), sub)
		}
		parts[i] = l
	}
	return poset.NewLowerSet(d.f, poset.ProductLower(parts...).Maximals()), nil
}

func (d *Parallel) Evaluate(c *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.imp.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	t := m.(poset.Tuple)
	ls := make([]poset.LowerSet, len(d.DPs))
	us := make([]poset.UpperSet, len(d.DPs))
	for i, sub := range d.DPs {
		l, u, err := sub.Evaluate(c, t[i])
		if err != nil {
			return poset.LowerSet{}, poset.UpperSet{}, wrap(err, fmt.Sprintf("evaluate component %d", i), sub)
		}
		ls[i], us[i] = l, u
	}
	return poset.NewLowerSet(d.f, poset.ProductLower(ls...).Maximals()),
		poset.NewUpperSet(d.r, poset.ProductUpper(us...).Minimals()), nil
}

func (d *Parallel) Implementations(c *Context, f, r poset.Point) ([]poset.Point, error) {
	ft, rt := f.(poset.Tuple), r.(poset.Tuple)
	lists := make([][]poset.Point, len(d.DPs))
	for i, sub := range d.DPs {
		ms, err := sub.Implementations(c, ft[i], rt[i])
		if err != nil {
			if IsNotFeasible(err) {
				return nil, notFeasible(d, f, r)
			}
			return nil, wrap(err, fmt.Sprintf("implementations component %d", i), sub)
		}
		lists[i] = ms
	}
	ws := NewWitnessSet()
	ws.Add(poset.Cartesian(lists)...)
	return ws.Points(), nil
}

// NormalForm keeps one state per component. The output is exact: each
// minimal functionality is split and the component outputs are combined.
func (d *Parallel) NormalForm(c *Context) (NormalForm, error) {
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
			for _, f := range uf.Minimals() {
				ft := f.(poset.Tuple)
				parts := make([]poset.UpperSet, len(nfs))
				for i, nf := range nfs {
					u, err := nf.Alpha(c, poset.Principal(d.f.Components[i], ft[i]), st[i])
					if err != nil {
						return poset.UpperSet{}, err
					}
					parts[i] = u
				}
				out = append(out, poset.ProductUpper(parts...).Minimals()...)
			}
			return poset.UpperSetFrom(d.r, out), nil
		},
		Beta: func(c *Context, uf poset.UpperSet, s poset.Point) (poset.Point, error) {
			st := s.(poset.Tuple)
			next := make(poset.Tuple, len(nfs))
			for i, nf := range nfs {
				ui, err := poset.ProjectUpper(poset.NewUpperSet(d.f, uf.Minimals()), i)
				if err != nil {
					return nil, err
				}
				si, err := nf.Beta(c, ui, st[i])
				if err != nil {
					return nil, err
				}
				next[i] = si
			}
			return next, nil
		},
	}, nil
}
