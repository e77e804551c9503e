package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// SumNat requires the sum of N natural functionalities: r ≥ f1 + … + fN.
type SumNat struct {
	N int
	f poset.Product
}

// NewSumNat creates a SumNat over n ≥ 1 inputs.
func NewSumNat(n int) (SumNat, error) {
	if n < 1 {
		return SumNat{}, NewStructureError(ErrCodeInvalidValue, "SumNat", fmt.Sprintf("need at least one input, got %d", n), nil)
	}
	comps := make([]poset.Poset, n)
	for i := range comps {
		comps[i] = poset.Nat{}
	}
	return SumNat{N: n, f: poset.NewProduct(comps...)}, nil
}

func (d SumNat) String() string        { return fmt.Sprintf("SumNat(%d)", d.N) }
func (d SumNat) FunSpace() poset.Poset { return d.f }
func (d SumNat) ResSpace() poset.Poset { return poset.Nat{} }
func (d SumNat) ImpSpace() poset.Space { return d.f }

func (d SumNat) sum(f poset.Point) poset.Point {
	var total poset.Point = int64(0)
	for _, x := range f.(poset.Tuple) {
		total = poset.NatAdd(total, x)
	}
	return total
}

func (d SumNat) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	return poset.Principal(poset.Nat{}, d.sum(f)), nil
}

// SolveR enumerates every split of r into N parts.
func (d SumNat) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	if poset.IsTop(r) {
		top, _ := d.f.Top()
		return poset.PrincipalLower(d.f, top), nil
	}
	var out []poset.Point
	var rec func(prefix poset.Tuple, left int64)
	rec = func(prefix poset.Tuple, left int64) {
		if len(prefix) == d.N-1 {
			t := append(append(poset.Tuple{}, prefix...), left)
			out = append(out, t)
			return
		}
		for x := int64(0); x <= left; x++ {
			rec(append(append(poset.Tuple{}, prefix...), x), left-x)
		}
	}
	rec(poset.Tuple{}, r.(int64))
	return poset.NewLowerSet(d.f, out), nil
}

func (d SumNat) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.f.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(d.f, m), poset.Principal(poset.Nat{}, d.sum(m)), nil
}

func (d SumNat) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !(poset.Nat{}).Leq(d.sum(f), r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{f}, nil
}

func (d SumNat) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}

// ScaleNat requires K times its functionality: r ≥ K·f.
type ScaleNat struct {
	K int64
}

// NewScaleNat creates a ScaleNat with k ≥ 0.
func NewScaleNat(k int64) (ScaleNat, error) {
	if k < 0 {
		return ScaleNat{}, NewStructureError(ErrCodeInvalidValue, "ScaleNat", fmt.Sprintf("negative factor %d", k), nil)
	}
	return ScaleNat{K: k}, nil
}

func (d ScaleNat) String() string        { return fmt.Sprintf("ScaleNat(%d)", d.K) }
func (d ScaleNat) FunSpace() poset.Poset { return poset.Nat{} }
func (d ScaleNat) ResSpace() poset.Poset { return poset.Nat{} }
func (d ScaleNat) ImpSpace() poset.Space { return poset.Nat{} }

func (d ScaleNat) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	return poset.Principal(poset.Nat{}, poset.NatScale(d.K, f)), nil
}

func (d ScaleNat) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	if d.K == 0 || poset.IsTop(r) {
		return poset.PrincipalLower(poset.Nat{}, poset.Top), nil
	}
	return poset.PrincipalLower(poset.Nat{}, r.(int64)/d.K), nil
}

func (d ScaleNat) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := (poset.Nat{}).Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(poset.Nat{}, m), poset.Principal(poset.Nat{}, poset.NatScale(d.K, m)), nil
}

func (d ScaleNat) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !(poset.Nat{}).Leq(poset.NatScale(d.K, f), r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{f}, nil
}

func (d ScaleNat) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}

// SplitNat splits its functionality over N natural resources:
// r1 + … + rN ≥ f.
type SplitNat struct {
	N int
	r poset.Product
}

// NewSplitNat creates a SplitNat over n ≥ 1 outputs.
func NewSplitNat(n int) (SplitNat, error) {
	s, err := NewSumNat(n)
	if err != nil {
		return SplitNat{}, NewStructureError(ErrCodeInvalidValue, "SplitNat", fmt.Sprintf("need at least one output, got %d", n), nil)
	}
	return SplitNat{N: n, r: s.f}, nil
}

func (d SplitNat) String() string        { return fmt.Sprintf("SplitNat(%d)", d.N) }
func (d SplitNat) FunSpace() poset.Poset { return poset.Nat{} }
func (d SplitNat) ResSpace() poset.Poset { return d.r }
func (d SplitNat) ImpSpace() poset.Space { return d.r }

func (d SplitNat) sum() SumNat { return SumNat{N: d.N, f: d.r} }

// Solve enumerates every split of f. A top demand needs one top output.
func (d SplitNat) Solve(c *Context, f poset.Point) (poset.UpperSet, error) {
	if poset.IsTop(f) {
		out := make([]poset.Point, d.N)
		for i := range out {
			t := make(poset.Tuple, d.N)
			for j := range t {
				t[j] = int64(0)
			}
			t[i] = poset.Top
			out[i] = t
		}
		return poset.NewUpperSet(d.r, out), nil
	}
	l, err := d.sum().SolveR(c, f)
	if err != nil {
		return poset.UpperSet{}, err
	}
	return poset.NewUpperSet(d.r, l.Maximals()), nil
}

func (d SplitNat) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	return poset.PrincipalLower(poset.Nat{}, d.sum().sum(r)), nil
}

func (d SplitNat) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.r.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(poset.Nat{}, d.sum().sum(m)), poset.Principal(d.r, m), nil
}

func (d SplitNat) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !(poset.Nat{}).Leq(f, d.sum().sum(r)) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{r}, nil
}

func (d SplitNat) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}
