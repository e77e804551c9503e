package loop

import (
	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// NormalForm pairs the inner state with the current estimate of the inner
// resources. The estimate is an upper set of the whole inner resource
// space rather than of R2 alone, so each feedback value stays attached to
// the visible resources it came with. Beta performs one Kleene step; Alpha
// reads the visible part of the estimate.
func (l *Loop) NormalForm(c *dp.Context) (dp.NormalForm, error) {
	nf, err := l.inner.NormalForm(c)
	if err != nil {
		return dp.NormalForm{}, err
	}
	fs := l.inner.FunSpace()
	estimates := poset.UpperSets{P: l.r}

	innerUF := func(uf poset.UpperSet, fbs []poset.Point) poset.UpperSet {
		p := poset.ProductUpper(uf, poset.UpperSetFrom(l.f2, fbs))
		return poset.NewUpperSet(fs, p.Minimals())
	}

	return dp.NormalForm{
		S: poset.NewProduct(nf.S, estimates),
		Alpha: func(_ *dp.Context, _ poset.UpperSet, s poset.Point) (poset.UpperSet, error) {
			est := s.(poset.Tuple)[1].(poset.UpperSet)
			mins := est.Minimals()
			out := make([]poset.Point, len(mins))
			for i, x := range mins {
				out[i] = l.visible(x)
			}
			return poset.UpperSetFrom(l.rv, out), nil
		},
		Beta: func(c *dp.Context, uf poset.UpperSet, s poset.Point) (poset.Point, error) {
			t := s.(poset.Tuple)
			si, est := t[0], t[1].(poset.UpperSet)
			var out, fbs []poset.Point
			for _, x := range est.Minimals() {
				fbs = append(fbs, l.fb(x))
				a, err := nf.Alpha(c, innerUF(uf, []poset.Point{l.fb(x)}), si)
				if err != nil {
					return nil, err
				}
				for _, r := range a.Minimals() {
					j, err := l.r.Join(x, r)
					if err != nil {
						return nil, err
					}
					out = append(out, j)
				}
			}
			next, err := nf.Beta(c, innerUF(uf, fbs), si)
			if err != nil {
				return nil, err
			}
			return poset.Tuple{next, poset.UpperSetFrom(l.r, out)}, nil
		},
	}, nil
}
