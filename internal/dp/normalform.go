package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// NormalForm is the state-space view of a DP: a state poset S, an output
// map Alpha from (upper set of F, state) to an upper set of R, and a state
// update Beta. Both maps are monotone in each argument.
//
// A DP without internal state has S = poset.One, the identity update and
// Alpha equal to Solve lifted to upper sets.
type NormalForm struct {
	S     poset.Poset
	Alpha func(c *Context, uf poset.UpperSet, s poset.Point) (poset.UpperSet, error)
	Beta  func(c *Context, uf poset.UpperSet, s poset.Point) (poset.Point, error)
}

// SolveUpper lifts Solve to an upper set of functionality: the minimal union
// of the answers for every minimal point.
func SolveUpper(c *Context, d DP, uf poset.UpperSet) (poset.UpperSet, error) {
	var out []poset.Point
	for _, f := range uf.Minimals() {
		u, err := d.Solve(c, f)
		if err != nil {
			return poset.UpperSet{}, err
		}
		out = append(out, u.Minimals()...)
	}
	return poset.UpperSetFrom(d.ResSpace(), out), nil
}

// StatelessNormalForm returns the trivial normal form of d.
func StatelessNormalForm(d DP) NormalForm {
	return NormalForm{
		S: poset.One,
		Alpha: func(c *Context, uf poset.UpperSet, _ poset.Point) (poset.UpperSet, error) {
			return SolveUpper(c, d, uf)
		},
		Beta: func(_ *Context, _ poset.UpperSet, s poset.Point) (poset.Point, error) {
			return s, nil
		},
	}
}

// SolveNormalForm answers Solve(f) through the normal form of d: it iterates
// Beta from the bottom state until the state stops increasing, then applies
// Alpha. Exceeding the iteration cap returns an IterationLimitError.
func SolveNormalForm(c *Context, d DP, f poset.Point) (poset.UpperSet, error) {
	nf, err := d.NormalForm(c)
	if err != nil {
		return poset.UpperSet{}, err
	}
	uf := poset.Principal(d.FunSpace(), f)
	s, err := nf.S.Bottom()
	if err != nil {
		return poset.UpperSet{}, fmt.Errorf("%s: normal form state space: %w", d, err)
	}
	limit := c.Limit()
	for i := 0; ; i++ {
		if i >= limit {
			return poset.UpperSet{}, &IterationLimitError{DP: d.String(), Iterations: i, Limit: limit}
		}
		next, err := nf.Beta(c, uf, s)
		if err != nil {
			return poset.UpperSet{}, err
		}
		if nf.S.Leq(next, s) {
			break
		}
		s = next
	}
	return nf.Alpha(c, uf, s)
}
