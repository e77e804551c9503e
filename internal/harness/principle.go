package harness

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// MonotonicityError reports a pair of queries a ≤ b whose answers are not
// nested the way a monotone design problem requires.
type MonotonicityError struct {
	Op      string // "solve" or "solve_r"
	Lower   string // the smaller query
	Upper   string // the larger query
	Missing string // point of the answer that should be contained
}

func (e *MonotonicityError) Error() string {
	return fmt.Sprintf("%s is not monotone: %s ≤ %s but %s escapes", e.Op, e.Lower, e.Upper, e.Missing)
}

// CheckMonotone verifies the monotonicity principle of d along the test
// chains of its spaces: for f ≤ f', solve(f') ⊆ solve(f), and for r ≤ r',
// solve_r(r) ⊆ solve_r(r'). n bounds the chain lengths.
func CheckMonotone(c *dp.Context, d dp.DP, n int) error {
	fun, res := d.FunSpace(), d.ResSpace()

	var prevU poset.UpperSet
	fs := fun.Chain(n)
	for k, f := range fs {
		u, err := dp.Solve(c, d, f)
		if err != nil {
			return fmt.Errorf("solve(%s): %w", fun.Format(f), err)
		}
		if k > 0 {
			for _, r := range u.Minimals() {
				if !prevU.Contains(r) {
					return &MonotonicityError{Op: "solve", Lower: fun.Format(fs[k-1]), Upper: fun.Format(f), Missing: res.Format(r)}
				}
			}
		}
		prevU = u
	}

	var prevL poset.LowerSet
	rs := res.Chain(n)
	for k, r := range rs {
		l, err := dp.SolveR(c, d, r)
		if err != nil {
			return fmt.Errorf("solve_r(%s): %w", res.Format(r), err)
		}
		if k > 0 {
			for _, f := range prevL.Maximals() {
				if !l.Contains(f) {
					return &MonotonicityError{Op: "solve_r", Lower: res.Format(rs[k-1]), Upper: res.Format(r), Missing: fun.Format(f)}
				}
			}
		}
		prevL = l
	}
	return nil
}
