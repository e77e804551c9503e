package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// DP is a monotone design problem.
//
// Implementations must be immutable values: every method is referentially
// transparent for a given receiver, so composites may be queried from
// several goroutines.
type DP interface {
	fmt.Stringer

	FunSpace() poset.Poset
	ResSpace() poset.Poset
	ImpSpace() poset.Space

	// Solve returns the minimal resources sufficient for f.
	Solve(c *Context, f poset.Point) (poset.UpperSet, error)

	// SolveR returns the maximal functionality achievable within r.
	SolveR(c *Context, r poset.Point) (poset.LowerSet, error)

	// Evaluate returns the functionality provided and the resources
	// required by implementation m.
	Evaluate(c *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error)

	// Implementations returns the witnesses m that provide f within r.
	// It returns an error wrapping ErrNotFeasible if there are none.
	Implementations(c *Context, f, r poset.Point) ([]poset.Point, error)

	// NormalForm returns the state-space view of the DP.
	NormalForm(c *Context) (NormalForm, error)
}

// Composite is implemented by DPs built from other DPs. Dump uses it to
// render the structure.
type Composite interface {
	Children() []DP
}

// IsFeasible reports whether r is sufficient for f.
func IsFeasible(c *Context, d DP, f, r poset.Point) (bool, error) {
	u, err := d.Solve(c, f)
	if err != nil {
		return false, err
	}
	return u.Contains(r), nil
}

// CheckInfeasible returns an error wrapping ErrFeasible if r is sufficient
// for f.
func CheckInfeasible(c *Context, d DP, f, r poset.Point) error {
	ok, err := IsFeasible(c, d, f, r)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%s: %w for f=%s r=%s", d, ErrFeasible, d.FunSpace().Format(f), d.ResSpace().Format(r))
	}
	return nil
}
