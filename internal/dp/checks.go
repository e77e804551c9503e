package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// checkFun validates a functionality argument when extra checks are on.
func checkFun(c *Context, d DP, f poset.Point) error {
	if !c.Checks() {
		return nil
	}
	if err := d.FunSpace().Belongs(f); err != nil {
		return fmt.Errorf("%s: bad functionality: %w", d, err)
	}
	return nil
}

// checkRes validates a resource argument when extra checks are on.
func checkRes(c *Context, d DP, r poset.Point) error {
	if !c.Checks() {
		return nil
	}
	if err := d.ResSpace().Belongs(r); err != nil {
		return fmt.Errorf("%s: bad resource: %w", d, err)
	}
	return nil
}

// CheckUpper validates a Solve result when extra checks are on.
func CheckUpper(c *Context, d DP, u poset.UpperSet) error {
	if !c.Checks() {
		return nil
	}
	if !poset.SameSpace(u.Space(), d.ResSpace()) {
		return fmt.Errorf("%s: solve returned a set in %s, want %s", d, u.Space(), d.ResSpace())
	}
	if err := u.Check(); err != nil {
		return fmt.Errorf("%s: solve: %w", d, err)
	}
	return nil
}

// CheckLower validates a SolveR result when extra checks are on.
func CheckLower(c *Context, d DP, l poset.LowerSet) error {
	if !c.Checks() {
		return nil
	}
	if !poset.SameSpace(l.Space(), d.FunSpace()) {
		return fmt.Errorf("%s: solve_r returned a set in %s, want %s", d, l.Space(), d.FunSpace())
	}
	if err := l.Check(); err != nil {
		return fmt.Errorf("%s: solve_r: %w", d, err)
	}
	return nil
}

// Solve calls d.Solve with argument and result checks.
func Solve(c *Context, d DP, f poset.Point) (poset.UpperSet, error) {
	if err := checkFun(c, d, f); err != nil {
		return poset.UpperSet{}, err
	}
	u, err := d.Solve(c, f)
	if err != nil {
		return poset.UpperSet{}, err
	}
	if err := CheckUpper(c, d, u); err != nil {
		return poset.UpperSet{}, err
	}
	return u, nil
}

// SolveR calls d.SolveR with argument and result checks.
func SolveR(c *Context, d DP, r poset.Point) (poset.LowerSet, error) {
	if err := checkRes(c, d, r); err != nil {
		return poset.LowerSet{}, err
	}
	l, err := d.SolveR(c, r)
	if err != nil {
		return poset.LowerSet{}, err
	}
	if err := CheckLower(c, d, l); err != nil {
		return poset.LowerSet{}, err
	}
	return l, nil
}
