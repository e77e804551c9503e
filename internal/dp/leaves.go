package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// Identity is the relation f ≤ r on a single poset.
type Identity struct {
	P poset.Poset
}

// NewIdentity creates the identity DP on p.
func NewIdentity(p poset.Poset) Identity {
	return Identity{P: p}
}

func (d Identity) String() string        { return fmt.Sprintf("Identity(%s)", d.P) }
func (d Identity) FunSpace() poset.Poset { return d.P }
func (d Identity) ResSpace() poset.Poset { return d.P }
func (d Identity) ImpSpace() poset.Space { return d.P }

func (d Identity) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	return poset.Principal(d.P, f), nil
}

func (d Identity) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	return poset.PrincipalLower(d.P, r), nil
}

func (d Identity) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.P.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(d.P, m), poset.Principal(d.P, m), nil
}

func (d Identity) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !d.P.Leq(f, r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{f}, nil
}

func (d Identity) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}

// Constant has no functionality and always requires Value.
type Constant struct {
	P     poset.Poset
	Value poset.Point
}

// NewConstant creates a Constant after checking that value belongs to p.
func NewConstant(p poset.Poset, value poset.Point) (Constant, error) {
	if err := p.Belongs(value); err != nil {
		return Constant{}, NewStructureError(ErrCodeInvalidValue, "Constant", "value outside resource space", err)
	}
	return Constant{P: p, Value: value}, nil
}

func (d Constant) String() string        { return fmt.Sprintf("Constant(%s)", d.P.Format(d.Value)) }
func (d Constant) FunSpace() poset.Poset { return poset.One }
func (d Constant) ResSpace() poset.Poset { return d.P }
func (d Constant) ImpSpace() poset.Space { return poset.One }

func (d Constant) Solve(*Context, poset.Point) (poset.UpperSet, error) {
	return poset.Principal(d.P, d.Value), nil
}

func (d Constant) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	if !d.P.Leq(d.Value, r) {
		return poset.EmptyLowerSet(poset.One), nil
	}
	return poset.PrincipalLower(poset.One, poset.Tuple{}), nil
}

func (d Constant) Evaluate(*Context, poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	return poset.PrincipalLower(poset.One, poset.Tuple{}), poset.Principal(d.P, d.Value), nil
}

func (d Constant) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !d.P.Leq(d.Value, r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{poset.Tuple{}}, nil
}

func (d Constant) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}

// Limit has no resources and provides functionality up to Value.
type Limit struct {
	P     poset.Poset
	Value poset.Point
}

// NewLimit creates a Limit after checking that value belongs to p.
func NewLimit(p poset.Poset, value poset.Point) (Limit, error) {
	if err := p.Belongs(value); err != nil {
		return Limit{}, NewStructureError(ErrCodeInvalidValue, "Limit", "value outside functionality space", err)
	}
	return Limit{P: p, Value: value}, nil
}

func (d Limit) String() string        { return fmt.Sprintf("Limit(%s)", d.P.Format(d.Value)) }
func (d Limit) FunSpace() poset.Poset { return d.P }
func (d Limit) ResSpace() poset.Poset { return poset.One }
func (d Limit) ImpSpace() poset.Space { return poset.One }

func (d Limit) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	if !d.P.Leq(f, d.Value) {
		return poset.EmptyUpperSet(poset.One), nil
	}
	return poset.Principal(poset.One, poset.Tuple{}), nil
}

func (d Limit) SolveR(*Context, poset.Point) (poset.LowerSet, error) {
	return poset.PrincipalLower(d.P, d.Value), nil
}

func (d Limit) Evaluate(*Context, poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	return poset.PrincipalLower(d.P, d.Value), poset.Principal(poset.One, poset.Tuple{}), nil
}

func (d Limit) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	if !d.P.Leq(f, d.Value) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{poset.Tuple{}}, nil
}

func (d Limit) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}
