package dp

import (
	"fmt"
	"math"

	"github.com/afcarl/mcdp/internal/poset"
)

// Conversion relates two compatible spaces through their embedding:
// r ≥ φ(f).
type Conversion struct {
	Emb poset.Embedding
}

// NewConversion looks up the embedding of from into to.
func NewConversion(u *poset.TypesUniverse, from, to poset.Poset) (Conversion, error) {
	e, err := u.GetEmbedding(from, to)
	if err != nil {
		return Conversion{}, NewStructureError(ErrCodeSpaceMismatch, "Conversion", fmt.Sprintf("cannot convert %s to %s", from, to), err)
	}
	return Conversion{Emb: e}, nil
}

func (d Conversion) String() string        { return fmt.Sprintf("Conversion(%s→%s)", d.Emb.From, d.Emb.To) }
func (d Conversion) FunSpace() poset.Poset { return d.Emb.From }
func (d Conversion) ResSpace() poset.Poset { return d.Emb.To }
func (d Conversion) ImpSpace() poset.Space { return d.Emb.From }

// Solve maps f into the resource space. A top functionality with no image
// (Nat into Int) cannot be provided by any resource: the answer is empty.
func (d Conversion) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	r, err := d.Emb.Map(f)
	if err != nil {
		if poset.IsTop(f) {
			return poset.EmptyUpperSet(d.Emb.To), nil
		}
		return poset.UpperSet{}, fmt.Errorf("%s: %w", d, err)
	}
	return poset.Principal(d.Emb.To, r), nil
}

// SolveR inverts the embedding. A budget below the image of the bottom of
// F admits nothing. Finite spaces are searched and naturals round down.
// Any other value outside the image cannot be answered exactly.
func (d Conversion) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	if bot, err := d.Emb.From.Bottom(); err == nil {
		if low, err := d.Emb.Map(bot); err == nil && !d.Emb.To.Leq(low, r) {
			return poset.EmptyLowerSet(d.Emb.From), nil
		}
	}
	if fp, ok := d.Emb.From.(*poset.FinitePoset); ok {
		var within []poset.Point
		for _, x := range fp.Elements() {
			if y, err := d.Emb.Map(x); err == nil && d.Emb.To.Leq(y, r) {
				within = append(within, x)
			}
		}
		return poset.LowerSetFrom(fp, within), nil
	}
	if _, ok := d.Emb.From.(poset.Nat); ok {
		if x, ok := r.(float64); ok {
			return poset.PrincipalLower(d.Emb.From, int64(math.Floor(x))), nil
		}
	}
	f, err := d.Emb.Inverse(r)
	if err != nil {
		return poset.LowerSet{}, fmt.Errorf("%s: %w: %w", d, ErrNeedsApproximation, err)
	}
	return poset.PrincipalLower(d.Emb.From, f), nil
}

func (d Conversion) Evaluate(c *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	u, err := d.Solve(c, m)
	if err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	return poset.PrincipalLower(d.Emb.From, m), u, nil
}

func (d Conversion) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	x, err := d.Emb.Map(f)
	if err != nil {
		if poset.IsTop(f) {
			return nil, notFeasible(d, f, r)
		}
		return nil, err
	}
	if !d.Emb.To.Leq(x, r) {
		return nil, notFeasible(d, f, r)
	}
	return []poset.Point{f}, nil
}

func (d Conversion) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}
