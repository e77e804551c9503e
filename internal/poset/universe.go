package poset

import (
	"fmt"
	"sync"
)

// Embedding is an order embedding between two posets together with its
// inverse on the image.
type Embedding struct {
	From, To Poset
	Map      func(Point) (Point, error)
	Inverse  func(Point) (Point, error)
}

// IdentityEmbedding maps a poset onto itself.
func IdentityEmbedding(p Poset) Embedding {
	id := func(x Point) (Point, error) { return x, nil }
	return Embedding{From: p, To: p, Map: id, Inverse: id}
}

// TypesUniverse decides which spaces are compatible and produces the
// embeddings between them.
//
// Structural rules cover identical spaces, Nat ⊂ Int, Nat ⊂ Rcomp, unit
// spaces of the same dimension, finite sub-posets and componentwise
// products. Additional embeddings can be registered explicitly.
// Safe for concurrent use.
type TypesUniverse struct {
	mu         sync.RWMutex
	registered map[[2]string]Embedding
}

// NewTypesUniverse returns a universe with only the structural rules.
func NewTypesUniverse() *TypesUniverse {
	return &TypesUniverse{registered: make(map[[2]string]Embedding)}
}

// Register adds an explicit embedding, overriding the structural rules for
// that pair of spaces.
func (u *TypesUniverse) Register(e Embedding) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.registered[[2]string{e.From.String(), e.To.String()}] = e
}

// CheckLeq returns nil if a embeds into b.
func (u *TypesUniverse) CheckLeq(a, b Poset) error {
	_, err := u.GetEmbedding(a, b)
	return err
}

// CheckEqual returns nil if a and b are the same space.
func (u *TypesUniverse) CheckEqual(a, b Poset) error {
	if sameSpace(a, b) {
		return nil
	}
	return &NotEqualError{Space: "spaces", A: a.String(), B: b.String()}
}

// GetEmbedding returns the embedding of a into b, or a *NotLeqError if the
// spaces are not compatible under the supported conversions.
func (u *TypesUniverse) GetEmbedding(a, b Poset) (Embedding, error) {
	u.mu.RLock()
	e, ok := u.registered[[2]string{a.String(), b.String()}]
	u.mu.RUnlock()
	if ok {
		return e, nil
	}
	if sameSpace(a, b) {
		return IdentityEmbedding(a), nil
	}
	notLeq := &NotLeqError{Space: "spaces", A: a.String(), B: b.String()}

	switch from := a.(type) {
	case Nat:
		switch b.(type) {
		case Int:
			return natToInt(from, b), nil
		case Rcomp, RcompUnits:
			if ru, ok := b.(RcompUnits); ok && ru.Unit.Dim != Dimensionless {
				return Embedding{}, notLeq
			}
			return natToRcomp(from, b), nil
		}
	case Rcomp:
		if to, ok := b.(RcompUnits); ok && to.Unit.Dim == Dimensionless {
			return scaleEmbedding(a, b, 1), nil
		}
	case RcompUnits:
		switch to := b.(type) {
		case RcompUnits:
			if from.Unit.Dim != to.Unit.Dim {
				return Embedding{}, fmt.Errorf("%w: dimension %s is not %s", notLeq, from.Unit.Dim, to.Unit.Dim)
			}
			return scaleEmbedding(a, b, from.Unit.Factor/to.Unit.Factor), nil
		case Rcomp:
			if from.Unit.Dim == Dimensionless {
				return scaleEmbedding(a, b, from.Unit.Factor), nil
			}
		}
	case *FinitePoset:
		if to, ok := b.(*FinitePoset); ok && finiteSubposet(from, to) {
			id := func(x Point) (Point, error) { return x, nil }
			inv := func(x Point) (Point, error) {
				if err := from.Belongs(x); err != nil {
					return nil, err
				}
				return x, nil
			}
			return Embedding{From: a, To: b, Map: id, Inverse: inv}, nil
		}
	case Product:
		if to, ok := b.(Product); ok && to.Len() == from.Len() {
			return u.productEmbedding(from, to)
		}
	}
	return Embedding{}, notLeq
}

func (u *TypesUniverse) productEmbedding(from, to Product) (Embedding, error) {
	parts := make([]Embedding, from.Len())
	for i := range from.Components {
		e, err := u.GetEmbedding(from.Components[i], to.Components[i])
		if err != nil {
			return Embedding{}, fmt.Errorf("component %d: %w", i, err)
		}
		parts[i] = e
	}
	apply := func(x Point, inverse bool) (Point, error) {
		t := x.(Tuple)
		out := make(Tuple, len(t))
		for i, e := range parts {
			f := e.Map
			if inverse {
				f = e.Inverse
			}
			v, err := f(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return Embedding{
		From:    from,
		To:      to,
		Map:     func(x Point) (Point, error) { return apply(x, false) },
		Inverse: func(x Point) (Point, error) { return apply(x, true) },
	}, nil
}

func natToInt(from, to Poset) Embedding {
	return Embedding{
		From: from,
		To:   to,
		Map: func(x Point) (Point, error) {
			if IsTop(x) {
				return nil, &NotBelongError{Space: to.String(), Value: "⊤", Reason: "Int has no top"}
			}
			return x, nil
		},
		Inverse: func(x Point) (Point, error) {
			if err := from.Belongs(x); err != nil {
				return nil, err
			}
			return x, nil
		},
	}
}

func natToRcomp(from, to Poset) Embedding {
	return Embedding{
		From: from,
		To:   to,
		Map: func(x Point) (Point, error) {
			if IsTop(x) {
				return Top, nil
			}
			return float64(x.(int64)), nil
		},
		Inverse: func(x Point) (Point, error) {
			if IsTop(x) {
				return Top, nil
			}
			f := x.(float64)
			if f != float64(int64(f)) {
				return nil, &NotBelongError{Space: from.String(), Value: formatRcomp(x), Reason: "not integral"}
			}
			return int64(f), nil
		},
	}
}

func scaleEmbedding(from, to Poset, factor float64) Embedding {
	scale := func(k float64) func(Point) (Point, error) {
		return func(x Point) (Point, error) {
			if IsTop(x) {
				return Top, nil
			}
			return x.(float64) * k, nil
		}
	}
	return Embedding{From: from, To: to, Map: scale(factor), Inverse: scale(1 / factor)}
}

func finiteSubposet(a, b *FinitePoset) bool {
	for _, x := range a.elements {
		if _, ok := b.index[x]; !ok {
			return false
		}
	}
	for _, x := range a.elements {
		for _, y := range a.elements {
			if a.Leq(x, y) != b.Leq(x, y) {
				return false
			}
		}
	}
	return true
}

// sameSpace compares spaces structurally.
func sameSpace(a, b Poset) bool {
	switch x := a.(type) {
	case Product:
		y, ok := b.(Product)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.Components {
			if !sameSpace(x.Components[i], y.Components[i]) {
				return false
			}
		}
		return true
	case UpperSets:
		y, ok := b.(UpperSets)
		return ok && sameSpace(x.P, y.P)
	case LowerSets:
		y, ok := b.(LowerSets)
		return ok && sameSpace(x.P, y.P)
	case *FinitePoset:
		y, ok := b.(*FinitePoset)
		return ok && (x == y || (len(x.elements) == len(y.elements) && finiteSubposet(x, y)))
	case RcompUnits:
		y, ok := b.(RcompUnits)
		return ok && x.Unit == y.Unit
	}
	return a.String() == b.String()
}

// SameSpace reports whether two posets are structurally identical.
func SameSpace(a, b Poset) bool { return sameSpace(a, b) }
