package poset

// Point is an element of a Space.
type Point = any

// Space is a set of points with membership and formatting.
//
// Implementation spaces (the M of a design problem) are plain spaces; the
// function and resource spaces are Posets.
type Space interface {
	// Belongs returns a *NotBelongError if x is not an element of the space.
	Belongs(x Point) error

	// Format renders x for humans. x is assumed to belong to the space.
	Format(x Point) string

	// String describes the space itself, e.g. "Nat" or "(Nat×Rcomp[m])".
	String() string
}

// Poset is a Space with a partial order.
//
// Leq must be reflexive, antisymmetric up to Equal and transitive.
// Join, Meet, Top and Bottom return typed errors when undefined.
type Poset interface {
	Space

	Leq(a, b Point) bool
	Join(a, b Point) (Point, error)
	Meet(a, b Point) (Point, error)
	Top() (Point, error)
	Bottom() (Point, error)

	// Chain returns an increasing chain of at most n distinct points, used
	// by property tests. Posets with fewer elements return shorter chains.
	Chain(n int) []Point
}

// topElement is the type of Top.
type topElement struct{}

// Top is the adjoined top element of Nat, Rcomp and RcompUnits.
var Top Point = topElement{}

// IsTop reports whether x is the Top sentinel.
func IsTop(x Point) bool {
	_, ok := x.(topElement)
	return ok
}

// CheckLeq returns a *NotLeqError unless a ≤ b in p.
func CheckLeq(p Poset, a, b Point) error {
	if p.Leq(a, b) {
		return nil
	}
	return &NotLeqError{Space: p.String(), A: p.Format(a), B: p.Format(b)}
}

// Equal reports whether a ≤ b and b ≤ a.
func Equal(p Poset, a, b Point) bool {
	return p.Leq(a, b) && p.Leq(b, a)
}

// CheckEqual returns a *NotEqualError unless a and b are order-equivalent.
func CheckEqual(p Poset, a, b Point) error {
	if Equal(p, a, b) {
		return nil
	}
	return &NotEqualError{Space: p.String(), A: p.Format(a), B: p.Format(b)}
}

// Comparable reports whether a ≤ b or b ≤ a.
func Comparable(p Poset, a, b Point) bool {
	return p.Leq(a, b) || p.Leq(b, a)
}
