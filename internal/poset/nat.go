package poset

import (
	"strconv"
)

// Nat is the natural numbers completed with Top: 0 ≤ 1 ≤ ... ≤ ⊤.
// Elements are int64 values ≥ 0 or Top.
type Nat struct{}

func (Nat) String() string { return "Nat" }

func (n Nat) Belongs(x Point) error {
	if IsTop(x) {
		return nil
	}
	v, ok := x.(int64)
	if !ok {
		return notBelong(n, x, "expected int64 or Top")
	}
	if v < 0 {
		return notBelong(n, x, "negative")
	}
	return nil
}

func (Nat) Format(x Point) string {
	if IsTop(x) {
		return "⊤"
	}
	if v, ok := x.(int64); ok {
		return strconv.FormatInt(v, 10)
	}
	return Key(x)
}

func (Nat) Leq(a, b Point) bool {
	if IsTop(b) {
		return true
	}
	if IsTop(a) {
		return false
	}
	return a.(int64) <= b.(int64)
}

func (n Nat) Join(a, b Point) (Point, error) {
	if n.Leq(a, b) {
		return b, nil
	}
	return a, nil
}

func (n Nat) Meet(a, b Point) (Point, error) {
	if n.Leq(a, b) {
		return a, nil
	}
	return b, nil
}

func (Nat) Top() (Point, error)    { return Top, nil }
func (Nat) Bottom() (Point, error) { return int64(0), nil }

func (Nat) Chain(n int) []Point {
	if n <= 0 {
		return nil
	}
	chain := make([]Point, 0, n)
	for i := 0; i < n-1; i++ {
		chain = append(chain, int64(i*i))
	}
	return append(chain, Top)
}

// NatAdd adds two naturals; Top is absorbing.
func NatAdd(a, b Point) Point {
	if IsTop(a) || IsTop(b) {
		return Top
	}
	return a.(int64) + b.(int64)
}

// NatScale multiplies a natural by k ≥ 0; Top stays Top unless k is zero.
func NatScale(k int64, a Point) Point {
	if k == 0 {
		return int64(0)
	}
	if IsTop(a) {
		return Top
	}
	return k * a.(int64)
}

// Int is the integers without top or bottom.
type Int struct{}

func (Int) String() string { return "Int" }

func (i Int) Belongs(x Point) error {
	if _, ok := x.(int64); !ok {
		return notBelong(i, x, "expected int64")
	}
	return nil
}

func (Int) Format(x Point) string {
	if v, ok := x.(int64); ok {
		return strconv.FormatInt(v, 10)
	}
	return Key(x)
}

func (Int) Leq(a, b Point) bool { return a.(int64) <= b.(int64) }

func (Int) Join(a, b Point) (Point, error) { return max(a.(int64), b.(int64)), nil }
func (Int) Meet(a, b Point) (Point, error) { return min(a.(int64), b.(int64)), nil }

func (Int) Top() (Point, error)    { return nil, &UnboundedError{Space: "Int", Which: "top"} }
func (Int) Bottom() (Point, error) { return nil, &UnboundedError{Space: "Int", Which: "bottom"} }

func (Int) Chain(n int) []Point {
	chain := make([]Point, 0, max(n, 0))
	for i := 0; i < n; i++ {
		chain = append(chain, int64(3*i-n))
	}
	return chain
}
