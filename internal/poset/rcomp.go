package poset

import (
	"math"
	"strconv"
)

// Rcomp is the non-negative reals completed with Top.
// Elements are float64 values ≥ 0 or Top.
type Rcomp struct{}

func (Rcomp) String() string { return "Rcomp" }

func (r Rcomp) Belongs(x Point) error { return belongsRcomp(r, x) }

func (Rcomp) Format(x Point) string { return formatRcomp(x) }

func (Rcomp) Leq(a, b Point) bool { return leqRcomp(a, b) }

func (Rcomp) Join(a, b Point) (Point, error) {
	if leqRcomp(a, b) {
		return b, nil
	}
	return a, nil
}

func (Rcomp) Meet(a, b Point) (Point, error) {
	if leqRcomp(a, b) {
		return a, nil
	}
	return b, nil
}

func (Rcomp) Top() (Point, error)    { return Top, nil }
func (Rcomp) Bottom() (Point, error) { return 0.0, nil }

func (Rcomp) Chain(n int) []Point { return chainRcomp(n) }

func belongsRcomp(s Space, x Point) error {
	if IsTop(x) {
		return nil
	}
	v, ok := x.(float64)
	if !ok {
		return notBelong(s, x, "expected float64 or Top")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notBelong(s, x, "not finite")
	}
	if v < 0 {
		return notBelong(s, x, "negative")
	}
	return nil
}

func formatRcomp(x Point) string {
	if IsTop(x) {
		return "⊤"
	}
	if v, ok := x.(float64); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return Key(x)
}

func leqRcomp(a, b Point) bool {
	if IsTop(b) {
		return true
	}
	if IsTop(a) {
		return false
	}
	return a.(float64) <= b.(float64)
}

func chainRcomp(n int) []Point {
	if n <= 0 {
		return nil
	}
	chain := make([]Point, 0, n)
	for i := 0; i < n-1; i++ {
		chain = append(chain, float64(i)*1.5)
	}
	return append(chain, Top)
}
