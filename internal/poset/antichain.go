package poset

import "fmt"

// AntichainError reports two comparable points stored in the same
// UpperSet or LowerSet.
type AntichainError struct {
	Space string
	A, B  string
}

func (e *AntichainError) Error() string {
	return fmt.Sprintf("%s: %s and %s are comparable, not an antichain", e.Space, e.A, e.B)
}

// Minimize returns the minimal elements of candidates, sorted by key.
//
// Dominated points are dropped pairwise (O(n²)). Among order-equivalent
// points one canonical representative is kept: the one with the smallest key.
func Minimize(p Poset, candidates []Point) []Point {
	return prune(candidates, func(a, b Point) bool { return p.Leq(a, b) })
}

// Maximize returns the maximal elements of candidates, sorted by key.
func Maximize(p Poset, candidates []Point) []Point {
	return prune(candidates, func(a, b Point) bool { return p.Leq(b, a) })
}

// prune keeps the points not strictly dominated under below.
func prune(candidates []Point, below func(a, b Point) bool) []Point {
	uniq := dedupe(candidates)
	keep := make([]Point, 0, len(uniq))
	for i, x := range uniq {
		dominated := false
		for j, y := range uniq {
			if i == j || !below(y, x) {
				continue
			}
			// y ≤ x. Drop x if strictly dominated, or if equivalent and y
			// sorts first (uniq is sorted by key, so j < i).
			if !below(x, y) || j < i {
				dominated = true
				break
			}
		}
		if !dominated {
			keep = append(keep, x)
		}
	}
	return keep
}

// dedupe removes points with duplicate keys and sorts by key.
func dedupe(points []Point) []Point {
	seen := make(map[string]bool, len(points))
	out := make([]Point, 0, len(points))
	for _, x := range points {
		k := Key(x)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, x)
	}
	SortByKey(out)
	return out
}

// CheckAntichain returns an *AntichainError if two of the points are
// comparable in p.
func CheckAntichain(p Poset, points []Point) error {
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if Comparable(p, points[i], points[j]) {
				return &AntichainError{Space: p.String(), A: p.Format(points[i]), B: p.Format(points[j])}
			}
		}
	}
	return nil
}
