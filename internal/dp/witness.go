package dp

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/afcarl/mcdp/internal/poset"
)

// WitnessSet collects implementations without duplicates. Points are
// identified by their canonical key.
type WitnessSet struct {
	seen   *set.Set[string]
	points []poset.Point
}

// NewWitnessSet creates an empty WitnessSet.
func NewWitnessSet() *WitnessSet {
	return &WitnessSet{seen: set.New[string](8)}
}

// Add inserts points not seen before.
func (w *WitnessSet) Add(ms ...poset.Point) {
	for _, m := range ms {
		if w.seen.Insert(poset.Key(m)) {
			w.points = append(w.points, m)
		}
	}
}

func (w *WitnessSet) Len() int { return len(w.points) }

// Points returns the witnesses sorted by key.
func (w *WitnessSet) Points() []poset.Point {
	out := make([]poset.Point, len(w.points))
	copy(out, w.points)
	poset.SortByKey(out)
	return out
}
