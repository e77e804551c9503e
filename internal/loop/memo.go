package loop

import (
	"sync"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// step is one tracer call made while computing a cached entry.
type step struct {
	antichain poset.Antichain
	iteration int
	text      string
}

// replay forwards recorded steps to the tracer of c.
func replay(c *dp.Context, steps []step) {
	for _, s := range steps {
		c.Trace(s.antichain, s.iteration, s.text)
	}
}

// recording returns a copy of c whose tracer also appends to steps.
// Calls made by nested loops are recorded too.
func recording(c *dp.Context, steps *[]step) *dp.Context {
	return c.With(dp.WithTracer(func(a poset.Antichain, i int, text string) {
		*steps = append(*steps, step{antichain: a, iteration: i, text: text})
		c.Trace(a, i, text)
	}))
}

// fixpoint is a converged Kleene state.
type fixpoint struct {
	// state holds the least consistent inner resources.
	state poset.UpperSet

	// iterations is the number of steps to convergence.
	iterations int

	steps []step
}

// dualpoint is a converged downward iteration.
type dualpoint struct {
	state poset.LowerSet
	steps []step
}

// memo caches converged iterations by the canonical key of the external
// input.
type memo[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func newMemo[T any]() *memo[T] {
	return &memo[T]{entries: make(map[string]T)}
}

func (m *memo[T]) get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memo[T]) put(key string, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
}

func (m *memo[T]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *memo[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]T)
}
