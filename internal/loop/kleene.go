package loop

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// fixpoint returns the memoized fixed point for f1, iterating on a miss.
// A hit replays the recorded trace. Failed iterations are not cached.
func (l *Loop) fixpoint(c *dp.Context, f1 poset.Point) (fixpoint, error) {
	key := poset.Key(f1)
	if fp, ok := l.cache.get(key); ok {
		replay(c, fp.steps)
		return fp, nil
	}
	var steps []step
	fp, err := l.kleene(recording(c, &steps), f1)
	if err != nil {
		return fixpoint{}, err
	}
	fp.steps = steps
	l.cache.put(key, fp)
	return fp, nil
}

// kleene iterates upward from the inner answer at the bottom of the
// feedback space.
func (l *Loop) kleene(c *dp.Context, f1 poset.Point) (fixpoint, error) {
	bottom, err := l.f2.Bottom()
	if err != nil {
		return fixpoint{}, fmt.Errorf("%s: feedback space: %w", l, err)
	}
	state, err := dp.Solve(c, l.inner, poset.Tuple{f1, bottom})
	if err != nil {
		return fixpoint{}, fmt.Errorf("seed in %s: %w", l.inner, err)
	}

	log := c.Log().With("dp", l.kind, "f", l.f1.Format(f1))
	sets := poset.UpperSets{P: l.r}
	limit := c.Limit()
	for i := 0; ; i++ {
		if i >= limit {
			log.Error("kleene iteration did not converge", "iterations", i, "limit", limit)
			return fixpoint{}, &dp.IterationLimitError{DP: l.String(), Iterations: i, Limit: limit}
		}
		next, consistent, err := l.step(c, f1, state)
		if err != nil {
			return fixpoint{}, err
		}
		text := fmt.Sprintf("%s iteration %d: %d minimal, %d consistent", l.kind, i, state.Len(), consistent)
		c.Trace(state, i, text)
		log.Debug("kleene step", "iteration", i, "minimals", state.Len(), "consistent", consistent)

		if sets.Leq(next, state) {
			log.Debug("kleene converged", "iterations", i+1, "minimals", next.Len())
			return fixpoint{state: next, iterations: i + 1}, nil
		}
		state = next
	}
}

// step joins every minimal point with the inner answers at its feedback
// value. It also counts the points that are already self-consistent.
func (l *Loop) step(c *dp.Context, f1 poset.Point, state poset.UpperSet) (poset.UpperSet, int, error) {
	var out []poset.Point
	consistent := 0
	for _, s := range state.Minimals() {
		u, err := dp.Solve(c, l.inner, poset.Tuple{f1, l.fb(s)})
		if err != nil {
			return poset.UpperSet{}, 0, fmt.Errorf("solve in %s: %w", l.inner, err)
		}
		self := false
		for _, r := range u.Minimals() {
			j, err := l.r.Join(s, r)
			if err != nil {
				return poset.UpperSet{}, 0, fmt.Errorf("%s: %w", l, err)
			}
			out = append(out, j)
			self = self || l.r.Leq(r, s)
		}
		if self {
			consistent++
		}
	}
	return poset.UpperSetFrom(l.r, out), consistent, nil
}

// dual returns the memoized downward fixed point for rv. Nested loops
// call it for every outer step, usually with repeated budgets.
func (l *Loop) dual(c *dp.Context, rv poset.Point) (poset.LowerSet, error) {
	key := poset.Key(rv)
	if hit, ok := l.duals.get(key); ok {
		replay(c, hit.steps)
		return hit.state, nil
	}
	var steps []step
	state, err := l.descend(recording(c, &steps), rv)
	if err != nil {
		return poset.LowerSet{}, err
	}
	l.duals.put(key, dualpoint{state: state, steps: steps})
	return state, nil
}

// descend iterates downward over the inner functionality space, starting
// from the inner answer at the top of the feedback space.
func (l *Loop) descend(c *dp.Context, rv poset.Point) (poset.LowerSet, error) {
	top, err := l.f2.Top()
	if err != nil {
		return poset.LowerSet{}, fmt.Errorf("%s: feedback space: %w", l, err)
	}
	b, err := l.budget(rv, top)
	if err != nil {
		return poset.LowerSet{}, err
	}
	state, err := dp.SolveR(c, l.inner, b)
	if err != nil {
		return poset.LowerSet{}, fmt.Errorf("seed in %s: %w", l.inner, err)
	}

	log := c.Log().With("dp", l.kind, "r", l.rv.Format(rv))
	fs := l.inner.FunSpace()
	sets := poset.LowerSets{P: fs}
	limit := c.Limit()
	for i := 0; ; i++ {
		if i >= limit {
			log.Error("dual iteration did not converge", "iterations", i, "limit", limit)
			return poset.LowerSet{}, &dp.IterationLimitError{DP: l.String(), Iterations: i, Limit: limit}
		}
		var out []poset.Point
		for _, s := range state.Maximals() {
			b, err := l.budget(rv, poset.Project(s, 1))
			if err != nil {
				return poset.LowerSet{}, err
			}
			lo, err := dp.SolveR(c, l.inner, b)
			if err != nil {
				return poset.LowerSet{}, fmt.Errorf("solve_r in %s: %w", l.inner, err)
			}
			for _, f := range lo.Maximals() {
				m, err := fs.Meet(s, f)
				if err != nil {
					return poset.LowerSet{}, fmt.Errorf("%s: %w", l, err)
				}
				out = append(out, m)
			}
		}
		next := poset.LowerSetFrom(fs, out)
		c.Trace(state, i, fmt.Sprintf("%s dual iteration %d: %d maximal", l.kind, i, state.Len()))
		log.Debug("dual step", "iteration", i, "maximals", state.Len())

		if sets.Leq(next, state) {
			return next, nil
		}
		state = next
	}
}
