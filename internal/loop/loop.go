package loop

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// Loop is a DP with one feedback channel closed. Build it with NewLoop0 or
// NewLoop2.
type Loop struct {
	kind  string
	inner dp.DP

	// f1 is the external functionality, f2 the fed-back functionality.
	f1, f2 poset.Poset

	// r is the inner resource space, rv the externally visible part.
	r, rv poset.Poset

	// fb extracts the fed-back component of an inner resource.
	fb func(r poset.Point) poset.Point

	// visible extracts the externally visible component.
	visible func(r poset.Point) poset.Point

	// budget is the inner resource bound for a visible budget and a
	// feedback value.
	budget func(rv, f2 poset.Point) (poset.Point, error)

	cache *memo[fixpoint]
	duals *memo[dualpoint]
}

// NewLoop2 closes the loop f2 = r2 of an inner DP with functionality
// (F1, F2) and resources (R1, R2).
func NewLoop2(inner dp.DP) (*Loop, error) {
	f, ok := inner.FunSpace().(poset.Product)
	if !ok || f.Len() != 2 {
		return nil, malformed(inner, "functionality must be a pair (F1, F2), got %s", inner.FunSpace())
	}
	r, ok := inner.ResSpace().(poset.Product)
	if !ok || r.Len() != 2 {
		return nil, malformed(inner, "resources must be a pair (R1, R2), got %s", inner.ResSpace())
	}
	if !poset.SameSpace(f.Components[1], r.Components[1]) {
		return nil, malformed(inner, "feedback functionality %s differs from feedback resource %s", f.Components[1], r.Components[1])
	}
	return &Loop{
		kind:    "Loop2",
		inner:   inner,
		f1:      f.Components[0],
		f2:      f.Components[1],
		r:       r,
		rv:      r.Components[0],
		fb:      func(x poset.Point) poset.Point { return poset.Project(x, 1) },
		visible: func(x poset.Point) poset.Point { return poset.Project(x, 0) },
		budget: func(rv, f2 poset.Point) (poset.Point, error) {
			return poset.Tuple{rv, f2}, nil
		},
		cache: newMemo[fixpoint](),
		duals: newMemo[dualpoint](),
	}, nil
}

// NewLoop0 closes the loop f2 = r of an inner DP with functionality
// (F1, F2) and resources F2. The fed-back resource is also the visible one.
func NewLoop0(inner dp.DP) (*Loop, error) {
	f, ok := inner.FunSpace().(poset.Product)
	if !ok || f.Len() != 2 {
		return nil, malformed(inner, "functionality must be a pair (F1, F2), got %s", inner.FunSpace())
	}
	r := inner.ResSpace()
	if !poset.SameSpace(f.Components[1], r) {
		return nil, malformed(inner, "feedback functionality %s differs from resources %s", f.Components[1], r)
	}
	id := func(x poset.Point) poset.Point { return x }
	return &Loop{
		kind:    "Loop0",
		inner:   inner,
		f1:      f.Components[0],
		f2:      f.Components[1],
		r:       r,
		rv:      r,
		fb:      id,
		visible: id,
		budget: func(rv, f2 poset.Point) (poset.Point, error) {
			return r.Meet(rv, f2)
		},
		cache: newMemo[fixpoint](),
		duals: newMemo[dualpoint](),
	}, nil
}

func malformed(inner dp.DP, format string, args ...any) error {
	return dp.NewStructureError(dp.ErrCodeMalformedLoop, inner.String(), fmt.Sprintf(format, args...), nil)
}

func (l *Loop) String() string        { return fmt.Sprintf("%s(%s)", l.kind, l.inner) }
func (l *Loop) Kind() string          { return l.kind }
func (l *Loop) Children() []dp.DP     { return []dp.DP{l.inner} }
func (l *Loop) Inner() dp.DP          { return l.inner }
func (l *Loop) FunSpace() poset.Poset { return l.f1 }
func (l *Loop) ResSpace() poset.Poset { return l.rv }
func (l *Loop) ImpSpace() poset.Space { return l.inner.ImpSpace() }

// CacheSize returns the number of memoized fixed points.
func (l *Loop) CacheSize() int { return l.cache.len() }

// DualCacheSize returns the number of memoized SolveR iterations.
func (l *Loop) DualCacheSize() int { return l.duals.len() }

// ResetCache drops every memoized fixed point, upward and downward.
func (l *Loop) ResetCache() {
	l.cache.reset()
	l.duals.reset()
}

// Solve returns the visible part of the least self-consistent resources.
func (l *Loop) Solve(c *dp.Context, f1 poset.Point) (poset.UpperSet, error) {
	fp, err := l.fixpoint(c, f1)
	if err != nil {
		return poset.UpperSet{}, err
	}
	mins := fp.state.Minimals()
	out := make([]poset.Point, len(mins))
	for i, s := range mins {
		out[i] = l.visible(s)
	}
	return poset.UpperSetFrom(l.rv, out), nil
}

// SolveR returns the maximal external functionality achievable within rv.
func (l *Loop) SolveR(c *dp.Context, rv poset.Point) (poset.LowerSet, error) {
	state, err := l.dual(c, rv)
	if err != nil {
		return poset.LowerSet{}, err
	}
	maxs := state.Maximals()
	out := make([]poset.Point, len(maxs))
	for i, s := range maxs {
		out[i] = poset.Project(s, 0)
	}
	return poset.LowerSetFrom(l.f1, out), nil
}

// Evaluate keeps the pairs of provided functionality and required
// resources of the inner implementation whose feedback values agree.
func (l *Loop) Evaluate(c *dp.Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	lf, ur, err := l.inner.Evaluate(c, m)
	if err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("evaluate in %s: %w", l.inner, err)
	}
	var fs, rs []poset.Point
	for _, f := range lf.Maximals() {
		for _, r := range ur.Minimals() {
			if l.f2.Leq(l.fb(r), poset.Project(f, 1)) {
				fs = append(fs, poset.Project(f, 0))
				rs = append(rs, l.visible(r))
			}
		}
	}
	if len(fs) == 0 {
		return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("%s: %w: feedback not consistent for %s", l, dp.ErrNotFeasible, l.inner.ImpSpace().Format(m))
	}
	return poset.LowerSetFrom(l.f1, fs), poset.UpperSetFrom(l.rv, rs), nil
}

// Implementations replays the fixed point for f1 and collects the inner
// witnesses of every consistent point within rv.
func (l *Loop) Implementations(c *dp.Context, f1, rv poset.Point) ([]poset.Point, error) {
	fp, err := l.fixpoint(c, f1)
	if err != nil {
		return nil, err
	}
	ws := dp.NewWitnessSet()
	for _, s := range fp.state.Minimals() {
		if !l.rv.Leq(l.visible(s), rv) {
			continue
		}
		b, err := l.budget(rv, l.fb(s))
		if err != nil {
			return nil, err
		}
		ms, err := l.inner.Implementations(c, poset.Tuple{f1, l.fb(s)}, b)
		if dp.IsNotFeasible(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("implementations in %s: %w", l.inner, err)
		}
		ws.Add(ms...)
	}
	if ws.Len() == 0 {
		return nil, fmt.Errorf("%s: %w for f=%s r=%s", l, dp.ErrNotFeasible, l.f1.Format(f1), l.rv.Format(rv))
	}
	return ws.Points(), nil
}
