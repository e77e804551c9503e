package loop

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

func n(x int64) poset.Point { return x }

func pair(a, b poset.Point) poset.Tuple { return poset.Tuple{a, b} }

func testContext(opts ...dp.Option) *dp.Context {
	base := []dp.Option{
		dp.WithExtraChecks(true),
		dp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return dp.NewContext(append(base, opts...)...)
}

// splitLoop builds the inner relation x + y ≥ c, z ≥ 2·f2, r2 ≥ y with
// functionality (c, f2) and resources ((x, z), r2), and closes f2 = r2.
func splitLoop(t *testing.T) (*Loop, dp.DP) {
	t.Helper()
	split, err := dp.NewSplitNat(2)
	require.NoError(t, err)
	scale, err := dp.NewScaleNat(2)
	require.NoError(t, err)
	par := dp.NewParallel(split, scale)
	mux, err := dp.NewMux(par.ResSpace(), dp.Group(dp.Group(dp.Leaf(0, 0), dp.Leaf(1)), dp.Leaf(0, 1)))
	require.NoError(t, err)
	inner, err := dp.NewSeries(par, mux)
	require.NoError(t, err)
	l, err := NewLoop2(inner)
	require.NoError(t, err)
	return l, inner
}

// doubling is r ≥ 2·(f1 + f2) closed with f2 = r.
func doubling(t *testing.T) *Loop {
	t.Helper()
	sum, err := dp.NewSumNat(2)
	require.NoError(t, err)
	scale, err := dp.NewScaleNat(2)
	require.NoError(t, err)
	inner, err := dp.NewSeries(sum, scale)
	require.NoError(t, err)
	l, err := NewLoop0(inner)
	require.NoError(t, err)
	return l
}

func TestScenarioSplitLoop(t *testing.T) {
	l, _ := splitLoop(t)

	u, err := dp.Solve(testContext(), l, n(2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		pair(n(0), n(4)),
		pair(n(1), n(2)),
		pair(n(2), n(0)),
	}, u.Minimals())
}

func TestLoopFixedPointIsLeastAndConsistent(t *testing.T) {
	c := testContext()
	l, inner := splitLoop(t)

	for _, f1 := range []int64{0, 1, 2, 3} {
		fp, err := l.fixpoint(c, n(f1))
		require.NoError(t, err)

		for _, s := range fp.state.Minimals() {
			u, err := inner.Solve(c, pair(n(f1), poset.Project(s, 1)))
			require.NoError(t, err)
			assert.True(t, u.Contains(s), "%v not self-consistent", s)
		}

		// Brute force over a box large enough to hold every minimal point.
		var feasible []poset.Point
		for x := int64(0); x <= 8; x++ {
			for z := int64(0); z <= 8; z++ {
				for f2 := int64(0); f2 <= 8; f2++ {
					u, err := inner.Solve(c, pair(n(f1), n(f2)))
					require.NoError(t, err)
					if u.Contains(pair(pair(n(x), n(z)), n(f2))) {
						feasible = append(feasible, pair(n(x), n(z)))
					}
				}
			}
		}
		want := poset.Minimize(l.ResSpace(), feasible)

		got, err := l.Solve(c, n(f1))
		require.NoError(t, err)
		assert.ElementsMatch(t, want, got.Minimals(), "f1=%d", f1)
	}
}

func TestLoopSolveR(t *testing.T) {
	c := testContext()
	l, _ := splitLoop(t)

	lo, err := dp.SolveR(c, l, pair(n(1), n(2)))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(2)}, lo.Maximals())

	lo, err = dp.SolveR(c, l, pair(n(0), n(0)))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(0)}, lo.Maximals())
}

func TestLoopImplementationsAndEvaluate(t *testing.T) {
	c := testContext()
	l, _ := splitLoop(t)

	ms, err := l.Implementations(c, n(2), pair(n(1), n(2)))
	require.NoError(t, err)
	require.Len(t, ms, 1)

	lf, ur, err := l.Evaluate(c, ms[0])
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(2)}, lf.Maximals())
	assert.Equal(t, []poset.Point{pair(n(1), n(2))}, ur.Minimals())

	_, err = l.Implementations(c, n(2), pair(n(0), n(0)))
	require.Error(t, err)
	assert.True(t, dp.IsNotFeasible(err))
}

func TestLoop0(t *testing.T) {
	c := testContext()
	mux, err := dp.NewMux(poset.NewProduct(poset.Nat{}, poset.Nat{}), dp.Leaf(0))
	require.NoError(t, err)
	scale, err := dp.NewScaleNat(3)
	require.NoError(t, err)
	inner, err := dp.NewSeries(mux, scale)
	require.NoError(t, err)
	l, err := NewLoop0(inner)
	require.NoError(t, err)

	u, err := dp.Solve(c, l, n(2))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(6)}, u.Minimals())

	lo, err := dp.SolveR(c, l, n(7))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(2)}, lo.Maximals())

	ms, err := l.Implementations(c, n(2), n(6))
	require.NoError(t, err)
	assert.Len(t, ms, 1)

	_, err = l.Implementations(c, n(2), n(5))
	assert.True(t, dp.IsNotFeasible(err))
}

func TestLoopIterationLimit(t *testing.T) {
	l := doubling(t)

	u, err := dp.Solve(testContext(), l, n(0))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(0)}, u.Minimals())

	_, err = dp.Solve(testContext(dp.WithMaxIterations(50)), l, n(1))
	require.Error(t, err)
	assert.True(t, dp.IsIterationLimit(err))

	var limitErr *dp.IterationLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 50, limitErr.Limit)

	split, _ := splitLoop(t)
	_, err = split.Solve(testContext(dp.WithMaxIterations(1)), n(2))
	assert.True(t, dp.IsIterationLimit(err))
	assert.Equal(t, 0, split.CacheSize())
}

func TestLoopMalformed(t *testing.T) {
	_, err := NewLoop2(dp.NewIdentity(poset.Nat{}))
	assert.True(t, dp.IsStructureError(err, dp.ErrCodeMalformedLoop))

	conv, err := dp.NewConversion(poset.NewTypesUniverse(), poset.Nat{}, poset.Rcomp{})
	require.NoError(t, err)
	_, err = NewLoop2(dp.NewParallel(dp.NewIdentity(poset.Nat{}), conv))
	assert.True(t, dp.IsStructureError(err, dp.ErrCodeMalformedLoop))

	_, err = NewLoop0(dp.NewParallel(dp.NewIdentity(poset.Nat{}), dp.NewIdentity(poset.Nat{})))
	assert.True(t, dp.IsStructureError(err, dp.ErrCodeMalformedLoop))
}

func TestLoopTracerAndMemo(t *testing.T) {
	var indices []int
	var sizes []int
	tracer := func(a poset.Antichain, i int, text string) {
		indices = append(indices, i)
		sizes = append(sizes, a.Len())
		assert.Contains(t, text, "Loop2 iteration")
	}
	c := testContext(dp.WithTracer(tracer))
	l, _ := splitLoop(t)

	_, err := l.Solve(c, n(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices)
	assert.Equal(t, []int{3, 3}, sizes)
	assert.Equal(t, 1, l.CacheSize())

	_, err = l.Solve(c, n(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, indices, "a cached fixed point replays its trace")
	assert.Equal(t, []int{3, 3, 3, 3}, sizes)
	assert.Equal(t, 1, l.CacheSize())

	l.ResetCache()
	assert.Equal(t, 0, l.CacheSize())
}

func TestLoopDualMemo(t *testing.T) {
	var texts []string
	c := testContext(dp.WithTracer(func(_ poset.Antichain, _ int, text string) {
		texts = append(texts, text)
	}))
	l, _ := splitLoop(t)

	first, err := l.SolveR(c, pair(n(1), n(2)))
	require.NoError(t, err)
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[0], "Loop2 dual iteration 0")
	assert.Equal(t, 1, l.DualCacheSize())
	assert.Equal(t, 0, l.CacheSize())

	traced := append([]string{}, texts...)
	second, err := l.SolveR(c, pair(n(1), n(2)))
	require.NoError(t, err)
	assert.Equal(t, first.Maximals(), second.Maximals())
	assert.Equal(t, append(traced, traced...), texts)
	assert.Equal(t, 1, l.DualCacheSize())

	l.ResetCache()
	assert.Equal(t, 0, l.DualCacheSize())
}

// nested closes a second loop around splitLoop that feeds the visible z
// resource back into c. The outer external functionality is unused.
func nested(t *testing.T) (*Loop, *Loop) {
	t.Helper()
	inner, _ := splitLoop(t)
	shape, err := dp.NewMux(poset.NewProduct(poset.Nat{}, poset.Nat{}), dp.Leaf(1))
	require.NoError(t, err)
	fed, err := dp.NewSeries(shape, inner)
	require.NoError(t, err)
	outer, err := NewLoop2(fed)
	require.NoError(t, err)
	return outer, inner
}

func TestNestedLoopSolveRReusesInnerDual(t *testing.T) {
	c := testContext()
	outer, inner := nested(t)

	first, err := dp.SolveR(c, outer, n(4))
	require.NoError(t, err)
	size := inner.DualCacheSize()
	assert.Positive(t, size)
	assert.Less(t, size, 8, "inner dual runs once per distinct budget")

	second, err := dp.SolveR(c, outer, n(4))
	require.NoError(t, err)
	assert.Equal(t, first.Maximals(), second.Maximals())
	assert.Equal(t, size, inner.DualCacheSize())
}

func TestLoopNormalFormAgreesWithSolve(t *testing.T) {
	c := testContext()
	l, _ := splitLoop(t)
	for _, f1 := range []int64{0, 1, 2, 3} {
		want, err := l.Solve(c, n(f1))
		require.NoError(t, err)
		got, err := dp.SolveNormalForm(c, l, n(f1))
		require.NoError(t, err)
		assert.ElementsMatch(t, want.Minimals(), got.Minimals(), "f1=%d", f1)
	}

	// A loop composes with other DPs through its normal form.
	scale, err := dp.NewScaleNat(2)
	require.NoError(t, err)
	s, err := dp.NewSeries(scale, l)
	require.NoError(t, err)
	want, err := s.Solve(c, n(1))
	require.NoError(t, err)
	got, err := dp.SolveNormalForm(c, s, n(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, want.Minimals(), got.Minimals())
}

func TestLoopConcurrentSolve(t *testing.T) {
	l, _ := splitLoop(t)
	c := testContext()

	var wg sync.WaitGroup
	results := make([]poset.UpperSet, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Solve(c, n(int64(i%4)))
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[i%4].Minimals(), results[i].Minimals())
	}
	assert.Equal(t, 4, l.CacheSize())
}

func TestDumpShowsLoop(t *testing.T) {
	l, _ := splitLoop(t)
	out := dp.Dump(l)
	assert.Contains(t, out, "Loop2 Nat → (Nat×Nat)\n")
	assert.Contains(t, out, "  Series ")
	assert.Contains(t, out, "SplitNat(2)")
}
