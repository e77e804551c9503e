package dp

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/mcdp/internal/poset"
)

var nat2 = poset.NewProduct(poset.Nat{}, poset.Nat{})

func n(x int64) poset.Point { return x }

func testContext() *Context {
	return NewContext(
		WithExtraChecks(true),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// testCatalogue: a provides 2 for 5, b provides 4 for 8, c provides 6 for 20.
func testCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	cat, err := NewCatalogue(poset.Nat{}, poset.Nat{}, []Entry{
		{Name: "a", F: n(2), R: n(5)},
		{Name: "b", F: n(4), R: n(8)},
		{Name: "c", F: n(6), R: n(20)},
	})
	require.NoError(t, err)
	return cat
}

// pairCatalogue has two incomparable answers for f ≤ 5.
func pairCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	cat, err := NewCatalogue(poset.Nat{}, nat2, []Entry{
		{Name: "x", F: n(5), R: poset.Tuple{n(1), n(4)}},
		{Name: "y", F: n(5), R: poset.Tuple{n(3), n(1)}},
		{Name: "z", F: n(2), R: poset.Tuple{n(0), n(0)}},
	})
	require.NoError(t, err)
	return cat
}

func mustScale(t *testing.T, k int64) ScaleNat {
	t.Helper()
	s, err := NewScaleNat(k)
	require.NoError(t, err)
	return s
}

func TestScenarioParallelConstants(t *testing.T) {
	c2, err := NewConstant(poset.Nat{}, n(2))
	require.NoError(t, err)
	c3, err := NewConstant(poset.Nat{}, n(3))
	require.NoError(t, err)

	p := NewParallel(c2, c3)
	u, err := Solve(testContext(), p, poset.Tuple{poset.Tuple{}, poset.Tuple{}})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(2), n(3)}}, u.Minimals())
}

func TestScenarioCoProductCatalogues(t *testing.T) {
	c := testContext()
	cp, err := NewCoProduct(testCatalogue(t), testCatalogue(t))
	require.NoError(t, err)

	ms, err := cp.Implementations(c, n(3), n(10))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{
		poset.Tagged{Branch: 0, Value: "b"},
		poset.Tagged{Branch: 1, Value: "b"},
	}, ms)

	ms, err = cp.Implementations(c, n(1), n(100))
	require.NoError(t, err)
	assert.Len(t, ms, 6)

	_, err = cp.Implementations(c, n(7), n(100))
	require.Error(t, err)
	assert.True(t, IsNotFeasible(err))

	u, err := Solve(c, cp, n(3))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(8)}, u.Minimals())

	l, err := SolveR(c, cp, n(10))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(4)}, l.Maximals())
}

func TestCatalogueRejectsBadEntries(t *testing.T) {
	_, err := NewCatalogue(poset.Nat{}, poset.Nat{}, []Entry{
		{Name: "a", F: n(1), R: n(1)},
		{Name: "a", F: n(2), R: n(2)},
	})
	assert.True(t, IsStructureError(err, ErrCodeInvalidValue))

	_, err = NewCatalogue(poset.Nat{}, poset.Nat{}, []Entry{{Name: "a", F: n(-1), R: n(1)}})
	assert.True(t, IsStructureError(err, ErrCodeInvalidValue))
	assert.True(t, poset.IsNotBelong(err))
}

func TestSeriesIdentity(t *testing.T) {
	c := testContext()
	cat := testCatalogue(t)
	left, err := NewSeries(NewIdentity(poset.Nat{}), cat)
	require.NoError(t, err)
	right, err := NewSeries(cat, NewIdentity(poset.Nat{}))
	require.NoError(t, err)

	for _, f := range (poset.Nat{}).Chain(8) {
		want, err := Solve(c, cat, f)
		require.NoError(t, err)
		for _, d := range []DP{left, right} {
			got, err := Solve(c, d, f)
			require.NoError(t, err)
			assert.Equal(t, want.Minimals(), got.Minimals(), "%s at %v", d, f)
		}
	}
}

func TestSeriesSpaceMismatch(t *testing.T) {
	_, err := NewSeries(testCatalogue(t), NewIdentity(poset.Rcomp{}))
	require.Error(t, err)
	assert.True(t, IsStructureError(err, ErrCodeSpaceMismatch))
}

func TestSeriesEvaluateAndImplementations(t *testing.T) {
	c := testContext()
	s, err := NewSeries(testCatalogue(t), mustScale(t, 2))
	require.NoError(t, err)

	lf, ur, err := s.Evaluate(c, poset.Tuple{"b", n(8)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(4)}, lf.Maximals())
	assert.Equal(t, []poset.Point{n(16)}, ur.Minimals())

	_, _, err = s.Evaluate(c, poset.Tuple{"c", n(8)})
	assert.True(t, IsNotFeasible(err))

	ms, err := s.Implementations(c, n(3), n(16))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{"b", n(8)}}, ms)

	_, err = s.Implementations(c, n(3), n(15))
	assert.True(t, IsNotFeasible(err))
}

func TestParallelFactorization(t *testing.T) {
	c := testContext()
	cat := pairCatalogue(t)
	scale := mustScale(t, 2)
	p := NewParallel(cat, scale)

	for _, f1 := range []poset.Point{n(0), n(3), n(5), n(6)} {
		for _, f2 := range []poset.Point{n(0), n(3)} {
			u1, err := cat.Solve(c, f1)
			require.NoError(t, err)
			u2, err := scale.Solve(c, f2)
			require.NoError(t, err)
			var want []poset.Point
			for _, a := range u1.Minimals() {
				for _, b := range u2.Minimals() {
					want = append(want, poset.Tuple{a, b})
				}
			}

			got, err := Solve(c, p, poset.Tuple{f1, f2})
			require.NoError(t, err)
			assert.ElementsMatch(t, want, got.Minimals(), "f=(%v,%v)", f1, f2)
		}
	}

	got, err := Solve(c, p, poset.Tuple{n(4), n(3)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		poset.Tuple{poset.Tuple{n(1), n(4)}, n(6)},
		poset.Tuple{poset.Tuple{n(3), n(1)}, n(6)},
	}, got.Minimals())
}

func TestParallelImplementations(t *testing.T) {
	c := testContext()
	p := NewParallel(testCatalogue(t), mustScale(t, 3))

	ms, err := p.Implementations(c, poset.Tuple{n(1), n(2)}, poset.Tuple{n(8), n(6)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		poset.Tuple{"a", n(2)},
		poset.Tuple{"b", n(2)},
	}, ms)

	_, err = p.Implementations(c, poset.Tuple{n(1), n(3)}, poset.Tuple{n(8), n(6)})
	assert.True(t, IsNotFeasible(err))
}

func TestMonotonicity(t *testing.T) {
	c := testContext()
	sum, err := NewSumNat(2)
	require.NoError(t, err)
	series, err := NewSeries(testCatalogue(t), mustScale(t, 3))
	require.NoError(t, err)
	cp, err := NewCoProduct(testCatalogue(t), NewIdentity(poset.Nat{}))
	require.NoError(t, err)

	dps := []DP{
		testCatalogue(t),
		pairCatalogue(t),
		mustScale(t, 2),
		sum,
		series,
		cp,
		NewParallel(pairCatalogue(t), sum),
	}
	for _, d := range dps {
		t.Run(d.String(), func(t *testing.T) {
			us := poset.UpperSets{P: d.ResSpace()}
			var prev poset.UpperSet
			for i, f := range d.FunSpace().Chain(6) {
				u, err := Solve(c, d, f)
				require.NoError(t, err)
				require.NoError(t, poset.CheckAntichain(d.ResSpace(), u.Minimals()))
				if i > 0 {
					assert.True(t, us.Leq(prev, u), "solve not monotone at %v", f)
				}
				prev = u
			}

			ls := poset.LowerSets{P: d.FunSpace()}
			var prevL poset.LowerSet
			for i, r := range d.ResSpace().Chain(5) {
				l, err := SolveR(c, d, r)
				require.NoError(t, err)
				require.NoError(t, poset.CheckAntichain(d.FunSpace(), l.Maximals()))
				if i > 0 {
					assert.True(t, ls.Leq(l, prevL), "solve_r not monotone at %v", r)
				}
				prevL = l
			}
		})
	}
}

func TestSumNat(t *testing.T) {
	c := testContext()
	sum, err := NewSumNat(2)
	require.NoError(t, err)

	u, err := sum.Solve(c, poset.Tuple{n(2), n(3)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(5)}, u.Minimals())

	l, err := sum.SolveR(c, n(3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		poset.Tuple{n(0), n(3)},
		poset.Tuple{n(1), n(2)},
		poset.Tuple{n(2), n(1)},
		poset.Tuple{n(3), n(0)},
	}, l.Maximals())

	l, err = sum.SolveR(c, poset.Top)
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{poset.Top, poset.Top}}, l.Maximals())

	_, err = NewSumNat(0)
	assert.True(t, IsStructureError(err, ErrCodeInvalidValue))
}

func TestScaleNat(t *testing.T) {
	c := testContext()
	s := mustScale(t, 3)

	l, err := s.SolveR(c, n(10))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(3)}, l.Maximals())

	zero := mustScale(t, 0)
	l, err = zero.SolveR(c, n(0))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Top}, l.Maximals())
}

func TestConstantAndLimit(t *testing.T) {
	c := testContext()
	k, err := NewConstant(poset.Nat{}, n(4))
	require.NoError(t, err)

	l, err := k.SolveR(c, n(3))
	require.NoError(t, err)
	assert.True(t, l.IsEmpty())
	_, err = k.Implementations(c, poset.Tuple{}, n(3))
	assert.True(t, IsNotFeasible(err))

	lim, err := NewLimit(poset.Nat{}, n(4))
	require.NoError(t, err)
	u, err := lim.Solve(c, n(5))
	require.NoError(t, err)
	assert.True(t, u.IsEmpty())
	u, err = lim.Solve(c, n(4))
	require.NoError(t, err)
	assert.Equal(t, 1, u.Len())

	_, err = NewConstant(poset.Nat{}, "four")
	assert.True(t, IsStructureError(err, ErrCodeInvalidValue))
}

func TestConversion(t *testing.T) {
	c := testContext()
	u := poset.NewTypesUniverse()
	km, err := poset.NewRcompUnits("km")
	require.NoError(t, err)
	m, err := poset.NewRcompUnits("m")
	require.NoError(t, err)

	conv, err := NewConversion(u, km, m)
	require.NoError(t, err)
	res, err := conv.Solve(c, 1.5)
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{1500.0}, res.Minimals())

	back, err := conv.SolveR(c, 3000.0)
	require.NoError(t, err)
	require.Equal(t, 1, back.Len())
	assert.InDelta(t, 3.0, back.Maximals()[0].(float64), 1e-9)

	toR, err := NewConversion(u, poset.Nat{}, poset.Rcomp{})
	require.NoError(t, err)
	floor, err := toR.SolveR(c, 2.5)
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(2)}, floor.Maximals())

	s, err := poset.NewRcompUnits("s")
	require.NoError(t, err)
	_, err = NewConversion(u, km, s)
	assert.True(t, IsStructureError(err, ErrCodeSpaceMismatch))
}

func TestConversionNatToInt(t *testing.T) {
	c := testContext()
	conv, err := NewConversion(poset.NewTypesUniverse(), poset.Nat{}, poset.Int{})
	require.NoError(t, err)

	l, err := SolveR(c, conv, n(-3))
	require.NoError(t, err)
	assert.True(t, l.IsEmpty(), "no natural fits a negative budget")

	l, err = SolveR(c, conv, n(4))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(4)}, l.Maximals())

	u, err := conv.Solve(c, poset.Top)
	require.NoError(t, err)
	assert.True(t, u.IsEmpty(), "Int has no resource for ⊤")
	_, err = conv.Implementations(c, poset.Top, n(5))
	assert.True(t, IsNotFeasible(err))

	u, err = Solve(c, conv, n(2))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(2)}, u.Minimals())
}

func TestConversionSolveRSearchesFiniteSpaces(t *testing.T) {
	c := testContext()
	small, err := poset.NewFinitePoset([]string{"a", "b"}, nil)
	require.NoError(t, err)
	big, err := poset.NewFinitePoset([]string{"a", "b", "top"}, [][2]string{{"a", "top"}, {"b", "top"}})
	require.NoError(t, err)
	conv, err := NewConversion(poset.NewTypesUniverse(), small, big)
	require.NoError(t, err)

	l, err := conv.SolveR(c, "a")
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{"a"}, l.Maximals())

	l, err = conv.SolveR(c, "top")
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{"a", "b"}, l.Maximals())
}

func TestConversionNeedsApproximation(t *testing.T) {
	c := testContext()
	conv, err := NewConversion(poset.NewTypesUniverse(), nat2, poset.NewProduct(poset.Rcomp{}, poset.Rcomp{}))
	require.NoError(t, err)

	l, err := conv.SolveR(c, poset.Tuple{3.0, 2.0})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(3), n(2)}}, l.Maximals())

	_, err = conv.SolveR(c, poset.Tuple{3.0, 2.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNeedsApproximation)
}

func TestCheckInfeasible(t *testing.T) {
	c := testContext()
	s := mustScale(t, 2)

	assert.NoError(t, CheckInfeasible(c, s, n(3), n(5)))

	err := CheckInfeasible(c, s, n(3), n(6))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeasible)
	assert.False(t, IsNotFeasible(err))
}

func TestMux(t *testing.T) {
	c := testContext()
	mux, err := NewMux(nat2, Group(Leaf(1), Leaf(0), Leaf(1)))
	require.NoError(t, err)

	u, err := mux.Solve(c, poset.Tuple{n(1), n(2)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(2), n(1), n(2)}}, u.Minimals())

	l, err := mux.SolveR(c, poset.Tuple{n(5), n(3), n(4)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(3), n(4)}}, l.Maximals())

	drop, err := NewMux(nat2, Group(Leaf(0)))
	require.NoError(t, err)
	l, err = drop.SolveR(c, poset.Tuple{n(5)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(5), poset.Top}}, l.Maximals())

	_, err = NewMux(nat2, Group(Leaf(2)))
	assert.True(t, IsStructureError(err, ErrCodeInvalidValue))

	int2 := poset.NewProduct(poset.Int{}, poset.Int{})
	dup, err := NewMux(int2, Group(Leaf(1), Leaf(0), Leaf(1)))
	require.NoError(t, err)
	l, err = dup.SolveR(c, poset.Tuple{n(-5), n(3), n(-4)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{n(3), n(-5)}}, l.Maximals())

	// An unused Int part has no largest value.
	intDrop, err := NewMux(int2, Group(Leaf(0)))
	require.NoError(t, err)
	_, err = intDrop.SolveR(c, poset.Tuple{n(-5)})
	assert.True(t, poset.IsUnbounded(err))

	nested := poset.NewProduct(nat2, poset.Nat{})
	swap, err := NewMux(nested, Group(Group(Leaf(0, 0), Leaf(1)), Leaf(0, 1)))
	require.NoError(t, err)
	assert.Equal(t, "((Nat×Nat)×Nat)", swap.ResSpace().String())
	u, err = swap.Solve(c, poset.Tuple{poset.Tuple{n(1), n(2)}, n(3)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{poset.Tuple{n(1), n(3)}, n(2)}}, u.Minimals())
	l, err = swap.SolveR(c, poset.Tuple{poset.Tuple{n(4), n(5)}, n(6)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{poset.Tuple{n(4), n(6)}, n(5)}}, l.Maximals())
}

func TestSplitNat(t *testing.T) {
	c := testContext()
	split, err := NewSplitNat(2)
	require.NoError(t, err)

	u, err := Solve(c, split, n(2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		poset.Tuple{n(0), n(2)},
		poset.Tuple{n(1), n(1)},
		poset.Tuple{n(2), n(0)},
	}, u.Minimals())

	u, err = Solve(c, split, poset.Top)
	require.NoError(t, err)
	assert.ElementsMatch(t, []poset.Point{
		poset.Tuple{poset.Top, n(0)},
		poset.Tuple{n(0), poset.Top},
	}, u.Minimals())

	l, err := SolveR(c, split, poset.Tuple{n(2), n(5)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{n(7)}, l.Maximals())
}

func TestExtraChecksRejectForeignPoints(t *testing.T) {
	cat := testCatalogue(t)

	_, err := Solve(testContext(), cat, n(-1))
	require.Error(t, err)
	assert.True(t, poset.IsNotBelong(err))

	_, err = Solve(NewContext(WithExtraChecks(false)), cat, n(3))
	assert.NoError(t, err)
}

func TestNormalFormAgreesWithSolve(t *testing.T) {
	c := testContext()
	series, err := NewSeries(testCatalogue(t), mustScale(t, 2))
	require.NoError(t, err)
	cp, err := NewCoProduct(testCatalogue(t), NewIdentity(poset.Nat{}))
	require.NoError(t, err)
	par := NewParallel(pairCatalogue(t), mustScale(t, 2))

	cases := []struct {
		dp DP
		fs []poset.Point
	}{
		{series, []poset.Point{n(0), n(3), n(5), n(7)}},
		{cp, []poset.Point{n(0), n(3), n(9)}},
		{par, []poset.Point{poset.Tuple{n(4), n(1)}, poset.Tuple{n(1), n(0)}}},
	}
	for _, tc := range cases {
		for _, f := range tc.fs {
			want, err := Solve(c, tc.dp, f)
			require.NoError(t, err)
			got, err := SolveNormalForm(c, tc.dp, f)
			require.NoError(t, err)
			assert.ElementsMatch(t, want.Minimals(), got.Minimals(), "%s at %v", tc.dp, f)
		}
	}
}

func TestContextDefaults(t *testing.T) {
	var nilCtx *Context
	assert.False(t, nilCtx.Checks())
	assert.Equal(t, DefaultMaxIterations, nilCtx.Limit())
	assert.NotNil(t, nilCtx.Log())
	nilCtx.Trace(poset.EmptyUpperSet(poset.Nat{}), 0, "ignored")

	base := NewContext()
	strict := base.With(WithExtraChecks(true), WithMaxIterations(5))
	assert.False(t, base.Checks())
	assert.True(t, strict.Checks())
	assert.Equal(t, 5, strict.Limit())
}

func TestDump(t *testing.T) {
	s, err := NewSeries(NewIdentity(poset.Nat{}), mustScale(t, 2))
	require.NoError(t, err)

	want := "Series Nat → Nat\n" +
		"  Identity(Nat) Nat → Nat\n" +
		"  ScaleNat(2) Nat → Nat\n"
	assert.Equal(t, want, Dump(s))
}
