package poset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nat(n int64) Point { return n }

func pair(a, b Point) Tuple { return Tuple{a, b} }

var nat2 = NewProduct(Nat{}, Nat{})

func TestNatOrder(t *testing.T) {
	var n Nat
	assert.True(t, n.Leq(nat(1), nat(2)))
	assert.False(t, n.Leq(nat(3), nat(2)))
	assert.True(t, n.Leq(nat(7), Top))
	assert.False(t, n.Leq(Top, nat(7)))
	assert.True(t, n.Leq(Top, Top))

	j, err := n.Join(nat(3), nat(5))
	require.NoError(t, err)
	assert.Equal(t, nat(5), j)

	b, err := n.Bottom()
	require.NoError(t, err)
	assert.Equal(t, nat(0), b)

	assert.Error(t, n.Belongs(int64(-1)))
	assert.Error(t, n.Belongs(3))
	assert.NoError(t, n.Belongs(Top))
}

func TestIntIsUnbounded(t *testing.T) {
	_, err := Int{}.Top()
	require.Error(t, err)
	assert.True(t, IsUnbounded(err))

	_, err = Int{}.Bottom()
	assert.True(t, IsUnbounded(err))
}

func TestCheckLeqReturnsTypedError(t *testing.T) {
	err := CheckLeq(Nat{}, nat(4), nat(2))
	require.Error(t, err)
	assert.True(t, IsNotLeq(err))
	assert.Contains(t, err.Error(), "4 ≰ 2")

	assert.NoError(t, CheckLeq(Nat{}, nat(2), nat(4)))
	assert.True(t, IsNotEqual(CheckEqual(Nat{}, nat(2), nat(4))))
}

func TestProductOrderIsComponentwise(t *testing.T) {
	assert.True(t, nat2.Leq(pair(nat(1), nat(2)), pair(nat(1), nat(3))))
	assert.False(t, nat2.Leq(pair(nat(2), nat(1)), pair(nat(1), nat(3))))

	j, err := nat2.Join(pair(nat(2), nat(1)), pair(nat(1), nat(3)))
	require.NoError(t, err)
	assert.Equal(t, pair(nat(2), nat(3)), j)

	assert.Error(t, nat2.Belongs(Tuple{nat(1)}))
	assert.Equal(t, "(Nat×Nat)", nat2.String())
	assert.Equal(t, "⟨1, ⊤⟩", nat2.Format(pair(nat(1), Top)))
}

func TestMinimizeDropsDominatedPoints(t *testing.T) {
	got := Minimize(nat2, []Point{
		pair(nat(1), nat(1)),
		pair(nat(0), nat(2)),
		pair(nat(2), nat(2)),
		pair(nat(1), nat(1)),
		pair(nat(2), nat(0)),
	})
	assert.ElementsMatch(t, []Point{
		pair(nat(0), nat(2)),
		pair(nat(1), nat(1)),
		pair(nat(2), nat(0)),
	}, got)
	assert.NoError(t, CheckAntichain(nat2, got))
}

func TestMaximizeKeepsTopElements(t *testing.T) {
	got := Maximize(nat2, []Point{
		pair(nat(1), nat(1)),
		pair(nat(0), nat(2)),
		pair(nat(0), nat(1)),
	})
	assert.ElementsMatch(t, []Point{pair(nat(1), nat(1)), pair(nat(0), nat(2))}, got)
}

func TestMinimizeKeepsOneRepresentativeOfEquivalentPoints(t *testing.T) {
	// A preorder-like space where two distinct keys are order-equivalent.
	fp, err := NewFinitePoset([]string{"a", "b"}, nil)
	require.NoError(t, err)
	got := Minimize(fp, []Point{"b", "a", "b"})
	assert.Equal(t, []Point{"a", "b"}, got)

	got = Minimize(Rcomp{}, []Point{2.0, 1.0, 1.0, 3.0})
	assert.Equal(t, []Point{1.0}, got)
}

func TestCheckAntichainDetectsComparablePoints(t *testing.T) {
	err := CheckAntichain(Nat{}, []Point{nat(1), nat(2)})
	require.Error(t, err)
	var ae *AntichainError
	assert.ErrorAs(t, err, &ae)
}

func TestUpperSetsOrder(t *testing.T) {
	us := UpperSets{P: nat2}
	a := UpperSetFrom(nat2, []Point{pair(nat(0), nat(2)), pair(nat(2), nat(0))})
	b := UpperSetFrom(nat2, []Point{pair(nat(1), nat(2)), pair(nat(3), nat(3))})

	// every minimal of b is dominated by a minimal of a
	assert.True(t, us.Leq(a, b))
	assert.False(t, us.Leq(b, a))
	assert.True(t, us.Leq(a, a))

	bottom, err := us.Bottom()
	require.NoError(t, err)
	assert.True(t, us.Leq(bottom, a))

	top, err := us.Top()
	require.NoError(t, err)
	assert.True(t, us.Leq(a, top))
	assert.False(t, us.Leq(top, a))
}

func TestUpperSetsJoinIsIntersection(t *testing.T) {
	us := UpperSets{P: nat2}
	a := UpperSetFrom(nat2, []Point{pair(nat(0), nat(2)), pair(nat(2), nat(0))})
	b := Principal(nat2, pair(nat(1), nat(1)))

	j, err := us.Join(a, b)
	require.NoError(t, err)
	ju := j.(UpperSet)
	assert.ElementsMatch(t, []Point{pair(nat(1), nat(2)), pair(nat(2), nat(1))}, ju.Minimals())
	assert.True(t, us.Leq(a, ju))
	assert.True(t, us.Leq(b, ju))
}

func TestLowerSetsOrderIsDual(t *testing.T) {
	ls := LowerSets{P: Nat{}}
	small := PrincipalLower(Nat{}, nat(2))
	big := PrincipalLower(Nat{}, nat(5))

	// the bigger lower set sits lower in the reverse-inclusion order
	assert.True(t, ls.Leq(big, small))
	assert.False(t, ls.Leq(small, big))

	bottom, err := ls.Bottom()
	require.NoError(t, err)
	assert.True(t, ls.Leq(bottom, big))
}

func TestUpperSetContains(t *testing.T) {
	u := UpperSetFrom(nat2, []Point{pair(nat(0), nat(2)), pair(nat(2), nat(0))})
	assert.True(t, u.Contains(pair(nat(3), nat(0))))
	assert.True(t, u.Contains(pair(nat(0), Top)))
	assert.False(t, u.Contains(pair(nat(1), nat(1))))
	assert.Equal(t, "↑{⟨0, 2⟩, ⟨2, 0⟩}", u.String())
}

func TestProjectAndProductUpper(t *testing.T) {
	u := UpperSetFrom(nat2, []Point{pair(nat(0), nat(2)), pair(nat(2), nat(0))})
	p0, err := ProjectUpper(u, 0)
	require.NoError(t, err)
	assert.Equal(t, []Point{nat(0)}, p0.Minimals())

	_, err = ProjectUpper(Principal(Nat{}, nat(1)), 0)
	assert.Error(t, err)

	prod := ProductUpper(UpperSetFrom(Nat{}, []Point{nat(2)}), UpperSetFrom(Nat{}, []Point{nat(3)}))
	assert.Equal(t, []Point{pair(nat(2), nat(3))}, prod.Minimals())
	assert.NoError(t, prod.Check())
}

func TestCartesianOfNothingIsTheEmptyTuple(t *testing.T) {
	assert.Equal(t, []Point{Tuple{}}, Cartesian(nil))
	assert.Empty(t, Cartesian([][]Point{{nat(1)}, {}}))
}

func TestChainsAreIncreasing(t *testing.T) {
	fp, err := NewFinitePoset([]string{"low", "mid", "high", "side"},
		[][2]string{{"low", "mid"}, {"mid", "high"}, {"low", "side"}})
	require.NoError(t, err)

	spaces := []Poset{
		Nat{}, Int{}, Rcomp{}, mustUnits("kg"), fp, nat2, One,
		UpperSets{P: Nat{}}, LowerSets{P: Nat{}},
	}
	for _, p := range spaces {
		t.Run(p.String(), func(t *testing.T) {
			chain := p.Chain(5)
			require.NotEmpty(t, chain)
			for i := range chain {
				require.NoError(t, p.Belongs(chain[i]))
				if i > 0 {
					assert.True(t, p.Leq(chain[i-1], chain[i]), "chain[%d] ≤ chain[%d]", i-1, i)
				}
			}
		})
	}
}

func TestFinitePosetJoinMeetAndBounds(t *testing.T) {
	fp, err := NewFinitePoset([]string{"bot", "a", "b", "top"},
		[][2]string{{"bot", "a"}, {"bot", "b"}, {"a", "top"}, {"b", "top"}})
	require.NoError(t, err)

	j, err := fp.Join("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "top", j)

	m, err := fp.Meet("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "bot", m)

	top, err := fp.Top()
	require.NoError(t, err)
	assert.Equal(t, "top", top)

	flat, err := NewFinitePoset([]string{"x", "y"}, nil)
	require.NoError(t, err)
	_, err = flat.Join("x", "y")
	assert.True(t, IsNotJoinable(err))
	_, err = flat.Top()
	assert.True(t, IsUnbounded(err))
}

func TestFinitePosetRejectsCycles(t *testing.T) {
	_, err := NewFinitePoset([]string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	assert.Error(t, err)

	_, err = NewFinitePoset([]string{"a"}, [][2]string{{"a", "zzz"}})
	assert.Error(t, err)
}

func TestKeyIsCanonical(t *testing.T) {
	assert.Equal(t, "3", Key(int64(3)))
	assert.Equal(t, "3.0", Key(3.0))
	assert.Equal(t, "2.5", Key(2.5))
	assert.Equal(t, `{"top":true}`, Key(Top))
	assert.Equal(t, `[1,"a<b"]`, Key(Tuple{int64(1), "a<b"}))
	assert.Equal(t, `{"branch":1,"value":"x"}`, Key(Tagged{Branch: 1, Value: "x"}))

	// NFC: precomposed and decomposed é share a key
	assert.Equal(t, Key("caf\u00e9"), Key("cafe\u0301"))

	a := NewUpperSet(Nat{}, []Point{int64(2), int64(1)})
	b := NewUpperSet(Nat{}, []Point{int64(1), int64(2)})
	assert.Equal(t, Key(a), Key(b))
	assert.NotEqual(t, Key(a), Key(NewLowerSet(Nat{}, []Point{int64(1), int64(2)})))
}

func TestDimensionality(t *testing.T) {
	assert.Equal(t, 1, Dimensionality(Nat{}))
	assert.Equal(t, 2, Dimensionality(nat2))
	assert.Equal(t, 3, Dimensionality(NewProduct(nat2, Rcomp{})))
	assert.Equal(t, 0, Dimensionality(One))
}

func mustUnits(symbol string) RcompUnits {
	r, err := NewRcompUnits(symbol)
	if err != nil {
		panic(err)
	}
	return r
}
