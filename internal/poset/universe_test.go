package poset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseIdentityAndEquality(t *testing.T) {
	u := NewTypesUniverse()
	require.NoError(t, u.CheckEqual(Nat{}, Nat{}))
	require.NoError(t, u.CheckEqual(nat2, NewProduct(Nat{}, Nat{})))

	err := u.CheckEqual(Nat{}, Rcomp{})
	require.Error(t, err)
	assert.True(t, IsNotEqual(err))

	e, err := u.GetEmbedding(Nat{}, Nat{})
	require.NoError(t, err)
	v, err := e.Map(int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestUniverseUnitConversions(t *testing.T) {
	u := NewTypesUniverse()
	km, m := mustUnits("km"), mustUnits("m")

	e, err := u.GetEmbedding(km, m)
	require.NoError(t, err)
	v, err := e.Map(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, v.(float64), 1e-9)

	back, err := e.Inverse(v)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, back.(float64), 1e-9)

	top, err := e.Map(Top)
	require.NoError(t, err)
	assert.True(t, IsTop(top))

	require.Error(t, u.CheckEqual(km, m), "convertible units are not the same space")
	require.NoError(t, u.CheckLeq(km, m))
}

func TestUniverseRejectsDimensionMismatch(t *testing.T) {
	u := NewTypesUniverse()
	_, err := u.GetEmbedding(mustUnits("kg"), mustUnits("m"))
	require.Error(t, err)
	assert.True(t, IsNotLeq(err))
	assert.Contains(t, err.Error(), "dimension")
}

func TestUniverseNatEmbeddings(t *testing.T) {
	u := NewTypesUniverse()

	e, err := u.GetEmbedding(Nat{}, Rcomp{})
	require.NoError(t, err)
	v, err := e.Map(int64(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	_, err = e.Inverse(2.5)
	assert.Error(t, err)

	e, err = u.GetEmbedding(Nat{}, Int{})
	require.NoError(t, err)
	_, err = e.Map(Top)
	assert.Error(t, err)

	assert.Error(t, u.CheckLeq(Rcomp{}, Nat{}))
	assert.Error(t, u.CheckLeq(Nat{}, mustUnits("m")))
}

func TestUniverseProductsAreComponentwise(t *testing.T) {
	u := NewTypesUniverse()
	from := NewProduct(mustUnits("km"), Nat{})
	to := NewProduct(mustUnits("m"), Rcomp{})

	e, err := u.GetEmbedding(from, to)
	require.NoError(t, err)
	v, err := e.Map(Tuple{2.0, int64(1)})
	require.NoError(t, err)
	assert.Equal(t, Tuple{2000.0, 1.0}, v)

	_, err = u.GetEmbedding(from, NewProduct(mustUnits("m")))
	assert.Error(t, err)
	_, err = u.GetEmbedding(from, NewProduct(mustUnits("s"), Rcomp{}))
	assert.Error(t, err)
}

func TestUniverseFiniteSubposet(t *testing.T) {
	u := NewTypesUniverse()
	small, err := NewFinitePoset([]string{"a", "b"}, [][2]string{{"a", "b"}})
	require.NoError(t, err)
	big, err := NewFinitePoset([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	require.NoError(t, err)
	wrong, err := NewFinitePoset([]string{"a", "b", "c"}, [][2]string{{"b", "a"}})
	require.NoError(t, err)

	require.NoError(t, u.CheckLeq(small, big))
	assert.Error(t, u.CheckLeq(big, small))
	assert.Error(t, u.CheckLeq(small, wrong))
}

func TestUniverseRegisteredEmbeddingWins(t *testing.T) {
	u := NewTypesUniverse()
	double := func(x Point) (Point, error) { return 2 * x.(int64), nil }
	half := func(x Point) (Point, error) { return x.(int64) / 2, nil }
	u.Register(Embedding{From: Nat{}, To: Int{}, Map: double, Inverse: half})

	e, err := u.GetEmbedding(Nat{}, Int{})
	require.NoError(t, err)
	v, err := e.Map(int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(8), v)
}

func TestParseUnit(t *testing.T) {
	kwh, err := ParseUnit("kWh")
	require.NoError(t, err)
	j, err := ParseUnit("J")
	require.NoError(t, err)
	assert.Equal(t, kwh.Dim, j.Dim)
	assert.Equal(t, "L^2·T^-2·M", j.Dim.String())

	_, err = ParseUnit("furlong")
	assert.Error(t, err)
	assert.Contains(t, KnownUnits(), "kg")
}
