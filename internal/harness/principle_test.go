package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
	"github.com/afcarl/mcdp/internal/testutil"
)

// shrinking asks for fewer resources as the functionality grows.
type shrinking struct {
	dp.ScaleNat
}

func (shrinking) Solve(_ *dp.Context, f poset.Point) (poset.UpperSet, error) {
	if poset.IsTop(f) {
		return poset.Principal(poset.Nat{}, int64(0)), nil
	}
	return poset.Principal(poset.Nat{}, max(10-f.(int64), 0)), nil
}

func TestCheckMonotoneAcceptsScale(t *testing.T) {
	scale, err := dp.NewScaleNat(3)
	require.NoError(t, err)
	assert.NoError(t, CheckMonotone(testutil.Context(), scale, 6))
}

func TestCheckMonotoneRejectsShrinking(t *testing.T) {
	err := CheckMonotone(dp.NewContext(dp.WithLogger(testutil.DiscardLogger())), shrinking{}, 4)
	require.Error(t, err)

	var me *MonotonicityError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "solve", me.Op)
	assert.Equal(t, "0", me.Lower)
	assert.Equal(t, "1", me.Upper)
	assert.Equal(t, "9", me.Missing)
	assert.Contains(t, err.Error(), "solve is not monotone")
}
