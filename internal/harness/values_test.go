package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/mcdp/internal/poset"
)

func TestToPoint(t *testing.T) {
	fin, err := poset.NewFinitePoset([]string{"lo", "hi"}, [][2]string{{"lo", "hi"}})
	require.NoError(t, err)
	pair := poset.NewProduct(fin, poset.Nat{})

	tests := []struct {
		name  string
		space poset.Poset
		in    any
		want  poset.Point
	}{
		{"nat", poset.Nat{}, 4, int64(4)},
		{"nat top", poset.Nat{}, "top", poset.Top},
		{"nat top symbol", poset.Nat{}, "⊤", poset.Top},
		{"int negative", poset.Int{}, -3, int64(-3)},
		{"rcomp from int", poset.Rcomp{}, 2, 2.0},
		{"rcomp float", poset.Rcomp{}, 0.5, 0.5},
		{"finite", fin, "hi", "hi"},
		{"product", pair, []any{"lo", 7}, poset.Tuple{"lo", int64(7)}},
		{"product with top", pair, []any{"hi", "top"}, poset.Tuple{"hi", poset.Top}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toPoint(tt.space, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToPointErrors(t *testing.T) {
	fin, err := poset.NewFinitePoset([]string{"lo", "hi"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		space poset.Poset
		in    any
	}{
		{"negative natural", poset.Nat{}, -1},
		{"string for nat", poset.Nat{}, "four"},
		{"float for nat", poset.Nat{}, 1.5},
		{"int has no top", poset.Int{}, "top"},
		{"negative rcomp", poset.Rcomp{}, -0.5},
		{"unknown element", fin, "mid"},
		{"wrong arity", poset.NewProduct(poset.Nat{}, poset.Nat{}), []any{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toPoint(tt.space, tt.in)
			assert.Error(t, err)
		})
	}
}
