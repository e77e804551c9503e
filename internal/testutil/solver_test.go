package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

func TestFixedRunID(t *testing.T) {
	g := NewFixedRunID("run-7")
	assert.Equal(t, "run-7", g.Generate())
	assert.Equal(t, "run-7", g.Generate())

	assert.Equal(t, DefaultRunID, NewFixedRunID("").Generate())
}

func TestContextDefaults(t *testing.T) {
	c := Context(dp.WithMaxIterations(5))
	assert.True(t, c.Checks())
	assert.Equal(t, 5, c.Limit())
	assert.NotNil(t, c.Log())
}

func TestStepRecorder(t *testing.T) {
	var rec StepRecorder
	c := Context(dp.WithTracer(rec.Tracer()))

	c.Trace(poset.Principal(poset.Nat{}, int64(3)), 0, "first")
	c.Trace(poset.NewUpperSet(poset.Nat{}, nil), 1, "second")

	steps := rec.Steps()
	assert.Equal(t, []Step{
		{Iteration: 0, Size: 1, State: poset.Principal(poset.Nat{}, int64(3)).String()},
		{Iteration: 1, Size: 0, State: poset.EmptyUpperSet(poset.Nat{}).String()},
	}, steps)

	rec.Reset()
	assert.Empty(t, rec.Steps())
}
