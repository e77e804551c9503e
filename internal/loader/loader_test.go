package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/graph"
	"github.com/afcarl/mcdp/internal/poset"
	"github.com/afcarl/mcdp/internal/testutil"
)

func newLoader(opts ...Option) *Loader {
	return New(append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)...)
}

func loadModels(t *testing.T) *Result {
	t.Helper()
	res, errs := newLoader().LoadDir("testdata/models")
	require.Empty(t, errs)
	return res
}

func build(t *testing.T, g *graph.Composite) dp.DP {
	t.Helper()
	d, err := graph.Build(testutil.Context(), g)
	require.NoError(t, err)
	return d
}

func TestLoadDir(t *testing.T) {
	res := loadModels(t)
	assert.Equal(t, 2, res.FileCount)
	assert.Equal(t, []string{"fleet", "motor", "trip"}, res.Names())

	motor, err := res.Model("motor")
	require.NoError(t, err)
	assert.Len(t, motor.Nodes, 2)
	assert.Len(t, motor.Connections, 4)

	_, err = res.Model("ghost")
	assert.True(t, IsLoadError(err, ErrCodeUnknownModel))
}

func TestLoadedModelSolves(t *testing.T) {
	res := loadModels(t)
	c := testutil.Context()

	motor := build(t, res.Models["motor"])
	u, err := motor.Solve(c, int64(4))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{int64(1)}, u.Minimals())
	u, err = motor.Solve(c, int64(8))
	require.NoError(t, err)
	assert.True(t, u.IsEmpty())

	fleet := build(t, res.Models["fleet"])
	u, err = fleet.Solve(c, poset.Tuple{int64(2), int64(5)})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{int64(1), int64(3)}}, u.Minimals())

	trip := build(t, res.Models["trip"])
	u, err = trip.Solve(c, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{2000.0}, u.Minimals())
}

func TestLoadStringSpacesAndPoints(t *testing.T) {
	res, errs := newLoader().LoadString(`
model: pick: {
	resources: [{name: "choice", space: [{elements: ["lo", "hi"], relations: [["lo", "hi"]]}, "Nat"]}]
	nodes: c: {
		dp: {
			type:  "Constant"
			space: [{elements: ["lo", "hi"], relations: [["lo", "hi"]]}, "Nat"]
			value: ["hi", "top"]
		}
		resources: ["out"]
	}
	connections: [{from: "c.out", to: "_.choice"}]
}
`, "pick.cue")
	require.Empty(t, errs)

	d := build(t, res.Models["pick"])
	assert.Equal(t, "({lo,hi}×Nat)", d.ResSpace().String())
	u, err := d.Solve(testutil.Context(), poset.Tuple{})
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{poset.Tuple{"hi", poset.Top}}, u.Minimals())
}

func TestLoadStringErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			name: "no models",
			src:  `other: 1`,
			code: ErrCodeNoModels,
		},
		{
			name: "unknown space",
			src: `model: m: {
				functions: [{name: "f", space: "Real"}]
			}`,
			code: ErrCodeInvalidSpace,
		},
		{
			name: "unknown unit",
			src: `model: m: {
				functions: [{name: "f", space: "Rcomp[furlong]"}]
			}`,
			code: ErrCodeInvalidSpace,
		},
		{
			name: "unknown dp type",
			src: `model: m: {
				nodes: x: dp: type: "Magic"
			}`,
			code: ErrCodeUnknownDP,
		},
		{
			name: "negative natural",
			src: `model: m: {
				nodes: x: {
					dp: {type: "Constant", space: "Nat", value: -1}
					resources: ["out"]
				}
			}`,
			code: ErrCodeInvalidPoint,
		},
		{
			name: "leaf rejects parameters",
			src: `model: m: {
				nodes: x: {
					dp: {type: "ScaleNat", k: -2}
					functions: ["in"]
					resources: ["out"]
				}
			}`,
			code: ErrCodeInvalidDP,
		},
		{
			name: "node without dp",
			src: `model: m: {
				nodes: x: functions: ["in"]
			}`,
			code: ErrCodeInvalidDP,
		},
		{
			name: "malformed endpoint",
			src: `model: m: {
				functions: [{name: "f", space: "Nat"}]
				resources: [{name: "r", space: "Nat"}]
				connections: [{from: "f", to: "_.r"}]
			}`,
			code: ErrCodeInvalidConnection,
		},
		{
			name: "unknown model reference",
			src: `model: m: {
				nodes: x: model: "ghost"
			}`,
			code: ErrCodeUnknownModel,
		},
		{
			name: "models referencing each other",
			src: `
				model: a: nodes: x: model: "b"
				model: b: nodes: y: model: "a"
			`,
			code: ErrCodeModelCycle,
		},
		{
			name: "partially wired graph",
			src: `model: m: {
				functions: [{name: "f", space: "Nat"}]
				resources: [{name: "r", space: "Nat"}]
				nodes: s: {
					dp: {type: "ScaleNat", k: 2}
					functions: ["in"]
					resources: ["out"]
				}
				connections: [{from: "s.out", to: "_.r"}]
			}`,
			code: ErrCodeInvalidGraph,
		},
		{
			name: "cue syntax error",
			src:  `model: m: {`,
			code: ErrCodeBuildFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := newLoader().LoadString(tt.src, "doc.cue")
			require.Len(t, errs, 1)
			assert.True(t, IsLoadError(errs[0], tt.code), "got %v", errs[0])
		})
	}
}

func TestLoadErrorPositionAndCause(t *testing.T) {
	_, errs := newLoader().LoadString(`model: m: {
	functions: [{name: "f", space: "Real"}]
}
`, "doc.cue")
	require.Len(t, errs, 1)
	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	require.True(t, le.Pos.IsValid())
	assert.Equal(t, 2, le.Pos.Line())
	assert.Contains(t, le.Error(), "doc.cue:2:")

	_, errs = newLoader().LoadString(`model: m: {
	functions: [{name: "f", space: "Nat"}]
	resources: [{name: "r", space: "Nat"}]
}
`, "doc.cue")
	require.Len(t, errs, 1)
	assert.True(t, graph.IsWiringError(errs[0]))
}

func TestModelCycleMessage(t *testing.T) {
	_, errs := newLoader().LoadString(`
model: a: nodes: x: model: "b"
model: b: nodes: y: model: "a"
`, "doc.cue")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "a → b → a")
}

func TestCollectAllMode(t *testing.T) {
	src := `
model: bad1: functions: [{name: "f", space: "Real"}]
model: bad2: nodes: x: dp: type: "Magic"
model: good: {
	functions: [{name: "f", space: "Nat"}]
	resources: [{name: "r", space: "Nat"}]
	nodes: s: {
		dp: {type: "Identity", space: "Nat"}
		functions: ["in"]
		resources: ["out"]
	}
	connections: [
		{from: "_.f", to: "s.in"},
		{from: "s.out", to: "_.r"},
	]
}
`
	res, errs := newLoader().LoadString(src, "doc.cue")
	assert.Len(t, errs, 1)
	assert.Empty(t, res.Models)

	res, errs = newLoader(WithMode(LoadModeCollectAll)).LoadString(src, "doc.cue")
	require.Len(t, errs, 2)
	assert.True(t, IsLoadError(errs[0], ErrCodeInvalidSpace))
	assert.True(t, IsLoadError(errs[1], ErrCodeUnknownDP))
	assert.Equal(t, []string{"good"}, res.Names())
}

func TestLoadDirErrors(t *testing.T) {
	_, errs := newLoader().LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Len(t, errs, 1)
	assert.True(t, IsLoadError(errs[0], ErrCodeNotFound))

	_, errs = newLoader().LoadDir(t.TempDir())
	require.Len(t, errs, 1)
	assert.True(t, IsLoadError(errs[0], ErrCodeNoFiles))

	file := filepath.Join(t.TempDir(), "x.cue")
	require.NoError(t, os.WriteFile(file, []byte("package test\n"), 0o644))
	_, errs = newLoader().LoadDir(file)
	require.Len(t, errs, 1)
	assert.True(t, IsLoadError(errs[0], ErrCodeNotFound))
}

func TestLoadDirFromTempFiles(t *testing.T) {
	dir := t.TempDir()
	src := `package test

model: id: {
	functions: [{name: "f", space: "Int"}]
	resources: [{name: "r", space: "Int"}]
	nodes: s: {
		dp: {type: "Identity", space: "Int"}
		functions: ["in"]
		resources: ["out"]
	}
	connections: [
		{from: "_.f", to: "s.in"},
		{from: "s.out", to: "_.r"},
	]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id.cue"), []byte(src), 0o644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	res, errs := newLoader().LoadDir(dir)
	require.Empty(t, errs)
	d := build(t, res.Models["id"])
	l, err := d.SolveR(testutil.Context(), int64(-3))
	require.NoError(t, err)
	assert.Equal(t, []poset.Point{int64(-3)}, l.Maximals())
}
