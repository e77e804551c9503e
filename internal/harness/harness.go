package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/driver"
	"github.com/afcarl/mcdp/internal/graph"
	"github.com/afcarl/mcdp/internal/loader"
	"github.com/afcarl/mcdp/internal/poset"
	"github.com/afcarl/mcdp/internal/testutil"
)

// Run loads the scenario's model, answers its queries and evaluates its
// assertions.
//
// Loading or building failures are returned as errors. Failed expectations
// and assertions are recorded in the Result.
func Run(scenario *Scenario) (*Result, error) {
	d, err := Build(scenario)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	result := NewResult()
	for i, q := range scenario.Queries {
		qr, err := answer(ctx, d, i, q)
		if err != nil {
			return nil, fmt.Errorf("queries[%d]: %w", i, err)
		}
		result.Queries = append(result.Queries, qr)
		for _, msg := range checkExpect(d.DP(), qr, q.Expect) {
			result.AddError(fmt.Sprintf("queries[%d]: %s", i, msg))
		}
	}
	for _, msg := range EvaluateAssertions(d.DP(), result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// Build loads and compiles the scenario's model into a deterministic
// driver.
func Build(scenario *Scenario) (*driver.Driver, error) {
	res, errs := loader.New(loader.WithLogger(testutil.DiscardLogger())).LoadDir(scenario.Models)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load models: %w", errors.Join(errs...))
	}
	g, err := res.Model(scenario.Model)
	if err != nil {
		return nil, err
	}

	solverOpts := []dp.Option{dp.WithExtraChecks(true)}
	if scenario.Options.MaxIterations > 0 {
		solverOpts = append(solverOpts, dp.WithMaxIterations(scenario.Options.MaxIterations))
	}
	opts := []driver.Option{
		driver.WithIDGenerator(testutil.NewFixedRunID(scenario.RunID)),
		driver.WithClock(testutil.NewDeterministicClock()),
		driver.WithLogger(testutil.DiscardLogger()),
		driver.WithSolverOptions(solverOpts...),
	}
	if scenario.Options.MaxCutStates > 0 {
		opts = append(opts, driver.WithGraphOptions(graph.WithMaxCutStates(scenario.Options.MaxCutStates)))
	}
	d, err := driver.Build(context.Background(), g, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build model %s: %w", scenario.Model, err)
	}
	return d, nil
}

// answer runs one query. Solver failures are part of the QueryResult; only
// unparseable query points are errors.
func answer(ctx context.Context, d *driver.Driver, index int, q Query) (QueryResult, error) {
	qr := QueryResult{Index: index}
	fun, res := d.DP().FunSpace(), d.DP().ResSpace()
	switch q.Kind() {
	case "solve":
		f, err := toPoint(fun, q.Solve)
		if err != nil {
			return qr, err
		}
		qr.Kind, qr.Query = driver.KindSolve, []poset.Point{f}
		qr.Upper, qr.Trace, qr.Err = d.Solve(ctx, f)
	case "solve_r":
		r, err := toPoint(res, q.SolveR)
		if err != nil {
			return qr, err
		}
		qr.Kind, qr.Query = driver.KindSolveR, []poset.Point{r}
		qr.Lower, qr.Trace, qr.Err = d.SolveR(ctx, r)
	case "implementations":
		f, err := toPoint(fun, q.Implementations.F)
		if err != nil {
			return qr, err
		}
		r, err := toPoint(res, q.Implementations.R)
		if err != nil {
			return qr, err
		}
		qr.Kind, qr.Query = driver.KindImplementations, []poset.Point{f, r}
		qr.Witnesses, qr.Trace, qr.Err = d.Implementations(ctx, f, r)
	}
	qr.Status = driver.Status(qr.Err)
	return qr, nil
}

// checkExpect compares an answer with its expectation.
func checkExpect(d dp.DP, qr QueryResult, exp *Expect) []string {
	want := driver.StatusOK
	if exp != nil && exp.Status != "" {
		want = exp.Status
	}
	if qr.Status != want {
		msg := fmt.Sprintf("expected status %s, got %s", want, qr.Status)
		if qr.Err != nil {
			msg += ": " + qr.Err.Error()
		}
		return []string{msg}
	}
	if qr.Kind == driver.KindImplementations && qr.Status == driver.StatusInfeasible {
		// An infeasible answer must agree with Solve.
		if err := dp.CheckInfeasible(testutil.Context(), d, qr.Query[0], qr.Query[1]); err != nil {
			return []string{err.Error()}
		}
	}
	if exp == nil || qr.Status != driver.StatusOK {
		return nil
	}

	var errs []string
	switch qr.Kind {
	case driver.KindSolve:
		if exp.Empty && !qr.Upper.IsEmpty() {
			errs = append(errs, fmt.Sprintf("expected empty answer, got %s", qr.Upper))
		}
		if len(exp.Minimals) > 0 {
			errs = append(errs, sameAntichain(d.ResSpace(), exp.Minimals, qr.Upper.Minimals(), qr.Upper.String())...)
		}
	case driver.KindSolveR:
		if exp.Empty && !qr.Lower.IsEmpty() {
			errs = append(errs, fmt.Sprintf("expected empty answer, got %s", qr.Lower))
		}
		if len(exp.Maximals) > 0 {
			errs = append(errs, sameAntichain(d.FunSpace(), exp.Maximals, qr.Lower.Maximals(), qr.Lower.String())...)
		}
	case driver.KindImplementations:
		if exp.Empty && len(qr.Witnesses) > 0 {
			errs = append(errs, fmt.Sprintf("expected no implementations, got %d", len(qr.Witnesses)))
		}
	}
	return errs
}

func sameAntichain(p poset.Poset, want []any, got []poset.Point, rendered string) []string {
	expected, err := toPoints(p, want)
	if err != nil {
		return []string{fmt.Sprintf("bad expectation: %v", err)}
	}
	poset.SortByKey(expected)
	actual := slices.Clone(got)
	poset.SortByKey(actual)
	same := slices.EqualFunc(expected, actual, func(a, b poset.Point) bool {
		return poset.Equal(p, a, b)
	})
	if same {
		return nil
	}
	names := make([]string, len(expected))
	for i, x := range expected {
		names[i] = p.Format(x)
	}
	return []string{fmt.Sprintf("expected {%s}, got %s", strings.Join(names, ", "), rendered)}
}
