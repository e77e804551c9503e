package harness

import (
	"fmt"
	"strings"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/driver"
	"github.com/afcarl/mcdp/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    *driver.Trace // trace of the query involved, if any
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Trace != nil {
		fmt.Fprintf(&buf, "\nTrace:\n%s", e.Trace)
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(d dp.DP, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(d, result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(d dp.DP, result *Result, a Assertion) error {
	switch a.Type {
	case AssertMonotone:
		return assertMonotone(d, result, a)
	case AssertMonotoneChain:
		return CheckMonotone(testutil.Context(), d, a.Count)
	case AssertIterationsAtMost:
		return assertIterationsAtMost(result.Queries[a.Query], a)
	case AssertStatus:
		qr := result.Queries[a.Query]
		if qr.Status != a.Status {
			return &AssertionError{Type: a.Type, Expected: a.Status, Actual: qr.Status, Trace: qr.Trace}
		}
		return nil
	case AssertTraceContains:
		return assertTraceContains(result.Queries[a.Query], a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertMonotone checks that along the listed queries a larger query never
// gets a larger answer: for solve, f ≤ f' implies h(f') ⊆ h(f); for
// solve_r, r ≤ r' implies h'(r) ⊆ h'(r'). Incomparable pairs are skipped.
func assertMonotone(d dp.DP, result *Result, a Assertion) error {
	first := result.Queries[a.Queries[0]]
	for _, idx := range a.Queries {
		qr := result.Queries[idx]
		if qr.Kind != first.Kind || qr.Kind == driver.KindImplementations {
			return &AssertionError{Type: a.Type, Expected: "solve or solve_r queries of one kind", Actual: fmt.Sprintf("query %d is %s", idx, qr.Kind)}
		}
		if qr.Status != driver.StatusOK {
			return &AssertionError{Type: a.Type, Expected: "answered queries", Actual: fmt.Sprintf("query %d: %s", idx, qr.Status), Trace: qr.Trace}
		}
	}

	for _, i := range a.Queries {
		for _, j := range a.Queries {
			qi, qj := result.Queries[i], result.Queries[j]
			if i == j {
				continue
			}
			switch qi.Kind {
			case driver.KindSolve:
				if !d.FunSpace().Leq(qi.Query[0], qj.Query[0]) {
					continue
				}
				for _, r := range qj.Upper.Minimals() {
					if !qi.Upper.Contains(r) {
						return &AssertionError{
							Type:     a.Type,
							Expected: fmt.Sprintf("answer of query %d within answer of query %d", j, i),
							Actual:   fmt.Sprintf("%s not in %s", d.ResSpace().Format(r), qi.Upper),
						}
					}
				}
			case driver.KindSolveR:
				if !d.ResSpace().Leq(qi.Query[0], qj.Query[0]) {
					continue
				}
				for _, f := range qi.Lower.Maximals() {
					if !qj.Lower.Contains(f) {
						return &AssertionError{
							Type:     a.Type,
							Expected: fmt.Sprintf("answer of query %d within answer of query %d", i, j),
							Actual:   fmt.Sprintf("%s not in %s", d.FunSpace().Format(f), qj.Lower),
						}
					}
				}
			}
		}
	}
	return nil
}

func assertIterationsAtMost(qr QueryResult, a Assertion) error {
	n := 0
	if qr.Trace != nil {
		n = len(qr.Trace.Iterations)
	}
	if n > a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("at most %d iterations", a.Count),
			Actual:   fmt.Sprintf("%d iterations", n),
			Trace:    qr.Trace,
		}
	}
	return nil
}

func assertTraceContains(qr QueryResult, a Assertion) error {
	if qr.Trace != nil {
		for _, rec := range qr.Trace.Iterations {
			if strings.Contains(rec.Text, a.Text) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("an iteration mentioning %q", a.Text),
		Actual:   "not found in trace",
		Trace:    qr.Trace,
	}
}
