package harness

import (
	"github.com/afcarl/mcdp/internal/driver"
	"github.com/afcarl/mcdp/internal/poset"
)

// QueryResult is the outcome of one query.
type QueryResult struct {
	Index  int
	Kind   driver.QueryKind
	Status string

	// Query holds the parsed query points: f for solve, r for solve_r and
	// (f, r) for implementations.
	Query []poset.Point

	// Upper is set for solve, Lower for solve_r.
	Upper poset.UpperSet
	Lower poset.LowerSet

	// Witnesses is set for implementations.
	Witnesses []poset.Point

	Trace *driver.Trace
	Err   error
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Queries holds one entry per scenario query, in order.
	Queries []QueryResult

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
