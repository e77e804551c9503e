package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/afcarl/mcdp/internal/poset"
)

// Result is the answer to one query of SolveAll.
type Result struct {
	Query     poset.Point
	Resources poset.UpperSet
	Trace     *Trace
}

// SolveAll solves every query, at most WithConcurrency at a time. Results
// are in query order. The first error cancels the queries not yet started
// and is returned.
func (d *Driver) SolveAll(ctx context.Context, queries []poset.Point) ([]Result, error) {
	results := make([]Result, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, f := range queries {
		g.Go(func() error {
			u, tr, err := d.Solve(ctx, f)
			results[i] = Result{Query: f, Resources: u, Trace: tr}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
