package driver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/graph"
	"github.com/afcarl/mcdp/internal/poset"
)

var tracer = otel.Tracer("github.com/afcarl/mcdp/internal/driver")

// Query outcomes, used as the status label of metrics and spans.
const (
	StatusOK             = "ok"
	StatusInfeasible     = "infeasible"
	StatusIterationLimit = "iteration_limit"
	StatusError          = "error"
)

// DefaultConcurrency bounds the goroutines SolveAll runs at once.
const DefaultConcurrency = 4

// Driver answers queries against one DP.
//
// Thread-safety: all query methods are safe for concurrent use. Loop caches
// inside the DP are lock-guarded.
type Driver struct {
	dp          dp.DP
	solverOpts  []dp.Option
	graphOpts   []graph.Option
	ids         RunIDGenerator
	clock       Sequencer
	registry    prometheus.Registerer
	metrics     *Metrics
	logger      *slog.Logger
	concurrency int
}

// Option configures a Driver.
type Option func(*Driver)

// WithRegistry registers the driver metrics on reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(d *Driver) {
		d.registry = reg
	}
}

// WithIDGenerator sets the run ID generator (default UUIDv7Generator).
func WithIDGenerator(g RunIDGenerator) Option {
	return func(d *Driver) {
		d.ids = g
	}
}

// WithClock sets the sequencer that stamps iteration records.
func WithClock(s Sequencer) Option {
	return func(d *Driver) {
		d.clock = s
	}
}

// WithLogger sets the logger for the driver and the solver.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithSolverOptions configures the dp.Context of every query.
func WithSolverOptions(opts ...dp.Option) Option {
	return func(d *Driver) {
		d.solverOpts = append(d.solverOpts, opts...)
	}
}

// WithGraphOptions configures canonicalization in Build.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(d *Driver) {
		d.graphOpts = append(d.graphOpts, opts...)
	}
}

// WithConcurrency bounds the parallelism of SolveAll.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		d.concurrency = n
	}
}

func newDriver(opts []Option) *Driver {
	d := &Driver{
		ids:         UUIDv7Generator{},
		clock:       NewClock(),
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.metrics = NewMetrics(d.registry)
	return d
}

// New creates a Driver for d.
func New(d dp.DP, opts ...Option) *Driver {
	drv := newDriver(opts)
	drv.dp = d
	return drv
}

// Build compiles g with graph.Build and returns a Driver for the result.
func Build(ctx context.Context, g *graph.Composite, opts ...Option) (*Driver, error) {
	drv := newDriver(opts)
	_, span := tracer.Start(ctx, "driver.Build", trace.WithAttributes(
		attribute.Int("graph.nodes", len(g.Nodes)),
		attribute.Int("graph.connections", len(g.Connections)),
	))
	defer span.End()

	d, err := graph.Build(drv.context(), g, drv.graphOpts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, fmt.Errorf("build: %w", err)
	}
	drv.dp = d
	return drv, nil
}

// DP returns the design problem the driver queries.
func (d *Driver) DP() dp.DP { return d.dp }

// Metrics returns the driver's collectors.
func (d *Driver) Metrics() *Metrics { return d.metrics }

func (d *Driver) context(extra ...dp.Option) *dp.Context {
	opts := append([]dp.Option{dp.WithLogger(d.logger)}, d.solverOpts...)
	return dp.NewContext(append(opts, extra...)...)
}

// Solve returns the minimal resources for f and the trace of the query.
func (d *Driver) Solve(ctx context.Context, f poset.Point) (poset.UpperSet, *Trace, error) {
	var out poset.UpperSet
	tr, err := d.run(ctx, KindSolve, d.dp.FunSpace().Format(f), func(c *dp.Context) (string, int, error) {
		u, err := dp.Solve(c, d.dp, f)
		if err != nil {
			return "", 0, err
		}
		out = u
		return u.String(), u.Len(), nil
	})
	return out, tr, err
}

// SolveR returns the maximal functionality within r and the trace.
func (d *Driver) SolveR(ctx context.Context, r poset.Point) (poset.LowerSet, *Trace, error) {
	var out poset.LowerSet
	tr, err := d.run(ctx, KindSolveR, d.dp.ResSpace().Format(r), func(c *dp.Context) (string, int, error) {
		l, err := dp.SolveR(c, d.dp, r)
		if err != nil {
			return "", 0, err
		}
		out = l
		return l.String(), l.Len(), nil
	})
	return out, tr, err
}

// Implementations returns the witnesses providing f within r and the
// trace. Infeasibility is reported as an error wrapping dp.ErrNotFeasible.
func (d *Driver) Implementations(ctx context.Context, f, r poset.Point) ([]poset.Point, *Trace, error) {
	var out []poset.Point
	query := fmt.Sprintf("%s / %s", d.dp.FunSpace().Format(f), d.dp.ResSpace().Format(r))
	tr, err := d.run(ctx, KindImplementations, query, func(c *dp.Context) (string, int, error) {
		ms, err := d.dp.Implementations(c, f, r)
		if err != nil {
			return "", 0, err
		}
		out = ms
		return fmt.Sprintf("%d implementations", len(ms)), len(ms), nil
	})
	return out, tr, err
}

// run executes one query inside a span, records its Kleene iterations and
// updates the metrics.
func (d *Driver) run(ctx context.Context, kind QueryKind, query string, fn func(c *dp.Context) (string, int, error)) (*Trace, error) {
	tr := &Trace{RunID: d.ids.Generate(), Kind: kind, Query: query}
	if err := ctx.Err(); err != nil {
		tr.Err = err.Error()
		return tr, err
	}
	_, span := tracer.Start(ctx, "driver."+string(kind), trace.WithAttributes(
		attribute.String("mcdp.run_id", tr.RunID),
		attribute.String("mcdp.query", query),
	))
	defer span.End()

	base := d.context()
	rec := &recorder{trace: tr, seq: d.clock, next: base.Tracer}
	c := base.With(dp.WithTracer(rec.observe))
	log := d.logger.With("run_id", tr.RunID, "kind", string(kind))
	log.Debug("query started", "query", query)

	start := time.Now()
	result, size, err := fn(c)
	elapsed := time.Since(start)

	status := Status(err)
	d.metrics.observe(kind, status, elapsed, len(tr.Iterations), size)
	span.SetAttributes(
		attribute.String("mcdp.status", status),
		attribute.Int("mcdp.iterations", len(tr.Iterations)),
	)
	if err != nil {
		tr.Err = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		log.Warn("query failed", "status", status, "err", err)
		return tr, err
	}
	tr.Result = result
	span.SetAttributes(attribute.Int("mcdp.result_size", size))
	log.Info("query finished", "iterations", len(tr.Iterations), "size", size, "elapsed", elapsed)
	return tr, nil
}

// Status classifies the outcome of a query: "ok", "infeasible",
// "iteration_limit" or "error".
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case dp.IsNotFeasible(err):
		return StatusInfeasible
	case dp.IsIterationLimit(err):
		return StatusIterationLimit
	default:
		return StatusError
	}
}
