package dp

import (
	"log/slog"

	"github.com/afcarl/mcdp/internal/poset"
)

// DefaultMaxIterations bounds every Kleene iteration. Reaching it is a hard
// error, never a truncated answer.
const DefaultMaxIterations = 100000

// Tracer is invoked once per Kleene iteration with the current antichain,
// the iteration index and a log line.
type Tracer func(antichain poset.Antichain, iteration int, text string)

// Context carries per-call solver configuration.
//
// A nil *Context is valid and behaves like NewContext().
type Context struct {
	// ExtraChecks enables antichain and membership checks on every result.
	ExtraChecks bool

	// Logger receives structured solver logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer, if set, observes Kleene iterations.
	Tracer Tracer

	// MaxIterations caps Kleene iterations (default DefaultMaxIterations).
	MaxIterations int
}

// Option configures a Context.
type Option func(*Context)

// WithExtraChecks toggles invariant checks for calls made with the context.
func WithExtraChecks(enabled bool) Option {
	return func(c *Context) {
		c.ExtraChecks = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.Logger = l
	}
}

// WithTracer sets the Kleene iteration observer.
func WithTracer(t Tracer) Option {
	return func(c *Context) {
		c.Tracer = t
	}
}

// WithMaxIterations sets the Kleene iteration cap.
//
// Use WithMaxIterations(5) in tests that exercise the cap.
func WithMaxIterations(n int) Option {
	return func(c *Context) {
		c.MaxIterations = n
	}
}

// NewContext returns a Context with defaults applied.
func NewContext(opts ...Option) *Context {
	c := &Context{MaxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with more options applied.
func (c *Context) With(opts ...Option) *Context {
	cp := NewContext()
	if c != nil {
		*cp = *c
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

// Log returns the logger, never nil.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Checks reports whether extra checks are enabled.
func (c *Context) Checks() bool {
	return c != nil && c.ExtraChecks
}

// Limit returns the iteration cap.
func (c *Context) Limit() int {
	if c == nil || c.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// Trace forwards an iteration to the tracer, if any.
func (c *Context) Trace(antichain poset.Antichain, iteration int, text string) {
	if c == nil || c.Tracer == nil {
		return
	}
	c.Tracer(antichain, iteration, text)
}
