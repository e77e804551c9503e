package testutil

import (
	"io"
	"log/slog"
	"sync"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Context returns a solver context with extra checks on and logs dropped.
func Context(opts ...dp.Option) *dp.Context {
	base := []dp.Option{dp.WithExtraChecks(true), dp.WithLogger(DiscardLogger())}
	return dp.NewContext(append(base, opts...)...)
}

// Step is one Kleene iteration seen by a StepRecorder.
type Step struct {
	Iteration int
	Size      int
	State     string
}

// StepRecorder collects the iterations reported to its Tracer.
//
// Thread-safety: safe for concurrent use.
type StepRecorder struct {
	mu    sync.Mutex
	steps []Step
}

// Tracer returns a dp.Tracer that appends to r.
func (r *StepRecorder) Tracer() dp.Tracer {
	return func(a poset.Antichain, iteration int, _ string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.steps = append(r.steps, Step{Iteration: iteration, Size: a.Len(), State: a.String()})
	}
}

// Steps returns a copy of the recorded iterations.
func (r *StepRecorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Reset drops the recorded iterations.
func (r *StepRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}
