package driver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// QueryKind names the operation a Trace records.
type QueryKind string

const (
	KindSolve           QueryKind = "solve"
	KindSolveR          QueryKind = "solve_r"
	KindImplementations QueryKind = "implementations"
)

// IterationRecord is one Kleene iteration observed during a query.
type IterationRecord struct {
	Seq       int64  `json:"seq" yaml:"seq"`
	Iteration int    `json:"iteration" yaml:"iteration"`
	Size      int    `json:"size" yaml:"size"`
	Antichain string `json:"antichain" yaml:"antichain"`
	Text      string `json:"text" yaml:"text"`
}

// Trace records a single query.
type Trace struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Kind       QueryKind         `json:"kind" yaml:"kind"`
	Query      string            `json:"query" yaml:"query"`
	Iterations []IterationRecord `json:"iterations" yaml:"iterations"`
	Result     string            `json:"result,omitempty" yaml:"result,omitempty"`
	Err        string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// String renders the trace one line per record, without sequence numbers,
// for golden comparison.
func (t *Trace) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s %s %s\n", t.RunID, t.Kind, t.Query)
	for _, r := range t.Iterations {
		fmt.Fprintf(&b, "  #%d %s %s\n", r.Iteration, r.Antichain, r.Text)
	}
	if t.Err != "" {
		fmt.Fprintf(&b, "error: %s\n", t.Err)
	} else {
		fmt.Fprintf(&b, "result: %s\n", t.Result)
	}
	return b.String()
}

// recorder appends iteration records to a trace and forwards them to an
// outer tracer.
type recorder struct {
	mu    sync.Mutex
	trace *Trace
	seq   Sequencer
	next  dp.Tracer
}

func (r *recorder) observe(antichain poset.Antichain, iteration int, text string) {
	r.mu.Lock()
	r.trace.Iterations = append(r.trace.Iterations, IterationRecord{
		Seq:       r.seq.Next(),
		Iteration: iteration,
		Size:      antichain.Len(),
		Antichain: antichain.String(),
		Text:      text,
	})
	r.mu.Unlock()
	if r.next != nil {
		r.next(antichain, iteration, text)
	}
}
