// Package driver runs queries against a design problem and records what
// happened.
//
// A Driver wraps a dp.DP (usually the output of graph.Build) and exposes
// Solve, SolveR and Implementations. Every query gets a run ID and a Trace
// holding one IterationRecord per Kleene iteration, so reporting layers can
// render progress without reaching into the solver. SolveAll answers
// independent queries in parallel.
//
// Queries are counted and timed with Prometheus metrics registered on a
// caller-supplied registerer, and wrapped in OpenTelemetry spans.
package driver
