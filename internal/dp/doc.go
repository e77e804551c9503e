// Package dp defines the design-problem contract and its combinators.
//
// A design problem (DP) is an immutable monotone relation between a
// functionality space F and a resource space R, witnessed by an
// implementation space M. The relation is never stored extensionally: it is
// queried through Solve (minimal resources for a functionality), SolveR
// (maximal functionality for a resource budget), Evaluate and
// Implementations.
//
// Leaves (Identity, Constant, Limit, Catalogue, SumNat, ScaleNat,
// Conversion, Mux) implement the contract directly. Series, Parallel,
// ParallelN and CoProduct compose DPs without knowing their kind.
//
// Every call takes a *Context. The Context is the only place configuration
// lives: extra invariant checks, logger, Kleene tracer and iteration cap are
// all per-call values, never package state.
package dp
