// Package loop closes feedback channels of design problems.
//
// Loop2 wraps an inner DP with functionality (F1, F2) and resources
// (R1, R2) where F2 and R2 are the same space: the resource r2 produced by
// the inner DP is fed back as its functionality f2. Loop0 is the special
// case where the whole inner resource is fed back and also visible.
//
// Solve finds the least self-consistent resources by Kleene iteration from
// the bottom of the feedback space. Each step joins every current minimal
// point with the inner answers at its feedback value, so the state only
// moves up; the iteration stops when the state no longer changes. SolveR
// runs the dual iteration downward from the top of the feedback space.
// Reaching the iteration cap is an *dp.IterationLimitError, never a
// truncated answer.
//
// Fixed points are memoized per external functionality. The cache is safe
// for concurrent use and can be dropped at any time.
package loop
