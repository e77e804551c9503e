// Package graph turns composite design-problem graphs into DPs.
//
// A Composite is an arena of named nodes (leaf DPs or nested composites)
// plus a list of connections. A Connection{DP1, S1, DP2, S2} says that the
// resource S1 of node DP1 is provided by the functionality S2 of node DP2.
// The reserved node name Boundary stands for the composite itself: a
// connection from Boundary feeds an external functionality into a node, a
// connection to Boundary exposes a node resource as an external resource.
//
// Build canonicalizes a graph:
//
//  1. Validate rejects partially wired graphs.
//  2. Flatten inlines nested composites with path-prefixed names.
//  3. Cycles are found with Tarjan's algorithm and enumerated as simple
//     cycles over connections.
//  4. A best-first search picks the cheapest set of connections whose
//     removal breaks every cycle. A connection costs the dimensionality of
//     the space it carries.
//  5. Rewire replaces every cut connection with a new external port pair,
//     and each pair is closed with a loop.Loop2.
//
// The acyclic remainder is solved by Network, which evaluates nodes in
// topological order and keeps only non-dominated assignments.
package graph
