// Package harness runs conformance scenarios against design problems.
//
// A scenario loads a CUE model document, builds one model into a DP
// and answers a list of queries, checking each answer and a set of
// assertions over the recorded Kleene traces.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: motor_system
//	description: "A motor lifting its own mass"
//	models: ../../loader/testdata/models
//	model: motor
//	run_id: test-run-motor
//	options:
//	  max_iterations: 50
//	queries:
//	  - solve: 4
//	    expect:
//	      minimals: [1]
//	  - solve: 8
//	    expect:
//	      empty: true
//	  - solve_r: 3
//	    expect:
//	      maximals: [7]
//	  - implementations: {f: 4, r: 1}
//	    expect:
//	      status: ok
//	assertions:
//	  - type: monotone
//	    queries: [0, 1]
//	  - type: iterations_at_most
//	    query: 0
//	    count: 10
//
// Points are written as numbers, strings (finite poset elements, "top"
// for ⊤) and lists (products).
//
// # Assertion Types
//
//   - monotone: answers of the listed queries are nested as the queries grow
//   - monotone_chain: solve and solve_r are monotone along a test chain
//   - iterations_at_most: a query records at most count Kleene iterations
//   - status: a query ended with the given status
//   - trace_contains: some iteration text of a query contains text
//
// # Deterministic Testing
//
// Scenarios run with a fixed run ID (testutil.FixedRunID) and a
// deterministic clock (testutil.DeterministicClock) so answers can be
// compared against golden files.
package harness
