// Package poset provides the order-theoretic primitives used by the solver.
//
// This package contains the partially ordered sets, antichain-backed upper and
// lower sets, and the TypesUniverse that decides which spaces can be embedded
// into one another. All other internal packages import poset; poset imports
// nothing internal.
//
// Key design constraints:
//   - Points are plain Go values (int64, float64, string, Tuple, Tagged,
//     UpperSet, LowerSet or the Top sentinel); a poset never mutates them
//   - Every UpperSet/LowerSet stores an antichain: no two stored points are
//     comparable
//   - Point identity is the canonical key (see Key), never Go equality, so
//     tuples and sets can be deduplicated and sorted deterministically
//   - Posets are immutable once constructed and safe for concurrent reads
package poset
