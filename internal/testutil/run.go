package testutil

// DefaultRunID is used by FixedRunID when no ID is configured.
const DefaultRunID = "test-run-default"

// FixedRunID hands out the same run ID for every query, so all traces of a
// scenario render identically across runs. It satisfies
// driver.RunIDGenerator.
//
// Scenario files set it with:
//
//	run_id: "test-run-00000000-0000-0000-0000-000000000001"
type FixedRunID struct {
	id string
}

// NewFixedRunID returns a generator for id, or DefaultRunID if id is empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed ID.
func (g *FixedRunID) Generate() string {
	return g.id
}
