package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/afcarl/mcdp/internal/driver"
)

// Snapshot renders the answers of a scenario, one line per query. Kleene
// iteration details are left out so the snapshot only changes when an
// answer does.
func Snapshot(name string, result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s\n", name)
	for _, qr := range result.Queries {
		query := ""
		if qr.Trace != nil {
			query = qr.Trace.Query
		}
		fmt.Fprintf(&b, "#%d %s %s: %s", qr.Index, qr.Kind, query, qr.Status)
		if qr.Status == driver.StatusOK && qr.Kind != driver.KindImplementations {
			fmt.Fprintf(&b, " %s", qr.Trace.Result)
		}
		b.WriteString("\n")
	}
	if result.Pass {
		b.WriteString("pass\n")
	} else {
		fmt.Fprintf(&b, "fail: %d errors\n", len(result.Errors))
	}
	return b.String()
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()
	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the snapshot of an existing result with its golden
// file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(Snapshot(name, result)))
}
