package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/keepline/internal/ir"
)

// Snapshot renders a result as canonical JSON: the scenario name, the final
// partition with IDs, and the per-step trace. The partition hash is left
// out; the final segments already pin it down.
func Snapshot(name string, result *Result) ([]byte, error) {
	final := make([]any, len(result.Final))
	for i, s := range result.Final {
		final[i] = map[string]any{
			"id":       s.ID,
			"start":    s.Start,
			"end":      s.End,
			"included": s.Included,
		}
	}

	trace := make([]any, len(result.Trace))
	for i, step := range result.Trace {
		trace[i] = map[string]any{
			"index":     step.Index,
			"op":        step.Op,
			"revision":  step.Revision,
			"segments":  step.Segments,
			"included":  step.Included,
			"recording": step.Recording,
		}
	}

	return ir.MarshalCanonical(map[string]any{
		"name":  name,
		"final": final,
		"trace": trace,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot be executed. A snapshot mismatch
// fails t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	body, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, body)
	return nil
}
