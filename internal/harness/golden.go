package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qparam/internal/ir"
)

// Snapshot captures every case outcome of a scenario run.
// It is serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string        `json:"scenario_name"`
	QueryID      string        `json:"query_id,omitempty"`
	Cases        []CaseOutcome `json:"cases"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Empty fields are omitted since canonical JSON has no null.
func (s *Snapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{"name": c.Name}
		if c.Error != "" {
			m["error"] = c.Error
			cases[i] = m
			continue
		}
		if c.Expression != "" {
			m["expression"] = c.Expression
		}
		if len(c.Params) > 0 {
			m["params"] = c.Params
		}
		m["sql"] = c.SQL
		if len(c.Args) > 0 {
			m["args"] = c.Args
		}
		m["rows"] = c.RowCount
		ids := make([]any, len(c.RowIDs))
		for j, id := range c.RowIDs {
			ids[j] = id
		}
		m["row_ids"] = ids
		cases[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
	if s.QueryID != "" {
		result["query_id"] = s.QueryID
	}
	return result
}

// MarshalSnapshot renders the snapshot of a result as canonical JSON.
func MarshalSnapshot(scenarioName, queryID string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		QueryID:      queryID,
		Cases:        result.Cases,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Test failure (via
// goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := assertGolden(t, scenario.Name, scenario.QueryID, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()
	return assertGolden(t, scenarioName, "", result)
}

func assertGolden(t *testing.T, name, queryID string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, queryID, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
