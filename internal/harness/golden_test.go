package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_ConfigScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/config_alias.yaml")
	require.NoError(t, err)

	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden_ConfigScenario -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_Minimal(t *testing.T) {
	rows := 6
	scenario := &Scenario{
		Name:        "golden_minimal",
		Description: "No filters selects every fixture row",
		Cases: []Case{
			{Name: "all", Expect: Expect{Rows: &rows}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, scenario.Name, result))
}

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/operators.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, scenario.QueryID, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, scenario.QueryID, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalSnapshot_ErrorCaseOmitsPlan(t *testing.T) {
	result := NewResult()
	result.AddCase(CaseOutcome{Name: "bad", Error: "MIXED_OPERATORS", SQL: "ignored", ErrorMessage: "ignored"})

	data, err := MarshalSnapshot("s", "", result)
	require.NoError(t, err)
	assert.Equal(t, `{"cases":[{"error":"MIXED_OPERATORS","name":"bad"}],"scenario_name":"s"}`, string(data))
}
