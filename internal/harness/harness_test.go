package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Operators(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/operators.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Cases, len(scenario.Cases))
}

func TestRun_CaseOutcome(t *testing.T) {
	scenario := &Scenario{
		Name:        "outcome",
		Description: "Outcome fields are recorded",
		Cases: []Case{
			{Name: "lt", Query: []string{"id=<3"}, Expect: Expect{IDs: []int64{1, 2}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Cases, 1)

	c := result.Cases[0]
	assert.Equal(t, "lt", c.Name)
	assert.Equal(t, "id < :id_1", c.Expression)
	assert.Equal(t, "SELECT * FROM content WHERE id < ? ORDER BY id ASC COLLATE BINARY", c.SQL)
	assert.Equal(t, []any{"3"}, c.Args)
	assert.Equal(t, 2, c.RowCount)
	assert.Empty(t, c.Error)
}

func TestRun_FailedExpectations(t *testing.T) {
	rows := 99
	scenario := &Scenario{
		Name:        "failing",
		Description: "Mismatches are reported per case",
		Cases: []Case{
			{Name: "wrong_ids", Query: []string{"username=fred"}, Expect: Expect{IDs: []int64{2}}},
			{Name: "wrong_rows", Query: []string{"username=fred"}, Expect: Expect{Rows: &rows}},
			{Name: "unexpected_error", Query: []string{"nope=1"}, Expect: Expect{IDs: []int64{1}}},
			{Name: "missing_error", Query: []string{"id=1"}, Expect: Expect{Error: "MIXED_OPERATORS"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], `case "wrong_ids": ids: expected [2], got [1 3]`)
	assert.Contains(t, result.Errors[1], `case "wrong_rows": rows: expected 99, got 2`)
	assert.Contains(t, result.Errors[2], "UNKNOWN_FIELD")
	assert.Contains(t, result.Errors[3], "error: expected MIXED_OPERATORS, got success")
}

func TestRun_SetupRows(t *testing.T) {
	rows := 1
	scenario := &Scenario{
		Name:        "setup",
		Description: "Setup rows are inserted after fixtures",
		Setup:       []ContentRow{{ID: 10, Slug: "extra", Username: "zed"}},
		Cases: []Case{
			{Name: "zed", Query: []string{"username=zed"}, Expect: Expect{Rows: &rows, IDs: []int64{10}}},
			{Name: "defaults", Query: []string{"status=published", "username=zed"}, Expect: Expect{IDs: []int64{10}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SetupCollision(t *testing.T) {
	scenario := &Scenario{
		Name:        "collide",
		Description: "Setup ids must not collide with fixtures",
		Setup:       []ContentRow{{ID: 1, Slug: "dup"}},
		Cases:       []Case{{Name: "x", Query: []string{"id=1"}, Expect: Expect{Error: "X"}}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load content")
}

func TestRun_MissingConfig(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_config",
		Description: "Config directory must exist",
		Config:      "testdata/does-not-exist",
		Cases:       []Case{{Name: "x", Query: []string{"id=1"}, Expect: Expect{Error: "X"}}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_ScenarioOverridesConfig(t *testing.T) {
	scenario := &Scenario{
		Name:        "override",
		Description: "Scenario alias, order and limit win over config",
		Config:      "testdata/config",
		Alias:       "x",
		OrderBy:     []string{"id"},
		Limit:       2,
		Cases: []Case{
			{Name: "all", Query: []string{"status=published"}, Expect: Expect{
				SQL: "SELECT * FROM content AS x WHERE x.status = ? ORDER BY id ASC COLLATE BINARY LIMIT ?",
				IDs: []int64{1, 2},
			}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
