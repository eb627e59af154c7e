package harness

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/engine"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"reference", "sql_dump"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("../../testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestGolden_DatasetFormatsAgree(t *testing.T) {
	// The YAML and SQL datasets hold the same records, so the plans both
	// scenarios resolve must produce identical rows.
	ref, err := LoadScenario("../../testdata/scenarios/reference.yaml")
	require.NoError(t, err)
	dump, err := LoadScenario("../../testdata/scenarios/sql_dump.yaml")
	require.NoError(t, err)

	refResult, err := RunWithGolden(t, ref)
	require.NoError(t, err)
	dumpResult, err := RunWithGolden(t, dump)
	require.NoError(t, err)

	for _, q := range dumpResult.Trace {
		r, ok := refResult.Query(q.Plan)
		require.True(t, ok, q.Plan)
		assert.Equal(t, r.Rows, q.Rows, q.Plan)
	}
}

func TestSnapshot_Format(t *testing.T) {
	scenario := &Scenario{Name: "snap", QueryID: "q-1"}
	result := NewResult()
	result.AddQueryTrace(&engine.Result{QueryID: "q-1", Plan: "empty"})

	data, err := Snapshot(scenario, result)
	require.NoError(t, err)

	want := `{
  "scenario_name": "snap",
  "query_id": "q-1",
  "trace": [
    {
      "plan": "empty",
      "query_id": "q-1",
      "count": 0,
      "rows": []
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestSnapshot_MatchesGoldenFile(t *testing.T) {
	// The golden file on disk is exactly what Snapshot renders, which is
	// what the CLI test command compares against.
	scenario, err := LoadScenario("../../testdata/scenarios/sql_dump.yaml")
	require.NoError(t, err)

	raw, err := os.ReadFile(scenario.GoldenPath())
	require.NoError(t, err)

	var snap TraceSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "sql_dump", snap.ScenarioName)
	assert.Equal(t, "q-sql-dump", snap.QueryID)
	require.Len(t, snap.Trace, 3)

	result := NewResult()
	result.Trace = snap.Trace
	rendered, err := Snapshot(scenario, result)
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(rendered))
}
