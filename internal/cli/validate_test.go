package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinegraph/internal/compiler"
)

// writePlans writes each name/content pair as a CUE file in a new directory.
func writePlans(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func TestValidateValidPlans(t *testing.T) {
	out, _, err := execute(t, "validate", testPlans)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All plans valid (9)")
}

func TestValidateValidPlansJSON(t *testing.T) {
	out, _, err := execute(t, "validate", testPlans, "--format", "json")
	require.NoError(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Plans, 9)
	assert.Equal(t, "all_actors", resp.Data.Plans[0])
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "plans directory not found")
}

func TestValidateNoCUEFiles(t *testing.T) {
	dir := writePlans(t, map[string]string{"README.md": "no plans here"})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestValidateNoPlansDeclared(t *testing.T) {
	dir := writePlans(t, map[string]string{"empty.cue": "other: 1\n"})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no plans found")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"a_bad_rel.cue": `plan: bad_rel: {
	start: "actor"
	hops: [{rel: "acted_in"}]
}
`,
		"b_bad_type.cue": `plan: bad_type: {
	start: "film"
	where: [{at: 0, field: "year", eq: "2015"}]
}
`,
		"c_good.cue": `plan: good: {start: "film"}
`,
	})

	out, _, err := execute(t, "validate", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 2)

	first := resp.Data.Errors[0]
	assert.Equal(t, ErrCodeCompile, first.Code)
	assert.Contains(t, first.Message, `plan bad_rel: hops: hop 1: unknown relationship "acted_in"`)
	assert.Equal(t, 3, first.Line)
	assert.Contains(t, first.File, "a_bad_rel.cue")

	second := resp.Data.Errors[1]
	assert.Equal(t, ErrCodeTypeMismatch, second.Code)
	assert.Contains(t, second.Message, "bad_type")

	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
}

func TestValidateSyntaxErrorText(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"broken.cue": "plan: broken: {\n\tstart: \"actor\"\n",
	})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeCompile)
}

func TestValidateDuplicatePlanNames(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"one.cue": `plan: same: {start: "actor"}` + "\n",
		"two.cue": `plan: same: {start: "film"}` + "\n",
	})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeDuplicate)
	assert.Contains(t, out, `plan "same" declared in both`)
}

func TestValidateVerbose(t *testing.T) {
	_, errOut, err := execute(t, "validate", testPlans, "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Found 2 CUE file(s)")
	assert.Contains(t, errOut, "Validated plan: brad_pitt_directors")
}

func TestLoadPlans_FailFast(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"a.cue": `plan: a: {start: "dragon"}` + "\n",
		"b.cue": `plan: b: {start: "film", sort: "random"}` + "\n",
	})

	result, errs := LoadPlans(dir, LoadModeFailFast)
	require.NotNil(t, result)
	require.Len(t, errs, 1)

	result, errs = LoadPlans(dir, LoadModeCollectAll)
	require.NotNil(t, result)
	assert.Len(t, errs, 2)
	assert.Empty(t, result.Plans)
	assert.Len(t, result.Files, 2)
}

func TestSelectPlans(t *testing.T) {
	result, errs := LoadPlans(testPlans, LoadModeFailFast)
	require.Empty(t, errs)

	all, err := selectPlans(result.Plans, nil)
	require.NoError(t, err)
	assert.Len(t, all, 9)

	picked, err := selectPlans(result.Plans, []string{"brad_pitt_directors", "all_actors"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "brad_pitt_directors", picked[0].Name)
	assert.Equal(t, "all_actors", picked[1].Name)

	_, err = selectPlans(result.Plans, []string{"nope"})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeUnknownPlan, loadErr.Code)
}

func TestConvertLoadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no files", fmt.Errorf("%w in plans", compiler.ErrNoCUEFiles), ErrCodeNoFiles},
		{"scan", &compiler.ScanError{Dir: "plans", Err: os.ErrPermission}, ErrCodeScanError},
		{"read", &compiler.ReadError{File: "a.cue", Err: os.ErrPermission}, ErrCodeReadFailed},
		{"duplicate", &compiler.DuplicatePlanError{Name: "x", First: "a.cue", Second: "b.cue"}, ErrCodeDuplicate},
		{"compile", &compiler.CompileError{Field: "start", Message: "start is required"}, ErrCodeCompile},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, convertLoadError(tt.err).Code)
		})
	}
}

func TestQueryRejectsDuplicatePlanNames(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"one.cue": `plan: same: {start: "actor"}` + "\n",
		"two.cue": `plan: same: {start: "film"}` + "\n",
	})

	out, _, err := execute(t, "query", dir, "--explain", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDuplicate, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, filepath.Join(dir, "one.cue"))
	assert.Contains(t, resp.Error.Message, filepath.Join(dir, "two.cue"))
}
