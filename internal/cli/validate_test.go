package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parserConfigDir = filepath.Join("..", "config", "testdata", "parser")

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parser.cue"), []byte(src), 0644))
	return dir
}

func runValidateCmd(t *testing.T, format, dir string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidConfig(t *testing.T) {
	out, err := runValidateCmd(t, "text", parserConfigDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Config valid (3 matcher(s))")
}

func TestValidateValidConfigJSON(t *testing.T) {
	out, err := runValidateCmd(t, "json", parserConfigDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(3), data["matchers"])
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := runValidateCmd(t, "text", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := runValidateCmd(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateUnknownOperator(t *testing.T) {
	out, err := runValidateCmd(t, "text", filepath.Join("..", "config", "testdata", "bad"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "unknown operator")
}

func TestValidateReportsEveryBadPattern(t *testing.T) {
	dir := writeConfig(t, `package qparam

parser: matchers: [
	{pattern: "([a-", operator: "eq", template: "${1}"},
	{pattern: "^(\\d+)$", operator: "eq", transform: "int"},
	{pattern: "(x", operator: "like", template: "%${1}%"},
]
`)

	out, err := runValidateCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Contains(t, out, "matchers[0]")
	assert.NotContains(t, out, "matchers[1]")
	assert.Contains(t, out, "matchers[2]")
}

func TestValidateInvalidSettingJSON(t *testing.T) {
	dir := writeConfig(t, `package qparam

parser: columns: ["id", "bad name"]
`)

	out, err := runValidateCmd(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "bad name")
}

func TestValidateVerboseOutput(t *testing.T) {
	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs([]string{parserConfigDir})

	require.NoError(t, cmd.Execute())

	// Verbose logs must not corrupt JSON output
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdoutBuf.Bytes(), &resp))
	assert.Contains(t, stderrBuf.String(), "Found 2 CUE file(s)")
	assert.Contains(t, stderrBuf.String(), "Validating matcher 0")
}

func TestValidateConfigDir(t *testing.T) {
	errs, err := ValidateConfigDir(parserConfigDir)
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = ValidateConfigDir("/nonexistent")
	assert.Error(t, err)
}
