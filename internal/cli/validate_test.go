package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/compiler"
)

const unlintedLayout = `common: {}
root: {type: "Root", label: "r"}
`

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), testLayout)
	require.NoError(t, err)
	assert.Equal(t, "✓ Layout valid (5 nodes)\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), testLayout)
	require.NoError(t, err)

	status, result := decodeData[ValidationResult](t, out)
	assert.Equal(t, "ok", status)
	assert.True(t, result.Valid)
	assert.Equal(t, 5, result.Nodes)
	assert.Len(t, result.Hash, 64)
}

func TestValidate_LintFailures(t *testing.T) {
	path := writeLayout(t, unlintedLayout)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrInvalidThreshold)
	assert.Contains(t, out, compiler.ErrInvalidLandscape)
}

func TestValidate_LintFailuresJSON(t *testing.T) {
	path := writeLayout(t, unlintedLayout)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.NotEmpty(t, resp.Data.Errors)
	require.NotNil(t, resp.Error)
	assert.Equal(t, resp.Data.Errors[0].Code, resp.Error.Code)
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/layout.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
	assert.Contains(t, out, "layout not found")
}

func TestValidate_SyntaxError(t *testing.T) {
	path := writeLayout(t, "root: {\n")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCompile)
}

func TestValidate_RequiresOneArg(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	assert.Error(t, err)
}
