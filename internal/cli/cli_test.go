package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var (
	testLayout    = filepath.Join("..", "harness", "testdata", "layout.cue")
	testScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	testGolden    = filepath.Join("..", "harness", "testdata", "golden")
)

// execute runs cmd with args and returns stdout and the command error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeLayout writes src to a layout file in a temp dir.
func writeLayout(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// decodeData unmarshals a CLIResponse whose data is shaped like T.
func decodeData[T any](t *testing.T, out string) (string, T) {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.Status, resp.Data
}
