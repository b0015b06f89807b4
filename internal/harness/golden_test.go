package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_EnterAndRotate(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "enter_and_rotate"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "enter_and_rotate")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalGolden(s.Name, first)
	require.NoError(t, err)
	b, err := MarshalGolden(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
