package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidScenario(t *testing.T) {
	path := writeScenarioFile(t, equityScenario)

	out, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok    "+path)
	assert.Contains(t, out, "1 step(s)")
}

func TestValidateInvalidScenario(t *testing.T) {
	bad := writeScenarioFile(t, `
name: broken
steps:
  - key: k1
    instrument: equity
    event: trade
    expect: maybe
`)
	good := writeScenarioFile(t, equityScenario)

	out, err := executeCommand(t, "validate", bad, good)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 file(s) invalid")
	assert.Contains(t, out, `unknown expect "maybe"`)
	assert.Contains(t, out, "ok    "+good)
}

func TestValidateMissingFile(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := executeCommand(t, "validate", absent)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
