package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/config"
	"suitectl/internal/executor"
	"suitectl/internal/manager"
	"suitectl/internal/repository"
)

// executeCommand runs the root command with args against configPath and
// returns what it wrote to stdout.
func executeCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config-path", configPath))
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func TestSuiteLifecycle(t *testing.T) {
	configPath := t.TempDir()

	out, err := executeCommand(t, configPath, "suite", "create", "smoke",
		"--description", "Smoke tests",
		"--include-tag", "smoke",
		"--param", "BASE_URL=http://localhost:8080",
		"--max-attempts", "2",
		"--retry-on-failure")
	require.NoError(t, err)
	assert.Contains(t, out, "Created suite smoke")
	assert.FileExists(t, filepath.Join(configPath, config.DefaultSuitesDir, "smoke.xml"))

	_, err = executeCommand(t, configPath, "suite", "create", "smoke", "--include-tag", "smoke")
	var exists *repository.AlreadyExistsError
	require.ErrorAs(t, err, &exists)

	out, err = executeCommand(t, configPath, "suite", "list", "-o", "json")
	require.NoError(t, err)
	var listed []manager.Details
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "smoke", listed[0].Name)
	assert.Equal(t, "Smoke tests", listed[0].Description)
	assert.Equal(t, 2, listed[0].MaxAttempts)

	_, err = executeCommand(t, configPath, "suite", "update", "smoke",
		"--param", "USER=bob",
		"--remove-param", "BASE_URL")
	require.NoError(t, err)

	out, err = executeCommand(t, configPath, "suite", "get", "smoke", "-o", "json")
	require.NoError(t, err)
	var details manager.Details
	require.NoError(t, json.Unmarshal([]byte(out), &details))
	assert.Equal(t, map[string]string{"USER": "bob"}, details.Parameters)
	assert.Equal(t, "Smoke tests", details.Description)
	assert.Equal(t, "smoke", details.TagsExpression)

	out, err = executeCommand(t, configPath, "suite", "validate", "smoke", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)

	out, err = executeCommand(t, configPath, "run", "smoke", "--dry-run", "-o", "json")
	require.NoError(t, err)
	var result executor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.DryRun)
	assert.Contains(t, result.Command, "--tags=smoke")
	assert.Contains(t, result.Command, "--dry-run")
	assert.Contains(t, result.Command, "USER=bob")

	out, err = executeCommand(t, configPath, "suite", "delete", "smoke")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted suite smoke")
	assert.Contains(t, out, "Backup:")

	_, err = executeCommand(t, configPath, "suite", "get", "smoke", "-o", "json")
	var notFound *repository.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

func TestSuiteValidateFileExitCode(t *testing.T) {
	configPath := t.TempDir()
	doc := filepath.Join(t.TempDir(), "broken.xml")
	require.NoError(t, os.WriteFile(doc, []byte(`<suite><description>no name</description></suite>`), 0644))

	_, err := executeCommand(t, configPath, "suite", "validate", "--file", doc, "-o", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
}

func TestConfigInitAndShow(t *testing.T) {
	configPath := t.TempDir()

	out, err := executeCommand(t, configPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")
	assert.FileExists(t, filepath.Join(configPath, "config.yaml"))

	out, err = executeCommand(t, configPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "suitesDir: "+filepath.Join(configPath, config.DefaultSuitesDir))
	assert.Contains(t, out, "retryCount: 0")
}
