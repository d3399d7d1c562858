package executor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/suite"
)

func TestProcessEnvironment(t *testing.T) {
	t.Setenv("SUITECTL_TEST_VAR", "before")

	require.NoError(t, ProcessEnvironment{}.Setenv("SUITECTL_TEST_VAR", "after"))
	assert.Equal(t, "after", os.Getenv("SUITECTL_TEST_VAR"))
}

func TestMemoryEnvironment(t *testing.T) {
	env := NewMemoryEnvironment()
	require.NoError(t, env.Setenv("A", "1"))
	require.NoError(t, env.Setenv("A", "2"))

	v, ok := env.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	_, ok = env.Get("B")
	assert.False(t, ok)
	assert.Len(t, env.Writes(), 2)
}

func TestSelectedEnvironment(t *testing.T) {
	cfg := suite.New("x")
	cfg.Execution.Environment.Default = "staging"

	assert.Equal(t, "staging", SelectedEnvironment(cfg, Options{}))
	assert.Equal(t, "prod", SelectedEnvironment(cfg, Options{Environment: "prod"}))
}

func TestResolveEnvironmentUnknownProfile(t *testing.T) {
	cfg := suite.New("x")
	cfg.Execution.Environment.Variables["GLOBAL"] = "g"

	assert.Equal(t, []Assignment{{Key: "GLOBAL", Value: "g"}}, ResolveEnvironment(cfg, "nowhere"))
	assert.Equal(t, []Assignment{{Key: "GLOBAL", Value: "g"}}, ResolveEnvironment(cfg, ""))
}
