package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"suitectl/internal/suite"
)

// MockRunner is a mock implementation of EngineRunner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) (string, string, int, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.String(1), args.Int(2), args.Error(3)
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

type staticSource map[string]*suite.Configuration

func (s staticSource) Get(name string) (*suite.Configuration, error) {
	cfg, ok := s[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return cfg, nil
}

func scenarioTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "tests", "login", "sign_in.feature")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Feature: sign in\n"), 0644))
	return root
}

func smokeSuite() *suite.Configuration {
	cfg := suite.New("smoke-tests")
	cfg.ScenarioPaths = []string{"tests.login"}
	cfg.IncludeTags = []string{"smoke"}
	return cfg
}

func TestExecuteEndToEnd(t *testing.T) {
	root := scenarioTree(t)
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return("2 scenarios passed, 0 failed, 0 skipped\n", "", 0, nil)
	env := NewMemoryEnvironment()

	ex := New(Config{ScenarioRoot: root}, WithRunner(runner), WithEnvironment(env))
	result, err := ex.Execute(context.Background(), smokeSuite(), Options{})

	require.NoError(t, err)
	runner.AssertExpectations(t)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Total())
	assert.Contains(t, result.Command, "--tags=smoke")
	assert.Contains(t, result.Command, filepath.Join(root, "tests", "login"))
	assert.True(t, strings.HasPrefix(result.Command, "behave "))
	assert.NoError(t, result.Err())
}

func TestBuildCommand(t *testing.T) {
	root := scenarioTree(t)
	cfg := smokeSuite()
	cfg.ScenarioPaths = []string{"tests.login", "tests.gone"}
	cfg.IncludeTags = []string{"smoke", "critical"}
	cfg.ExcludeTags = []string{"slow"}
	cfg.Parameters = map[string]string{"browser": "chrome", "base_url": "http://x"}
	cfg.Execution.StopOnFirstFailure = true

	ex := New(Config{Command: []string{"python", "-m", "behave"}, ScenarioRoot: root, LogLevel: "info", WorkDir: "/work"})
	cmd, missing := ex.BuildCommand(cfg, Options{Verbose: true, NoCapture: true, DryRun: true})

	assert.Equal(t, "python", cmd.Name)
	assert.Equal(t, "/work", cmd.Dir)
	assert.Equal(t, []string{
		"-m", "behave",
		filepath.Join(root, "tests", "login"),
		"--tags=(smoke or critical) and not slow",
		"-D", "base_url=http://x",
		"-D", "browser=chrome",
		"--stop",
		"--verbose",
		"--dry-run",
		"--no-capture",
		"--logging-level=INFO",
	}, cmd.Args)
	assert.Equal(t, []string{"tests.gone"}, missing)
	assert.Contains(t, cmd.String(), "'--tags=(smoke or critical) and not slow'")
}

func TestBuildCommandWithoutPathsUsesScenarioRoot(t *testing.T) {
	cfg := suite.New("tagged")
	cfg.IncludeTags = []string{"api"}

	ex := New(Config{ScenarioRoot: "features"})
	cmd, missing := ex.BuildCommand(cfg, Options{LogLevel: "debug"})

	assert.Equal(t, []string{"features", "--tags=api", "--logging-level=DEBUG"}, cmd.Args)
	assert.Empty(t, missing)
}

func TestExecuteDryRun(t *testing.T) {
	runner := new(MockRunner)
	env := NewMemoryEnvironment()
	cfg := smokeSuite()
	cfg.Parameters["base_url"] = "http://x"

	ex := New(Config{ScenarioRoot: scenarioTree(t)}, WithRunner(runner), WithEnvironment(env))
	result, err := ex.Execute(context.Background(), cfg, Options{DryRun: true})

	require.NoError(t, err)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	assert.True(t, result.DryRun)
	assert.Zero(t, result.Duration)
	assert.Contains(t, result.Command, "--dry-run")
	assert.Empty(t, env.Writes())
}

func TestEnvironmentInheritance(t *testing.T) {
	cfg := smokeSuite()
	cfg.Parameters = map[string]string{"LOG_LEVEL": "DEBUG"}
	cfg.Execution.Environment = suite.EnvironmentConfig{
		Default: "prod",
		Variables: map[string]string{
			"API_URL":         "http://global",
			"prod.API_URL":    "https://prod",
			"staging.API_URL": "https://staging",
		},
		Profiles: map[string]suite.EnvironmentProfile{
			"base": {Name: "base", Properties: map[string]string{"LOG_LEVEL": "INFO", "DB_HOST": "db.internal"}},
			"prod": {Name: "prod", Extends: "base", Properties: map[string]string{"LOG_LEVEL": "ERROR"}},
		},
	}

	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return("", "", 0, nil)
	env := NewMemoryEnvironment()
	ex := New(Config{ScenarioRoot: scenarioTree(t)}, WithRunner(runner), WithEnvironment(env))

	_, err := ex.Execute(context.Background(), cfg, Options{})
	require.NoError(t, err)

	values := env.Values()
	assert.Equal(t, "ERROR", values["LOG_LEVEL"])
	assert.Equal(t, "db.internal", values["DB_HOST"])
	assert.Equal(t, "https://prod", values["API_URL"])

	assert.Equal(t, []Assignment{
		{Key: "LOG_LEVEL", Value: "DEBUG"},
		{Key: "API_URL", Value: "http://global"},
		{Key: "API_URL", Value: "https://prod"},
		{Key: "DB_HOST", Value: "db.internal"},
		{Key: "LOG_LEVEL", Value: "INFO"},
		{Key: "LOG_LEVEL", Value: "ERROR"},
	}, env.Writes())

	staging := Effective(ResolveEnvironment(cfg, "staging"))
	assert.Equal(t, "https://staging", staging["API_URL"])
	assert.Equal(t, "DEBUG", staging["LOG_LEVEL"])
	assert.NotContains(t, staging, "DB_HOST")
}

func TestProfileInheritanceIsOneLevel(t *testing.T) {
	cfg := smokeSuite()
	cfg.Execution.Environment.Profiles = map[string]suite.EnvironmentProfile{
		"root":  {Name: "root", Properties: map[string]string{"ROOT_ONLY": "1"}},
		"base":  {Name: "base", Extends: "root", Properties: map[string]string{"BASE_ONLY": "1"}},
		"child": {Name: "child", Extends: "base", Properties: map[string]string{"CHILD_ONLY": "1"}},
	}

	vars := Effective(ResolveEnvironment(cfg, "child"))
	assert.Contains(t, vars, "CHILD_ONLY")
	assert.Contains(t, vars, "BASE_ONLY")
	assert.NotContains(t, vars, "ROOT_ONLY")
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name          string
		retry         suite.RetryConfig
		outputs       []int // exit codes per attempt
		failed        int
		expectedCalls int
	}{
		{name: "always failing exhausts attempts", retry: suite.RetryConfig{MaxAttempts: 3, DelaySeconds: 2, RetryOnError: true}, outputs: []int{1, 1, 1}, expectedCalls: 3},
		{name: "stops on first success", retry: suite.RetryConfig{MaxAttempts: 3, RetryOnError: true}, outputs: []int{1, 0}, expectedCalls: 2},
		{name: "no retry without flags", retry: suite.RetryConfig{MaxAttempts: 3}, outputs: []int{1}, expectedCalls: 1},
		{name: "retry on failed scenarios", retry: suite.RetryConfig{MaxAttempts: 2, RetryOnFailure: true}, outputs: []int{0, 0}, failed: 1, expectedCalls: 2},
		{name: "failed scenarios without retryOnFailure", retry: suite.RetryConfig{MaxAttempts: 2, RetryOnError: true}, outputs: []int{0}, failed: 1, expectedCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			summary := "1 scenario passed, 0 failed, 0 skipped"
			if tt.failed > 0 {
				summary = "0 scenarios passed, 1 failed, 0 skipped"
			}
			for _, code := range tt.outputs {
				runner.On("Run", mock.Anything, mock.Anything).Return(summary, "", code, nil).Once()
			}
			sleeper := &sleepRecorder{}

			cfg := smokeSuite()
			cfg.Execution.Retry = tt.retry
			ex := New(Config{ScenarioRoot: t.TempDir()}, WithRunner(runner), WithEnvironment(NewMemoryEnvironment()), WithSleep(sleeper.sleep))

			result, err := ex.ExecuteWithRetry(context.Background(), cfg, Options{})
			require.NoError(t, err)

			runner.AssertNumberOfCalls(t, "Run", tt.expectedCalls)
			assert.Len(t, sleeper.calls, tt.expectedCalls-1)
			assert.Equal(t, tt.expectedCalls, result.Attempts)
			assert.Equal(t, tt.outputs[len(tt.outputs)-1], result.ExitCode)
			for _, d := range sleeper.calls {
				assert.Equal(t, tt.retry.Delay(), d)
			}
		})
	}
}

func TestExecuteStartFailure(t *testing.T) {
	runner := new(MockRunner)
	startErr := errors.New("exec: \"behave\": executable file not found in $PATH")
	runner.On("Run", mock.Anything, mock.Anything).Return("", "", -1, startErr)
	sleeper := &sleepRecorder{}

	cfg := smokeSuite()
	cfg.Execution.Retry = suite.RetryConfig{MaxAttempts: 2, RetryOnError: true}
	ex := New(Config{ScenarioRoot: t.TempDir()}, WithRunner(runner), WithEnvironment(NewMemoryEnvironment()), WithSleep(sleeper.sleep))

	result, err := ex.ExecuteWithRetry(context.Background(), cfg, Options{})

	assert.Nil(t, result)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindStart, execErr.Kind)
	assert.Equal(t, "smoke-tests", execErr.Suite)
	assert.ErrorIs(t, err, startErr)
	runner.AssertNumberOfCalls(t, "Run", 2)
	assert.Len(t, sleeper.calls, 1)
}

func TestExecuteTimeout(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return("partial output", "", -1, context.DeadlineExceeded)

	ex := New(Config{ScenarioRoot: t.TempDir()}, WithRunner(runner), WithEnvironment(NewMemoryEnvironment()))
	result, err := ex.Execute(context.Background(), smokeSuite(), Options{Timeout: 20 * time.Millisecond})

	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.Equal(t, ExitCodeTimeout, result.ExitCode)
	assert.False(t, result.Success())
	assert.Equal(t, "partial output", result.Output)
	assert.True(t, IsTimeout(result.Err()))
}

func TestExecuteNonZeroExit(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return("1 scenario passed, 2 failed, 0 skipped", "Traceback\nAssertionError: boom\n", 1, nil)

	ex := New(Config{ScenarioRoot: t.TempDir()}, WithRunner(runner), WithEnvironment(NewMemoryEnvironment()))
	result, err := ex.Execute(context.Background(), smokeSuite(), Options{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []string{"engine exited with code 1", "AssertionError: boom"}, result.Errors)
	var execErr *ExecutionError
	require.ErrorAs(t, result.Err(), &execErr)
	assert.Equal(t, KindExit, execErr.Kind)
	assert.Equal(t, 1, execErr.ExitCode)
}

func TestExecuteUsesSuiteTimeout(t *testing.T) {
	var deadline time.Time
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		deadline, _ = args.Get(0).(context.Context).Deadline()
	}).Return("", "", 0, nil)

	cfg := smokeSuite()
	cfg.Execution.Timeout.SuiteSeconds = 90
	ex := New(Config{ScenarioRoot: t.TempDir()}, WithRunner(runner), WithEnvironment(NewMemoryEnvironment()))

	before := time.Now()
	_, err := ex.Execute(context.Background(), cfg, Options{})
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(90*time.Second), deadline, 5*time.Second)

	assert.Equal(t, 90*time.Second, Timeout(cfg, Options{}))
	assert.Equal(t, time.Minute, Timeout(cfg, Options{Timeout: time.Minute}))
}

func TestResolveSuite(t *testing.T) {
	bad := suite.New("x")
	source := staticSource{"smoke-tests": smokeSuite(), "x": bad}
	ex := New(Config{}, WithSuiteSource(source))

	cfg, err := ex.ResolveSuite("smoke-tests")
	require.NoError(t, err)
	assert.Equal(t, "smoke-tests", cfg.Name)

	_, err = ex.ResolveSuite("x")
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindConfiguration, execErr.Kind)

	_, err = ex.ResolveSuite("missing")
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindConfiguration, execErr.Kind)

	_, err = New(Config{}).ResolveSuite("any")
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "behave", Args: []string{"features", "--tags=smoke", "-D", "name=it's", ""}}
	assert.Equal(t, `behave features --tags=smoke -D 'name=it'\''s' ''`, cmd.String())
}

func TestExecRunner(t *testing.T) {
	r := &ExecRunner{}

	stdout, stderr, code, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
	assert.Equal(t, 3, code)

	_, _, code, err = r.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "no-such-engine")})
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
