package ci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"suitectl/internal/executor"
	"suitectl/internal/suite"
	"suitectl/internal/template"
	"suitectl/pkg/logging"
)

// DefaultNotifyTimeout bounds webhook delivery when Config.NotifyTimeout is unset.
const DefaultNotifyTimeout = 10 * time.Second

// DefaultEngineConfigFiles are the engine config files looked for in the work directory.
var DefaultEngineConfigFiles = []string{"behave.ini", ".behaverc", "setup.cfg", "tox.ini"}

// Config controls how suites are run in CI.
type Config struct {
	// RetryCount replaces the suite's retry policy when positive: the
	// suite is attempted RetryCount+1 times, retrying on any failure.
	RetryCount int
	RetryDelay time.Duration
	// FailOnAnyFailure requires zero failed scenarios for success.
	FailOnAnyFailure bool
	// ContinueOnError reports every run as successful and turns engine
	// errors into failed results.
	ContinueOnError bool
	OutputDir       string
	// OutputFormats selects the documents written to OutputDir: "json", "junit".
	OutputFormats []string
	// ArtifactDirs are created before the run.
	ArtifactDirs []string
	Webhooks     []string
	// Variables are added to the suite parameters alongside the CI_* variables.
	Variables            map[string]string
	NotificationTemplate string
	NotifyTimeout        time.Duration
	EngineConfigFiles    []string
	WorkDir              string
}

func (c Config) notifyTimeout() time.Duration {
	if c.NotifyTimeout > 0 {
		return c.NotifyTimeout
	}
	return DefaultNotifyTimeout
}

// SuiteExecutor resolves and runs suites. *executor.Executor satisfies it.
type SuiteExecutor interface {
	ResolveSuite(name string) (*suite.Configuration, error)
	ExecuteWithRetry(ctx context.Context, cfg *suite.Configuration, opts executor.Options) (*executor.Result, error)
	ExecuteAttempts(ctx context.Context, cfg *suite.Configuration, opts executor.Options, policy suite.RetryConfig) (*executor.Result, error)
}

// Integrator runs suites with CI variables, retry, success policy,
// artifacts and notifications.
type Integrator struct {
	cfg    Config
	exec   SuiteExecutor
	env    Environment
	engine *template.Engine
	client *http.Client
	now    func() time.Time
	newID  func() string
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithEnvironment sets the CI environment instead of detecting it.
func WithEnvironment(env Environment) Option {
	return func(i *Integrator) { i.env = env }
}

// WithHTTPClient sets the client used for webhooks.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Integrator) { i.client = c }
}

// WithClock sets the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Integrator) { i.now = now }
}

// WithIDGenerator sets how run identifiers are made.
func WithIDGenerator(newID func() string) Option {
	return func(i *Integrator) { i.newID = newID }
}

// New creates an integrator. The CI environment is detected from the
// process unless WithEnvironment is given.
func New(cfg Config, exec SuiteExecutor, opts ...Option) *Integrator {
	if len(cfg.EngineConfigFiles) == 0 {
		cfg.EngineConfigFiles = DefaultEngineConfigFiles
	}
	i := &Integrator{
		cfg:    cfg,
		exec:   exec,
		engine: template.New(),
		client: http.DefaultClient,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.env.Provider == "" {
		i.env = DetectFromProcess()
	}
	return i
}

// Environment returns the CI environment runs are attributed to.
func (i *Integrator) Environment() Environment {
	return i.env
}

// RunSuite resolves the named suite through the executor and runs it like
// Run. A suite that cannot be resolved is handled like an engine error.
func (i *Integrator) RunSuite(ctx context.Context, name string, opts executor.Options) (*Result, error) {
	cfg, err := i.exec.ResolveSuite(name)
	if err != nil {
		return i.abort(ctx, name, err)
	}
	return i.Run(ctx, cfg, opts)
}

// Run executes cfg for CI. Engine errors become a failed result when
// ContinueOnError is set and a *SuiteExecutionError otherwise. Artifact
// and notification failures are logged only.
func (i *Integrator) Run(ctx context.Context, cfg *suite.Configuration, opts executor.Options) (*Result, error) {
	if cfg == nil {
		return i.abort(ctx, "", errors.New("suite configuration is missing"))
	}

	result := i.newResult(cfg.Name)
	logging.Info("CI", "Running suite %s on %s (run %s)", cfg.Name, i.env.Provider, result.ID)

	i.checkEngineConfig()
	i.ensureDirs()

	execResult, err := i.execute(ctx, i.Prepare(cfg), opts)
	if err != nil {
		return i.fail(ctx, result, err)
	}
	return i.finish(ctx, result, execResult), nil
}

func (i *Integrator) newResult(name string) *Result {
	return &Result{
		ID:          i.newID(),
		Suite:       name,
		Environment: i.env,
		Artifacts:   []string{},
		StartedAt:   i.now().UTC(),
	}
}

// abort handles a suite that never reached the engine.
func (i *Integrator) abort(ctx context.Context, name string, err error) (*Result, error) {
	if !i.cfg.ContinueOnError {
		return nil, &SuiteExecutionError{Suite: name, Err: err}
	}
	result := i.newResult(name)
	i.ensureDirs()
	return i.fail(ctx, result, err)
}

func (i *Integrator) fail(ctx context.Context, result *Result, err error) (*Result, error) {
	if !i.cfg.ContinueOnError {
		return nil, &SuiteExecutionError{Suite: result.Suite, Err: err}
	}
	logging.Warn("CI", "Suite %s failed to run, continuing: %v", result.Suite, err)
	result.Error = err.Error()
	return i.finish(ctx, result, failedResult(result.Suite, err)), nil
}

func (i *Integrator) finish(ctx context.Context, result *Result, execResult *executor.Result) *Result {
	result.Execution = execResult
	if execResult.Attempts > 1 {
		result.RetryCount = execResult.Attempts - 1
	}
	result.Success = Succeeded(i.cfg, execResult)
	result.FinishedAt = i.now().UTC()

	if result.Suite != "" {
		i.writeArtifacts(result)
	} else {
		logging.Warn("CI", "Run %s has no suite name, skipping artifacts", result.ID)
	}

	if n, err := NewNotification(i.engine, i.cfg.NotificationTemplate, result); err != nil {
		logging.Warn("CI", "Failed to render notification for suite %s: %v", result.Suite, err)
	} else {
		i.notify(ctx, n)
	}

	logging.Info("CI", "Suite %s finished in CI: success=%t exit=%d", result.Suite, result.Success, result.ExitCode())
	return result
}

// Prepare returns a copy of cfg with the CI variables and Config.Variables
// added to its parameters. Config.Variables win over CI variables;
// parameters the suite defines are never overwritten.
func (i *Integrator) Prepare(cfg *suite.Configuration) *suite.Configuration {
	run := cfg.Clone()
	if run.Parameters == nil {
		run.Parameters = map[string]string{}
	}
	vars := i.env.Variables()
	for k, v := range i.cfg.Variables {
		vars[k] = v
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, defined := run.Parameters[k]; defined {
			logging.Debug("CI", "Suite %s defines %s, keeping its value", cfg.Name, k)
			continue
		}
		run.Parameters[k] = vars[k]
	}
	return run
}

func (i *Integrator) execute(ctx context.Context, cfg *suite.Configuration, opts executor.Options) (*executor.Result, error) {
	if i.cfg.RetryCount <= 0 {
		return i.exec.ExecuteWithRetry(ctx, cfg, opts)
	}
	policy := suite.RetryConfig{
		MaxAttempts:    i.cfg.RetryCount + 1,
		DelaySeconds:   int(i.cfg.RetryDelay.Round(time.Second) / time.Second),
		RetryOnFailure: true,
		RetryOnError:   true,
	}
	return i.exec.ExecuteAttempts(ctx, cfg, opts, policy)
}

func failedResult(name string, err error) *executor.Result {
	return &executor.Result{
		SuiteName:   name,
		ExitCode:    1,
		ReportPaths: []string{},
		Errors:      []string{err.Error()},
		Attempts:    1,
	}
}

func (i *Integrator) checkEngineConfig() {
	for _, name := range i.cfg.EngineConfigFiles {
		if _, err := os.Stat(filepath.Join(i.cfg.WorkDir, name)); err == nil {
			return
		}
	}
	logging.Warn("CI", "No engine configuration found in %s (looked for %v), using engine defaults", workDirLabel(i.cfg.WorkDir), i.cfg.EngineConfigFiles)
}

func workDirLabel(dir string) string {
	if dir == "" {
		return "the working directory"
	}
	return dir
}

func (i *Integrator) ensureDirs() {
	dirs := append([]string{}, i.cfg.ArtifactDirs...)
	if i.cfg.OutputDir != "" && len(i.cfg.OutputFormats) > 0 {
		dirs = append(dirs, i.cfg.OutputDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Warn("CI", "Failed to create artifact directory %s: %v", dir, err)
		}
	}
}

// ArtifactPath is where format is written for suite in dir.
func ArtifactPath(dir, suiteName, format string) (string, error) {
	switch format {
	case FormatJSON:
		return filepath.Join(dir, suiteName+"-result.json"), nil
	case FormatJUnit:
		return filepath.Join(dir, suiteName+"-junit.xml"), nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}

func (i *Integrator) writeArtifacts(r *Result) {
	type artifact struct {
		path   string
		format string
	}
	var planned []artifact
	for _, format := range i.cfg.OutputFormats {
		path, err := ArtifactPath(i.cfg.OutputDir, r.Suite, format)
		if err != nil {
			logging.Warn("CI", "Skipping artifact: %v", err)
			continue
		}
		planned = append(planned, artifact{path: path, format: format})
		r.Artifacts = append(r.Artifacts, path)
	}
	r.Artifacts = append(r.Artifacts, r.Execution.ReportPaths...)

	for _, a := range planned {
		var (
			data []byte
			err  error
		)
		switch a.format {
		case FormatJSON:
			data, err = r.MarshalIndent()
		case FormatJUnit:
			data, err = JUnit(r)
		}
		if err == nil {
			err = os.WriteFile(a.path, data, 0644)
		}
		if err != nil {
			logging.Error("CI", err, "Failed to write %s artifact %s", a.format, a.path)
			continue
		}
		logging.Debug("CI", "Wrote %s artifact %s", a.format, a.path)
	}
}
