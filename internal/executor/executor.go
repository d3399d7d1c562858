package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"suitectl/internal/scenario"
	"suitectl/internal/suite"
	"suitectl/internal/validation"
	"suitectl/pkg/logging"
	pkgstrings "suitectl/pkg/strings"
)

// DefaultEngineCommand is the engine entry point used when none is configured.
const DefaultEngineCommand = "behave"

// maxOutputBytes bounds the engine output kept on a Result.
const maxOutputBytes = 64 * 1024

// Config describes the engine installation.
type Config struct {
	// Command is the engine entry point and any fixed leading arguments.
	Command []string
	// WorkDir is where the engine runs; empty means the current directory.
	WorkDir string
	// ScenarioRoot is the directory scenario references resolve against.
	ScenarioRoot string
	// ScenarioExtension is the scenario file extension, without the dot.
	ScenarioExtension string
	// LogLevel is passed to the engine when Options.LogLevel is empty.
	LogLevel  string
	Artifacts ArtifactLocations
}

// SuiteSource loads suites by name.
type SuiteSource interface {
	Get(name string) (*suite.Configuration, error)
}

// Executor runs suites through the engine.
type Executor struct {
	cfg       Config
	resolver  *scenario.Resolver
	validator *validation.Validator
	source    SuiteSource
	runner    EngineRunner
	env       EnvironmentWriter
	parser    SummaryParser
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner sets the engine runner.
func WithRunner(r EngineRunner) Option {
	return func(e *Executor) { e.runner = r }
}

// WithEnvironment sets where run variables are written.
func WithEnvironment(w EnvironmentWriter) Option {
	return func(e *Executor) { e.env = w }
}

// WithSummaryParser sets the engine output parser.
func WithSummaryParser(p SummaryParser) Option {
	return func(e *Executor) { e.parser = p }
}

// WithSleep sets the function used to wait between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// WithClock sets the clock used to time runs.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithSuiteSource sets where ResolveSuite loads suites from.
func WithSuiteSource(s SuiteSource) Option {
	return func(e *Executor) { e.source = s }
}

// New creates an executor. By default it runs the engine with os/exec and
// writes variables to the process environment.
func New(cfg Config, opts ...Option) *Executor {
	if len(cfg.Command) == 0 {
		cfg.Command = []string{DefaultEngineCommand}
	}
	e := &Executor{
		cfg:       cfg,
		resolver:  scenario.NewResolver(cfg.ScenarioRoot, cfg.ScenarioExtension),
		validator: validation.New(nil),
		runner:    &ExecRunner{},
		env:       ProcessEnvironment{},
		parser:    TextSummaryParser{},
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ResolveSuite loads the named suite and checks it can be run. Missing
// scenario paths are not checked here; Execute warns about them.
func (e *Executor) ResolveSuite(name string) (*suite.Configuration, error) {
	if e.source == nil {
		return nil, &ExecutionError{Kind: KindConfiguration, Suite: name, Err: errors.New("no suite source configured")}
	}
	cfg, err := e.source.Get(name)
	if err != nil {
		return nil, &ExecutionError{Kind: KindConfiguration, Suite: name, Err: err}
	}
	if result := e.validator.Validate(cfg); !result.Valid {
		return nil, &ExecutionError{Kind: KindConfiguration, Suite: name, Err: result.Err()}
	}
	return cfg, nil
}

// BuildCommand builds the engine command line for cfg. It also returns the
// scenario references that do not exist.
func (e *Executor) BuildCommand(cfg *suite.Configuration, opts Options) (Command, []string) {
	targets, missing := e.resolver.Targets(cfg.ScenarioPaths)
	if len(targets) == 0 && e.cfg.ScenarioRoot != "" {
		targets = []string{e.cfg.ScenarioRoot}
	}

	args := append([]string{}, e.cfg.Command[1:]...)
	args = append(args, targets...)

	if expr := scenario.TagsExpression(cfg.IncludeTags, cfg.ExcludeTags); expr != "" {
		args = append(args, "--tags="+expr)
	}

	vars := Effective(ResolveEnvironment(cfg, SelectedEnvironment(cfg, opts)))
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-D", k+"="+vars[k])
	}

	if cfg.Execution.StopOnFirstFailure {
		args = append(args, "--stop")
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.NoCapture {
		args = append(args, "--no-capture")
	}
	level := opts.LogLevel
	if level == "" {
		level = e.cfg.LogLevel
	}
	if level != "" {
		args = append(args, "--logging-level="+strings.ToUpper(level))
	}

	return Command{Name: e.cfg.Command[0], Args: args, Dir: e.cfg.WorkDir}, missing
}

// Timeout is the wall-clock limit of one run.
func Timeout(cfg *suite.Configuration, opts Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return cfg.Execution.EffectiveTimeout()
}

// Execute runs cfg once. A timeout is reported as a result with TimedOut
// set and exit code ExitCodeTimeout. An error is returned only when the
// engine could not be run.
func (e *Executor) Execute(ctx context.Context, cfg *suite.Configuration, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, &ExecutionError{Kind: KindConfiguration, Err: errors.New("suite configuration is missing")}
	}
	defer logging.Timed("Executor", "suite %s", cfg.Name)()

	cmd, missing := e.BuildCommand(cfg, opts)
	for _, ref := range missing {
		logging.Warn("Executor", "Scenario path %s of suite %s does not exist", ref, cfg.Name)
	}

	if opts.DryRun {
		logging.Info("Executor", "Dry run of suite %s: %s", cfg.Name, cmd.String())
		return &Result{
			SuiteName:   cfg.Name,
			Command:     cmd.String(),
			ReportPaths: []string{},
			Errors:      []string{},
			Attempts:    1,
			DryRun:      true,
		}, nil
	}

	for _, a := range ResolveEnvironment(cfg, SelectedEnvironment(cfg, opts)) {
		if err := e.env.Setenv(a.Key, a.Value); err != nil {
			return nil, &ExecutionError{Kind: KindConfiguration, Suite: cfg.Name, Err: fmt.Errorf("failed to set %s: %w", a.Key, err)}
		}
	}

	timeout := Timeout(cfg, opts)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info("Executor", "Running suite %s: %s", cfg.Name, cmd.String())
	start := e.now()
	stdout, stderr, exitCode, err := e.runner.Run(runCtx, cmd)
	duration := e.now().Sub(start)

	result := &Result{
		SuiteName:   cfg.Name,
		ExitCode:    exitCode,
		Duration:    duration,
		Output:      pkgstrings.Tail(pkgstrings.JoinNonEmpty("\n", stdout, stderr), maxOutputBytes),
		ReportPaths: []string{},
		Errors:      []string{},
		Command:     cmd.String(),
		Attempts:    1,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		result.ExitCode = ExitCodeTimeout
		result.TimedOut = true
		result.Errors = append(result.Errors, fmt.Sprintf("suite timed out after %s", timeout))
		logging.Warn("Executor", "Suite %s timed out after %s", cfg.Name, timeout)
		return result, nil
	}
	if err != nil {
		return nil, &ExecutionError{Kind: KindStart, Suite: cfg.Name, ExitCode: exitCode, Err: err}
	}

	counts := e.parser.ParseSummary(stdout + "\n" + stderr)
	result.Passed, result.Failed, result.Skipped = counts.Passed, counts.Failed, counts.Skipped
	result.ReportPaths = append(result.ReportPaths, e.cfg.Artifacts.Discover(e.cfg.WorkDir)...)

	if exitCode != 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("engine exited with code %d", exitCode))
		if last := lastLine(stderr); last != "" {
			result.Errors = append(result.Errors, last)
		}
	}

	logging.Info("Executor", "Suite %s finished: exit=%d passed=%d failed=%d skipped=%d", cfg.Name, exitCode, result.Passed, result.Failed, result.Skipped)
	return result, nil
}

// ExecuteWithRetry runs cfg up to Retry.MaxAttempts times. An attempt is
// retried when the engine exited non-zero (or could not start) and
// RetryOnError is set, or when scenarios failed and RetryOnFailure is set.
// The last attempt's outcome is returned.
func (e *Executor) ExecuteWithRetry(ctx context.Context, cfg *suite.Configuration, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, &ExecutionError{Kind: KindConfiguration, Err: errors.New("suite configuration is missing")}
	}
	return e.executeAttempts(ctx, cfg, opts, cfg.Execution.Retry)
}

// ExecuteAttempts is ExecuteWithRetry with an explicit retry policy.
func (e *Executor) ExecuteAttempts(ctx context.Context, cfg *suite.Configuration, opts Options, policy suite.RetryConfig) (*Result, error) {
	if cfg == nil {
		return nil, &ExecutionError{Kind: KindConfiguration, Err: errors.New("suite configuration is missing")}
	}
	return e.executeAttempts(ctx, cfg, opts, policy)
}

func (e *Executor) executeAttempts(ctx context.Context, cfg *suite.Configuration, opts Options, policy suite.RetryConfig) (*Result, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		result  *Result
		err     error
		attempt int
	)
	for attempt = 1; ; attempt++ {
		result, err = e.Execute(ctx, cfg, opts)
		if attempt >= maxAttempts || !shouldRetry(policy, result, err) {
			break
		}
		logging.Info("Executor", "Attempt %d/%d of suite %s failed, retrying in %s", attempt, maxAttempts, cfg.Name, policy.Delay())
		if sleepErr := e.sleep(ctx, policy.Delay()); sleepErr != nil {
			break
		}
	}

	if result != nil {
		result.Attempts = attempt
	}
	return result, err
}

func shouldRetry(policy suite.RetryConfig, result *Result, err error) bool {
	if err != nil {
		var execErr *ExecutionError
		if errors.As(err, &execErr) && execErr.Kind == KindConfiguration {
			return false
		}
		return policy.RetryOnError
	}
	if result == nil || result.DryRun {
		return false
	}
	return (result.ExitCode != 0 && policy.RetryOnError) || (result.Failed > 0 && policy.RetryOnFailure)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
