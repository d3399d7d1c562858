package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"suitectl/internal/cli"
	"suitectl/internal/executor"
)

var (
	runOutput  cli.OutputFlags
	runOptions executor.Options
	runNoRetry bool
)

var runCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run a suite through the test engine",
	Long: `Run executes a stored suite with the configured test engine.

The suite's retry policy applies unless --no-retry is given. The command
exits with the engine's exit code when the run fails and with 124 when it
times out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		cfg, err := ws.executor.ResolveSuite(args[0])
		if err != nil {
			return err
		}

		stop := cli.StartSpinner(cmd.ErrOrStderr(), runOutput.ShowProgress() && !runOptions.DryRun, fmt.Sprintf("Running suite %s...", cfg.Name))
		var result *executor.Result
		if runNoRetry {
			result, err = ws.executor.Execute(cmd.Context(), cfg, runOptions)
		} else {
			result, err = ws.executor.ExecuteWithRetry(cmd.Context(), cfg, runOptions)
		}
		stop()
		if err != nil {
			return err
		}

		if err := cli.NewPrinter(cmd.OutOrStdout(), runOutput).PrintRunResult(result); err != nil {
			return err
		}
		return runExit(result)
	},
}

// runExit maps an unsuccessful result to its exit code.
func runExit(result *executor.Result) error {
	switch {
	case result.DryRun, result.Success():
		return nil
	case result.TimedOut:
		return &ExitError{Code: ExitCodeTimeout, Err: result.Err()}
	case result.ExitCode != 0:
		return &ExitError{Code: result.ExitCode, Err: result.Err()}
	default:
		return &ExitError{Code: ExitCodeError, Err: fmt.Errorf("suite %s: %d scenarios failed", result.SuiteName, result.Failed)}
	}
}

func init() {
	cli.RegisterOutputFlags(runCmd, &runOutput)

	flags := runCmd.Flags()
	flags.StringVarP(&runOptions.Environment, "environment", "e", "", "Environment to run against (default: the suite default)")
	flags.BoolVar(&runOptions.DryRun, "dry-run", false, "Print the engine command without running it")
	flags.BoolVarP(&runOptions.Verbose, "verbose", "v", false, "Run the engine in verbose mode")
	flags.BoolVar(&runOptions.NoCapture, "no-capture", false, "Do not capture engine stdout")
	flags.StringVar(&runOptions.LogLevel, "engine-log-level", "", "Engine logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	flags.DurationVar(&runOptions.Timeout, "timeout", 0, "Override the suite timeout, e.g. 10m")
	flags.BoolVar(&runNoRetry, "no-retry", false, "Run once, ignoring the suite retry policy")

	rootCmd.AddCommand(runCmd)
}
