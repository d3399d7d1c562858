package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"suitectl/internal/ci"
	"suitectl/internal/cli"
	"suitectl/internal/executor"
)

var (
	ciOutput        cli.OutputFlags
	ciDetectOutput  cli.OutputFlags
	ciRunOptions    executor.Options
	ciRetryCount    int
	ciFailFast      bool
	ciContinueOnErr bool
	ciOutputDir     string
	ciFormats       []string
	ciWebhooks      []string
	ciVariables     []string
)

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Run suites in continuous integration",
}

var ciRunCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run a suite with CI reporting",
	Long: `Run a suite the way a CI job should: detect the CI provider, pass the
build metadata to the engine as CI_* variables, retry per the CI retry
count, write JSON and JUnit results and notify webhooks.

Flags override the ci section of the configuration file. The command exits
with the run's exit code when the run is not successful.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ciOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		ciCfg, err := ciConfigFromFlags(cmd, ws.config.CIConfig())
		if err != nil {
			return err
		}

		integrator := ci.New(ciCfg, ws.executor)
		stop := cli.StartSpinner(cmd.ErrOrStderr(), ciOutput.ShowProgress(), fmt.Sprintf("Running suite %s on %s...", args[0], integrator.Environment().Provider))
		result, err := integrator.RunSuite(cmd.Context(), args[0], ciRunOptions)
		stop()
		if err != nil {
			return err
		}

		if err := cli.NewPrinter(cmd.OutOrStdout(), ciOutput).PrintCIResult(result); err != nil {
			return err
		}
		if code := result.ExitCode(); code != ExitCodeSuccess {
			return &ExitError{Code: code, Err: fmt.Errorf("suite %s failed in CI", result.Suite)}
		}
		return nil
	},
}

// ciConfigFromFlags applies the flags that were set on top of cfg.
func ciConfigFromFlags(cmd *cobra.Command, cfg ci.Config) (ci.Config, error) {
	changed := cmd.Flags().Changed
	if changed("retry-count") {
		if ciRetryCount < 0 {
			return cfg, fmt.Errorf("--retry-count must not be negative")
		}
		cfg.RetryCount = ciRetryCount
	}
	if changed("fail-fast") {
		cfg.FailOnAnyFailure = ciFailFast
	}
	if changed("continue-on-error") {
		cfg.ContinueOnError = ciContinueOnErr
	}
	if changed("output-dir") {
		cfg.OutputDir = ciOutputDir
	}
	if changed("format") {
		for _, f := range ciFormats {
			if f != ci.FormatJSON && f != ci.FormatJUnit {
				return cfg, fmt.Errorf("unsupported --format %q (use %s or %s)", f, ci.FormatJSON, ci.FormatJUnit)
			}
		}
		cfg.OutputFormats = ciFormats
	}
	if changed("webhook") {
		cfg.Webhooks = append(cfg.Webhooks, ciWebhooks...)
	}
	if changed("var") {
		vars, err := parseKeyValues(ciVariables)
		if err != nil {
			return cfg, err
		}
		if cfg.Variables == nil {
			cfg.Variables = map[string]string{}
		}
		for k, v := range vars {
			cfg.Variables[k] = v
		}
	}
	return cfg, nil
}

var ciDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected CI environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ciDetectOutput.Validate(); err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), ciDetectOutput).PrintEnvironment(ci.DetectFromProcess())
	},
}

func init() {
	cli.RegisterOutputFlags(ciRunCmd, &ciOutput)
	cli.RegisterOutputFlags(ciDetectCmd, &ciDetectOutput)

	flags := ciRunCmd.Flags()
	flags.StringVarP(&ciRunOptions.Environment, "environment", "e", "", "Environment to run against (default: the suite default)")
	flags.StringVar(&ciRunOptions.LogLevel, "engine-log-level", "", "Engine logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	flags.DurationVar(&ciRunOptions.Timeout, "timeout", 0, "Override the suite timeout, e.g. 10m")
	flags.IntVar(&ciRetryCount, "retry-count", 0, "Additional attempts after a failed run")
	flags.BoolVar(&ciFailFast, "fail-fast", false, "Fail the build on any failed scenario")
	flags.BoolVar(&ciContinueOnErr, "continue-on-error", false, "Never fail the build")
	flags.StringVar(&ciOutputDir, "output-dir", "", "Directory for result documents")
	flags.StringSliceVar(&ciFormats, "format", nil, "Result documents to write (json, junit)")
	flags.StringSliceVar(&ciWebhooks, "webhook", nil, "Webhook URL to notify (repeatable)")
	flags.StringSliceVar(&ciVariables, "var", nil, "Extra engine variable as key=value (repeatable)")

	ciCmd.AddCommand(ciRunCmd, ciDetectCmd)
	rootCmd.AddCommand(ciCmd)
}
