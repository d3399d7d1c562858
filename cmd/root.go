package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"suitectl/internal/config"
	"suitectl/internal/executor"
	"suitectl/internal/manager"
	"suitectl/internal/parser"
	"suitectl/internal/repository"
	"suitectl/pkg/logging"
)

// Exit codes for CLI commands. A failed run exits with the engine's own
// exit code instead.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidation indicates a suite failed validation.
	ExitCodeValidation = 2
	// ExitCodeTimeout indicates the engine was stopped on timeout.
	ExitCodeTimeout = executor.ExitCodeTimeout
)

// ExitError carries the exit code for an outcome that is not a plain failure,
// such as a failed test run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogFormat  string
)

// rootCmd represents the base command for the suitectl application.
var rootCmd = &cobra.Command{
	Use:   "suitectl",
	Short: "Manage and run acceptance test suites",
	Long: `suitectl manages named test suites (scenario locations, tag filters,
environment variables and execution policy) stored as XML documents, and
runs them through a behave-style test engine, locally or in CI.`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "suitectl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if executor.IsTimeout(err) {
		return ExitCodeTimeout
	}

	var (
		repoValidation *repository.ValidationError
		invariant      *manager.InvariantError
		structure      *parser.StructureError
	)
	if errors.As(err, &repoValidation) || errors.As(err, &invariant) || errors.As(err, &structure) {
		return ExitCodeValidation
	}

	return ExitCodeError
}

// initLogging sets up logging from the flags, falling back to the
// logging section of the configuration file for flags left unset.
func initLogging(cmd *cobra.Command, args []string) error {
	level, format := rootLogLevel, rootLogFormat

	flags := cmd.Flags()
	if !flags.Changed("log-level") || !flags.Changed("log-format") {
		if cfg, err := config.LoadConfig(rootConfigPath); err == nil {
			if !flags.Changed("log-level") && cfg.Logging.Level != "" {
				level = cfg.Logging.Level
			}
			if !flags.Changed("log-format") && cfg.Logging.Format != "" {
				format = cfg.Logging.Format
			}
		}
	}

	logLevel, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logFormat, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}
	logging.InitForCLIWithFormat(logLevel, logFormat, cmd.ErrOrStderr())
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

func validationExit(err error) error {
	return &ExitError{Code: ExitCodeValidation, Err: err}
}
