package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"suitectl/internal/cli"
	"suitectl/internal/manager"
	"suitectl/internal/suite"
)

var (
	suiteOutput         cli.OutputFlags
	suiteDefinition     suiteFlags
	suiteDeleteForce    bool
	suiteDuplicateDesc  string
	suiteSearchCriteria manager.SearchCriteria
)

// suiteFlags are the suite fields settable from the command line. Only
// flags that were set are applied, so update leaves the rest untouched.
type suiteFlags struct {
	description        string
	paths              []string
	includeTags        []string
	excludeTags        []string
	params             []string
	removeParams       []string
	timeoutSeconds     int
	maxAttempts        int
	retryDelaySeconds  int
	retryOnFailure     bool
	retryOnError       bool
	stopOnFirstFailure bool
	defaultEnvironment string
}

func (f *suiteFlags) register(cmd *cobra.Command, update bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.description, "description", "d", "", "Suite description")
	flags.StringSliceVarP(&f.paths, "path", "p", nil, "Scenario location, e.g. tests.login or tests.login.feature (repeatable)")
	flags.StringSliceVar(&f.includeTags, "include-tag", nil, "Tag scenarios must carry (repeatable)")
	flags.StringSliceVar(&f.excludeTags, "exclude-tag", nil, "Tag scenarios must not carry (repeatable)")
	flags.StringSliceVar(&f.params, "param", nil, "Parameter as key=value (repeatable)")
	flags.IntVar(&f.timeoutSeconds, "timeout", 0, "Suite timeout in seconds")
	flags.IntVar(&f.maxAttempts, "max-attempts", 0, "Maximum attempts per run")
	flags.IntVar(&f.retryDelaySeconds, "retry-delay", 0, "Seconds to wait between attempts")
	flags.BoolVar(&f.retryOnFailure, "retry-on-failure", false, "Retry when scenarios fail")
	flags.BoolVar(&f.retryOnError, "retry-on-error", false, "Retry when the engine exits non-zero")
	flags.BoolVar(&f.stopOnFirstFailure, "stop-on-first-failure", false, "Stop the run at the first failing scenario")
	flags.StringVar(&f.defaultEnvironment, "environment", "", "Default environment")
	if update {
		flags.StringSliceVar(&f.removeParams, "remove-param", nil, "Parameter to remove (repeatable)")
	}
}

func (f *suiteFlags) apply(cmd *cobra.Command, cfg *suite.Configuration) error {
	changed := cmd.Flags().Changed

	if changed("description") {
		cfg.Description = f.description
	}
	if changed("path") {
		cfg.ScenarioPaths = f.paths
	}
	if changed("include-tag") {
		cfg.IncludeTags = f.includeTags
	}
	if changed("exclude-tag") {
		cfg.ExcludeTags = f.excludeTags
	}
	if changed("param") {
		params, err := parseKeyValues(f.params)
		if err != nil {
			return err
		}
		for k, v := range params {
			cfg.Parameters[k] = v
		}
	}
	for _, k := range f.removeParams {
		delete(cfg.Parameters, k)
	}

	exec := &cfg.Execution
	if changed("timeout") {
		exec.Timeout.SuiteSeconds = f.timeoutSeconds
		exec.LegacyTimeoutSeconds = 0
	}
	if changed("max-attempts") {
		exec.Retry.MaxAttempts = f.maxAttempts
		exec.LegacyRetryCount = 0
	}
	if changed("retry-delay") {
		exec.Retry.DelaySeconds = f.retryDelaySeconds
	}
	if changed("retry-on-failure") {
		exec.Retry.RetryOnFailure = f.retryOnFailure
	}
	if changed("retry-on-error") {
		exec.Retry.RetryOnError = f.retryOnError
	}
	if changed("stop-on-first-failure") {
		exec.StopOnFirstFailure = f.stopOnFirstFailure
		exec.LegacyStopOnFailure = false
	}
	if changed("environment") {
		exec.Environment.Default = f.defaultEnvironment
	}
	cfg.Normalize()
	return nil
}

// checkBeforeSave prints the full validation report when there is
// anything to report and refuses invalid suites.
func checkBeforeSave(cmd *cobra.Command, ws *workspace, cfg *suite.Configuration) error {
	result := ws.manager.ValidateConfiguration(cfg)
	if len(result.Errors) > 0 || len(result.Warnings) > 0 {
		p := cli.NewPrinter(cmd.OutOrStdout(), cli.OutputFlags{})
		if err := p.PrintValidation(cfg.Name, result); err != nil {
			return err
		}
	}
	if !result.Valid {
		return validationExit(fmt.Errorf("suite %s is invalid: %w", cfg.Name, result.Err()))
	}
	return nil
}

var suiteCmd = &cobra.Command{
	Use:     "suite",
	Aliases: []string{"suites"},
	Short:   "Manage test suites",
}

var suiteCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a suite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		cfg := suite.New(args[0])
		if err := suiteDefinition.apply(cmd, cfg); err != nil {
			return err
		}
		if err := checkBeforeSave(cmd, ws, cfg); err != nil {
			return err
		}
		if err := ws.manager.Create(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created suite %s", cfg.Name)))
		return nil
	},
}

var suiteUpdateCmd = &cobra.Command{
	Use:   "update NAME",
	Short: "Update a suite; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		cfg, err := ws.manager.Get(args[0])
		if err != nil {
			return err
		}
		if err := suiteDefinition.apply(cmd, cfg); err != nil {
			return err
		}
		if err := checkBeforeSave(cmd, ws, cfg); err != nil {
			return err
		}
		if err := ws.manager.Update(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated suite %s", cfg.Name)))
		return nil
	},
}

var suiteGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Show a suite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := suiteOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		details, err := ws.manager.Details(args[0])
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), suiteOutput).PrintSuite(*details)
	},
}

var suiteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List suites",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := suiteOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		suites, err := ws.manager.List()
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), suiteOutput).PrintSuites(suites)
	},
}

var suiteSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find suites by name, tag or parameter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := suiteOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		suites, err := ws.manager.Search(suiteSearchCriteria)
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), suiteOutput).PrintSuites(suites)
	},
}

var suiteDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a suite after backing it up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		backup, err := ws.manager.Delete(args[0], suiteDeleteForce)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted suite %s", args[0])))
		if backup != "" {
			fmt.Fprintf(out, "Backup: %s\n", backup)
		} else {
			fmt.Fprintln(out, cli.FormatWarning("No backup was written"))
		}
		return nil
	},
}

var suiteDuplicateCmd = &cobra.Command{
	Use:   "duplicate SOURCE TARGET",
	Short: "Copy a suite under a new name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		dup, err := ws.manager.Duplicate(args[0], args[1], suiteDuplicateDesc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created suite %s from %s", dup.Name, args[0])))
		return nil
	},
}

func init() {
	suiteDefinition.register(suiteCreateCmd, false)
	suiteDefinition.register(suiteUpdateCmd, true)

	for _, c := range []*cobra.Command{suiteGetCmd, suiteListCmd, suiteSearchCmd} {
		cli.RegisterOutputFlags(c, &suiteOutput)
	}

	suiteDeleteCmd.Flags().BoolVarP(&suiteDeleteForce, "force", "f", false, "Delete large suites and delete even if the backup fails")
	suiteDuplicateCmd.Flags().StringVarP(&suiteDuplicateDesc, "description", "d", "", "Description of the copy (default \"Copy of SOURCE\")")

	searchFlags := suiteSearchCmd.Flags()
	searchFlags.StringVar(&suiteSearchCriteria.Name, "name", "", "Case-insensitive name substring")
	searchFlags.StringVar(&suiteSearchCriteria.IncludeTag, "include-tag", "", "Include tag the suite must have")
	searchFlags.StringVar(&suiteSearchCriteria.ExcludeTag, "exclude-tag", "", "Exclude tag the suite must have")
	searchFlags.StringVar(&suiteSearchCriteria.ParameterName, "param-name", "", "Parameter the suite must define")
	searchFlags.StringVar(&suiteSearchCriteria.ParameterValue, "param-value", "", "Parameter value the suite must contain")

	suiteCmd.AddCommand(suiteCreateCmd, suiteUpdateCmd, suiteGetCmd, suiteListCmd, suiteSearchCmd, suiteDeleteCmd, suiteDuplicateCmd)
	rootCmd.AddCommand(suiteCmd)
}
