package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"suitectl/internal/cli"
	"suitectl/internal/validation"
	"suitectl/internal/watcher"
)

var (
	validateOutput  cli.OutputFlags
	validateFile    string
	importOverwrite bool
	statsOutput     cli.OutputFlags
	watchDebounce   time.Duration
)

var suiteValidateCmd = &cobra.Command{
	Use:   "validate [NAME]",
	Short: "Validate a stored suite or a suite document",
	Long: `Validate runs the structural and semantic checks on a suite.

Either name a stored suite or pass --file with the path of a suite document.
The command exits with status 2 when the suite is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput.Validate(); err != nil {
			return err
		}
		if (len(args) == 0) == (validateFile == "") {
			return fmt.Errorf("specify either a suite name or --file")
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}

		var (
			name   string
			result *validation.Result
		)
		if validateFile != "" {
			r, parsed, err := ws.validator.ValidateFile(validateFile)
			if err != nil {
				return validationExit(err)
			}
			name, result = parsed.Name, r
		} else {
			name = args[0]
			if result, err = ws.manager.Validate(name); err != nil {
				return err
			}
		}

		if err := cli.NewPrinter(cmd.OutOrStdout(), validateOutput).PrintValidation(name, result); err != nil {
			return err
		}
		if !result.Valid {
			return validationExit(result.Err())
		}
		return nil
	},
}

var suiteImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Import a suite document into the suites directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		cfg, err := ws.manager.Import(args[0], importOverwrite)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported suite %s from %s", cfg.Name, args[0])))
		return nil
	},
}

var suiteExportCmd = &cobra.Command{
	Use:   "export NAME PATH",
	Short: "Write a stored suite to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		if err := ws.manager.Export(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported suite %s to %s", args[0], args[1])))
		return nil
	},
}

var suiteBackupCmd = &cobra.Command{
	Use:   "backup NAME",
	Short: "Copy a suite into the backup directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		path, err := ws.manager.Backup(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backed up suite %s to %s", args[0], path)))
		return nil
	},
}

var suiteStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show suite repository statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := statsOutput.Validate(); err != nil {
			return err
		}
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		stats, err := ws.manager.Stats()
		if err != nil {
			return err
		}
		return cli.NewPrinter(cmd.OutOrStdout(), statsOutput).PrintStats(stats)
	},
}

var suiteWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Validate suite files as they change",
	Long: `Watch the suites directory and validate every suite file that is
created or modified. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchSuites(ctx, cmd, ws)
	},
}

func watchSuites(ctx context.Context, cmd *cobra.Command, ws *workspace) error {
	dir := ws.repository.SuitesDir()
	w := watcher.New(dir, watchDebounce)
	events := make(chan watcher.Event, 64)
	if err := w.Start(ctx, events); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	printer := cli.NewPrinter(out, cli.OutputFlags{})
	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			if event.Operation == watcher.OperationDelete {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s: suite %s removed", event.Timestamp.Format(time.TimeOnly), event.Name)))
				continue
			}
			result, _, err := ws.validator.ValidateFile(event.Path)
			if err != nil {
				fmt.Fprintln(out, cli.FormatError(err))
				continue
			}
			fmt.Fprintf(out, "%s: suite %s %sd\n", event.Timestamp.Format(time.TimeOnly), event.Name, event.Operation)
			if err := printer.PrintValidation(event.Name, result); err != nil {
				return err
			}
		}
	}
}

func init() {
	cli.RegisterOutputFlags(suiteValidateCmd, &validateOutput)
	suiteValidateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Validate the suite document at this path")

	suiteImportCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace an existing suite of the same name")

	cli.RegisterOutputFlags(suiteStatsCmd, &statsOutput)

	suiteWatchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Quiet period before a changed file is validated")

	suiteCmd.AddCommand(suiteValidateCmd, suiteImportCmd, suiteExportCmd, suiteBackupCmd, suiteStatsCmd, suiteWatchCmd)
}
