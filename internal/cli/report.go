package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"suitectl/internal/ci"
	"suitectl/internal/executor"
	"suitectl/internal/manager"
	"suitectl/internal/repository"
	"suitectl/internal/validation"
	pkgstrings "suitectl/pkg/strings"
)

const (
	descLengthNormal = pkgstrings.DefaultDescriptionMaxLen
	descLengthWide   = 80
	listLength       = 40
)

func joinList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return pkgstrings.TruncateDescription(strings.Join(items, ","), listLength)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PrintValidation writes a validation report: every error and warning,
// then a one-line verdict. Wide output adds the details section.
func (p *Printer) PrintValidation(name string, result *validation.Result) error {
	if p.Structured() {
		return p.PrintData(struct {
			Name string `json:"name"`
			*validation.Result
		}{name, result})
	}

	if len(result.Errors)+len(result.Warnings) > 0 {
		t := p.Table("level", "field", "message")
		for _, issue := range result.Errors {
			t.AppendRow(text.FgRed.Sprint("error"), orDash(issue.Field), issue.Message)
		}
		for _, issue := range result.Warnings {
			t.AppendRow(text.FgYellow.Sprint("warning"), orDash(issue.Field), issue.Message)
		}
		t.Render()
	}

	if p.Wide() && len(result.Details) > 0 {
		keys := make([]string, 0, len(result.Details))
		for k := range result.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t := p.Table("detail", "value")
		for _, k := range keys {
			t.AppendRow(k, fmt.Sprint(result.Details[k]))
		}
		t.Render()
	}

	verdict := FormatSuccess(fmt.Sprintf("Suite %s is valid", name))
	if !result.Valid {
		verdict = text.FgRed.Sprintf("✗ Suite %s is invalid", name)
	}
	_, err := fmt.Fprintf(p.Out, "%s (%s, %s)\n", verdict, pluralize(len(result.Errors), "error"), pluralize(len(result.Warnings), "warning"))
	return err
}

// PrintSuites writes a suite listing.
func (p *Printer) PrintSuites(suites []manager.Details) error {
	if p.Structured() {
		return p.PrintData(suites)
	}
	if len(suites) == 0 {
		_, err := fmt.Fprintln(p.Out, "No suites found")
		return err
	}

	headers := []string{"name", "description", "paths", "include", "exclude", "parameters"}
	if p.Wide() {
		headers = append(headers, "timeout", "attempts", "environment", "profiles", "version")
	}
	t := p.Table(headers...)
	for _, s := range suites {
		desc := pkgstrings.TruncateDescription(s.Description, descLengthNormal)
		if p.Wide() {
			desc = pkgstrings.TruncateDescription(s.Description, descLengthWide)
		}
		row := []interface{}{s.Name, orDash(desc), len(s.ScenarioPaths), joinList(s.IncludeTags), joinList(s.ExcludeTags), len(s.Parameters)}
		if p.Wide() {
			row = append(row, (time.Duration(s.TimeoutSeconds) * time.Second).String(), s.MaxAttempts, orDash(s.DefaultEnvironment), joinList(s.Profiles), s.Version)
		}
		t.AppendRow(row...)
	}
	t.Render()
	return nil
}

// PrintSuite writes one suite as a key/value table.
func (p *Printer) PrintSuite(s manager.Details) error {
	if p.Structured() {
		return p.PrintData(s)
	}
	t := p.Table("field", "value")
	t.AppendRow("Name", s.Name)
	t.AppendRow("Description", orDash(s.Description))
	t.AppendRow("Version", s.Version)
	t.AppendRow("Scenario paths", strings.Join(s.ScenarioPaths, "\n"))
	t.AppendRow("Include tags", joinList(s.IncludeTags))
	t.AppendRow("Exclude tags", joinList(s.ExcludeTags))
	t.AppendRow("Tag expression", orDash(s.TagsExpression))
	t.AppendRow("Timeout", (time.Duration(s.TimeoutSeconds) * time.Second).String())
	t.AppendRow("Max attempts", s.MaxAttempts)
	t.AppendRow("Stop on first failure", s.StopOnFirstFailure)
	t.AppendRow("Default environment", orDash(s.DefaultEnvironment))
	t.AppendRow("Profiles", joinList(s.Profiles))

	names := make([]string, 0, len(s.Parameters))
	for k := range s.Parameters {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		t.AppendRow("Parameter "+k, s.Parameters[k])
	}
	t.Render()
	return nil
}

// PrintStats writes repository statistics.
func (p *Printer) PrintStats(s *repository.Stats) error {
	if p.Structured() {
		return p.PrintData(s)
	}
	t := p.Table("statistic", "value")
	t.AppendRow("Suites directory", s.SuitesDir)
	t.AppendRow("Backup directory", s.BackupDir)
	t.AppendRow("Suites", s.TotalSuites)
	t.AppendRow("Invalid files", s.InvalidFiles)
	t.AppendRow("Scenario paths", s.TotalScenarioPaths)
	t.AppendRow("Parameters", s.TotalParameters)
	t.AppendRow("Unique tags", len(s.UniqueTags))
	t.AppendRow("Total size (bytes)", s.TotalSizeBytes)
	t.AppendRow("Backups", s.BackupCount)
	lastModified := "-"
	if !s.LastModified.IsZero() {
		lastModified = s.LastModified.Format(time.RFC3339)
	}
	t.AppendRow("Last modified", lastModified)
	t.Render()
	return nil
}

// PrintRunResult writes the outcome of an engine run.
func (p *Printer) PrintRunResult(r *executor.Result) error {
	if p.Structured() {
		return p.PrintData(r)
	}
	if r.DryRun {
		_, err := fmt.Fprintf(p.Out, "Dry run of suite %s:\n  %s\n", r.SuiteName, r.Command)
		return err
	}

	t := p.Table("suite", "status", "passed", "failed", "skipped", "duration", "attempts", "exit code")
	t.AppendRow(r.SuiteName, runStatus(r), r.Passed, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond).String(), r.Attempts, r.ExitCode)
	t.Render()

	for _, e := range r.Errors {
		fmt.Fprintln(p.Out, FormatWarning(e))
	}
	if p.Wide() {
		fmt.Fprintf(p.Out, "Command: %s\n", r.Command)
		for _, path := range r.ReportPaths {
			fmt.Fprintf(p.Out, "Report: %s\n", path)
		}
	}
	return nil
}

func runStatus(r *executor.Result) string {
	switch {
	case r.TimedOut:
		return text.FgRed.Sprint("TIMEOUT")
	case r.Success():
		return text.FgGreen.Sprint("PASSED")
	default:
		return text.FgRed.Sprint("FAILED")
	}
}

// PrintCIResult writes the outcome of a CI run.
func (p *Printer) PrintCIResult(r *ci.Result) error {
	if p.Structured() {
		return p.PrintData(r)
	}
	status := text.FgGreen.Sprint("SUCCESS")
	if !r.Success {
		status = text.FgRed.Sprint("FAILURE")
	}
	t := p.Table("run", "suite", "provider", "status", "passed", "failed", "skipped", "retries")
	var passed, failed, skipped int
	if r.Execution != nil {
		passed, failed, skipped = r.Execution.Passed, r.Execution.Failed, r.Execution.Skipped
	}
	t.AppendRow(r.ID, r.Suite, r.Environment.Provider, status, passed, failed, skipped, r.RetryCount)
	t.Render()

	if r.Error != "" {
		fmt.Fprintln(p.Out, FormatWarning(r.Error))
	}
	for _, a := range r.Artifacts {
		fmt.Fprintf(p.Out, "Artifact: %s\n", a)
	}
	return nil
}

// PrintEnvironment writes a detected CI environment.
func (p *Printer) PrintEnvironment(env ci.Environment) error {
	if p.Structured() {
		return p.PrintData(env)
	}
	t := p.Table("field", "value")
	t.AppendRow("Provider", env.Provider)
	t.AppendRow("Build number", orDash(env.BuildNumber))
	t.AppendRow("Build URL", orDash(env.BuildURL))
	t.AppendRow("Branch", orDash(env.Branch))
	t.AppendRow("Commit", orDash(env.Commit))
	t.AppendRow("Job", orDash(env.JobName))
	t.AppendRow("Workspace", orDash(env.Workspace))
	t.AppendRow("Node", orDash(env.NodeName))
	t.Render()
	return nil
}
