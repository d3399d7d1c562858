package cli

import (
	"github.com/spf13/cobra"
)

// OutputFlags holds the output flag values shared by commands that print results.
type OutputFlags struct {
	// OutputFormat specifies the desired output format (table, wide, json, yaml)
	OutputFormat string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
}

// RegisterOutputFlags registers --output/-o, --no-headers and --quiet/-q on cmd.
func RegisterOutputFlags(cmd *cobra.Command, flags *OutputFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, wide, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
}

// Validate checks the flag values.
func (f *OutputFlags) Validate() error {
	return ValidateOutputFormat(f.OutputFormat)
}

// ShowProgress reports whether progress indicators may be shown.
func (f *OutputFlags) ShowProgress() bool {
	if f.Quiet {
		return false
	}
	format := OutputFormat(f.OutputFormat)
	return format != OutputFormatJSON && format != OutputFormatYAML
}
