package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a plain table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatWide formats output as a table with additional columns
	OutputFormatWide OutputFormat = "wide"
	// OutputFormatJSON formats output as indented JSON
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML converted from JSON
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatWide,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatWide, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", format)
	}
}

// Printer writes command results in one output format.
type Printer struct {
	Out       io.Writer
	Format    OutputFormat
	NoHeaders bool
}

// NewPrinter creates a printer for the given flags.
func NewPrinter(out io.Writer, flags OutputFlags) *Printer {
	format := OutputFormat(flags.OutputFormat)
	if format == "" {
		format = OutputFormatTable
	}
	return &Printer{Out: out, Format: format, NoHeaders: flags.NoHeaders}
}

// Structured reports whether the printer emits json or yaml.
func (p *Printer) Structured() bool {
	return p.Format == OutputFormatJSON || p.Format == OutputFormatYAML
}

// Wide reports whether tables should carry their extra columns.
func (p *Printer) Wide() bool {
	return p.Format == OutputFormatWide
}

// PrintData writes data as JSON or YAML. It is an error to call it for table formats.
func (p *Printer) PrintData(data interface{}) error {
	switch p.Format {
	case OutputFormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format as JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.Out, string(out))
		return err
	case OutputFormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to format as YAML: %w", err)
		}
		_, err = fmt.Fprint(p.Out, string(out))
		return err
	}
	return fmt.Errorf("output format %q is not a data format", p.Format)
}

// Table starts a table with the printer's header setting.
func (p *Printer) Table(headers ...string) *Table {
	return NewTable(p.Out, p.NoHeaders, headers...)
}
