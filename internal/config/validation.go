package config

import (
	"fmt"
	"net/url"
	"strings"

	"suitectl/internal/ci"
	"suitectl/internal/template"
	"suitectl/pkg/logging"
)

var engineLogLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "CRITICAL": true,
}

// Validate checks c and collects every problem. filePath is used for error context only.
func Validate(c SuitectlConfig, filePath string) *ConfigurationErrorCollection {
	errs := NewConfigurationErrorCollection()

	if strings.TrimSpace(c.Storage.SuitesDir) == "" {
		errs.AddError(filePath, "storage.suitesDir", "is required")
	}

	if len(c.Engine.Command) == 0 || strings.TrimSpace(c.Engine.Command[0]) == "" {
		errs.AddError(filePath, "engine.command", "must name the engine executable")
	}
	if strings.ContainsAny(c.Engine.ScenarioExtension, `/\`) {
		errs.AddError(filePath, "engine.scenarioExtension", "must be a file extension, not a path")
	}
	if c.Engine.LogLevel != "" && !engineLogLevels[strings.ToUpper(c.Engine.LogLevel)] {
		errs.AddError(filePath, "engine.logLevel", fmt.Sprintf("unknown level %q", c.Engine.LogLevel))
	}

	validateCI(errs, c.CI, filePath)

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.AddError(filePath, "logging.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs.AddError(filePath, "logging.format", err.Error())
	}

	return errs
}

func validateCI(errs *ConfigurationErrorCollection, c CIConfig, filePath string) {
	if c.RetryCount < 0 {
		errs.AddError(filePath, "ci.retryCount", "cannot be negative")
	}
	if c.RetryDelay < 0 {
		errs.AddError(filePath, "ci.retryDelay", "cannot be negative")
	}
	if c.NotifyTimeout < 0 {
		errs.AddError(filePath, "ci.notifyTimeout", "cannot be negative")
	}
	for _, format := range c.OutputFormats {
		if format != ci.FormatJSON && format != ci.FormatJUnit {
			errs.Add(NewConfigurationErrorWithDetails(filePath, "ci.outputFormats", "validation",
				fmt.Sprintf("unsupported format %q", format), "",
				[]string{fmt.Sprintf("Use %q or %q", ci.FormatJSON, ci.FormatJUnit)}))
		}
	}
	for _, hook := range c.Webhooks {
		u, err := url.Parse(hook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.AddError(filePath, "ci.webhooks", fmt.Sprintf("%q is not an http(s) URL", hook))
		}
	}
	if c.NotificationTemplate != "" {
		if err := template.New().Validate("notificationTemplate", c.NotificationTemplate); err != nil {
			errs.AddError(filePath, "ci.notificationTemplate", err.Error())
		}
	}
}
