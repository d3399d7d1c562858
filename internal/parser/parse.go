package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"suitectl/internal/suite"
	"suitectl/pkg/logging"
)

// Legacy parameter names holding execution policy in version 1.0 documents.
const (
	LegacyParamStopOnFirstFailure = "stop_on_first_failure"
	LegacyParamRetryCount         = "retry_count"
	LegacyParamTimeoutSeconds     = "timeout_seconds"
	LegacyParamEnvironment        = "environment"
)

// Parse reads and parses the suite document at path.
func Parse(path string) (*suite.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite document %s: %w", path, err)
	}

	cfg, err := ParseBytes(data)
	if err != nil {
		var structErr *StructureError
		if errors.As(err, &structErr) {
			structErr.Path = path
		}
		return nil, err
	}

	logging.Debug("Parser", "Parsed suite %s from %s", cfg.Name, path)
	return cfg, nil
}

// ParseBytes parses a suite document. Structural problems are returned as
// a *StructureError.
func ParseBytes(data []byte) (*suite.Configuration, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	return doc.toConfiguration(), nil
}

func (d *document) toConfiguration() *suite.Configuration {
	cfg := &suite.Configuration{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Version:     strings.TrimSpace(d.Version),
		Parameters:  map[string]string{},
	}
	if cfg.Version == "" {
		cfg.Version = suite.LegacyFormatVersion
	}

	if d.Parameters != nil {
		for _, p := range d.Parameters.Parameters {
			cfg.Parameters[strings.TrimSpace(deref(p.Name))] = deref(p.Value)
		}
	}

	if d.Execution != nil {
		cfg.Execution = d.Execution.toExecutionConfig()
	} else {
		cfg.Execution = legacyExecutionConfig(cfg.Parameters)
	}

	for _, t := range d.Tests {
		for _, c := range t.Classes {
			cfg.ScenarioPaths = append(cfg.ScenarioPaths, strings.TrimSpace(deref(c.Name)))
		}
		for _, inc := range t.Include {
			cfg.IncludeTags = append(cfg.IncludeTags, strings.TrimSpace(deref(inc.Name)))
		}
		for _, exc := range t.Exclude {
			cfg.ExcludeTags = append(cfg.ExcludeTags, strings.TrimSpace(deref(exc.Name)))
		}
	}

	cfg.Normalize()
	return cfg
}

func (e *executionElement) toExecutionConfig() suite.ExecutionConfig {
	exec := suite.ExecutionConfig{
		StopOnFirstFailure: e.StopOnFirstFailure,
		ContinueOnError:    e.ContinueOnError,
		MaxParallelThreads: e.MaxParallelThreads,
	}
	if e.Timeout != nil {
		exec.Timeout = suite.TimeoutConfig{
			SuiteSeconds:    e.Timeout.Suite,
			ScenarioSeconds: e.Timeout.Scenario,
			StepSeconds:     e.Timeout.Step,
		}
	}
	if e.Retry != nil {
		exec.Retry = suite.RetryConfig{
			MaxAttempts:    e.Retry.MaxAttempts,
			DelaySeconds:   e.Retry.DelaySeconds,
			RetryOnFailure: e.Retry.RetryOnFailure,
			RetryOnError:   e.Retry.RetryOnError,
		}
	}
	if env := e.Environment; env != nil {
		exec.Environment = suite.EnvironmentConfig{
			Default:   strings.TrimSpace(env.Default),
			Variables: map[string]string{},
			Profiles:  map[string]suite.EnvironmentProfile{},
		}
		for _, v := range env.Variables {
			key := suite.VariableKey(strings.TrimSpace(v.Environment), strings.TrimSpace(deref(v.Name)))
			exec.Environment.Variables[key] = deref(v.Value)
		}
		for _, p := range env.Profiles {
			name := strings.TrimSpace(deref(p.Name))
			profile := suite.EnvironmentProfile{
				Name:       name,
				Extends:    strings.TrimSpace(p.Extends),
				Properties: map[string]string{},
			}
			for _, prop := range p.Properties {
				profile.Properties[strings.TrimSpace(deref(prop.Name))] = deref(prop.Value)
			}
			exec.Environment.Profiles[name] = profile
		}
	}
	return exec
}

// legacyExecutionConfig builds the execution policy from legacy parameters
// and removes the consumed ones from params. Unparsable values stay in params.
func legacyExecutionConfig(params map[string]string) suite.ExecutionConfig {
	var exec suite.ExecutionConfig

	if raw, ok := params[LegacyParamStopOnFirstFailure]; ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			exec.LegacyStopOnFailure = v
			delete(params, LegacyParamStopOnFirstFailure)
		} else {
			logging.Warn("Parser", "Ignoring legacy parameter %s=%q: not a boolean", LegacyParamStopOnFirstFailure, raw)
		}
	}
	if raw, ok := params[LegacyParamRetryCount]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v >= 0 {
			exec.LegacyRetryCount = v
			delete(params, LegacyParamRetryCount)
		} else {
			logging.Warn("Parser", "Ignoring legacy parameter %s=%q: not a non-negative integer", LegacyParamRetryCount, raw)
		}
	}
	if raw, ok := params[LegacyParamTimeoutSeconds]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v >= 0 {
			exec.LegacyTimeoutSeconds = v
			delete(params, LegacyParamTimeoutSeconds)
		} else {
			logging.Warn("Parser", "Ignoring legacy parameter %s=%q: not a non-negative integer", LegacyParamTimeoutSeconds, raw)
		}
	}
	if raw, ok := params[LegacyParamEnvironment]; ok {
		exec.Environment.Default = strings.TrimSpace(raw)
		delete(params, LegacyParamEnvironment)
	}

	return exec
}
