package validation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"suitectl/internal/parser"
	"suitectl/internal/scenario"
	"suitectl/internal/suite"
	"suitectl/pkg/logging"
)

// PathResolver resolves scenario-location references to scenario files.
type PathResolver interface {
	ResolveAll(refs []string) ([]string, error)
}

// Validator runs the structural and semantic checks on suites.
type Validator struct {
	resolver PathResolver
}

// New creates a validator. A nil resolver disables the scenario-path existence check.
func New(resolver PathResolver) *Validator {
	return &Validator{resolver: resolver}
}

// ValidateFile runs both passes on the suite document at path. Structural
// problems are returned as an error; semantic problems are in the result.
func (v *Validator) ValidateFile(path string) (*Result, *suite.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read suite document %s: %w", path, err)
	}
	result, cfg, err := v.ValidateDocument(data)
	if err != nil {
		var structErr *parser.StructureError
		if errors.As(err, &structErr) {
			structErr.Path = path
		}
		return nil, nil, err
	}
	result.Details["file"] = path
	return result, cfg, nil
}

// ValidateDocument runs the structural pass on raw document bytes followed
// by the semantic pass on the parsed configuration.
func (v *Validator) ValidateDocument(data []byte) (*Result, *suite.Configuration, error) {
	cfg, err := parser.ParseBytes(data)
	if err != nil {
		return nil, nil, err
	}
	return v.Validate(cfg), cfg, nil
}

// Validate runs the semantic pass. Every check runs; all findings are reported.
func (v *Validator) Validate(cfg *suite.Configuration) *Result {
	result := NewResult()
	if cfg == nil {
		result.AddError("", "suite configuration is missing")
		return result
	}

	result.Details["name"] = cfg.Name
	result.Details["scenarioPaths"] = len(cfg.ScenarioPaths)
	result.Details["includeTags"] = len(cfg.IncludeTags)
	result.Details["excludeTags"] = len(cfg.ExcludeTags)
	result.Details["parameters"] = len(cfg.Parameters)

	errs, warnings := ValidateName(cfg.Name)
	result.Errors = append(result.Errors, errs...)
	result.Warnings = append(result.Warnings, warnings...)
	if len(errs) > 0 {
		result.Valid = false
	}

	if !cfg.HasContent() {
		result.AddError("scenarioPaths", "at least one scenario path or include tag is required")
	}

	v.validateScenarioPaths(cfg, result)
	validateTags(cfg, result)
	validateParameters(cfg, result)
	validateExecution(cfg.Execution, result)

	logging.Debug("Validator", "Validated suite %s: %d errors, %d warnings", cfg.Name, len(result.Errors), len(result.Warnings))
	return result
}

func (v *Validator) validateScenarioPaths(cfg *suite.Configuration, result *Result) {
	for _, ref := range cfg.ScenarioPaths {
		if ref == "" {
			result.AddError("scenarioPaths", "scenario path must not be empty")
		}
	}
	if v.resolver == nil || len(cfg.ScenarioPaths) == 0 {
		return
	}

	files, err := v.resolver.ResolveAll(cfg.ScenarioPaths)
	result.Details["scenarioFiles"] = len(files)
	if err == nil {
		return
	}

	var unresolved *scenario.UnresolvedError
	if errors.As(err, &unresolved) {
		result.AddError("scenarioPaths", fmt.Sprintf("scenario paths not found: %s", strings.Join(unresolved.References, ", ")), unresolved.References)
		return
	}
	result.AddError("scenarioPaths", err.Error())
}

func validateTags(cfg *suite.Configuration, result *Result) {
	for _, tag := range cfg.IncludeTags {
		if !ValidTag(tag) {
			result.AddError("includeTags", fmt.Sprintf("invalid tag '%s': only letters, digits, hyphens and underscores are allowed", tag), tag)
		}
	}
	for _, tag := range cfg.ExcludeTags {
		if !ValidTag(tag) {
			result.AddError("excludeTags", fmt.Sprintf("invalid tag '%s': only letters, digits, hyphens and underscores are allowed", tag), tag)
		}
	}
	if conflicts := cfg.TagConflicts(); len(conflicts) > 0 {
		result.AddError("tags", fmt.Sprintf("tags both included and excluded: %s", strings.Join(conflicts, ", ")), conflicts)
	}
}

func validateParameters(cfg *suite.Configuration, result *Result) {
	for _, name := range cfg.SortedParameterNames() {
		if !ValidParameterName(name) {
			result.AddError("parameters", fmt.Sprintf("invalid parameter name '%s': must start with a letter followed by letters, digits or underscores", name), name)
			continue
		}
		if LooksSecret(name) {
			result.AddWarning("parameters", fmt.Sprintf("parameter '%s' looks like a secret; prefer injecting it from the environment", name), name)
		}
	}
}

func validateExecution(e suite.ExecutionConfig, result *Result) {
	if e.MaxParallelThreads < 1 {
		result.AddError("execution.maxParallelThreads", "must be at least 1", e.MaxParallelThreads)
	}
	if e.Retry.MaxAttempts < 1 {
		result.AddError("execution.retry.maxAttempts", "must be at least 1", e.Retry.MaxAttempts)
	}
	if e.Retry.DelaySeconds < 0 {
		result.AddError("execution.retry.delaySeconds", "must not be negative", e.Retry.DelaySeconds)
	}
	if e.Retry.MaxAttempts > 1 && !e.Retry.RetryOnFailure && !e.Retry.RetryOnError {
		result.AddWarning("execution.retry", "maxAttempts is above 1 but neither retryOnFailure nor retryOnError is set, so no attempt will be retried")
	}

	t := e.Timeout
	if t.SuiteSeconds <= 0 || t.ScenarioSeconds <= 0 || t.StepSeconds <= 0 {
		result.AddError("execution.timeout", "timeouts must be positive")
	} else {
		if t.ScenarioSeconds > t.SuiteSeconds {
			result.AddWarning("execution.timeout", "scenario timeout exceeds the suite timeout")
		}
		if t.StepSeconds > t.ScenarioSeconds {
			result.AddWarning("execution.timeout", "step timeout exceeds the scenario timeout")
		}
	}

	if e.HasLegacyValues() {
		result.AddWarning("execution", "legacy execution parameters are deprecated; use the execution section")
	}

	env := e.Environment
	for _, name := range env.SortedProfileNames() {
		profile := env.Profiles[name]
		if profile.Extends == "" {
			continue
		}
		if profile.Extends == name {
			result.AddError("execution.environment", fmt.Sprintf("profile '%s' extends itself", name), name)
			continue
		}
		parent, ok := env.Profiles[profile.Extends]
		if !ok {
			result.AddError("execution.environment", fmt.Sprintf("profile '%s' extends unknown profile '%s'", name, profile.Extends), name)
			continue
		}
		if parent.Extends != "" {
			result.AddWarning("execution.environment", fmt.Sprintf("profile '%s' extends '%s' which extends '%s'; only one level of inheritance is applied", name, profile.Extends, parent.Extends), name)
		}
	}
	for _, key := range env.SortedVariableKeys() {
		if _, name := suite.SplitVariableKey(key); name == "" {
			result.AddError("execution.environment", fmt.Sprintf("variable '%s' has no name", key), key)
		}
	}
}
