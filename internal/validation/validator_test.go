package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/parser"
	"suitectl/internal/scenario"
	"suitectl/internal/suite"
)

func scenarioRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "tests", "login", "sign_in.feature")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Feature: login\n"), 0644))
	return root
}

func validSuite() *suite.Configuration {
	cfg := suite.New("smoke-tests")
	cfg.ScenarioPaths = []string{"tests.login"}
	cfg.IncludeTags = []string{"smoke"}
	return cfg
}

func TestValidateValidSuite(t *testing.T) {
	v := New(scenario.NewResolver(scenarioRoot(t), ""))

	result := v.Validate(validSuite())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "smoke-tests", result.Details["name"])
	assert.Equal(t, 1, result.Details["scenarioFiles"])
	assert.NoError(t, result.Err())
}

func TestValidateAggregatesAllErrors(t *testing.T) {
	v := New(scenario.NewResolver(scenarioRoot(t), ""))

	cfg := suite.New("bad name!")
	cfg.ScenarioPaths = []string{"tests.login", "tests.missing", "other.gone.feature"}
	cfg.IncludeTags = []string{"smoke", "slow"}
	cfg.ExcludeTags = []string{"slow"}

	result := v.Validate(cfg)

	require.False(t, result.Valid)
	fields := result.Errors.Fields()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "tags")
	assert.Contains(t, fields, "scenarioPaths")

	var missing Issue
	for _, issue := range result.Errors {
		if issue.Field == "scenarioPaths" {
			missing = issue
		}
	}
	assert.Equal(t, "scenario paths not found: tests.missing, other.gone.feature", missing.Message)
	assert.Error(t, result.Err())
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expectWarn  bool
	}{
		{name: "simple", input: "smoke-tests"},
		{name: "underscore", input: "api_v2"},
		{name: "two chars", input: "ab"},
		{name: "too short", input: "a", expectError: true},
		{name: "too long", input: "a" + string(make([]byte, 64)), expectError: true},
		{name: "leading hyphen", input: "-smoke", expectError: true},
		{name: "trailing underscore", input: "smoke_", expectError: true},
		{name: "space", input: "smoke tests", expectError: true},
		{name: "reserved", input: "default", expectError: true},
		{name: "reserved mixed case", input: "Config", expectError: true, expectWarn: true},
		{name: "empty", input: "", expectError: true},
		{name: "upper case", input: "SmokeTests", expectWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, warnings := ValidateName(tt.input)
			assert.Equal(t, tt.expectError, len(errs) > 0, "errors: %v", errs)
			assert.Equal(t, tt.expectWarn, len(warnings) > 0, "warnings: %v", warnings)
		})
	}
}

func TestValidateRequiresContent(t *testing.T) {
	result := New(nil).Validate(suite.New("empty-suite"))

	require.False(t, result.Valid)
	assert.Equal(t, "scenarioPaths", result.Errors[0].Field)
}

func TestValidateTags(t *testing.T) {
	cfg := validSuite()
	cfg.IncludeTags = []string{"smoke", "bad tag"}
	cfg.ExcludeTags = []string{"@wip"}

	result := New(nil).Validate(cfg)

	require.False(t, result.Valid)
	assert.Equal(t, []string{"includeTags", "excludeTags"}, result.Errors.Fields())
}

func TestValidateParameters(t *testing.T) {
	cfg := validSuite()
	cfg.Parameters = map[string]string{
		"base_url":    "http://x",
		"1st":         "bad",
		"db_password": "hunter2",
		"API_KEY":     "abc",
	}

	result := New(nil).Validate(cfg)

	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "1st", result.Errors[0].Value)
	require.Len(t, result.Warnings, 2)
	assert.Equal(t, "API_KEY", result.Warnings[0].Value)
	assert.Equal(t, "db_password", result.Warnings[1].Value)
}

func TestValidateExecution(t *testing.T) {
	cfg := validSuite()
	cfg.Execution.Retry.MaxAttempts = 3
	cfg.Execution.Timeout.ScenarioSeconds = 7200
	cfg.Execution.LegacyStopOnFailure = true
	cfg.Execution.Environment.Profiles = map[string]suite.EnvironmentProfile{
		"base":  {Name: "base", Extends: "root"},
		"root":  {Name: "root"},
		"prod":  {Name: "prod", Extends: "base"},
		"loop":  {Name: "loop", Extends: "loop"},
		"stray": {Name: "stray", Extends: "nowhere"},
	}

	result := New(nil).Validate(cfg)

	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	for _, issue := range result.Errors {
		assert.Equal(t, "execution.environment", issue.Field)
	}
	assert.Equal(t, []string{"execution.retry", "execution.timeout", "execution", "execution.environment"}, result.Warnings.Fields())
}

func TestValidateDocument(t *testing.T) {
	v := New(nil)

	result, cfg, err := v.ValidateDocument([]byte(`<suite name="smoke-tests"><test name="t"><classes><class name="tests.login"/></classes></test></suite>`))
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "smoke-tests", cfg.Name)

	_, _, err = v.ValidateDocument([]byte(`<suite><test/></suite>`))
	require.Error(t, err)
	assert.True(t, parser.IsStructureError(err))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<suite name="x"`), 0644))

	_, _, err := New(nil).ValidateFile(path)
	var structErr *parser.StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, path, structErr.Path)

	good := filepath.Join(dir, "good.xml")
	require.NoError(t, parser.Export(validSuite(), good))
	result, _, err := New(nil).ValidateFile(good)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, good, result.Details["file"])
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	a.AddWarning("name", "w")
	b := NewResult()
	b.AddError("tags", "e")
	b.Details["x"] = 1

	a.Merge(b)
	assert.False(t, a.Valid)
	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
	assert.Equal(t, 1, a.Details["x"])
}

func TestIssuesError(t *testing.T) {
	var issues Issues
	assert.Equal(t, "no validation errors", issues.Error())
	issues.Add("name", "is required")
	assert.Equal(t, "field 'name': is required", issues.Error())
	issues.Add("", "second")
	assert.Equal(t, "validation failed: field 'name': is required; second", issues.Error())
}
