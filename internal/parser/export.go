package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"suitectl/internal/suite"
	"suitectl/pkg/logging"
)

const indent = "  "

// Export writes cfg as a suite document to path, creating parent directories.
func Export(cfg *suite.Configuration, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write suite document %s: %w", path, err)
	}

	logging.Debug("Parser", "Exported suite %s to %s", cfg.Name, path)
	return nil
}

// Marshal renders cfg as an indented suite document. Sections whose values
// all equal their defaults are omitted and map entries are sorted by key.
func Marshal(cfg *suite.Configuration) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cannot export nil suite configuration")
	}

	doc := fromConfiguration(cfg)
	out, err := xml.MarshalIndent(doc, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode suite %s: %w", cfg.Name, err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(out)
	buf.WriteString("\n")
	return stripBlankLines(buf.Bytes()), nil
}

func fromConfiguration(cfg *suite.Configuration) *document {
	version := cfg.Version
	if version == "" {
		version = suite.CurrentFormatVersion
	}

	doc := &document{
		XMLName:     xml.Name{Local: RootElement},
		Name:        cfg.Name,
		Version:     version,
		Description: cfg.Description,
	}

	params := make(map[string]string, len(cfg.Parameters)+4)
	for k, v := range cfg.Parameters {
		params[k] = v
	}

	switch {
	case exportsAsLegacy(cfg.Execution) && !hasLegacyParameterName(cfg.Parameters):
		e := cfg.Execution
		if e.LegacyStopOnFailure {
			params[LegacyParamStopOnFirstFailure] = "true"
		}
		if e.LegacyRetryCount > 0 {
			params[LegacyParamRetryCount] = strconv.Itoa(e.LegacyRetryCount)
		}
		if e.LegacyTimeoutSeconds > 0 {
			params[LegacyParamTimeoutSeconds] = strconv.Itoa(e.LegacyTimeoutSeconds)
		}
		if e.Environment.Default != "" {
			params[LegacyParamEnvironment] = e.Environment.Default
		}
	case !cfg.Execution.IsDefault() || hasLegacyParameterName(cfg.Parameters):
		// Any execution element, even an empty one, stops the parser from
		// reading parameters as legacy execution settings.
		doc.Execution = toExecutionElement(cfg.Execution)
	}

	if len(params) > 0 {
		doc.Parameters = &parametersElement{}
		for _, k := range sortedKeys(params) {
			doc.Parameters.Parameters = append(doc.Parameters.Parameters, parameterElement{
				Name:  strPtr(k),
				Value: strPtr(params[k]),
			})
		}
	}

	test := testElement{Name: strPtr(cfg.Name)}
	for _, p := range cfg.ScenarioPaths {
		test.Classes = append(test.Classes, nameElement{Name: strPtr(p)})
	}
	for _, tag := range cfg.IncludeTags {
		test.Include = append(test.Include, nameElement{Name: strPtr(tag)})
	}
	for _, tag := range cfg.ExcludeTags {
		test.Exclude = append(test.Exclude, nameElement{Name: strPtr(tag)})
	}
	doc.Tests = []testElement{test}

	return doc
}

// exportsAsLegacy reports whether the execution policy is exactly what the
// legacy parameters produce, in which case it is written back as legacy
// parameters instead of an execution element.
func exportsAsLegacy(e suite.ExecutionConfig) bool {
	if !e.HasLegacyValues() {
		return false
	}
	expected := suite.ExecutionConfig{
		LegacyStopOnFailure:  e.LegacyStopOnFailure,
		LegacyRetryCount:     e.LegacyRetryCount,
		LegacyTimeoutSeconds: e.LegacyTimeoutSeconds,
		Environment:          suite.EnvironmentConfig{Default: e.Environment.Default},
	}
	expected.Normalize()
	actual := e.Clone()
	actual.Normalize()
	return reflect.DeepEqual(expected, actual)
}

func hasLegacyParameterName(params map[string]string) bool {
	for _, name := range []string{LegacyParamStopOnFirstFailure, LegacyParamRetryCount, LegacyParamTimeoutSeconds, LegacyParamEnvironment} {
		if _, ok := params[name]; ok {
			return true
		}
	}
	return false
}

func toExecutionElement(e suite.ExecutionConfig) *executionElement {
	el := &executionElement{
		StopOnFirstFailure: e.StopOnFirstFailure,
		ContinueOnError:    e.ContinueOnError,
	}
	if e.MaxParallelThreads != suite.DefaultMaxParallelThreads {
		el.MaxParallelThreads = e.MaxParallelThreads
	}
	if !e.Timeout.IsDefault() {
		el.Timeout = &timeoutElement{
			Suite:    e.Timeout.SuiteSeconds,
			Scenario: e.Timeout.ScenarioSeconds,
			Step:     e.Timeout.StepSeconds,
		}
	}
	if !e.Retry.IsDefault() {
		el.Retry = &retryElement{
			MaxAttempts:    e.Retry.MaxAttempts,
			DelaySeconds:   e.Retry.DelaySeconds,
			RetryOnFailure: e.Retry.RetryOnFailure,
			RetryOnError:   e.Retry.RetryOnError,
		}
	}
	if !e.Environment.IsDefault() {
		env := &environmentElement{Default: e.Environment.Default}
		for _, key := range e.Environment.SortedVariableKeys() {
			scope, name := suite.SplitVariableKey(key)
			env.Variables = append(env.Variables, variableElement{
				Name:        strPtr(name),
				Value:       strPtr(e.Environment.Variables[key]),
				Environment: scope,
			})
		}
		for _, name := range e.Environment.SortedProfileNames() {
			profile := e.Environment.Profiles[name]
			pe := profileElement{Name: strPtr(name), Extends: profile.Extends}
			for _, prop := range profile.SortedPropertyNames() {
				pe.Properties = append(pe.Properties, parameterElement{
					Name:  strPtr(prop),
					Value: strPtr(profile.Properties[prop]),
				})
			}
			env.Profiles = append(env.Profiles, pe)
		}
		el.Environment = env
	}
	return el
}

func stripBlankLines(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return []byte(strings.Join(kept, "\n") + "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
