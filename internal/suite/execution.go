package suite

import (
	"strings"
	"time"
)

// Execution policy defaults.
const (
	DefaultSuiteTimeoutSeconds    = 3600
	DefaultScenarioTimeoutSeconds = 300
	DefaultStepTimeoutSeconds     = 30
	DefaultMaxAttempts            = 1
	DefaultMaxParallelThreads     = 1
)

// ExecutionConfig is the execution policy of a suite.
type ExecutionConfig struct {
	StopOnFirstFailure bool              `json:"stopOnFirstFailure"`
	ContinueOnError    bool              `json:"continueOnError"`
	MaxParallelThreads int               `json:"maxParallelThreads"`
	Timeout            TimeoutConfig     `json:"timeout"`
	Retry              RetryConfig       `json:"retry"`
	Environment        EnvironmentConfig `json:"environment"`

	// Deprecated: use StopOnFirstFailure.
	LegacyStopOnFailure bool `json:"-"`
	// Deprecated: counted additional attempts; use Retry.MaxAttempts.
	LegacyRetryCount int `json:"-"`
	// Deprecated: use Timeout.SuiteSeconds. Zero means unset.
	LegacyTimeoutSeconds int `json:"-"`
}

// TimeoutConfig holds timeouts in seconds.
type TimeoutConfig struct {
	SuiteSeconds    int `json:"suiteSeconds"`
	ScenarioSeconds int `json:"scenarioSeconds"`
	StepSeconds     int `json:"stepSeconds"`
}

// RetryConfig controls how many times a suite run is attempted.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, at least 1.
	MaxAttempts  int `json:"maxAttempts"`
	DelaySeconds int `json:"delaySeconds"`
	// RetryOnFailure retries when scenarios failed.
	RetryOnFailure bool `json:"retryOnFailure"`
	// RetryOnError retries when the engine exited non-zero.
	RetryOnError bool `json:"retryOnError"`
}

// EnvironmentConfig holds environment variables and named profiles.
//
// Variables keys are either global ("NAME") or scoped to one environment
// ("<env>.NAME"); scoped keys only apply while that environment is selected.
type EnvironmentConfig struct {
	Default   string                        `json:"default,omitempty"`
	Variables map[string]string             `json:"variables"`
	Profiles  map[string]EnvironmentProfile `json:"profiles"`
}

// EnvironmentProfile is a named property set. Extends names a parent profile
// whose properties apply first; inheritance is one level deep.
type EnvironmentProfile struct {
	Name       string            `json:"name"`
	Extends    string            `json:"extends,omitempty"`
	Properties map[string]string `json:"properties"`
}

// DefaultTimeoutConfig returns 3600/300/30 seconds.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		SuiteSeconds:    DefaultSuiteTimeoutSeconds,
		ScenarioSeconds: DefaultScenarioTimeoutSeconds,
		StepSeconds:     DefaultStepTimeoutSeconds,
	}
}

// DefaultRetryConfig runs once with no retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: DefaultMaxAttempts}
}

// DefaultExecutionConfig returns the execution policy used when a suite declares none.
func DefaultExecutionConfig() ExecutionConfig {
	e := ExecutionConfig{}
	e.Normalize()
	return e
}

// Normalize fills defaults and applies the legacy migration.
func (e *ExecutionConfig) Normalize() {
	if e.MaxParallelThreads < 1 {
		e.MaxParallelThreads = DefaultMaxParallelThreads
	}
	if e.Timeout.SuiteSeconds <= 0 {
		e.Timeout.SuiteSeconds = DefaultSuiteTimeoutSeconds
	}
	if e.Timeout.ScenarioSeconds <= 0 {
		e.Timeout.ScenarioSeconds = DefaultScenarioTimeoutSeconds
	}
	if e.Timeout.StepSeconds <= 0 {
		e.Timeout.StepSeconds = DefaultStepTimeoutSeconds
	}
	if e.Retry.MaxAttempts < 1 {
		e.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if e.Retry.DelaySeconds < 0 {
		e.Retry.DelaySeconds = 0
	}
	e.Environment.normalize()
	e.MigrateLegacy()
}

// MigrateLegacy copies the deprecated scalars into the structured fields.
// A structured value is only replaced while it still holds its default, so
// an explicit structured setting always wins and repeated calls are no-ops.
func (e *ExecutionConfig) MigrateLegacy() {
	if e.LegacyStopOnFailure {
		e.StopOnFirstFailure = true
	}
	if e.LegacyRetryCount > 0 && e.Retry.MaxAttempts <= DefaultMaxAttempts {
		e.Retry.MaxAttempts = e.LegacyRetryCount + 1
	}
	if e.LegacyTimeoutSeconds > 0 && e.Timeout.SuiteSeconds == DefaultSuiteTimeoutSeconds {
		e.Timeout.SuiteSeconds = e.LegacyTimeoutSeconds
	}
}

// HasLegacyValues reports whether any deprecated scalar is set.
func (e ExecutionConfig) HasLegacyValues() bool {
	return e.LegacyStopOnFailure || e.LegacyRetryCount > 0 || e.LegacyTimeoutSeconds > 0
}

// EffectiveTimeoutSeconds is the suite timeout used for a run. The legacy
// scalar wins unless it was left unset.
func (e ExecutionConfig) EffectiveTimeoutSeconds() int {
	if e.LegacyTimeoutSeconds > 0 {
		return e.LegacyTimeoutSeconds
	}
	if e.Timeout.SuiteSeconds > 0 {
		return e.Timeout.SuiteSeconds
	}
	return DefaultSuiteTimeoutSeconds
}

// EffectiveTimeout is EffectiveTimeoutSeconds as a duration.
func (e ExecutionConfig) EffectiveTimeout() time.Duration {
	return time.Duration(e.EffectiveTimeoutSeconds()) * time.Second
}

// IsDefault reports whether the attributes of the execution element hold their defaults.
func (e ExecutionConfig) IsDefault() bool {
	return !e.StopOnFirstFailure && !e.ContinueOnError && e.MaxParallelThreads == DefaultMaxParallelThreads &&
		e.Timeout.IsDefault() && e.Retry.IsDefault() && e.Environment.IsDefault()
}

// Clone returns a deep copy.
func (e ExecutionConfig) Clone() ExecutionConfig {
	out := e
	out.Environment = e.Environment.Clone()
	return out
}

// IsDefault reports whether all timeouts hold their defaults.
func (t TimeoutConfig) IsDefault() bool {
	return t == DefaultTimeoutConfig()
}

// IsDefault reports whether the retry policy is "run once".
func (r RetryConfig) IsDefault() bool {
	return r == DefaultRetryConfig()
}

// Delay is the wait between attempts.
func (r RetryConfig) Delay() time.Duration {
	return time.Duration(r.DelaySeconds) * time.Second
}

func (e *EnvironmentConfig) normalize() {
	e.Default = strings.TrimSpace(e.Default)
	if e.Variables == nil {
		e.Variables = map[string]string{}
	}
	if e.Profiles == nil {
		e.Profiles = map[string]EnvironmentProfile{}
	}
	for name, p := range e.Profiles {
		if p.Name == "" {
			p.Name = name
		}
		if p.Properties == nil {
			p.Properties = map[string]string{}
		}
		e.Profiles[name] = p
	}
}

// IsDefault reports whether no environment settings are present.
func (e EnvironmentConfig) IsDefault() bool {
	return e.Default == "" && len(e.Variables) == 0 && len(e.Profiles) == 0
}

// Clone returns a deep copy.
func (e EnvironmentConfig) Clone() EnvironmentConfig {
	out := EnvironmentConfig{
		Default:   e.Default,
		Variables: copyMap(e.Variables),
		Profiles:  make(map[string]EnvironmentProfile, len(e.Profiles)),
	}
	for name, p := range e.Profiles {
		p.Properties = copyMap(p.Properties)
		out.Profiles[name] = p
	}
	return out
}

// SortedVariableKeys returns variable keys in lexical order.
func (e EnvironmentConfig) SortedVariableKeys() []string {
	return sortedKeys(e.Variables)
}

// SortedProfileNames returns profile names in lexical order.
func (e EnvironmentConfig) SortedProfileNames() []string {
	return sortedKeys(e.Profiles)
}

// SortedPropertyNames returns property names in lexical order.
func (p EnvironmentProfile) SortedPropertyNames() []string {
	return sortedKeys(p.Properties)
}

// VariableKey builds the flat map key for a variable; an empty env yields a global key.
func VariableKey(env, name string) string {
	if env == "" {
		return name
	}
	return env + "." + name
}

// SplitVariableKey is the inverse of VariableKey.
func SplitVariableKey(key string) (env, name string) {
	if i := strings.Index(key, "."); i > 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
