package executor

import (
	"os"
	"sort"
	"sync"

	"suitectl/internal/suite"
)

// EnvironmentWriter receives the variables of a run. The process
// implementation changes the environment of the whole process and is not
// rolled back.
type EnvironmentWriter interface {
	Setenv(key, value string) error
}

// ProcessEnvironment writes to the process environment.
type ProcessEnvironment struct{}

func (ProcessEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// MemoryEnvironment records writes in memory.
type MemoryEnvironment struct {
	mu     sync.Mutex
	values map[string]string
	writes []Assignment
}

// NewMemoryEnvironment creates an empty in-memory environment.
func NewMemoryEnvironment() *MemoryEnvironment {
	return &MemoryEnvironment{values: map[string]string{}}
}

func (m *MemoryEnvironment) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes = append(m.writes, Assignment{Key: key, Value: value})
	return nil
}

// Get returns the current value of key.
func (m *MemoryEnvironment) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Values returns a copy of the current values.
func (m *MemoryEnvironment) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Writes returns every write in order.
func (m *MemoryEnvironment) Writes() []Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Assignment{}, m.writes...)
}

// Assignment is one variable write.
type Assignment struct {
	Key   string
	Value string
}

// ResolveEnvironment returns the variable writes for a run in the order
// they apply: suite parameters, global variables, variables scoped to the
// selected environment, then the selected profile's parent and finally the
// profile itself. Later writes override earlier ones. Only one level of
// profile inheritance is followed.
func ResolveEnvironment(cfg *suite.Configuration, selected string) []Assignment {
	var out []Assignment
	appendSorted := func(m map[string]string) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, Assignment{Key: k, Value: m[k]})
		}
	}

	appendSorted(cfg.Parameters)

	env := cfg.Execution.Environment
	global := map[string]string{}
	scoped := map[string]string{}
	for key, value := range env.Variables {
		scope, name := suite.SplitVariableKey(key)
		switch {
		case scope == "":
			global[name] = value
		case scope == selected:
			scoped[name] = value
		}
	}
	appendSorted(global)
	appendSorted(scoped)

	if selected == "" {
		return out
	}
	profile, ok := env.Profiles[selected]
	if !ok {
		return out
	}
	if profile.Extends != "" {
		if parent, ok := env.Profiles[profile.Extends]; ok {
			appendSorted(parent.Properties)
		}
	}
	appendSorted(profile.Properties)
	return out
}

// Effective folds assignments into the final variable values.
func Effective(assignments []Assignment) map[string]string {
	out := make(map[string]string, len(assignments))
	for _, a := range assignments {
		out[a.Key] = a.Value
	}
	return out
}

// SelectedEnvironment is opts.Environment, falling back to the suite default.
func SelectedEnvironment(cfg *suite.Configuration, opts Options) string {
	if opts.Environment != "" {
		return opts.Environment
	}
	return cfg.Execution.Environment.Default
}
