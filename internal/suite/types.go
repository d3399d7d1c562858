package suite

import (
	"sort"
	"strings"
)

const (
	// CurrentFormatVersion is the document format of newly created suites.
	CurrentFormatVersion = "2.0"
	// LegacyFormatVersion is assumed for documents without a version attribute.
	LegacyFormatVersion = "1.0"
)

// Configuration is a named, persisted bundle of scenario locations, tag
// filters, environment parameters and execution policy.
type Configuration struct {
	// Name is the unique key of the suite.
	Name string `json:"name"`
	// Description is free text shown in listings.
	Description string `json:"description,omitempty"`
	// ScenarioPaths are dot-separated scenario-location references, in declaration order.
	ScenarioPaths []string `json:"scenarioPaths"`
	// IncludeTags selects scenarios carrying any of these tags.
	IncludeTags []string `json:"includeTags"`
	// ExcludeTags removes scenarios carrying any of these tags.
	ExcludeTags []string `json:"excludeTags"`
	// Parameters are environment parameters passed to the engine.
	Parameters map[string]string `json:"parameters"`
	// Execution is the execution policy.
	Execution ExecutionConfig `json:"execution"`
	// Version is the document format version the suite was read from.
	Version string `json:"version"`
}

// New returns a configuration with every collection initialised and the
// execution policy at its defaults.
func New(name string) *Configuration {
	c := &Configuration{Name: name}
	c.Normalize()
	return c
}

// Normalize fills unset fields with their defaults, removes duplicate tags
// and scenario references (keeping the first occurrence) and migrates legacy
// execution scalars. It is safe to call repeatedly.
func (c *Configuration) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.ScenarioPaths = dedupe(c.ScenarioPaths)
	c.IncludeTags = dedupe(c.IncludeTags)
	c.ExcludeTags = dedupe(c.ExcludeTags)
	if c.Parameters == nil {
		c.Parameters = map[string]string{}
	}
	if c.Version == "" {
		c.Version = CurrentFormatVersion
	}
	c.Execution.Normalize()
}

// HasContent reports whether the suite selects anything: at least one
// scenario reference or at least one include tag.
func (c *Configuration) HasContent() bool {
	return len(c.ScenarioPaths) > 0 || len(c.IncludeTags) > 0
}

// TagConflicts returns the tags present in both the include and exclude sets, sorted.
func (c *Configuration) TagConflicts() []string {
	include := make(map[string]struct{}, len(c.IncludeTags))
	for _, t := range c.IncludeTags {
		include[t] = struct{}{}
	}
	var conflicts []string
	seen := map[string]struct{}{}
	for _, t := range c.ExcludeTags {
		if _, ok := include[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		conflicts = append(conflicts, t)
	}
	sort.Strings(conflicts)
	return conflicts
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	out.ScenarioPaths = append([]string{}, c.ScenarioPaths...)
	out.IncludeTags = append([]string{}, c.IncludeTags...)
	out.ExcludeTags = append([]string{}, c.ExcludeTags...)
	out.Parameters = copyMap(c.Parameters)
	out.Execution = c.Execution.Clone()
	return &out
}

// SortedParameterNames returns the parameter names in lexical order.
func (c *Configuration) SortedParameterNames() []string {
	return sortedKeys(c.Parameters)
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
