package manager

import (
	"sort"
	"strings"

	"suitectl/internal/scenario"
	"suitectl/internal/suite"
)

// Details is the metadata view of a suite used by listings and search.
type Details struct {
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	Version            string            `json:"version"`
	ScenarioPaths      []string          `json:"scenarioPaths"`
	IncludeTags        []string          `json:"includeTags"`
	ExcludeTags        []string          `json:"excludeTags"`
	Parameters         map[string]string `json:"parameters"`
	TagsExpression     string            `json:"tagsExpression,omitempty"`
	TimeoutSeconds     int               `json:"timeoutSeconds"`
	MaxAttempts        int               `json:"maxAttempts"`
	StopOnFirstFailure bool              `json:"stopOnFirstFailure"`
	DefaultEnvironment string            `json:"defaultEnvironment,omitempty"`
	Profiles           []string          `json:"profiles"`
}

// DetailsOf builds the metadata view of cfg.
func DetailsOf(cfg *suite.Configuration) Details {
	return Details{
		Name:               cfg.Name,
		Description:        cfg.Description,
		Version:            cfg.Version,
		ScenarioPaths:      cfg.ScenarioPaths,
		IncludeTags:        cfg.IncludeTags,
		ExcludeTags:        cfg.ExcludeTags,
		Parameters:         cfg.Parameters,
		TagsExpression:     scenario.TagsExpression(cfg.IncludeTags, cfg.ExcludeTags),
		TimeoutSeconds:     cfg.Execution.EffectiveTimeoutSeconds(),
		MaxAttempts:        cfg.Execution.Retry.MaxAttempts,
		StopOnFirstFailure: cfg.Execution.StopOnFirstFailure,
		DefaultEnvironment: cfg.Execution.Environment.Default,
		Profiles:           cfg.Execution.Environment.SortedProfileNames(),
	}
}

// SearchCriteria filters suites. Empty fields match everything; all set
// fields must match.
type SearchCriteria struct {
	// Name matches a case-insensitive substring of the suite name.
	Name string
	// IncludeTag must be one of the suite's include tags.
	IncludeTag string
	// ExcludeTag must be one of the suite's exclude tags.
	ExcludeTag string
	// ParameterName restricts ParameterValue to one parameter; alone it requires the parameter to exist.
	ParameterName string
	// ParameterValue must equal the value of some parameter.
	ParameterValue string
}

// Matches reports whether d satisfies every set criterion.
func (c SearchCriteria) Matches(d Details) bool {
	if c.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(c.Name)) {
		return false
	}
	if c.IncludeTag != "" && !contains(d.IncludeTags, c.IncludeTag) {
		return false
	}
	if c.ExcludeTag != "" && !contains(d.ExcludeTags, c.ExcludeTag) {
		return false
	}
	switch {
	case c.ParameterName != "" && c.ParameterValue != "":
		if v, ok := d.Parameters[c.ParameterName]; !ok || v != c.ParameterValue {
			return false
		}
	case c.ParameterName != "":
		if _, ok := d.Parameters[c.ParameterName]; !ok {
			return false
		}
	case c.ParameterValue != "":
		found := false
		for _, v := range d.Parameters {
			if v == c.ParameterValue {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List returns the details of every stored suite, sorted by name.
func (m *Manager) List() ([]Details, error) {
	suites, err := m.store.List()
	if err != nil {
		return nil, err
	}
	details := make([]Details, 0, len(suites))
	for _, cfg := range suites {
		details = append(details, DetailsOf(cfg))
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

// Details returns the metadata view of one suite.
func (m *Manager) Details(name string) (*Details, error) {
	cfg, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	d := DetailsOf(cfg)
	return &d, nil
}

// Search returns the suites matching criteria, sorted by name.
func (m *Manager) Search(criteria SearchCriteria) ([]Details, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	matched := make([]Details, 0, len(all))
	for _, d := range all {
		if criteria.Matches(d) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
