package template

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	gotemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders text templates with the sprig function library.
type Engine struct {
	funcs gotemplate.FuncMap
}

// New creates a new template engine
func New() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// Render executes text against data. Referencing a key missing from data is an error.
func (e *Engine) Render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := e.parse(name, text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Validate checks that text parses.
func (e *Engine) Validate(name, text string) error {
	_, err := e.parse(name, text)
	return err
}

func (e *Engine) parse(name, text string) (*gotemplate.Template, error) {
	tmpl, err := gotemplate.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Keys returns the sorted keys of data, for error messages listing what a template may use.
func Keys(data map[string]interface{}) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeContexts returns one render context built from contexts in order;
// a key set by a later context replaces the earlier value. Nil contexts are skipped.
func MergeContexts(contexts ...map[string]interface{}) map[string]interface{} {
	size := 0
	for _, c := range contexts {
		size += len(c)
	}
	merged := make(map[string]interface{}, size)
	for _, c := range contexts {
		for k, v := range c {
			merged[k] = v
		}
	}
	return merged
}
