package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StructureError reports a document that is not well-formed or misses
// required elements or attributes. It is always fatal.
type StructureError struct {
	Path     string
	Problems []string
}

func (e *StructureError) Error() string {
	msg := strings.Join(e.Problems, "; ")
	if e.Path != "" {
		return fmt.Sprintf("invalid suite document %s: %s", e.Path, msg)
	}
	return fmt.Sprintf("invalid suite document: %s", msg)
}

// IsStructureError checks if an error is a StructureError.
func IsStructureError(err error) bool {
	var structErr *StructureError
	return errors.As(err, &structErr)
}

// CheckStructure verifies that data is a well-formed suite document with
// every required attribute present. All problems found are reported together.
func CheckStructure(data []byte) error {
	_, err := decode(data)
	return err
}

func decode(data []byte) (*document, error) {
	if err := wellFormed(data); err != nil {
		return nil, &StructureError{Problems: []string{err.Error()}}
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &StructureError{Problems: []string{err.Error()}}
	}

	if problems := doc.problems(); len(problems) > 0 {
		return nil, &StructureError{Problems: problems}
	}
	return &doc, nil
}

func wellFormed(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("document is empty")
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("malformed document: %w", err)
		}
	}
}

func (d *document) problems() []string {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if d.XMLName.Local != RootElement {
		add("root element must be <%s>, found <%s>", RootElement, d.XMLName.Local)
		return problems
	}
	if strings.TrimSpace(d.Name) == "" {
		add("root element is missing the name attribute")
	}

	if d.Parameters != nil {
		for i, p := range d.Parameters.Parameters {
			if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
				add("parameter %d is missing the name attribute", i+1)
			}
			if p.Value == nil {
				add("parameter %q is missing the value attribute", deref(p.Name))
			}
		}
	}

	if d.Execution != nil && d.Execution.Environment != nil {
		env := d.Execution.Environment
		for i, v := range env.Variables {
			if v.Name == nil || strings.TrimSpace(*v.Name) == "" {
				add("variable %d is missing the name attribute", i+1)
			}
			if v.Value == nil {
				add("variable %q is missing the value attribute", deref(v.Name))
			}
		}
		for i, p := range env.Profiles {
			if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
				add("profile %d is missing the name attribute", i+1)
				continue
			}
			for j, prop := range p.Properties {
				if prop.Name == nil || strings.TrimSpace(*prop.Name) == "" {
					add("property %d of profile %q is missing the name attribute", j+1, *p.Name)
				}
				if prop.Value == nil {
					add("property %q of profile %q is missing the value attribute", deref(prop.Name), *p.Name)
				}
			}
		}
	}

	for i, t := range d.Tests {
		if t.Name == nil || strings.TrimSpace(*t.Name) == "" {
			add("test %d is missing the name attribute", i+1)
		}
		for j, c := range t.Classes {
			if c.Name == nil || strings.TrimSpace(*c.Name) == "" {
				add("class %d of test %d is missing the name attribute", j+1, i+1)
			}
		}
		for j, inc := range t.Include {
			if inc.Name == nil || strings.TrimSpace(*inc.Name) == "" {
				add("include %d of test %d is missing the name attribute", j+1, i+1)
			}
		}
		for j, exc := range t.Exclude {
			if exc.Name == nil || strings.TrimSpace(*exc.Name) == "" {
				add("exclude %d of test %d is missing the name attribute", j+1, i+1)
			}
		}
	}

	return problems
}
