package parser

import "encoding/xml"

// RootElement is the root element name of a suite document.
const RootElement = "suite"

type document struct {
	XMLName     xml.Name
	Name        string             `xml:"name,attr"`
	Version     string             `xml:"version,attr,omitempty"`
	Description string             `xml:"description,omitempty"`
	Parameters  *parametersElement `xml:"parameters"`
	Execution   *executionElement  `xml:"execution"`
	Tests       []testElement      `xml:"test"`
}

type parametersElement struct {
	Parameters []parameterElement `xml:"parameter"`
}

type parameterElement struct {
	Name  *string `xml:"name,attr"`
	Value *string `xml:"value,attr"`
}

type executionElement struct {
	StopOnFirstFailure bool                `xml:"stopOnFirstFailure,attr,omitempty"`
	ContinueOnError    bool                `xml:"continueOnError,attr,omitempty"`
	MaxParallelThreads int                 `xml:"maxParallelThreads,attr,omitempty"`
	Timeout            *timeoutElement     `xml:"timeout"`
	Retry              *retryElement       `xml:"retry"`
	Environment        *environmentElement `xml:"environment"`
}

type timeoutElement struct {
	Suite    int `xml:"suite,attr,omitempty"`
	Scenario int `xml:"scenario,attr,omitempty"`
	Step     int `xml:"step,attr,omitempty"`
}

type retryElement struct {
	MaxAttempts    int  `xml:"maxAttempts,attr,omitempty"`
	DelaySeconds   int  `xml:"delaySeconds,attr,omitempty"`
	RetryOnFailure bool `xml:"retryOnFailure,attr,omitempty"`
	RetryOnError   bool `xml:"retryOnError,attr,omitempty"`
}

type environmentElement struct {
	Default   string            `xml:"default,attr,omitempty"`
	Variables []variableElement `xml:"variable"`
	Profiles  []profileElement  `xml:"profile"`
}

type variableElement struct {
	Name        *string `xml:"name,attr"`
	Value       *string `xml:"value,attr"`
	Environment string  `xml:"environment,attr,omitempty"`
}

type profileElement struct {
	Name       *string            `xml:"name,attr"`
	Extends    string             `xml:"extends,attr,omitempty"`
	Properties []parameterElement `xml:"property"`
}

type testElement struct {
	Name    *string       `xml:"name,attr"`
	Classes []nameElement `xml:"classes>class"`
	Include []nameElement `xml:"groups>run>include"`
	Exclude []nameElement `xml:"groups>run>exclude"`
}

type nameElement struct {
	Name *string `xml:"name,attr"`
}

func strPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
