// Package ci runs suites inside continuous integration pipelines.
//
// It detects the CI provider from environment variables, passes the
// build details to the engine as CI_* parameters, applies a CI level
// retry and success policy, writes JSON and JUnit documents, and posts a
// short summary to webhooks.
package ci
