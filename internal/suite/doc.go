// Package suite holds the configuration model for a test suite: which
// scenario locations to run, the tag filters, environment parameters and the
// execution policy (timeouts, retries, environments and profiles).
//
// The types carry no behaviour beyond default-filling (Normalize) and the
// one-way migration of deprecated execution scalars into their structured
// replacements (ExecutionConfig.MigrateLegacy).
package suite
