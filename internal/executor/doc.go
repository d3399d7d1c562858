// Package executor runs a suite through the external test engine.
//
// It resolves the suite's scenario locations, builds the engine command
// line (targets, tag filter, -D parameters, pass-through flags), applies the
// environment through an EnvironmentWriter, runs the engine with the suite
// timeout, turns the engine output into pass/fail/skip counts and collects
// report artifacts. ExecuteWithRetry wraps a run in the suite's retry policy.
package executor
