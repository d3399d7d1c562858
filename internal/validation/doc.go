// Package validation checks suite configurations.
//
// Structural problems in a suite document (malformed XML, wrong root,
// missing required attributes) are fatal and returned as errors. Semantic
// problems are collected into a Result so callers can report every problem
// at once.
package validation
