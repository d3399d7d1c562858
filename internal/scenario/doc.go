// Package scenario resolves dot-separated scenario-location references to
// files on disk and synthesises the tag filter expression handed to the
// test engine.
package scenario
