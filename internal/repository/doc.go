// Package repository persists suite configurations as XML files, one per
// suite, keyed by a sanitized suite name.
//
// Writes go to a temporary file that is validated before it replaces the
// suite file, so a failed write never leaves a corrupt suite behind.
// Concurrent writers in different processes are not serialised; the last
// writer wins.
package repository
