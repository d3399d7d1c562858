// Package manager is the business-rule layer over the suite repository:
// invariant checks before every write, guarded deletion, duplication,
// search and import/export.
package manager
