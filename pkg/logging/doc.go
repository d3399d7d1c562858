// Package logging provides the structured logger used across suitectl.
//
// It is a thin layer over log/slog: every record carries a "subsystem"
// attribute naming the component that produced it (Repository, Executor,
// CIIntegrator, ...), and errors are attached as an "error" attribute.
//
//	logging.InitForCLIWithFormat(logging.LevelInfo, logging.FormatJSON, os.Stderr)
//	logging.Info("Manager", "Created suite %s", name)
//	logging.Error("Repository", err, "Failed to save suite %s", name)
//
// Calls made before initialisation are dropped.
package logging
