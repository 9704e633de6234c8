// Package logging provides structured logging for the postmatter CLI using slog.
//
// Text output goes through a TTY-aware handler that colors levels and keys
// when the writer is a terminal. JSON output uses the standard slog JSON
// handler. [MultiHandler] fans records out to several handlers, which is how
// --log-file mirrors console output to a JSON file.
//
// Loggers travel with the command context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("scanning", "root", dir)
//
// For tests, use [ForTest] to capture log output via the testing framework.
package logging
