// Package logging assembles structured slog loggers and formatting helpers used
// across mediashelf.
//
// It owns the console/JSON handlers, routes file output through a rotating
// lumberjack writer, and exposes context-aware helpers so components can tag
// log lines with session IDs and working-list positions. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
