// Package logging assembles the structured slog loggers used across vidops
// commands. It owns the console and JSON handlers and exposes a no-op logger
// for tests and wiring code that cannot fail.
package logging
