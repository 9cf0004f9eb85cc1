// Package logging assembles the structured slog loggers used across
// sermonbench. It owns the console and JSON handlers so every component emits
// records with the same shape, and provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
