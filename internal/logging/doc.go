// Package logging assembles structured slog loggers used across questionindex.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes the standard field keys and helpers (component loggers, warnings
// with enforced event_type/error_hint/impact) so every package emits lines of
// the same shape. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
