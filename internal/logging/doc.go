// Package logging assembles the structured slog loggers used across glossaudio.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline stages tag their
// lines with the run ID, archive, and glossary document being processed. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
