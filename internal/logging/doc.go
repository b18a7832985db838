// Package logging assembles structured slog loggers used across gofmask.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so job code can tag log lines
// with run IDs, job ordinals, and product paths. The console handler renders
// the job ordinal as the same "[n] " prefix printed on progress lines so
// interleaved output from concurrent jobs stays readable.
package logging
