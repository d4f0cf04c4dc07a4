// Package logger provides structured logging for mirrorcheck.
//
//   - logger.go: slog-backed Logger, level handling, process default
//   - context.go: context propagation of the logger and run ID
//
// Logs are written to stderr so stdout carries only the validation report.
package logger
