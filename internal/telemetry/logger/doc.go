// Package logger provides structured logging for respkv.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: handler construction and the process-wide default
//   - context.go: context propagation of loggers and connection IDs
//   - redact.go: masking of secrets and truncation of stored values
//
// The level is held in a shared slog.LevelVar so it can be changed at
// runtime when the configuration file is reloaded.
package logger
