// Package logger provides structured logging setup using slog.
// It configures JSON output for production and human-readable text otherwise.
package logger
