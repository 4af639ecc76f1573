// Package logger is a small factory around log/slog: functional options for
// level, format and output, plus env-driven configuration via Config.
package logger
