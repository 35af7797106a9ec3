// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, carries request scoped loggers through
// context.Context, and tags records with CI run metadata when running under CI.
package logger
