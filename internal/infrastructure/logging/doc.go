// Package logging provides structured logging built on log/slog.
//
// All components receive a *Logger (or a package-local logging interface
// satisfied by it) rather than using a global logger. Output format, level
// and destination come from the logging section of config.yaml.
package logging
