// Package logger provides a structured logging interface for runnotate.
//
// It wraps zerolog with a small API:
//   - Debug, Info, Warn and Error levels
//   - structured fields via WithField, WithFields and WithError
//   - a colored console writer on stderr, or an append-only log file
//   - a global logger for the command, and injectable loggers for packages
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//	logger.GetLogger().WithField("out", "labels.csv").Info("Session started")
//
// Tests use NewTestLogger to capture messages, or NewNopLogger to silence them.
package logger
