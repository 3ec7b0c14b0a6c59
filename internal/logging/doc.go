// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// When a log file is configured, a second JSON core writes to a rotating
// file (lumberjack) so desktop installs keep a bounded on-disk history.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "7900"))
//	logger.Error("Failed to connect", zap.Error(err))
package logging
