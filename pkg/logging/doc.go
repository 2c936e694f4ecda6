// Package logging provides structured logging configuration for wirecat.
//
// This package wraps log/slog to provide consistent logging across all
// wirecat components. It supports configurable log levels and output
// formats, and a fan-out handler for writing to several sinks at once.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("connection established", "url", url)
//	logger.Error("handshake failed", "error", err)
//
// # Integration
//
// Components accept a *slog.Logger and treat nil as "no logging"; use
// logging.Nop() where a logger value is required. Connection-scoped
// loggers come from WithConn, which stamps every record with the
// connection ID and URL.
package logging
