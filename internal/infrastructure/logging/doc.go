// Package logging provides structured logging for sensora.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same shape: JSON for production, text for development, and the
// default fields service and version on every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	qlog := logger.Component("query")
//	qlog.Warn("query channel not open, request dropped")
//
// Never log MQTT credentials.
package logging
