// Package logger provides a structured logging interface for bskygraph.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors on stderr
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "bskygraph/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Application started")
//	logger.WithField("actor", "alice.bsky.social").Info("Fetching social graph")
//	logger.WithError(err).Error("Failed to fetch followers page")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "fetcher")
//
//	// Use structured logging
//	log.InfoWithFields("Page fetched", map[string]interface{}{
//	    "page":  3,
//	    "count": 300,
//	})
//
// Console output is written to stderr so that exported JSON or CSV
// documents can be written to stdout without interleaving.
package logger
