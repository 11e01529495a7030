// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components receive a named child logger through Component and log with
// typed fields. API keys are never logged in clear; use APIKey to attach a
// short blake2b fingerprint instead.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("invoker")
//	log.Info("Invoking function", zap.String("function_id", id), logging.APIKey(key))
package logging
