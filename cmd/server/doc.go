// Package main is the entry point for the RivalWidget launcher service.
//
// The service turns rival:// and web+rival:// links into launcher pages,
// invokes the named function and replaces the page with the HTML it returns.
//
// Architecture:
//
//	Browser shell → /navigation/events → launcher URL
//	Launcher page → /launcher, /stream → Function endpoint
//	Widget page   → /widget/session, /widget/invoke
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Endpoint catalog YAML (allow-list and rewrites)
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -store ~/.rival/config.toml -endpoints endpoints.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
