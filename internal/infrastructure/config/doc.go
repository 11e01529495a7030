// Package config provides 12-factor configuration management for the launcher backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: Web origins admitted besides the service and browser extensions
//   - Launcher: Launcher page route, store file, HTML post-processing
//   - Invoker: Outbound timeout, retries and rate
//
// The endpoint catalog (base URL allow-list and insecure address rewrites)
// lives in an optional YAML file named by LAUNCHER_ENDPOINTS_FILE:
//
//	default: https://rival-internal.secretcult.network
//	allow:
//	  - "*.secretcult.network"
//	  - "localhost:*"
//	rewrites:
//	  - from: http://34.171.49.45:4443
//	    to: https://rival-internal.secretcult.network
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	endpoints, err := config.LoadEndpoints(cfg.Launcher.EndpointsFile)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ALLOW_ORIGINS, CORS_ALLOW_EXTENSIONS
//   - LAUNCHER_PATH, LAUNCHER_PUBLIC_URL, LAUNCHER_STORE_PATH
//   - LAUNCHER_SANITIZE_HTML, LAUNCHER_INJECT_BRIDGE, LAUNCHER_ENDPOINTS_FILE
//   - INVOKER_TIMEOUT, INVOKER_RETRY_MAX, INVOKER_RATE_LIMIT
package config
