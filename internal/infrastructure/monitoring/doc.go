/*
Package monitoring provides Prometheus metrics for the launcher.

# Overview

Metrics live on a private registry so several collectors can coexist in one
process (tests build one per router). The registry also carries the Go and
process collectors.

Tracked:
  - HTTP requests (count, latency, response size) per route template
  - Interceptor redirects by trigger and outcome
  - Remote invocations by method and outcome, with latency and in-flight gauge
  - Response shapes matched by the normalizer
  - Circuit breaker state
  - WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "POST")
	// ... invoke ...
	timer.Stop("success")
*/
package monitoring
