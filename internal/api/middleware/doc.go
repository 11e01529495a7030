// Package middleware provides HTTP middleware for the launcher API.
//
//   - CORS: the launcher API is called from extension pages and the launcher
//     page itself, so browser extension origins are accepted
//   - RateLimit: per-IP token bucket, idle limiters are swept
//   - GlobalRateLimit: one bucket for the whole process
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
