// Package http provides the launcher's HTTP handlers using the Gin framework.
//
// Endpoints:
//   - Launcher: GET /launcher (form, ?url=<scheme url> for protocol handlers), POST /launcher
//   - Navigation: POST /navigation/events, POST /navigation/open
//   - Widget: GET /widget/session, POST /widget/invoke
//   - Health: / and /health
//
// Errors are answered with the launcher status line and a status code by
// kind: 400 for bad input, 422 for an unusable function response, 502 for
// upstream failures and 503 while the outbound breaker is open.
//
// Example Usage:
//
//	handlers := http.NewHandlers(http.Deps{Launcher: l, Interceptor: i, Surface: s})
//	router.GET("/launcher", handlers.LauncherPage)
//	router.POST("/navigation/events", handlers.NavigationEvent)
package http
