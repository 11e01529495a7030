// Package ws streams launcher submissions over WebSocket.
//
// The launcher page connects with its page id. While the page is showing,
// the server ticks its clock; a launch reports progress and ends with the
// function's document, which replaces the page and stops the clock.
//
// Message Types (Client → Server):
//   - launch: Submit the launcher form ({"type":"launch","form":{...}})
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - clock: Current time for the launcher clock
//   - progress: Submission stage (30, 60, 90, 100)
//   - warning: Mixed-content warning
//   - page: The document that replaces the launcher
//   - error: Status line for a failed launch
//
// Example Usage:
//
//	handler := ws.NewHandler(launcher, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
