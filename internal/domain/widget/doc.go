// Package widget exposes the session values and invoke call to the page a
// function returned.
//
// Surface is the callback surface itself. It is reachable three ways: the
// JSON endpoints in the HTTP API, the bootstrap script Bridge injects into
// the returned document (defining window.RivalWidget in a browser), and
// Runtime, a goja VM that runs a widget's inline scripts headlessly with
// RivalWidget, console and a read-only document in scope.
//
// Example Usage:
//
//	surface := widget.NewSurface(prefs, inv, "/launcher")
//	rt := widget.NewRuntime(surface, widget.DefaultRuntimeConfig())
//	res, err := rt.Execute(ctx, `RivalWidget.getFunctionId()`, nil)
package widget
