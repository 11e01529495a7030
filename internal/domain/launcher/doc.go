// Package launcher drives the launcher page.
//
// Defaults pre-populates the form from remembered config and forwarded query
// parameters. Submit validates the form, applies the remember policy, writes
// the session keys, invokes the function, normalizes the reply and replaces
// the page document. A newer submission for the same page id cancels the
// one in flight.
//
// Every error can be turned into the user-facing status line with
// StatusMessage.
package launcher
