// Package invoker calls a remote function's invoke endpoint.
//
// The target is {baseUrl}/api/v1/functions/{functionId}/invoke. The API key
// goes out verbatim in the Authorization header. Every method except GET
// carries {"version": ..., "event": ...} as a JSON body.
//
// Some deployments publish a plain-HTTP address that browsers refuse to call
// from an HTTPS page. A RewriteTable maps such base URLs to a secure
// equivalent. The rewrite applies to the URL actually called, never to the
// URL shown to the user.
//
// Failures are reported once. The invoker never retries on its own.
package invoker
