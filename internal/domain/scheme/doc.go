// Package scheme parses rival:// and web+rival:// URLs and forwards their
// parameters to the launcher page.
//
// Two forms are accepted:
//
//	rival://<functionId>[?baseUrl=...&version=...&autoload=...]
//	web+rival://<functionId>[/version=<version>]
//
// Query parameters are copied when present, even if empty. autoload defaults
// to "true" because a scheme URL is an explicit request to run the function.
package scheme
