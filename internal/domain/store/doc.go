// Package store persists launcher configuration as string key-value pairs.
//
// Two key sets live side by side:
//   - rival_widget_* holds values the user asked the launcher to remember.
//     They pre-fill the form on the next load and are cleared when the user
//     opts out.
//   - rival_* holds the values of the current session. They are written on
//     every submission and read back by the widget callback surface.
//
// MemoryStore keeps everything in process; FileStore writes a TOML file.
package store
