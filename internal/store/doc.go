// Package store is the SQLite journal behind `hotbar run` and `hotbar trace`.
//
// A session row records the mode table a controller ran, and dispatch rows
// record every decision it made (exec, noop, end, switch). Dispatches are
// keyed by (session_token, seq), where seq is the controller's logical
// clock, so a retried batch is a no-op and reads never depend on wall time.
//
// Binding IDs and table hashes come from internal/ir/hash.go.
package store
