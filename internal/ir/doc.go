// Package ir provides the declarative types shared by every hotbar package.
//
// A mode table is compiled from configuration (CUE or TOML) into ModeTable,
// turned into live modes by the engine, and every activation the engine
// performs is journaled as a Dispatch. ir imports nothing internal so the
// compiler, engine, store and harness can all depend on it.
//
// Key design constraints:
//   - Parameters stay as raw strings here; commands parse them once at build time
//   - All JSON tags use snake_case
//   - Dispatches are ordered by a logical seq, never by wall-clock time
package ir
