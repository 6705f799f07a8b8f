// Package engine implements the hotbar dispatch controller.
//
// The engine turns raw key events into command lifecycles against a world it
// does not own. It is built in two steps: BuildModes parses a declarative
// ir.ModeTable into Modes, reporting bad bindings as *ConfigError values,
// and NewController activates the table's initial mode.
//
// ARCHITECTURE:
//
// Single-writer frame loop. Every Exec, Update and End runs on the goroutine
// that calls Tick, one frame at a time, so command state needs no locking
// and every decision re-reads live world state. Input from other goroutines
// goes through Controller.Enqueue and is applied at the start of the next
// Tick, before any Update.
//
// Matching. On key down the active mode's toggle-gated bindings whose toggle
// is held are tried first, then unconditional bindings, each in declaration
// order. The first match fires; its slot ends any previous activation first.
//
// Modes. Switching ends every active command of the outgoing mode, then
// installs the incoming mode with fresh, lazily created command instances.
// A SwitchMode command only requests the switch; the controller applies it
// once the requesting Exec has returned.
//
// Journal. Every exec, noop, end and switch is stamped with a seq from a
// logical clock and kept until Drain. Runner drains once per frame and hands
// the batch to a sink, typically the SQLite trace store.
package engine
