// Package harness runs scripted dispatch scenarios against a simulated world.
//
// A scenario names a mode table, a starting inventory, a sequence of key
// presses and frames, and assertions over what happened. The harness drives
// an engine.Controller directly, so no wall clock or goroutine is involved.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: swing_pickaxe
//	description: "Holding the shoulder keeps swinging"
//	config: |
//	  mode: Main: bindings: [{trigger: "A", command: "UseItem", params: {ItemName: "Pickaxe", IsContinuous: true}}]
//	world:
//	  inventory:
//	    - { name: Pickaxe, kind: tool, tool: pickaxe }
//	steps:
//	  - down: A
//	  - tick: 30
//	  - up: A
//	assertions:
//	  - type: call_count
//	    op: BeginUse
//	    count: 2
//	  - type: dispatch_count
//	    phase: end
//	    count: 1
//
// config_toml and config_file are alternatives to config. With none of them
// the built-in table is used.
//
// # Assertion Types
//
//   - call_contains: a world call with the given op (and item, slot, arg) happened
//   - call_order: ops happened in the given order
//   - call_count: matching calls happened exactly N times
//   - dispatch_count: the stored journal holds N entries matching phase, command and mode
//   - active_mode: the mode active after the last step
//   - message_contains: an in-game message was shown
//   - config_error: loading the table reported the given code
//
// # Deterministic Testing
//
// The harness uses:
//   - Fixed session tokens (from scenario.session or testutil.DefaultSessionToken)
//   - Deterministic sequence numbers (testutil.DeterministicClock)
//   - Frames of fixed length (DefaultFrame unless a step sets dt)
//   - In-memory SQLite database (isolated per run)
//
// This ensures identical journals across runs for golden file comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/mining.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
