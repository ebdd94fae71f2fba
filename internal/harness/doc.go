// Package harness runs encounter scenarios against the real engine and
// store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: stunned_expires
//	description: "A two-round condition expires after two of its holder's turns"
//	setup:
//	  - op: add
//	    args: { name: Aria, initiative: 15, hp: 20, ac: 14, player: true }
//	flow:
//	  - op: condition_add
//	    args: { name: Aria, condition: stunned, duration: 2 }
//	  - op: next
//	    expect: { round: 1, current: Goblin }
//	assertions:
//	  - type: conditions
//	    name: Aria
//	    labels: []
//
// Setup steps must succeed. Flow steps are recorded in the trace and may
// carry an expect clause checked against the encounter right after the
// step. Assertions run against the final encounter.
//
// # Operations
//
// add, remove, clear, damage, heal, condition_add, condition_remove, next,
// set_init, and reopen. reopen closes the database and opens it again,
// which exercises the resume path.
//
// # Assertion Types
//
//   - order: names in turn order
//   - current: name of the current combatant ("" for an empty roster)
//   - round, index, count: round, current index, roster size
//   - hp: current HP of a combatant, or untracked: true
//   - status: HP band (BLD, CRIT, DEAD or none)
//   - conditions: condition labels, e.g. "stunned(1r)"
//   - history: history lines, e.g. "Took 5 fire damage"
//
// # Determinism
//
// Each run uses a fresh database file in a temporary directory and
// discards engine logs. The trace text (see Result.TraceText) is stable
// across runs and is what golden files capture.
package harness
