// Package engine implements the encounter engine: the state reconciliation
// layer between the front end and the roster store.
//
// ARCHITECTURE:
//
// Reload After Every Write:
// Every mutating operation writes to the store first and then re-derives
// the whole in-memory roster from storage. In-memory copies are never
// patched incrementally. This gives read-your-writes consistency and keeps
// storage the single source of truth.
//
// Operation Flow:
// 1. Locate the target (case-folded name, first match in turn order)
// 2. Write to the store (each call is its own commit)
// 3. reload(): read state + roster, sort, restore the current pointer
// 4. Persist the pointer if the reload moved it
//
// POINTER STABILITY:
//
// The current-turn pointer follows identity, not position. Before a reload
// the engine remembers the id of the combatant at CurrentIndex; after
// sorting it scans for that id. If the combatant is gone, the previously
// known index is kept when it still fits the roster and reset to 0
// otherwise.
//
// INVARIANTS:
//   - Roster sorted by initiative desc, then name desc
//   - Empty roster implies Round == 0 and CurrentIndex == 0
//   - Adding to an empty roster starts Round 1
//   - Tracked HP stays within [0, MaxHP]
//
// The engine is single-threaded and synchronous. It is not safe for
// concurrent use.
package engine
