// Package store provides SQLite-backed durable storage for the roster.
//
// The store holds four tables:
//   - combatants: one row per participant, optional HP and AC as NULL
//   - conditions: status effects, cascade-deleted with their combatant
//   - history: append-only damage/heal log, cascade-deleted likewise
//   - state: the singleton scalars "round" and "current_index"
//
// # Critical Patterns
//
// One call, one commit:
//   - Every exported write is a single statement or a single transaction
//   - There is no multi-call rollback; the engine reloads instead
//
// Case-folded names:
//   - The driver registers a casefold() SQL function backed by
//     golang.org/x/text, so name matching agrees with combat.FoldName
//     for non-ASCII names where SQLite's LOWER() would not
//
// Deterministic reads:
//   - Rows come back ORDER BY id ASC; roster ordering is the engine's job
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: required for the cascades above
package store
