// Package combat provides the data model for an initiative tracker.
//
// This package contains types and pure helpers only. All other internal
// packages import combat; combat imports nothing internal.
//
// Key design constraints:
//   - Optional integers (max HP, current HP, armor class, condition duration)
//     are pointers; nil means "not tracked" and is persisted as NULL
//   - Rosters are ordered by initiative descending, then name descending
//   - Name matching uses full Unicode case folding, never ASCII lowercasing
//   - All JSON tags use snake_case
package combat
