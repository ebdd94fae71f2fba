package engine

import (
	"context"

	"github.com/roach88/initiative/internal/combat"
)

// reload reads the full encounter from the store, sorts it and restores
// the current-turn pointer by identity.
//
// Pointer resolution, in order:
//  1. the combatant current before the reload, at its new position
//  2. the previously known index, if that combatant was removed
//  3. the persisted index, when nothing was loaded before (startup)
//
// An index outside the roster resets to 0. An empty roster forces
// round 0, index 0. If the resolved state differs from what is
// persisted it is saved, so a restart resumes on the same combatant.
func (e *Engine) reload(ctx context.Context) error {
	var (
		currentID  int64
		hadCurrent bool
	)
	if e.state.CurrentIndex >= 0 && e.state.CurrentIndex < len(e.roster) {
		currentID = e.roster[e.state.CurrentIndex].ID
		hadCurrent = true
	}

	saved, roster, err := e.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	pos := -1
	if hadCurrent {
		if i, ok := combat.IndexOf(roster, currentID); ok {
			pos = i
		}
	}

	idx, found := combat.SortRoster(roster, pos)
	if !found {
		if hadCurrent {
			idx = e.state.CurrentIndex
		} else {
			idx = saved.CurrentIndex
		}
	}
	if idx < 0 || idx >= len(roster) {
		idx = 0
	}

	next := combat.EncounterState{Round: saved.Round, CurrentIndex: idx}
	if len(roster) == 0 {
		next = combat.EncounterState{}
	}

	e.roster = roster
	e.state = next

	if next != saved {
		e.logger.Debug("pointer reconciled",
			"persisted_round", saved.Round,
			"persisted_index", saved.CurrentIndex,
			"round", next.Round,
			"current_index", next.CurrentIndex)
		return e.store.SaveState(ctx, next)
	}
	return nil
}

// resetIfEmpty forces round 0, index 0 and persists it when the roster
// is empty.
func (e *Engine) resetIfEmpty(ctx context.Context) error {
	if len(e.roster) != 0 {
		return nil
	}
	e.state = combat.EncounterState{}
	return e.store.SaveState(ctx, e.state)
}
