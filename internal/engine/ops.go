package engine

import (
	"context"
	"fmt"

	"github.com/roach88/initiative/internal/combat"
)

// AddCombatant stores a new combatant and returns its id.
//
// On an empty roster the encounter starts: round 1, index 0 are persisted
// before the insert. Otherwise the current pointer is persisted first so
// the reload does not resolve against a stale index. Draft conditions are
// attached after the insert.
func (e *Engine) AddCombatant(ctx context.Context, d combat.Draft) (int64, error) {
	if combat.NormalizeName(d.Name) == "" {
		return 0, fmt.Errorf("add combatant: %w", ErrInvalidName)
	}

	next := e.state
	if len(e.roster) == 0 {
		next = combat.EncounterState{Round: 1, CurrentIndex: 0}
	}
	if err := e.store.SaveState(ctx, next); err != nil {
		return 0, fmt.Errorf("add combatant: %w", err)
	}
	e.state = next

	id, err := e.store.InsertCombatant(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("add combatant: %w", err)
	}

	for _, cond := range d.Conditions {
		if _, err := e.store.InsertCondition(ctx, id, cond.Name, cond.Duration); err != nil {
			return 0, fmt.Errorf("add combatant %q: %w", d.Name, err)
		}
	}

	if err := e.reload(ctx); err != nil {
		return 0, fmt.Errorf("add combatant: %w", err)
	}

	e.logger.Debug("combatant added",
		"id", id,
		"name", d.Name,
		"initiative", d.Initiative,
		"round", e.state.Round)
	return id, nil
}

// RemoveCombatant deletes every combatant whose name matches under case
// folding, with their conditions and history. Removing the last combatant
// ends the encounter. found reports whether anything was deleted.
func (e *Engine) RemoveCombatant(ctx context.Context, name string) (bool, error) {
	n, err := e.store.DeleteCombatantByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("remove combatant %q: %w", name, err)
	}

	if err := e.reload(ctx); err != nil {
		return false, fmt.Errorf("remove combatant %q: %w", name, err)
	}
	if err := e.resetIfEmpty(ctx); err != nil {
		return false, fmt.Errorf("remove combatant %q: %w", name, err)
	}

	e.logger.Debug("combatant removed", "name", name, "deleted", n)
	return n > 0, nil
}

// ClearAll deletes every combatant and ends the encounter.
func (e *Engine) ClearAll(ctx context.Context) error {
	n, err := e.store.DeleteAllCombatants(ctx)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if err := e.reload(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := e.resetIfEmpty(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	e.logger.Info("encounter cleared", "deleted", n)
	return nil
}

// SetInitiative changes a combatant's initiative and re-sorts the roster.
// The current-turn pointer stays on the same combatant.
func (e *Engine) SetInitiative(ctx context.Context, name string, initiative int) (bool, error) {
	i, ok := combat.FindByName(e.roster, name)
	if !ok {
		return false, nil
	}

	if err := e.store.UpdateInitiative(ctx, e.roster[i].ID, initiative); err != nil {
		return false, fmt.Errorf("set initiative %q: %w", name, err)
	}
	if err := e.reload(ctx); err != nil {
		return false, fmt.Errorf("set initiative %q: %w", name, err)
	}
	return true, nil
}

// TakeDamage subtracts amount from the named combatant's HP, floored at 0,
// when HP is tracked. A damage entry is always appended to the history,
// including for untracked combatants.
func (e *Engine) TakeDamage(ctx context.Context, name string, amount int, damageType string) (bool, error) {
	return e.applyHP(ctx, name, -amount, combat.DamageEntry(amount, damageType))
}

// Heal adds amount to the named combatant's HP, capped at MaxHP, when HP
// is tracked. A heal entry is always appended to the history.
func (e *Engine) Heal(ctx context.Context, name string, amount int) (bool, error) {
	return e.applyHP(ctx, name, amount, combat.HealEntry(amount))
}

func (e *Engine) applyHP(ctx context.Context, name string, delta int, entry combat.HistoryEntry) (bool, error) {
	i, ok := combat.FindByName(e.roster, name)
	if !ok {
		return false, nil
	}
	c := e.roster[i]

	if hp, tracked := c.ApplyDelta(delta); tracked {
		if err := e.store.UpdateCurrentHP(ctx, c.ID, hp); err != nil {
			return false, fmt.Errorf("%s %q: %w", entry.Kind, name, err)
		}
		e.logger.Debug("hp changed", "name", c.Name, "kind", entry.Kind, "amount", entry.Amount, "hp", hp)
	}

	if err := e.store.InsertHistory(ctx, c.ID, entry); err != nil {
		return false, fmt.Errorf("%s %q: %w", entry.Kind, name, err)
	}

	if err := e.reload(ctx); err != nil {
		return false, fmt.Errorf("%s %q: %w", entry.Kind, name, err)
	}
	return true, nil
}

// AddCondition attaches a condition to the named combatant. A nil
// duration means the condition lasts until removed.
func (e *Engine) AddCondition(ctx context.Context, name, condition string, duration *int) (bool, error) {
	if combat.NormalizeName(condition) == "" {
		return false, fmt.Errorf("add condition: %w", ErrInvalidName)
	}

	i, ok := combat.FindByName(e.roster, name)
	if !ok {
		return false, nil
	}

	if _, err := e.store.InsertCondition(ctx, e.roster[i].ID, condition, duration); err != nil {
		return false, fmt.Errorf("add condition %q to %q: %w", condition, name, err)
	}
	if err := e.reload(ctx); err != nil {
		return false, fmt.Errorf("add condition %q to %q: %w", condition, name, err)
	}
	return true, nil
}

// RemoveCondition deletes every condition with a matching name (case
// folded) from the named combatant. found reports whether the combatant
// exists, not whether a condition was deleted.
func (e *Engine) RemoveCondition(ctx context.Context, name, condition string) (bool, error) {
	i, ok := combat.FindByName(e.roster, name)
	if !ok {
		return false, nil
	}

	n, err := e.store.DeleteCondition(ctx, e.roster[i].ID, condition)
	if err != nil {
		return false, fmt.Errorf("remove condition %q from %q: %w", condition, name, err)
	}
	if err := e.reload(ctx); err != nil {
		return false, fmt.Errorf("remove condition %q from %q: %w", condition, name, err)
	}

	e.logger.Debug("condition removed", "name", name, "condition", condition, "deleted", n)
	return true, nil
}

// AdvanceTurn ends the current combatant's turn.
//
// The current combatant's timed conditions count down by one round and
// expire at zero. The roster is then reloaded and the pointer moves to the
// next combatant, wrapping to the top and incrementing the round after the
// last. No-op on an empty roster.
func (e *Engine) AdvanceTurn(ctx context.Context) error {
	if len(e.roster) == 0 {
		return nil
	}

	current := e.roster[e.state.CurrentIndex]
	for _, cond := range current.Conditions {
		if cond.Duration == nil {
			continue
		}

		remaining := *cond.Duration - 1
		if remaining <= 0 {
			if err := e.store.DeleteConditionRow(ctx, cond.ID); err != nil {
				return fmt.Errorf("advance turn: expire %q: %w", cond.Name, err)
			}
			e.logger.Info("condition expired", "name", current.Name, "condition", cond.Name)
			continue
		}
		if err := e.store.UpdateConditionDuration(ctx, cond.ID, remaining); err != nil {
			return fmt.Errorf("advance turn: tick %q: %w", cond.Name, err)
		}
	}

	if err := e.reload(ctx); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	if len(e.roster) == 0 {
		return nil
	}

	next := e.state
	next.CurrentIndex++
	if next.CurrentIndex >= len(e.roster) {
		next.CurrentIndex = 0
		next.Round++
	}

	if err := e.store.SaveState(ctx, next); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	if next.Round != e.state.Round {
		e.logger.Info("new round", "round", next.Round)
	}
	e.state = next

	e.logger.Debug("turn advanced",
		"current", e.roster[e.state.CurrentIndex].Name,
		"current_index", e.state.CurrentIndex,
		"round", e.state.Round)
	return nil
}
