package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/initiative/internal/combat"
)

// SaveState overwrites both scalar state values in one transaction.
func (s *Store) SaveState(ctx context.Context, st combat.EncounterState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save state: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, kv := range []struct {
		key   string
		value int
	}{
		{keyRound, st.Round},
		{keyCurrentIndex, st.CurrentIndex},
	} {
		if _, err := tx.ExecContext(ctx, `UPDATE state SET value = ? WHERE key = ?`, kv.value, kv.key); err != nil {
			return fmt.Errorf("save state %q: %w", kv.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: commit: %w", err)
	}
	return nil
}

// InsertCombatant creates a combatant row and returns its generated id.
// current_hp starts equal to max_hp (both NULL when HP is untracked).
// Draft conditions are not written here; see InsertCondition.
func (s *Store) InsertCombatant(ctx context.Context, d combat.Draft) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO combatants (name, initiative, max_hp, current_hp, ac, is_player)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		combat.NormalizeName(d.Name),
		d.Initiative,
		nullInt(d.MaxHP),
		nullInt(d.MaxHP),
		nullInt(d.ArmorClass),
		d.IsPlayer,
	)
	if err != nil {
		return 0, fmt.Errorf("insert combatant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert combatant: last insert id: %w", err)
	}
	return id, nil
}

// UpdateInitiative changes a combatant's initiative.
// Returns ErrNotFound if the combatant does not exist.
func (s *Store) UpdateInitiative(ctx context.Context, id int64, initiative int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE combatants SET initiative = ? WHERE id = ?
	`, initiative, id)
	if err != nil {
		return fmt.Errorf("update initiative: %w", err)
	}
	return requireRow(result, "update initiative", id)
}

// DeleteCombatantByName deletes every combatant whose name matches under
// case folding. Conditions and history cascade. Returns the number of
// combatants deleted.
func (s *Store) DeleteCombatantByName(ctx context.Context, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM combatants WHERE casefold(name) = casefold(?)
	`, name)
	if err != nil {
		return 0, fmt.Errorf("delete combatant: %w", err)
	}
	return rowsAffected(result, "delete combatant")
}

// DeleteAllCombatants empties the roster. Returns the number deleted.
func (s *Store) DeleteAllCombatants(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM combatants`)
	if err != nil {
		return 0, fmt.Errorf("delete all combatants: %w", err)
	}
	return rowsAffected(result, "delete all combatants")
}

// UpdateCurrentHP sets a combatant's current hit points.
// Returns ErrNotFound if the combatant does not exist.
func (s *Store) UpdateCurrentHP(ctx context.Context, id int64, value int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE combatants SET current_hp = ? WHERE id = ?
	`, value, id)
	if err != nil {
		return fmt.Errorf("update current hp: %w", err)
	}
	return requireRow(result, "update current hp", id)
}

// InsertHistory appends an entry to a combatant's log.
// The combatant must exist (foreign key constraint).
func (s *Store) InsertHistory(ctx context.Context, id int64, entry combat.HistoryEntry) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("insert history: unknown kind %q", entry.Kind)
	}

	var damageType sql.NullString
	if entry.Kind == combat.HistoryDamage {
		damageType = sql.NullString{String: entry.DamageType, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (combatant_id, type, amount, damage_type)
		VALUES (?, ?, ?, ?)
	`, id, string(entry.Kind), entry.Amount, damageType)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// InsertCondition attaches a condition to a combatant. A nil duration is
// stored as NULL (indefinite). Returns the condition row id.
func (s *Store) InsertCondition(ctx context.Context, id int64, name string, duration *int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO conditions (combatant_id, condition, duration)
		VALUES (?, ?, ?)
	`, id, combat.NormalizeName(name), nullInt(duration))
	if err != nil {
		return 0, fmt.Errorf("insert condition: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert condition: last insert id: %w", err)
	}
	return rowID, nil
}

// DeleteCondition removes every condition on the combatant whose name
// matches under case folding. Returns the number of rows deleted.
func (s *Store) DeleteCondition(ctx context.Context, id int64, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM conditions
		WHERE combatant_id = ? AND casefold(condition) = casefold(?)
	`, id, name)
	if err != nil {
		return 0, fmt.Errorf("delete condition: %w", err)
	}
	return rowsAffected(result, "delete condition")
}

// UpdateConditionDuration sets the remaining rounds on one condition row.
// Returns ErrNotFound if the row does not exist.
func (s *Store) UpdateConditionDuration(ctx context.Context, rowID int64, duration int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE conditions SET duration = ? WHERE id = ?
	`, duration, rowID)
	if err != nil {
		return fmt.Errorf("update condition duration: %w", err)
	}
	return requireRow(result, "update condition duration", rowID)
}

// DeleteConditionRow removes one condition row by id.
// Returns ErrNotFound if the row does not exist.
func (s *Store) DeleteConditionRow(ctx context.Context, rowID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conditions WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("delete condition row: %w", err)
	}
	return requireRow(result, "delete condition row", rowID)
}

func rowsAffected(result sql.Result, op string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}

func requireRow(result sql.Result, op string, id int64) error {
	n, err := rowsAffected(result, op)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
