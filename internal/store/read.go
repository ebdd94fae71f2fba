package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/initiative/internal/combat"
)

// LoadAll reads the encounter state and every combatant with its
// conditions and history.
//
// Combatants are returned in id order. Turn order is imposed by the engine.
// Returns an empty slice (not nil) when the roster is empty.
func (s *Store) LoadAll(ctx context.Context) (combat.EncounterState, []combat.Combatant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return combat.EncounterState{}, nil, fmt.Errorf("load all: begin tx: %w", err)
	}
	defer tx.Rollback() // read-only; nothing to commit

	state, err := loadState(ctx, tx)
	if err != nil {
		return combat.EncounterState{}, nil, err
	}

	roster, err := loadCombatants(ctx, tx)
	if err != nil {
		return combat.EncounterState{}, nil, err
	}

	byID := make(map[int64]*combat.Combatant, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}

	if err := loadConditions(ctx, tx, byID); err != nil {
		return combat.EncounterState{}, nil, err
	}
	if err := loadHistory(ctx, tx, byID); err != nil {
		return combat.EncounterState{}, nil, err
	}

	return state, roster, nil
}

// LoadState reads only the two scalar state values.
func (s *Store) LoadState(ctx context.Context) (combat.EncounterState, error) {
	return loadState(ctx, s.db)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadState(ctx context.Context, q queryer) (combat.EncounterState, error) {
	round, err := readStateValue(ctx, q, keyRound)
	if err != nil {
		return combat.EncounterState{}, err
	}
	idx, err := readStateValue(ctx, q, keyCurrentIndex)
	if err != nil {
		return combat.EncounterState{}, err
	}
	return combat.EncounterState{Round: round, CurrentIndex: idx}, nil
}

func readStateValue(ctx context.Context, q queryer, key string) (int, error) {
	var v sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: missing %q", ErrCorruptState, key)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read %q: %v", ErrCorruptState, key, err)
	}
	if !v.Valid || v.Int64 < 0 {
		return 0, fmt.Errorf("%w: invalid %q", ErrCorruptState, key)
	}
	return int(v.Int64), nil
}

func loadCombatants(ctx context.Context, q queryer) ([]combat.Combatant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, initiative, max_hp, current_hp, ac, is_player
		FROM combatants
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query combatants: %w", err)
	}
	defer rows.Close()

	roster := []combat.Combatant{}
	for rows.Next() {
		var (
			c                   combat.Combatant
			maxHP, curHP, armor sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Initiative, &maxHP, &curHP, &armor, &c.IsPlayer); err != nil {
			return nil, fmt.Errorf("scan combatant: %w", err)
		}
		c.MaxHP = nullableInt(maxHP)
		c.CurrentHP = nullableInt(curHP)
		c.ArmorClass = nullableInt(armor)
		c.Conditions = []combat.Condition{}
		c.History = []combat.HistoryEntry{}
		roster = append(roster, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combatants: %w", err)
	}
	return roster, nil
}

func loadConditions(ctx context.Context, q queryer, byID map[int64]*combat.Combatant) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, combatant_id, condition, duration
		FROM conditions
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("query conditions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cond     combat.Condition
			owner    sql.NullInt64
			duration sql.NullInt64
		)
		if err := rows.Scan(&cond.ID, &owner, &cond.Name, &duration); err != nil {
			return fmt.Errorf("scan condition: %w", err)
		}
		cond.Duration = nullableInt(duration)
		// Orphans (NULL or dangling owner) are skipped.
		if c, ok := byID[owner.Int64]; ok && owner.Valid {
			c.Conditions = append(c.Conditions, cond)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate conditions: %w", err)
	}
	return nil
}

func loadHistory(ctx context.Context, q queryer, byID map[int64]*combat.Combatant) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, combatant_id, type, amount, damage_type
		FROM history
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry      combat.HistoryEntry
			owner      sql.NullInt64
			kind       string
			amount     sql.NullInt64
			damageType sql.NullString
		)
		if err := rows.Scan(&entry.ID, &owner, &kind, &amount, &damageType); err != nil {
			return fmt.Errorf("scan history: %w", err)
		}
		entry.Kind = combat.HistoryKind(kind)
		entry.Amount = int(amount.Int64)
		entry.DamageType = damageType.String
		if c, ok := byID[owner.Int64]; ok && owner.Valid {
			c.History = append(c.History, entry)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate history: %w", err)
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
