package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/initiative/internal/combat"
)

func TestSaveState_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := combat.EncounterState{Round: 4, CurrentIndex: 2}
	if err := s.SaveState(ctx, want); err != nil {
		t.Fatalf("SaveState() failed: %v", err)
	}

	got, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("LoadState() failed: %v", err)
	}
	if got != want {
		t.Errorf("state = %+v, want %+v", got, want)
	}
}

func TestInsertCombatant_CurrentHPStartsAtMax(t *testing.T) {
	s := createTestStore(t)

	id := insertTestCombatant(t, s, "Goblin", 10, 7)
	c := findCombatant(t, s, id)

	if c.MaxHP == nil || *c.MaxHP != 7 {
		t.Fatalf("max_hp = %v, want 7", c.MaxHP)
	}
	if c.CurrentHP == nil || *c.CurrentHP != 7 {
		t.Fatalf("current_hp = %v, want 7", c.CurrentHP)
	}
	if c.ArmorClass == nil || *c.ArmorClass != 12 {
		t.Fatalf("ac = %v, want 12", c.ArmorClass)
	}
}

func TestInsertCombatant_UntrackedHP(t *testing.T) {
	s := createTestStore(t)

	id, err := s.InsertCombatant(context.Background(), combat.Draft{Name: "Aria", Initiative: 15, IsPlayer: true})
	if err != nil {
		t.Fatalf("InsertCombatant() failed: %v", err)
	}

	c := findCombatant(t, s, id)
	if c.MaxHP != nil || c.CurrentHP != nil || c.ArmorClass != nil {
		t.Errorf("expected NULL hp/ac, got max=%v cur=%v ac=%v", c.MaxHP, c.CurrentHP, c.ArmorClass)
	}
	if !c.IsPlayer {
		t.Error("is_player = false, want true")
	}
	if c.Conditions == nil || c.History == nil {
		t.Error("conditions and history should be empty slices, not nil")
	}
}

func TestInsertCombatant_NormalizesName(t *testing.T) {
	s := createTestStore(t)

	id, err := s.InsertCombatant(context.Background(), combat.Draft{Name: "  André ", Initiative: 1})
	if err != nil {
		t.Fatalf("InsertCombatant() failed: %v", err)
	}

	if got := findCombatant(t, s, id).Name; got != "André" {
		t.Errorf("name = %q, want NFC %q", got, "André")
	}
}

func TestDeleteCombatantByName_CaseFoldedAllMatches(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertTestCombatant(t, s, "Goblin", 10, 7)
	insertTestCombatant(t, s, "goblin", 8, 7)
	insertTestCombatant(t, s, "Ära", 12, 7)

	n, err := s.DeleteCombatantByName(ctx, "GOBLIN")
	if err != nil {
		t.Fatalf("DeleteCombatantByName() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	// SQLite LOWER() leaves non-ASCII alone; casefold() must not.
	n, err = s.DeleteCombatantByName(ctx, "äRA")
	if err != nil {
		t.Fatalf("DeleteCombatantByName() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}

	n, err = s.DeleteCombatantByName(ctx, "nobody")
	if err != nil {
		t.Fatalf("DeleteCombatantByName() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d, want 0", n)
	}
}

func TestDeleteCombatant_CascadesConditionsAndHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := insertTestCombatant(t, s, "Goblin", 10, 7)
	if _, err := s.InsertCondition(ctx, id, "prone", nil); err != nil {
		t.Fatalf("InsertCondition() failed: %v", err)
	}
	if err := s.InsertHistory(ctx, id, combat.DamageEntry(3, "fire")); err != nil {
		t.Fatalf("InsertHistory() failed: %v", err)
	}

	if _, err := s.DeleteCombatantByName(ctx, "goblin"); err != nil {
		t.Fatalf("DeleteCombatantByName() failed: %v", err)
	}

	for _, table := range []string{"conditions", "history"} {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after cascade, want 0", table, count)
		}
	}
}

func TestDeleteAllCombatants(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertTestCombatant(t, s, "A", 1, 1)
	insertTestCombatant(t, s, "B", 2, 1)

	n, err := s.DeleteAllCombatants(ctx)
	if err != nil {
		t.Fatalf("DeleteAllCombatants() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	_, roster, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(roster) != 0 {
		t.Errorf("roster has %d combatants, want 0", len(roster))
	}
}

func TestUpdateCurrentHP(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := insertTestCombatant(t, s, "Goblin", 10, 10)
	if err := s.UpdateCurrentHP(ctx, id, 5); err != nil {
		t.Fatalf("UpdateCurrentHP() failed: %v", err)
	}
	if got := *findCombatant(t, s, id).CurrentHP; got != 5 {
		t.Errorf("current_hp = %d, want 5", got)
	}

	err := s.UpdateCurrentHP(ctx, 9999, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCurrentHP(missing) error = %v, want ErrNotFound", err)
	}
}

func TestInsertHistory_OrderAndDamageType(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := insertTestCombatant(t, s, "Goblin", 10, 10)
	entries := []combat.HistoryEntry{
		combat.DamageEntry(5, "fire"),
		combat.HealEntry(2),
		combat.DamageEntry(1, "cold"),
	}
	for _, e := range entries {
		if err := s.InsertHistory(ctx, id, e); err != nil {
			t.Fatalf("InsertHistory() failed: %v", err)
		}
	}

	got := findCombatant(t, s, id).History
	if len(got) != 3 {
		t.Fatalf("history has %d entries, want 3", len(got))
	}
	for i, e := range entries {
		if got[i].Kind != e.Kind || got[i].Amount != e.Amount || got[i].DamageType != e.DamageType {
			t.Errorf("history[%d] = %+v, want %+v", i, got[i], e)
		}
	}

	var nullCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM history WHERE type = 'heal' AND damage_type IS NULL`).Scan(&nullCount); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if nullCount != 1 {
		t.Errorf("heal entries with NULL damage_type = %d, want 1", nullCount)
	}
}

func TestInsertHistory_RejectsUnknownKind(t *testing.T) {
	s := createTestStore(t)
	id := insertTestCombatant(t, s, "Goblin", 10, 10)

	err := s.InsertHistory(context.Background(), id, combat.HistoryEntry{Kind: "poison", Amount: 1})
	if err == nil {
		t.Error("expected error for unknown history kind")
	}
}

func TestInsertHistory_RequiresCombatant(t *testing.T) {
	s := createTestStore(t)

	err := s.InsertHistory(context.Background(), 42, combat.HealEntry(1))
	if err == nil {
		t.Error("expected foreign key error for missing combatant")
	}
}

func TestConditions_Lifecycle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := insertTestCombatant(t, s, "Aria", 15, 20)
	stunned, err := s.InsertCondition(ctx, id, "Stunned", combat.Int(2))
	if err != nil {
		t.Fatalf("InsertCondition() failed: %v", err)
	}
	if _, err := s.InsertCondition(ctx, id, "blessed", nil); err != nil {
		t.Fatalf("InsertCondition() failed: %v", err)
	}

	conds := findCombatant(t, s, id).Conditions
	if len(conds) != 2 {
		t.Fatalf("conditions = %d, want 2", len(conds))
	}
	if conds[0].Name != "Stunned" || conds[0].Duration == nil || *conds[0].Duration != 2 {
		t.Errorf("conditions[0] = %+v", conds[0])
	}
	if conds[1].Duration != nil {
		t.Errorf("conditions[1] duration = %v, want nil", *conds[1].Duration)
	}

	if err := s.UpdateConditionDuration(ctx, stunned, 1); err != nil {
		t.Fatalf("UpdateConditionDuration() failed: %v", err)
	}
	if got := *findCombatant(t, s, id).Conditions[0].Duration; got != 1 {
		t.Errorf("duration = %d, want 1", got)
	}

	n, err := s.DeleteCondition(ctx, id, "BLESSED")
	if err != nil {
		t.Fatalf("DeleteCondition() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d conditions, want 1", n)
	}

	if err := s.DeleteConditionRow(ctx, stunned); err != nil {
		t.Fatalf("DeleteConditionRow() failed: %v", err)
	}
	if got := findCombatant(t, s, id).Conditions; len(got) != 0 {
		t.Errorf("conditions = %+v, want none", got)
	}

	if err := s.DeleteConditionRow(ctx, stunned); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteConditionRow(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateConditionDuration(ctx, stunned, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateConditionDuration(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateInitiative(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := insertTestCombatant(t, s, "Goblin", 10, 10)
	if err := s.UpdateInitiative(ctx, id, 18); err != nil {
		t.Fatalf("UpdateInitiative() failed: %v", err)
	}
	if got := findCombatant(t, s, id).Initiative; got != 18 {
		t.Errorf("initiative = %d, want 18", got)
	}

	if err := s.UpdateInitiative(ctx, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateInitiative(missing) error = %v, want ErrNotFound", err)
	}
}
