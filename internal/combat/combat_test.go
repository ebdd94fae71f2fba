package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortRoster_InitiativeThenNameDescending(t *testing.T) {
	roster := []Combatant{
		{ID: 1, Name: "Goblin", Initiative: 10},
		{ID: 2, Name: "Aria", Initiative: 15},
		{ID: 3, Name: "Bandit", Initiative: 10},
		{ID: 4, Name: "Zed", Initiative: 10},
	}

	SortRoster(roster, 0)

	names := make([]string, len(roster))
	for i, c := range roster {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Aria", "Zed", "Goblin", "Bandit"}, names)
	assert.True(t, IsSorted(roster))
}

func TestSortRoster_PointerFollowsIdentity(t *testing.T) {
	roster := []Combatant{
		{ID: 1, Name: "Goblin", Initiative: 10},
		{ID: 2, Name: "Aria", Initiative: 15},
	}

	idx, ok := SortRoster(roster, 0)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, int64(1), roster[idx].ID)
}

func TestSortRoster_OutOfRangePointer(t *testing.T) {
	roster := []Combatant{{ID: 1, Name: "A", Initiative: 1}}

	idx, ok := SortRoster(roster, 5)
	assert.False(t, ok)
	assert.Equal(t, 5, idx)

	idx, ok = SortRoster(nil, 0)
	assert.False(t, ok)
	assert.Equal(t, 0, idx)
}

func TestFindByName_CaseFolded(t *testing.T) {
	roster := []Combatant{
		{ID: 1, Name: "Straße"},
		{ID: 2, Name: "Goblin"},
		{ID: 3, Name: "goblin"},
	}

	idx, ok := FindByName(roster, "STRASSE")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = FindByName(roster, "GOBLIN")
	require.True(t, ok)
	assert.Equal(t, 1, idx, "first match in roster order wins")

	_, ok = FindByName(roster, "orc")
	assert.False(t, ok)
}

func TestNamesMatch_NormalizesAndTrims(t *testing.T) {
	assert.True(t, NamesMatch("Andr\u00e9", " ANDRE\u0301 "))
	assert.False(t, NamesMatch("Aria", "Arian"))
}

func TestApplyDelta(t *testing.T) {
	c := Combatant{MaxHP: Int(10), CurrentHP: Int(4)}

	hp, ok := c.ApplyDelta(-7)
	require.True(t, ok)
	assert.Equal(t, 0, hp)

	hp, _ = c.ApplyDelta(20)
	assert.Equal(t, 10, hp)

	hp, _ = c.ApplyDelta(3)
	assert.Equal(t, 7, hp)

	_, ok = Combatant{}.ApplyDelta(5)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		cur  *int
		max  *int
		want HPStatus
	}{
		{"untracked", nil, nil, StatusNone},
		{"zero max", Int(0), Int(0), StatusNone},
		{"dead", Int(0), Int(20), StatusDead},
		{"critical", Int(4), Int(20), StatusCritical},
		{"quarter is bloodied", Int(5), Int(20), StatusBloodied},
		{"half is healthy", Int(10), Int(20), StatusNone},
		{"full", Int(20), Int(20), StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Combatant{CurrentHP: tt.cur, MaxHP: tt.max}
			assert.Equal(t, tt.want, c.Status())
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	c := Combatant{
		MaxHP:      Int(10),
		CurrentHP:  Int(10),
		Conditions: []Condition{{Name: "prone", Duration: Int(2)}},
		History:    []HistoryEntry{DamageEntry(3, "fire")},
	}

	clone := c.Clone()
	*clone.CurrentHP = 1
	*clone.Conditions[0].Duration = 9
	clone.History[0].Amount = 99

	assert.Equal(t, 10, *c.CurrentHP)
	assert.Equal(t, 2, *c.Conditions[0].Duration)
	assert.Equal(t, 3, c.History[0].Amount)
}

func TestLabelsAndDescriptions(t *testing.T) {
	assert.Equal(t, "stunned(2r)", Condition{Name: "stunned", Duration: Int(2)}.Label())
	assert.Equal(t, "prone", Condition{Name: "prone"}.Label())
	assert.Equal(t, "Took 5 fire damage", DamageEntry(5, "fire").Describe())
	assert.Equal(t, "Took 5 damage", DamageEntry(5, "").Describe())
	assert.Equal(t, "Healed 3 HP", HealEntry(3).Describe())
	assert.Equal(t, "Aria (Init: 15, HP: 20/20, AC: 14)",
		Combatant{Name: "Aria", Initiative: 15, MaxHP: Int(20), CurrentHP: Int(20), ArmorClass: Int(14)}.String())
	assert.Equal(t, "Wolf (Init: 3, HP: N/A, AC: N/A)", Combatant{Name: "Wolf", Initiative: 3}.String())
}
