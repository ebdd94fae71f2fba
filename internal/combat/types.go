package combat

import (
	"fmt"
	"strconv"
)

// Combatant is a participant in the encounter.
type Combatant struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Initiative int            `json:"initiative"`
	MaxHP      *int           `json:"max_hp"`
	CurrentHP  *int           `json:"current_hp"`
	ArmorClass *int           `json:"ac"`
	IsPlayer   bool           `json:"is_player"`
	Conditions []Condition    `json:"conditions"`
	History    []HistoryEntry `json:"history"`
}

// TracksHP reports whether hit points are tracked for this combatant.
func (c Combatant) TracksHP() bool {
	return c.MaxHP != nil
}

// Clone returns a deep copy so callers cannot mutate engine-owned state.
func (c Combatant) Clone() Combatant {
	out := c
	out.MaxHP = cloneInt(c.MaxHP)
	out.CurrentHP = cloneInt(c.CurrentHP)
	out.ArmorClass = cloneInt(c.ArmorClass)
	out.Conditions = make([]Condition, len(c.Conditions))
	for i, cond := range c.Conditions {
		cond.Duration = cloneInt(cond.Duration)
		out.Conditions[i] = cond
	}
	out.History = append([]HistoryEntry{}, c.History...)
	return out
}

func (c Combatant) String() string {
	hp := "N/A"
	if c.MaxHP != nil {
		hp = fmt.Sprintf("%s/%d", FormatOptional(c.CurrentHP), *c.MaxHP)
	}
	return fmt.Sprintf("%s (Init: %d, HP: %s, AC: %s)", c.Name, c.Initiative, hp, FormatOptional(c.ArmorClass))
}

// Condition is a status effect attached to one combatant.
// A nil Duration means the condition lasts until removed.
type Condition struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Duration *int   `json:"duration"`
}

// Label renders the condition as shown in the roster, e.g. "stunned(2r)".
func (c Condition) Label() string {
	if c.Duration == nil {
		return c.Name
	}
	return fmt.Sprintf("%s(%dr)", c.Name, *c.Duration)
}

// HistoryKind tags a HistoryEntry.
type HistoryKind string

const (
	HistoryDamage HistoryKind = "damage"
	HistoryHeal   HistoryKind = "heal"
)

// Valid reports whether k is a known history kind.
func (k HistoryKind) Valid() bool {
	return k == HistoryDamage || k == HistoryHeal
}

// HistoryEntry is one append-only record in a combatant's log.
// DamageType is only meaningful when Kind is HistoryDamage.
type HistoryEntry struct {
	ID         int64       `json:"id"`
	Kind       HistoryKind `json:"type"`
	Amount     int         `json:"amount"`
	DamageType string      `json:"damage_type,omitempty"`
}

// DamageEntry builds a damage history entry.
func DamageEntry(amount int, damageType string) HistoryEntry {
	return HistoryEntry{Kind: HistoryDamage, Amount: amount, DamageType: damageType}
}

// HealEntry builds a heal history entry.
func HealEntry(amount int) HistoryEntry {
	return HistoryEntry{Kind: HistoryHeal, Amount: amount}
}

// Describe renders the entry as a log line.
func (h HistoryEntry) Describe() string {
	if h.Kind == HistoryHeal {
		return fmt.Sprintf("Healed %d HP", h.Amount)
	}
	if h.DamageType == "" {
		return fmt.Sprintf("Took %d damage", h.Amount)
	}
	return fmt.Sprintf("Took %d %s damage", h.Amount, h.DamageType)
}

// EncounterState is the pair of scalar values persisted next to the roster.
// Round 0 means no encounter has started.
type EncounterState struct {
	Round        int `json:"round"`
	CurrentIndex int `json:"current_index"`
}

// Started reports whether an encounter is running.
func (s EncounterState) Started() bool {
	return s.Round > 0
}

// Draft describes a combatant that has not been stored yet.
type Draft struct {
	Name       string           `json:"name"`
	Initiative int              `json:"initiative"`
	MaxHP      *int             `json:"hp,omitempty"`
	ArmorClass *int             `json:"ac,omitempty"`
	IsPlayer   bool             `json:"player"`
	Conditions []DraftCondition `json:"conditions,omitempty"`
}

// DraftCondition is a condition applied when a Draft is added.
type DraftCondition struct {
	Name     string `json:"name"`
	Duration *int   `json:"duration,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// FormatOptional renders an optional integer, "N/A" when absent.
func FormatOptional(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
