// Package render formats the encounter for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/initiative/internal/combat"
)

const ruleWidth = 75

var rule = strings.Repeat("-", ruleWidth)

// Encounter writes the round header and the roster table. The current
// combatant is marked with ">>".
func Encounter(w io.Writer, st combat.EncounterState, roster []combat.Combatant) error {
	var b strings.Builder

	if st.Started() {
		fmt.Fprintf(&b, "--- Round %d ---\n", st.Round)
	} else {
		b.WriteString("--- No encounter ---\n")
	}
	b.WriteString(row("#", "Name", "Init", "HP", "AC", "Type", "Conditions"))
	b.WriteString(rule + "\n")

	if len(roster) == 0 {
		b.WriteString("    (no combatants)\n")
	}
	for i, c := range roster {
		marker := ""
		if st.Started() && i == st.CurrentIndex {
			marker = ">>"
		}
		b.WriteString(row(
			marker,
			c.Name,
			fmt.Sprint(c.Initiative),
			hpColumn(c),
			combat.FormatOptional(c.ArmorClass),
			kind(c),
			notes(c),
		))
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// History writes a combatant's damage/heal log.
func History(w io.Writer, c combat.Combatant) error {
	var b strings.Builder

	fmt.Fprintf(&b, "--- History for %s ---\n", c.Name)
	if len(c.History) == 0 {
		b.WriteString("No history recorded.\n")
	}
	for _, h := range c.History {
		fmt.Fprintf(&b, "- %s\n", h.Describe())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func row(marker, name, init, hp, ac, typ, extra string) string {
	line := fmt.Sprintf("%-3s %-15s %-5s %-12s %-4s %-8s %s", marker, name, init, hp, ac, typ, extra)
	return strings.TrimRight(line, " ") + "\n"
}

func hpColumn(c combat.Combatant) string {
	if !c.TracksHP() {
		return "N/A"
	}
	return fmt.Sprintf("%s/%d", combat.FormatOptional(c.CurrentHP), *c.MaxHP)
}

func kind(c combat.Combatant) string {
	if c.IsPlayer {
		return "Player"
	}
	return "Monster"
}

// notes joins the HP status band and condition labels.
func notes(c combat.Combatant) string {
	var parts []string
	if s := c.Status(); s != combat.StatusNone {
		parts = append(parts, "["+string(s)+"]")
	}
	labels := make([]string, len(c.Conditions))
	for i, cond := range c.Conditions {
		labels[i] = cond.Label()
	}
	if len(labels) > 0 {
		parts = append(parts, strings.Join(labels, ", "))
	}
	return strings.Join(parts, " ")
}
