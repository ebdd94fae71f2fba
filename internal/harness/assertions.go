package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final encounter
// and returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result.Final, a); err != nil {
			err.Trace = result.Trace
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}

func evaluate(snap engine.Snapshot, a Assertion) *AssertionError {
	fail := func(expected, actual string) *AssertionError {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	}

	switch a.Type {
	case AssertOrder:
		got := make([]string, len(snap.Combatants))
		for i, c := range snap.Combatants {
			got[i] = c.Name
		}
		if !slices.Equal(got, a.Names) {
			return fail(fmt.Sprint(a.Names), fmt.Sprint(got))
		}

	case AssertCurrent:
		got := ""
		if len(snap.Combatants) > 0 {
			got = snap.Combatants[snap.CurrentIndex].Name
		}
		if got != a.Name {
			return fail(fmt.Sprintf("current %q", a.Name), fmt.Sprintf("current %q", got))
		}

	case AssertRound:
		if snap.Round != *a.Value {
			return fail(fmt.Sprintf("round %d", *a.Value), fmt.Sprintf("round %d", snap.Round))
		}

	case AssertIndex:
		if snap.CurrentIndex != *a.Value {
			return fail(fmt.Sprintf("current_index %d", *a.Value), fmt.Sprintf("current_index %d", snap.CurrentIndex))
		}

	case AssertCount:
		if len(snap.Combatants) != *a.Value {
			return fail(fmt.Sprintf("%d combatants", *a.Value), fmt.Sprintf("%d combatants", len(snap.Combatants)))
		}

	case AssertHP, AssertStatus, AssertConditions, AssertHistory:
		i, ok := combat.FindByName(snap.Combatants, a.Name)
		if !ok {
			return fail(fmt.Sprintf("combatant %q", a.Name), "not in roster")
		}
		return evaluateCombatant(snap.Combatants[i], a, fail)

	default:
		return fail("known assertion type", a.Type)
	}

	return nil
}

func evaluateCombatant(c combat.Combatant, a Assertion, fail func(string, string) *AssertionError) *AssertionError {
	switch a.Type {
	case AssertHP:
		got := "untracked"
		if c.TracksHP() {
			got = combat.FormatOptional(c.CurrentHP)
		}
		want := "untracked"
		if !a.Untracked {
			want = fmt.Sprint(*a.Value)
		}
		if got != want {
			return fail(fmt.Sprintf("%s hp %s", c.Name, want), fmt.Sprintf("%s hp %s", c.Name, got))
		}

	case AssertStatus:
		got := string(c.Status())
		if got == "" {
			got = "none"
		}
		if !strings.EqualFold(got, a.Status) {
			return fail(fmt.Sprintf("%s status %s", c.Name, a.Status), fmt.Sprintf("%s status %s", c.Name, got))
		}

	case AssertConditions:
		got := make([]string, len(c.Conditions))
		for i, cond := range c.Conditions {
			got[i] = cond.Label()
		}
		if !slices.Equal(got, a.Labels) {
			return fail(fmt.Sprintf("%s conditions %v", c.Name, a.Labels), fmt.Sprintf("%s conditions %v", c.Name, got))
		}

	case AssertHistory:
		got := make([]string, len(c.History))
		for i, h := range c.History {
			got[i] = h.Describe()
		}
		if !slices.Equal(got, a.Lines) {
			return fail(fmt.Sprintf("%s history %q", c.Name, a.Lines), fmt.Sprintf("%s history %q", c.Name, got))
		}
	}
	return nil
}
