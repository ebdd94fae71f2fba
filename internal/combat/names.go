package combat

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding space and converts to NFC so that
// visually identical names are stored identically.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// FoldName returns the case-folded form used for name comparison.
// cases.Caser is stateful, so a new one is built per call.
func FoldName(s string) string {
	return cases.Fold().String(NormalizeName(s))
}

// NamesMatch reports whether two names are equal under case folding.
func NamesMatch(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// FindByName returns the index of the first combatant whose name matches.
// Names are not unique; with duplicates, the first in roster order wins.
func FindByName(roster []Combatant, name string) (int, bool) {
	want := FoldName(name)
	for i := range roster {
		if FoldName(roster[i].Name) == want {
			return i, true
		}
	}
	return -1, false
}
