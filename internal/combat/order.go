package combat

import "sort"

// Before reports whether a acts before b: higher initiative first, then
// name in descending order as a tie-break.
func Before(a, b Combatant) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	return a.Name > b.Name
}

// SortRoster sorts the roster in turn order and returns the new index of
// the combatant that was at current. If current was out of range, or the
// roster is empty, the returned index is current unchanged and ok is false.
//
// The pointer follows identity, not position.
func SortRoster(roster []Combatant, current int) (int, bool) {
	var id int64
	tracked := current >= 0 && current < len(roster)
	if tracked {
		id = roster[current].ID
	}

	sort.SliceStable(roster, func(i, j int) bool {
		return Before(roster[i], roster[j])
	})

	if !tracked {
		return current, false
	}
	return IndexOf(roster, id)
}

// IndexOf returns the position of the combatant with the given id.
func IndexOf(roster []Combatant, id int64) (int, bool) {
	for i := range roster {
		if roster[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// IsSorted reports whether the roster is in turn order.
func IsSorted(roster []Combatant) bool {
	return sort.SliceIsSorted(roster, func(i, j int) bool {
		return Before(roster[i], roster[j])
	})
}
