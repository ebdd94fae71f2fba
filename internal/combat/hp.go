package combat

// HPStatus is a coarse health band shown next to tracked combatants.
type HPStatus string

const (
	StatusNone     HPStatus = ""
	StatusBloodied HPStatus = "BLD"
	StatusCritical HPStatus = "CRIT"
	StatusDead     HPStatus = "DEAD"
)

// ClampHP bounds v to [0, maxHP].
func ClampHP(v, maxHP int) int {
	if v < 0 {
		return 0
	}
	if v > maxHP {
		return maxHP
	}
	return v
}

// ApplyDelta returns the combatant's new current HP after adding delta,
// clamped to [0, MaxHP]. ok is false when HP is untracked.
func (c Combatant) ApplyDelta(delta int) (hp int, ok bool) {
	if c.MaxHP == nil {
		return 0, false
	}
	cur := *c.MaxHP
	if c.CurrentHP != nil {
		cur = *c.CurrentHP
	}
	return ClampHP(cur+delta, *c.MaxHP), true
}

// Status returns the health band for tracked combatants with a positive
// max HP. Thresholds: dead at 0, critical under a quarter, bloodied under
// half.
func (c Combatant) Status() HPStatus {
	if c.MaxHP == nil || *c.MaxHP <= 0 || c.CurrentHP == nil {
		return StatusNone
	}
	cur, maxHP := *c.CurrentHP, *c.MaxHP
	switch {
	case cur <= 0:
		return StatusDead
	case cur*4 < maxHP:
		return StatusCritical
	case cur*2 < maxHP:
		return StatusBloodied
	default:
		return StatusNone
	}
}
