package combat

import "fmt"

// Health is a coarse health category. Damage application tracks exact
// damage distributions; the category is what conditions, strategies,
// and state merging observe.
type Health int

const (
	// Healthy means above the bloodied threshold.
	Healthy Health = iota
	// Bloodied means at or below half of maximum hit points.
	Bloodied
	// ZeroHP means downed but not dead.
	ZeroHP
	// Dead means removed from the encounter.
	Dead
)

// String returns the health category name.
func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Bloodied:
		return "bloodied"
	case ZeroHP:
		return "zero hp"
	case Dead:
		return "dead"
	default:
		return fmt.Sprintf("Health(%d)", int(h))
	}
}

// Alive reports whether the category can still act.
func (h Health) Alive() bool { return h == Healthy || h == Bloodied }

// BloodiedThreshold returns the hit point total at or below which a
// creature is bloodied: ceil(maxHP / 2).
func BloodiedThreshold(maxHP int) int { return (maxHP + 1) / 2 }

// HealthAt classifies the category after dmg total damage against maxHP
// hit points. diesAtZero selects Dead over ZeroHP at zero hit points.
//
// Precondition: maxHP must be positive.
func HealthAt(dmg, maxHP int, diesAtZero bool) Health {
	remaining := maxHP - dmg
	switch {
	case remaining <= 0 && diesAtZero:
		return Dead
	case remaining <= 0:
		return ZeroHP
	case remaining <= BloodiedThreshold(maxHP):
		return Bloodied
	default:
		return Healthy
	}
}
