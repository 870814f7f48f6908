package combat

import (
	"fmt"
	"math/big"

	"github.com/blamedcloud/dndstats/internal/rv"
)

// AttackOutcome is the result category of an attack roll.
type AttackOutcome int

const (
	OutcomeMiss AttackOutcome = iota
	OutcomeHit
	OutcomeCrit
)

// String returns the outcome name.
func (o AttackOutcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeCrit:
		return "crit"
	default:
		return fmt.Sprintf("AttackOutcome(%d)", int(o))
	}
}

// Cmp orders outcomes miss < hit < crit.
func (o AttackOutcome) Cmp(other AttackOutcome) int { return int(o) - int(other) }

// EnumerateTo returns the outcomes from the receiver to hi inclusive.
func (o AttackOutcome) EnumerateTo(hi AttackOutcome) []AttackOutcome {
	var out []AttackOutcome
	for v := o; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}

// AlwaysConvex reports that outcome enumeration is exact.
func (AttackOutcome) AlwaysConvex() bool { return true }

// Meet returns the lesser outcome.
func (o AttackOutcome) Meet(other AttackOutcome) AttackOutcome {
	if other < o {
		return other
	}
	return o
}

// Join returns the greater outcome.
func (o AttackOutcome) Join(other AttackOutcome) AttackOutcome {
	if other > o {
		return other
	}
	return o
}

// Attack is a fully specified attack: the to-hit roll and the damage
// expression. An Attack is built up front and then queried against a
// target; resolution holds no hidden state, so one Attack value can be
// resolved against any number of targets.
type Attack struct {
	// HitBonus is added to the natural roll when comparing to AC.
	HitBonus int
	// RollType selects normal, advantage, disadvantage, or better.
	RollType RollType
	// CritLB is the lowest natural roll that crits on a hit. Zero
	// means the default of 20.
	CritLB int
	// Damage is the attack's damage expression.
	Damage *DamageDealer
}

// critLowerBound returns the effective crit threshold.
func (a *Attack) critLowerBound() int {
	if a.CritLB == 0 {
		return 20
	}
	return a.CritLB
}

// Outcome classifies a roll pair against an armor class. A natural 1
// always misses and a natural 20 always crits, regardless of the total.
func (a *Attack) Outcome(roll RollPair, ac int) AttackOutcome {
	nat := int(roll.First)
	total := int(roll.Second)
	switch {
	case nat == 1:
		return OutcomeMiss
	case nat == 20:
		return OutcomeCrit
	case total < ac:
		return OutcomeMiss
	case nat >= a.critLowerBound():
		return OutcomeCrit
	default:
		return OutcomeHit
	}
}

// OutcomeRV returns the distribution over miss, hit, and crit against
// the given armor class.
func (a *Attack) OutcomeRV(ac int) *rv.MapRV[AttackOutcome] {
	return rv.MapKeysRV(a.RollType.RollPairRV(a.HitBonus), func(roll RollPair) AttackOutcome {
		return a.Outcome(roll, ac)
	})
}

// OutcomeDamage returns the damage distribution for a single outcome
// against a target with the given resistances.
func (a *Attack) OutcomeDamage(outcome AttackOutcome, resistances map[DamageType]bool) (*rv.VecRV, error) {
	return a.Damage.OutcomeRV(outcome, resistances)
}

// DamageRV returns the unconditional damage distribution against the
// given armor class and resistances: the mixture of the per-outcome
// damage weighted by the outcome probabilities.
func (a *Attack) DamageRV(ac int, resistances map[DamageType]bool) (*rv.VecRV, error) {
	outcomes := a.OutcomeRV(ac)
	keys := outcomes.Keys()
	weights := make([]*big.Rat, 0, len(keys))
	parts := make([]*rv.VecRV, 0, len(keys))
	for _, o := range keys {
		dmg, err := a.OutcomeDamage(o, resistances)
		if err != nil {
			return nil, fmt.Errorf("damage on %s: %w", o, err)
		}
		weights = append(weights, outcomes.Pdf(o))
		parts = append(parts, dmg)
	}
	mixed, err := rv.Mix(weights, parts)
	if err != nil {
		return nil, fmt.Errorf("mixing outcome damage: %w", err)
	}
	return mixed, nil
}
