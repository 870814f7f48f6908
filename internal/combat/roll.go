// Package combat implements the combat rules layer: d20 rolls, attack
// and damage resolution, health categories, resources, conditions,
// actions, and participants. All probabilistic quantities are exact
// distributions from the rv package.
package combat

import (
	"fmt"

	"github.com/blamedcloud/dndstats/internal/rv"
)

// RollType selects how a d20 is rolled.
type RollType int

const (
	// RollNormal is a single d20.
	RollNormal RollType = iota
	// RollAdvantage keeps the higher of two d20s.
	RollAdvantage
	// RollDisadvantage keeps the lower of two d20s.
	RollDisadvantage
	// RollSuperAdvantage keeps the highest of three d20s.
	RollSuperAdvantage
)

// String returns the roll type name.
func (rt RollType) String() string {
	switch rt {
	case RollNormal:
		return "normal"
	case RollAdvantage:
		return "advantage"
	case RollDisadvantage:
		return "disadvantage"
	case RollSuperAdvantage:
		return "super advantage"
	default:
		return fmt.Sprintf("RollType(%d)", int(rt))
	}
}

// D20RV returns the distribution of the natural roll for this roll
// type.
func (rt RollType) D20RV() *rv.VecRV {
	d20, err := rv.D(20)
	if err != nil {
		panic(err)
	}
	switch rt {
	case RollAdvantage:
		return d20.MaxTwo()
	case RollDisadvantage:
		return d20.MinTwo()
	case RollSuperAdvantage:
		return d20.MaxThree()
	default:
		return d20
	}
}

// RollPair is the joint key (natural roll, natural roll plus bonus).
// The natural roll is needed alongside the total because natural 1 and
// natural 20 override the total comparison.
type RollPair = rv.Pair[rv.Int, rv.Int]

// RollPairRV returns the joint distribution of (natural, natural+bonus)
// for this roll type.
func (rt RollType) RollPairRV(bonus int) *rv.MapRV[RollPair] {
	return rv.MapKeysRV(rt.D20RV().ToMap(), func(nat rv.Int) RollPair {
		return RollPair{First: nat, Second: nat + rv.Int(bonus)}
	})
}
