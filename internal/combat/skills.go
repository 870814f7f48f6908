package combat

import (
	"math/big"

	"github.com/blamedcloud/dndstats/internal/rv"
)

// SkillName identifies a contested skill.
type SkillName string

const (
	Athletics  SkillName = "athletics"
	Acrobatics SkillName = "acrobatics"
)

// AbilityName identifies a saving throw ability.
type AbilityName string

const (
	Strength     AbilityName = "strength"
	Dexterity    AbilityName = "dexterity"
	Constitution AbilityName = "constitution"
	Intelligence AbilityName = "intelligence"
	Wisdom       AbilityName = "wisdom"
	Charisma     AbilityName = "charisma"
)

// ContestWinProb returns the probability the initiator wins a skill
// contest: both sides roll a d20 plus their bonus and ties go to the
// defender.
func ContestWinProb(initiatorBonus, defenderBonus int) *big.Rat {
	d20 := RollNormal.D20RV()
	return d20.Shift(initiatorBonus).ProbGT(d20.Shift(defenderBonus))
}

// SaveSuccessProb returns the probability a d20 plus the save bonus
// meets or exceeds the difficulty class.
func SaveSuccessProb(saveBonus, dc int) *big.Rat {
	d20 := RollNormal.D20RV()
	return d20.Shift(saveBonus).ProbGE(rv.Constant(dc))
}
