package combat_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blamedcloud/dndstats/internal/combat"
)

func TestContestWinProb(t *testing.T) {
	// Even contest: ties go to the defender.
	assert.Zero(t, combat.ContestWinProb(0, 0).Cmp(big.NewRat(19, 40)))

	// +5 athletics against a +2 defense.
	assert.Zero(t, combat.ContestWinProb(5, 2).Cmp(big.NewRat(247, 400)))

	// Overwhelming bonus always wins.
	assert.Zero(t, combat.ContestWinProb(25, 0).Cmp(big.NewRat(1, 1)))
}

func TestSaveSuccessProb(t *testing.T) {
	// +0 against DC 10: naturals 10 through 20.
	assert.Zero(t, combat.SaveSuccessProb(0, 10).Cmp(big.NewRat(11, 20)))

	// +2 against DC 10: naturals 8 through 20.
	assert.Zero(t, combat.SaveSuccessProb(2, 10).Cmp(big.NewRat(13, 20)))

	// Impossible save.
	assert.Zero(t, combat.SaveSuccessProb(0, 41).Sign())
}

func TestShoveDefenseBonus(t *testing.T) {
	p := &combat.Participant{Skills: map[combat.SkillName]int{
		combat.Athletics:  1,
		combat.Acrobatics: 4,
	}}
	assert.Equal(t, 4, p.ShoveDefenseBonus())

	p.Skills[combat.Athletics] = 6
	assert.Equal(t, 6, p.ShoveDefenseBonus())
}
