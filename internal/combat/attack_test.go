package combat_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/blamedcloud/dndstats/internal/combat"
)

// greatsword is a +5 to hit, 2d6+3 slashing attack used across tests.
func greatsword() *combat.Attack {
	return &combat.Attack{
		HitBonus: 5,
		Damage: combat.NewDamageDealer().
			AddBase(combat.Dice(2, 6, combat.Slashing)).
			AddBase(combat.Flat(3, combat.Slashing)),
	}
}

func TestOutcomeRules(t *testing.T) {
	atk := greatsword()

	pair := func(nat, total int) combat.RollPair {
		return combat.RollPair{First: rvInt(nat), Second: rvInt(total)}
	}

	t.Run("natural one always misses", func(t *testing.T) {
		assert.Equal(t, combat.OutcomeMiss, atk.Outcome(pair(1, 100), 10))
	})

	t.Run("natural twenty always crits", func(t *testing.T) {
		assert.Equal(t, combat.OutcomeCrit, atk.Outcome(pair(20, 25), 100))
	})

	t.Run("total below AC misses", func(t *testing.T) {
		assert.Equal(t, combat.OutcomeMiss, atk.Outcome(pair(7, 12), 13))
	})

	t.Run("total at AC hits", func(t *testing.T) {
		assert.Equal(t, combat.OutcomeHit, atk.Outcome(pair(8, 13), 13))
	})

	t.Run("expanded crit range crits on a hit", func(t *testing.T) {
		expanded := greatsword()
		expanded.CritLB = 19
		assert.Equal(t, combat.OutcomeCrit, expanded.Outcome(pair(19, 24), 13))
		assert.Equal(t, combat.OutcomeHit, atk.Outcome(pair(19, 24), 13))
	})

	t.Run("expanded crit range still needs the total", func(t *testing.T) {
		expanded := greatsword()
		expanded.CritLB = 19
		assert.Equal(t, combat.OutcomeMiss, expanded.Outcome(pair(19, 24), 30))
	})
}

func TestGreatswordVsAC13(t *testing.T) {
	atk := greatsword()
	outcomes := atk.OutcomeRV(13)

	// Hits on a natural 8 or better, crits only on the natural 20.
	assert.Zero(t, outcomes.Pdf(combat.OutcomeMiss).Cmp(big.NewRat(7, 20)))
	assert.Zero(t, outcomes.Pdf(combat.OutcomeHit).Cmp(big.NewRat(12, 20)))
	assert.Zero(t, outcomes.Pdf(combat.OutcomeCrit).Cmp(big.NewRat(1, 20)))

	dmg, err := atk.DamageRV(13, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, dmg.LowerBound())
	assert.Equal(t, 27, dmg.UpperBound())
	// (12/20) * 10 + (1/20) * 17
	assert.Zero(t, dmg.Ev().Cmp(big.NewRat(137, 20)))
}

func TestCritDoublesDiceNotConstants(t *testing.T) {
	atk := greatsword()

	hit, err := atk.OutcomeDamage(combat.OutcomeHit, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, hit.LowerBound())
	assert.Equal(t, 15, hit.UpperBound())
	assert.Zero(t, hit.Ev().Cmp(big.NewRat(10, 1)))

	crit, err := atk.OutcomeDamage(combat.OutcomeCrit, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, crit.LowerBound())
	assert.Equal(t, 27, crit.UpperBound())
	assert.Zero(t, crit.Ev().Cmp(big.NewRat(17, 1)))
}

func TestCritBonusTermsOnlyOnCrit(t *testing.T) {
	atk := greatsword()
	atk.Damage.AddCritBonus(combat.Dice(1, 6, combat.Slashing))

	hit, err := atk.OutcomeDamage(combat.OutcomeHit, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, hit.UpperBound())

	// Crit bonus dice are added as written, not doubled.
	crit, err := atk.OutcomeDamage(combat.OutcomeCrit, nil)
	require.NoError(t, err)
	assert.Equal(t, 33, crit.UpperBound())
	assert.Zero(t, crit.Ev().Cmp(big.NewRat(41, 2)))
}

func TestMissDamage(t *testing.T) {
	atk := greatsword()

	miss, err := atk.OutcomeDamage(combat.OutcomeMiss, nil)
	require.NoError(t, err)
	assert.True(t, miss.Equal(constantRV(0)))

	atk.Damage.AddMiss(combat.Flat(2, combat.Force))
	miss, err = atk.OutcomeDamage(combat.OutcomeMiss, nil)
	require.NoError(t, err)
	assert.True(t, miss.Equal(constantRV(2)))
}

func TestWeaponDiceNeedWeapon(t *testing.T) {
	dealer := combat.NewDamageDealer().
		AddBase(combat.WeaponDice(combat.Slashing)).
		AddBase(combat.Flat(3, combat.Slashing))

	_, err := dealer.HitRV(nil)
	assert.ErrorIs(t, err, combat.ErrNoWeapon)

	dealer.SetWeapon(combat.DiceSet{Count: 2, Sides: 6})
	hit, err := dealer.HitRV(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, hit.LowerBound())
	assert.Equal(t, 15, hit.UpperBound())

	// Weapon dice double on a crit.
	crit, err := dealer.CritRV(nil)
	require.NoError(t, err)
	assert.Equal(t, 27, crit.UpperBound())
}

func TestSingleWeaponDieNotDoubled(t *testing.T) {
	dealer := combat.NewDamageDealer().
		AddBase(combat.WeaponDice(combat.Slashing)).
		AddCritBonus(combat.SingleWeaponDie(combat.Slashing)).
		SetWeapon(combat.DiceSet{Count: 2, Sides: 6})

	crit, err := dealer.CritRV(nil)
	require.NoError(t, err)
	// 4d6 from the doubled weapon dice plus a single extra d6.
	assert.Equal(t, 5, crit.LowerBound())
	assert.Equal(t, 30, crit.UpperBound())
}

func TestResistanceHalvesPerType(t *testing.T) {
	dealer := combat.NewDamageDealer().
		AddBase(combat.Flat(7, combat.Fire)).
		AddBase(combat.Flat(4, combat.Slashing))

	resist := map[combat.DamageType]bool{combat.Fire: true}
	hit, err := dealer.HitRV(resist)
	require.NoError(t, err)
	// Fire halves to 3 before summing with the slashing 4.
	assert.True(t, hit.Equal(constantRV(7)))
}

func TestGreatWeaponFightingReroll(t *testing.T) {
	dice := combat.DiceSet{Count: 2, Sides: 6, Reroll: 2}
	total, err := dice.RV()
	require.NoError(t, err)
	// Each die has EV 25/6, so the pair is 25/3.
	assert.Zero(t, total.Ev().Cmp(big.NewRat(25, 3)))
}

func TestHealingNeverDealsDamage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 4).Draw(t, "count")
		sides := rapid.IntRange(2, 12).Draw(t, "sides")
		dealer := combat.NewDamageDealer().AddBase(combat.Dice(count, sides, combat.Radiant))

		hit, err := dealer.HitRV(nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hit.LowerBound(), 0)
	})
}

func TestDamageNeverNegative(t *testing.T) {
	// A large penalty cannot push damage below zero.
	dealer := combat.NewDamageDealer().
		AddBase(combat.Dice(1, 4, combat.Piercing)).
		AddBase(combat.Flat(-3, combat.Piercing))

	hit, err := dealer.HitRV(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, hit.LowerBound())
	assert.Equal(t, 1, hit.UpperBound())
	assert.Zero(t, hit.Pdf(0).Cmp(big.NewRat(3, 4)))
}
