package encounter_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
	"github.com/blamedcloud/dndstats/internal/encounter"
	"github.com/blamedcloud/dndstats/internal/sim"
)

const duelYAML = `
name: duel
participants:
  - name: fighter
    team: players
    ac: 16
    max_hp: 20
    skills:
      athletics: 5
    saves:
      constitution: 2
    attack:
      hit_bonus: 5
      weapon: 2d6
      damage:
        - weapon: true
          type: slashing
        - flat: 3
          type: slashing
    second_wind: 1d10+1
    action_surge: true
    strategy: [second_wind, basic_attack, action_surge]
  - name: dummy
    team: enemies
    ac: 13
    max_hp: 1000
    dies_at_zero: false
`

func convertYAML(t *testing.T, src string) ([]*combat.Participant, []strategy.Strategy) {
	t.Helper()
	def, err := encounter.Parse([]byte(src))
	require.NoError(t, err)
	roster, strategies, err := encounter.Convert(def, nil)
	require.NoError(t, err)
	return roster, strategies
}

func TestConvertDuel(t *testing.T) {
	roster, strategies := convertYAML(t, duelYAML)
	require.Len(t, roster, 2)
	require.Len(t, strategies, 2)

	fighter := roster[0]
	assert.Equal(t, combat.TeamPlayers, fighter.Team)
	assert.Equal(t, 16, fighter.AC)
	assert.True(t, fighter.DiesAtZero)
	assert.Equal(t, 5, fighter.SkillBonus(combat.Athletics))
	assert.Equal(t, 2, fighter.SaveBonus(combat.Constitution))

	dummy := roster[1]
	assert.Equal(t, combat.TeamEnemies, dummy.Team)
	assert.False(t, dummy.DiesAtZero)

	opt, err := fighter.Actions.Option(combat.PrimaryAttack)
	require.NoError(t, err)
	dmg, err := opt.Action.Attack.DamageRV(13, nil)
	require.NoError(t, err)
	assert.Zero(t, dmg.Ev().Cmp(big.NewRat(137, 20)))
}

func TestConvertFeatureResources(t *testing.T) {
	roster, _ := convertYAML(t, duelYAML)
	rm := roster[0].StartingResources()

	assert.Equal(t, 1, rm.Count(combat.ResourceForAction(combat.SecondWind)))
	assert.Equal(t, 1, rm.Count(combat.ResourceForAction(combat.ActionSurge)))
	assert.Equal(t, 1, rm.Count(combat.ResourceForType(combat.TypeAction)))

	_, err := roster[0].Actions.Option(combat.SecondWind)
	assert.NoError(t, err)
	_, err = roster[0].Actions.Option(combat.ActionSurge)
	assert.NoError(t, err)
}

func TestConvertSneakAttack(t *testing.T) {
	roster, _ := convertYAML(t, `
participants:
  - name: rogue
    team: players
    ac: 14
    max_hp: 18
    attack:
      hit_bonus: 5
      damage:
        - dice: 1d6+3
          type: piercing
    sneak_attack: 1d6
    strategy: [basic_attack, sneak_attack]
  - name: dummy
    team: enemies
    ac: 13
    max_hp: 100
`)
	rogue := roster[0]
	ta, ok := rogue.Triggers.Find(combat.TriggerSuccessfulAttack, combat.SneakAttack)
	require.True(t, ok)
	require.NotNil(t, ta.Cost)
	assert.Equal(t, 1, rogue.StartingResources().Count(*ta.Cost))
}

func TestConvertShoveAndConditions(t *testing.T) {
	roster, _ := convertYAML(t, `
participants:
  - name: brawler
    team: players
    ac: 16
    max_hp: 20
    skills:
      athletics: 5
    shove: true
    strategy: [do_nothing]
  - name: wizard
    team: enemies
    ac: 12
    max_hp: 30
    conditions: [concentrating]
    resistances: [fire, cold]
`)
	opt, err := roster[0].Actions.Option(combat.ShoveProne)
	require.NoError(t, err)
	assert.True(t, opt.RequiresTarget)
	assert.Equal(t, combat.TypeAction, opt.Type)

	wizard := roster[1]
	assert.Equal(t, []combat.ConditionName{combat.CondConcentrating}, wizard.Conditions)
	assert.True(t, wizard.Resistances[combat.Fire])
	assert.True(t, wizard.Resistances[combat.Cold])
	assert.False(t, wizard.Resistances[combat.Slashing])
}

func TestConvertAdvantageRoll(t *testing.T) {
	roster, _ := convertYAML(t, `
participants:
  - name: barbarian
    team: players
    ac: 14
    max_hp: 30
    attack:
      hit_bonus: 5
      roll: advantage
      crit_threshold: 19
      damage:
        - dice: 1d12+3
          type: slashing
  - name: dummy
    team: enemies
    ac: 13
    max_hp: 100
`)
	opt, err := roster[0].Actions.Option(combat.PrimaryAttack)
	require.NoError(t, err)
	atk := opt.Action.Attack
	assert.Equal(t, combat.RollAdvantage, atk.RollType)
	assert.Equal(t, 19, atk.CritLB)
}

func TestConvertErrors(t *testing.T) {
	cases := map[string]string{
		"unknown team": `
participants:
  - name: x
    team: neutral
    ac: 10
    max_hp: 5
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`,
		"unknown damage type": `
participants:
  - name: x
    team: players
    ac: 10
    max_hp: 5
    attack:
      hit_bonus: 0
      damage:
        - dice: 1d6
          type: emotional
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`,
		"bad dice expression": `
participants:
  - name: x
    team: players
    ac: 10
    max_hp: 5
    second_wind: banana
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`,
		"unknown strategy": `
participants:
  - name: x
    team: players
    ac: 10
    max_hp: 5
    strategy: [flee]
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`,
		"unknown skill": `
participants:
  - name: x
    team: players
    ac: 10
    max_hp: 5
    skills:
      juggling: 3
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			def, err := encounter.Parse([]byte(src))
			require.NoError(t, err)
			_, _, err = encounter.Convert(def, nil)
			assert.ErrorIs(t, err, encounter.ErrInvalidDefinition)
		})
	}
}

// stubResolver resolves every script name to a fixed strategy.
type stubResolver struct {
	st  strategy.Strategy
	err error
}

func (r stubResolver) Strategy(string) (strategy.Strategy, error) { return r.st, r.err }

func TestConvertScriptStrategy(t *testing.T) {
	src := `
participants:
  - name: x
    team: players
    ac: 10
    max_hp: 5
    strategy: ["script:kiter"]
  - name: y
    team: enemies
    ac: 10
    max_hp: 5
`
	def, err := encounter.Parse([]byte(src))
	require.NoError(t, err)

	_, strategies, err := encounter.Convert(def, stubResolver{st: strategy.NewDoNothing()})
	require.NoError(t, err)
	require.Len(t, strategies, 2)

	// Without a resolver the script entry must fail.
	_, _, err = encounter.Convert(def, nil)
	assert.ErrorIs(t, err, encounter.ErrInvalidDefinition)

	// Resolver errors propagate.
	wantErr := errors.New("no such script")
	_, _, err = encounter.Convert(def, stubResolver{err: wantErr})
	assert.ErrorIs(t, err, wantErr)
}

func TestConvertedEncounterSimulates(t *testing.T) {
	roster, strategies := convertYAML(t, duelYAML)

	e, err := sim.NewEncounterSimulator(zap.NewNop(), roster, strategies)
	require.NoError(t, err)
	srv, err := e.SimulateRounds(context.Background(), 1)
	require.NoError(t, err)

	// Action surge doubles the fighter's single greatsword swing.
	dmg, err := srv.DamageRV(1)
	require.NoError(t, err)
	assert.Zero(t, dmg.Ev().Cmp(big.NewRat(137, 10)))
}
