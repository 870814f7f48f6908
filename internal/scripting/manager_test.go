package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
	"github.com/blamedcloud/dndstats/internal/scripting"
)

// fakeView is a canned state view for exercising scripted strategies.
type fakeView struct {
	healths    map[combat.ParticipantID]combat.Health
	resources  map[combat.ParticipantID]map[combat.ResourceName]int
	conditions map[combat.ParticipantID]map[combat.ConditionName]bool
}

func (v *fakeView) HealthOf(pid combat.ParticipantID) combat.Health {
	return v.healths[pid]
}

func (v *fakeView) ResourceCount(pid combat.ParticipantID, rn combat.ResourceName) int {
	return v.resources[pid][rn]
}

func (v *fakeView) HasCondition(pid combat.ParticipantID, cn combat.ConditionName) bool {
	return v.conditions[pid][cn]
}

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func duelRoster() []*combat.Participant {
	hero := combat.NewTargetDummy(16, 20)
	hero.Name = "hero"
	hero.Team = combat.TeamPlayers
	return []*combat.Participant{hero, combat.NewTargetDummy(13, 30)}
}

func TestManagerLoadAndStrategy(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	key, err := mgr.Load(writeScript(t, "kiter.lua", `function act(me) return nil end`), 0)
	require.NoError(t, err)
	assert.Equal(t, "kiter", key)

	st, err := mgr.Strategy("kiter")
	require.NoError(t, err)
	assert.NotNil(t, st)
}

func TestManagerLoadRejectsScriptWithoutAct(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "empty.lua", `local x = 1`), 0)
	assert.Error(t, err)
}

func TestManagerLoadRejectsSyntaxError(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "broken.lua", `function act( return`), 0)
	assert.Error(t, err)
}

func TestManagerUnknownStrategy(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Strategy("missing")
	assert.ErrorIs(t, err, scripting.ErrUnknownScript)
}

func TestScriptedActDecodesAttackDecision(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "attacker.lua", `
function act(me)
	return { decision = "act", action = "primary attack", target = 1 }
end
`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("attacker")
	require.NoError(t, err)

	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.TakeAction, d.Kind)
	assert.Equal(t, combat.PrimaryAttack, d.Action.Name)
	assert.Equal(t, combat.ParticipantID(1), d.Action.Target)
}

func TestScriptedActDecodesRemoveCondition(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "stander.lua", `
function act(me)
	return { decision = "remove_condition", condition = "prone", with = "movement" }
end
`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("stander")
	require.NoError(t, err)

	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.RemoveCondition, d.Kind)
	assert.Equal(t, combat.CondProne, d.Condition)
	assert.Equal(t, combat.TypeMovement, d.At)
}

func TestScriptedActNilEndsTurn(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "idle.lua", `function act(me) return nil end`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("idle")
	require.NoError(t, err)

	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.DoNothing, d.Kind)
}

func TestScriptedActMalformedDecisionEndsTurn(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "weird.lua", `
function act(me)
	return { decision = "dance" }
end
`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("weird")
	require.NoError(t, err)

	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.DoNothing, d.Kind)
}

func TestScriptedActRuntimeErrorEndsTurn(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "crasher.lua", `
function act(me)
	error("boom")
end
`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("crasher")
	require.NoError(t, err)

	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.DoNothing, d.Kind)
}

func TestScriptedRespondReturnsTriggerNames(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "sneak.lua", `
function act(me) return nil end

function respond(me, trigger)
	if trigger == "successful_attack" then
		return { "sneak attack" }
	end
	return nil
end
`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("sneak")
	require.NoError(t, err)

	names := st.RespondToTrigger(&fakeView{}, duelRoster(), 0, combat.TriggerSuccessfulAttack)
	assert.Equal(t, []combat.TriggerName{"sneak attack"}, names)

	names = st.RespondToTrigger(&fakeView{}, duelRoster(), 0, combat.TriggerWasHit)
	assert.Nil(t, names)
}

func TestScriptedRespondMissingHookDeclines(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	_, err := mgr.Load(writeScript(t, "mute.lua", `function act(me) return nil end`), 0)
	require.NoError(t, err)
	st, err := mgr.Strategy("mute")
	require.NoError(t, err)

	assert.Nil(t, st.RespondToTrigger(&fakeView{}, duelRoster(), 0, combat.TriggerSuccessfulAttack))
}

func TestScriptedInstructionBudgetResetsPerCall(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	// Each call burns most of a small budget; the budget must not
	// carry over between calls.
	_, err := mgr.Load(writeScript(t, "looper.lua", `
function act(me)
	local sum = 0
	for i = 1, 100 do sum = sum + i end
	return nil
end
`), 2000)
	require.NoError(t, err)
	st, err := mgr.Strategy("looper")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		d := st.Act(&fakeView{}, duelRoster(), 0)
		assert.Equal(t, strategy.DoNothing, d.Kind, "call %d", i)
	}
}

func TestManagerReloadReplacesScript(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop())
	defer mgr.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "flip.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function act(me) return nil end`), 0644))
	_, err := mgr.Load(path, 0)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`
function act(me)
	return { decision = "act", action = "attack", target = 0 }
end
`), 0644))
	_, err = mgr.Load(path, 0)
	require.NoError(t, err)

	st, err := mgr.Strategy("flip")
	require.NoError(t, err)
	d := st.Act(&fakeView{}, duelRoster(), 0)
	assert.Equal(t, strategy.TakeAction, d.Kind)
	assert.Equal(t, combat.AttackAction, d.Action.Name)
}
