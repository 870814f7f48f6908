package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
)

// registerEngine registers the engine.* Lua table into L. The functions
// read the view and roster bound by call; outside a hook call they
// answer as if the encounter were empty.
func (m *Manager) registerEngine(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "health", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		if !m.inRoster(pid) {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(m.view.HealthOf(pid).String()))
		return 1
	}))

	L.SetField(engine, "alive", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		L.Push(lua.LBool(m.inRoster(pid) && m.view.HealthOf(pid).Alive()))
		return 1
	}))

	L.SetField(engine, "count", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		at, ok := actionTypeFromName(L.CheckString(2))
		if !ok || !m.inRoster(pid) {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.view.ResourceCount(pid, combat.ResourceForType(at))))
		return 1
	}))

	L.SetField(engine, "count_action", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		name := combat.ActionName(L.CheckString(2))
		if !m.inRoster(pid) {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.view.ResourceCount(pid, combat.ResourceForAction(name))))
		return 1
	}))

	L.SetField(engine, "count_trigger", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		name := combat.TriggerName(L.CheckString(2))
		if !m.inRoster(pid) {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.view.ResourceCount(pid, combat.ResourceForTrigger(name))))
		return 1
	}))

	L.SetField(engine, "slots", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		level := L.CheckInt(2)
		if level < 1 || !m.inRoster(pid) {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.view.ResourceCount(pid, combat.SpellSlot(level))))
		return 1
	}))

	L.SetField(engine, "has_condition", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		name := combat.ConditionName(L.CheckString(2))
		L.Push(lua.LBool(m.inRoster(pid) && m.view.HasCondition(pid, name)))
		return 1
	}))

	L.SetField(engine, "roster", L.NewFunction(func(L *lua.LState) int {
		out := L.NewTable()
		for pid, p := range m.roster {
			entry := L.NewTable()
			L.SetField(entry, "id", lua.LNumber(pid))
			L.SetField(entry, "name", lua.LString(p.Name))
			L.SetField(entry, "team", lua.LString(p.Team.String()))
			L.SetField(entry, "ac", lua.LNumber(p.AC))
			L.SetField(entry, "max_hp", lua.LNumber(p.MaxHP))
			out.Append(entry)
		}
		L.Push(out)
		return 1
	}))

	L.SetField(engine, "enemy", L.NewFunction(func(L *lua.LState) int {
		pid := combat.ParticipantID(L.CheckInt(1))
		if !m.inRoster(pid) {
			L.Push(lua.LNil)
			return 1
		}
		target, ok := strategy.FirstLivingEnemy(m.view, m.roster, pid)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(target))
		return 1
	}))

	L.SetGlobal("engine", engine)
}

func (m *Manager) inRoster(pid combat.ParticipantID) bool {
	return m.view != nil && pid >= 0 && int(pid) < len(m.roster)
}
