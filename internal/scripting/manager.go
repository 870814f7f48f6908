package scripting

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
)

// ErrUnknownScript indicates a strategy was requested for a script that
// was never loaded.
var ErrUnknownScript = errors.New("unknown strategy script")

// actHook is the Lua global a strategy script must define. It receives
// the acting participant's id and returns a decision table, or nil to
// end the turn.
const actHook = "act"

// respondHook is the optional Lua global consulted for trigger
// responses. It receives the participant's id and the trigger kind and
// returns an array of trigger names.
const respondHook = "respond"

// Manager owns one sandboxed LState per loaded strategy script.
//
// Each LState is single-threaded; the mutex serializes hook dispatch so
// scripted strategies are safe to share across branches of a single
// simulation run.
type Manager struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limits map[string]int
	logger *zap.Logger

	// Bound for the duration of one hook call.
	view   combat.StateView
	roster []*combat.Participant
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		states: make(map[string]*lua.LState),
		limits: make(map[string]int),
		logger: logger,
	}
}

// Load creates a sandboxed VM, registers the engine.* module, and
// executes the script file. The script's base name without extension
// becomes its key: loading "scripts/kiter.lua" registers "kiter".
// Reloading a key replaces its VM.
//
// Precondition: path must be a readable Lua file.
func (m *Manager) Load(path string, instLimit int) (string, error) {
	key := filepath.Base(path)
	key = key[:len(key)-len(filepath.Ext(key))]

	L := NewSandboxedState(instLimit)
	m.registerEngine(L)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return "", fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	if L.GetGlobal(actHook) == lua.LNil {
		L.Close()
		return "", fmt.Errorf("scripting: script %q defines no %q function", path, actHook)
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = L
	m.limits[key] = instLimit
	m.mu.Unlock()
	m.logger.Debug("strategy script loaded", zap.String("script", key), zap.String("path", path))
	return key, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		L.Close()
		delete(m.states, key)
	}
}

// Strategy returns the strategy backed by the named script.
func (m *Manager) Strategy(name string) (strategy.Strategy, error) {
	m.mu.Lock()
	_, ok := m.states[name]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownScript)
	}
	return &scripted{manager: m, name: name}, nil
}

// call invokes a hook with the view and roster bound for the engine.*
// module, giving the script a fresh instruction budget. Lua runtime
// errors are logged at Warn level and surface as LNil, matching a hook
// that declined to answer.
func (m *Manager) call(name, hook string, view combat.StateView, roster []*combat.Participant, args ...lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[name]
	if !ok {
		return lua.LNil
	}
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}

	limit := m.limits[name]
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, _ := newCountingContext(limit) //nolint:govet // cancel fires automatically when limit is reached
	L.SetContext(ctx)

	m.view = view
	m.roster = roster
	defer func() {
		m.view = nil
		m.roster = nil
	}()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// scripted adapts a loaded script to the strategy interface.
type scripted struct {
	manager *Manager
	name    string
}

func (s *scripted) Act(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) strategy.Decision {
	ret := s.manager.call(s.name, actHook, view, roster, lua.LNumber(me))
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return strategy.Decision{Kind: strategy.DoNothing}
	}
	return decodeDecision(tbl)
}

func (s *scripted) RespondToTrigger(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID, tt combat.TriggerType) []combat.TriggerName {
	ret := s.manager.call(s.name, respondHook, view, roster, lua.LNumber(me), lua.LString(triggerTypeName(tt)))
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil
	}
	var names []combat.TriggerName
	tbl.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			names = append(names, combat.TriggerName(s))
		}
	})
	return names
}

// decodeDecision maps a Lua decision table to a strategy decision.
// Unknown or malformed tables end the turn, which is always legal.
func decodeDecision(tbl *lua.LTable) strategy.Decision {
	switch lua.LVAsString(tbl.RawGetString("decision")) {
	case "act":
		return strategy.Decision{
			Kind: strategy.TakeAction,
			Action: strategy.StrategicAction{
				Name:      combat.ActionName(lua.LVAsString(tbl.RawGetString("action"))),
				Target:    combat.ParticipantID(lua.LVAsNumber(tbl.RawGetString("target"))),
				SlotLevel: int(lua.LVAsNumber(tbl.RawGetString("slot"))),
			},
		}
	case "remove_condition":
		at, ok := actionTypeFromName(lua.LVAsString(tbl.RawGetString("with")))
		if !ok {
			return strategy.Decision{Kind: strategy.DoNothing}
		}
		return strategy.Decision{
			Kind:      strategy.RemoveCondition,
			Condition: combat.ConditionName(lua.LVAsString(tbl.RawGetString("condition"))),
			At:        at,
		}
	default:
		return strategy.Decision{Kind: strategy.DoNothing}
	}
}

func triggerTypeName(tt combat.TriggerType) string {
	switch tt {
	case combat.TriggerSuccessfulAttack:
		return "successful_attack"
	case combat.TriggerWasHit:
		return "was_hit"
	default:
		return "unknown"
	}
}

func actionTypeFromName(name string) (combat.ActionType, bool) {
	switch name {
	case "action":
		return combat.TypeAction, true
	case "single_attack":
		return combat.TypeSingleAttack, true
	case "bonus_action":
		return combat.TypeBonusAction, true
	case "reaction":
		return combat.TypeReaction, true
	case "movement":
		return combat.TypeMovement, true
	case "free_action":
		return combat.TypeFreeAction, true
	default:
		return 0, false
	}
}
