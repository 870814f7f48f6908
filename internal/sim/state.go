package sim

import "github.com/blamedcloud/dndstats/internal/combat"

// CombatState is the discrete (non-probabilistic) state of one branch:
// the log position, every participant's resources, conditions and
// health category, the order of deaths, and the last timing reached.
// Exact damage distributions live on the enclosing ProbState.
type CombatState struct {
	arena      *LogArena
	log        LogHandle
	resources  []*combat.ResourceManager
	conditions []*combat.ConditionManager
	health     []combat.Health
	deaths     []combat.ParticipantID
	lastTiming combat.Timing
	hasTiming  bool
	over       bool
}

func newCombatState(arena *LogArena, roster []*combat.Participant) *CombatState {
	s := &CombatState{
		arena:      arena,
		log:        arena.NewRoot(),
		resources:  make([]*combat.ResourceManager, len(roster)),
		conditions: make([]*combat.ConditionManager, len(roster)),
		health:     make([]combat.Health, len(roster)),
	}
	for i, p := range roster {
		s.resources[i] = p.StartingResources()
		s.conditions[i] = combat.NewConditionManager()
		for _, cn := range p.Conditions {
			s.conditions[i].Apply(cn, combat.Condition{Lifetime: combat.UntilRemoved})
		}
	}
	return s
}

// child returns a deep copy whose log continues this state's log in a
// fresh node. The original keeps its own node, so both sides can keep
// appending without seeing each other's events.
func (s *CombatState) child() *CombatState {
	return s.copyWithLog(s.arena.Child(s.log))
}

// copyWithLog returns a deep copy positioned at the given log node.
func (s *CombatState) copyWithLog(log LogHandle) *CombatState {
	out := &CombatState{
		arena:      s.arena,
		log:        log,
		resources:  make([]*combat.ResourceManager, len(s.resources)),
		conditions: make([]*combat.ConditionManager, len(s.conditions)),
		health:     append([]combat.Health(nil), s.health...),
		deaths:     append([]combat.ParticipantID(nil), s.deaths...),
		lastTiming: s.lastTiming,
		hasTiming:  s.hasTiming,
		over:       s.over,
	}
	for i := range s.resources {
		out.resources[i] = s.resources[i].Clone()
	}
	for i := range s.conditions {
		out.conditions[i] = s.conditions[i].Clone()
	}
	return out
}

// push records an event, tracking the last timing reached.
func (s *CombatState) push(ev combat.CombatEvent) {
	s.arena.Append(s.log, ev)
	if ev.Kind == combat.EventTiming {
		s.lastTiming = ev.Timing
		s.hasTiming = true
	}
}

// Log returns the state's log handle.
func (s *CombatState) Log() LogHandle { return s.log }

// HealthOf returns the participant's health category.
func (s *CombatState) HealthOf(pid combat.ParticipantID) combat.Health {
	return s.health[pid]
}

// Resources returns the participant's resource manager.
func (s *CombatState) Resources(pid combat.ParticipantID) *combat.ResourceManager {
	return s.resources[pid]
}

// Conditions returns the participant's condition manager.
func (s *CombatState) Conditions(pid combat.ParticipantID) *combat.ConditionManager {
	return s.conditions[pid]
}

// Deaths returns the participants downed so far, in order.
func (s *CombatState) Deaths() []combat.ParticipantID {
	return append([]combat.ParticipantID(nil), s.deaths...)
}

// Over reports whether the encounter has ended on this branch.
func (s *CombatState) Over() bool { return s.over }

// setHealth records a category change and, if the participant just
// went down, their death.
func (s *CombatState) setHealth(pid combat.ParticipantID, h combat.Health) {
	wasAlive := s.health[pid].Alive()
	s.health[pid] = h
	if wasAlive && !h.Alive() {
		s.deaths = append(s.deaths, pid)
	}
}

// transposable reports whether two states are interchangeable going
// forward: both just logged the same timing boundary and every piece
// of discrete state matches. The exact damage distributions and the
// paths taken may differ; that is what makes merging them useful.
func (s *CombatState) transposable(other *CombatState) bool {
	if s.over != other.over || s.hasTiming != other.hasTiming {
		return false
	}
	if !s.hasTiming || s.lastTiming != other.lastTiming {
		return false
	}
	le, ok := s.arena.LastEvent(s.log)
	oe, ook := other.arena.LastEvent(other.log)
	if !ok || !ook || le.Kind != combat.EventTiming || le != oe {
		return false
	}
	if len(s.deaths) != len(other.deaths) {
		return false
	}
	for i, d := range s.deaths {
		if other.deaths[i] != d {
			return false
		}
	}
	for i := range s.health {
		if s.health[i] != other.health[i] {
			return false
		}
	}
	for i := range s.resources {
		if !s.resources[i].Equal(other.resources[i]) {
			return false
		}
	}
	for i := range s.conditions {
		if !s.conditions[i].Equal(other.conditions[i]) {
			return false
		}
	}
	return true
}
