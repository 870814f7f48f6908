// Package strategy implements the decision layer of the simulation:
// given a read-only view of one combat branch, a strategy picks the
// next action for a participant's turn and answers trigger prompts.
// Strategies must be deterministic; any randomness in an encounter
// comes from the dice, never from the decision layer.
package strategy

import "github.com/blamedcloud/dndstats/internal/combat"

// DecisionKind discriminates strategy decisions.
type DecisionKind int

const (
	// DoNothing ends the turn.
	DoNothing DecisionKind = iota
	// TakeAction performs the named action.
	TakeAction
	// RemoveCondition spends the named action type to drop a
	// condition (standing up from prone spends movement).
	RemoveCondition
)

// StrategicAction names an action and its target.
type StrategicAction struct {
	Name combat.ActionName
	// Target is the chosen target. Ignored when the action does not
	// require one.
	Target combat.ParticipantID
	// SlotLevel is the spell slot to consume, zero for none.
	SlotLevel int
}

// Decision is a strategy's answer for what to do next.
type Decision struct {
	Kind      DecisionKind
	Action    StrategicAction
	Condition combat.ConditionName
	// At is the action type spent to remove the condition.
	At combat.ActionType
}

// Strategy picks actions for one participant.
type Strategy interface {
	// Act returns the next decision for the participant's turn. The
	// simulator calls Act repeatedly within a turn until it returns
	// DoNothing.
	Act(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) Decision
	// RespondToTrigger returns the trigger actions to fire, in order,
	// for a trigger type. Returning nil declines.
	RespondToTrigger(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID, tt combat.TriggerType) []combat.TriggerName
}

// doNothing ends the turn unconditionally.
type doNothing struct{}

// NewDoNothing returns the strategy that always ends the turn.
func NewDoNothing() Strategy { return doNothing{} }

func (doNothing) Act(combat.StateView, []*combat.Participant, combat.ParticipantID) Decision {
	return Decision{Kind: DoNothing}
}

func (doNothing) RespondToTrigger(combat.StateView, []*combat.Participant, combat.ParticipantID, combat.TriggerType) []combat.TriggerName {
	return nil
}

// FirstLivingEnemy returns the lowest-index living participant on the
// other team, and whether one exists.
func FirstLivingEnemy(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) (combat.ParticipantID, bool) {
	myTeam := roster[me].Team
	for i, p := range roster {
		pid := combat.ParticipantID(i)
		if p.Team != myTeam && view.HealthOf(pid).Alive() {
			return pid, true
		}
	}
	return 0, false
}
