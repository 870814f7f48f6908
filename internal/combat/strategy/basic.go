package strategy

import "github.com/blamedcloud/dndstats/internal/combat"

// basicAttack takes the attack action while an action remains, then
// spends attacks on the first living enemy.
type basicAttack struct{}

// NewBasicAttack returns the standard attacker strategy: take the
// attack action, then make every granted attack against the first
// living enemy.
func NewBasicAttack() Strategy { return basicAttack{} }

func (basicAttack) Act(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) Decision {
	target, ok := FirstLivingEnemy(view, roster, me)
	if !ok {
		return Decision{Kind: DoNothing}
	}
	if view.ResourceCount(me, combat.ResourceForType(combat.TypeSingleAttack)) > 0 {
		return Decision{Kind: TakeAction, Action: StrategicAction{
			Name:   combat.PrimaryAttack,
			Target: target,
		}}
	}
	if view.ResourceCount(me, combat.ResourceForType(combat.TypeAction)) > 0 {
		return Decision{Kind: TakeAction, Action: StrategicAction{
			Name: combat.AttackAction,
		}}
	}
	return Decision{Kind: DoNothing}
}

func (basicAttack) RespondToTrigger(combat.StateView, []*combat.Participant, combat.ParticipantID, combat.TriggerType) []combat.TriggerName {
	return nil
}

// removeConditions stands the participant up (or otherwise sheds the
// listed conditions) before anything else.
type removeConditions struct {
	conditions []combat.ConditionName
	at         combat.ActionType
}

// NewRemoveConditions returns a strategy that removes each listed
// condition it currently has, spending the given action type, and does
// nothing else.
func NewRemoveConditions(at combat.ActionType, conditions ...combat.ConditionName) Strategy {
	return removeConditions{conditions: conditions, at: at}
}

func (s removeConditions) Act(view combat.StateView, _ []*combat.Participant, me combat.ParticipantID) Decision {
	for _, cn := range s.conditions {
		if view.HasCondition(me, cn) && view.ResourceCount(me, combat.ResourceForType(s.at)) > 0 {
			return Decision{Kind: RemoveCondition, Condition: cn, At: s.at}
		}
	}
	return Decision{Kind: DoNothing}
}

func (removeConditions) RespondToTrigger(combat.StateView, []*combat.Participant, combat.ParticipantID, combat.TriggerType) []combat.TriggerName {
	return nil
}

// secondWind heals once per encounter when bloodied.
type secondWind struct{}

// NewSecondWind returns a strategy that uses second wind when bloodied
// and a use remains.
func NewSecondWind() Strategy { return secondWind{} }

func (secondWind) Act(view combat.StateView, _ []*combat.Participant, me combat.ParticipantID) Decision {
	if view.HealthOf(me) != combat.Bloodied {
		return Decision{Kind: DoNothing}
	}
	if view.ResourceCount(me, combat.ResourceForAction(combat.SecondWind)) < 1 {
		return Decision{Kind: DoNothing}
	}
	if view.ResourceCount(me, combat.ResourceForType(combat.TypeBonusAction)) < 1 {
		return Decision{Kind: DoNothing}
	}
	return Decision{Kind: TakeAction, Action: StrategicAction{Name: combat.SecondWind}}
}

func (secondWind) RespondToTrigger(combat.StateView, []*combat.Participant, combat.ParticipantID, combat.TriggerType) []combat.TriggerName {
	return nil
}

// sneakAttacker always fires sneak attack when prompted.
type sneakAttacker struct {
	inner Strategy
}

// NewSneakAttacker wraps a strategy so that it fires sneak attack on
// every successful attack prompt. Action decisions defer to the inner
// strategy.
func NewSneakAttacker(inner Strategy) Strategy { return sneakAttacker{inner: inner} }

func (s sneakAttacker) Act(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) Decision {
	return s.inner.Act(view, roster, me)
}

func (s sneakAttacker) RespondToTrigger(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID, tt combat.TriggerType) []combat.TriggerName {
	if tt != combat.TriggerSuccessfulAttack {
		return s.inner.RespondToTrigger(view, roster, me, tt)
	}
	if view.ResourceCount(me, combat.ResourceForTrigger(combat.SneakAttack)) < 1 {
		return s.inner.RespondToTrigger(view, roster, me, tt)
	}
	return []combat.TriggerName{combat.SneakAttack}
}

// actionSurge spends action surge once the normal action is gone.
type actionSurge struct{}

// NewActionSurge returns a strategy that uses action surge when the
// action pool is empty and a surge use remains. Compose it after an
// attacking strategy so the regained action gets used.
func NewActionSurge() Strategy { return actionSurge{} }

func (actionSurge) Act(view combat.StateView, _ []*combat.Participant, me combat.ParticipantID) Decision {
	if view.ResourceCount(me, combat.ResourceForType(combat.TypeAction)) > 0 {
		return Decision{Kind: DoNothing}
	}
	if view.ResourceCount(me, combat.ResourceForAction(combat.ActionSurge)) < 1 {
		return Decision{Kind: DoNothing}
	}
	return Decision{Kind: TakeAction, Action: StrategicAction{Name: combat.ActionSurge}}
}

func (actionSurge) RespondToTrigger(combat.StateView, []*combat.Participant, combat.ParticipantID, combat.TriggerType) []combat.TriggerName {
	return nil
}

// linear tries each strategy in order and takes the first decision
// that is not DoNothing.
type linear struct {
	strategies []Strategy
}

// NewLinear composes strategies: each Act consults the strategies in
// order and returns the first real decision. Trigger prompts are also
// answered by the first strategy with a response.
func NewLinear(strategies ...Strategy) Strategy { return linear{strategies: strategies} }

// NewPair composes exactly two strategies, first taking priority.
func NewPair(first, second Strategy) Strategy { return NewLinear(first, second) }

func (l linear) Act(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID) Decision {
	for _, s := range l.strategies {
		if d := s.Act(view, roster, me); d.Kind != DoNothing {
			return d
		}
	}
	return Decision{Kind: DoNothing}
}

func (l linear) RespondToTrigger(view combat.StateView, roster []*combat.Participant, me combat.ParticipantID, tt combat.TriggerType) []combat.TriggerName {
	for _, s := range l.strategies {
		if resp := s.RespondToTrigger(view, roster, me, tt); resp != nil {
			return resp
		}
	}
	return nil
}
