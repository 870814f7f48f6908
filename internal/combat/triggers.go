package combat

import "errors"

// ErrInvalidTriggerResponse indicates a strategy fired a trigger it
// does not have or cannot pay for.
var ErrInvalidTriggerResponse = errors.New("invalid trigger response")

// TriggerType is an event class a trigger can respond to.
type TriggerType int

const (
	// TriggerSuccessfulAttack fires after the bearer hits or crits.
	TriggerSuccessfulAttack TriggerType = iota
	// TriggerWasHit fires after the bearer is hit.
	TriggerWasHit
)

// TriggerName identifies a trigger action.
type TriggerName string

const (
	// SneakAttack adds damage dice once per turn on a hit.
	SneakAttack TriggerName = "sneak attack"
)

// TriggerAction is a response a participant can make when a trigger
// type fires: pay the cost, add the damage terms to the triggering
// attack.
type TriggerAction struct {
	Name TriggerName
	// Cost is the resource one firing consumes. Nil means free.
	Cost   *ResourceName
	Damage []DamageTerm
}

// TriggerManager is a participant's trigger responses by type.
type TriggerManager map[TriggerType][]TriggerAction

// Find looks up a response by name under a trigger type.
func (m TriggerManager) Find(tt TriggerType, name TriggerName) (TriggerAction, bool) {
	for _, ta := range m[tt] {
		if ta.Name == name {
			return ta, true
		}
	}
	return TriggerAction{}, false
}
