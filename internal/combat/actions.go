package combat

import (
	"errors"
	"fmt"
)

// ErrUnknownAction indicates a strategy chose an action the actor does
// not have.
var ErrUnknownAction = errors.New("unknown action")

// ErrMissingTarget indicates an action that needs a target was chosen
// without one.
var ErrMissingTarget = errors.New("action requires a target")

// ActionName identifies an action in a participant's action list.
type ActionName string

const (
	// AttackAction spends an action to gain the turn's attacks.
	AttackAction ActionName = "attack"
	// PrimaryAttack spends one attack from the attack action.
	PrimaryAttack ActionName = "primary attack"
	// BonusAttack is an off-hand or feat-granted bonus action attack.
	BonusAttack ActionName = "bonus attack"
	// ActionSurge grants an additional action.
	ActionSurge ActionName = "action surge"
	// SecondWind heals the actor.
	SecondWind ActionName = "second wind"
	// ShoveProne attempts to knock a target prone via a skill contest.
	ShoveProne ActionName = "shove prone"
)

// ActionKind discriminates what executing an action does.
type ActionKind int

const (
	// KindAttack resolves an attack against the target.
	KindAttack ActionKind = iota
	// KindSelfHeal applies negative damage to the actor.
	KindSelfHeal
	// KindAdditionalAttacks grants attack uses for this turn.
	KindAdditionalAttacks
	// KindByName has bespoke handling keyed on the action's name.
	KindByName
)

// CombatAction is the effect half of an action.
type CombatAction struct {
	Kind ActionKind
	// Attack is the attack to resolve for KindAttack.
	Attack *Attack
	// Heal is the healing expression for KindSelfHeal.
	Heal *DamageDealer
	// NumAttacks is the uses granted by KindAdditionalAttacks.
	NumAttacks int
}

// CombatOption is an entry in a participant's action list: the effect,
// the action-economy bucket it spends, and whether it needs a target.
type CombatOption struct {
	Action         CombatAction
	Type           ActionType
	RequiresTarget bool
}

// ActionManager is a participant's action list.
type ActionManager map[ActionName]CombatOption

// Option looks up an action by name.
func (m ActionManager) Option(name ActionName) (CombatOption, error) {
	opt, ok := m[name]
	if !ok {
		return CombatOption{}, fmt.Errorf("%q: %w", name, ErrUnknownAction)
	}
	return opt, nil
}

// AttackOption builds the standard attack action pair: AttackAction
// granting numAttacks attacks, and PrimaryAttack resolving one.
func AttackOption(atk *Attack, numAttacks int) ActionManager {
	return ActionManager{
		AttackAction: {
			Action: CombatAction{Kind: KindAdditionalAttacks, NumAttacks: numAttacks},
			Type:   TypeAction,
		},
		PrimaryAttack: {
			Action:         CombatAction{Kind: KindAttack, Attack: atk},
			Type:           TypeSingleAttack,
			RequiresTarget: true,
		},
	}
}
