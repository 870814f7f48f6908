package combat

import "fmt"

// Team is a side of the encounter.
type Team int

const (
	TeamPlayers Team = iota
	TeamEnemies
)

// String returns the team name.
func (t Team) String() string {
	switch t {
	case TeamPlayers:
		return "players"
	case TeamEnemies:
		return "enemies"
	default:
		return fmt.Sprintf("Team(%d)", int(t))
	}
}

// ConcentrationDC is the minimum save difficulty for keeping
// concentration after taking damage.
const ConcentrationDC = 10

// Participant is the static description of a combatant. Mutable combat
// state (damage taken, spent resources, conditions) lives in the
// simulation layer; a Participant is safe to share across branches.
type Participant struct {
	Name  string
	Team  Team
	AC    int
	MaxHP int
	// DiesAtZero selects Dead over ZeroHP when hit points run out.
	DiesAtZero bool
	// Resistances lists the damage types this participant resists.
	Resistances map[DamageType]bool
	// Skills holds contested skill bonuses. Absent skills are +0.
	Skills map[SkillName]int
	// Saves holds saving throw bonuses. Absent abilities are +0.
	Saves map[AbilityName]int
	// Actions is the action list.
	Actions ActionManager
	// Triggers is the trigger response list.
	Triggers TriggerManager
	// Conditions are active when the encounter begins, such as
	// concentration on a pre-cast spell.
	Conditions []ConditionName
	// Resources builds the participant's starting resource manager.
	Resources func() *ResourceManager
}

// SkillBonus returns the bonus for a contested skill.
func (p *Participant) SkillBonus(s SkillName) int { return p.Skills[s] }

// SaveBonus returns the bonus for a saving throw.
func (p *Participant) SaveBonus(a AbilityName) int { return p.Saves[a] }

// ShoveDefenseBonus returns the better of athletics and acrobatics,
// which a defender uses against a shove.
func (p *Participant) ShoveDefenseBonus() int {
	ath := p.SkillBonus(Athletics)
	acr := p.SkillBonus(Acrobatics)
	if acr > ath {
		return acr
	}
	return ath
}

// StartingResources returns a fresh resource manager for this
// participant.
func (p *Participant) StartingResources() *ResourceManager {
	if p.Resources == nil {
		return NewBasicResources(1)
	}
	return p.Resources()
}

// NewTargetDummy returns an inert participant that soaks damage and
// never acts. Useful for isolating one side's damage output.
func NewTargetDummy(ac, maxHP int) *Participant {
	return &Participant{
		Name:      "target dummy",
		Team:      TeamEnemies,
		AC:        ac,
		MaxHP:     maxHP,
		Actions:   ActionManager{},
		Triggers:  TriggerManager{},
		Resources: func() *ResourceManager { return NewResourceManager() },
	}
}

// NewMonster returns a simple attacking monster.
func NewMonster(name string, team Team, ac, maxHP int, atk *Attack, numAttacks int) *Participant {
	return &Participant{
		Name:       name,
		Team:       team,
		AC:         ac,
		MaxHP:      maxHP,
		DiesAtZero: true,
		Actions:    AttackOption(atk, numAttacks),
		Triggers:   TriggerManager{},
		Resources:  func() *ResourceManager { return NewBasicResources(numAttacks) },
	}
}
