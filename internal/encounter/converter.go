package encounter

import (
	"fmt"
	"os"
	"strings"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
)

// ScriptResolver resolves "script:<key>" strategy entries. The
// scripting manager satisfies it.
type ScriptResolver interface {
	Strategy(name string) (strategy.Strategy, error)
}

var teamByName = map[string]combat.Team{
	"players": combat.TeamPlayers,
	"enemies": combat.TeamEnemies,
}

var rollByName = map[string]combat.RollType{
	"":                combat.RollNormal,
	"normal":          combat.RollNormal,
	"advantage":       combat.RollAdvantage,
	"disadvantage":    combat.RollDisadvantage,
	"super_advantage": combat.RollSuperAdvantage,
}

var damageTypeByName = map[string]combat.DamageType{
	"bludgeoning": combat.Bludgeoning,
	"piercing":    combat.Piercing,
	"slashing":    combat.Slashing,
	"acid":        combat.Acid,
	"cold":        combat.Cold,
	"fire":        combat.Fire,
	"force":       combat.Force,
	"lightning":   combat.Lightning,
	"necrotic":    combat.Necrotic,
	"poison":      combat.Poison,
	"psychic":     combat.Psychic,
	"radiant":     combat.Radiant,
	"thunder":     combat.Thunder,
}

var skillByName = map[string]combat.SkillName{
	"athletics":  combat.Athletics,
	"acrobatics": combat.Acrobatics,
}

var abilityByName = map[string]combat.AbilityName{
	"strength":     combat.Strength,
	"dexterity":    combat.Dexterity,
	"constitution": combat.Constitution,
	"intelligence": combat.Intelligence,
	"wisdom":       combat.Wisdom,
	"charisma":     combat.Charisma,
}

// Load reads, parses, and converts an encounter file.
func Load(path string, scripts ScriptResolver) (*Definition, []*combat.Participant, []strategy.Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading encounter file: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, nil, nil, err
	}
	roster, strategies, err := Convert(def, scripts)
	if err != nil {
		return nil, nil, nil, err
	}
	return def, roster, strategies, nil
}

// Convert builds the roster and strategies from a parsed definition.
// scripts may be nil when no participant uses a scripted strategy.
//
// Postcondition: the returned slices have equal length and preserve
// participant order.
func Convert(def *Definition, scripts ScriptResolver) ([]*combat.Participant, []strategy.Strategy, error) {
	roster := make([]*combat.Participant, 0, len(def.Participants))
	strategies := make([]strategy.Strategy, 0, len(def.Participants))
	for i := range def.Participants {
		pd := &def.Participants[i]
		p, err := convertParticipant(pd)
		if err != nil {
			return nil, nil, fmt.Errorf("participant %q: %w", pd.Name, err)
		}
		st, err := buildStrategy(pd, scripts)
		if err != nil {
			return nil, nil, fmt.Errorf("participant %q: %w", pd.Name, err)
		}
		roster = append(roster, p)
		strategies = append(strategies, st)
	}
	return roster, strategies, nil
}

func convertParticipant(pd *ParticipantDef) (*combat.Participant, error) {
	team, ok := teamByName[pd.Team]
	if !ok {
		return nil, fmt.Errorf("team %q: %w", pd.Team, ErrInvalidDefinition)
	}

	p := &combat.Participant{
		Name:       pd.Name,
		Team:       team,
		AC:         pd.AC,
		MaxHP:      pd.MaxHP,
		DiesAtZero: pd.DiesAtZero == nil || *pd.DiesAtZero,
		Actions:    combat.ActionManager{},
		Triggers:   combat.TriggerManager{},
	}

	if len(pd.Resistances) > 0 {
		p.Resistances = make(map[combat.DamageType]bool, len(pd.Resistances))
		for _, name := range pd.Resistances {
			dt, ok := damageTypeByName[name]
			if !ok {
				return nil, fmt.Errorf("damage type %q: %w", name, ErrInvalidDefinition)
			}
			p.Resistances[dt] = true
		}
	}
	if len(pd.Skills) > 0 {
		p.Skills = make(map[combat.SkillName]int, len(pd.Skills))
		for name, bonus := range pd.Skills {
			sk, ok := skillByName[name]
			if !ok {
				return nil, fmt.Errorf("skill %q: %w", name, ErrInvalidDefinition)
			}
			p.Skills[sk] = bonus
		}
	}
	if len(pd.Saves) > 0 {
		p.Saves = make(map[combat.AbilityName]int, len(pd.Saves))
		for name, bonus := range pd.Saves {
			ab, ok := abilityByName[name]
			if !ok {
				return nil, fmt.Errorf("ability %q: %w", name, ErrInvalidDefinition)
			}
			p.Saves[ab] = bonus
		}
	}
	for _, name := range pd.Conditions {
		p.Conditions = append(p.Conditions, combat.ConditionName(name))
	}

	numAttacks := pd.NumAttacks
	if numAttacks < 1 {
		numAttacks = 1
	}
	if pd.Attack != nil {
		atk, err := convertAttack(pd.Attack)
		if err != nil {
			return nil, err
		}
		p.Actions = combat.AttackOption(atk, numAttacks)
	}

	// Extra resource pools granted by features, added on top of the
	// basic action economy each time a fresh manager is built.
	extras := make(map[combat.ResourceName]combat.Resource)

	if pd.SecondWind != "" {
		heal, err := parseDiceExpr(pd.SecondWind)
		if err != nil {
			return nil, err
		}
		dealer := combat.NewDamageDealer().
			AddBase(combat.DamageTerm{
				Kind: combat.TermDice,
				Dice: combat.DiceSet{Count: heal.count, Sides: heal.sides, Reroll: heal.reroll},
				Type: combat.Radiant,
			})
		if heal.flat != 0 {
			dealer.AddBase(combat.Flat(heal.flat, combat.Radiant))
		}
		p.Actions[combat.SecondWind] = combat.CombatOption{
			Action: combat.CombatAction{Kind: combat.KindSelfHeal, Heal: dealer},
			Type:   combat.TypeBonusAction,
		}
		extras[combat.ResourceForAction(combat.SecondWind)] = combat.Resource{
			Current: 1,
			Cap:     1,
			Refresh: map[combat.RefreshTiming]combat.RefreshEffect{combat.RefreshShortRest: combat.RefreshToCap},
		}
	}

	if pd.ActionSurge {
		p.Actions[combat.ActionSurge] = combat.CombatOption{
			Action: combat.CombatAction{Kind: combat.KindByName},
			Type:   combat.TypeFreeAction,
		}
		extras[combat.ResourceForAction(combat.ActionSurge)] = combat.Resource{
			Current: 1,
			Cap:     1,
			Refresh: map[combat.RefreshTiming]combat.RefreshEffect{combat.RefreshShortRest: combat.RefreshToCap},
		}
	}

	if pd.Shove {
		p.Actions[combat.ShoveProne] = combat.CombatOption{
			Action:         combat.CombatAction{Kind: combat.KindByName},
			Type:           combat.TypeAction,
			RequiresTarget: true,
		}
	}

	if pd.SneakAttack != "" {
		sneak, err := parseDiceExpr(pd.SneakAttack)
		if err != nil {
			return nil, err
		}
		cost := combat.ResourceForTrigger(combat.SneakAttack)
		terms := []combat.DamageTerm{{
			Kind: combat.TermDice,
			Dice: combat.DiceSet{Count: sneak.count, Sides: sneak.sides, Reroll: sneak.reroll},
			Type: combat.Piercing,
		}}
		if sneak.flat != 0 {
			terms = append(terms, combat.Flat(sneak.flat, combat.Piercing))
		}
		p.Triggers[combat.TriggerSuccessfulAttack] = append(
			p.Triggers[combat.TriggerSuccessfulAttack],
			combat.TriggerAction{Name: combat.SneakAttack, Cost: &cost, Damage: terms},
		)
		extras[cost] = combat.Resource{
			Current: 1,
			Cap:     1,
			Refresh: map[combat.RefreshTiming]combat.RefreshEffect{combat.RefreshStartMyTurn: combat.RefreshToCap},
		}
	}

	p.Resources = func() *combat.ResourceManager {
		rm := combat.NewBasicResources(numAttacks)
		for name, r := range extras {
			rm.AddPerm(name, r)
		}
		return rm
	}
	return p, nil
}

func convertAttack(ad *AttackDef) (*combat.Attack, error) {
	roll, ok := rollByName[ad.Roll]
	if !ok {
		return nil, fmt.Errorf("roll type %q: %w", ad.Roll, ErrInvalidDefinition)
	}
	dealer := combat.NewDamageDealer()
	if ad.Weapon != "" {
		w, err := parseDiceExpr(ad.Weapon)
		if err != nil {
			return nil, err
		}
		if w.flat != 0 {
			return nil, fmt.Errorf("weapon %q: flat modifiers belong in damage terms: %w", ad.Weapon, ErrInvalidDefinition)
		}
		dealer.SetWeapon(combat.DiceSet{Count: w.count, Sides: w.sides, Reroll: w.reroll})
	}
	for i, td := range ad.Damage {
		if err := addTerm(dealer, td); err != nil {
			return nil, fmt.Errorf("damage term %d: %w", i, err)
		}
	}
	return &combat.Attack{
		HitBonus: ad.HitBonus,
		RollType: roll,
		CritLB:   ad.CritThreshold,
		Damage:   dealer,
	}, nil
}

func addTerm(dealer *combat.DamageDealer, td TermDef) error {
	dt, ok := damageTypeByName[td.Type]
	if !ok {
		return fmt.Errorf("damage type %q: %w", td.Type, ErrInvalidDefinition)
	}
	add := dealer.AddBase
	switch {
	case td.OnCrit && td.OnMiss:
		return fmt.Errorf("term is both on_crit and on_miss: %w", ErrInvalidDefinition)
	case td.OnCrit:
		add = dealer.AddCritBonus
	case td.OnMiss:
		add = dealer.AddMiss
	}

	switch {
	case td.Dice != "":
		expr, err := parseDiceExpr(td.Dice)
		if err != nil {
			return err
		}
		add(combat.DamageTerm{
			Kind: combat.TermDice,
			Dice: combat.DiceSet{Count: expr.count, Sides: expr.sides, Reroll: expr.reroll},
			Type: dt,
		})
		if expr.flat != 0 {
			add(combat.Flat(expr.flat, dt))
		}
	case td.Weapon:
		add(combat.WeaponDice(dt))
	case td.SingleWeaponDie:
		add(combat.SingleWeaponDie(dt))
	default:
		add(combat.Flat(td.Flat, dt))
	}
	return nil
}

// buildStrategy composes the participant's decision routines.
func buildStrategy(pd *ParticipantDef, scripts ScriptResolver) (strategy.Strategy, error) {
	names := pd.Strategy
	if len(names) == 0 {
		if pd.Attack != nil {
			names = []string{"basic_attack"}
		} else {
			names = []string{"do_nothing"}
		}
	}

	var parts []strategy.Strategy
	sneak := false
	for _, name := range names {
		if key, ok := strings.CutPrefix(name, "script:"); ok {
			if scripts == nil {
				return nil, fmt.Errorf("strategy %q: no script resolver: %w", name, ErrInvalidDefinition)
			}
			st, err := scripts.Strategy(key)
			if err != nil {
				return nil, err
			}
			parts = append(parts, st)
			continue
		}
		switch name {
		case "do_nothing":
			parts = append(parts, strategy.NewDoNothing())
		case "basic_attack":
			parts = append(parts, strategy.NewBasicAttack())
		case "second_wind":
			parts = append(parts, strategy.NewSecondWind())
		case "action_surge":
			parts = append(parts, strategy.NewActionSurge())
		case "stand_up":
			parts = append(parts, strategy.NewRemoveConditions(combat.TypeMovement, combat.CondProne))
		case "sneak_attack":
			sneak = true
		default:
			return nil, fmt.Errorf("strategy %q: %w", name, ErrInvalidDefinition)
		}
	}

	var st strategy.Strategy
	switch len(parts) {
	case 0:
		st = strategy.NewBasicAttack()
	case 1:
		st = parts[0]
	default:
		st = strategy.NewLinear(parts...)
	}
	if sneak {
		st = strategy.NewSneakAttacker(st)
	}
	return st, nil
}
