package combat

import (
	"errors"
	"fmt"

	"github.com/blamedcloud/dndstats/internal/rv"
)

// ErrNoWeapon indicates a damage expression references weapon dice but
// no weapon has been set.
var ErrNoWeapon = errors.New("damage expression references weapon dice but no weapon is set")

// DamageType is the kind of damage a term deals. Resistance applies
// per type.
type DamageType int

const (
	Bludgeoning DamageType = iota
	Piercing
	Slashing
	Acid
	Cold
	Fire
	Force
	Lightning
	Necrotic
	Poison
	Psychic
	Radiant
	Thunder
)

// String returns the damage type name.
func (dt DamageType) String() string {
	names := [...]string{
		"bludgeoning", "piercing", "slashing", "acid", "cold", "fire",
		"force", "lightning", "necrotic", "poison", "psychic", "radiant",
		"thunder",
	}
	if int(dt) < len(names) {
		return names[dt]
	}
	return fmt.Sprintf("DamageType(%d)", int(dt))
}

// DiceSet is a count of identical dice, optionally rerolling low faces
// once (great weapon fighting style).
type DiceSet struct {
	Count  int
	Sides  int
	Reroll int // faces at or below this are rerolled once; 0 disables
}

// RV returns the distribution of the dice set's total.
func (d DiceSet) RV() (*rv.VecRV, error) {
	var die *rv.VecRV
	var err error
	if d.Reroll > 0 {
		die, err = rv.DReroll(d.Sides, d.Reroll)
	} else {
		die, err = rv.D(d.Sides)
	}
	if err != nil {
		return nil, err
	}
	return die.NConvolve(d.Count), nil
}

// TermKind discriminates damage expression terms. The set is closed:
// resolution switches over it exhaustively.
type TermKind int

const (
	// TermDice is a fixed dice set.
	TermDice TermKind = iota
	// TermConst is a flat modifier. Never doubled on a crit.
	TermConst
	// TermWeaponDice is the equipped weapon's full dice. Doubled on a
	// crit like any dice term.
	TermWeaponDice
	// TermSingleWeaponDie is one die of the equipped weapon's kind.
	// Not doubled on a crit.
	TermSingleWeaponDie
)

// DamageTerm is one additive term of a damage expression.
type DamageTerm struct {
	Kind  TermKind
	Dice  DiceSet
	Const int
	Type  DamageType
}

// Dice builds a dice term.
func Dice(count, sides int, dt DamageType) DamageTerm {
	return DamageTerm{Kind: TermDice, Dice: DiceSet{Count: count, Sides: sides}, Type: dt}
}

// Flat builds a constant term.
func Flat(amount int, dt DamageType) DamageTerm {
	return DamageTerm{Kind: TermConst, Const: amount, Type: dt}
}

// WeaponDice builds a term for the equipped weapon's dice.
func WeaponDice(dt DamageType) DamageTerm {
	return DamageTerm{Kind: TermWeaponDice, Type: dt}
}

// SingleWeaponDie builds a term for one die of the equipped weapon.
func SingleWeaponDie(dt DamageType) DamageTerm {
	return DamageTerm{Kind: TermSingleWeaponDie, Type: dt}
}

// DamageDealer collects the damage terms of an attack: base terms
// applied on any hit, bonus terms applied only on a crit, and terms
// applied on a miss. Crits double the dice of base terms but never
// constants or single weapon dice.
type DamageDealer struct {
	base      []DamageTerm
	critBonus []DamageTerm
	miss      []DamageTerm
	weapon    *DiceSet
}

// NewDamageDealer returns an empty damage expression.
func NewDamageDealer() *DamageDealer { return &DamageDealer{} }

// AddBase appends a term applied on hits and crits.
func (d *DamageDealer) AddBase(t DamageTerm) *DamageDealer {
	d.base = append(d.base, t)
	return d
}

// AddCritBonus appends a term applied only on crits.
func (d *DamageDealer) AddCritBonus(t DamageTerm) *DamageDealer {
	d.critBonus = append(d.critBonus, t)
	return d
}

// AddMiss appends a term applied on misses.
func (d *DamageDealer) AddMiss(t DamageTerm) *DamageDealer {
	d.miss = append(d.miss, t)
	return d
}

// SetWeapon sets the weapon dice that weapon terms resolve against.
func (d *DamageDealer) SetWeapon(dice DiceSet) *DamageDealer {
	d.weapon = &dice
	return d
}

// Clone returns a deep copy. Adding terms to the copy does not affect
// the original.
func (d *DamageDealer) Clone() *DamageDealer {
	out := &DamageDealer{
		base:      append([]DamageTerm(nil), d.base...),
		critBonus: append([]DamageTerm(nil), d.critBonus...),
		miss:      append([]DamageTerm(nil), d.miss...),
	}
	if d.weapon != nil {
		w := *d.weapon
		out.weapon = &w
	}
	return out
}

// resolveDice returns the concrete dice for a term, doubling dice
// counts on a crit where the rules call for it.
func (d *DamageDealer) resolveDice(t DamageTerm, crit bool) (DiceSet, error) {
	switch t.Kind {
	case TermDice:
		dice := t.Dice
		if crit {
			dice.Count *= 2
		}
		return dice, nil
	case TermWeaponDice:
		if d.weapon == nil {
			return DiceSet{}, ErrNoWeapon
		}
		dice := *d.weapon
		if crit {
			dice.Count *= 2
		}
		return dice, nil
	case TermSingleWeaponDie:
		if d.weapon == nil {
			return DiceSet{}, ErrNoWeapon
		}
		dice := *d.weapon
		dice.Count = 1
		return dice, nil
	default:
		return DiceSet{}, fmt.Errorf("unknown damage term kind %d", t.Kind)
	}
}

// termGroup is a term list with a shared crit-doubling flag. Base terms
// double their dice on a crit; crit bonus terms are added as written.
type termGroup struct {
	terms []DamageTerm
	crit  bool
}

// damageRV resolves term groups: terms are grouped and convolved per
// damage type, resisted types halved, then the types are summed and the
// total floored at zero.
func (d *DamageDealer) damageRV(groups []termGroup, resistances map[DamageType]bool) (*rv.VecRV, error) {
	byType := make(map[DamageType]*rv.VecRV)
	for _, g := range groups {
		if err := d.accumulate(byType, g); err != nil {
			return nil, err
		}
	}
	if len(byType) == 0 {
		return rv.Constant(0), nil
	}
	var total *rv.VecRV
	for dt, typeRV := range byType {
		if resistances[dt] {
			typeRV = typeRV.CapLB(0).Half()
		}
		if total == nil {
			total = typeRV
		} else {
			total = total.Convolve(typeRV)
		}
	}
	return total.CapLB(0), nil
}

func (d *DamageDealer) accumulate(byType map[DamageType]*rv.VecRV, g termGroup) error {
	for _, t := range g.terms {
		var termRV *rv.VecRV
		if t.Kind == TermConst {
			termRV = rv.Constant(t.Const)
		} else {
			dice, err := d.resolveDice(t, g.crit)
			if err != nil {
				return err
			}
			termRV, err = dice.RV()
			if err != nil {
				return fmt.Errorf("resolving %s dice: %w", t.Type, err)
			}
		}
		if acc, ok := byType[t.Type]; ok {
			byType[t.Type] = acc.Convolve(termRV)
		} else {
			byType[t.Type] = termRV
		}
	}
	return nil
}

// HitRV returns the damage distribution on a normal hit.
func (d *DamageDealer) HitRV(resistances map[DamageType]bool) (*rv.VecRV, error) {
	return d.damageRV([]termGroup{{terms: d.base}}, resistances)
}

// CritRV returns the damage distribution on a crit: base terms with
// doubled dice plus the crit bonus terms as written.
func (d *DamageDealer) CritRV(resistances map[DamageType]bool) (*rv.VecRV, error) {
	return d.damageRV([]termGroup{
		{terms: d.base, crit: true},
		{terms: d.critBonus},
	}, resistances)
}

// MissRV returns the damage distribution on a miss.
func (d *DamageDealer) MissRV(resistances map[DamageType]bool) (*rv.VecRV, error) {
	return d.damageRV([]termGroup{{terms: d.miss}}, resistances)
}

// OutcomeRV returns the damage distribution for an attack outcome.
func (d *DamageDealer) OutcomeRV(outcome AttackOutcome, resistances map[DamageType]bool) (*rv.VecRV, error) {
	switch outcome {
	case OutcomeMiss:
		return d.MissRV(resistances)
	case OutcomeHit:
		return d.HitRV(resistances)
	case OutcomeCrit:
		return d.CritRV(resistances)
	default:
		return nil, fmt.Errorf("unknown attack outcome %d", outcome)
	}
}
