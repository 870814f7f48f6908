// Package encounter loads YAML encounter definitions and converts them
// into a roster and strategies ready for simulation.
package encounter

// Definition is the parsed form of an encounter YAML file.
type Definition struct {
	Name         string           `yaml:"name"`
	Participants []ParticipantDef `yaml:"participants"`
}

// ParticipantDef is one combatant entry in a Definition.
type ParticipantDef struct {
	Name  string `yaml:"name"`
	Team  string `yaml:"team"`
	AC    int    `yaml:"ac"`
	MaxHP int    `yaml:"max_hp"`
	// DiesAtZero defaults to true when omitted.
	DiesAtZero  *bool          `yaml:"dies_at_zero"`
	Resistances []string       `yaml:"resistances"`
	Skills      map[string]int `yaml:"skills"`
	Saves       map[string]int `yaml:"saves"`
	// Conditions are active when the encounter begins.
	Conditions []string `yaml:"conditions"`
	// NumAttacks is the attacks granted by the attack action. Defaults
	// to 1 when an attack is present.
	NumAttacks int        `yaml:"num_attacks"`
	Attack     *AttackDef `yaml:"attack"`
	// SecondWind is a healing dice expression such as "1d10+1". Empty
	// disables the feature.
	SecondWind  string `yaml:"second_wind"`
	ActionSurge bool   `yaml:"action_surge"`
	// SneakAttack is a bonus damage dice expression added by the sneak
	// attack trigger. Empty disables the feature.
	SneakAttack string `yaml:"sneak_attack"`
	Shove       bool   `yaml:"shove"`
	// Strategy lists routine names tried in order each decision, the
	// first non-passing one winning. An entry "script:<key>" resolves
	// a loaded Lua strategy script. Empty defaults to "basic_attack"
	// when an attack is present, "do_nothing" otherwise.
	Strategy []string `yaml:"strategy"`
}

// AttackDef is the to-hit and damage half of a ParticipantDef.
type AttackDef struct {
	HitBonus int `yaml:"hit_bonus"`
	// Roll is "normal", "advantage", "disadvantage", or
	// "super_advantage". Empty means normal.
	Roll string `yaml:"roll"`
	// CritThreshold is the lowest natural roll that crits. Zero means
	// the default of 20.
	CritThreshold int `yaml:"crit_threshold"`
	// Weapon is a dice expression such as "2d6" or "2d6r2" that weapon
	// damage terms resolve against.
	Weapon string    `yaml:"weapon"`
	Damage []TermDef `yaml:"damage"`
}

// TermDef is one additive damage term. Exactly one of Dice, Flat,
// Weapon, or SingleWeaponDie selects the term kind.
type TermDef struct {
	// Dice is a dice expression such as "2d6" or "1d8r2". A "+K"
	// suffix adds a flat term of the same damage type.
	Dice string `yaml:"dice"`
	Flat int    `yaml:"flat"`
	// Weapon resolves the equipped weapon's full dice.
	Weapon bool `yaml:"weapon"`
	// SingleWeaponDie resolves one die of the weapon's kind.
	SingleWeaponDie bool   `yaml:"single_weapon_die"`
	Type            string `yaml:"type"`
	// OnCrit restricts the term to critical hits; OnMiss to misses.
	OnCrit bool `yaml:"on_crit"`
	OnMiss bool `yaml:"on_miss"`
}
