package combat

import (
	"errors"
	"fmt"
)

// ErrInsufficientResources indicates an action or trigger could not pay
// its resource cost.
var ErrInsufficientResources = errors.New("insufficient resources")

// ActionType is the broad action-economy bucket an action consumes.
type ActionType int

const (
	TypeAction ActionType = iota
	TypeSingleAttack
	TypeBonusAction
	TypeReaction
	TypeMovement
	TypeFreeAction
)

// String returns the action type name.
func (at ActionType) String() string {
	names := [...]string{
		"action", "single attack", "bonus action", "reaction",
		"movement", "free action",
	}
	if int(at) < len(names) {
		return names[at]
	}
	return fmt.Sprintf("ActionType(%d)", int(at))
}

// ResourceKind discriminates resource names.
type ResourceKind int

const (
	// KindActionType counts uses of an action-economy bucket.
	KindActionType ResourceKind = iota
	// KindAction counts uses of a specific named action.
	KindAction
	// KindTrigger counts uses of a specific named trigger.
	KindTrigger
	// KindSpellSlot counts spell slots of one level.
	KindSpellSlot
)

// ResourceName identifies a spendable resource.
type ResourceName struct {
	Kind       ResourceKind
	ActionType ActionType
	Name       string
	SlotLevel  int
}

// ResourceForType names the pool for an action-economy bucket.
func ResourceForType(at ActionType) ResourceName {
	return ResourceName{Kind: KindActionType, ActionType: at}
}

// ResourceForAction names the per-action use pool of a named action.
func ResourceForAction(name ActionName) ResourceName {
	return ResourceName{Kind: KindAction, Name: string(name)}
}

// ResourceForTrigger names the per-trigger use pool of a named trigger.
func ResourceForTrigger(name TriggerName) ResourceName {
	return ResourceName{Kind: KindTrigger, Name: string(name)}
}

// SpellSlot names the slot pool for a spell level.
func SpellSlot(level int) ResourceName {
	return ResourceName{Kind: KindSpellSlot, SlotLevel: level}
}

// RefreshTiming is a point in the encounter at which resources refresh
// or expire.
type RefreshTiming int

const (
	RefreshStartRound RefreshTiming = iota
	RefreshEndRound
	RefreshStartMyTurn
	RefreshEndMyTurn
	RefreshStartOtherTurn
	RefreshEndOtherTurn
	RefreshShortRest
	RefreshLongRest
)

// String returns the refresh timing name.
func (rt RefreshTiming) String() string {
	names := [...]string{
		"start of round", "end of round", "start of my turn",
		"end of my turn", "start of other turn", "end of other turn",
		"short rest", "long rest",
	}
	if int(rt) < len(names) {
		return names[rt]
	}
	return fmt.Sprintf("RefreshTiming(%d)", int(rt))
}

// RefreshEffect is what a refresh timing does to a resource.
type RefreshEffect int

const (
	// RefreshToCap restores the resource to its cap.
	RefreshToCap RefreshEffect = iota
	// RefreshClear drops the resource to zero. Clearing spent action
	// economy at end of turn keeps otherwise identical states
	// bit-equal, which makes transposition merges far more likely.
	RefreshClear
)

// Resource is one spendable pool.
type Resource struct {
	Current int
	Cap     int
	Refresh map[RefreshTiming]RefreshEffect
}

func (r Resource) clone() Resource {
	refresh := make(map[RefreshTiming]RefreshEffect, len(r.Refresh))
	for k, v := range r.Refresh {
		refresh[k] = v
	}
	return Resource{Current: r.Current, Cap: r.Cap, Refresh: refresh}
}

func (r Resource) equal(other Resource) bool {
	if r.Current != other.Current || r.Cap != other.Cap {
		return false
	}
	if len(r.Refresh) != len(other.Refresh) {
		return false
	}
	for k, v := range r.Refresh {
		if ov, ok := other.Refresh[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ResourceManager tracks a participant's permanent and temporary
// resources. Temporary resources expire wholesale at a refresh timing.
type ResourceManager struct {
	perm map[ResourceName]Resource
	temp map[ResourceName]tempResource
}

type tempResource struct {
	count   int
	expires RefreshTiming
}

// NewResourceManager returns an empty manager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{
		perm: make(map[ResourceName]Resource),
		temp: make(map[ResourceName]tempResource),
	}
}

// NewBasicResources returns a manager with the standard action economy:
// one action, numAttacks attacks per action, one bonus action, one
// reaction, and movement. Buckets refresh at the start of the owner's
// turn and clear at its end.
func NewBasicResources(numAttacks int) *ResourceManager {
	m := NewResourceManager()
	standard := func(at ActionType, cap int) {
		m.AddPerm(ResourceForType(at), Resource{
			Current: cap,
			Cap:     cap,
			Refresh: map[RefreshTiming]RefreshEffect{
				RefreshStartMyTurn: RefreshToCap,
				RefreshEndMyTurn:   RefreshClear,
			},
		})
	}
	standard(TypeAction, 1)
	standard(TypeBonusAction, 1)
	standard(TypeMovement, 1)
	// Attacks are granted by taking the attack action, not by the turn
	// starting, so the pool begins empty and only clears.
	m.AddPerm(ResourceForType(TypeSingleAttack), Resource{
		Current: 0,
		Cap:     numAttacks,
		Refresh: map[RefreshTiming]RefreshEffect{RefreshEndMyTurn: RefreshClear},
	})
	m.AddPerm(ResourceForType(TypeReaction), Resource{
		Current: 1,
		Cap:     1,
		Refresh: map[RefreshTiming]RefreshEffect{RefreshStartMyTurn: RefreshToCap},
	})
	return m
}

// AddPerm registers a permanent resource.
func (m *ResourceManager) AddPerm(name ResourceName, r Resource) {
	m.perm[name] = r.clone()
}

// AddTemp grants count temporary uses that vanish at the expiry timing.
func (m *ResourceManager) AddTemp(name ResourceName, count int, expires RefreshTiming) {
	existing, ok := m.temp[name]
	if ok && existing.expires == expires {
		existing.count += count
		m.temp[name] = existing
		return
	}
	m.temp[name] = tempResource{count: count, expires: expires}
}

// Tracks reports whether the resource is registered at all. Costs
// against untracked resources are free.
func (m *ResourceManager) Tracks(name ResourceName) bool {
	if _, ok := m.perm[name]; ok {
		return true
	}
	_, ok := m.temp[name]
	return ok
}

// Count returns the usable total for the resource, permanent plus
// temporary.
func (m *ResourceManager) Count(name ResourceName) int {
	total := 0
	if r, ok := m.perm[name]; ok {
		total += r.Current
	}
	if t, ok := m.temp[name]; ok {
		total += t.count
	}
	return total
}

// Spend consumes one use, preferring temporary uses first.
func (m *ResourceManager) Spend(name ResourceName) error {
	if t, ok := m.temp[name]; ok && t.count > 0 {
		t.count--
		if t.count == 0 {
			delete(m.temp, name)
		} else {
			m.temp[name] = t
		}
		return nil
	}
	if r, ok := m.perm[name]; ok && r.Current > 0 {
		r.Current--
		m.perm[name] = r
		return nil
	}
	return fmt.Errorf("spending %v: %w", name, ErrInsufficientResources)
}

// Gain adds count uses to a permanent resource, ignoring the cap.
// Unregistered resources are created capped at the gained count.
func (m *ResourceManager) Gain(name ResourceName, count int) {
	r, ok := m.perm[name]
	if !ok {
		r = Resource{Cap: count, Refresh: map[RefreshTiming]RefreshEffect{}}
	}
	r.Current += count
	m.perm[name] = r
}

// Refresh applies a refresh timing: permanent resources follow their
// refresh rules and temporary resources at their expiry vanish.
func (m *ResourceManager) Refresh(timing RefreshTiming) {
	for name, r := range m.perm {
		effect, ok := r.Refresh[timing]
		if !ok {
			continue
		}
		switch effect {
		case RefreshToCap:
			r.Current = r.Cap
		case RefreshClear:
			r.Current = 0
		}
		m.perm[name] = r
	}
	for name, t := range m.temp {
		if t.expires == timing {
			delete(m.temp, name)
		}
	}
}

// Clone returns a deep copy.
func (m *ResourceManager) Clone() *ResourceManager {
	out := NewResourceManager()
	for name, r := range m.perm {
		out.perm[name] = r.clone()
	}
	for name, t := range m.temp {
		out.temp[name] = t
	}
	return out
}

// Equal reports whether both managers hold identical state. Used when
// deciding whether two combat branches are transpositions.
func (m *ResourceManager) Equal(other *ResourceManager) bool {
	if len(m.perm) != len(other.perm) || len(m.temp) != len(other.temp) {
		return false
	}
	for name, r := range m.perm {
		or, ok := other.perm[name]
		if !ok || !r.equal(or) {
			return false
		}
	}
	for name, t := range m.temp {
		ot, ok := other.temp[name]
		if !ok || t != ot {
			return false
		}
	}
	return true
}
