package combat

// ConditionName identifies a condition.
type ConditionName string

const (
	// CondProne marks a shoved or knocked-down creature.
	CondProne ConditionName = "prone"
	// CondConcentrating marks a creature maintaining a spell. Taking
	// damage forces a save to keep it.
	CondConcentrating ConditionName = "concentrating"
)

// ConditionLifetime controls when a condition falls off on its own.
type ConditionLifetime int

const (
	// UntilRemoved lasts until something removes it.
	UntilRemoved ConditionLifetime = iota
	// UntilEndMyTurn falls off at the end of the bearer's turn.
	UntilEndMyTurn
	// UntilStartMyTurn falls off at the start of the bearer's turn.
	UntilStartMyTurn
)

// Condition is one applied condition instance.
type Condition struct {
	Lifetime ConditionLifetime
}

// ConditionManager tracks a participant's active conditions.
type ConditionManager struct {
	active map[ConditionName]Condition
}

// NewConditionManager returns an empty manager.
func NewConditionManager() *ConditionManager {
	return &ConditionManager{active: make(map[ConditionName]Condition)}
}

// Apply adds or replaces a condition.
func (m *ConditionManager) Apply(name ConditionName, c Condition) {
	m.active[name] = c
}

// Remove drops a condition. Removing an absent condition is a no-op.
// Returns whether the condition was present.
func (m *ConditionManager) Remove(name ConditionName) bool {
	_, ok := m.active[name]
	delete(m.active, name)
	return ok
}

// Has reports whether the condition is active.
func (m *ConditionManager) Has(name ConditionName) bool {
	_, ok := m.active[name]
	return ok
}

// Names returns the active condition names in no particular order.
func (m *ConditionManager) Names() []ConditionName {
	out := make([]ConditionName, 0, len(m.active))
	for name := range m.active {
		out = append(out, name)
	}
	return out
}

// ExpireAt drops conditions whose lifetime ends at the timing. Returns
// the names removed.
func (m *ConditionManager) ExpireAt(lifetime ConditionLifetime) []ConditionName {
	var removed []ConditionName
	for name, c := range m.active {
		if c.Lifetime == lifetime && c.Lifetime != UntilRemoved {
			delete(m.active, name)
			removed = append(removed, name)
		}
	}
	return removed
}

// Clone returns a deep copy.
func (m *ConditionManager) Clone() *ConditionManager {
	out := NewConditionManager()
	for name, c := range m.active {
		out.active[name] = c
	}
	return out
}

// Equal reports whether both managers hold identical conditions.
func (m *ConditionManager) Equal(other *ConditionManager) bool {
	if len(m.active) != len(other.active) {
		return false
	}
	for name, c := range m.active {
		oc, ok := other.active[name]
		if !ok || c != oc {
			return false
		}
	}
	return true
}
