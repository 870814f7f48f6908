package combat

// StateView is the read-only window a strategy gets into one branch of
// the simulation. Implementations live in the simulation layer.
type StateView interface {
	// HealthOf returns the participant's current health category.
	HealthOf(pid ParticipantID) Health
	// ResourceCount returns the participant's usable count of a
	// resource.
	ResourceCount(pid ParticipantID, rn ResourceName) int
	// HasCondition reports whether the participant has the condition.
	HasCondition(pid ParticipantID, cn ConditionName) bool
}
