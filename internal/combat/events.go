package combat

import "fmt"

// ParticipantID indexes a participant in initiative order.
type ParticipantID int

// TimingKind discriminates encounter timing boundaries.
type TimingKind int

const (
	EncounterBegin TimingKind = iota
	EncounterEnd
	BeginRound
	EndRound
	BeginTurn
	EndTurn
)

// Timing is one boundary of the encounter clock.
type Timing struct {
	Kind TimingKind
	// Round is set for BeginRound and EndRound.
	Round int
	// Participant is set for BeginTurn and EndTurn.
	Participant ParticipantID
}

// String renders the timing for logs.
func (t Timing) String() string {
	switch t.Kind {
	case EncounterBegin:
		return "encounter begin"
	case EncounterEnd:
		return "encounter end"
	case BeginRound:
		return fmt.Sprintf("begin round %d", t.Round)
	case EndRound:
		return fmt.Sprintf("end round %d", t.Round)
	case BeginTurn:
		return fmt.Sprintf("begin turn of %d", t.Participant)
	case EndTurn:
		return fmt.Sprintf("end turn of %d", t.Participant)
	default:
		return fmt.Sprintf("Timing(%d)", int(t.Kind))
	}
}

// RefreshTiming maps the boundary to the refresh timing it implies for
// the given participant. Not every boundary refreshes anything.
func (t Timing) RefreshTiming(me ParticipantID) (RefreshTiming, bool) {
	switch t.Kind {
	case BeginRound:
		return RefreshStartRound, true
	case EndRound:
		return RefreshEndRound, true
	case BeginTurn:
		if t.Participant == me {
			return RefreshStartMyTurn, true
		}
		return RefreshStartOtherTurn, true
	case EndTurn:
		if t.Participant == me {
			return RefreshEndMyTurn, true
		}
		return RefreshEndOtherTurn, true
	default:
		return 0, false
	}
}

// cmp orders timings for use inside event ordering.
func (t Timing) cmp(other Timing) int {
	if c := int(t.Kind) - int(other.Kind); c != 0 {
		return c
	}
	if c := t.Round - other.Round; c != 0 {
		return c
	}
	return int(t.Participant) - int(other.Participant)
}

// EventKind discriminates combat events.
type EventKind int

const (
	// EventTiming marks an encounter clock boundary.
	EventTiming EventKind = iota
	// EventAction announces an action being taken.
	EventAction
	// EventAttack announces an attack from Source against Target.
	EventAttack
	// EventOutcome records an attack outcome.
	EventOutcome
	// EventHP records a health category change.
	EventHP
	// EventApplyCondition records a condition being applied.
	EventApplyCondition
	// EventRemoveCondition records a condition being removed.
	EventRemoveCondition
	// EventSkillContest announces a contest from Source against Target.
	EventSkillContest
	// EventContestResult records whether the initiator won.
	EventContestResult
	// EventForceSave announces a forced saving throw.
	EventForceSave
	// EventSaveResult records whether the save succeeded.
	EventSaveResult
)

// CombatEvent is one entry in a combat log. Events are plain
// comparable values so they can key distributions and be compared for
// transposition detection. Unused fields are zero.
type CombatEvent struct {
	Kind      EventKind
	Timing    Timing
	Action    ActionName
	Source    ParticipantID
	Target    ParticipantID
	Outcome   AttackOutcome
	Health    Health
	Condition ConditionName
	Success   bool
}

// Cmp orders events by kind, then field by field. The order has no
// rules meaning; it exists so events can key a distribution.
func (e CombatEvent) Cmp(other CombatEvent) int {
	if c := int(e.Kind) - int(other.Kind); c != 0 {
		return c
	}
	if c := e.Timing.cmp(other.Timing); c != 0 {
		return c
	}
	if c := cmpStr(string(e.Action), string(other.Action)); c != 0 {
		return c
	}
	if c := int(e.Source) - int(other.Source); c != 0 {
		return c
	}
	if c := int(e.Target) - int(other.Target); c != 0 {
		return c
	}
	if c := int(e.Outcome) - int(other.Outcome); c != 0 {
		return c
	}
	if c := int(e.Health) - int(other.Health); c != 0 {
		return c
	}
	if c := cmpStr(string(e.Condition), string(other.Condition)); c != 0 {
		return c
	}
	return cmpBool(e.Success, other.Success)
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}

// TimingEvent builds a timing event.
func TimingEvent(t Timing) CombatEvent {
	return CombatEvent{Kind: EventTiming, Timing: t}
}

// ActionEvent builds an action announcement.
func ActionEvent(name ActionName, src ParticipantID) CombatEvent {
	return CombatEvent{Kind: EventAction, Action: name, Source: src}
}

// AttackEvent builds an attack announcement.
func AttackEvent(src, dst ParticipantID) CombatEvent {
	return CombatEvent{Kind: EventAttack, Source: src, Target: dst}
}

// OutcomeEvent builds an attack outcome record.
func OutcomeEvent(o AttackOutcome, src, dst ParticipantID) CombatEvent {
	return CombatEvent{Kind: EventOutcome, Outcome: o, Source: src, Target: dst}
}

// HPEvent builds a health category change record.
func HPEvent(pid ParticipantID, h Health) CombatEvent {
	return CombatEvent{Kind: EventHP, Target: pid, Health: h}
}

// ForceSaveEvent builds a forced saving throw announcement.
func ForceSaveEvent(pid ParticipantID) CombatEvent {
	return CombatEvent{Kind: EventForceSave, Target: pid}
}

// SaveResultEvent builds a saving throw result record.
func SaveResultEvent(pid ParticipantID, success bool) CombatEvent {
	return CombatEvent{Kind: EventSaveResult, Target: pid, Success: success}
}

// ContestEvent builds a skill contest announcement.
func ContestEvent(src, dst ParticipantID) CombatEvent {
	return CombatEvent{Kind: EventSkillContest, Source: src, Target: dst}
}

// ContestResultEvent builds a skill contest result record.
func ContestResultEvent(src, dst ParticipantID, success bool) CombatEvent {
	return CombatEvent{Kind: EventContestResult, Source: src, Target: dst, Success: success}
}

// ConditionEvent builds a condition change record.
func ConditionEvent(applied bool, pid ParticipantID, cn ConditionName) CombatEvent {
	kind := EventRemoveCondition
	if applied {
		kind = EventApplyCondition
	}
	return CombatEvent{Kind: kind, Target: pid, Condition: cn}
}
