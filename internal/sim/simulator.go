package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/combat/strategy"
	"github.com/blamedcloud/dndstats/internal/rv"
)

// ErrRosterMismatch indicates the strategies do not line up one to one
// with the participants.
var ErrRosterMismatch = errors.New("one strategy per participant required")

// ErrOneSidedEncounter indicates the roster lacks one of the teams.
var ErrOneSidedEncounter = errors.New("encounter needs participants on both teams")

// ErrInvalidRounds indicates a round count below one.
var ErrInvalidRounds = errors.New("round count must be at least one")

// EncounterSimulator runs an encounter exactly: instead of sampling
// dice it branches the combat state on every probabilistic event and
// tracks each branch's probability. Turns run in roster (initiative)
// order.
type EncounterSimulator struct {
	logger     *zap.Logger
	runID      uuid.UUID
	roster     []*combat.Participant
	strategies []strategy.Strategy
	merge      bool
}

// Option configures a simulator.
type Option func(*EncounterSimulator)

// WithoutMerging disables transposition merging. Branch counts grow
// much faster; useful for inspecting full histories.
func WithoutMerging() Option {
	return func(e *EncounterSimulator) { e.merge = false }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id uuid.UUID) Option {
	return func(e *EncounterSimulator) { e.runID = id }
}

// NewEncounterSimulator builds a simulator for a roster in initiative
// order and one strategy per participant.
//
// Precondition: roster and strategies must be the same non-zero length
// and the roster must contain both teams.
func NewEncounterSimulator(logger *zap.Logger, roster []*combat.Participant, strategies []strategy.Strategy, opts ...Option) (*EncounterSimulator, error) {
	if len(roster) == 0 || len(roster) != len(strategies) {
		return nil, fmt.Errorf("%d participants, %d strategies: %w", len(roster), len(strategies), ErrRosterMismatch)
	}
	teams := make(map[combat.Team]bool)
	for _, p := range roster {
		teams[p.Team] = true
	}
	if !teams[combat.TeamPlayers] || !teams[combat.TeamEnemies] {
		return nil, ErrOneSidedEncounter
	}
	e := &EncounterSimulator{
		logger:     logger,
		runID:      uuid.New(),
		roster:     roster,
		strategies: strategies,
		merge:      true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("run_id", e.runID.String()))
	return e, nil
}

// RunID returns the run identifier.
func (e *EncounterSimulator) RunID() uuid.UUID { return e.runID }

// SimulateRounds runs the encounter for the given number of rounds and
// returns the resulting state distribution. The encounter end is
// logged at most once, on the branches where a side is eliminated.
func (e *EncounterSimulator) SimulateRounds(ctx context.Context, rounds int) (*StateRV, error) {
	if rounds < 1 {
		return nil, fmt.Errorf("%d rounds: %w", rounds, ErrInvalidRounds)
	}
	arena := NewLogArena()
	srv := newStateRV(arena, e.roster)
	e.applyTiming(srv, combat.Timing{Kind: combat.EncounterBegin})

	for round := 1; round <= rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		e.applyTiming(srv, combat.Timing{Kind: combat.BeginRound, Round: round})
		for pid := range e.roster {
			if err := e.takeTurns(srv, combat.ParticipantID(pid)); err != nil {
				return nil, fmt.Errorf("round %d, participant %d: %w", round, pid, err)
			}
			if e.merge {
				if err := srv.MergeTranspositions(); err != nil {
					return nil, err
				}
			}
		}
		e.applyTiming(srv, combat.Timing{Kind: combat.EndRound, Round: round})
		if e.merge {
			if err := srv.MergeTranspositions(); err != nil {
				return nil, err
			}
		}
		e.logger.Debug("round simulated",
			zap.Int("round", round),
			zap.Int("branches", srv.Branches()),
			zap.Int("log_nodes", arena.Len()),
		)
	}
	return srv, nil
}

// applyTiming pushes a timing boundary onto every live branch.
func (e *EncounterSimulator) applyTiming(srv *StateRV, t combat.Timing) {
	for _, ps := range srv.states {
		if !ps.state.over {
			e.applyTimingTo(ps, t)
		}
	}
}

// applyTimingTo logs the boundary, refreshes resources, and expires
// conditions on one branch.
func (e *EncounterSimulator) applyTimingTo(ps *ProbState, t combat.Timing) {
	ps.push(combat.TimingEvent(t))
	for pid := range e.roster {
		if rt, ok := t.RefreshTiming(combat.ParticipantID(pid)); ok {
			ps.state.resources[pid].Refresh(rt)
		}
	}
	switch t.Kind {
	case combat.BeginTurn:
		e.expireConditions(ps, t.Participant, combat.UntilStartMyTurn)
	case combat.EndTurn:
		e.expireConditions(ps, t.Participant, combat.UntilEndMyTurn)
	}
}

func (e *EncounterSimulator) expireConditions(ps *ProbState, pid combat.ParticipantID, lifetime combat.ConditionLifetime) {
	for _, cn := range ps.state.conditions[pid].ExpireAt(lifetime) {
		ps.push(combat.ConditionEvent(false, pid, cn))
	}
}

// takeTurns runs one participant's turn on every branch.
func (e *EncounterSimulator) takeTurns(srv *StateRV, pid combat.ParticipantID) error {
	out := make([]*ProbState, 0, len(srv.states))
	for _, ps := range srv.states {
		if ps.state.over || !ps.state.health[pid].Alive() {
			out = append(out, ps)
			continue
		}
		e.applyTimingTo(ps, combat.Timing{Kind: combat.BeginTurn, Participant: pid})
		finished, err := e.finishTurn(ps, pid)
		if err != nil {
			return err
		}
		for _, f := range finished {
			if !f.state.over {
				e.applyTimingTo(f, combat.Timing{Kind: combat.EndTurn, Participant: pid})
			}
			out = append(out, f)
		}
	}
	srv.states = out
	return nil
}

// finishTurn asks the strategy for decisions until it ends the turn,
// following every branch an action spawns.
func (e *EncounterSimulator) finishTurn(ps *ProbState, pid combat.ParticipantID) ([]*ProbState, error) {
	if ps.state.over || !ps.state.health[pid].Alive() {
		return []*ProbState{ps}, nil
	}
	decision := e.strategies[pid].Act(ps, e.roster, pid)
	switch decision.Kind {
	case strategy.DoNothing:
		return []*ProbState{ps}, nil

	case strategy.RemoveCondition:
		rn := combat.ResourceForType(decision.At)
		rm := ps.state.resources[pid]
		if rm.Tracks(rn) {
			if err := rm.Spend(rn); err != nil {
				return nil, fmt.Errorf("removing %q: %w", decision.Condition, err)
			}
		}
		if ps.state.conditions[pid].Remove(decision.Condition) {
			ps.push(combat.ConditionEvent(false, pid, decision.Condition))
		}
		return e.finishTurn(ps, pid)

	case strategy.TakeAction:
		children, err := e.handleAction(ps, pid, decision.Action)
		if err != nil {
			return nil, err
		}
		out := make([]*ProbState, 0, len(children))
		for _, child := range children {
			finished, err := e.finishTurn(child, pid)
			if err != nil {
				return nil, err
			}
			out = append(out, finished...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown decision kind %d", decision.Kind)
	}
}

// handleAction validates and pays for an action, then dispatches it.
func (e *EncounterSimulator) handleAction(ps *ProbState, pid combat.ParticipantID, act strategy.StrategicAction) ([]*ProbState, error) {
	p := e.roster[pid]
	opt, err := p.Actions.Option(act.Name)
	if err != nil {
		return nil, err
	}
	if opt.RequiresTarget {
		if act.Target < 0 || int(act.Target) >= len(e.roster) || act.Target == pid {
			return nil, fmt.Errorf("%q: %w", act.Name, combat.ErrMissingTarget)
		}
		if !ps.state.health[act.Target].Alive() {
			return nil, fmt.Errorf("%q targeting downed participant %d: %w", act.Name, act.Target, combat.ErrMissingTarget)
		}
	}

	rm := ps.state.resources[pid]
	costs := []combat.ResourceName{
		combat.ResourceForType(opt.Type),
		combat.ResourceForAction(act.Name),
	}
	if act.SlotLevel > 0 {
		costs = append(costs, combat.SpellSlot(act.SlotLevel))
	}
	for _, rn := range costs {
		if !rm.Tracks(rn) {
			// An untracked spell slot can never be paid; other
			// untracked pools are free.
			if rn.Kind == combat.KindSpellSlot {
				return nil, fmt.Errorf("%q slot level %d: %w", act.Name, rn.SlotLevel, combat.ErrInsufficientResources)
			}
			continue
		}
		if rm.Count(rn) < 1 {
			return nil, fmt.Errorf("%q: %w", act.Name, combat.ErrInsufficientResources)
		}
	}
	for _, rn := range costs {
		if rm.Tracks(rn) {
			if err := rm.Spend(rn); err != nil {
				return nil, fmt.Errorf("%q: %w", act.Name, err)
			}
		}
	}
	ps.push(combat.ActionEvent(act.Name, pid))

	switch opt.Action.Kind {
	case combat.KindAttack:
		return e.handleAttack(ps, pid, act.Target, opt.Action.Attack)

	case combat.KindSelfHeal:
		heal, err := opt.Action.Heal.HitRV(nil)
		if err != nil {
			return nil, fmt.Errorf("%q healing: %w", act.Name, err)
		}
		return ps.addDamage(p, pid, heal.Neg()), nil

	case combat.KindAdditionalAttacks:
		rm.Gain(combat.ResourceForType(combat.TypeSingleAttack), opt.Action.NumAttacks)
		return []*ProbState{ps}, nil

	case combat.KindByName:
		switch act.Name {
		case combat.ActionSurge:
			rm.Gain(combat.ResourceForType(combat.TypeAction), 1)
			return []*ProbState{ps}, nil
		case combat.ShoveProne:
			return e.handleShove(ps, pid, act.Target), nil
		default:
			return nil, fmt.Errorf("%q: %w", act.Name, combat.ErrUnknownAction)
		}

	default:
		return nil, fmt.Errorf("%q: unknown action kind %d", act.Name, opt.Action.Kind)
	}
}

// handleAttack splits on the attack outcome, runs the attacker's
// successful-attack triggers per branch, and applies the damage.
func (e *EncounterSimulator) handleAttack(ps *ProbState, src, dst combat.ParticipantID, atk *combat.Attack) ([]*ProbState, error) {
	target := e.roster[dst]
	ps.push(combat.AttackEvent(src, dst))
	outcomes := atk.OutcomeRV(target.AC)
	eventRV := rv.MapKeysRV(outcomes, func(o combat.AttackOutcome) combat.CombatEvent {
		return combat.OutcomeEvent(o, src, dst)
	})

	var out []*ProbState
	for _, child := range ps.split(eventRV) {
		ev, ok := child.state.arena.LastEvent(child.state.log)
		if !ok || ev.Kind != combat.EventOutcome {
			return nil, fmt.Errorf("attack branch lost its outcome event")
		}
		outcome := ev.Outcome

		dealer := atk.Damage
		if outcome != combat.OutcomeMiss {
			dealer, ok = e.applyAttackTriggers(child, src, dealer)
			if !ok {
				return nil, fmt.Errorf("attacker %d on %s: %w", src, outcome, combat.ErrInvalidTriggerResponse)
			}
		}
		dmgRV, err := dealer.OutcomeRV(outcome, target.Resistances)
		if err != nil {
			return nil, fmt.Errorf("damage on %s: %w", outcome, err)
		}
		out = append(out, e.applyDamage(child, dst, dmgRV)...)
	}
	return out, nil
}

// applyAttackTriggers asks the attacker's strategy which triggers to
// fire and folds their damage into a copy of the dealer. Returns false
// when the strategy names a trigger the attacker lacks or cannot pay
// for.
func (e *EncounterSimulator) applyAttackTriggers(ps *ProbState, src combat.ParticipantID, dealer *combat.DamageDealer) (*combat.DamageDealer, bool) {
	names := e.strategies[src].RespondToTrigger(ps, e.roster, src, combat.TriggerSuccessfulAttack)
	if len(names) == 0 {
		return dealer, true
	}
	out := dealer.Clone()
	rm := ps.state.resources[src]
	for _, name := range names {
		ta, ok := e.roster[src].Triggers.Find(combat.TriggerSuccessfulAttack, name)
		if !ok {
			return nil, false
		}
		if ta.Cost != nil {
			if rm.Count(*ta.Cost) < 1 {
				return nil, false
			}
			if err := rm.Spend(*ta.Cost); err != nil {
				return nil, false
			}
		}
		for _, term := range ta.Damage {
			out.AddBase(term)
		}
	}
	return out, true
}

// applyDamage applies a damage distribution to the target, forcing a
// concentration save first when the target is concentrating and the
// damage can be non-zero, and ends the encounter on branches where a
// side was eliminated.
func (e *EncounterSimulator) applyDamage(ps *ProbState, dst combat.ParticipantID, dmgRV *rv.VecRV) []*ProbState {
	target := e.roster[dst]
	pre := []*ProbState{ps}
	if ps.HasCondition(dst, combat.CondConcentrating) && dmgRV.UpperBound() > 0 {
		ps.push(combat.ForceSaveEvent(dst))
		pSave := combat.SaveSuccessProb(target.SaveBonus(combat.Constitution), combat.ConcentrationDC)
		yes, no := ps.splitBool(pSave, combat.SaveResultEvent(dst, true), combat.SaveResultEvent(dst, false))
		pre = pre[:0]
		if yes != nil {
			pre = append(pre, yes)
		}
		if no != nil {
			no.state.conditions[dst].Remove(combat.CondConcentrating)
			no.push(combat.ConditionEvent(false, dst, combat.CondConcentrating))
			pre = append(pre, no)
		}
	}
	var out []*ProbState
	for _, b := range pre {
		for _, g := range b.addDamage(target, dst, dmgRV) {
			e.checkEncounterEnd(g)
			out = append(out, g)
		}
	}
	return out
}

// handleShove resolves a shove-prone contest: the shover's athletics
// against the better of the target's athletics and acrobatics, ties to
// the defender.
func (e *EncounterSimulator) handleShove(ps *ProbState, src, dst combat.ParticipantID) []*ProbState {
	ps.push(combat.ContestEvent(src, dst))
	pWin := combat.ContestWinProb(
		e.roster[src].SkillBonus(combat.Athletics),
		e.roster[dst].ShoveDefenseBonus(),
	)
	yes, no := ps.splitBool(pWin,
		combat.ContestResultEvent(src, dst, true),
		combat.ContestResultEvent(src, dst, false),
	)
	var out []*ProbState
	if yes != nil {
		yes.state.conditions[dst].Apply(combat.CondProne, combat.Condition{Lifetime: combat.UntilRemoved})
		yes.push(combat.ConditionEvent(true, dst, combat.CondProne))
		out = append(out, yes)
	}
	if no != nil {
		out = append(out, no)
	}
	return out
}

// checkEncounterEnd ends the encounter on a branch where a side has no
// living participants left.
func (e *EncounterSimulator) checkEncounterEnd(ps *ProbState) {
	if ps.state.over {
		return
	}
	alive := make(map[combat.Team]bool)
	for pid, p := range e.roster {
		if ps.state.health[pid].Alive() {
			alive[p.Team] = true
		}
	}
	if !alive[combat.TeamPlayers] || !alive[combat.TeamEnemies] {
		ps.push(combat.TimingEvent(combat.Timing{Kind: combat.EncounterEnd}))
		ps.state.over = true
	}
}
