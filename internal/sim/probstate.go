package sim

import (
	"math/big"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/rv"
)

// ProbState is one branch of the simulation: a discrete combat state,
// the exact damage distribution each participant has taken on this
// branch, and the branch probability. Damage distributions are
// immutable values, so clones share them until an application replaces
// one.
type ProbState struct {
	state *CombatState
	dmg   []*rv.VecRV
	prob  *big.Rat
}

func newProbState(arena *LogArena, roster []*combat.Participant) *ProbState {
	dmg := make([]*rv.VecRV, len(roster))
	for i := range dmg {
		dmg[i] = rv.Constant(0)
	}
	return &ProbState{
		state: newCombatState(arena, roster),
		dmg:   dmg,
		prob:  big.NewRat(1, 1),
	}
}

// clone returns a child branch carrying the given probability.
func (ps *ProbState) clone(prob *big.Rat) *ProbState {
	return &ProbState{
		state: ps.state.child(),
		dmg:   append([]*rv.VecRV(nil), ps.dmg...),
		prob:  prob,
	}
}

// Prob returns the branch probability.
func (ps *ProbState) Prob() *big.Rat { return new(big.Rat).Set(ps.prob) }

// State returns the branch's discrete state.
func (ps *ProbState) State() *CombatState { return ps.state }

// DamageTaken returns the participant's damage distribution on this
// branch.
func (ps *ProbState) DamageTaken(pid combat.ParticipantID) *rv.VecRV {
	return ps.dmg[pid]
}

// push records an event on the branch.
func (ps *ProbState) push(ev combat.CombatEvent) { ps.state.push(ev) }

// HealthOf implements combat.StateView.
func (ps *ProbState) HealthOf(pid combat.ParticipantID) combat.Health {
	return ps.state.health[pid]
}

// ResourceCount implements combat.StateView.
func (ps *ProbState) ResourceCount(pid combat.ParticipantID, rn combat.ResourceName) int {
	return ps.state.resources[pid].Count(rn)
}

// HasCondition implements combat.StateView.
func (ps *ProbState) HasCondition(pid combat.ParticipantID, cn combat.ConditionName) bool {
	return ps.state.conditions[pid].Has(cn)
}

// split branches on an event distribution: one child per event, each
// carrying the parent probability times the event probability and
// logging its event. A single-event distribution mutates in place
// rather than spawning a child.
func (ps *ProbState) split(events *rv.MapRV[combat.CombatEvent]) []*ProbState {
	keys := events.Keys()
	if len(keys) == 1 {
		ps.push(keys[0])
		return []*ProbState{ps}
	}
	out := make([]*ProbState, 0, len(keys))
	for _, ev := range keys {
		child := ps.clone(new(big.Rat).Mul(ps.prob, events.Pdf(ev)))
		child.push(ev)
		out = append(out, child)
	}
	return out
}

// splitBool branches on a two-way chance: trueEv with probability p,
// falseEv with 1-p. Degenerate probabilities stay on one branch.
func (ps *ProbState) splitBool(p *big.Rat, trueEv, falseEv combat.CombatEvent) (yes, no *ProbState) {
	one := big.NewRat(1, 1)
	switch {
	case p.Sign() == 0:
		ps.push(falseEv)
		return nil, ps
	case p.Cmp(one) == 0:
		ps.push(trueEv)
		return ps, nil
	default:
		yes = ps.clone(new(big.Rat).Mul(ps.prob, p))
		yes.push(trueEv)
		no = ps.clone(new(big.Rat).Mul(ps.prob, new(big.Rat).Sub(one, p)))
		no.push(falseEv)
		return yes, no
	}
}

// healthOrder fixes the iteration order of damage partitions.
var healthOrder = [...]combat.Health{
	combat.Healthy, combat.Bloodied, combat.ZeroHP, combat.Dead,
}

// addDamage applies a damage distribution to the participant. The new
// damage total is capped to [0, maxHP]; when the whole distribution
// already kills, it collapses to the constant maxHP. If every value
// lands in one health category the branch mutates in place, otherwise
// the total is partitioned by category and one child spawned per
// category. A health event is logged only when the category changes.
func (ps *ProbState) addDamage(p *combat.Participant, pid combat.ParticipantID, dmgRV *rv.VecRV) []*ProbState {
	total := ps.dmg[pid].Convolve(dmgRV)
	if total.LowerBound() >= p.MaxHP {
		total = rv.Constant(p.MaxHP)
	} else {
		total = total.CapLB(0).CapUB(p.MaxHP)
	}
	classify := func(d int) combat.Health {
		return combat.HealthAt(d, p.MaxHP, p.DiesAtZero)
	}
	lo := classify(total.LowerBound())
	hi := classify(total.UpperBound())
	if lo == hi {
		ps.dmg[pid] = total
		ps.applyHealth(pid, lo)
		return []*ProbState{ps}
	}
	parts := rv.PartitionBy(total, classify)
	out := make([]*ProbState, 0, 2)
	for _, h := range healthOrder {
		part, ok := parts.Part(h)
		if !ok {
			continue
		}
		child := ps.clone(new(big.Rat).Mul(ps.prob, part.Prob))
		child.dmg[pid] = part.RV
		child.applyHealth(pid, h)
		out = append(out, child)
	}
	return out
}

// applyHealth sets the category, logging only on change.
func (ps *ProbState) applyHealth(pid combat.ParticipantID, h combat.Health) {
	if ps.state.health[pid] == h {
		return
	}
	ps.state.setHealth(pid, h)
	ps.push(combat.HPEvent(pid, h))
}
