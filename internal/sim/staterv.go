package sim

import (
	"fmt"
	"math/big"

	"github.com/blamedcloud/dndstats/internal/combat"
	"github.com/blamedcloud/dndstats/internal/rv"
)

// StateRV is a distribution over combat states: a list of branches
// whose probabilities sum to one.
type StateRV struct {
	arena  *LogArena
	roster []*combat.Participant
	states []*ProbState
}

func newStateRV(arena *LogArena, roster []*combat.Participant) *StateRV {
	return &StateRV{
		arena:  arena,
		roster: roster,
		states: []*ProbState{newProbState(arena, roster)},
	}
}

// Arena returns the log arena shared by every branch.
func (s *StateRV) Arena() *LogArena { return s.arena }

// Branches returns the number of branches.
func (s *StateRV) Branches() int { return len(s.states) }

// Branch returns the i-th branch.
func (s *StateRV) Branch(i int) *ProbState { return s.states[i] }

// IndexRV returns the distribution over branch indices.
func (s *StateRV) IndexRV() (*rv.VecRV, error) {
	mass := make([]*big.Rat, len(s.states))
	for i, ps := range s.states {
		mass[i] = ps.Prob()
	}
	out, err := rv.NewVec(0, mass)
	if err != nil {
		return nil, fmt.Errorf("branch probabilities: %w", err)
	}
	return out, nil
}

// DamageRV returns the participant's unconditional damage
// distribution: the mixture of the per-branch distributions weighted
// by branch probability.
func (s *StateRV) DamageRV(pid combat.ParticipantID) (*rv.VecRV, error) {
	weights := make([]*big.Rat, len(s.states))
	parts := make([]*rv.VecRV, len(s.states))
	for i, ps := range s.states {
		weights[i] = ps.Prob()
		parts[i] = ps.DamageTaken(pid)
	}
	out, err := rv.Mix(weights, parts)
	if err != nil {
		return nil, fmt.Errorf("mixing branch damage: %w", err)
	}
	return out, nil
}

// ProbOf sums the probability of the branches the predicate accepts.
func (s *StateRV) ProbOf(pred func(*ProbState) bool) *big.Rat {
	total := new(big.Rat)
	for _, ps := range s.states {
		if pred(ps) {
			total.Add(total, ps.prob)
		}
	}
	return total
}

// MergeTranspositions folds together branches that reached the same
// discrete state at the same timing boundary. The merged branch sums
// the probabilities, mixes the damage distributions by each side's
// share, and records both histories as parents of a fresh log node.
func (s *StateRV) MergeTranspositions() error {
	for i := 0; i < len(s.states); i++ {
		for j := i + 1; j < len(s.states); j++ {
			if !s.states[i].state.transposable(s.states[j].state) {
				continue
			}
			merged, err := s.merge(s.states[i], s.states[j])
			if err != nil {
				return err
			}
			s.states[i] = merged
			s.states = append(s.states[:j], s.states[j+1:]...)
			j--
		}
	}
	return nil
}

func (s *StateRV) merge(a, b *ProbState) (*ProbState, error) {
	total := new(big.Rat).Add(a.prob, b.prob)
	dmg := make([]*rv.VecRV, len(a.dmg))
	wa := new(big.Rat).Quo(a.prob, total)
	wb := new(big.Rat).Quo(b.prob, total)
	for pid := range dmg {
		mixed, err := rv.Mix([]*big.Rat{wa, wb}, []*rv.VecRV{a.dmg[pid], b.dmg[pid]})
		if err != nil {
			return nil, fmt.Errorf("merging damage of participant %d: %w", pid, err)
		}
		dmg[pid] = mixed
	}
	state := a.state.copyWithLog(s.arena.Merge(a.state.log, b.state.log))
	return &ProbState{state: state, dmg: dmg, prob: total}, nil
}
