package rv

import (
	"fmt"
	"math/big"
)

// Part is one piece of a partitioned distribution: the conditional
// distribution given the piece, and the probability of landing in it.
type Part struct {
	RV   *VecRV
	Prob *big.Rat
}

// Partition splits a distribution into labelled conditional pieces.
// The piece probabilities always sum to one.
type Partition[L comparable] struct {
	parts map[L]Part
}

// PartitionBy classifies every value of the distribution and returns
// the conditional distribution and probability per label. Labels with
// zero probability do not appear.
func PartitionBy[L comparable](v *VecRV, classify func(int) L) *Partition[L] {
	masses := make(map[L]map[int]*big.Rat)
	probs := make(map[L]*big.Rat)
	for x := v.lb; x <= v.ub; x++ {
		p := v.mass[x-v.lb]
		if isZero(p) {
			continue
		}
		label := classify(x)
		if masses[label] == nil {
			masses[label] = make(map[int]*big.Rat)
			probs[label] = ratZero()
		}
		masses[label][x] = ratCopy(p)
		probs[label].Add(probs[label], p)
	}
	parts := make(map[L]Part, len(masses))
	for label, byValue := range masses {
		parts[label] = Part{RV: conditionalVec(byValue, probs[label]), Prob: probs[label]}
	}
	return &Partition[L]{parts: parts}
}

// conditionalVec densifies a value-to-mass map renormalized by total.
func conditionalVec(byValue map[int]*big.Rat, total *big.Rat) *VecRV {
	lb, ub := 0, 0
	first := true
	for x := range byValue {
		if first || x < lb {
			lb = x
		}
		if first || x > ub {
			ub = x
		}
		first = false
	}
	mass := make([]*big.Rat, ub-lb+1)
	for i := range mass {
		mass[i] = ratZero()
	}
	for x, p := range byValue {
		mass[x-lb] = ratQuo(p, total)
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}
}

// Part returns the piece for the label, if present.
func (p *Partition[L]) Part(label L) (Part, bool) {
	part, ok := p.parts[label]
	return part, ok
}

// Labels returns the labels carrying probability, in no particular
// order.
func (p *Partition[L]) Labels() []L {
	out := make([]L, 0, len(p.parts))
	for label := range p.parts {
		out = append(out, label)
	}
	return out
}

// Add combines two partitions over the same label space. Each label's
// probability is the sum of the two sides, and its conditional
// distribution is the mixture of the sides weighted by their share of
// the combined probability.
func (p *Partition[L]) Add(other *Partition[L]) (*Partition[L], error) {
	parts := make(map[L]Part, len(p.parts))
	for label, part := range p.parts {
		o, ok := other.parts[label]
		if !ok {
			parts[label] = Part{RV: part.RV, Prob: ratCopy(part.Prob)}
			continue
		}
		total := ratAdd(part.Prob, o.Prob)
		mixed, err := Mix(
			[]*big.Rat{ratQuo(part.Prob, total), ratQuo(o.Prob, total)},
			[]*VecRV{part.RV, o.RV},
		)
		if err != nil {
			return nil, fmt.Errorf("recombining partition: %w", err)
		}
		parts[label] = Part{RV: mixed, Prob: total}
	}
	for label, o := range other.parts {
		if _, ok := p.parts[label]; !ok {
			parts[label] = Part{RV: o.RV, Prob: ratCopy(o.Prob)}
		}
	}
	return &Partition[L]{parts: parts}, nil
}
