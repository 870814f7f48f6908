package rv

import (
	"fmt"
	"math/big"
	"sort"
)

// MapRV is a sparse distribution over an ordered key space. Keys with
// zero mass are never stored. A MapRV is immutable after construction.
type MapRV[K Ordered[K]] struct {
	keys []K
	mass map[K]*big.Rat
}

// FromMap builds a distribution from a key-to-mass map. Zero masses are
// dropped; the remaining masses must be non-negative and sum to one.
func FromMap[K Ordered[K]](m map[K]*big.Rat) (*MapRV[K], error) {
	keys := make([]K, 0, len(m))
	mass := make(map[K]*big.Rat, len(m))
	total := ratZero()
	for k, p := range m {
		if p == nil || isZero(p) {
			continue
		}
		if p.Sign() < 0 {
			return nil, ErrNegativeProb
		}
		keys = append(keys, k)
		mass[k] = ratCopy(p)
		total.Add(total, p)
	}
	if len(keys) == 0 {
		return nil, ErrEmpty
	}
	if !isOne(total) {
		return nil, fmt.Errorf("total mass %s: %w", total.RatString(), ErrMassNotOne)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Cmp(keys[j]) < 0 })
	return &MapRV[K]{keys: keys, mass: mass}, nil
}

// ConstantKey is the distribution with all mass at k.
func ConstantKey[K Ordered[K]](k K) *MapRV[K] {
	return &MapRV[K]{keys: []K{k}, mass: map[K]*big.Rat{k: ratOne()}}
}

// Keys returns the support in ascending order.
func (m *MapRV[K]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys carrying mass.
func (m *MapRV[K]) Len() int { return len(m.keys) }

// LowerKey returns the smallest key carrying mass.
func (m *MapRV[K]) LowerKey() K { return m.keys[0] }

// UpperKey returns the largest key carrying mass.
func (m *MapRV[K]) UpperKey() K { return m.keys[len(m.keys)-1] }

// Pdf returns P(X = k).
func (m *MapRV[K]) Pdf(k K) *big.Rat {
	if p, ok := m.mass[k]; ok {
		return ratCopy(p)
	}
	return ratZero()
}

// Cdf returns P(X <= k).
func (m *MapRV[K]) Cdf(k K) *big.Rat {
	total := ratZero()
	for _, key := range m.keys {
		if key.Cmp(k) > 0 {
			break
		}
		total.Add(total, m.mass[key])
	}
	return total
}

// MapKeys returns the pushforward distribution of f(X) over the same
// key space, folding together masses of keys that collide under f.
func (m *MapRV[K]) MapKeys(f func(K) K) *MapRV[K] {
	return mustFromFolded(foldKeys(m, f))
}

// MapKeysRV returns the pushforward distribution of f(X) into another
// key space, folding together masses of keys that collide under f.
func MapKeysRV[K Ordered[K], L Ordered[L]](m *MapRV[K], f func(K) L) *MapRV[L] {
	return mustFromFolded(foldKeys(m, f))
}

func foldKeys[K Ordered[K], L Ordered[L]](m *MapRV[K], f func(K) L) map[L]*big.Rat {
	out := make(map[L]*big.Rat)
	for _, k := range m.keys {
		l := f(k)
		if acc, ok := out[l]; ok {
			acc.Add(acc, m.mass[k])
		} else {
			out[l] = ratCopy(m.mass[k])
		}
	}
	return out
}

// mustFromFolded builds a MapRV from masses known to be a valid
// redistribution of an existing distribution.
func mustFromFolded[L Ordered[L]](folded map[L]*big.Rat) *MapRV[L] {
	out, err := FromMap(folded)
	if err != nil {
		panic(fmt.Sprintf("redistributed mass invalid: %v", err))
	}
	return out
}

// Consolidate returns the mixture distribution of outcome(X): each key's
// mass is spread over the distribution the outcome function assigns it.
func Consolidate[K Ordered[K], L Ordered[L]](weights *MapRV[K], outcome func(K) *MapRV[L]) *MapRV[L] {
	folded := make(map[L]*big.Rat)
	for _, k := range weights.keys {
		w := weights.mass[k]
		part := outcome(k)
		for _, l := range part.keys {
			contrib := ratMul(w, part.mass[l])
			if acc, ok := folded[l]; ok {
				acc.Add(acc, contrib)
			} else {
				folded[l] = contrib
			}
		}
	}
	return mustFromFolded(folded)
}

// Add returns the distribution of X + Y for independent X and Y over a
// numeric key space. The accumulation walks each distribution's convex
// support, so for key spaces whose enumeration is inexact every
// representable sum is still visited; sums that end with zero mass are
// dropped.
func Add[K SeqNumeric[K]](a, b *MapRV[K]) *MapRV[K] {
	folded := make(map[K]*big.Rat)
	for _, ka := range convexSupport(a) {
		pa, ok := a.mass[ka]
		if !ok {
			continue
		}
		for _, kb := range convexSupport(b) {
			pb, ok := b.mass[kb]
			if !ok {
				continue
			}
			k := ka.AddKey(kb)
			if acc, exists := folded[k]; exists {
				acc.Add(acc, ratMul(pa, pb))
			} else {
				folded[k] = ratMul(pa, pb)
			}
		}
	}
	return mustFromFolded(folded)
}

// convexSupport returns the keys visited when accumulating over m: the
// exact support for convex key spaces, otherwise the enumeration of the
// tightest convex interval covering the support.
func convexSupport[K SeqOrdered[K]](m *MapRV[K]) []K {
	if m.keys[0].AlwaysConvex() {
		return m.keys
	}
	lo, hi, _ := ConvexBounds(m.keys)
	return lo.EnumerateTo(hi)
}

// Joint returns the distribution of (X, Y) for independent X and Y.
func Joint[A SeqNumeric[A], B SeqNumeric[B]](a *MapRV[A], b *MapRV[B]) *MapRV[Pair[A, B]] {
	folded := make(map[Pair[A, B]]*big.Rat, len(a.keys)*len(b.keys))
	for _, ka := range a.keys {
		for _, kb := range b.keys {
			folded[Pair[A, B]{First: ka, Second: kb}] = ratMul(a.mass[ka], b.mass[kb])
		}
	}
	return mustFromFolded(folded)
}

// IndependentTrials returns the joint distribution of two independent
// draws from the same distribution.
func IndependentTrials[K SeqNumeric[K]](m *MapRV[K]) *MapRV[Pair[K, K]] {
	return Joint(m, m)
}

// Project returns the joint distribution of (X, f(X)) where the second
// component is drawn from the distribution the projection assigns to
// each key of the first.
func Project[K SeqNumeric[K], L SeqNumeric[L]](m *MapRV[K], f func(K) *MapRV[L]) *MapRV[Pair[K, L]] {
	folded := make(map[Pair[K, L]]*big.Rat)
	for _, k := range m.keys {
		w := m.mass[k]
		part := f(k)
		for _, l := range part.keys {
			folded[Pair[K, L]{First: k, Second: l}] = ratMul(w, part.mass[l])
		}
	}
	return mustFromFolded(folded)
}

// Halve returns the distribution of the halved key. The key type must
// support halving; key spaces without it report ErrNoRound.
func Halve[K Ordered[K]](m *MapRV[K]) (*MapRV[K], error) {
	folded := make(map[K]*big.Rat)
	for _, k := range m.keys {
		h, ok := any(k).(interface{ Halve() K })
		if !ok {
			return nil, ErrNoRound
		}
		hk := h.Halve()
		if acc, exists := folded[hk]; exists {
			acc.Add(acc, m.mass[k])
		} else {
			folded[hk] = ratCopy(m.mass[k])
		}
	}
	return mustFromFolded(folded), nil
}

// Equal reports whether both distributions have identical support and
// masses.
func (m *MapRV[K]) Equal(other *MapRV[K]) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if k != other.keys[i] {
			return false
		}
		if m.mass[k].Cmp(other.mass[k]) != 0 {
			return false
		}
	}
	return true
}

// ToVec converts an integer-keyed sparse distribution to the dense form,
// filling absent values in [min, max] with zero mass.
func ToVec(m *MapRV[Int]) *VecRV {
	lb := int(m.LowerKey())
	ub := int(m.UpperKey())
	mass := make([]*big.Rat, ub-lb+1)
	for i := range mass {
		mass[i] = ratZero()
	}
	for k, p := range m.mass {
		mass[int(k)-lb] = ratCopy(p)
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}
}
