package rv

import (
	"fmt"
	"math/big"
)

// D returns the distribution of a fair die with sides faces, 1 through
// sides inclusive.
//
// Precondition: sides must be at least one.
func D(sides int) (*VecRV, error) {
	if sides < 1 {
		return nil, fmt.Errorf("sides %d: %w", sides, ErrInvalidCount)
	}
	return Uniform(1, sides)
}

// NdS returns the distribution of the sum of n independent fair dice
// with sides faces each.
func NdS(n, sides int) (*VecRV, error) {
	die, err := D(sides)
	if err != nil {
		return nil, err
	}
	return die.NConvolve(n), nil
}

// DReroll returns the distribution of a die with sides faces where any
// face at or below rerollBelow is rerolled once and the second result
// kept. Faces v <= rerollBelow keep only the reroll chance
// (rerollBelow/sides) * (1/sides); faces above keep their direct chance
// 1/sides plus the reroll chance.
//
// Precondition: 0 <= rerollBelow < sides.
func DReroll(sides, rerollBelow int) (*VecRV, error) {
	if sides < 1 {
		return nil, fmt.Errorf("sides %d: %w", sides, ErrInvalidCount)
	}
	if rerollBelow < 0 || rerollBelow >= sides {
		return nil, fmt.Errorf("reroll threshold %d of d%d: %w", rerollBelow, sides, ErrInvalidBounds)
	}
	s := int64(sides)
	direct := big.NewRat(1, s)
	rerolled := ratMul(big.NewRat(int64(rerollBelow), s), direct)
	mass := make([]*big.Rat, sides)
	for i := 0; i < sides; i++ {
		face := i + 1
		if face <= rerollBelow {
			mass[i] = ratCopy(rerolled)
		} else {
			mass[i] = ratAdd(direct, rerolled)
		}
	}
	return &VecRV{lb: 1, ub: sides, mass: mass}, nil
}
