// Package rv implements exact discrete random variables with rational
// probability masses. Distributions come in a dense vector form over
// integer bounds and a sparse map form over generic ordered keys. All
// arithmetic is performed with math/big rationals, so results are exact
// rather than sampled or floating point.
package rv

import (
	"errors"
	"math/big"
)

// ErrInvalidBounds indicates a lower bound greater than the upper bound.
var ErrInvalidBounds = errors.New("lower bound exceeds upper bound")

// ErrNegativeProb indicates a negative probability mass.
var ErrNegativeProb = errors.New("negative probability mass")

// ErrMassNotOne indicates the total probability mass is not exactly one.
var ErrMassNotOne = errors.New("probability mass does not sum to one")

// ErrNoRound indicates the key space does not support halving.
var ErrNoRound = errors.New("key space does not support halving")

// ErrInvalidCount indicates a trial or die count less than one.
var ErrInvalidCount = errors.New("count must be at least one")

// ErrEmpty indicates a distribution with no outcomes.
var ErrEmpty = errors.New("distribution has no outcomes")

func ratZero() *big.Rat { return new(big.Rat) }

func ratOne() *big.Rat { return big.NewRat(1, 1) }

// Rat builds the rational n/d.
//
// Precondition: d must be non-zero.
func Rat(n, d int64) *big.Rat { return big.NewRat(n, d) }

func ratAdd(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }

func ratSub(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }

func ratMul(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }

func ratQuo(a, b *big.Rat) *big.Rat { return new(big.Rat).Quo(a, b) }

func ratCopy(a *big.Rat) *big.Rat { return new(big.Rat).Set(a) }

func isZero(a *big.Rat) bool { return a.Sign() == 0 }

func isOne(a *big.Rat) bool { return a.Cmp(ratOne()) == 0 }

// floorDiv returns floor(a / b) for positive b, rounding toward negative
// infinity rather than toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
