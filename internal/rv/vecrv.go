package rv

import (
	"fmt"
	"math/big"
	"strings"
)

// VecRV is a dense distribution over the integers in [lb, ub]. The mass
// slice holds one rational per value, index 0 corresponding to lb.
// A VecRV is immutable after construction; operations return new values.
type VecRV struct {
	lb   int
	ub   int
	mass []*big.Rat
}

// NewVec builds a distribution over [lb, lb+len(mass)-1].
//
// Precondition: mass must be non-empty, each entry non-negative, and the
// entries must sum to exactly one.
func NewVec(lb int, mass []*big.Rat) (*VecRV, error) {
	if len(mass) == 0 {
		return nil, ErrEmpty
	}
	total := ratZero()
	copied := make([]*big.Rat, len(mass))
	for i, m := range mass {
		if m == nil {
			m = ratZero()
		}
		if m.Sign() < 0 {
			return nil, fmt.Errorf("value %d: %w", lb+i, ErrNegativeProb)
		}
		copied[i] = ratCopy(m)
		total.Add(total, m)
	}
	if !isOne(total) {
		return nil, fmt.Errorf("total mass %s: %w", total.RatString(), ErrMassNotOne)
	}
	return &VecRV{lb: lb, ub: lb + len(mass) - 1, mass: copied}, nil
}

// Constant is the distribution with all mass at v.
func Constant(v int) *VecRV {
	return &VecRV{lb: v, ub: v, mass: []*big.Rat{ratOne()}}
}

// Uniform is the uniform distribution over [lb, ub].
func Uniform(lb, ub int) (*VecRV, error) {
	if lb > ub {
		return nil, fmt.Errorf("bounds [%d, %d]: %w", lb, ub, ErrInvalidBounds)
	}
	n := ub - lb + 1
	mass := make([]*big.Rat, n)
	for i := range mass {
		mass[i] = big.NewRat(1, int64(n))
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}, nil
}

// LowerBound returns the smallest value carrying representation.
func (v *VecRV) LowerBound() int { return v.lb }

// UpperBound returns the largest value carrying representation.
func (v *VecRV) UpperBound() int { return v.ub }

// Pdf returns P(X = x). Values outside the bounds have zero mass.
func (v *VecRV) Pdf(x int) *big.Rat {
	if x < v.lb || x > v.ub {
		return ratZero()
	}
	return ratCopy(v.mass[x-v.lb])
}

// Cdf returns P(X <= x).
func (v *VecRV) Cdf(x int) *big.Rat {
	if x < v.lb {
		return ratZero()
	}
	if x >= v.ub {
		return ratOne()
	}
	total := ratZero()
	for i := 0; i <= x-v.lb; i++ {
		total.Add(total, v.mass[i])
	}
	return total
}

// CdfExclusive returns P(X < x).
func (v *VecRV) CdfExclusive(x int) *big.Rat {
	return v.Cdf(x - 1)
}

// Ev returns the exact expected value.
func (v *VecRV) Ev() *big.Rat {
	total := ratZero()
	for i, m := range v.mass {
		total.Add(total, ratMul(big.NewRat(int64(v.lb+i), 1), m))
	}
	return total
}

// Variance returns the exact variance E[(X - E[X])^2].
func (v *VecRV) Variance() *big.Rat {
	ev := v.Ev()
	total := ratZero()
	for i, m := range v.mass {
		d := ratSub(big.NewRat(int64(v.lb+i), 1), ev)
		total.Add(total, ratMul(ratMul(d, d), m))
	}
	return total
}

// Shift returns the distribution of X + c.
func (v *VecRV) Shift(c int) *VecRV {
	mass := make([]*big.Rat, len(v.mass))
	for i, m := range v.mass {
		mass[i] = ratCopy(m)
	}
	return &VecRV{lb: v.lb + c, ub: v.ub + c, mass: mass}
}

// Neg returns the distribution of -X.
func (v *VecRV) Neg() *VecRV {
	n := len(v.mass)
	mass := make([]*big.Rat, n)
	for i, m := range v.mass {
		mass[n-1-i] = ratCopy(m)
	}
	return &VecRV{lb: -v.ub, ub: -v.lb, mass: mass}
}

// Convolve returns the distribution of X + Y for independent X and Y.
func (v *VecRV) Convolve(other *VecRV) *VecRV {
	lb := v.lb + other.lb
	ub := v.ub + other.ub
	mass := make([]*big.Rat, ub-lb+1)
	for i := range mass {
		mass[i] = ratZero()
	}
	for i, a := range v.mass {
		if isZero(a) {
			continue
		}
		for j, b := range other.mass {
			if isZero(b) {
				continue
			}
			idx := (v.lb + i) + (other.lb + j) - lb
			mass[idx].Add(mass[idx], ratMul(a, b))
		}
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}
}

// NConvolve returns the n-fold sum of independent copies of X. Zero
// copies sum to the constant zero; a negative n sums |n| copies of -X.
func (v *VecRV) NConvolve(n int) *VecRV {
	if n == 0 {
		return Constant(0)
	}
	if n < 0 {
		return v.Neg().NConvolve(-n)
	}
	out := v
	for i := 1; i < n; i++ {
		out = out.Convolve(v)
	}
	return out
}

// MaxTwo returns the distribution of max(X1, X2) for two independent
// copies of X: pdf(x) = 2 * pdf(x) * P(X < x) + pdf(x)^2.
func (v *VecRV) MaxTwo() *VecRV {
	two := big.NewRat(2, 1)
	mass := make([]*big.Rat, len(v.mass))
	below := ratZero()
	for i, p := range v.mass {
		m := ratMul(ratMul(two, p), below)
		m.Add(m, ratMul(p, p))
		mass[i] = m
		below = ratAdd(below, p)
	}
	return &VecRV{lb: v.lb, ub: v.ub, mass: mass}
}

// MinTwo returns the distribution of min(X1, X2) for two independent
// copies of X: pdf(x) = 2 * pdf(x) - maxTwo.pdf(x).
func (v *VecRV) MinTwo() *VecRV {
	maxTwo := v.MaxTwo()
	two := big.NewRat(2, 1)
	mass := make([]*big.Rat, len(v.mass))
	for i, p := range v.mass {
		mass[i] = ratSub(ratMul(two, p), maxTwo.mass[i])
	}
	return &VecRV{lb: v.lb, ub: v.ub, mass: mass}
}

// MaxThree returns the distribution of max(X1, X2, X3) for three
// independent copies of X:
// pdf(x) = 3*p*F^2 + 3*p^2*F + p^3 where F = P(X < x).
func (v *VecRV) MaxThree() *VecRV {
	three := big.NewRat(3, 1)
	mass := make([]*big.Rat, len(v.mass))
	below := ratZero()
	for i, p := range v.mass {
		pSq := ratMul(p, p)
		m := ratMul(ratMul(three, p), ratMul(below, below))
		m.Add(m, ratMul(ratMul(three, pSq), below))
		m.Add(m, ratMul(pSq, p))
		mass[i] = m
		below = ratAdd(below, p)
	}
	return &VecRV{lb: v.lb, ub: v.ub, mass: mass}
}

// Half returns the distribution of floor(X / 2). Values that collide
// after halving have their masses folded together.
func (v *VecRV) Half() *VecRV {
	lb := floorDiv(v.lb, 2)
	ub := floorDiv(v.ub, 2)
	mass := make([]*big.Rat, ub-lb+1)
	for i := range mass {
		mass[i] = ratZero()
	}
	for i, m := range v.mass {
		idx := floorDiv(v.lb+i, 2) - lb
		mass[idx].Add(mass[idx], m)
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}
}

// CapLB returns the distribution of max(X, lb): the mass below lb folds
// into lb. If lb is at or below the lower bound the result is unchanged.
func (v *VecRV) CapLB(lb int) *VecRV {
	if lb <= v.lb {
		return v
	}
	if lb >= v.ub {
		return Constant(lb)
	}
	mass := make([]*big.Rat, v.ub-lb+1)
	mass[0] = v.Cdf(lb)
	for x := lb + 1; x <= v.ub; x++ {
		mass[x-lb] = ratCopy(v.mass[x-v.lb])
	}
	return &VecRV{lb: lb, ub: v.ub, mass: mass}
}

// CapUB returns the distribution of min(X, ub): the mass above ub folds
// into ub. If ub is at or above the upper bound the result is unchanged.
func (v *VecRV) CapUB(ub int) *VecRV {
	if ub >= v.ub {
		return v
	}
	if ub <= v.lb {
		return Constant(ub)
	}
	mass := make([]*big.Rat, ub-v.lb+1)
	for x := v.lb; x < ub; x++ {
		mass[x-v.lb] = ratCopy(v.mass[x-v.lb])
	}
	mass[ub-v.lb] = ratSub(ratOne(), v.Cdf(ub-1))
	return &VecRV{lb: v.lb, ub: ub, mass: mass}
}

// ProbGT returns P(X > Y) for independent X and Y.
func (v *VecRV) ProbGT(other *VecRV) *big.Rat {
	diff := v.Convolve(other.Neg())
	return ratSub(ratOne(), diff.Cdf(0))
}

// ProbGE returns P(X >= Y) for independent X and Y.
func (v *VecRV) ProbGE(other *VecRV) *big.Rat {
	diff := v.Convolve(other.Neg())
	return ratSub(ratOne(), diff.Cdf(-1))
}

// ProbLT returns P(X < Y) for independent X and Y.
func (v *VecRV) ProbLT(other *VecRV) *big.Rat {
	diff := v.Convolve(other.Neg())
	return diff.Cdf(-1)
}

// ProbLE returns P(X <= Y) for independent X and Y.
func (v *VecRV) ProbLE(other *VecRV) *big.Rat {
	diff := v.Convolve(other.Neg())
	return diff.Cdf(0)
}

// ProbEQ returns P(X = Y) for independent X and Y.
func (v *VecRV) ProbEQ(other *VecRV) *big.Rat {
	diff := v.Convolve(other.Neg())
	return diff.Pdf(0)
}

// Equal reports whether both distributions have identical bounds and
// masses.
func (v *VecRV) Equal(other *VecRV) bool {
	if v.lb != other.lb || v.ub != other.ub {
		return false
	}
	for i := range v.mass {
		if v.mass[i].Cmp(other.mass[i]) != 0 {
			return false
		}
	}
	return true
}

// ToMap converts to the sparse integer-keyed form, dropping zero masses.
func (v *VecRV) ToMap() *MapRV[Int] {
	m := make(map[Int]*big.Rat, len(v.mass))
	for i, p := range v.mass {
		if !isZero(p) {
			m[Int(v.lb+i)] = ratCopy(p)
		}
	}
	out, _ := FromMap(m)
	return out
}

// Mix returns the mixture distribution sum_i weights[i] * parts[i].
//
// Precondition: weights must be non-negative and sum to one, with one
// weight per part and at least one part.
func Mix(weights []*big.Rat, parts []*VecRV) (*VecRV, error) {
	if len(parts) == 0 {
		return nil, ErrEmpty
	}
	if len(weights) != len(parts) {
		return nil, fmt.Errorf("%d weights for %d parts: %w", len(weights), len(parts), ErrInvalidCount)
	}
	lb, ub := parts[0].lb, parts[0].ub
	total := ratZero()
	for i, w := range weights {
		if w.Sign() < 0 {
			return nil, fmt.Errorf("weight %d: %w", i, ErrNegativeProb)
		}
		total.Add(total, w)
		if parts[i].lb < lb {
			lb = parts[i].lb
		}
		if parts[i].ub > ub {
			ub = parts[i].ub
		}
	}
	if !isOne(total) {
		return nil, fmt.Errorf("total weight %s: %w", total.RatString(), ErrMassNotOne)
	}
	mass := make([]*big.Rat, ub-lb+1)
	for i := range mass {
		mass[i] = ratZero()
	}
	for i, part := range parts {
		if isZero(weights[i]) {
			continue
		}
		for j, p := range part.mass {
			idx := part.lb + j - lb
			mass[idx].Add(mass[idx], ratMul(weights[i], p))
		}
	}
	return &VecRV{lb: lb, ub: ub, mass: mass}, nil
}

// String renders the support and masses, mostly for test failures.
func (v *VecRV) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, m := range v.mass {
		if isZero(m) {
			continue
		}
		if b.Len() > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: %s", v.lb+i, m.RatString())
	}
	b.WriteString("}")
	return b.String()
}
