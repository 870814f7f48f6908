package rv_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blamedcloud/dndstats/internal/rv"
)

func TestFromMapDropsZeroMass(t *testing.T) {
	m, err := rv.FromMap(map[rv.Int]*big.Rat{
		1: big.NewRat(1, 2),
		2: new(big.Rat),
		3: big.NewRat(1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []rv.Int{1, 3}, m.Keys())
	assert.Zero(t, m.Pdf(2).Sign())
}

func TestFromMapValidation(t *testing.T) {
	_, err := rv.FromMap(map[rv.Int]*big.Rat{1: big.NewRat(1, 2)})
	assert.ErrorIs(t, err, rv.ErrMassNotOne)

	_, err = rv.FromMap(map[rv.Int]*big.Rat{1: big.NewRat(-1, 2), 2: big.NewRat(3, 2)})
	assert.ErrorIs(t, err, rv.ErrNegativeProb)

	_, err = rv.FromMap(map[rv.Int]*big.Rat{})
	assert.ErrorIs(t, err, rv.ErrEmpty)
}

func TestMapKeysFoldsCollisions(t *testing.T) {
	d4, err := rv.D(4)
	require.NoError(t, err)
	m := d4.ToMap()

	// Map everything to its parity.
	folded := m.MapKeys(func(k rv.Int) rv.Int { return k % 2 })
	assert.Equal(t, []rv.Int{0, 1}, folded.Keys())
	assert.Zero(t, folded.Pdf(0).Cmp(big.NewRat(1, 2)))
	assert.Zero(t, folded.Pdf(1).Cmp(big.NewRat(1, 2)))
}

func TestConsolidateMixture(t *testing.T) {
	coin, err := rv.FromMap(map[rv.Int]*big.Rat{
		0: big.NewRat(1, 2),
		1: big.NewRat(1, 2),
	})
	require.NoError(t, err)

	d4, err := rv.D(4)
	require.NoError(t, err)
	d6, err := rv.D(6)
	require.NoError(t, err)
	parts := map[rv.Int]*rv.MapRV[rv.Int]{0: d4.ToMap(), 1: d6.ToMap()}

	mixed := rv.Consolidate(coin, func(k rv.Int) *rv.MapRV[rv.Int] { return parts[k] })

	// Half a d4 plus half a d6: values 1-4 get 1/8 + 1/12, 5-6 get 1/12.
	lowBoth := new(big.Rat).Add(big.NewRat(1, 8), big.NewRat(1, 12))
	for x := rv.Int(1); x <= 4; x++ {
		assert.Zero(t, mixed.Pdf(x).Cmp(lowBoth), "pdf(%d)", x)
	}
	for x := rv.Int(5); x <= 6; x++ {
		assert.Zero(t, mixed.Pdf(x).Cmp(big.NewRat(1, 12)), "pdf(%d)", x)
	}
}

func TestJointIndependentTrials(t *testing.T) {
	d4, err := rv.D(4)
	require.NoError(t, err)
	joint := rv.IndependentTrials(d4.ToMap())

	assert.Equal(t, 16, joint.Len())
	want := big.NewRat(1, 16)
	for _, k := range joint.Keys() {
		assert.Zero(t, joint.Pdf(k).Cmp(want))
	}
}

func TestProjectDependentSecond(t *testing.T) {
	d2, err := rv.FromMap(map[rv.Int]*big.Rat{
		1: big.NewRat(1, 2),
		2: big.NewRat(1, 2),
	})
	require.NoError(t, err)

	// Second component is the first doubled, deterministically.
	joint := rv.Project(d2, func(k rv.Int) *rv.MapRV[rv.Int] {
		return rv.ConstantKey(k * 2)
	})

	assert.Equal(t, 2, joint.Len())
	assert.Zero(t, joint.Pdf(rv.Pair[rv.Int, rv.Int]{First: 1, Second: 2}).Cmp(big.NewRat(1, 2)))
	assert.Zero(t, joint.Pdf(rv.Pair[rv.Int, rv.Int]{First: 2, Second: 4}).Cmp(big.NewRat(1, 2)))
	assert.Zero(t, joint.Pdf(rv.Pair[rv.Int, rv.Int]{First: 1, Second: 4}).Sign())
}

func TestPairOrderingLexicographic(t *testing.T) {
	a := rv.Pair[rv.Int, rv.Int]{First: 1, Second: 9}
	b := rv.Pair[rv.Int, rv.Int]{First: 2, Second: 0}
	assert.Negative(t, a.Cmp(b))
	assert.Positive(t, b.Cmp(a))
	assert.Zero(t, a.Cmp(a))
}

func TestPairEnumerationIsProductOfRanges(t *testing.T) {
	// Pair enumeration visits the product of the component ranges, not
	// the lexicographic interval. Enumerating from (1, 5) to (2, 3) has
	// an empty second range, so nothing is visited, even though (1, 6)
	// sorts between the two endpoints.
	lo := rv.Pair[rv.Int, rv.Int]{First: 1, Second: 5}
	hi := rv.Pair[rv.Int, rv.Int]{First: 2, Second: 3}
	assert.Empty(t, lo.EnumerateTo(hi))
	assert.False(t, lo.AlwaysConvex())

	// With ordered component ranges the full product appears, including
	// pairs outside the lexicographic interval endpoints' columns.
	lo = rv.Pair[rv.Int, rv.Int]{First: 1, Second: 1}
	hi = rv.Pair[rv.Int, rv.Int]{First: 2, Second: 2}
	got := lo.EnumerateTo(hi)
	assert.Len(t, got, 4)
}

func TestConvexBounds(t *testing.T) {
	t.Run("integer bounds are min and max", func(t *testing.T) {
		lo, hi, ok := rv.ConvexBounds([]rv.Int{3, 1, 7})
		require.True(t, ok)
		assert.Equal(t, rv.Int(1), lo)
		assert.Equal(t, rv.Int(7), hi)
	})

	t.Run("empty set has no bounds", func(t *testing.T) {
		_, _, ok := rv.ConvexBounds[rv.Int](nil)
		assert.False(t, ok)
	})

	t.Run("pair bounds are componentwise", func(t *testing.T) {
		// Neither bound is one of the inputs.
		lo, hi, ok := rv.ConvexBounds([]rv.Pair[rv.Int, rv.Int]{
			{First: 1, Second: 9},
			{First: 2, Second: 0},
		})
		require.True(t, ok)
		assert.Equal(t, rv.Pair[rv.Int, rv.Int]{First: 1, Second: 0}, lo)
		assert.Equal(t, rv.Pair[rv.Int, rv.Int]{First: 2, Second: 9}, hi)
	})
}

func TestAddIntKeysMatchesConvolve(t *testing.T) {
	d4, err := rv.D(4)
	require.NoError(t, err)
	d6, err := rv.D(6)
	require.NoError(t, err)

	sum := rv.Add(d4.ToMap(), d6.ToMap())
	want := d4.Convolve(d6).ToMap()
	assert.True(t, sum.Equal(want))
}

func TestAddPairKeys(t *testing.T) {
	coin, err := rv.FromMap(map[rv.Int]*big.Rat{
		1: big.NewRat(1, 2),
		2: big.NewRat(1, 2),
	})
	require.NoError(t, err)

	t.Run("constant shift moves both components", func(t *testing.T) {
		joint := rv.IndependentTrials(coin)
		one := rv.ConstantKey(rv.Pair[rv.Int, rv.Int]{First: 1, Second: 1})
		shifted := rv.Add(joint, one)

		assert.Equal(t, 4, shifted.Len())
		assert.Zero(t, shifted.Pdf(rv.Pair[rv.Int, rv.Int]{First: 2, Second: 3}).Cmp(big.NewRat(1, 4)))
		assert.Zero(t, shifted.Pdf(rv.Pair[rv.Int, rv.Int]{First: 1, Second: 1}).Sign())
	})

	t.Run("sum of independent joints is the joint of the sums", func(t *testing.T) {
		// All four draws are independent, so the componentwise sums are
		// independent of each other as well.
		sum := rv.Add(rv.IndependentTrials(coin), rv.IndependentTrials(coin))
		conv := rv.Add(coin, coin)
		assert.True(t, sum.Equal(rv.Joint(conv, conv)))
	})

	t.Run("sums land outside the lexicographic support hull", func(t *testing.T) {
		// Support {(1, 9), (2, 0)}: the sparse keys alone miss the cross
		// sums, which only the convex superset walk visits.
		skew, err := rv.FromMap(map[rv.Pair[rv.Int, rv.Int]]*big.Rat{
			{First: 1, Second: 9}: big.NewRat(1, 2),
			{First: 2, Second: 0}: big.NewRat(1, 2),
		})
		require.NoError(t, err)

		sum := rv.Add(skew, skew)
		assert.Zero(t, sum.Pdf(rv.Pair[rv.Int, rv.Int]{First: 3, Second: 9}).Cmp(big.NewRat(1, 2)))
		assert.Zero(t, sum.Pdf(rv.Pair[rv.Int, rv.Int]{First: 2, Second: 18}).Cmp(big.NewRat(1, 4)))
		assert.Zero(t, sum.Pdf(rv.Pair[rv.Int, rv.Int]{First: 4, Second: 0}).Cmp(big.NewRat(1, 4)))
	})
}

func TestHalveMapRV(t *testing.T) {
	d4, err := rv.D(4)
	require.NoError(t, err)
	halved, err := rv.Halve(d4.ToMap())
	require.NoError(t, err)

	assert.Zero(t, halved.Pdf(0).Cmp(big.NewRat(1, 4)))
	assert.Zero(t, halved.Pdf(1).Cmp(big.NewRat(1, 2)))
	assert.Zero(t, halved.Pdf(2).Cmp(big.NewRat(1, 4)))
}

func TestToVecRoundTrip(t *testing.T) {
	twoD6, err := rv.NdS(2, 6)
	require.NoError(t, err)
	back := rv.ToVec(twoD6.ToMap())
	assert.True(t, twoD6.Equal(back))
}

func TestPartitionByHealthStyleClassifier(t *testing.T) {
	d6, err := rv.D(6)
	require.NoError(t, err)

	part := rv.PartitionBy(d6, func(x int) string {
		if x >= 4 {
			return "high"
		}
		return "low"
	})

	low, ok := part.Part("low")
	require.True(t, ok)
	assert.Zero(t, low.Prob.Cmp(big.NewRat(1, 2)))
	assert.Zero(t, low.RV.Pdf(1).Cmp(big.NewRat(1, 3)))
	assert.Equal(t, 1, low.RV.LowerBound())
	assert.Equal(t, 3, low.RV.UpperBound())

	high, ok := part.Part("high")
	require.True(t, ok)
	assert.Zero(t, high.Prob.Cmp(big.NewRat(1, 2)))
	assert.Equal(t, 4, high.RV.LowerBound())
}

func TestPartitionAddRenormalizes(t *testing.T) {
	d4, err := rv.D(4)
	require.NoError(t, err)
	d6, err := rv.D(6)
	require.NoError(t, err)

	even := func(x int) bool { return x%2 == 0 }
	a := rv.PartitionBy(d4, even)
	b := rv.PartitionBy(d6, even)

	combined, err := a.Add(b)
	require.NoError(t, err)

	evens, ok := combined.Part(true)
	require.True(t, ok)
	// Both sides put half their mass on evens.
	assert.Zero(t, evens.Prob.Cmp(big.NewRat(1, 1)))
	// Mixture is half of {2,4 uniform} plus half of {2,4,6 uniform}.
	want := new(big.Rat).Add(big.NewRat(1, 4), big.NewRat(1, 6))
	assert.Zero(t, evens.RV.Pdf(2).Cmp(want))
	assert.Zero(t, evens.RV.Pdf(6).Cmp(big.NewRat(1, 6)))
}
