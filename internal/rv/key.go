package rv

// Ordered is implemented by key types with a total order. Cmp returns a
// negative value, zero, or a positive value when the receiver is less
// than, equal to, or greater than other.
type Ordered[K any] interface {
	comparable
	Cmp(other K) int
}

// SeqOrdered keys additionally support enumerating the keys between two
// values. AlwaysConvex reports whether EnumerateTo visits exactly the
// keys k with lo <= k <= hi; key spaces without that guarantee (such as
// pairs) may visit a superset. Meet and Join are the lattice bounds
// used to build convex intervals: for convex key spaces they are the
// smaller and larger key, for pair spaces they are componentwise.
type SeqOrdered[K any] interface {
	Ordered[K]
	EnumerateTo(hi K) []K
	AlwaysConvex() bool
	Meet(other K) K
	Join(other K) K
}

// SeqNumeric keys additionally support addition, giving sparse
// distributions over them a numeric algebra.
type SeqNumeric[K any] interface {
	SeqOrdered[K]
	AddKey(other K) K
}

// ConvexBounds returns the tightest interval [lo, hi] whose EnumerateTo
// range covers every key in set. ok is false when set is empty. For
// convex key spaces lo and hi are simply the minimum and maximum; pair
// spaces take componentwise bounds, which may lie outside set.
func ConvexBounds[K SeqOrdered[K]](set []K) (lo, hi K, ok bool) {
	if len(set) == 0 {
		return lo, hi, false
	}
	lo, hi = set[0], set[0]
	for _, k := range set[1:] {
		lo = lo.Meet(k)
		hi = hi.Join(k)
	}
	return lo, hi, true
}

// Int is an integer key.
type Int int

// Cmp orders integers ascending.
func (i Int) Cmp(other Int) int {
	switch {
	case i < other:
		return -1
	case i > other:
		return 1
	default:
		return 0
	}
}

// EnumerateTo returns the integers from i up to hi inclusive.
func (i Int) EnumerateTo(hi Int) []Int {
	if hi < i {
		return nil
	}
	out := make([]Int, 0, int(hi-i)+1)
	for k := i; k <= hi; k++ {
		out = append(out, k)
	}
	return out
}

// AlwaysConvex reports that integer enumeration is exact.
func (Int) AlwaysConvex() bool { return true }

// Meet returns the smaller integer.
func (i Int) Meet(other Int) Int {
	if other < i {
		return other
	}
	return i
}

// Join returns the larger integer.
func (i Int) Join(other Int) Int {
	if other > i {
		return other
	}
	return i
}

// AddKey returns the sum.
func (i Int) AddKey(other Int) Int { return i + other }

// Halve returns floor(i / 2).
func (i Int) Halve() Int { return Int(floorDiv(int(i), 2)) }

// Pair is a lexicographically ordered pair of numeric keys.
type Pair[A SeqNumeric[A], B SeqNumeric[B]] struct {
	First  A
	Second B
}

// Cmp orders pairs lexicographically, First before Second.
func (p Pair[A, B]) Cmp(other Pair[A, B]) int {
	if c := p.First.Cmp(other.First); c != 0 {
		return c
	}
	return p.Second.Cmp(other.Second)
}

// EnumerateTo returns the product of the component ranges
// [p.First, hi.First] x [p.Second, hi.Second]. This is a superset of the
// lexicographic interval: for example enumerating from (1, 5) to (2, 3)
// yields nothing in the Second dimension even though (1, 6) lies between
// the two pairs. Callers that need exact intervals must not rely on pair
// enumeration.
func (p Pair[A, B]) EnumerateTo(hi Pair[A, B]) []Pair[A, B] {
	firsts := p.First.EnumerateTo(hi.First)
	seconds := p.Second.EnumerateTo(hi.Second)
	out := make([]Pair[A, B], 0, len(firsts)*len(seconds))
	for _, f := range firsts {
		for _, s := range seconds {
			out = append(out, Pair[A, B]{First: f, Second: s})
		}
	}
	return out
}

// AlwaysConvex reports false: pair enumeration visits the product of the
// component ranges, not the lexicographic interval.
func (Pair[A, B]) AlwaysConvex() bool { return false }

// Meet returns the componentwise lower bound, which may be neither
// operand: Meet of (1, 5) and (2, 3) is (1, 3).
func (p Pair[A, B]) Meet(other Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  p.First.Meet(other.First),
		Second: p.Second.Meet(other.Second),
	}
}

// Join returns the componentwise upper bound.
func (p Pair[A, B]) Join(other Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  p.First.Join(other.First),
		Second: p.Second.Join(other.Second),
	}
}

// AddKey returns the componentwise sum.
func (p Pair[A, B]) AddKey(other Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		First:  p.First.AddKey(other.First),
		Second: p.Second.AddKey(other.Second),
	}
}
