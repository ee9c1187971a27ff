package libhkb

import (
	"sync"

	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Fractions is the process-wide expansion table used by FractionBranch.
var Fractions = NewFractionTable(nil)

// FractionBranch returns the color of link `order` of the Hackenbush string for num/den.
//
// Panics if den is zero, negative, or a power of two (see ValidateFraction and DyadicBranch).
func FractionBranch(order, num, den int64) gohkb.BranchType {
	return Fractions.Branch(order, num, den)
}

// ValidateFraction returns an error if num/den cannot be encoded as a repeating chain.
func ValidateFraction(num, den int64) error {
	if den <= 0 {
		return errors.Wrapf(gohkb.ErrBadFraction, "%d/%d: denominator must be positive", num, den)
	}
	if isPowerOfTwo(den) {
		return errors.Wrapf(gohkb.ErrBadFraction, "%d/%d: expansion terminates", num, den)
	}
	return nil
}

func isPowerOfTwo(x int64) bool {
	return x > 0 && x&(x-1) == 0
}

// branchPair returns the types selected by a 1 and a 0 bit; a negative fraction swaps them.
func branchPair(num int64) (one, zero gohkb.BranchType) {
	if num < 0 {
		return gohkb.Blue, gohkb.Red
	}
	return gohkb.Red, gohkb.Blue
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

type fractionKey struct {
	rem, den int64
}

// FractionTable memoizes binary expansions keyed by (numerator mod denominator, denominator).
//
// Entries are only ever added.  An optional store persists entries across runs.
type FractionTable struct {
	mu    sync.RWMutex
	memo  map[fractionKey]*gohkb.Expansion
	store gohkb.ExpansionStore
}

func NewFractionTable(store gohkb.ExpansionStore) *FractionTable {
	return &FractionTable{
		memo:  make(map[fractionKey]*gohkb.Expansion),
		store: store,
	}
}

// SetStore attaches a persistent store consulted on memo misses.
func (table *FractionTable) SetStore(store gohkb.ExpansionStore) {
	table.mu.Lock()
	table.store = store
	table.mu.Unlock()
}

// Len returns the number of memoized expansions.
func (table *FractionTable) Len() int {
	table.mu.RLock()
	defer table.mu.RUnlock()
	return len(table.memo)
}

func (table *FractionTable) Branch(order, num, den int64) gohkb.BranchType {
	if err := ValidateFraction(num, den); err != nil {
		panic(err)
	}

	one, zero := branchPair(num)
	num = abs64(num)
	whole := num / den
	if order < whole {
		return one
	}

	exp := table.Expansion(num%den, den)
	if exp.Bit(order - whole) {
		return one
	}
	return zero
}

// Expansion returns the memoized expansion of rem/den, computing it on first use.
func (table *FractionTable) Expansion(rem, den int64) *gohkb.Expansion {
	key := fractionKey{rem, den}

	table.mu.RLock()
	exp := table.memo[key]
	store := table.store
	table.mu.RUnlock()

	if exp != nil {
		metricFractionHits.Inc()
		return exp
	}
	metricFractionMisses.Inc()

	loaded := false
	if store != nil {
		if stored, ok := store.LoadExpansion(rem, den); ok && len(stored.Period) > 0 {
			exp = &stored
			loaded = true
		}
	}
	if exp == nil {
		computed := ExpandFraction(rem, den)
		exp = &computed
	}

	table.mu.Lock()
	if existing := table.memo[key]; existing != nil {
		exp = existing
		loaded = true
	} else {
		table.memo[key] = exp
	}
	table.mu.Unlock()

	if store != nil && !loaded {
		if err := store.SaveExpansion(rem, den, *exp); err != nil {
			klog.Warningf("fraction: failed to persist %d/%d: %v", rem, den, err)
		}
	}
	return exp
}

// ExpandFraction computes the binary expansion of rem/den (0 <= rem < den) by doubling modulo den
// until a remainder repeats.  The result's period is minimal.
func ExpandFraction(rem, den int64) gohkb.Expansion {
	seen := make(map[int64]int)
	var bits []bool

	for {
		if at, repeats := seen[rem]; repeats {
			return gohkb.Expansion{
				Prefix: bits[:at:at],
				Period: bits[at:],
			}
		}
		seen[rem] = len(bits)

		rem *= 2
		bit := rem >= den
		if bit {
			rem -= den
		}
		bits = append(bits, bit)
	}
}

// DyadicLinks returns the number of links in the terminating chain for num/den, where den is a power of two.
func DyadicLinks(num, den int64) int64 {
	num = abs64(num)
	return num/den + int64(len(dyadicBits(num%den, den)))
}

// DyadicBranch returns the color of link `order` of the finite Hackenbush string for num/den, where den is a
// power of two.  Orders past the end of the string are Invalid.
func DyadicBranch(order, num, den int64) gohkb.BranchType {
	if !isPowerOfTwo(den) {
		panic(errors.Wrapf(gohkb.ErrBadFraction, "%d/%d: denominator is not a power of two", num, den))
	}

	one, zero := branchPair(num)
	num = abs64(num)
	whole := num / den
	if order < whole {
		return one
	}

	bits := dyadicBits(num%den, den)
	i := order - whole
	if i >= int64(len(bits)) {
		return gohkb.Invalid
	}
	if bits[i] {
		return one
	}
	return zero
}

func dyadicBits(rem, den int64) []bool {
	var bits []bool
	for rem != 0 {
		rem *= 2
		bit := rem >= den
		if bit {
			rem -= den
		}
		bits = append(bits, bit)
	}
	return bits
}
