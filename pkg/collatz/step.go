package collatz

import (
	"fmt"
	"math"
	"math/bits"
)

// maxTripleOperand is the largest value whose 3v+1 successor fits in int64.
const maxTripleOperand = (math.MaxInt64 - 1) / 3

// Step returns the next Collatz value: v/2 when v is even, 3v+1 otherwise.
func Step(v int64) int64 {
	if v%2 == 0 {
		return v / 2
	}
	return 3*v + 1
}

// next is Step with an overflow check on the 3v+1 branch.
func next(v int64) (int64, bool) {
	if v%2 != 0 && v > maxTripleOperand {
		return 0, false
	}
	return Step(v), true
}

// IsBackbone reports whether v is an exact power of two. 1 counts as 2^0.
func IsBackbone(v int64) bool {
	return v > 0 && v&(v-1) == 0
}

// Exponent returns log2(v) for a backbone value and ErrInvariantViolation
// for anything else.
func Exponent(v int64) (int, error) {
	if !IsBackbone(v) {
		return 0, fmt.Errorf("%w: %d is not a power of two", ErrInvariantViolation, v)
	}
	return bits.TrailingZeros64(uint64(v)), nil
}

// OddParent reports whether v = 3n+1 for some odd n.
func OddParent(v int64) bool {
	p := v - 1
	if p < 0 || p%3 != 0 {
		return false
	}
	return (p/3)%2 == 1
}
