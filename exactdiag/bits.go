// Package exactdiag assembles lattice Hamiltonians directly in the occupation number basis.
//
// A basis state is an unsigned integer whose bit n is the occupation of site n.
package exactdiag

import (
	"math/bits"
)

// FlipBit returns b with bit n flipped.
func FlipBit(b uint, n int) uint {
	return b ^ 1<<n
}

// Bit returns bit n of b.
func Bit(b uint, n int) uint {
	return b >> n & 1
}

// ParityBetween returns the parity of the number of set bits of b strictly between positions i and j.
// It is the Jordan-Wigner sign exponent of moving a fermion from i to j.
func ParityBetween(b uint, i, j int) int {
	lo, hi := min(i, j), max(i, j)
	if hi-lo < 2 {
		return 0
	}
	mask := (uint(1)<<hi - 1) &^ (uint(1)<<(lo+1) - 1)
	return bits.OnesCount(b&mask) % 2
}

// ReverseBits reverses the lowest n bits of b.
func ReverseBits(b uint, n int) uint {
	if n == 0 {
		return 0
	}
	return bits.Reverse(b) >> (bits.UintSize - n)
}

// States iterates over all 2^n basis states in increasing order.
func States(n int) func(yield func(uint) bool) {
	return func(yield func(uint) bool) {
		numStates := uint(1) << n
		for b := range numStates {
			if !yield(b) {
				return
			}
		}
	}
}
