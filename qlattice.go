// Package qlattice compares two independent constructions of small lattice Hamiltonians.
//
// The compass model on a 3x3 lattice and the extended Hubbard model on a 6-site ladder are each built
// once from a matrix product operator automaton, and once directly in the occupation number basis.
// The two Hamiltonians must agree element by element, and so must their spectra.
package qlattice

import (
	"github.com/fumin/qlattice/exactdiag"
	"github.com/fumin/qlattice/mpo"
)

const (
	// CompassSites is the number of spins of the 3x3 compass lattice.
	CompassSites = mpo.CompassSide * mpo.CompassSide
	// LadderSites is the number of sites of the ladder, with sites 0, 1, 2 on one leg and 3, 4, 5 on the other.
	LadderSites = 6
)

var (
	// LadderHops are the nearest neighbour bonds of the ladder, along the legs and the rungs.
	LadderHops = [][2]int{{0, 1}, {1, 2}, {3, 4}, {4, 5}, {0, 3}, {1, 4}, {2, 5}}
	// LadderDensities are the diagonal bonds of the ladder.
	LadderDensities = [][2]int{{0, 4}, {1, 3}, {1, 5}, {2, 4}}
)

// CompassTerms returns the bonds of the 3x3 compass model, where site 3*row+col is at row and col.
// Rows are open, and columns are periodic.
func CompassTerms(jx, jy float64) []exactdiag.Term {
	side := mpo.CompassSide
	terms := make([]exactdiag.Term, 0)
	for r := range side {
		for c := range side - 1 {
			i := r*side + c
			terms = append(terms, exactdiag.Term{I: i, J: i + 1, Strength: jx, Kind: exactdiag.Horizontal})
		}
	}
	for c := range side {
		for r := range side {
			i, j := r*side+c, ((r+1)%side)*side+c
			terms = append(terms, exactdiag.Term{I: min(i, j), J: max(i, j), Strength: jy, Kind: exactdiag.Vertical})
		}
	}
	return terms
}

// LadderTerms returns the hopping and density terms of the ladder.
func LadderTerms(t, v float64) []exactdiag.Term {
	terms := make([]exactdiag.Term, 0, len(LadderHops)+len(LadderDensities))
	for _, b := range LadderHops {
		terms = append(terms, exactdiag.Term{I: b[0], J: b[1], Strength: t, Kind: exactdiag.Hopping})
	}
	for _, b := range LadderDensities {
		terms = append(terms, exactdiag.Term{I: b[0], J: b[1], Strength: v, Kind: exactdiag.Density})
	}
	return terms
}
