package mpo

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

// Automaton states of the compass model blocks.
const (
	StateStart = iota
	// StateX waits for the horizontal partner on the next site.
	StateX
	// StateY0, StateY1 and StateY2 count the sites passed since a vertical operator was placed, modulo the row length.
	StateY0
	StateY1
	StateY2
	StateDone

	compassDim = 6
)

const (
	// CompassSide is the number of rows and columns of the compass lattice.
	CompassSide = 3
)

// compassCommon are the transitions shared by every column.
// A vertical operator closes after three or six sites, which are the column bonds of a 3x3 lattice with periodic columns.
var compassCommon = []Cell{
	{Row: StateStart, Col: StateStart, Kind: Identity},
	{Row: StateDone, Col: StateDone, Kind: Identity},
	{Row: StateStart, Col: StateY0, Kind: SigmaY},
	{Row: StateY0, Col: StateY1, Kind: Identity},
	{Row: StateY1, Col: StateY2, Kind: Identity},
	{Row: StateY2, Col: StateY0, Kind: Identity},
	{Row: StateY2, Col: StateDone, Kind: SigmaY},
}

// CompassTables are the blocks of the sites in columns 0, 1 and 2 of a row.
// Horizontal bonds open at columns 0 and 1 and close at columns 1 and 2, so rows are open.
var CompassTables = [CompassSide]Table{
	{Dim: compassDim, Cells: append([]Cell{
		{Row: StateStart, Col: StateX, Kind: SigmaX},
	}, compassCommon...)},
	{Dim: compassDim, Cells: append([]Cell{
		{Row: StateStart, Col: StateX, Kind: SigmaX},
		{Row: StateX, Col: StateDone, Kind: SigmaX},
	}, compassCommon...)},
	{Dim: compassDim, Cells: append([]Cell{
		{Row: StateX, Col: StateDone, Kind: SigmaX},
	}, compassCommon...)},
}

// CompassBlocks materializes the blocks of one lattice row.
func CompassBlocks(lib Library) ([]*Block, error) {
	blocks := make([]*Block, 0, len(CompassTables))
	for i, t := range CompassTables {
		b, err := t.Block(lib)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("column %d", i))
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// CompassHamiltonian returns the Hamiltonian
//
//	H = -Σ Jx σx_i σx_j - Σ Jy σy_i σy_j
//
// of the 3x3 compass model, where site 3*row+col is the (3*row+col)-th Kronecker factor.
func CompassHamiltonian(jx, jy float64) (*mat.COO, error) {
	lib, err := NewSpins(jx, jy)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	row, err := CompassBlocks(lib)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	lattice, err := Contract(row, CompassSide)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	h, err := Hamiltonian(lattice)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return h, nil
}
