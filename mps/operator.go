package mps

import (
	"fmt"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mpo"
)

// FromBlocks converts automaton blocks to operator tensors of shape {left, right, up, down}.
// The first site keeps only the start state row, negated so that the chain sums to the Hamiltonian,
// and the last site keeps only the final state column.
func FromBlocks(blocks []*mpo.Block) ([]*tensor.Dense, error) {
	if len(blocks) < 2 {
		return nil, errors.Wrap(mpo.ErrInvalidArgument, fmt.Sprintf("%d", len(blocks)))
	}

	ws := make([]*tensor.Dense, 0, len(blocks))
	for i, b := range blocks {
		rows, cols := [2]int{0, b.Rows()}, [2]int{0, b.Cols()}
		var scale complex64 = 1
		switch i {
		case 0:
			rows = [2]int{0, 1}
			scale = -1
		case len(blocks) - 1:
			cols = [2]int{b.Cols() - 1, b.Cols()}
		}
		if i > 0 && blocks[i-1].Cols() != b.Rows() {
			return nil, errors.Wrap(mpo.ErrDimensionMismatch, fmt.Sprintf("%d %d %d", i, blocks[i-1].Cols(), b.Rows()))
		}

		w := tensor.Zeros(rows[1]-rows[0], cols[1]-cols[0], b.Phys(), b.Phys())
		for r := rows[0]; r < rows[1]; r++ {
			for c := cols[0]; c < cols[1]; c++ {
				op := b.At(r, c)
				if op == nil {
					continue
				}
				for _, v := range op.Data {
					w.SetAt([]int{r - rows[0], c - cols[0], v.Row, v.Col}, scale*complex64(v.V))
				}
			}
		}
		ws = append(ws, w)
	}
	return ws, nil
}

// Compass returns the operator tensors of the 3x3 compass model.
func Compass(jx, jy float64) ([]*tensor.Dense, error) {
	lib, err := mpo.NewSpins(jx, jy)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	row, err := mpo.CompassBlocks(lib)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	blocks := make([]*mpo.Block, 0, mpo.CompassSide*len(row))
	for range mpo.CompassSide {
		blocks = append(blocks, row...)
	}
	ws, err := FromBlocks(blocks)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return ws, nil
}
