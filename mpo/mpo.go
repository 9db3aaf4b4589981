// Package mpo builds lattice Hamiltonians as matrix product operators.
//
// A Block is one automaton layer at one lattice site: a grid indexed by automaton states whose entries are local operators.
// Contracting neighbouring blocks multiplies their grids over the shared automaton index while taking Kronecker products of the physical operators.
// After the whole lattice is contracted, the entry going from the start state to the final state is the sum of all coupling terms.
//
// References:
//   - Matrix product operators, matrix product states, and ab initio density matrix renormalization group algorithms, Garnet Kin-Lic Chan et al.
//   - Finite automata for caching in matrix product algorithms, Gregory M. Crosswhite, Dave Bacon
package mpo

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// Block is a rows by cols grid of phys by phys operators.
// A nil entry is a structural zero.
type Block struct {
	rows int
	cols int
	phys int
	ops  []*mat.COO
}

// NewBlock returns a block whose entries are all structural zeros.
func NewBlock(rows, cols, phys int) *Block {
	return &Block{rows: rows, cols: cols, phys: phys, ops: make([]*mat.COO, rows*cols)}
}

func (b *Block) Rows() int { return b.rows }
func (b *Block) Cols() int { return b.cols }
func (b *Block) Phys() int { return b.phys }

// At returns the operator at automaton row i and column j, or nil for a structural zero.
// It panics if i or j is out of range.
func (b *Block) At(i, j int) *mat.COO {
	if i < 0 || i >= b.rows || j < 0 || j >= b.cols {
		panic(fmt.Sprintf("%d %d %d %d", i, j, b.rows, b.cols))
	}
	return b.ops[i*b.cols+j]
}

// Set places op at automaton row i and column j.
func (b *Block) Set(i, j int, op *mat.COO) error {
	if i < 0 || i >= b.rows || j < 0 || j >= b.cols {
		return errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d %d %d %d", i, j, b.rows, b.cols))
	}
	if op != nil && (op.Rows() != b.phys || op.Cols() != b.phys) {
		return errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%d %d %d", op.Rows(), op.Cols(), b.phys))
	}
	b.ops[i*b.cols+j] = op
	return nil
}

// Equal reports whether a and b have the same shape and their operators are within tol of each other.
func (a *Block) Equal(b *Block, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols || a.phys != b.phys {
		return false
	}
	zero := mat.COOZeros(a.phys, a.phys)
	for i, x := range a.ops {
		y := b.ops[i]
		if x == nil {
			x = zero
		}
		if y == nil {
			y = zero
		}
		if !x.EqualApprox(y, tol) {
			return false
		}
	}
	return true
}

// Bicontract merges two blocks covering neighbouring sites:
//
//	C[row, col] = Σ_k kron(A[row, k], B[k, col])
func Bicontract(a, b *Block) (*Block, error) {
	if a.cols != b.rows {
		return nil, errors.Wrap(ErrDimensionMismatch, fmt.Sprintf("%dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	c := NewBlock(a.rows, b.cols, a.phys*b.phys)
	for row := range a.rows {
		for col := range b.cols {
			var sum *mat.COO
			for k := range a.cols {
				x, y := a.At(row, k), b.At(k, col)
				if x == nil || y == nil {
					continue
				}
				switch {
				case sum == nil:
					sum = mat.Kron(x, y)
				default:
					sum.Add(1, mat.Kron(x, y))
				}
			}
			if sum == nil || len(sum.Data) == 0 {
				continue
			}
			c.ops[row*c.cols+col] = sum
		}
	}
	return c, nil
}

// Contract contracts the blocks repeated power times, in order.
// A single block with power one is returned as is.
func Contract(blocks []*Block, power int) (*Block, error) {
	if len(blocks) == 0 || power < 1 {
		return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d %d", len(blocks), power))
	}

	// Fold from the right, so that the first block is the leading Kronecker factor.
	period := blocks[len(blocks)-1]
	for i := len(blocks) - 2; i >= 0; i-- {
		var err error
		period, err = Bicontract(blocks[i], period)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
	}

	return pow(period, power)
}

// pow computes b^p by repeated squaring.
func pow(b *Block, p int) (*Block, error) {
	if p == 1 {
		return b, nil
	}
	half, err := pow(b, p/2)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	sq, err := Bicontract(half, half)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("%d", p))
	}
	if p%2 == 0 {
		return sq, nil
	}
	res, err := Bicontract(sq, b)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("%d", p))
	}
	return res, nil
}

// Hamiltonian extracts the operator going from the first automaton state to the last, and negates it.
func Hamiltonian(b *Block) (*mat.COO, error) {
	if b.rows == 0 || b.cols == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%d %d", b.rows, b.cols))
	}
	op := b.At(0, b.cols-1)
	if op == nil {
		return mat.COOZeros(b.phys, b.phys), nil
	}
	h := op.Clone()
	h.Scale(-1)
	return h, nil
}

// Cell places an operator kind at an automaton transition.
type Cell struct {
	Row  int
	Col  int
	Kind Kind
}

// Table is the structured description of a block: its automaton dimension and the transitions carrying a non-zero operator.
type Table struct {
	Dim   int
	Cells []Cell
}

// Block materializes the table with the operators of lib.
func (t Table) Block(lib Library) (*Block, error) {
	b := NewBlock(t.Dim, t.Dim, lib.Phys())
	for _, c := range t.Cells {
		if c.Row < 0 || c.Row >= t.Dim || c.Col < 0 || c.Col >= t.Dim {
			return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%#v %d", c, t.Dim))
		}
		if b.At(c.Row, c.Col) != nil {
			return nil, errors.Wrap(ErrInvalidArgument, fmt.Sprintf("duplicate %#v", c))
		}
		if c.Kind == Zero {
			continue
		}
		op, err := lib.Matrix(c.Kind)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%#v", c))
		}
		if err := b.Set(c.Row, c.Col, op); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%#v", c))
		}
	}
	return b, nil
}
