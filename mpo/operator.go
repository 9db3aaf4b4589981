package mpo

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/mat"
)

// Kind tags the physical meaning of a local operator.
type Kind int

const (
	Zero Kind = iota
	Identity
	// SigmaX is the Pauli-X matrix scaled by sqrt(Jx).
	SigmaX
	// SigmaY is the Pauli-Y matrix scaled by sqrt(Jy).
	SigmaY

	// Fermionic operators on a site holding an up and a down orbital.
	// The local basis is |n_up n_down> with index 2*n_up + n_down.
	AnnihilateUp
	CreateUp
	AnnihilateDown
	CreateDown
	// ParityUp is (-1)^n_up, the Jordan-Wigner string of the up species.
	ParityUp
	ParityDown
	// Occupation is n_up + n_down.
	Occupation
	// DoubleOccupancy is n_up * n_down.
	DoubleOccupancy
)

func (k Kind) String() string {
	switch k {
	case Zero:
		return "O"
	case Identity:
		return "I"
	case SigmaX:
		return "Sx"
	case SigmaY:
		return "Sy"
	case AnnihilateUp:
		return "c_up"
	case CreateUp:
		return "c+_up"
	case AnnihilateDown:
		return "c_down"
	case CreateDown:
		return "c+_down"
	case ParityUp:
		return "F_up"
	case ParityDown:
		return "F_down"
	case Occupation:
		return "n"
	case DoubleOccupancy:
		return "n_up n_down"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Library supplies the local operator matrices of a given kind.
type Library interface {
	// Phys is the dimension of the local physical space.
	Phys() int
	Matrix(Kind) (*mat.COO, error)
}

var (
	lowering = [][]complex128{
		{0, 1},
		{0, 0},
	}
	number = [][]complex128{
		{0, 0},
		{0, 1},
	}
)

// Spins holds the local operators of the compass model.
type Spins struct {
	Jx float64
	Jy float64
}

// NewSpins returns the spin operator library for the coupling constants jx and jy.
func NewSpins(jx, jy float64) (Spins, error) {
	s := Spins{Jx: jx, Jy: jy}
	if err := s.check(); err != nil {
		return Spins{}, errors.Wrap(err, "")
	}
	return s, nil
}

// check rejects couplings whose square roots are not real and positive.
func (s Spins) check() error {
	if !(s.Jx > 0 && s.Jy > 0) {
		return errors.Wrap(ErrInvalidArgument, fmt.Sprintf("%f %f", s.Jx, s.Jy))
	}
	return nil
}

func (s Spins) Phys() int { return 2 }

func (s Spins) Matrix(k Kind) (*mat.COO, error) {
	if err := s.check(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	switch k {
	case Zero:
		return mat.COOZeros(2, 2), nil
	case Identity:
		return mat.COOIdentity(2), nil
	case SigmaX:
		m := mat.M(mat.PauliX)
		m.Scale(complex(math.Sqrt(s.Jx), 0))
		return m, nil
	case SigmaY:
		m := mat.M(mat.PauliY)
		m.Scale(complex(math.Sqrt(s.Jy), 0))
		return m, nil
	default:
		return nil, errors.Wrap(ErrInvalidArgument, k.String())
	}
}

// Fermions holds the local operators of spinful fermions, with the up orbital as the leading tensor factor.
type Fermions struct{}

func (Fermions) Phys() int { return 4 }

func (Fermions) Matrix(k Kind) (*mat.COO, error) {
	id := mat.COOIdentity(2)
	switch k {
	case Zero:
		return mat.COOZeros(4, 4), nil
	case Identity:
		return mat.COOIdentity(4), nil
	case AnnihilateUp:
		return mat.Kron(mat.M(lowering), id), nil
	case CreateUp:
		return mat.Kron(mat.M(lowering).H(), id), nil
	case AnnihilateDown:
		return mat.Kron(id, mat.M(lowering)), nil
	case CreateDown:
		return mat.Kron(id, mat.M(lowering).H()), nil
	case ParityUp:
		return mat.Kron(mat.M(mat.PauliZ), id), nil
	case ParityDown:
		return mat.Kron(id, mat.M(mat.PauliZ)), nil
	case Occupation:
		n := mat.Kron(mat.M(number), id)
		n.Add(1, mat.Kron(id, mat.M(number)))
		return n, nil
	case DoubleOccupancy:
		return mat.Kron(mat.M(number), mat.M(number)), nil
	default:
		return nil, errors.Wrap(ErrInvalidArgument, k.String())
	}
}
