package qlattice

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fumin/qlattice/exactdiag"
	"github.com/fumin/qlattice/mat"
)

var (
	identity = mat.COOIdentity(2)
)

// SpinKron assembles the spin Hamiltonian of terms on n sites into hamiltonian, one Kronecker product per term.
// Site 0 is the leading Kronecker factor.
// buf is a scratch matrix of the same backend as hamiltonian.
func SpinKron(hamiltonian, buf mat.Matrix, n int, terms []exactdiag.Term) error {
	hamiltonian.Zeros(1<<n, 1<<n)
	for _, term := range terms {
		var pauli *mat.COO
		switch term.Kind {
		case exactdiag.Horizontal:
			pauli = mat.M(mat.PauliX)
		case exactdiag.Vertical:
			pauli = mat.M(mat.PauliY)
		default:
			return errors.Wrap(exactdiag.ErrInvalidArgument, fmt.Sprintf("%#v", term))
		}
		if term.I < 0 || term.I >= n || term.J < 0 || term.J >= n || term.I == term.J {
			return errors.Wrap(exactdiag.ErrOutOfRange, fmt.Sprintf("%#v %d", term, n))
		}

		coupling(hamiltonian, n, term, pauli, buf)
	}
	return nil
}

func coupling(hamiltonian mat.Matrix, n int, term exactdiag.Term, pauli *mat.COO, system mat.Matrix) {
	system.Scalar(1)
	for i := range n {
		switch i {
		case term.I, term.J:
			system.Kron(pauli)
		default:
			system.Kron(identity)
		}
	}

	hamiltonian.Add(complex(-term.Strength, 0), system)
}
