package mat

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/pkg/errors"
	gonum "gonum.org/v1/gonum/mat"
)

const (
	// HermitianTol is the tolerance below which an entry and its mirrored conjugate are considered equal.
	HermitianTol = 1e-12
)

// Eigenvalues returns the eigenvalues of the Hermitian matrix m in ascending order.
//
// Real symmetric matrices are diagonalized directly.
// A complex Hermitian matrix A+iB is diagonalized through its real symmetric embedding
//
//	[A -B]
//	[B  A]
//
// whose spectrum is that of A+iB with every eigenvalue repeated twice.
func Eigenvalues(m *COO) ([]float64, error) {
	if m.rows != m.cols {
		return nil, errors.Wrap(ErrShape, fmt.Sprintf("%d %d", m.rows, m.cols))
	}
	if !m.IsHermitian(HermitianTol) {
		return nil, errors.Wrap(ErrNotHermitian, fmt.Sprintf("%d", m.rows))
	}
	if m.rows == 0 {
		return []float64{}, nil
	}

	n := m.rows
	if m.IsReal(HermitianTol) {
		sym := gonum.NewSymDense(n, nil)
		for _, v := range m.Data {
			if v.Row > v.Col {
				continue
			}
			sym.SetSym(v.Row, v.Col, real(v.V))
		}
		return eigenSym(sym)
	}

	sym := gonum.NewSymDense(2*n, nil)
	for _, v := range m.Data {
		if v.Row > v.Col {
			continue
		}
		re, im := real(v.V), imag(v.V)
		sym.SetSym(v.Row, v.Col, re)
		sym.SetSym(n+v.Row, n+v.Col, re)
		sym.SetSym(v.Row, n+v.Col, -im)
		// Entries below the diagonal of m are skipped, so set their mirror in the upper right block here.
		if v.Row != v.Col {
			sym.SetSym(v.Col, n+v.Row, im)
		}
	}
	doubled, err := eigenSym(sym)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	vals := make([]float64, 0, n)
	for i := 0; i < len(doubled); i += 2 {
		vals = append(vals, doubled[i])
	}
	return vals, nil
}

func eigenSym(sym *gonum.SymDense) ([]float64, error) {
	var eig gonum.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return nil, errors.Errorf("eig.Factorize failed %d", sym.SymmetricDim())
	}
	vals := eig.Values(nil)
	slices.Sort(vals)
	return vals, nil
}

// Gerschgorin returns a lower bound of the eigenvalues of the Hermitian matrix m.
// Theorem A3, Bounds for the eigenvalues of a matrix, Kenneth R. Garren.
func Gerschgorin(m *COO) float64 {
	centers := make([]float64, m.rows)
	radii := make([]float64, m.rows)
	for _, v := range m.Data {
		if v.Row == v.Col {
			centers[v.Row] = real(v.V)
		} else {
			radii[v.Row] += cmplx.Abs(v.V)
		}
	}

	bound := math.Inf(1)
	for i, c := range centers {
		bound = min(bound, c-radii[i])
	}
	return bound
}
