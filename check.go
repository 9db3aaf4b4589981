package qlattice

import (
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/fumin/qlattice/exactdiag"
	"github.com/fumin/qlattice/mat"
	"github.com/fumin/qlattice/mpo"
)

const (
	// SpectrumTol is the absolute tolerance between eigenvalues of the two constructions.
	SpectrumTol = 1e-10
	// MatrixTol is the absolute tolerance between matrix elements of the two constructions.
	MatrixTol = 1e-12
)

var (
	ErrMismatch = errors.New("mismatch")
)

// Compare returns ErrMismatch unless a and b have the same length and are element-wise within tol.
func Compare(a, b []float64, tol float64) error {
	if len(a) != len(b) {
		return errors.Wrap(ErrMismatch, fmt.Sprintf("length %d %d", len(a), len(b)))
	}
	within := func(x, y float64) bool { return scalar.EqualWithinAbs(x, y, tol) }
	if !floats.EqualFunc(a, b, within) {
		return errors.Wrap(ErrMismatch, fmt.Sprintf("max deviation %g tol %g", floats.Distance(a, b, math.Inf(1)), tol))
	}
	return nil
}

// Result holds the two Hamiltonians of a cross check and their spectra in ascending order.
type Result struct {
	MPO         *mat.COO
	ED          *mat.COO
	MPOSpectrum []float64
	EDSpectrum  []float64
}

// CrossCheckCompass builds the compass Hamiltonian both from its automaton and from its bonds, and checks that they agree.
func CrossCheckCompass(jx, jy float64) (Result, error) {
	var res Result
	var err error
	res.MPO, err = mpo.CompassHamiltonian(jx, jy)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	if !res.MPO.IsHermitian(mat.HermitianTol) {
		return Result{}, errors.Wrap(mat.ErrNotHermitian, "mpo")
	}
	res.ED, err = exactdiag.SpinHamiltonian(CompassSites, CompassTerms(jx, jy))
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}

	// The automaton places site 0 in the leading Kronecker factor, whereas bit 0 of a basis state is site 0.
	idx := make([]int, 1<<CompassSites)
	for a := range idx {
		idx[a] = int(exactdiag.ReverseBits(uint(a), CompassSites))
	}
	permuted, err := res.MPO.Sub(idx)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	if !permuted.EqualApprox(res.ED, MatrixTol) {
		return Result{}, errors.Wrap(ErrMismatch, "matrix")
	}

	res.MPOSpectrum, err = mat.Eigenvalues(res.MPO)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	res.EDSpectrum, err = mat.Eigenvalues(res.ED)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	if err := Compare(res.MPOSpectrum, res.EDSpectrum, SpectrumTol); err != nil {
		return Result{}, errors.Wrap(err, "spectrum")
	}
	return res, nil
}

// CrossCheckLadder builds the Hubbard ladder Hamiltonian both from its automaton and sector by sector, and checks that they agree.
// The spectrum of the automaton Hamiltonian is computed in every sector, whereas the sector spectrum uses the spin exchange symmetry.
func CrossCheckLadder(t, u, v float64) (Result, error) {
	var res Result
	var err error
	res.MPO, err = mpo.LadderHamiltonian(LadderSites, LadderHops, LadderDensities, t, u, v)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	if !res.MPO.IsHermitian(mat.HermitianTol) {
		return Result{}, errors.Wrap(mat.ErrNotHermitian, "mpo")
	}
	hubbard, err := exactdiag.NewHubbard(LadderSites, LadderTerms(t, v), u)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}

	// Every element of the automaton Hamiltonian must fall into some sector.
	var numNonZero int
	ed := make([]mat.Triple, 0)
	for up := range LadderSites + 1 {
		for down := range LadderSites + 1 {
			block, idx, err := sector(res.MPO, hubbard.Basis, up, down)
			if err != nil {
				return Result{}, errors.Wrap(err, fmt.Sprintf("%d %d", up, down))
			}
			numNonZero += len(block.Data)

			expected, err := hubbard.SectorHamiltonian(up, down)
			if err != nil {
				return Result{}, errors.Wrap(err, "")
			}
			if !block.EqualApprox(expected, MatrixTol) {
				return Result{}, errors.Wrap(ErrMismatch, fmt.Sprintf("sector %d %d", up, down))
			}
			for _, e := range expected.Data {
				ed = append(ed, mat.Triple{V: e.V, Row: idx[e.Row], Col: idx[e.Col]})
			}

			vals, err := mat.Eigenvalues(block)
			if err != nil {
				return Result{}, errors.Wrap(err, "")
			}
			res.MPOSpectrum = append(res.MPOSpectrum, vals...)
		}
	}
	if numNonZero != len(res.MPO.Data) {
		return Result{}, errors.Wrap(ErrMismatch, fmt.Sprintf("elements between sectors %d %d", numNonZero, len(res.MPO.Data)))
	}
	slices.Sort(res.MPOSpectrum)

	res.ED, err = mat.NewCOO(res.MPO.Rows(), res.MPO.Cols(), ed)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	res.EDSpectrum, err = hubbard.Spectrum(nil)
	if err != nil {
		return Result{}, errors.Wrap(err, "")
	}
	if err := Compare(res.MPOSpectrum, res.EDSpectrum, SpectrumTol); err != nil {
		return Result{}, errors.Wrap(err, "spectrum")
	}
	return res, nil
}

// sector returns the block of h spanned by the states with up and down fermions, and the indices of these states in h.
func sector(h *mat.COO, basis *exactdiag.Basis, up, down int) (*mat.COO, []int, error) {
	dim, err := basis.SectorDim(up, down)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	idx := make([]int, dim)
	for i := range dim {
		bu, bd, err := basis.SectorState(up, down, i)
		if err != nil {
			return nil, nil, errors.Wrap(err, "")
		}
		idx[i] = basis.FullIndex(bu, bd)
	}
	block, err := h.Sub(idx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "")
	}
	return block, idx, nil
}

// Lowest returns the first n values of a sorted spectrum, or none if n is negative.
func Lowest(spectrum []float64, n int) []float64 {
	return spectrum[:max(0, min(n, len(spectrum)))]
}
